package preprocess

import (
	"math"

	"github.com/adept-ml/preprocessing/pkg/building"
)

// Cleaning step names, used in reports, logs and metrics.
const (
	StepMergeDuplicates      = "merge_duplicates"
	StepRemoveEmpty          = "remove_empty"
	StepRemoveLowVariance    = "remove_low_variance"
	StepRemoveLeftover       = "remove_leftover_sensors"
	StepRemoveEmptyBuildings = "remove_empty_buildings"
)

// MergeDuplicateSensors drops, in every building, columns that duplicate an
// earlier column. It returns the number of dropped columns.
func MergeDuplicateSensors(set *building.Set, threshold int) int {
	n := 0
	for _, b := range set.Buildings() {
		n += len(mergeDuplicates(b.Frame, threshold))
	}
	return n
}

// RemoveEmptySensors drops every column without a single valid value.
func RemoveEmptySensors(set *building.Set) int {
	n := 0
	for _, b := range set.Buildings() {
		n += len(removeEmpty(b.Frame))
	}
	return n
}

// RemoveLowVarianceSensors drops every column with fewer than threshold
// distinct valid values.
func RemoveLowVarianceSensors(set *building.Set, threshold int) int {
	n := 0
	for _, b := range set.Buildings() {
		n += len(removeLowVariance(b.Frame, threshold))
	}
	return n
}

// RemoveLeftoverSensors drops sensor descriptors whose column no longer
// exists and returns how many were dropped.
func RemoveLeftoverSensors(set *building.Set) int {
	n := 0
	for _, b := range set.Buildings() {
		n += removeLeftover(b)
	}
	return n
}

// RemoveEmptyBuildings returns a new set without the buildings that have no
// sensors left.
func RemoveEmptyBuildings(set *building.Set) *building.Set {
	return set.Filter(func(b *building.Building) bool {
		return len(b.Sensors) > 0
	})
}

// mergeDuplicates compares every column pair (i < j) by their valid values.
// Column j is dropped when both have the same number of valid values and
// they differ at fewer than threshold positions. Drops happen after all
// pairs are compared.
func mergeDuplicates(f *building.Frame, threshold int) []string {
	cols := f.Columns()
	valid := make([][]float64, len(cols))
	for i, name := range cols {
		valid[i] = f.Valid(name)
	}

	marked := make(map[string]bool)
	var drop []string
	for i := range cols {
		for j := i + 1; j < len(cols); j++ {
			a, b := valid[i], valid[j]
			if len(a) != len(b) {
				continue
			}
			mismatches := 0
			for k := range a {
				if a[k] != b[k] {
					mismatches++
				}
			}
			if (mismatches == 0 || mismatches < threshold) && !marked[cols[j]] {
				marked[cols[j]] = true
				drop = append(drop, cols[j])
			}
		}
	}

	f.Drop(drop...)
	return drop
}

func removeEmpty(f *building.Frame) []string {
	var drop []string
	for _, name := range f.Columns() {
		if !hasValid(f.Column(name)) {
			drop = append(drop, name)
		}
	}
	f.Drop(drop...)
	return drop
}

func removeLowVariance(f *building.Frame, threshold int) []string {
	var drop []string
	for _, name := range f.Columns() {
		distinct := make(map[float64]struct{})
		for _, v := range f.Column(name) {
			if !math.IsNaN(v) {
				distinct[v] = struct{}{}
			}
		}
		if len(distinct) < threshold {
			drop = append(drop, name)
		}
	}
	f.Drop(drop...)
	return drop
}

func removeLeftover(b *building.Building) int {
	kept := b.Sensors[:0]
	for _, s := range b.Sensors {
		if b.Frame.HasColumn(s.Type) {
			kept = append(kept, s)
		}
	}
	removed := len(b.Sensors) - len(kept)
	b.Sensors = kept
	return removed
}

func hasValid(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
