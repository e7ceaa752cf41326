package preprocess

import (
	"math"

	"github.com/adept-ml/preprocessing/pkg/building"
)

// Interpolate fills missing readings of every column in every building.
func Interpolate(set *building.Set) {
	for _, b := range set.Buildings() {
		interpolateFrame(b.Frame)
	}
}

func interpolateFrame(f *building.Frame) int {
	filled := 0
	for _, name := range f.Columns() {
		filled += interpolateColumn(f.Column(name))
	}
	return filled
}

// interpolateColumn fills NaNs in place by linear interpolation over row
// positions. Leading NaNs take the first valid value and trailing NaNs the
// last one. A column without valid values is left untouched. It returns the
// number of filled entries.
func interpolateColumn(values []float64) int {
	prev := -1
	filled := 0
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		switch {
		case prev == -1:
			for k := 0; k < i; k++ {
				values[k] = v
			}
			filled += i
		case i-prev > 1:
			slope := (v - values[prev]) / float64(i-prev)
			for k := prev + 1; k < i; k++ {
				values[k] = slope*float64(k-prev) + values[prev]
			}
			filled += i - prev - 1
		}
		prev = i
	}
	if prev == -1 {
		return 0
	}
	for k := prev + 1; k < len(values); k++ {
		values[k] = values[prev]
	}
	return filled + len(values) - prev - 1
}
