package preprocess

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/adept-ml/preprocessing/pkg/building"
)

// ErrUnknownMethod is returned for an unsupported normalization method.
var ErrUnknownMethod = errors.New("unknown normalization method")

// Method is a normalization method.
type Method string

const (
	// MinMax scales valid values into [0, 1].
	MinMax Method = "minmax"

	// Mean centres valid values on the mean and divides by the sample
	// standard deviation.
	Mean Method = "mean"
)

// ParseMethod parses a method name. The empty string selects MinMax.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MinMax:
		return MinMax, nil
	case Mean:
		return Mean, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownMethod, s)
	}
}

// Normalize scales every column of every building with method.
func Normalize(set *building.Set, method Method) error {
	for _, b := range set.Buildings() {
		if err := normalizeFrame(b.Frame, method); err != nil {
			return err
		}
	}
	return nil
}

func normalizeFrame(f *building.Frame, method Method) error {
	var scale func([]float64)
	switch method {
	case MinMax:
		scale = minMax
	case Mean:
		scale = zScore
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	for _, name := range f.Columns() {
		scale(f.Column(name))
	}
	return nil
}

func minMax(values []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	applyScale(values, lo, hi-lo)
}

func zScore(values []float64) {
	n, sum := 0, 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
			sum += v
		}
	}
	if n == 0 {
		return
	}
	mean := sum / float64(n)

	std := math.NaN()
	if n > 1 {
		ss := 0.0
		for _, v := range values {
			if !math.IsNaN(v) {
				ss += (v - mean) * (v - mean)
			}
		}
		std = math.Sqrt(ss / float64(n-1))
	}
	applyScale(values, mean, std)
}

// applyScale maps every valid v to (v - offset) / den. A zero or undefined
// denominator turns every valid value into NaN.
func applyScale(values []float64, offset, den float64) {
	undefined := den == 0 || math.IsNaN(den) || math.IsInf(den, 0)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if undefined {
			values[i] = math.NaN()
			continue
		}
		values[i] = (v - offset) / den
	}
}
