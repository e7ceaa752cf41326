package preprocess

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adept-ml/preprocessing/pkg/building"
)

var nan = math.NaN()

// newBuilding builds a building whose sensors are named after its columns.
func newBuilding(t *testing.T, name string, names []string, cols ...[]float64) *building.Building {
	t.Helper()
	require.Len(t, cols, len(names))

	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0])
	}
	index := make([]time.Time, rows)
	for i := range index {
		index[i] = time.UnixMilli(1642809600000 + int64(i)*900000).UTC()
	}

	f := building.NewFrame(index)
	sensors := make([]building.Sensor, len(names))
	for i, n := range names {
		require.NoError(t, f.AddColumn(n, cols[i]))
		sensors[i] = building.Sensor{Type: n, Desc: n + " desc", Unit: "kW"}
	}
	return &building.Building{Name: name, Sensors: sensors, Frame: f}
}

func setOf(buildings ...*building.Building) *building.Set {
	s := building.NewSet()
	for _, b := range buildings {
		s.Add(b)
	}
	return s
}

func seq(n int, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) + offset
	}
	return out
}

func TestInterpolateMiddleValue(t *testing.T) {
	b := newBuilding(t, "EF 40a", []string{"Elektrizität"}, []float64{4.658038, nan, 4.195286})
	Interpolate(setOf(b))

	col := b.Frame.Column("Elektrizität")
	assert.Equal(t, 4.658038, col[0])
	assert.InDelta(t, 4.426662, col[1], 1e-9)
	assert.Equal(t, 4.195286, col[2])
}

func TestInterpolateColumn(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		want   []float64
		filled int
	}{
		{"no gaps", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"interior run", []float64{0, nan, nan, 3}, []float64{0, 1, 2, 3}, 2},
		{"leading", []float64{nan, nan, 5, 6}, []float64{5, 5, 5, 6}, 2},
		{"trailing", []float64{1, 2, nan, nan}, []float64{1, 2, 2, 2}, 2},
		{"both ends and middle", []float64{nan, 2, nan, 4, nan}, []float64{2, 2, 3, 4, 4}, 3},
		{"single valid", []float64{nan, 7, nan}, []float64{7, 7, 7}, 2},
		{"empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := append([]float64(nil), tt.in...)
			filled := interpolateColumn(values)
			assert.Equal(t, tt.filled, filled)
			assert.InDeltaSlice(t, tt.want, values, 1e-12)
		})
	}
}

func TestInterpolateAllNaNUnchanged(t *testing.T) {
	values := []float64{nan, nan}
	assert.Equal(t, 0, interpolateColumn(values))
	assert.True(t, math.IsNaN(values[0]))
	assert.True(t, math.IsNaN(values[1]))
}

func TestMergeDuplicateSensors(t *testing.T) {
	t.Run("identical columns keep the first", func(t *testing.T) {
		b := newBuilding(t, "b", []string{"x", "y"}, seq(12, 0), seq(12, 0))
		assert.Equal(t, 1, MergeDuplicateSensors(setOf(b), 10))
		assert.Equal(t, []string{"x"}, b.Frame.Columns())
	})

	t.Run("few mismatches merge, many do not", func(t *testing.T) {
		base := seq(12, 0)
		near := seq(12, 0)
		far := seq(12, 0)
		for i := 0; i < 3; i++ {
			near[i] += 50
		}
		for i := 0; i < 10; i++ {
			far[i] += 100
		}

		b := newBuilding(t, "b", []string{"base", "near", "far"}, base, near, far)
		assert.Equal(t, 1, MergeDuplicateSensors(setOf(b), 10))
		assert.Equal(t, []string{"base", "far"}, b.Frame.Columns())
	})

	t.Run("different valid length never merges", func(t *testing.T) {
		b := newBuilding(t, "b", []string{"x", "y"}, []float64{1, 2, 3}, []float64{1, 2, nan})
		assert.Equal(t, 0, MergeDuplicateSensors(setOf(b), 10))
		assert.Equal(t, []string{"x", "y"}, b.Frame.Columns())
	})

	t.Run("valid values are compared regardless of position", func(t *testing.T) {
		b := newBuilding(t, "b", []string{"x", "y"}, []float64{1, nan, 2}, []float64{nan, 1, 2})
		assert.Equal(t, 1, MergeDuplicateSensors(setOf(b), 0))
		assert.Equal(t, []string{"x"}, b.Frame.Columns())
	})

	t.Run("marked columns still take part in comparisons", func(t *testing.T) {
		b := newBuilding(t, "b", []string{"a", "b", "c"}, seq(4, 0), seq(4, 0), seq(4, 0))
		assert.Equal(t, 2, MergeDuplicateSensors(setOf(b), 1))
		assert.Equal(t, []string{"a"}, b.Frame.Columns())
	})
}

func TestRemoveEmptySensors(t *testing.T) {
	b := newBuilding(t, "b", []string{"full", "empty", "partial"},
		[]float64{1, 2}, []float64{nan, nan}, []float64{nan, 3})

	assert.Equal(t, 1, RemoveEmptySensors(setOf(b)))
	assert.Equal(t, []string{"full", "partial"}, b.Frame.Columns())
}

func TestRemoveLowVarianceSensors(t *testing.T) {
	varied := seq(10, 0)
	repeated := append(seq(9, 0), 0)
	withGaps := append(seq(10, 0), nan, nan)

	b := newBuilding(t, "b", []string{"varied", "repeated", "gaps"},
		append(varied, 10, 11), append(repeated, 0, 0), withGaps)

	assert.Equal(t, 1, RemoveLowVarianceSensors(setOf(b), 10))
	assert.Equal(t, []string{"varied", "gaps"}, b.Frame.Columns())
}

func TestRemoveLeftoverSensors(t *testing.T) {
	b := newBuilding(t, "b", []string{"x", "y"}, []float64{1}, []float64{2})
	b.Sensors = append(b.Sensors, building.Sensor{Type: "ghost"})
	b.Frame.Drop("x")

	assert.Equal(t, 2, RemoveLeftoverSensors(setOf(b)))
	assert.Equal(t, []string{"y"}, b.SensorTypes())
}

func TestRemoveEmptyBuildings(t *testing.T) {
	keep := newBuilding(t, "keep", []string{"x"}, []float64{1})
	drop := newBuilding(t, "drop", nil)
	last := newBuilding(t, "last", []string{"y"}, []float64{2})

	out := RemoveEmptyBuildings(setOf(keep, drop, last))
	assert.Equal(t, []string{"keep", "last"}, out.Names())
}

func TestNormalizeMinMax(t *testing.T) {
	b := newBuilding(t, "b", []string{"x", "flat"}, []float64{2, nan, 4, 6}, []float64{3, 3, nan, 3})
	require.NoError(t, Normalize(setOf(b), MinMax))

	x := b.Frame.Column("x")
	assert.Equal(t, 0.0, x[0])
	assert.True(t, math.IsNaN(x[1]))
	assert.Equal(t, 0.5, x[2])
	assert.Equal(t, 1.0, x[3])

	for _, v := range b.Frame.Column("flat") {
		assert.True(t, math.IsNaN(v))
	}
}

func TestNormalizeMean(t *testing.T) {
	b := newBuilding(t, "b", []string{"x", "one"}, []float64{1, 2, 3}, []float64{5, nan, nan})
	require.NoError(t, Normalize(setOf(b), Mean))

	assert.InDeltaSlice(t, []float64{-1, 0, 1}, b.Frame.Column("x"), 1e-12)
	assert.True(t, math.IsNaN(b.Frame.Column("one")[0]))
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MinMax, m)

	m, err = ParseMethod(" MEAN ")
	require.NoError(t, err)
	assert.Equal(t, Mean, m)

	_, err = ParseMethod("log")
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.EqualError(t, err, "unknown normalization method: log")

	b := newBuilding(t, "b", []string{"x"}, []float64{1})
	assert.ErrorIs(t, Normalize(setOf(b), Method("log")), ErrUnknownMethod)
}

func TestParseOperation(t *testing.T) {
	op, ok := ParseOperation("interpolate")
	assert.True(t, ok)
	assert.Equal(t, OpInterpolate, op)

	_, ok = ParseOperation("smooth")
	assert.False(t, ok)
}
