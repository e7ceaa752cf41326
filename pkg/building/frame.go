package building

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Frame is a time-indexed table of float64 columns. Missing readings are NaN.
// The index is ascending and unique; column order is insertion order.
type Frame struct {
	index   []time.Time
	names   []string
	columns map[string][]float64
}

// NewFrame returns an empty frame over the given index. The index must be
// ascending and unique.
func NewFrame(index []time.Time) *Frame {
	return &Frame{
		index:   index,
		columns: make(map[string][]float64),
	}
}

// Index returns the frame's timestamps.
func (f *Frame) Index() []time.Time {
	return f.index
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.index)
}

// Width returns the number of columns.
func (f *Frame) Width() int {
	return len(f.names)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return slices.Clone(f.names)
}

// HasColumn reports whether the frame has a column called name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Column returns the values of a column, or nil if it does not exist.
// The returned slice aliases the frame.
func (f *Frame) Column(name string) []float64 {
	return f.columns[name]
}

// AddColumn appends a column. values must have one entry per index row.
func (f *Frame) AddColumn(name string, values []float64) error {
	if _, ok := f.columns[name]; ok {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(values) != len(f.index) {
		return fmt.Errorf("column %q has %d values, index has %d", name, len(values), len(f.index))
	}
	f.names = append(f.names, name)
	f.columns[name] = values
	return nil
}

// Drop removes the named columns and returns how many existed.
func (f *Frame) Drop(names ...string) int {
	dropped := 0
	for _, name := range names {
		if _, ok := f.columns[name]; !ok {
			continue
		}
		delete(f.columns, name)
		dropped++
	}
	if dropped > 0 {
		f.names = slices.DeleteFunc(f.names, func(n string) bool {
			_, ok := f.columns[n]
			return !ok
		})
	}
	return dropped
}

// Valid returns the non-NaN values of a column in index order.
func (f *Frame) Valid(name string) []float64 {
	col := f.columns[name]
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := &Frame{
		index:   slices.Clone(f.index),
		names:   slices.Clone(f.names),
		columns: make(map[string][]float64, len(f.columns)),
	}
	for name, col := range f.columns {
		c.columns[name] = slices.Clone(col)
	}
	return c
}
