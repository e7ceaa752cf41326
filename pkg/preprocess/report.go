package preprocess

import (
	"time"

	"github.com/adept-ml/preprocessing/pkg/building"
)

// Operation names a preprocessing operation.
type Operation string

const (
	OpClean       Operation = "clean"
	OpInterpolate Operation = "interpolate"
	OpNormalize   Operation = "normalize"
)

// ParseOperation parses an operation name.
func ParseOperation(s string) (Operation, bool) {
	switch op := Operation(s); op {
	case OpClean, OpInterpolate, OpNormalize:
		return op, true
	}
	return "", false
}

// Report summarizes one operation.
type Report struct {
	Operation    Operation        `json:"operation" yaml:"operation"`
	Method       Method           `json:"method,omitempty" yaml:"method,omitempty"`
	BuildingsIn  int              `json:"buildings_in" yaml:"buildings_in"`
	BuildingsOut int              `json:"buildings_out" yaml:"buildings_out"`
	SensorsIn    int              `json:"sensors_in" yaml:"sensors_in"`
	SensorsOut   int              `json:"sensors_out" yaml:"sensors_out"`
	Removed      map[string]int   `json:"removed,omitempty" yaml:"removed,omitempty"`
	Filled       int              `json:"filled,omitempty" yaml:"filled,omitempty"`
	Buildings    []BuildingReport `json:"buildings,omitempty" yaml:"buildings,omitempty"`
	Duration     time.Duration    `json:"duration" yaml:"duration"`
	Cached       bool             `json:"cached" yaml:"cached"`
}

// BuildingReport summarizes one building within an operation.
type BuildingReport struct {
	Name       string `json:"name" yaml:"name"`
	Rows       int    `json:"rows" yaml:"rows"`
	SensorsIn  int    `json:"sensors_in" yaml:"sensors_in"`
	SensorsOut int    `json:"sensors_out" yaml:"sensors_out"`
	ColumnsIn  int    `json:"columns_in" yaml:"columns_in"`
	ColumnsOut int    `json:"columns_out" yaml:"columns_out"`
	Dropped    bool   `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

func newReport(op Operation, set *building.Set) *Report {
	r := &Report{
		Operation:   op,
		BuildingsIn: set.Len(),
		SensorsIn:   set.SensorCount(),
		Buildings:   make([]BuildingReport, set.Len()),
	}
	for i, b := range set.Buildings() {
		r.Buildings[i] = BuildingReport{
			Name:      b.Name,
			Rows:      b.Frame.Len(),
			SensorsIn: len(b.Sensors),
			ColumnsIn: b.Frame.Width(),
		}
	}
	return r
}

// finish records the output side of the report. in is the set the report
// was created from, after processing.
func (r *Report) finish(in, out *building.Set, start time.Time) {
	for i, b := range in.Buildings() {
		r.Buildings[i].SensorsOut = len(b.Sensors)
		r.Buildings[i].ColumnsOut = b.Frame.Width()
		if _, ok := out.Get(b.Name); !ok {
			r.Buildings[i].Dropped = true
		}
	}
	r.BuildingsOut = out.Len()
	r.SensorsOut = out.SensorCount()
	r.Duration = time.Since(start)
}

// RemovedTotal returns the number of columns and descriptors removed over
// all steps.
func (r *Report) RemovedTotal() int {
	n := 0
	for _, v := range r.Removed {
		n += v
	}
	return n
}
