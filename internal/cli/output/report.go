package output

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/adept-ml/preprocessing/pkg/preprocess"
)

// ReportTable renders a preprocessing report with one row per building.
type ReportTable struct {
	Report *preprocess.Report
}

// Headers implements TableRenderer.
func (t ReportTable) Headers() []string {
	return []string{"Building", "Rows", "Sensors", "Columns", "Status"}
}

// Rows implements TableRenderer.
func (t ReportTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.Report.Buildings))
	for _, b := range t.Report.Buildings {
		status := "kept"
		if b.Dropped {
			status = "dropped"
		}
		rows = append(rows, []string{
			b.Name,
			humanize.Comma(int64(b.Rows)),
			fmt.Sprintf("%d -> %d", b.SensorsIn, b.SensorsOut),
			fmt.Sprintf("%d -> %d", b.ColumnsIn, b.ColumnsOut),
			status,
		})
	}
	return rows
}

// SummaryPairs returns the report totals as key/value pairs.
func SummaryPairs(r *preprocess.Report) [][2]string {
	pairs := [][2]string{
		{"Operation", string(r.Operation)},
	}
	if r.Method != "" {
		pairs = append(pairs, [2]string{"Method", string(r.Method)})
	}
	pairs = append(pairs,
		[2]string{"Buildings", fmt.Sprintf("%d -> %d", r.BuildingsIn, r.BuildingsOut)},
		[2]string{"Sensors", fmt.Sprintf("%d -> %d", r.SensorsIn, r.SensorsOut)},
	)

	steps := make([]string, 0, len(r.Removed))
	for step := range r.Removed {
		steps = append(steps, step)
	}
	slices.Sort(steps)
	for _, step := range steps {
		pairs = append(pairs, [2]string{"Removed (" + step + ")", strconv.Itoa(r.Removed[step])})
	}

	if r.Operation == preprocess.OpInterpolate {
		pairs = append(pairs, [2]string{"Filled values", humanize.Comma(int64(r.Filled))})
	}
	pairs = append(pairs, [2]string{"Duration", r.Duration.String()})
	return pairs
}

// PrintReport writes the report in format. Tables print the summary
// followed by the per-building breakdown.
func PrintReport(w io.Writer, format Format, r *preprocess.Report) error {
	if format != FormatTable {
		return NewPrinter(w, format).Print(r)
	}
	if err := SimpleTable(w, SummaryPairs(r)); err != nil {
		return err
	}
	if len(r.Buildings) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(w)
	return PrintTable(w, ReportTable{Report: r})
}
