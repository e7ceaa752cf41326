package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/adept-ml/preprocessing/pkg/preprocess"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{" JSON ", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Name", "Value")
	table.AddRow("key1", "value1")
	table.AddRow("key2", "value2")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "key1")
	assert.Contains(t, out, "value2")
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{{"Key1", "Value1"}, {"Key2", "Value2"}}))

	out := buf.String()
	assert.Contains(t, out, "Key1")
	assert.Contains(t, out, "Value2")
}

func TestPrinterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable)
	assert.False(t, p.color)

	require.NoError(t, p.Print(map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestPrinterYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatYAML).Print(map[string]string{"name": "EF 40a"}))

	var got map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "EF 40a", got["name"])
}

func TestPrinterMessagesWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable)
	p.Success("done")
	p.Warning("careful")
	assert.Equal(t, "done\ncareful\n", buf.String())
}

func sampleReport() *preprocess.Report {
	return &preprocess.Report{
		Operation:    preprocess.OpClean,
		BuildingsIn:  2,
		BuildingsOut: 1,
		SensorsIn:    5,
		SensorsOut:   2,
		Removed:      map[string]int{"remove_empty": 2, "merge_duplicates": 1},
		Buildings: []preprocess.BuildingReport{
			{Name: "EF 40a", Rows: 1200, SensorsIn: 3, SensorsOut: 2, ColumnsIn: 3, ColumnsOut: 2},
			{Name: "EF 42", Rows: 3, SensorsIn: 2, ColumnsIn: 2, Dropped: true},
		},
		Duration: 1500 * time.Microsecond,
	}
}

func TestReportTable(t *testing.T) {
	rows := ReportTable{Report: sampleReport()}.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"EF 40a", "1,200", "3 -> 2", "3 -> 2", "kept"}, rows[0])
	assert.Equal(t, "dropped", rows[1][4])
}

func TestSummaryPairsSortsSteps(t *testing.T) {
	pairs := SummaryPairs(sampleReport())
	assert.Equal(t, [2]string{"Operation", "clean"}, pairs[0])
	assert.Equal(t, [2]string{"Removed (merge_duplicates)", "1"}, pairs[3])
	assert.Equal(t, [2]string{"Removed (remove_empty)", "2"}, pairs[4])
	assert.Equal(t, "Duration", pairs[len(pairs)-1][0])
}

func TestPrintReport(t *testing.T) {
	var table bytes.Buffer
	require.NoError(t, PrintReport(&table, FormatTable, sampleReport()))
	assert.Contains(t, table.String(), "BUILDING")
	assert.Contains(t, table.String(), "EF 42")

	var js bytes.Buffer
	require.NoError(t, PrintReport(&js, FormatJSON, sampleReport()))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "clean", decoded["operation"])
	assert.EqualValues(t, 1, decoded["buildings_out"])
}
