package building

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "EF 40a": {
    "name": "EF 40a",
    "sensors": [
      {"type": "Elektrizität", "desc": "P Summe", "unit": "kW"},
      {"type": "Temperatur", "desc": "Wetterstation", "unit": "°C"}
    ],
    "dataframe": "{\"Elektrizität\":{\"1642809600000\":4.658038,\"1642810500000\":4.667821,\"1642811400000\":4.195286},\"Temperatur\":{\"1642809600000\":4.5,\"1642810500000\":null,\"1642811400000\":null}}"
  },
  "EF 42": {
    "name": "ignored",
    "sensors": [],
    "dataframe": "{}"
  }
}`

func index(ms ...int64) []time.Time {
	out := make([]time.Time, len(ms))
	for i, v := range ms {
		out[i] = time.UnixMilli(v).UTC()
	}
	return out
}

func TestFrameColumns(t *testing.T) {
	f := NewFrame(index(1, 2, 3))
	require.NoError(t, f.AddColumn("b", []float64{1, 2, 3}))
	require.NoError(t, f.AddColumn("a", []float64{math.NaN(), 5, math.NaN()}))

	assert.Equal(t, []string{"b", "a"}, f.Columns())
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 2, f.Width())
	assert.True(t, f.HasColumn("a"))
	assert.False(t, f.HasColumn("c"))
	assert.Equal(t, []float64{5}, f.Valid("a"))
	assert.Nil(t, f.Column("c"))

	err := f.AddColumn("a", []float64{1, 2, 3})
	assert.ErrorContains(t, err, "duplicate column")

	err = f.AddColumn("c", []float64{1})
	assert.ErrorContains(t, err, "has 1 values")
}

func TestFrameDrop(t *testing.T) {
	f := NewFrame(index(1))
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, f.AddColumn(name, []float64{1}))
	}

	assert.Equal(t, 2, f.Drop("b", "d", "missing"))
	assert.Equal(t, []string{"a", "c"}, f.Columns())
	assert.Equal(t, 0, f.Drop("b"))
}

func TestFrameClone(t *testing.T) {
	f := NewFrame(index(1, 2))
	require.NoError(t, f.AddColumn("a", []float64{1, 2}))

	c := f.Clone()
	c.Column("a")[0] = 42
	c.Drop("a")

	assert.Equal(t, []float64{1, 2}, f.Column("a"))
	assert.Equal(t, []string{"a"}, f.Columns())
}

func TestSetOrderAndFilter(t *testing.T) {
	s := NewSet()
	s.Add(&Building{Name: "c", Sensors: []Sensor{{Type: "x"}}, Frame: NewFrame(nil)})
	s.Add(&Building{Name: "a", Frame: NewFrame(nil)})
	s.Add(&Building{Name: "b", Sensors: []Sensor{{Type: "y"}, {Type: "z"}}, Frame: NewFrame(nil)})

	assert.Equal(t, []string{"c", "a", "b"}, s.Names())
	assert.Equal(t, 3, s.SensorCount())

	kept := s.Filter(func(b *Building) bool { return len(b.Sensors) > 0 })
	assert.Equal(t, []string{"c", "b"}, kept.Names())

	s.Add(&Building{Name: "a", Sensors: []Sensor{{Type: "q"}}, Frame: NewFrame(nil)})
	assert.Equal(t, []string{"c", "a", "b"}, s.Names())
	b, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"q"}, b.SensorTypes())
}

func TestDecodeDocument(t *testing.T) {
	set, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, []string{"EF 40a", "EF 42"}, set.Names())

	b, ok := set.Get("EF 40a")
	require.True(t, ok)
	assert.Equal(t, "EF 40a", b.Name)
	assert.Equal(t, []Sensor{
		{Type: "Elektrizität", Desc: "P Summe", Unit: "kW"},
		{Type: "Temperatur", Desc: "Wetterstation", Unit: "°C"},
	}, b.Sensors)
	assert.Equal(t, index(1642809600000, 1642810500000, 1642811400000), b.Frame.Index())
	assert.Equal(t, []string{"Elektrizität", "Temperatur"}, b.Frame.Columns())
	assert.Equal(t, []float64{4.658038, 4.667821, 4.195286}, b.Frame.Column("Elektrizität"))
	assert.Equal(t, []float64{4.5}, b.Frame.Valid("Temperatur"))

	empty, ok := set.Get("EF 42")
	require.True(t, ok)
	assert.Equal(t, "EF 42", empty.Name)
	assert.Equal(t, 0, empty.Frame.Len())
}

func TestDecodeDataframeUnionIndex(t *testing.T) {
	doc := `{"b": {"sensors": [], "dataframe": {"x": {"3000": 3, "1000": 1}, "y": {"2000": 2}}}}`

	set, err := DecodeDocument([]byte(doc))
	require.NoError(t, err)

	b, _ := set.Get("b")
	assert.Equal(t, index(1000, 2000, 3000), b.Frame.Index())

	x := b.Frame.Column("x")
	assert.Equal(t, 1.0, x[0])
	assert.True(t, math.IsNaN(x[1]))
	assert.Equal(t, 3.0, x[2])

	y := b.Frame.Column("y")
	assert.True(t, math.IsNaN(y[0]))
	assert.Equal(t, 2.0, y[1])
	assert.True(t, math.IsNaN(y[2]))
}

func TestDecodeDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
		msg  string
	}{
		{"not json", `{"a":`, ErrInvalidDocument, "malformed JSON"},
		{"array", `[1,2]`, ErrInvalidDocument, "keyed by building name"},
		{"empty", `{}`, ErrEmptyPayload, ""},
		{"building not object", `{"a": 1}`, ErrInvalidDocument, "expected an object"},
		{"missing sensors", `{"a": {"dataframe": "{}"}}`, ErrInvalidDocument, "missing sensors"},
		{"sensor without type", `{"a": {"sensors": [{"desc": "d"}], "dataframe": "{}"}}`, ErrInvalidDocument, "missing type"},
		{"missing dataframe", `{"a": {"sensors": []}}`, ErrInvalidDocument, "missing dataframe"},
		{"bad dataframe string", `{"a": {"sensors": [], "dataframe": "{oops"}}`, ErrInvalidDocument, "not valid JSON"},
		{"bad timestamp", `{"a": {"sensors": [], "dataframe": {"x": {"yesterday": 1}}}}`, ErrInvalidDocument, "invalid timestamp"},
		{"string value", `{"a": {"sensors": [], "dataframe": {"x": {"1": "1"}}}}`, ErrInvalidDocument, "not a number"},
		{"duplicate column", `{"a": {"sensors": [], "dataframe": {"x": {"1": 1}, "x": {"2": 2}}}}`, ErrInvalidDocument, "duplicate column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestDecodeRequest(t *testing.T) {
	t.Run("object payload", func(t *testing.T) {
		set, err := DecodeRequest([]byte(`{"payload": ` + sampleDocument + `}`))
		require.NoError(t, err)
		assert.Equal(t, 2, set.Len())
	})

	t.Run("string payload", func(t *testing.T) {
		body := `{"payload": "{\"a\": {\"sensors\": [], \"dataframe\": \"{}\"}}"}`
		set, err := DecodeRequest([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, set.Names())
	})

	for _, body := range []string{
		`{"payload": null}`, `{"payload": ""}`, `{"payload": {}}`, `{"payload": "  "}`,
		`{"payload": false}`, `{"payload": 0}`, `{"payload": 0.0}`, `{"payload": []}`,
	} {
		t.Run("empty "+body, func(t *testing.T) {
			_, err := DecodeRequest([]byte(body))
			assert.ErrorIs(t, err, ErrEmptyPayload)
		})
	}

	for _, body := range []string{``, `nope`, `[]`, `{"data": {}}`} {
		t.Run("invalid "+body, func(t *testing.T) {
			_, err := DecodeRequest([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	for _, body := range []string{`{"payload": 5}`, `{"payload": true}`, `{"payload": [1]}`} {
		t.Run("not a document "+body, func(t *testing.T) {
			_, err := DecodeRequest([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestEncodeRoundTripPreservesOrder(t *testing.T) {
	set, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)

	out, err := Encode(set)
	require.NoError(t, err)

	want := `{"EF 40a":{"name":"EF 40a","sensors":[{"type":"Elektrizität","desc":"P Summe","unit":"kW"},{"type":"Temperatur","desc":"Wetterstation","unit":"°C"}],` +
		`"dataframe":"{\"Elektrizität\":{\"1642809600000\":4.658038,\"1642810500000\":4.667821,\"1642811400000\":4.195286},\"Temperatur\":{\"1642809600000\":4.5,\"1642810500000\":null,\"1642811400000\":null}}"},` +
		`"EF 42":{"name":"EF 42","sensors":[],"dataframe":"{}"}}`
	assert.Equal(t, want, string(out))

	again, err := DecodeDocument(out)
	require.NoError(t, err)
	assert.Equal(t, set.Names(), again.Names())
}

func TestAppendFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-2.5, "-2.5"},
		{4.426662, "4.426662"},
		{1e-7, "1e-7"},
		{1e21, "1e+21"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(appendFloat(nil, tt.in)))
	}
}
