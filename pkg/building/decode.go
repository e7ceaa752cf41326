package building

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DecodeRequest decodes a processing request body of the form
// {"payload": <document>} where the document is either a JSON object or a
// string holding one. Falsy payloads (null, false, 0, "", {}, []) yield
// ErrEmptyPayload.
func DecodeRequest(body []byte) (*Set, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidRequest
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrInvalidRequest
	}
	payload := root.Get("payload")
	if !payload.Exists() {
		return nil, ErrInvalidRequest
	}
	return decodePayload(payload)
}

func decodePayload(payload gjson.Result) (*Set, error) {
	switch payload.Type {
	case gjson.Null, gjson.False:
		return nil, ErrEmptyPayload
	case gjson.Number:
		if payload.Num == 0 {
			return nil, ErrEmptyPayload
		}
	case gjson.String:
		doc := strings.TrimSpace(payload.Str)
		if doc == "" {
			return nil, ErrEmptyPayload
		}
		return DecodeDocument([]byte(doc))
	case gjson.JSON:
		if payload.IsArray() && len(payload.Array()) == 0 {
			return nil, ErrEmptyPayload
		}
		return DecodeDocument([]byte(payload.Raw))
	}
	return nil, fmt.Errorf("%w: payload must be an object, got %s", ErrInvalidDocument, payload.Type)
}

// DecodeDocument decodes a building document: an object keyed by building
// name. The key is authoritative for the building's name.
func DecodeDocument(doc []byte) (*Set, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected an object keyed by building name", ErrInvalidDocument)
	}

	set := NewSet()
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		var b *Building
		b, err = decodeBuilding(key.String(), value)
		if err != nil {
			return false
		}
		set.Add(b)
		return true
	})
	if err != nil {
		return nil, err
	}
	if set.Len() == 0 {
		return nil, ErrEmptyPayload
	}
	return set, nil
}

func decodeBuilding(name string, value gjson.Result) (*Building, error) {
	if !value.IsObject() {
		return nil, fmt.Errorf("%w: building %q: expected an object", ErrInvalidDocument, name)
	}

	sensors, err := decodeSensors(value.Get("sensors"))
	if err != nil {
		return nil, fmt.Errorf("%w: building %q: %v", ErrInvalidDocument, name, err)
	}

	frame, err := decodeDataframe(value.Get("dataframe"))
	if err != nil {
		return nil, fmt.Errorf("%w: building %q: %v", ErrInvalidDocument, name, err)
	}

	return &Building{Name: name, Sensors: sensors, Frame: frame}, nil
}

func decodeSensors(raw gjson.Result) ([]Sensor, error) {
	if !raw.Exists() {
		return nil, fmt.Errorf("missing sensors")
	}
	if !raw.IsArray() {
		return nil, fmt.Errorf("sensors must be an array")
	}

	items := raw.Array()
	sensors := make([]Sensor, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("sensor %d: expected an object", i)
		}
		typ := item.Get("type")
		if typ.Type != gjson.String {
			return nil, fmt.Errorf("sensor %d: missing type", i)
		}
		sensors = append(sensors, Sensor{
			Type: typ.Str,
			Desc: item.Get("desc").String(),
			Unit: item.Get("unit").String(),
		})
	}
	return sensors, nil
}

type rawColumn struct {
	name   string
	values map[int64]float64
}

// decodeDataframe parses a frame in pandas' "columns" orientation:
// {"<column>": {"<epoch ms>": <number|null>, ...}, ...}. It accepts the
// frame both as an object and as a JSON string holding one.
func decodeDataframe(raw gjson.Result) (*Frame, error) {
	switch raw.Type {
	case gjson.String:
		if !gjson.Valid(raw.Str) {
			return nil, fmt.Errorf("dataframe is not valid JSON")
		}
		raw = gjson.Parse(raw.Str)
	case gjson.Null:
		if !raw.Exists() {
			return nil, fmt.Errorf("missing dataframe")
		}
		return NewFrame(nil), nil
	}
	if !raw.IsObject() {
		return nil, fmt.Errorf("dataframe must be an object of columns")
	}

	var (
		columns []rawColumn
		seen    = make(map[int64]struct{})
		err     error
	)
	raw.ForEach(func(key, series gjson.Result) bool {
		name := key.String()
		if slices.ContainsFunc(columns, func(c rawColumn) bool { return c.name == name }) {
			err = fmt.Errorf("duplicate column %q", name)
			return false
		}
		if !series.IsObject() {
			err = fmt.Errorf("column %q must be an object of timestamps", name)
			return false
		}
		col := rawColumn{name: name, values: make(map[int64]float64)}
		series.ForEach(func(ts, v gjson.Result) bool {
			ms, perr := strconv.ParseInt(ts.String(), 10, 64)
			if perr != nil {
				err = fmt.Errorf("column %q: invalid timestamp %q", name, ts.String())
				return false
			}
			switch v.Type {
			case gjson.Number:
				col.values[ms] = v.Num
			case gjson.Null:
				col.values[ms] = math.NaN()
			default:
				err = fmt.Errorf("column %q: value at %d is not a number", name, ms)
				return false
			}
			seen[ms] = struct{}{}
			return true
		})
		if err != nil {
			return false
		}
		columns = append(columns, col)
		return true
	})
	if err != nil {
		return nil, err
	}

	stamps := make([]int64, 0, len(seen))
	for ms := range seen {
		stamps = append(stamps, ms)
	}
	slices.Sort(stamps)

	index := make([]time.Time, len(stamps))
	for i, ms := range stamps {
		index[i] = time.UnixMilli(ms).UTC()
	}

	frame := NewFrame(index)
	for _, col := range columns {
		values := make([]float64, len(stamps))
		for i, ms := range stamps {
			v, ok := col.values[ms]
			if !ok {
				v = math.NaN()
			}
			values[i] = v
		}
		if err := frame.AddColumn(col.name, values); err != nil {
			return nil, err
		}
	}
	return frame, nil
}
