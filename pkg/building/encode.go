package building

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Encode writes the set as a building document. Building and column order
// are preserved, NaN readings become null and every frame is embedded as a
// JSON string.
func Encode(set *Set) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range set.Buildings() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, b.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeBuilding(&buf, b); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeBuilding(buf *bytes.Buffer, b *Building) error {
	buf.WriteString(`{"name":`)
	if err := writeString(buf, b.Name); err != nil {
		return err
	}

	buf.WriteString(`,"sensors":`)
	sensors := b.Sensors
	if sensors == nil {
		sensors = []Sensor{}
	}
	raw, err := json.Marshal(sensors)
	if err != nil {
		return err
	}
	buf.Write(raw)

	buf.WriteString(`,"dataframe":`)
	if err := writeString(buf, string(EncodeFrame(b.Frame))); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

// EncodeFrame writes a frame as {"<column>": {"<epoch ms>": <number|null>}}.
func EncodeFrame(f *Frame) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if f != nil {
		stamps := make([]string, f.Len())
		for i, t := range f.Index() {
			stamps[i] = strconv.FormatInt(t.UnixMilli(), 10)
		}
		for i, name := range f.names {
			if i > 0 {
				buf.WriteByte(',')
			}
			_ = writeString(&buf, name)
			buf.WriteString(":{")
			for row, v := range f.columns[name] {
				if row > 0 {
					buf.WriteByte(',')
				}
				buf.WriteByte('"')
				buf.WriteString(stamps[row])
				buf.WriteString(`":`)
				buf.Write(appendFloat(nil, v))
			}
			buf.WriteByte('}')
		}
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}

// appendFloat formats v the way encoding/json does, with NaN and ±Inf as null.
func appendFloat(dst []byte, v float64) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(dst, "null"...)
	}
	abs := math.Abs(v)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	dst = strconv.AppendFloat(dst, v, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst
}
