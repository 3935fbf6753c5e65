package frame

import (
	"encoding/csv"
	"io"
	"strconv"
)

// ReadCSV decodes a headered CSV stream into a frame. Each cell is typed
// independently: empty cells become null, parseable numbers become numeric,
// everything else stays a string. Columns named in keepString are never
// parsed as numbers; identifier columns like block_geoid would otherwise
// lose their leading zeros.
func ReadCSV(r io.Reader, keepString map[string]bool) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, err
	}
	f := New(header...)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]Value, len(header))
		for i := range header {
			if i >= len(rec) {
				row[i] = Null
				continue
			}
			row[i] = parseCell(rec[i], keepString[header[i]])
		}
		f.AppendRow(row...)
	}
	return f, nil
}

func parseCell(s string, forceString bool) Value {
	if s == "" {
		return Null
	}
	if forceString {
		return Str(s)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(n)
	}
	return Str(s)
}
