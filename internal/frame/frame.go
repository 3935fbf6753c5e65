// Package frame implements the small column-oriented table the availability
// pipeline runs on. Downloaded files vary in schema, so every operation
// tolerates missing columns; callers check HasColumns before relying on one.
package frame

import (
	"strconv"
	"strings"
)

// Kind discriminates the three cell states a column can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindStr
	KindNum
)

// Value is a single cell. Numbers and strings are kept apart so numeric
// aggregation never compares lexicographically.
type Value struct {
	Kind Kind
	S    string
	F    float64
}

// Null is the absent-cell sentinel.
var Null = Value{}

// Str wraps a string cell.
func Str(s string) Value { return Value{Kind: KindStr, S: s} }

// Num wraps a numeric cell.
func Num(f float64) Value { return Value{Kind: KindNum, F: f} }

// Render returns the cell as it would appear in a CSV export. Nulls render
// empty; integral floats render without a decimal point.
func (v Value) Render() string {
	switch v.Kind {
	case KindStr:
		return v.S
	case KindNum:
		return strconv.FormatFloat(v.F, 'f', -1, 64)
	}
	return ""
}

// AsInt coerces the cell to an integer on a best-effort basis. Strings are
// trimmed and parsed; fractional numbers and junk report ok=false rather
// than erroring, matching how provider IDs are matched.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindNum:
		n := int64(v.F)
		if float64(n) == v.F {
			return n, true
		}
		return 0, false
	case KindStr:
		s := strings.TrimSpace(v.S)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n := int64(f)
			if float64(n) == f {
				return n, true
			}
		}
		return 0, false
	}
	return 0, false
}

// IsNull reports whether the cell is absent.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Frame is an ordered collection of equally long columns. Transforms return
// a new Frame and never mutate the receiver's storage in place.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]Value
	rows  int
}

// New creates an empty frame with the given column order.
func New(names ...string) *Frame {
	f := &Frame{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		cols:  make([][]Value, len(names)),
	}
	for i, n := range names {
		f.index[n] = i
	}
	return f
}

// NumRows returns the row count.
func (f *Frame) NumRows() int { return f.rows }

// IsEmpty reports whether the frame has no rows.
func (f *Frame) IsEmpty() bool { return f == nil || f.rows == 0 }

// Columns returns the column names in order.
func (f *Frame) Columns() []string { return append([]string(nil), f.names...) }

// HasColumns reports whether every named column is present.
func (f *Frame) HasColumns(names ...string) bool {
	for _, n := range names {
		if _, ok := f.index[n]; !ok {
			return false
		}
	}
	return true
}

// AppendRow adds one row. Missing trailing values become null.
func (f *Frame) AppendRow(vals ...Value) {
	for i := range f.cols {
		if i < len(vals) {
			f.cols[i] = append(f.cols[i], vals[i])
		} else {
			f.cols[i] = append(f.cols[i], Null)
		}
	}
	f.rows++
}

// Row is a cursor over one row of a frame.
type Row struct {
	f *Frame
	i int
}

// Get returns the named cell, or Null when the column is absent.
func (r Row) Get(name string) Value {
	ci, ok := r.f.index[name]
	if !ok {
		return Null
	}
	return r.f.cols[ci][r.i]
}

// Filter returns the rows for which keep reports true.
func (f *Frame) Filter(keep func(Row) bool) *Frame {
	out := New(f.names...)
	for i := 0; i < f.rows; i++ {
		if keep(Row{f, i}) {
			for c := range f.cols {
				out.cols[c] = append(out.cols[c], f.cols[c][i])
			}
			out.rows++
		}
	}
	return out
}

// WithConst returns a copy with the named column set to a constant value,
// adding the column if it does not exist.
func (f *Frame) WithConst(name string, v Value) *Frame {
	out := f.clone()
	col := make([]Value, out.rows)
	for i := range col {
		col[i] = v
	}
	if ci, ok := out.index[name]; ok {
		out.cols[ci] = col
		return out
	}
	out.names = append(out.names, name)
	out.index[name] = len(out.cols)
	out.cols = append(out.cols, col)
	return out
}

// MapColumn returns a copy with fn applied to every cell of the named
// column. A missing column makes this a no-op.
func (f *Frame) MapColumn(name string, fn func(Value) Value) *Frame {
	ci, ok := f.index[name]
	if !ok {
		return f
	}
	out := f.clone()
	col := make([]Value, out.rows)
	for i, v := range f.cols[ci] {
		col[i] = fn(v)
	}
	out.cols[ci] = col
	return out
}

// Distinct returns the set of rendered values in the named column, nulls
// excluded. A missing column yields an empty set.
func (f *Frame) Distinct(name string) map[string]struct{} {
	out := make(map[string]struct{})
	ci, ok := f.index[name]
	if !ok {
		return out
	}
	for _, v := range f.cols[ci] {
		if v.IsNull() {
			continue
		}
		out[v.Render()] = struct{}{}
	}
	return out
}

// VStack concatenates frames vertically with relaxed schema alignment:
// the output carries the union of all columns in first-seen order, and
// cells absent from a source frame are null. Nil and empty inputs are
// skipped.
func VStack(frames ...*Frame) *Frame {
	var names []string
	seen := make(map[string]bool)
	for _, fr := range frames {
		if fr == nil {
			continue
		}
		for _, n := range fr.names {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	out := New(names...)
	for _, fr := range frames {
		if fr == nil {
			continue
		}
		for i := 0; i < fr.rows; i++ {
			for c, n := range out.names {
				if ci, ok := fr.index[n]; ok {
					out.cols[c] = append(out.cols[c], fr.cols[ci][i])
				} else {
					out.cols[c] = append(out.cols[c], Null)
				}
			}
			out.rows++
		}
	}
	return out
}

// clone copies the frame header and shares no column slices with the
// original beyond this call (columns are copied lazily by the callers that
// replace them; untouched columns are reused as-is since no operation
// mutates cells).
func (f *Frame) clone() *Frame {
	out := &Frame{
		names: append([]string(nil), f.names...),
		index: make(map[string]int, len(f.index)),
		cols:  append([][]Value(nil), f.cols...),
		rows:  f.rows,
	}
	for n, i := range f.index {
		out.index[n] = i
	}
	return out
}

// At returns the cell at (row, column name), Null when absent.
func (f *Frame) At(row int, name string) Value {
	ci, ok := f.index[name]
	if !ok || row < 0 || row >= f.rows {
		return Null
	}
	return f.cols[ci][row]
}
