package frame

import "sort"

// Pivot reshapes a long count table into wide format: one row per distinct
// index value, one column per distinct value of column, cells summed from
// value. Cells with no contributing row stay null so an exported file
// distinguishes "no coverage" from a zero count.
func (f *Frame) Pivot(index, column, value string) *Frame {
	rowKeys := make(map[string]int)
	var rowOrder []string
	colKeys := make(map[string]bool)

	for i := 0; i < f.rows; i++ {
		rk := f.At(i, index).Render()
		if _, ok := rowKeys[rk]; !ok {
			rowKeys[rk] = 0
			rowOrder = append(rowOrder, rk)
		}
		if cv := f.At(i, column); !cv.IsNull() {
			colKeys[cv.Render()] = true
		}
	}
	sort.Strings(rowOrder)
	colOrder := make([]string, 0, len(colKeys))
	for k := range colKeys {
		colOrder = append(colOrder, k)
	}
	sort.Strings(colOrder)
	colPos := make(map[string]int, len(colOrder))
	for i, k := range colOrder {
		colPos[k] = i
	}
	for i, k := range rowOrder {
		rowKeys[k] = i
	}

	cells := make([][]Value, len(rowOrder))
	for i := range cells {
		cells[i] = make([]Value, len(colOrder))
	}
	for i := 0; i < f.rows; i++ {
		cv := f.At(i, column)
		vv := f.At(i, value)
		if cv.IsNull() || vv.Kind != KindNum {
			continue
		}
		r := rowKeys[f.At(i, index).Render()]
		c := colPos[cv.Render()]
		if cells[r][c].IsNull() {
			cells[r][c] = Num(vv.F)
		} else {
			cells[r][c] = Num(cells[r][c].F + vv.F)
		}
	}

	out := New(append([]string{index}, colOrder...)...)
	for r, rk := range rowOrder {
		row := make([]Value, 0, len(colOrder)+1)
		row = append(row, Str(rk))
		row = append(row, cells[r]...)
		out.AppendRow(row...)
	}
	return out
}
