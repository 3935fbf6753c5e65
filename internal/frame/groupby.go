package frame

import (
	"sort"
	"strings"
)

// Agg describes one aggregation applied per group.
type Agg struct {
	kind string // "max", "sum", "nunique"
	col  string
	as   string
}

// Max keeps the maximum numeric value of col per group. Non-numeric and
// null cells are ignored.
func Max(col string) Agg { return Agg{kind: "max", col: col, as: col} }

// Sum totals the numeric values of col per group.
func Sum(col string) Agg { return Agg{kind: "sum", col: col, as: col} }

// NUnique counts distinct non-null values of col per group, emitted under
// the name as.
func NUnique(col, as string) Agg { return Agg{kind: "nunique", col: col, as: as} }

// keySep never occurs in FCC availability data; it keeps composite group
// keys unambiguous.
const keySep = "\x1f"

type group struct {
	key  []Value
	max  []Value
	sum  []float64
	sets []map[string]struct{}
}

// GroupBy groups rows by the given key columns and applies the
// aggregations, one output row per group. Output rows are sorted by key so
// repeated runs export identical files.
func (f *Frame) GroupBy(keys []string, aggs ...Agg) *Frame {
	outNames := append([]string(nil), keys...)
	for _, a := range aggs {
		outNames = append(outNames, a.as)
	}

	groups := make(map[string]*group)
	var order []string
	for i := 0; i < f.rows; i++ {
		parts := make([]string, len(keys))
		kv := make([]Value, len(keys))
		for k, name := range keys {
			v := f.At(i, name)
			kv[k] = v
			parts[k] = v.Render()
		}
		ck := strings.Join(parts, keySep)
		g, ok := groups[ck]
		if !ok {
			g = &group{
				key:  kv,
				max:  make([]Value, len(aggs)),
				sum:  make([]float64, len(aggs)),
				sets: make([]map[string]struct{}, len(aggs)),
			}
			for a := range aggs {
				g.sets[a] = make(map[string]struct{})
			}
			groups[ck] = g
			order = append(order, ck)
		}
		for a, agg := range aggs {
			v := f.At(i, agg.col)
			if v.IsNull() {
				continue
			}
			switch agg.kind {
			case "max":
				if v.Kind == KindNum && (g.max[a].IsNull() || v.F > g.max[a].F) {
					g.max[a] = v
				}
			case "sum":
				if v.Kind == KindNum {
					g.sum[a] += v.F
				}
			case "nunique":
				g.sets[a][v.Render()] = struct{}{}
			}
		}
	}
	sort.Strings(order)

	out := New(outNames...)
	for _, ck := range order {
		g := groups[ck]
		row := append([]Value(nil), g.key...)
		for a, agg := range aggs {
			switch agg.kind {
			case "max":
				row = append(row, g.max[a])
			case "sum":
				row = append(row, Num(g.sum[a]))
			case "nunique":
				row = append(row, Num(float64(len(g.sets[a]))))
			}
		}
		out.AppendRow(row...)
	}
	return out
}
