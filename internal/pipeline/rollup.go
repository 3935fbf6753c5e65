package pipeline

import "bdc/internal/frame"

// TruncateGeoid reduces a block GEOID to the prefix length of the target
// level. GEOIDs are 15-character fixed-width strings whose prefix encodes
// state(2)/county(3)/tract(6)/block-group(1)/block(3). A numeric source can
// strip the single leading zero of states 01-09, leaving 14 digits; that
// zero is restored before slicing. Values already at or below the target
// length pass through, so truncation is idempotent.
func TruncateGeoid(geoid string, level RollupLevel) string {
	if len(geoid) == 14 && isDigits(geoid) {
		geoid = "0" + geoid
	}
	if len(geoid) <= int(level) {
		return geoid
	}
	return geoid[:int(level)]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Rollup re-keys an aggregated per-state table to a coarser geography and
// pre-sums the counts so only a bounded table crosses into the merge. The
// wide pivot itself is deferred to the merge step: pivoting per state would
// repeat work and produce inconsistent column sets across states, while
// truncate-then-sum is associative over disjoint state partitions, so the
// per-state pre-aggregation changes no totals.
//
// The pre-aggregation key matches the pivot the merge will perform:
// provider_speed when grouping on speed (and not on technology), else
// provider_id, else the rolled-up geoid alone. Frames that lack block_geoid
// or the count column pass through untouched.
func Rollup(f *frame.Frame, level RollupLevel, groupOnSpeed, groupOnTechnology bool) *frame.Frame {
	if !f.HasColumns(ColBlockGeoid, ColUniqueCount) {
		return f
	}
	f = f.MapColumn(ColBlockGeoid, func(v frame.Value) frame.Value {
		if v.IsNull() {
			return v
		}
		return frame.Str(TruncateGeoid(v.Render(), level))
	})

	needPivot := !groupOnTechnology
	if needPivot && f.HasColumns(ColProviderID) {
		if groupOnSpeed && f.HasColumns(ColDownloadMax) {
			f = withProviderSpeed(f)
			return f.GroupBy([]string{ColBlockGeoid, ColProviderSpd}, frame.Sum(ColUniqueCount))
		}
		return f.GroupBy([]string{ColBlockGeoid, ColProviderID}, frame.Sum(ColUniqueCount))
	}
	return f.GroupBy([]string{ColBlockGeoid}, frame.Sum(ColUniqueCount))
}

// withProviderSpeed synthesizes the provider_speed composite pivot key,
// provider_id and speed joined by "_".
func withProviderSpeed(f *frame.Frame) *frame.Frame {
	out := frame.New(append(f.Columns(), ColProviderSpd)...)
	for i := 0; i < f.NumRows(); i++ {
		row := make([]frame.Value, 0, len(f.Columns())+1)
		for _, c := range f.Columns() {
			row = append(row, f.At(i, c))
		}
		key := f.At(i, ColProviderID).Render() + "_" + f.At(i, ColDownloadMax).Render()
		row = append(row, frame.Str(key))
		out.AppendRow(row...)
	}
	return out
}
