package pipeline

import "bdc/internal/frame"

// Aggregate collapses filtered availability rows into the final per-state
// count table.
//
// When grouping on speed the frame is first reduced to one row per
// (provider, block, location) keeping the maximum advertised download
// speed; the speed-tier collapse has to happen before distinct locations
// are counted.
//
// The final grouping takes exactly one branch, in this precedence:
//
//	technology-only  ->  block_geoid
//	speed            ->  provider_id, block_geoid, max_advertised_download_speed
//	default          ->  provider_id, block_geoid
//
// all counting distinct location_id values as n_unique_locations.
// Technology-only always wins when both flags are set. Each branch applies
// only when its key columns are present; otherwise the frame passes through
// unchanged.
func Aggregate(f *frame.Frame, groupOnSpeed, groupOnTechnology bool) *frame.Frame {
	if groupOnSpeed && f.HasColumns(ColProviderID, ColBlockGeoid, ColLocationID, ColDownloadMax) {
		f = f.GroupBy(
			[]string{ColProviderID, ColBlockGeoid, ColLocationID},
			frame.Max(ColDownloadMax),
		)
	}

	switch {
	case groupOnTechnology:
		if f.HasColumns(ColBlockGeoid, ColLocationID) {
			return f.GroupBy([]string{ColBlockGeoid}, frame.NUnique(ColLocationID, ColUniqueCount))
		}
	case groupOnSpeed:
		if f.HasColumns(ColProviderID, ColBlockGeoid, ColDownloadMax, ColLocationID) {
			return f.GroupBy(
				[]string{ColProviderID, ColBlockGeoid, ColDownloadMax},
				frame.NUnique(ColLocationID, ColUniqueCount),
			)
		}
	default:
		if f.HasColumns(ColProviderID, ColBlockGeoid, ColLocationID) {
			return f.GroupBy(
				[]string{ColProviderID, ColBlockGeoid},
				frame.NUnique(ColLocationID, ColUniqueCount),
			)
		}
	}
	return f
}

// FilterGeoids keeps only aggregated rows whose block_geoid is in the
// caller-supplied allow-list. Nil list or missing column is a no-op.
func FilterGeoids(f *frame.Frame, allow map[string]struct{}) *frame.Frame {
	if allow == nil || !f.HasColumns(ColBlockGeoid) {
		return f
	}
	return f.Filter(func(r frame.Row) bool {
		_, ok := allow[r.Get(ColBlockGeoid).Render()]
		return ok
	})
}
