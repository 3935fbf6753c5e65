package pipeline

import "bdc/internal/frame"

// ---------------- Row-level filters ----------------
//
// The three filters below run in order: residential, footprint membership,
// provider exclusion. Each one skips silently when its column is absent or
// its constraint is empty.

// FilterResidential drops business-only rows (business_residential_code ==
// "B") when the flag is set and the column exists.
func FilterResidential(f *frame.Frame, residentialOnly bool) *frame.Frame {
	if !residentialOnly || !f.HasColumns(ColResidential) {
		return f
	}
	return f.Filter(func(r frame.Row) bool {
		return r.Get(ColResidential).Render() != "B"
	})
}

// FilterToLocations keeps only rows whose location_id is in the footprint
// set. A nil set (resolver skipped) passes everything through.
func FilterToLocations(f *frame.Frame, locations map[string]struct{}) *frame.Frame {
	if locations == nil || !f.HasColumns(ColLocationID) {
		return f
	}
	return f.Filter(func(r frame.Row) bool {
		_, ok := locations[r.Get(ColLocationID).Render()]
		return ok
	})
}

// ExcludeProviders drops rows whose coerced provider_id is in the exclusion
// list. Rows with unparseable provider IDs are kept: an ambiguous value is
// treated as not excluded.
func ExcludeProviders(f *frame.Frame, excluded []int64) *frame.Frame {
	if len(excluded) == 0 || !f.HasColumns(ColProviderID) {
		return f
	}
	drop := make(map[int64]struct{}, len(excluded))
	for _, p := range excluded {
		drop[p] = struct{}{}
	}
	return f.Filter(func(r frame.Row) bool {
		id, ok := r.Get(ColProviderID).AsInt()
		if !ok {
			return true
		}
		_, hit := drop[id]
		return !hit
	})
}
