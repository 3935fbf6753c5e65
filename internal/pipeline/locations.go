package pipeline

import "bdc/internal/frame"

// ResolveLocationSet derives the set of location_id values served by any of
// the anchor providers, optionally restricted to rows whose technology is in
// techs. Provider matching coerces the provider_id column to an integer on a
// best-effort basis; unparseable cells never match.
//
// With no anchor providers, or when the frame lacks provider_id or
// location_id, the resolver reports skip=true and the membership filter
// downstream degrades to a no-op. A technology restriction against a frame
// without technology_code_desc is a hard error: guessing would silently
// widen the footprint.
func ResolveLocationSet(f *frame.Frame, providers []int64, techs []string) (set map[string]struct{}, skip bool, err error) {
	if len(providers) == 0 {
		return nil, true, nil
	}
	if !f.HasColumns(ColProviderID, ColLocationID) {
		return nil, true, nil
	}

	anchors := make(map[int64]struct{}, len(providers))
	for _, p := range providers {
		anchors[p] = struct{}{}
	}
	base := f.Filter(func(r frame.Row) bool {
		id, ok := r.Get(ColProviderID).AsInt()
		if !ok {
			return false
		}
		_, hit := anchors[id]
		return hit
	}).Distinct(ColLocationID)

	if len(techs) == 0 {
		return base, false, nil
	}
	if !f.HasColumns(ColTechnology) {
		return nil, false, &MissingColumnError{Op: "resolve provider footprint", Column: ColTechnology}
	}
	allowed := make(map[string]struct{}, len(techs))
	for _, t := range techs {
		allowed[t] = struct{}{}
	}
	subset := f.Filter(func(r frame.Row) bool {
		if _, ok := base[r.Get(ColLocationID).Render()]; !ok {
			return false
		}
		_, ok := allowed[r.Get(ColTechnology).Render()]
		return ok
	}).Distinct(ColLocationID)
	return subset, false, nil
}
