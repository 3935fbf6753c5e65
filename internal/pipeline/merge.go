package pipeline

import "bdc/internal/frame"

// StateResult is one state's processed table awaiting the merge.
type StateResult struct {
	State string
	Frame *frame.Frame
}

// Merge concatenates the per-state tables (relaxed: missing columns become
// null) and, when a rollup was requested, performs the single deferred wide
// pivot: index = rolled-up block_geoid, pivot column = provider_speed if
// present, else provider_id, else no pivot; counts are summed.
func Merge(results []StateResult, opts Options) *frame.Frame {
	frames := make([]*frame.Frame, 0, len(results))
	for _, r := range results {
		fr := r.Frame
		if opts.AttachStateName {
			fr = fr.WithConst(ColStateName, frame.Str(r.State))
		}
		frames = append(frames, fr)
	}
	merged := frame.VStack(frames...)

	if !opts.Rollup {
		return merged
	}
	switch {
	case merged.HasColumns(ColProviderSpd, ColUniqueCount):
		return merged.Pivot(ColBlockGeoid, ColProviderSpd, ColUniqueCount)
	case merged.HasColumns(ColProviderID, ColUniqueCount):
		return merged.Pivot(ColBlockGeoid, ColProviderID, ColUniqueCount)
	}
	return merged
}
