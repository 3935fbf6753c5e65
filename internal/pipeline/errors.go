package pipeline

import (
	"errors"
	"fmt"
)

// MissingColumnError reports that a column required by an explicitly
// requested operation is absent from the downloaded data. It aborts the run;
// optional stages skip silently instead of raising it.
type MissingColumnError struct {
	Op     string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q is missing from the dataset", e.Op, e.Column)
}

// ErrNoData terminates a run in which every (state, technology) combination
// came back empty. No output file is produced.
var ErrNoData = errors.New("no data returned for any state/technology combination")

// Warning records a non-fatal per-combination condition, typically an empty
// manifest selection or an empty download. Warnings accumulate on the run
// result and never stop processing.
type Warning struct {
	State      string
	Technology string
	Message    string
}

func (w Warning) String() string {
	if w.Technology == "" {
		return fmt.Sprintf("%s: %s", w.State, w.Message)
	}
	return fmt.Sprintf("%s / %s: %s", w.State, w.Technology, w.Message)
}
