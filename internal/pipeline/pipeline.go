// Package pipeline implements the filter/aggregation core: footprint
// resolution, row filters, the grouped count aggregation, geography rollup,
// and the cross-state merge. Processing is per state, one technology at a
// time; only the file downloads inside one combination run in parallel.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bdc/internal/bdcapi"
	"bdc/internal/frame"
)

// Source supplies the availability manifest and decoded file tables. The
// network client in bdcapi implements it; tests substitute fixtures.
type Source interface {
	AvailabilityFiles(ctx context.Context, asOfDate string) ([]bdcapi.FileEntry, error)
	FetchFile(ctx context.Context, fileID string) (*frame.Frame, error)
}

// Result is the outcome of a full run.
type Result struct {
	Merged   *frame.Frame
	Warnings []Warning
	States   []string // states that contributed rows, in input order
}

// Runner drives one download-and-process run.
type Runner struct {
	Source      Source
	Opts        Options
	Log         *zap.Logger
	Concurrency int // parallel downloads within one (state, technology); default 4
}

// Run downloads and processes every (state, technology) combination for one
// as-of date and merges the per-state results. Fatal errors abort the whole
// run with no output; empty combinations are recorded as warnings. If every
// combination is empty the run fails with ErrNoData.
func (r *Runner) Run(ctx context.Context, asOfDate string, states, technologies []string) (*Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	if len(states) == 0 || len(technologies) == 0 {
		return nil, fmt.Errorf("run needs at least one state and one technology")
	}

	manifest, err := r.Source.AvailabilityFiles(ctx, asOfDate)
	if err != nil {
		return nil, err
	}
	fixed := selectFixedBroadband(manifest)

	res := &Result{}
	var stateResults []StateResult
	for _, state := range states {
		var perTech []*frame.Frame
		for _, tech := range technologies {
			entries := entriesFor(fixed, state, tech)
			if len(entries) == 0 {
				res.warnf(state, tech, "no files in manifest")
				continue
			}
			log.Info("downloading availability files",
				zap.String("state", state),
				zap.String("technology", tech),
				zap.Int("files", len(entries)))
			f, err := r.download(ctx, entries, tech)
			if err != nil {
				return nil, err
			}
			perTech = append(perTech, f)
		}
		combined := frame.VStack(perTech...)
		if combined.IsEmpty() {
			res.warnf(state, "", "no rows downloaded")
			continue
		}

		processed, err := r.processState(ctx, state, combined, fixed)
		if err != nil {
			return nil, err
		}
		if processed.IsEmpty() {
			res.warnf(state, "", "no rows left after filtering")
			continue
		}
		stateResults = append(stateResults, StateResult{State: state, Frame: processed})
		res.States = append(res.States, state)
		log.Info("state processed",
			zap.String("state", state),
			zap.Int("rows", processed.NumRows()))
	}

	if len(stateResults) == 0 {
		return nil, ErrNoData
	}
	res.Merged = Merge(stateResults, r.Opts)
	log.Info("merge complete",
		zap.Int("states", len(stateResults)),
		zap.Int("rows", res.Merged.NumRows()),
		zap.Int("columns", len(res.Merged.Columns())))
	return res, nil
}

// processState runs the per-state stage chain on one combined raw table.
func (r *Runner) processState(ctx context.Context, state string, combined *frame.Frame, fixed []bdcapi.FileEntry) (*frame.Frame, error) {
	f := FilterResidential(combined, r.Opts.ResidentialOnly)

	if len(r.Opts.AnchorProviders) > 0 {
		set, skip, err := r.resolveFootprint(ctx, state, f, fixed)
		if err != nil {
			return nil, err
		}
		if !skip {
			f = FilterToLocations(f, set)
		}
	}

	f = ExcludeProviders(f, r.Opts.ExcludedProviders)
	f = Aggregate(f, r.Opts.GroupOnSpeed, r.Opts.GroupOnTechnology)
	f = FilterGeoids(f, r.Opts.GeoidAllowList)
	if r.Opts.Rollup {
		f = Rollup(f, r.Opts.RollupLevel, r.Opts.GroupOnSpeed, r.Opts.GroupOnTechnology)
	}
	return f, nil
}

// resolveFootprint derives the anchor-provider location set, either from the
// primary table in place or, in the secondary-fetch variant, from a parallel
// download restricted to the anchor technologies (defaulting to the Cable /
// Copper / Fiber to the Premises triple).
func (r *Runner) resolveFootprint(ctx context.Context, state string, primary *frame.Frame, fixed []bdcapi.FileEntry) (map[string]struct{}, bool, error) {
	if !r.Opts.SecondaryFootprint {
		return ResolveLocationSet(primary, r.Opts.AnchorProviders, r.Opts.AnchorTechs)
	}

	techs := r.Opts.AnchorTechs
	if len(techs) == 0 {
		techs = DefaultFootprintTechs
	}
	var perTech []*frame.Frame
	for _, tech := range techs {
		entries := entriesFor(fixed, state, tech)
		if len(entries) == 0 {
			continue
		}
		f, err := r.download(ctx, entries, tech)
		if err != nil {
			return nil, false, err
		}
		perTech = append(perTech, f)
	}
	footprint := frame.VStack(perTech...)
	// Technology already restricted by the download selection.
	return ResolveLocationSet(footprint, r.Opts.AnchorProviders, nil)
}

// download fetches every manifest entry in parallel and stacks the decoded
// tables, stamping the technology description onto files that lack the
// column.
func (r *Runner) download(ctx context.Context, entries []bdcapi.FileEntry, tech string) (*frame.Frame, error) {
	conc := r.Concurrency
	if conc <= 0 {
		conc = 4
	}
	frames := make([]*frame.Frame, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conc)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			f, err := r.Source.FetchFile(gctx, e.FileID)
			if err != nil {
				return err
			}
			if !f.HasColumns(ColTechnology) {
				f = f.WithConst(ColTechnology, frame.Str(tech))
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frame.VStack(frames...), nil
}

// selectFixedBroadband keeps state-level fixed-broadband manifest entries.
// Entries whose type or category fields came back empty are kept, mirroring
// the tolerance for partially populated manifests.
func selectFixedBroadband(entries []bdcapi.FileEntry) []bdcapi.FileEntry {
	out := make([]bdcapi.FileEntry, 0, len(entries))
	for _, e := range entries {
		if e.TechnologyType != "" && e.TechnologyType != "Fixed Broadband" {
			continue
		}
		if e.Category != "" && e.Category != "State" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func entriesFor(entries []bdcapi.FileEntry, state, tech string) []bdcapi.FileEntry {
	var out []bdcapi.FileEntry
	for _, e := range entries {
		if e.StateName == state && e.TechnologyCodeDesc == tech {
			out = append(out, e)
		}
	}
	return out
}

func (r *Result) warnf(state, tech, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{
		State:      state,
		Technology: tech,
		Message:    fmt.Sprintf(format, args...),
	})
}
