package reconcile

import (
	"context"
	"fmt"
	"time"

	"nfl_games/reconciler/internal/metrics"
	"nfl_games/reconciler/internal/seasons"
	"nfl_games/reconciler/internal/teams"

	"github.com/rs/zerolog/log"
)

// Pipeline runs the reconciliation stages over the season files and the
// game store. The stages are sequential and share the read-only team
// directory.
type Pipeline struct {
	teams   *teams.Directory
	seasons *seasons.Store
	games   GameStore
	matcher *Matcher
	report  *Report
}

// NewPipeline wires a pipeline for one run
func NewPipeline(dir *teams.Directory, store *seasons.Store, games GameStore, report *Report) *Pipeline {
	return &Pipeline{
		teams:   dir,
		seasons: store,
		games:   games,
		matcher: NewMatcher(games),
		report:  report,
	}
}

// Report returns the run's error report
func (p *Pipeline) Report() *Report {
	return p.report
}

// Run executes identity assignment, game id matching and backfill in order
func (p *Pipeline) Run(ctx context.Context, filter Filter) (Result, error) {
	start := time.Now()
	total := Result{Stage: "reconcile"}

	stages := []func(context.Context, Filter) (Result, error){
		p.AssignIdentities,
		p.AssignGameIDs,
		p.Backfill,
	}
	for _, stage := range stages {
		res, err := stage(ctx, filter)
		total.Add(res)
		if err != nil {
			metrics.RecordRun("failure", time.Since(start).Seconds())
			return total, err
		}
	}

	metrics.RecordRun("success", time.Since(start).Seconds())
	log.Info().Dur("duration", time.Since(start)).Msg(total.Summary())
	return total, nil
}

// years lists the stored seasons the filter selects
func (p *Pipeline) years(filter Filter) ([]int, error) {
	available, err := p.seasons.Years()
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return filter.SelectYears(available), nil
}

// collections lists the team collections the filter selects
func (p *Pipeline) collections(ctx context.Context, filter Filter) ([]string, error) {
	all, err := p.games.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range all {
		if filter.Collection(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// finish logs and records a stage result
func finish(res Result, start time.Time) Result {
	metrics.RecordStage(res.Stage, res.Examined, res.Updated, res.Corrected, res.Skipped, res.Unresolved, len(res.Errors))
	log.Info().Dur("duration", time.Since(start)).Msg(res.Summary())
	return res
}
