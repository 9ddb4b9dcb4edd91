package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"nfl_games/reconciler/internal/metrics"
	"nfl_games/reconciler/internal/models"
	"nfl_games/reconciler/internal/reconcile"
	"nfl_games/reconciler/internal/scheduler"
	"nfl_games/reconciler/internal/seasons"
	"nfl_games/reconciler/internal/teams"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withApp runs fn with an opened app and releases it afterwards
func withApp(f *flags, withDB bool, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, f, withDB)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

type stage func(p *reconcile.Pipeline) func(context.Context, reconcile.Filter) (reconcile.Result, error)

// runStage runs one pipeline stage and finishes the run
func runStage(f *flags, pick stage) error {
	return withApp(f, true, func(ctx context.Context, a *app) error {
		p := a.pipeline()
		res, err := pick(p)(ctx, a.filter)
		a.finishRun(p, res)
		return err
	})
}

func downloadCmd(f *flags) *cobra.Command {
	var preseason bool
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download season schedules from pro-football-reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(f, false, func(ctx context.Context, a *app) error {
				fetcher, closeCache := a.newFetcher(ctx)
				defer closeCache()

				failed := 0
				for _, year := range a.downloadYears() {
					if err := ctx.Err(); err != nil {
						return err
					}

					var (
						records []*models.SeasonRecord
						err     error
					)
					if preseason {
						records, err = fetcher.FetchPreseason(ctx, year)
					} else {
						records, err = fetcher.FetchSeason(ctx, year)
					}
					if err != nil {
						failed++
						metrics.RecordError("download", "fetch")
						log.Error().Err(err).Int("season", year).Msg("Failed to download season")
						continue
					}
					if len(records) == 0 {
						log.Warn().Int("season", year).Msg("No games found")
						continue
					}
					if _, err := a.files.Merge(year, records); err != nil {
						failed++
						log.Error().Err(err).Int("season", year).Str("file", a.files.Path(year)).Msg("Failed to store season")
					}
				}

				if err := metrics.Push(a.cfg.PushgatewayURL, "nfl_reconciler"); err != nil {
					log.Warn().Err(err).Msg("Failed to push metrics")
				}
				if failed > 0 {
					return fmt.Errorf("%d season(s) failed to download", failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&preseason, "preseason", false, "Download the pre-season schedule instead")
	return cmd
}

func scrubCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "scrub",
		Short: "Deduplicate and normalize the season files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(f, false, func(ctx context.Context, a *app) error {
				years, err := a.storedYears()
				if err != nil {
					return err
				}

				var selected seasons.Selector
				if a.filter.Team != "" {
					selected = a.filter.Record
				}

				total := 0
				for _, year := range years {
					changes, err := a.files.ScrubYear(year, selected)
					if err != nil {
						log.Error().Err(err).Int("season", year).Msg("Failed to scrub season file")
						continue
					}
					total += changes
				}
				log.Info().Int("seasons", len(years)).Int("changes", total).Msg("Scrub complete")
				return nil
			})
		},
	}
}

func assignCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "assign",
		Short: "Resolve team ids and pre-season winners in the season files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(f, func(p *reconcile.Pipeline) func(context.Context, reconcile.Filter) (reconcile.Result, error) {
				return p.AssignIdentities
			})
		},
	}
}

func matchCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Assign database game ids to season records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(f, func(p *reconcile.Pipeline) func(context.Context, reconcile.Filter) (reconcile.Result, error) {
				return p.AssignGameIDs
			})
		},
	}
}

func bleachCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "bleach",
		Short: "Backfill missing stage and week fields in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(f, func(p *reconcile.Pipeline) func(context.Context, reconcile.Filter) (reconcile.Result, error) {
				return p.Backfill
			})
		},
	}
}

func reconcileCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run assign, match and bleach in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(f, func(p *reconcile.Pipeline) func(context.Context, reconcile.Filter) (reconcile.Result, error) {
				return p.Run
			})
		},
	}
}

func normalizeWeeksCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize-weeks",
		Short: `Rewrite numeric week labels to "Week N"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(f, func(p *reconcile.Pipeline) func(context.Context, reconcile.Filter) (reconcile.Result, error) {
				return p.NormalizeWeeks
			})
		},
	}
}

func checkCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Count database games still missing stage or week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(f, true, func(ctx context.Context, a *app) error {
				counts, err := a.pipeline().Check(ctx, a.filter)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				writeMissing(w, counts)
				return w.Flush()
			})
		},
	}
}

// writeMissing prints the missing counts per team and season, then the total
func writeMissing(w io.Writer, counts reconcile.MissingCounts) {
	fmt.Fprintln(w, "TEAM\tSEASON\tMISSING")
	for _, team := range counts.Teams() {
		for _, season := range counts.Seasons(team) {
			fmt.Fprintf(w, "%s\t%s\t%d\n", teams.DisplayName(team), season, counts[team][season])
		}
	}
	fmt.Fprintf(w, "TOTAL\t\t%d\n", counts.Total())
}

func scheduleCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run reconcile on RECONCILE_CRON until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(f, true, func(ctx context.Context, a *app) error {
				sched := scheduler.NewScheduler(a.cfg.ReconcileCron, func(ctx context.Context) error {
					if err := a.db.Health(ctx); err != nil {
						metrics.RecordError("schedule", "database")
						return fmt.Errorf("skipping run: %w", err)
					}
					p := a.pipeline()
					res, err := p.Run(ctx, a.filter)
					a.finishRun(p, res)
					return err
				})
				if err := sched.Start(ctx); err != nil {
					return err
				}

				<-ctx.Done()
				log.Info().Msg("Received shutdown signal, gracefully shutting down...")
				sched.Stop()
				return nil
			})
		},
	}
}
