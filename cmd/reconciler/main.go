// Command reconciler scrapes NFL season schedules into per-year JSON files
// and reconciles them with the per-team game collections in MongoDB.
//
// Usage:
//
//	reconciler download --years 2015-2018 [--preseason]
//	reconciler scrub --years all
//	reconciler reconcile --years 2015 --team "Green Bay Packers"
//	reconciler normalize-weeks
//	reconciler check --years 2010-2022
//	reconciler schedule
package main

import (
	"errors"
	"os"
	"time"

	"nfl_games/reconciler/internal/teams"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// flags shared by every subcommand
type flags struct {
	years string
	team  string
}

func main() {
	// replaced by the configured logger once a command loads its config
	env := os.Getenv("APP_ENV")
	setupLogger(env == "" || env == "development", os.Getenv("LOG_LEVEL"))

	var f flags
	root := &cobra.Command{
		Use:           "reconciler",
		Short:         "NFL season record scraper and MongoDB reconciler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.years, "years", "all", `Seasons: "all", "2015", "2015-2018" or "2015,2017-2018"`)
	root.PersistentFlags().StringVar(&f.team, "team", "all", `Team display name, or "all"`)

	root.AddCommand(downloadCmd(&f))
	root.AddCommand(scrubCmd(&f))
	root.AddCommand(assignCmd(&f))
	root.AddCommand(matchCmd(&f))
	root.AddCommand(bleachCmd(&f))
	root.AddCommand(reconcileCmd(&f))
	root.AddCommand(normalizeWeeksCmd(&f))
	root.AddCommand(checkCmd(&f))
	root.AddCommand(scheduleCmd(&f))

	if err := root.Execute(); err != nil {
		if errors.Is(err, teams.ErrReferenceData) {
			log.Fatal().Err(err).Msg("Cannot run without team reference data")
		}
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// setupLogger configures the zerolog logger
func setupLogger(development bool, lvl string) {
	// Pretty console logging in development
	if development {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}
