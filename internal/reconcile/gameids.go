package reconcile

import (
	"context"
	"errors"
	"time"

	"nfl_games/reconciler/internal/labels"
	"nfl_games/reconciler/internal/models"

	"github.com/rs/zerolog/log"
)

// AssignGameIDs matches every season record that has team ids but no game
// id against the winner's collection and stores the matched game id.
// A game id, once assigned, is never reassigned.
func (p *Pipeline) AssignGameIDs(ctx context.Context, filter Filter) (Result, error) {
	start := time.Now()
	res := Result{Stage: "match"}

	years, err := p.years(filter)
	if err != nil {
		return res, err
	}

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		records, err := p.seasons.Load(year)
		if err != nil {
			log.Error().Err(err).Int("season", year).Msg("Failed to load season file")
			res.AddErrorf("season %d: %v", year, err)
			continue
		}

		file := p.seasons.Path(year)
		assigned := make(map[int]struct{})
		for _, rec := range records {
			if rec.HasGameID() {
				assigned[*rec.GameID] = struct{}{}
			}
		}

		changed := false
		for _, rec := range records {
			if rec.HasGameID() || !filter.Record(rec) {
				continue
			}
			if !rec.HasResult() || !labels.IsISODate(rec.GameDate) {
				res.Skipped++
				log.Warn().
					Str("file", file).
					Str("date", rec.GameDate).
					Str("winner", rec.Winner).
					Str("loser", rec.Loser).
					Str("reason", "missing winner/loser ids or date").
					Msg("Skipping record")
				continue
			}

			collection, ok := p.teams.CollectionFor(*rec.WinnerID)
			if !ok {
				res.Skipped++
				log.Warn().Str("file", file).Int("winner_id", *rec.WinnerID).Str("reason", "unknown winner id").Msg("Skipping record")
				continue
			}
			res.Examined++

			match, err := p.matcher.Match(ctx, collection, rec)
			if err == nil {
				if _, taken := assigned[match.GameID]; taken {
					err = &UnresolvedError{Team: collection, Date: rec.GameDate, Season: rec.Season, Reason: ReasonAlreadyAssigned}
				} else {
					// the stored date is only rewritten for a game this record keeps
					err = p.matcher.Apply(ctx, match)
				}
			}

			var unresolved *UnresolvedError
			if errors.As(err, &unresolved) {
				res.Unresolved++
				p.report.Add(unresolved, rec.Loser)
				log.Warn().
					Str("team", unresolved.Team).
					Str("date", unresolved.Date).
					Str("season", unresolved.Season).
					Str("file", file).
					Str("reason", unresolved.Reason).
					Msg("Unable to find game id")
				continue
			}
			if err != nil {
				res.AddErrorf("%s %s: %v", collection, rec.GameDate, err)
				log.Error().Err(err).Str("team", collection).Str("date", rec.GameDate).Msg("Game lookup failed")
				continue
			}

			rec.GameID = models.IntPtr(match.GameID)
			assigned[match.GameID] = struct{}{}
			res.Updated++
			if match.Corrected {
				res.Corrected++
			}
			changed = true

			log.Debug().
				Str("team", collection).
				Str("date", rec.GameDate).
				Str("season", match.Season).
				Int("game_id", match.GameID).
				Str("rule", match.Rule).
				Msg("Assigned game id")
		}

		if changed {
			if err := p.seasons.Save(year, records); err != nil {
				log.Error().Err(err).Str("file", file).Msg("Failed to save season file")
				res.AddErrorf("season %d: %v", year, err)
			}
		}
	}

	return finish(res, start), nil
}
