package reconcile

import (
	"context"
	"time"

	"nfl_games/reconciler/internal/labels"
	"nfl_games/reconciler/internal/models"

	"github.com/rs/zerolog/log"
)

// NormalizeWeeks rewrites bare numeric week values ("3" or 3) to "Week 3"
// across every selected collection. Named rounds are left alone.
func (p *Pipeline) NormalizeWeeks(ctx context.Context, filter Filter) (Result, error) {
	start := time.Now()
	res := Result{Stage: "normalize-weeks"}

	collections, err := p.collections(ctx, filter)
	if err != nil {
		return res, err
	}

	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		docs, err := p.games.ListSeasons(ctx, collection)
		if err != nil {
			log.Error().Err(err).Str("team", collection).Msg("Failed to load seasons")
			res.AddErrorf("%s: %v", collection, err)
			continue
		}

		updates := WeekUpdates(docs, filter)
		res.Examined += countGames(docs)
		if len(updates) == 0 {
			continue
		}

		modified, err := p.games.UpdateWeekLabels(ctx, collection, updates)
		if err != nil {
			log.Error().Err(err).Str("team", collection).Msg("Failed to update week labels")
			res.AddErrorf("%s: %v", collection, err)
			continue
		}
		res.Updated += int(modified)

		log.Info().Str("team", collection).Int64("modified", modified).Msg("Week labels normalized")
	}

	return finish(res, start), nil
}

// WeekUpdates lists the games of docs whose week is a bare number
func WeekUpdates(docs []*models.SeasonDocument, filter Filter) []models.WeekUpdate {
	var updates []models.WeekUpdate
	for _, doc := range docs {
		for _, g := range doc.Games {
			if !filter.SeasonLabel(seasonOf(doc, g)) {
				continue
			}
			week, ok := g.Game.WeekText()
			if !ok {
				continue
			}
			display := labels.DisplayWeek(week)
			if display == week {
				continue
			}
			updates = append(updates, models.WeekUpdate{DocID: doc.ID, GameID: g.Game.ID, Week: display})
		}
	}
	return updates
}

func seasonOf(doc *models.SeasonDocument, g models.GameEntry) string {
	if s := g.League.SeasonLabel(); s != "" {
		return s
	}
	return doc.Parameters.Season
}

func countGames(docs []*models.SeasonDocument) int {
	n := 0
	for _, d := range docs {
		n += len(d.Games)
	}
	return n
}
