package reconcile

import (
	"context"
	"errors"
	"strconv"
	"time"

	"nfl_games/reconciler/internal/labels"
	"nfl_games/reconciler/internal/models"
	"nfl_games/reconciler/internal/seasons"

	"github.com/rs/zerolog/log"
)

// seasonIndex maps game ids to the season records that hold them
type seasonIndex map[int]*models.SeasonRecord

// Backfill copies stage, week, date, team names and logos from the season
// records into database games whose stage or week is missing. Stage and
// week are only filled when null; the date is only rewritten for a
// one-day drift. Only changed fields are written.
func (p *Pipeline) Backfill(ctx context.Context, filter Filter) (Result, error) {
	start := time.Now()
	res := Result{Stage: "bleach"}

	collections, err := p.collections(ctx, filter)
	if err != nil {
		return res, err
	}

	indexes := make(map[string]seasonIndex)
	index := func(season string) seasonIndex {
		if idx, ok := indexes[season]; ok {
			return idx
		}
		idx := p.loadIndex(season)
		indexes[season] = idx
		return idx
	}

	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		refs, err := p.games.MissingStageOrWeek(ctx, collection)
		if err != nil {
			log.Error().Err(err).Str("team", collection).Msg("Failed to query games missing stage or week")
			res.AddErrorf("%s: %v", collection, err)
			continue
		}

		for _, ref := range refs {
			season := ref.Entry.League.SeasonLabel()
			if !filter.SeasonLabel(season) {
				continue
			}
			res.Examined++

			gameID := ref.Entry.Game.ID
			rec := index(season)[gameID]
			if rec == nil {
				res.Unresolved++
				unresolved := &UnresolvedError{Team: collection, Date: ref.Entry.Game.Date.Date, Season: season, Reason: ReasonNoRecord}
				p.report.Add(unresolved, "")
				log.Warn().
					Str("team", collection).
					Str("date", unresolved.Date).
					Str("season", season).
					Int("game_id", gameID).
					Str("reason", ReasonNoRecord).
					Msg("Cannot backfill game")
				continue
			}
			if !rec.HasResult() {
				res.Skipped++
				log.Warn().Str("team", collection).Int("game_id", gameID).Str("reason", "missing winner/loser ids").Msg("Skipping game")
				continue
			}

			update := p.plan(ref.Entry, rec)
			if update.IsEmpty() {
				res.Skipped++
				continue
			}

			changed, err := p.games.UpdateGameFields(ctx, collection, ref.DocID, gameID, update)
			if err != nil {
				res.AddErrorf("%s game %d: %v", collection, gameID, err)
				log.Error().Err(err).Str("team", collection).Int("game_id", gameID).Msg("Backfill update failed")
				continue
			}
			if changed {
				res.Updated++
				if update.Date != nil {
					res.Corrected++
				}
				log.Debug().Str("team", collection).Int("game_id", gameID).Str("season", season).Msg("Game backfilled")
			}
		}
	}

	return finish(res, start), nil
}

// loadIndex indexes a season file by game id. A missing or unreadable file
// yields an empty index.
func (p *Pipeline) loadIndex(season string) seasonIndex {
	idx := make(seasonIndex)

	year, err := strconv.Atoi(season)
	if err != nil {
		log.Warn().Str("season", season).Msg("Non-numeric league season")
		return idx
	}

	records, err := p.seasons.Load(year)
	if errors.Is(err, seasons.ErrSeasonFileNotFound) {
		log.Warn().Str("season", season).Str("file", p.seasons.Path(year)).Msg("Season file not found")
		return idx
	}
	if err != nil {
		log.Error().Err(err).Str("season", season).Msg("Failed to load season file")
		return idx
	}

	for _, rec := range records {
		if rec.HasGameID() {
			idx[*rec.GameID] = rec
		}
	}
	return idx
}

// plan computes the field update of one game from its season record
func (p *Pipeline) plan(entry models.GameEntry, rec *models.SeasonRecord) models.GameUpdate {
	var u models.GameUpdate

	if entry.Game.StageMissing() && rec.Stage != "" {
		u.Stage = strPtr(rec.Stage)
	}
	if entry.Game.WeekMissing() && rec.WeekNum != "" {
		u.Week = strPtr(labels.Canonicalize(rec.WeekNum))
	}

	stored := entry.Game.Date.Date
	if labels.IsISODate(rec.GameDate) && stored != rec.GameDate {
		if days, err := labels.DaysBetween(stored, rec.GameDate); err == nil && days == 1 {
			u.Date = strPtr(rec.GameDate)
		}
	}

	winnerID, loserID := *rec.WinnerID, *rec.LoserID
	var homeName, awayName string
	var homeID, awayID int
	switch entry.Teams.Home.ID {
	case winnerID:
		homeName, awayName = rec.Winner, rec.Loser
		homeID, awayID = winnerID, loserID
	case loserID:
		homeName, awayName = rec.Loser, rec.Winner
		homeID, awayID = loserID, winnerID
	default:
		log.Debug().
			Int("game_id", entry.Game.ID).
			Int("home_id", entry.Teams.Home.ID).
			Msg("Stored teams do not match season record, leaving names")
		return u
	}

	setIfChanged := func(dst **string, current, want string) {
		if want != "" && current != want {
			*dst = strPtr(want)
		}
	}
	setIfChanged(&u.HomeName, entry.Teams.Home.Name, homeName)
	setIfChanged(&u.AwayName, entry.Teams.Away.Name, awayName)
	setIfChanged(&u.HomeLogo, entry.Teams.Home.Logo, p.teams.Logo(homeID, homeName))
	setIfChanged(&u.AwayLogo, entry.Teams.Away.Logo, p.teams.Logo(awayID, awayName))

	return u
}

func strPtr(s string) *string {
	return &s
}
