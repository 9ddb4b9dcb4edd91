package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nfl_games/reconciler/internal/models"
	"nfl_games/reconciler/internal/teams"

	"github.com/rs/zerolog/log"
)

// AssignIdentities annotates season records that have no game id yet with
// team ids, and derives winner and loser of pre-season games from the score.
func (p *Pipeline) AssignIdentities(ctx context.Context, filter Filter) (Result, error) {
	start := time.Now()
	res := Result{Stage: "assign"}

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

		changed := false
		for _, rec := range records {
			if rec.HasGameID() || !filter.Record(rec) {
				continue
			}
			res.Examined++

			before := rec.Key()
			if err := AssignIdentity(p.teams, year, rec); err != nil {
				res.Skipped++
				log.Warn().
					Err(err).
					Int("season", year).
					Str("date", rec.GameDate).
					Str("reason", err.Error()).
					Msg("Skipping record")
				continue
			}
			if rec.Key() != before {
				res.Updated++
				changed = true
			}
		}

		if changed {
			if err := p.seasons.Save(year, records); err != nil {
				log.Error().Err(err).Int("season", year).Msg("Failed to save season file")
				res.AddErrorf("season %d: %v", year, err)
			}
		}
	}

	return finish(res, start), nil
}

var (
	// errMissingScore marks a pre-season record whose points cannot be compared
	errMissingScore = errors.New("missing or non-numeric score")
	// errMissingTeams marks a pre-season record without both teams
	errMissingTeams = errors.New("pre-season record without home and visitor")
)

// AssignIdentity resolves the team ids of one record. Every present team
// name must resolve, otherwise the record is left untouched and the
// resolution error is returned. A tied pre-season score is flagged and
// leaves winner and loser unset.
func AssignIdentity(dir *teams.Directory, year int, rec *models.SeasonRecord) error {
	resolve := func(name string) (*int, error) {
		if name == "" {
			return nil, nil
		}
		t, err := dir.Resolve(name)
		if err != nil {
			return nil, err
		}
		return models.IntPtr(t.ID), nil
	}

	homeID, err := resolve(rec.HomeTeam)
	if err != nil {
		return err
	}
	visitorID, err := resolve(rec.VisitorTeam)
	if err != nil {
		return err
	}

	winner, loser := rec.Winner, rec.Loser
	flag := rec.Flag
	if rec.IsPreSeason() && (winner == "" || loser == "") {
		if homeID == nil || visitorID == nil {
			return errMissingTeams
		}
		home, herr := strconv.Atoi(strings.TrimSpace(rec.PointsOpp))
		visitor, verr := strconv.Atoi(strings.TrimSpace(rec.Points))
		if herr != nil || verr != nil {
			return fmt.Errorf("%w: points=%q points_opp=%q", errMissingScore, rec.Points, rec.PointsOpp)
		}
		switch {
		case home > visitor:
			winner, loser = rec.HomeTeam, rec.VisitorTeam
		case visitor > home:
			winner, loser = rec.VisitorTeam, rec.HomeTeam
		default:
			winner, loser = "", ""
			flag = models.FlagTiedScore
		}
	}

	winnerID, err := resolve(winner)
	if err != nil {
		return err
	}
	loserID, err := resolve(loser)
	if err != nil {
		return err
	}

	rec.Season = strconv.Itoa(year)
	rec.HomeTeamID = homeID
	rec.VisitorTeamID = visitorID
	rec.Winner, rec.Loser = winner, loser
	rec.WinnerID, rec.LoserID = winnerID, loserID
	rec.Flag = flag

	if flag == models.FlagTiedScore {
		log.Warn().
			Int("season", year).
			Str("date", rec.GameDate).
			Str("home", rec.HomeTeam).
			Str("visitor", rec.VisitorTeam).
			Str("reason", models.FlagTiedScore).
			Msg("Tied pre-season score flagged for manual resolution")
	}
	return nil
}
