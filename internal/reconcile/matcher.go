package reconcile

import (
	"context"
	"errors"
	"strconv"

	"nfl_games/reconciler/internal/labels"
	"nfl_games/reconciler/internal/metrics"
	"nfl_games/reconciler/internal/models"
	"nfl_games/reconciler/internal/repository"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Match rules
const (
	RuleExact    = "exact"
	RuleOffset   = "offset"
	RuleIdentity = "identity"
)

// Unresolved reasons
const (
	ReasonUnparseableDate = "unparseable date"
	ReasonNoSeason        = "no season document"
	ReasonNoMatch         = "no match by date or result"
	ReasonAmbiguous       = "ambiguous identity match"
	ReasonAlreadyAssigned = "game id already assigned"
	ReasonNoRecord        = "no season record for game id"
)

// dateOffsets is the order dates are tried in around the scraped date
var dateOffsets = []int{0, -1, 1}

// MatchResult is a database game tied to a season record
type MatchResult struct {
	Collection string
	Season     string
	DocID      primitive.ObjectID
	GameID     int
	Rule       string
	// StoredDate is the date held by the database when it differs from the
	// scraped one. Apply rewrites it.
	StoredDate string
	// Corrected is set once Apply has rewritten the stored date
	Corrected bool

	date string
	game *models.GameEntry
}

// NeedsCorrection reports whether the stored date is off by a day
func (r *MatchResult) NeedsCorrection() bool {
	return r.StoredDate != "" && !r.Corrected
}

// Matcher locates database games by team and date. Season documents are
// cached for the lifetime of the matcher and kept in sync with the date
// corrections applied through it. Matching itself never writes.
type Matcher struct {
	games GameStore
	docs  map[string]*models.SeasonDocument
}

// NewMatcher creates a matcher over a game store
func NewMatcher(games GameStore) *Matcher {
	return &Matcher{games: games, docs: make(map[string]*models.SeasonDocument)}
}

func (m *Matcher) season(ctx context.Context, collection, season string) (*models.SeasonDocument, error) {
	key := collection + "/" + season
	if doc, ok := m.docs[key]; ok {
		return doc, nil
	}

	doc, err := m.games.FindSeason(ctx, collection, season)
	if errors.Is(err, repository.ErrSeasonNotFound) {
		m.docs[key] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.docs[key] = doc
	return doc, nil
}

// FindByDate searches the team's season document of the date's year, then
// of the prior year, for a game on the date or one day either side. A game
// found off by a day is returned with its StoredDate set; the correction is
// left to Apply. It returns the match, or nil, and the season documents it
// searched.
func (m *Matcher) FindByDate(ctx context.Context, collection, date string) (*MatchResult, []*models.SeasonDocument, error) {
	year, err := labels.Year(date)
	if err != nil {
		return nil, nil, err
	}

	var searched []*models.SeasonDocument
	for _, season := range []int{year, year - 1} {
		label := strconv.Itoa(season)
		doc, err := m.season(ctx, collection, label)
		if err != nil {
			return nil, searched, err
		}
		if doc == nil {
			log.Debug().Str("team", collection).Str("season", label).Msg("No season document")
			continue
		}
		searched = append(searched, doc)

		for _, offset := range dateOffsets {
			target, err := labels.ShiftDate(date, offset)
			if err != nil {
				return nil, searched, err
			}
			idx := gameOn(doc, target)
			if idx < 0 {
				continue
			}

			game := &doc.Games[idx]
			match := &MatchResult{
				Collection: collection,
				Season:     label,
				DocID:      doc.ID,
				GameID:     game.Game.ID,
				Rule:       RuleExact,
			}
			if offset != 0 {
				match.Rule = RuleOffset
				match.StoredDate = target
				match.date = date
				match.game = game
			}
			return match, searched, nil
		}
	}
	return nil, searched, nil
}

// Match ties a season record to a game in the collection. Date matching is
// tried first; failing that, the games of the searched season documents are
// compared by their implied winner and loser ids. Several identity
// candidates are settled by the closest date, and a tie leaves the record
// unresolved. Unresolved records return an *UnresolvedError.
func (m *Matcher) Match(ctx context.Context, collection string, rec *models.SeasonRecord) (*MatchResult, error) {
	unresolved := func(reason string) error {
		return &UnresolvedError{Team: collection, Date: rec.GameDate, Season: rec.Season, Reason: reason}
	}

	match, searched, err := m.FindByDate(ctx, collection, rec.GameDate)
	var dateErr *labels.DateParseError
	if errors.As(err, &dateErr) {
		return nil, unresolved(ReasonUnparseableDate)
	}
	if err != nil {
		return nil, err
	}
	if match != nil {
		return match, nil
	}
	if len(searched) == 0 {
		return nil, unresolved(ReasonNoSeason)
	}
	if !rec.HasResult() {
		return nil, unresolved(ReasonNoMatch)
	}

	type candidate struct {
		doc  *models.SeasonDocument
		game *models.GameEntry
		days int
	}
	var candidates []candidate
	for _, doc := range searched {
		for i := range doc.Games {
			g := &doc.Games[i]
			winnerID, loserID, ok := g.Result()
			if !ok || winnerID != *rec.WinnerID || loserID != *rec.LoserID {
				continue
			}
			days, err := labels.DaysBetween(g.Game.Date.Date, rec.GameDate)
			if err != nil {
				days = -1
			}
			candidates = append(candidates, candidate{doc: doc, game: g, days: days})
		}
	}

	if len(candidates) == 0 {
		return nil, unresolved(ReasonNoMatch)
	}

	best := 0
	if len(candidates) > 1 {
		best = -1
		tied := false
		for i, c := range candidates {
			if c.days < 0 {
				continue
			}
			switch {
			case best < 0 || c.days < candidates[best].days:
				best, tied = i, false
			case c.days == candidates[best].days:
				tied = true
			}
		}
		if best < 0 || tied {
			log.Warn().
				Str("team", collection).
				Str("date", rec.GameDate).
				Str("season", rec.Season).
				Int("candidates", len(candidates)).
				Str("reason", ReasonAmbiguous).
				Msg("Identity fallback found several games")
			return nil, unresolved(ReasonAmbiguous)
		}
	}

	c := candidates[best]
	return &MatchResult{
		Collection: collection,
		Season:     c.doc.Parameters.Season,
		DocID:      c.doc.ID,
		GameID:     c.game.Game.ID,
		Rule:       RuleIdentity,
	}, nil
}

// Apply writes a pending date correction to the store and the cached
// season document. Matches without one are left untouched.
func (m *Matcher) Apply(ctx context.Context, match *MatchResult) error {
	if !match.NeedsCorrection() {
		return nil
	}
	if _, err := m.games.SetGameDate(ctx, match.Collection, match.DocID, match.GameID, match.date); err != nil {
		return err
	}
	match.game.Game.Date.Date = match.date
	match.Corrected = true
	metrics.RecordDateCorrection(match.Collection)

	log.Info().
		Str("team", match.Collection).
		Str("season", match.Season).
		Int("game_id", match.GameID).
		Str("from", match.StoredDate).
		Str("date", match.date).
		Msg("Corrected stored game date")
	return nil
}

// gameOn returns the index of the game stored on date, or -1
func gameOn(doc *models.SeasonDocument, date string) int {
	for i := range doc.Games {
		if doc.Games[i].Game.Date.Date == date {
			return i
		}
	}
	return -1
}
