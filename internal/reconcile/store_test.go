package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nfl_games/reconciler/internal/models"
	"nfl_games/reconciler/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory GameStore
type memStore struct {
	mu       sync.Mutex
	docs     map[string][]*models.SeasonDocument
	dateSets int
	updates  int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]*models.SeasonDocument)}
}

func (s *memStore) add(collection, season string, games ...models.GameEntry) *models.SeasonDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := &models.SeasonDocument{
		ID:         primitive.NewObjectID(),
		Parameters: models.Parameters{Season: season},
		Games:      games,
	}
	s.docs[collection] = append(s.docs[collection], doc)
	return doc
}

func (s *memStore) game(collection string, gameID int) *models.GameEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs[collection] {
		if i := d.FindGame(gameID); i >= 0 {
			return &d.Games[i]
		}
	}
	return nil
}

func copyDoc(d *models.SeasonDocument) *models.SeasonDocument {
	c := *d
	c.Games = append([]models.GameEntry(nil), d.Games...)
	return &c
}

func (s *memStore) ListCollections(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for c := range s.docs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) FindSeason(_ context.Context, collection, season string) (*models.SeasonDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs[collection] {
		if d.Parameters.Season == season {
			return copyDoc(d), nil
		}
	}
	return nil, fmt.Errorf("%w: %s season=%s", repository.ErrSeasonNotFound, collection, season)
}

func (s *memStore) ListSeasons(_ context.Context, collection string) ([]*models.SeasonDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SeasonDocument
	for _, d := range s.docs[collection] {
		out = append(out, copyDoc(d))
	}
	return out, nil
}

func (s *memStore) MissingStageOrWeek(_ context.Context, collection string) ([]models.GameRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var refs []models.GameRef
	for _, d := range s.docs[collection] {
		for _, g := range d.Games {
			if g.Game.StageMissing() || g.Game.WeekMissing() {
				refs = append(refs, models.GameRef{Collection: collection, DocID: d.ID, Entry: g})
			}
		}
	}
	return refs, nil
}

func (s *memStore) SetGameDate(ctx context.Context, collection string, docID primitive.ObjectID, gameID int, date string) (bool, error) {
	s.mu.Lock()
	s.dateSets++
	s.mu.Unlock()
	return s.UpdateGameFields(ctx, collection, docID, gameID, models.GameUpdate{Date: &date})
}

func (s *memStore) UpdateGameFields(_ context.Context, collection string, docID primitive.ObjectID, gameID int, u models.GameUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs[collection] {
		if d.ID != docID {
			continue
		}
		i := d.FindGame(gameID)
		if i < 0 {
			break
		}
		g := &d.Games[i]
		changed := false
		apply := func(dst *string, v *string) {
			if v != nil && *dst != *v {
				*dst = *v
				changed = true
			}
		}
		if u.Stage != nil && (g.Game.Stage == nil || *g.Game.Stage != *u.Stage) {
			stage := *u.Stage
			g.Game.Stage = &stage
			changed = true
		}
		if u.Week != nil {
			if w, ok := g.Game.Week.(string); !ok || w != *u.Week {
				g.Game.Week = *u.Week
				changed = true
			}
		}
		apply(&g.Game.Date.Date, u.Date)
		apply(&g.Teams.Home.Name, u.HomeName)
		apply(&g.Teams.Home.Logo, u.HomeLogo)
		apply(&g.Teams.Away.Name, u.AwayName)
		apply(&g.Teams.Away.Logo, u.AwayLogo)
		if changed {
			s.updates++
		}
		return changed, nil
	}
	return false, fmt.Errorf("%w: %s game_id=%d", repository.ErrGameNotFound, collection, gameID)
}

func (s *memStore) UpdateWeekLabels(ctx context.Context, collection string, updates []models.WeekUpdate) (int64, error) {
	var n int64
	for _, u := range updates {
		week := u.Week
		changed, err := s.UpdateGameFields(ctx, collection, u.DocID, u.GameID, models.GameUpdate{Week: &week})
		if err != nil {
			return n, err
		}
		if changed {
			n++
		}
	}
	return n, nil
}

// entry builds a stored game between home and away with the given totals
func entry(id int, date string, season int, home, away models.TeamRef, homePts, awayPts int) models.GameEntry {
	return models.GameEntry{
		Game:   models.GameInfo{ID: id, Date: models.GameDate{Date: date}},
		League: models.League{Season: season},
		Teams:  models.Matchup{Home: home, Away: away},
		Scores: models.Scores{
			Home: models.ScoreLine{Total: models.IntPtr(homePts)},
			Away: models.ScoreLine{Total: models.IntPtr(awayPts)},
		},
	}
}
