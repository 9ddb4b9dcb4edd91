package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"nfl_games/reconciler/internal/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrSeasonNotFound is returned when a team has no document for a season
	ErrSeasonNotFound = errors.New("season document not found")
	// ErrGameNotFound is returned when a positional update matches no game
	ErrGameNotFound = errors.New("game not found")
)

// GameRepository handles the per-team season documents. Each team is one
// collection holding one document per season with an embedded games array.
type GameRepository struct {
	db *Database
}

// ListCollections returns the team collections, sorted
func (r *GameRepository) ListCollections(ctx context.Context) ([]string, error) {
	names, err := r.db.DB.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	out := names[:0]
	for _, n := range names {
		if strings.HasPrefix(n, "system.") {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// FindSeason loads a team's document for one season
func (r *GameRepository) FindSeason(ctx context.Context, collection, season string) (*models.SeasonDocument, error) {
	var doc models.SeasonDocument
	err := r.db.DB.Collection(collection).
		FindOne(ctx, bson.M{"parameters.season": season}).
		Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s season=%s", ErrSeasonNotFound, collection, season)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season %s of %s: %w", season, collection, err)
	}

	return &doc, nil
}

// ListSeasons loads every season document of a team
func (r *GameRepository) ListSeasons(ctx context.Context, collection string) ([]*models.SeasonDocument, error) {
	cursor, err := r.db.DB.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons of %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []*models.SeasonDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode seasons of %s: %w", collection, err)
	}
	return docs, nil
}

// unwound is one games element after $unwind
type unwound struct {
	ID    primitive.ObjectID `bson:"_id"`
	Games models.GameEntry   `bson:"games"`
}

// MissingStageOrWeek returns the games of a team whose stage or week is null or empty
func (r *GameRepository) MissingStageOrWeek(ctx context.Context, collection string) ([]models.GameRef, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$games"}},
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"games.game.stage": nil},
			bson.M{"games.game.stage": ""},
			bson.M{"games.game.week": nil},
			bson.M{"games.game.week": ""},
		}}}},
	}

	cursor, err := r.db.DB.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var rows []unwound
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}

	refs := make([]models.GameRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, models.GameRef{Collection: collection, DocID: row.ID, Entry: row.Games})
	}

	log.Debug().Str("team", collection).Int("games", len(refs)).Msg("Games missing stage or week")
	return refs, nil
}

func gameFilter(docID primitive.ObjectID, gameID int) bson.M {
	return bson.M{"_id": docID, "games.game.id": gameID}
}

// SetGameDate rewrites the stored date of one game. It reports whether the
// document was modified.
func (r *GameRepository) SetGameDate(ctx context.Context, collection string, docID primitive.ObjectID, gameID int, date string) (bool, error) {
	return r.UpdateGameFields(ctx, collection, docID, gameID, models.GameUpdate{Date: &date})
}

// UpdateGameFields applies a targeted positional update to one game
func (r *GameRepository) UpdateGameFields(ctx context.Context, collection string, docID primitive.ObjectID, gameID int, update models.GameUpdate) (bool, error) {
	set := bson.M{}
	put := func(field string, v *string) {
		if v != nil {
			set["games.$."+field] = *v
		}
	}
	put("game.stage", update.Stage)
	put("game.week", update.Week)
	put("game.date.date", update.Date)
	put("teams.home.name", update.HomeName)
	put("teams.home.logo", update.HomeLogo)
	put("teams.away.name", update.AwayName)
	put("teams.away.logo", update.AwayLogo)
	if len(set) == 0 {
		return false, nil
	}

	res, err := r.db.DB.Collection(collection).UpdateOne(ctx, gameFilter(docID, gameID), bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update game %d in %s: %w", gameID, collection, err)
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("%w: %s game_id=%d", ErrGameNotFound, collection, gameID)
	}

	log.Debug().
		Str("team", collection).
		Int("game_id", gameID).
		Int64("modified", res.ModifiedCount).
		Msg("Game fields updated")

	return res.ModifiedCount > 0, nil
}

// UpdateWeekLabels rewrites week labels in one bulk write and returns the
// number of modified documents.
func (r *GameRepository) UpdateWeekLabels(ctx context.Context, collection string, updates []models.WeekUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(gameFilter(u.DocID, u.GameID)).
			SetUpdate(bson.M{"$set": bson.M{"games.$.game.week": u.Week}}))
	}

	res, err := r.db.DB.Collection(collection).BulkWrite(ctx, writes)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update weeks in %s: %w", collection, err)
	}
	return res.ModifiedCount, nil
}
