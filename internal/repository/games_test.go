//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"nfl_games/reconciler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func seedSeason(t *testing.T, ctx context.Context, db *Database, collection string) primitive.ObjectID {
	id := primitive.NewObjectID()
	doc := bson.M{
		"_id":        id,
		"parameters": bson.M{"team": 15, "season": "2015"},
		"games": bson.A{
			bson.M{
				"game":   bson.M{"id": 100, "stage": nil, "week": nil, "date": bson.M{"date": "2015-09-12"}},
				"league": bson.M{"season": 2015},
				"teams":  bson.M{"home": bson.M{"id": 15, "name": "", "logo": ""}, "away": bson.M{"id": 7, "name": "", "logo": ""}},
				"scores": bson.M{"home": bson.M{"total": 31}, "away": bson.M{"total": 23}},
			},
			bson.M{
				"game":   bson.M{"id": 101, "stage": "Regular Season", "week": 2, "date": bson.M{"date": "2015-09-20"}},
				"league": bson.M{"season": 2015},
				"teams":  bson.M{"home": bson.M{"id": 15, "name": "Green Bay Packers"}, "away": bson.M{"id": 22, "name": "Seattle Seahawks"}},
				"scores": bson.M{"home": bson.M{"total": 27}, "away": bson.M{"total": 17}},
			},
		},
	}
	_, err := db.DB.Collection(collection).InsertOne(ctx, doc)
	require.NoError(t, err)
	return id
}

func TestGameRepository_FindSeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedSeason(t, ctx, db, "Green_Bay_Packers")

	doc, err := db.Games.FindSeason(ctx, "Green_Bay_Packers", "2015")
	require.NoError(t, err)
	require.Len(t, doc.Games, 2)
	assert.Equal(t, 100, doc.Games[0].Game.ID)
	assert.True(t, doc.Games[0].Game.StageMissing())
	assert.Equal(t, "2015", doc.Games[1].League.SeasonLabel())

	week, ok := doc.Games[1].Game.WeekText()
	require.True(t, ok)
	assert.Equal(t, "2", week)

	_, err = db.Games.FindSeason(ctx, "Green_Bay_Packers", "1999")
	assert.True(t, errors.Is(err, ErrSeasonNotFound))
}

func TestGameRepository_ListCollections(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedSeason(t, ctx, db, "Green_Bay_Packers")
	seedSeason(t, ctx, db, "Chicago_Bears")

	names, err := db.Games.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicago_Bears", "Green_Bay_Packers"}, names)
}

func TestGameRepository_MissingStageOrWeek(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	docID := seedSeason(t, ctx, db, "Green_Bay_Packers")

	refs, err := db.Games.MissingStageOrWeek(ctx, "Green_Bay_Packers")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, docID, refs[0].DocID)
	assert.Equal(t, 100, refs[0].Entry.Game.ID)
}

func TestGameRepository_UpdateGameFields(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	docID := seedSeason(t, ctx, db, "Green_Bay_Packers")

	changed, err := db.Games.UpdateGameFields(ctx, "Green_Bay_Packers", docID, 100, models.GameUpdate{
		Stage:    strPtr(models.StageRegularSeason),
		Week:     strPtr("Week 1"),
		HomeName: strPtr("Green Bay Packers"),
	})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = db.Games.SetGameDate(ctx, "Green_Bay_Packers", docID, 100, "2015-09-13")
	require.NoError(t, err)
	assert.True(t, changed)

	doc, err := db.Games.FindSeason(ctx, "Green_Bay_Packers", "2015")
	require.NoError(t, err)
	assert.Equal(t, models.StageRegularSeason, *doc.Games[0].Game.Stage)
	assert.Equal(t, "Week 1", doc.Games[0].Game.Week)
	assert.Equal(t, "2015-09-13", doc.Games[0].Game.Date.Date)
	assert.Equal(t, "Green Bay Packers", doc.Games[0].Teams.Home.Name)
	// untouched neighbour
	assert.Equal(t, "2015-09-20", doc.Games[1].Game.Date.Date)

	// same values again is a no-op
	changed, err = db.Games.SetGameDate(ctx, "Green_Bay_Packers", docID, 100, "2015-09-13")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = db.Games.SetGameDate(ctx, "Green_Bay_Packers", docID, 999, "2015-09-13")
	assert.True(t, errors.Is(err, ErrGameNotFound))
}

func TestGameRepository_UpdateWeekLabels(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	docID := seedSeason(t, ctx, db, "Green_Bay_Packers")

	n, err := db.Games.UpdateWeekLabels(ctx, "Green_Bay_Packers", []models.WeekUpdate{
		{DocID: docID, GameID: 101, Week: "Week 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	docs, err := db.Games.ListSeasons(ctx, "Green_Bay_Packers")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Week 2", docs[0].Games[1].Game.Week)

	n, err = db.Games.UpdateWeekLabels(ctx, "Green_Bay_Packers", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
