// Package reconcile ties scraped season records to the authoritative game
// records of the database and copies fields between the two.
package reconcile

import (
	"context"

	"nfl_games/reconciler/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameStore is the per-team game storage the pipeline reads and patches.
// FindSeason returns an error wrapping repository.ErrSeasonNotFound when a
// team has no document for the season.
type GameStore interface {
	ListCollections(ctx context.Context) ([]string, error)
	FindSeason(ctx context.Context, collection, season string) (*models.SeasonDocument, error)
	ListSeasons(ctx context.Context, collection string) ([]*models.SeasonDocument, error)
	MissingStageOrWeek(ctx context.Context, collection string) ([]models.GameRef, error)
	SetGameDate(ctx context.Context, collection string, docID primitive.ObjectID, gameID int, date string) (bool, error)
	UpdateGameFields(ctx context.Context, collection string, docID primitive.ObjectID, gameID int, update models.GameUpdate) (bool, error)
	UpdateWeekLabels(ctx context.Context, collection string, updates []models.WeekUpdate) (int64, error)
}
