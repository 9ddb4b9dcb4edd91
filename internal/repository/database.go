package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database holds the MongoDB client and provides access to repositories
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database

	// Repositories
	Games *GameRepository
}

// Config holds database configuration
type Config struct {
	URI     string
	Name    string
	Timeout time.Duration
}

// NewDatabase connects to MongoDB and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Test connection
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("database", cfg.Name).
		Msg("Successfully connected to database")

	db := &Database{
		Client: client,
		DB:     client.Database(cfg.Name),
	}
	db.Games = &GameRepository{db: db}

	return db, nil
}

// Close disconnects the client
func (db *Database) Close(ctx context.Context) {
	if db.Client == nil {
		return
	}
	if err := db.Client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to disconnect from database")
		return
	}
	log.Info().Msg("Database connection closed")
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
