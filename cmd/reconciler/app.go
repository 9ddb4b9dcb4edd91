package main

import (
	"context"
	"time"

	"nfl_games/reconciler/internal/cache"
	"nfl_games/reconciler/internal/client"
	"nfl_games/reconciler/internal/config"
	"nfl_games/reconciler/internal/metrics"
	"nfl_games/reconciler/internal/reconcile"
	"nfl_games/reconciler/internal/repository"
	"nfl_games/reconciler/internal/seasons"
	"nfl_games/reconciler/internal/teams"

	"github.com/rs/zerolog/log"
)

// app holds the resources of one invocation. The database handle is opened
// once and released by close on every exit path.
type app struct {
	cfg    *config.Config
	files  *seasons.Store
	teams  *teams.Directory
	db     *repository.Database
	filter reconcile.Filter
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.IsDevelopment(), cfg.LogLevel)
	log.Debug().Str("env", cfg.AppEnv).Str("games_dir", cfg.GamesDir).Msg("Configuration loaded")
	return cfg, nil
}

// openApp loads configuration and the season store. The team directory is
// loaded with withDB or when --team names a team, and the database only
// with withDB.
func openApp(ctx context.Context, f *flags, withDB bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	filter, err := reconcile.NewFilter(f.years, f.team)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, files: seasons.NewStore(cfg.GamesDir), filter: filter}
	if !withDB && filter.Team == "" {
		return a, nil
	}

	a.teams, err = teams.Load(cfg.TeamsFile)
	if err != nil {
		return nil, err
	}
	a.filter, err = filter.Bind(a.teams)
	if err != nil {
		return nil, err
	}
	if !withDB {
		return a, nil
	}

	if err := cfg.RequireMongo(); err != nil {
		return nil, err
	}
	a.db, err = repository.NewDatabase(ctx, repository.Config{
		URI:     cfg.MongoURI,
		Name:    cfg.MongoDBName,
		Timeout: cfg.MongoTimeout,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.db.Close(ctx)
	}
}

// pipeline wires a reconcile pipeline with a fresh error report
func (a *app) pipeline() *reconcile.Pipeline {
	return reconcile.NewPipeline(a.teams, a.files, a.db.Games, reconcile.NewReport(time.Now()))
}

// finishRun writes the error report and pushes metrics
func (a *app) finishRun(p *reconcile.Pipeline, res reconcile.Result) {
	for _, e := range res.Errors {
		log.Error().Str("stage", res.Stage).Msg(e)
	}
	if _, err := p.Report().Write(a.cfg.ReportDir); err != nil {
		log.Error().Err(err).Msg("Failed to write error report")
	}
	if err := metrics.Push(a.cfg.PushgatewayURL, "nfl_reconciler"); err != nil {
		log.Warn().Err(err).Msg("Failed to push metrics")
	}
}

// newFetcher builds the page fetcher, with the Redis cache when reachable
func (a *app) newFetcher(ctx context.Context) (*client.Client, func()) {
	var pages client.PageCache
	closer := func() {}

	if a.cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(ctx, cache.Config{
			Addr:     a.cfg.RedisAddr(),
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			pages = redisCache
			closer = func() { _ = redisCache.Close() }
		}
	}

	c := client.NewClient(client.Config{
		BaseURL:    a.cfg.PFRBaseURL,
		UserAgent:  a.cfg.PFRUserAgent,
		Timeout:    a.cfg.PFRTimeout,
		MaxRetries: a.cfg.PFRMaxRetries,
		RetryDelay: a.cfg.PFRRetryDelay,
		CacheTTL:   a.cfg.PageTTL(),
	}, pages)
	return c, closer
}

// downloadYears expands the year filter, falling back to the configured range
func (a *app) downloadYears() []int {
	if a.filter.Years != nil {
		return a.filter.Years
	}
	var years []int
	for y := a.cfg.FirstSeason; y <= a.cfg.LastSeason; y++ {
		years = append(years, y)
	}
	return years
}

// storedYears lists the season files the filter selects
func (a *app) storedYears() ([]int, error) {
	years, err := a.files.Years()
	if err != nil {
		return nil, err
	}
	return a.filter.SelectYears(years), nil
}
