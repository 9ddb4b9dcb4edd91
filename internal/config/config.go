package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// MongoDB
	MongoURI     string        `envconfig:"MONGO_DB_CONNECTION_STRING"`
	MongoDBName  string        `envconfig:"MONGO_DB_NAME" default:"nfl_games_by_year"`
	MongoTimeout time.Duration `envconfig:"MONGO_TIMEOUT" default:"10s"`

	// Local data
	TeamsFile string `envconfig:"TEAMS_FILE" default:"data/teams.json"`
	GamesDir  string `envconfig:"GAMES_DIR" default:"games_by_year_data"`
	ReportDir string `envconfig:"REPORT_DIR" default:"test_responses"`

	// pro-football-reference scraping
	PFRBaseURL    string        `envconfig:"PFR_BASE_URL" default:"https://www.pro-football-reference.com"`
	PFRTimeout    time.Duration `envconfig:"PFR_TIMEOUT" default:"30s"`
	PFRMaxRetries int           `envconfig:"PFR_MAX_RETRIES" default:"3"`
	PFRRetryDelay time.Duration `envconfig:"PFR_RETRY_DELAY" default:"2s"`
	PFRUserAgent  string        `envconfig:"PFR_USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"`

	// Seasons that "--years all" expands to when downloading
	FirstSeason int `envconfig:"FIRST_SEASON" default:"2010"`
	LastSeason  int `envconfig:"LAST_SEASON" default:"2022"`

	// Redis page cache
	CacheEnabled  bool   `envconfig:"CACHE_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	CacheTTLPages int    `envconfig:"CACHE_TTL_PAGES" default:"86400"` // 24 hours

	// Scheduler
	ReconcileCron string `envconfig:"RECONCILE_CRON" default:"0 3 * * *"`

	// Monitoring
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" default:""`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.FirstSeason > c.LastSeason {
		return fmt.Errorf("FIRST_SEASON (%d) must not be after LAST_SEASON (%d)", c.FirstSeason, c.LastSeason)
	}

	if c.PFRMaxRetries < 0 {
		return fmt.Errorf("PFR_MAX_RETRIES must not be negative")
	}

	return nil
}

// RequireMongo checks the settings needed by commands that touch the database
func (c *Config) RequireMongo() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_DB_CONNECTION_STRING is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME must not be empty")
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PageTTL returns the page cache TTL as a duration
func (c *Config) PageTTL() time.Duration {
	return time.Duration(c.CacheTTLPages) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
