package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/MichaelKoga/C2C/internal/league"
	"github.com/MichaelKoga/C2C/internal/scoring"
	"github.com/MichaelKoga/C2C/internal/store"
)

const (
	BackendLibSQL    = store.BackendLibSQL
	BackendFirestore = store.BackendFirestore
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../client/dist"`

	StoreBackend         string `env:"STORE_BACKEND" envDefault:"libsql"`
	DBPath               string `env:"DB_PATH" envDefault:"data/c2c.db"`
	GCPProjectID         string `env:"GCP_PROJECT_ID"`
	FirestoreDatabase    string `env:"FIRESTORE_DATABASE"`
	FirestoreCredentials string `env:"FIRESTORE_CREDENTIALS_FILE"`

	// RedisURL enables the standings cache. Empty disables caching.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	HandicapSince   string `env:"HANDICAP_SINCE" envDefault:"2025-07-01"`
	StandingsFilter string `env:"STANDINGS_FILTER" envDefault:"positive"`

	Videos      []string `env:"C2C_VIDEOS" envSeparator:","`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// Load reads the configuration from the environment. Values in a .env file
// in the working directory are used for variables that are not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendLibSQL:
	case BackendFirestore:
		if c.GCPProjectID == "" {
			return errors.New("GCP_PROJECT_ID is required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if _, err := league.ParseDate(c.HandicapSince); err != nil {
		return fmt.Errorf("HANDICAP_SINCE: %w", err)
	}
	if _, err := scoring.ParseFilter(c.StandingsFilter); err != nil {
		return fmt.Errorf("STANDINGS_FILTER: %w", err)
	}
	return nil
}

// HandicapSinceDate is the earliest tournament end date that offers
// handicap-adjusted standings.
func (c *Config) HandicapSinceDate() league.Date {
	return league.MustDate(c.HandicapSince)
}

func (c *Config) Filter() scoring.Filter {
	f, _ := scoring.ParseFilter(c.StandingsFilter)
	return f
}

func (c *Config) Store() store.OpenConfig {
	return store.OpenConfig{
		Backend:         c.StoreBackend,
		DBPath:          c.DBPath,
		ProjectID:       c.GCPProjectID,
		DatabaseID:      c.FirestoreDatabase,
		CredentialsFile: c.FirestoreCredentials,
	}
}
