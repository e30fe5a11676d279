package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MichaelKoga/C2C/internal/scoring"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if cfg.StoreBackend != BackendLibSQL {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendLibSQL)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cfg.CacheTTL)
	}
	if got := cfg.HandicapSinceDate().String(); got != "2025-07-01" {
		t.Errorf("HandicapSinceDate = %q, want 2025-07-01", got)
	}
	if cfg.Filter() != scoring.FilterPositiveTotal {
		t.Errorf("Filter = %q, want positive", cfg.Filter())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("C2C_VIDEOS", "abc123,def456")
	t.Setenv("STANDINGS_FILTER", "entered")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if len(cfg.Videos) != 2 || cfg.Videos[1] != "def456" {
		t.Errorf("Videos = %v", cfg.Videos)
	}
	if cfg.Filter() != scoring.FilterAnyEntered {
		t.Errorf("Filter = %q, want entered", cfg.Filter())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variable for the process; restore it afterwards.
	t.Setenv("HTTP_ADDR", "")
	os.Unsetenv("HTTP_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORE_BACKEND": "mongo"}},
		{name: "firestore without project", env: map[string]string{"STORE_BACKEND": "firestore", "GCP_PROJECT_ID": ""}},
		{name: "bad handicap date", env: map[string]string{"HANDICAP_SINCE": "July"}},
		{name: "bad filter", env: map[string]string{"STANDINGS_FILTER": "negative"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestStoreConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "firestore")
	t.Setenv("GCP_PROJECT_ID", "c2c-league")
	t.Setenv("FIRESTORE_CREDENTIALS_FILE", "/secrets/sa.json")
	t.Setenv("CORS_ORIGINS", "https://c2c.example,http://localhost:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc := cfg.Store()
	if sc.Backend != BackendFirestore || sc.ProjectID != "c2c-league" || sc.CredentialsFile != "/secrets/sa.json" {
		t.Errorf("Store() = %+v", sc)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://localhost:5173" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}
