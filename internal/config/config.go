package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ReloadMode controls how the in-memory rule and ignore snapshots are kept fresh.
type ReloadMode string

const (
	// ReloadOnMutation refreshes snapshots when a rule or ignore entry changes
	// through the admin API.
	ReloadOnMutation ReloadMode = "mutation"
	// ReloadInterval additionally refreshes snapshots on a fixed schedule,
	// which covers changes made directly against the database.
	ReloadInterval ReloadMode = "interval"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment   string
	HTTPPort      string
	DatabasePath  string
	GeoDBPath     string
	JWTSecret     string
	CacheEnabled  bool
	CacheSize     int
	RetentionDays int
	NotifyURL     string
	ReloadMode    ReloadMode
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:   getEnv("ZUUL_ENV", "development"),
		HTTPPort:      getEnv("ZUUL_HTTP_PORT", "8080"),
		DatabasePath:  getEnv("ZUUL_DB_PATH", filepath.Join("data", "zuul.db")),
		GeoDBPath:     getEnv("ZUUL_GEODB_PATH", filepath.Join("data", "GeoLite2-City.mmdb")),
		JWTSecret:     getEnv("ZUUL_JWT_SECRET", "change-me-in-production"),
		CacheEnabled:  getBoolEnv("ZUUL_CACHE_ENABLED", false),
		CacheSize:     getIntEnv("ZUUL_CACHE_SIZE", 50),
		RetentionDays: getIntEnv("ZUUL_RETENTION_DAYS", 30),
		NotifyURL:     getEnv("ZUUL_NOTIFY_URL", ""),
		ReloadMode:    ReloadMode(getEnv("ZUUL_RELOAD_MODE", string(ReloadOnMutation))),
	}

	if cfg.CacheSize < 1 {
		cfg.CacheSize = 1
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}

	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}

	return fallback
}
