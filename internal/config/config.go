// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/xtding233/recruit-engine/internal/rarity"
)

// Config is the full server configuration.
type Config struct {
	Server      ServerConfig
	Content     ContentConfig
	Engine      EngineConfig
	Environment string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ContentConfig struct {
	// BannerDir holds the banner YAML files (plus optional defaults.yaml).
	BannerDir string
	// CatalogPath is the character catalog YAML file.
	CatalogPath string
	// ReloadInterval is the banner-file polling interval; zero disables
	// hot reload.
	ReloadInterval time.Duration
}

type EngineConfig struct {
	// SQLitePath is the state database; empty selects in-memory storage.
	SQLitePath    string
	HistoryCap    int
	FeaturedBias  float64
	HighTier      rarity.Tier
	CommitRetries int
}

// Load reads configuration from the environment. A .env file is applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	highTier := rarity.Epic
	if s := getEnv("ENGINE_HIGH_TIER", ""); s != "" {
		t, err := rarity.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("ENGINE_HIGH_TIER: %w", err)
		}
		highTier = t
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Content: ContentConfig{
			BannerDir:      getEnv("CONTENT_BANNER_DIR", "config/banners"),
			CatalogPath:    getEnv("CONTENT_CATALOG_PATH", "config/catalog.yaml"),
			ReloadInterval: getEnvAsDuration("CONTENT_RELOAD_INTERVAL", 10*time.Second),
		},
		Engine: EngineConfig{
			SQLitePath:    getEnv("ENGINE_SQLITE_PATH", ""),
			HistoryCap:    getEnvAsInt("ENGINE_HISTORY_CAP", 200),
			FeaturedBias:  getEnvAsFloat("ENGINE_FEATURED_BIAS", 0.5),
			HighTier:      highTier,
			CommitRetries: getEnvAsInt("ENGINE_COMMIT_RETRIES", 2),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port)
	}
	if c.Content.BannerDir == "" {
		return fmt.Errorf("CONTENT_BANNER_DIR is required")
	}
	if c.Content.CatalogPath == "" {
		return fmt.Errorf("CONTENT_CATALOG_PATH is required")
	}
	if c.Engine.FeaturedBias < 0 || c.Engine.FeaturedBias > 1 {
		return fmt.Errorf("ENGINE_FEATURED_BIAS must be in [0,1]")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return v
}
