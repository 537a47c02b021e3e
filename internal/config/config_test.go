package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/recruit-engine/internal/rarity"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "config/banners", cfg.Content.BannerDir)
	assert.Equal(t, "config/catalog.yaml", cfg.Content.CatalogPath)
	assert.Equal(t, 10*time.Second, cfg.Content.ReloadInterval)
	assert.Equal(t, 200, cfg.Engine.HistoryCap)
	assert.Equal(t, 0.5, cfg.Engine.FeaturedBias)
	assert.Equal(t, rarity.Epic, cfg.Engine.HighTier)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CONTENT_RELOAD_INTERVAL", "30s")
	t.Setenv("ENGINE_HISTORY_CAP", "50")
	t.Setenv("ENGINE_HIGH_TIER", "legendary")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Content.ReloadInterval)
	assert.Equal(t, 50, cfg.Engine.HistoryCap)
	assert.Equal(t, rarity.Legendary, cfg.Engine.HighTier)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "-1")
	_, err := Load()
	assert.ErrorContains(t, err, "SERVER_PORT")
}

func TestLoadRejectsUnknownHighTier(t *testing.T) {
	t.Setenv("ENGINE_HIGH_TIER", "shiny")
	_, err := Load()
	assert.ErrorIs(t, err, rarity.ErrUnknownTier)
}

func TestLoadRejectsBadBias(t *testing.T) {
	t.Setenv("ENGINE_FEATURED_BIAS", "1.5")
	_, err := Load()
	assert.ErrorContains(t, err, "ENGINE_FEATURED_BIAS")
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("CONTENT_RELOAD_INTERVAL", "sometimes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Content.ReloadInterval)
}
