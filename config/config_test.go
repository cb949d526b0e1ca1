package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens-org/marketlens/engine"
)

// ============================================================================
// CONFIGURATION TESTS
// ============================================================================

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "marketlens", cfg.App.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, engine.DefaultBandConfig, cfg.BandConfig())
	assert.Equal(t, []string{"amazon", "ebay"}, cfg.Engine.AdPlatforms)
	assert.Empty(t, cfg.Engine.ExcludedPlatforms)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BAND_MIN_FLOOR", "500")
	t.Setenv("AD_PLATFORMS", "amazon, walmart ,")
	t.Setenv("EXCLUDED_PLATFORMS", "etsy")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500.0, cfg.BandConfig().MinAbsoluteFloor)
	assert.Equal(t, []string{"amazon", "walmart"}, cfg.Engine.AdPlatforms, "list entries are trimmed")
	assert.Equal(t, []string{"etsy"}, cfg.Engine.ExcludedPlatforms)
}

func TestAdsEligible(t *testing.T) {
	cfg := &Config{Engine: EngineConfig{AdPlatforms: []string{"Amazon", "ebay"}}}

	assert.True(t, cfg.AdsEligible("amazon"))
	assert.True(t, cfg.AdsEligible(" EBAY "))
	assert.False(t, cfg.AdsEligible("etsy"))
	assert.False(t, cfg.AdsEligible(""))
}
