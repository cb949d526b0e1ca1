package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/marketlens-org/marketlens/engine"
)

// ============================================================================
// RUNTIME CONFIGURATION — env vars + optional config file via Viper
// ============================================================================
// The engine itself is configured purely through functional options; this
// package is the CLI-side source of those option values. Env vars win over
// file values. Expected names: APP_ENV, LOG_LEVEL, BAND_TOP_PCT,
// AD_PLATFORMS, EXCLUDED_PLATFORMS, etc.
// ============================================================================

// Config groups the application configuration.
type Config struct {
	App    AppConfig
	Log    LogConfig
	Engine EngineConfig
}

// AppConfig is general application configuration.
type AppConfig struct {
	Env  string // development, production
	Name string
}

// LogConfig controls the zerolog setup.
type LogConfig struct {
	Level string // trace, debug, info, warn, error
}

// EngineConfig carries the engine collaborator settings.
type EngineConfig struct {
	TopPercentile     float64
	BottomPercentile  float64
	MinAbsoluteFloor  float64
	AdPlatforms       []string // platforms that support paid ads
	ExcludedPlatforms []string // platforms dropped from every aggregate
}

// Load reads configuration from env vars and an optional config file
// (config.yaml in . or ./config).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // file is optional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Engine: EngineConfig{
			TopPercentile:     v.GetFloat64("BAND_TOP_PCT"),
			BottomPercentile:  v.GetFloat64("BAND_BOTTOM_PCT"),
			MinAbsoluteFloor:  v.GetFloat64("BAND_MIN_FLOOR"),
			AdPlatforms:       splitList(v.GetString("AD_PLATFORMS")),
			ExcludedPlatforms: splitList(v.GetString("EXCLUDED_PLATFORMS")),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "marketlens")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BAND_TOP_PCT", engine.DefaultBandConfig.TopPercentile)
	v.SetDefault("BAND_BOTTOM_PCT", engine.DefaultBandConfig.BottomPercentile)
	v.SetDefault("BAND_MIN_FLOOR", engine.DefaultBandConfig.MinAbsoluteFloor)
	v.SetDefault("AD_PLATFORMS", "amazon,ebay")
	v.SetDefault("EXCLUDED_PLATFORMS", "")
}

// BandConfig maps the configured percentiles onto the engine's classifier
// settings.
func (c *Config) BandConfig() engine.BandConfig {
	return engine.BandConfig{
		TopPercentile:    c.Engine.TopPercentile,
		BottomPercentile: c.Engine.BottomPercentile,
		MinAbsoluteFloor: c.Engine.MinAbsoluteFloor,
	}
}

// AdsEligible is the capability lookup handed to the engine.
func (c *Config) AdsEligible(platform string) bool {
	platform = strings.ToLower(strings.TrimSpace(platform))
	for _, p := range c.Engine.AdPlatforms {
		if strings.ToLower(strings.TrimSpace(p)) == platform {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
