package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================
// Capability lookups (ads eligibility, platform exclusion) and the sort
// context are external collaborators; the engine never derives them itself.
// ============================================================================

// GroupDim selects the first-level rollup dimension.
type GroupDim int

const (
	GroupAuto    GroupDim = iota // channel→SKU for sales/refunds, SKU→channel for deep-dive/inventory
	GroupChannel                 // channel→SKU
	GroupSKU                     // SKU→channel
)

// SortContext carries the query-context booleans that pick the default
// group ordering when the intent has no explicit sort. They are derived
// from the original free-text query by the intent package and passed in
// here — the engine never re-derives them.
type SortContext struct {
	AgedStock    bool
	OrganicShare bool
	ReturnRate   bool
	Inventory    bool
	Volume       bool
	AdDependency bool
	Margin       bool
}

// BandConfig tunes the volume-band classifier.
type BandConfig struct {
	TopPercentile    float64 // top N% of group totals → BandTop
	BottomPercentile float64 // bottom N% → BandBottom
	MinAbsoluteFloor float64 // max total below this → whole set low volume
}

// DefaultBandConfig is used when no WithBandConfig option is given.
var DefaultBandConfig = BandConfig{
	TopPercentile:    20,
	BottomPercentile: 20,
	MinAbsoluteFloor: 100,
}

// Option configures engine behavior via functional options.
type Option func(*config)

type config struct {
	Logger       zerolog.Logger
	Now          func() time.Time
	AdsEligible  func(platform string) bool
	Excluded     map[string]bool
	Bands        BandConfig
	GroupBy      GroupDim
	SortContext  SortContext
}

// WithLogger attaches a structured logger. Default is a no-op logger so
// library consumers pay nothing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.Logger = l }
}

// WithNow fixes the clock used to resolve relative time windows.
func WithNow(now func() time.Time) Option {
	return func(c *config) { c.Now = now }
}

// WithAdsEligibility sets the capability lookup deciding whether a platform
// supports paid ads. Default: no platform is ad-eligible.
func WithAdsEligibility(fn func(platform string) bool) Option {
	return func(c *config) { c.AdsEligible = fn }
}

// WithExcludedPlatforms drops the named platforms' rows before any
// accumulation pass.
func WithExcludedPlatforms(platforms []string) Option {
	return func(c *config) {
		c.Excluded = make(map[string]bool, len(platforms))
		for _, p := range platforms {
			c.Excluded[normalizeKey(p)] = true
		}
	}
}

// WithBandConfig overrides the volume-band classifier thresholds.
func WithBandConfig(b BandConfig) Option {
	return func(c *config) { c.Bands = b }
}

// WithGroupDimension overrides the first-level rollup dimension.
func WithGroupDimension(d GroupDim) Option {
	return func(c *config) { c.GroupBy = d }
}

// WithSortContext passes in the externally derived query context used for
// default group ordering.
func WithSortContext(sc SortContext) Option {
	return func(c *config) { c.SortContext = sc }
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:      zerolog.Nop(),
		Now:         time.Now,
		AdsEligible: func(string) bool { return false },
		Bands:       DefaultBandConfig,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) excluded(platform string) bool {
	if len(c.Excluded) == 0 {
		return false
	}
	return c.Excluded[normalizeKey(platform)]
}
