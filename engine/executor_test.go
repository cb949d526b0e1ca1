package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// EXECUTOR TESTS — end-to-end pipeline scenarios
// ============================================================================

func execute(t *testing.T, intent SearchIntent, opts ...Option) *Result {
	t.Helper()
	base := []Option{WithNow(fixedNow), WithAdsEligibility(marketplaceAds)}
	res, err := Execute(intent, testLedgers(), append(base, opts...)...)
	require.NoError(t, err)
	return res
}

func TestExecuteSales30Days(t *testing.T) {
	res := execute(t, salesIntent30d())

	assert.Len(t, res.Candidates, 7)
	assert.Len(t, res.Groups, 3)
	assert.Equal(t, "last 30 days", res.TimeLabel)
	assert.False(t, res.LowVolume)

	// The flat list and the tree describe the same records: total revenue
	// across groups equals total revenue across sale candidates.
	var flat, grouped float64
	for _, c := range res.Candidates {
		flat += c.Revenue
	}
	for _, g := range res.Groups {
		grouped += g.TotalRevenue
	}
	assert.InDelta(t, flat, grouped, 1e-9)

	// Contribution shares cover the whole matching set.
	var contribution float64
	for _, c := range res.Candidates {
		contribution += c.ContributionPct
	}
	assert.InDelta(t, 100, contribution, 1e-9)
}

func TestExecuteLimitBoundsSKUs(t *testing.T) {
	intent := salesIntent30d()
	intent.Limit = 2
	res := execute(t, intent)

	assert.Len(t, res.Candidates, 6, "all rows of the top-2 SKUs survive")
	skus := map[string]bool{}
	for _, c := range res.Candidates {
		skus[c.SKU] = true
	}
	assert.Len(t, skus, 2)
	assert.NotContains(t, skus, "SKU-GAMMA")
}

func TestExecuteMarginFilterSkipsAdCostRows(t *testing.T) {
	intent := salesIntent30d()
	intent.Filters = []Filter{{Field: "margin", Operator: OpLT, Value: "0"}}
	res := execute(t, intent)

	// No sale in the fixture has a negative margin, and the standalone
	// ad-cost row must not slip through on its zero margin.
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.Groups)
}

func TestExecuteUnknownFilterFieldMatchesNothing(t *testing.T) {
	intent := salesIntent30d()
	intent.Filters = []Filter{{Field: "blorbitude", Operator: OpGT, Value: "0"}}
	res := execute(t, intent)

	assert.Empty(t, res.Candidates)
}

func TestExecuteInventoryDataset(t *testing.T) {
	res := execute(t, SearchIntent{TargetDataset: DatasetInventory, TimeRange: TimeRange{Relative: "30d"}})

	require.Len(t, res.Groups, 2)
	for _, g := range res.Groups {
		assert.NotEmpty(t, g.CoverLabel)
	}
}

func TestExecuteLowVolumeFlag(t *testing.T) {
	cfg := DefaultBandConfig
	cfg.MinAbsoluteFloor = 10000
	res := execute(t, salesIntent30d(), WithBandConfig(cfg))

	assert.True(t, res.LowVolume)
	for _, g := range res.Groups {
		assert.Equal(t, BandLowVolume, g.Band)
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	intent := salesIntent30d()
	intent.Limit = 2

	first := execute(t, intent)
	second := execute(t, intent)
	assert.Equal(t, first.Candidates, second.Candidates)
	assert.Equal(t, first.Groups, second.Groups)
}

func TestExecuteEmptyLedgers(t *testing.T) {
	res, err := Execute(salesIntent30d(), Ledgers{}, WithNow(fixedNow))
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.Groups)
	assert.False(t, res.LowVolume)
}

// ============================================================================
// INTENT NORMALIZATION
// ============================================================================

func TestNormalizeIntent(t *testing.T) {
	got := NormalizeIntent(SearchIntent{
		TargetDataset: "catalogue",
		Limit:         -3,
		Sort:          &SortSpec{Field: "revenue", Direction: "downwards"},
	})

	assert.Equal(t, DatasetSales, got.TargetDataset, "unknown dataset falls back to sales")
	assert.Equal(t, 0, got.Limit)
	assert.Equal(t, "desc", got.Sort.Direction, "anything but asc means desc")

	got = NormalizeIntent(SearchIntent{Sort: &SortSpec{}})
	assert.Nil(t, got.Sort, "empty sort field drops the sort")
}
