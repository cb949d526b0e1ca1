package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// METRIC CALCULATOR TESTS
// ============================================================================

func TestUnitMargin(t *testing.T) {
	// 150 − 45 cost − 20% fee (30) − 30 fulfilment = 45 net → 30%.
	assert.InDelta(t, 30, UnitMargin(150, 45, 20, 30), 1e-9)

	// Zero price never divides.
	assert.Equal(t, 0.0, UnitMargin(0, 45, 20, 30))

	// Costs above price go negative, not NaN.
	assert.Less(t, UnitMargin(10, 45, 20, 30), 0.0)
}

func TestProfitFromMargin(t *testing.T) {
	assert.InDelta(t, 45, ProfitFromMargin(150, 30), 1e-9)
	assert.Equal(t, 0.0, ProfitFromMargin(0, 30))
}

func TestCoverDays(t *testing.T) {
	assert.InDelta(t, 30, CoverDays(120, 4), 1e-9)
	assert.Equal(t, float64(coverDaysSentinel), CoverDays(120, 0), "zero velocity is the sentinel, not Inf")
	assert.Equal(t, float64(coverDaysSentinel), CoverDays(120, -1))
}

func TestCoverLabel(t *testing.T) {
	assert.Equal(t, "30 days", CoverLabel(30))
	assert.Equal(t, "1 day", CoverLabel(1.2))
	assert.Equal(t, ">2y", CoverLabel(800))
	assert.Equal(t, "no sales", CoverLabel(coverDaysSentinel))
}

func TestVelocityChangePct(t *testing.T) {
	assert.InDelta(t, 50, velocityChangePct(15, 10), 1e-9)
	assert.InDelta(t, -40, velocityChangePct(6, 10), 1e-9)

	// Rise from a zero baseline reads as +100, not Inf.
	assert.Equal(t, 100.0, velocityChangePct(5, 0))
	assert.Equal(t, 0.0, velocityChangePct(0, 0))
}

func TestPctGuardsDenominator(t *testing.T) {
	assert.InDelta(t, 25, pct(1, 4), 1e-9)
	assert.Equal(t, 0.0, pct(1, 0))
}

func TestSafeNum(t *testing.T) {
	assert.Equal(t, 0.0, safeNum(math.NaN()))
	assert.Equal(t, 0.0, safeNum(math.Inf(1)))
	assert.Equal(t, 0.0, safeNum(math.Inf(-1)))
	assert.Equal(t, 1.5, safeNum(1.5))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "sku-alpha", normalizeKey("  SKU-Alpha "))
}

func TestRoundTo2(t *testing.T) {
	assert.Equal(t, 15.38, RoundTo2(15.384615))
	assert.Equal(t, 3.15, RoundTo2(3.1451))
}
