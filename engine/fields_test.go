package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// FIELD REGISTRY TESTS
// ============================================================================

func TestParseFieldRef(t *testing.T) {
	cases := map[string]FieldRef{
		"revenue":        FieldRevenue,
		"Sales":          FieldRevenue,
		" margin ":       FieldMargin,
		"qty":            FieldQuantity,
		"tacos":          FieldTACoS,
		"coverdays":      FieldDaysRemaining,
		"runway":         FieldDaysRemaining,
		"agedstock":      FieldAgedStockPct,
		"channel":        FieldPlatform,
		"velocitychange": FieldVelocityChange,
		"frobnication":   FieldUnknown,
		"":               FieldUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, ParseFieldRef(name), "field %q", name)
	}
}

func TestFieldValueKindEligibility(t *testing.T) {
	sale := Candidate{Kind: KindSale, Revenue: 300, Margin: 30, Profit: 90}
	adCost := Candidate{Kind: KindAdCost, AdSpend: 15}
	refund := Candidate{Kind: KindRefund, RefundAmount: 100, Profit: 0}

	// Margin is defined for sales only.
	v, ok := FieldMargin.Value(&sale)
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)

	_, ok = FieldMargin.Value(&adCost)
	assert.False(t, ok, "ad-cost rows have no margin")
	_, ok = FieldMargin.Value(&refund)
	assert.False(t, ok, "refund rows have no margin")

	// Profit is defined for everything except refunds.
	_, ok = FieldProfit.Value(&adCost)
	assert.True(t, ok)
	_, ok = FieldProfit.Value(&refund)
	assert.False(t, ok)
}

func TestFieldValueNilTrendMetrics(t *testing.T) {
	c := Candidate{Kind: KindSale}

	_, ok := FieldOrganicShare.Value(&c)
	assert.False(t, ok, "nil organic share has no value")
	_, ok = FieldVelocityChange.Value(&c)
	assert.False(t, ok)
	_, ok = FieldMarginChange.Value(&c)
	assert.False(t, ok)

	share, mc, vc := 25.0, -10.0, 100.0
	c.OrganicShare, c.MarginChange, c.VelocityChangePct = &share, &mc, &vc

	v, ok := FieldOrganicShare.Value(&c)
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)
	v, ok = FieldMarginChange.Value(&c)
	assert.True(t, ok)
	assert.Equal(t, -10.0, v)
}

func TestFieldText(t *testing.T) {
	c := Candidate{SKU: "SKU-ALPHA", Platform: "amazon", ProductName: "Walnut Desk Organizer"}

	name, ok := FieldName.Text(&c)
	assert.True(t, ok)
	assert.Equal(t, "Walnut Desk Organizer", name)

	_, ok = FieldRevenue.Text(&c)
	assert.False(t, ok, "numeric fields carry no text")
	_, ok = FieldName.Value(&c)
	assert.False(t, ok, "text fields carry no number")
}

func TestSortValueDefaultsInapplicableToZero(t *testing.T) {
	refund := Candidate{Kind: KindRefund, Margin: 55}
	assert.Equal(t, 0.0, FieldMargin.sortValue(&refund))
	assert.Equal(t, 0.0, FieldName.sortValue(&refund))
}
