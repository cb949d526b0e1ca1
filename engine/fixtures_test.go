package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// SHARED TEST FIXTURES
// ============================================================================
// One seller, three SKUs, three platforms. The clock is pinned so a "30d"
// window always resolves to [2026-01-30, 2026-03-01] with the previous
// window [2025-12-30, 2026-01-30).
// ============================================================================

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func day(month, d int) time.Time {
	return time.Date(2026, time.Month(month), d, 12, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fptr(v float64) *float64 { return &v }

func dptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testCatalog() []Product {
	return []Product{
		{
			SKU:           "SKU-ALPHA",
			Name:          "Walnut Desk Organizer",
			CostPrice:     dec("45"),
			FeePct:        15,
			FulfilmentFee: dec("5"),
			StockLevel:    120,
			Aliases:       []string{"Premium Walnut Desk Organiser (UK)"},
		},
		{
			SKU:           "SKU-BETA",
			Name:          "Bamboo Phone Stand",
			CostPrice:     dec("3"),
			FeePct:        15,
			FulfilmentFee: dec("2"),
			StockLevel:    40,
		},
		{
			SKU:           "SKU-GAMMA",
			Name:          "Steel Water Bottle",
			CostPrice:     dec("8"),
			FeePct:        10,
			FulfilmentFee: dec("2.50"),
			StockLevel:    300,
		},
	}
}

func testLedgers() Ledgers {
	return Ledgers{
		Catalog: testCatalog(),
		Sales: []SalesRecord{
			// Current window.
			{SKU: "SKU-ALPHA", Platform: "amazon", Date: day(2, 10), UnitPrice: dec("100"), Quantity: 3, Margin: fptr(30), AdSpend: dec("30")},
			{SKU: "SKU-ALPHA", Platform: "ebay", Date: day(2, 15), UnitPrice: dec("100"), Quantity: 1, Margin: fptr(20)},
			{SKU: "SKU-BETA", Platform: "amazon", Date: day(2, 20), UnitPrice: dec("20"), Quantity: 10, Margin: fptr(50)},
			{SKU: "SKU-GAMMA", Platform: "etsy", Date: day(2, 5), UnitPrice: dec("25"), Quantity: 4, Margin: fptr(40)},
			// Standalone ad cost booked in the sales ledger.
			{SKU: "SKU-ALPHA", Platform: "amazon", Date: day(2, 25), AdSpend: dec("15")},
			// Refund booked as a negative-quantity sale.
			{SKU: "SKU-BETA", Platform: "amazon", Date: day(2, 22), UnitPrice: dec("20"), Quantity: -1, Margin: fptr(50)},
			// Previous window.
			{SKU: "SKU-ALPHA", Platform: "amazon", Date: day(1, 10), UnitPrice: dec("100"), Quantity: 2, Margin: fptr(40), AdSpend: dec("10")},
			{SKU: "SKU-BETA", Platform: "amazon", Date: day(1, 5), UnitPrice: dec("20"), Quantity: 5, Margin: fptr(50)},
			// Out of both windows.
			{SKU: "SKU-GAMMA", Platform: "etsy", Date: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), UnitPrice: dec("25"), Quantity: 10, Margin: fptr(40)},
		},
		Refunds: []RefundRecord{
			{SKU: "SKU-ALPHA", Platform: "amazon", Date: day(2, 18), RefundAmount: dec("100"), Quantity: 1, Reason: "damaged"},
			{SKU: "SKU-GAMMA", Platform: "etsy", Date: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), RefundAmount: dec("25"), Quantity: 1},
		},
		Inventory: []InventorySnapshot{
			{
				SKU: "SKU-ALPHA", ProductName: "Walnut Desk Organizer",
				StockLevel: 120, AvgDailyVelocity: 4, PrevDailyVelocity: 2, AgedStockQty: 30,
				Channels: []ChannelStat{
					{Channel: "amazon", DailyVelocity: 3},
					{Channel: "ebay", DailyVelocity: 1},
				},
			},
			{
				SKU: "SKU-BETA", ProductName: "Bamboo Phone Stand",
				StockLevel: 40, AvgDailyVelocity: 0, PrevDailyVelocity: 1, AgedStockQty: 0,
			},
		},
	}
}

// marketplaceAds mirrors the production capability lookup: amazon and ebay
// support paid ads, everything else does not.
func marketplaceAds(platform string) bool {
	switch normalizeKey(platform) {
	case "amazon", "ebay":
		return true
	}
	return false
}

// testConfig builds the engine config the pipeline stages take, with the
// pinned clock and the marketplace ads lookup applied on top of any extra
// options.
func testConfig(opts ...Option) *config {
	base := []Option{WithNow(fixedNow), WithAdsEligibility(marketplaceAds)}
	return applyOptions(append(base, opts...))
}

// salesIntent30d is the baseline intent most scenarios start from.
func salesIntent30d() SearchIntent {
	return SearchIntent{
		TargetDataset: DatasetSales,
		TimeRange:     TimeRange{Relative: "30d"},
	}
}

// window30d resolves the baseline window against the pinned clock.
func window30d() Window {
	return ResolveWindow(TimeRange{Relative: "30d"}, testNow)
}
