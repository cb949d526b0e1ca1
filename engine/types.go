package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// ENGINE TYPES — Marketplace Seller Analytics
// ============================================================================
// Three typed ledgers (sales, refunds, inventory snapshots) joined against a
// product catalog by SKU. Money-bearing input fields are decimal.Decimal;
// the engine converts to float64 once, at accumulation time, and every
// derived ratio and rollup total is float64.
// ============================================================================

// ============================================================================
// SEARCH INTENT — Contract between the translator and the engine
// ============================================================================

// Dataset selects which ledger a query targets.
type Dataset string

const (
	DatasetSales     Dataset = "sales"
	DatasetInventory Dataset = "inventory"
	DatasetRefunds   Dataset = "refunds"
	DatasetDeepDive  Dataset = "deep-dive"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpGT       Operator = ">"
	OpLT       Operator = "<"
	OpGTE      Operator = ">="
	OpLTE      Operator = "<="
	OpEQ       Operator = "="
	OpContains Operator = "CONTAINS"
)

// Filter is a single field predicate. Filters AND-combine: a record must
// pass every filter to qualify.
type Filter struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// SortSpec names the active sort field and direction.
type SortSpec struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // "asc" or "desc"
}

// TimeRange is either a relative window ("30d") or an absolute start date
// (ISO "2006-01-02", open-ended).
type TimeRange struct {
	Relative string `json:"relative,omitempty"`
	Absolute string `json:"absolute,omitempty"`
}

// SearchIntent defines what the engine should compute.
// An external translator produces this; the engine consumes it.
type SearchIntent struct {
	TargetDataset Dataset   `json:"targetDataset"`
	Filters       []Filter  `json:"filters,omitempty"`
	Sort          *SortSpec `json:"sort,omitempty"`
	Limit         int       `json:"limit,omitempty"` // 0 = all SKUs
	TimeRange     TimeRange `json:"timeRange"`
	Query         string    `json:"query,omitempty"` // original free text, informational
}

// ============================================================================
// LEDGERS — Read-only input rows
// ============================================================================

// SalesRecord is one sales-ledger row: a genuine sale (UnitPrice > 0) or a
// standalone ad-cost entry (UnitPrice == 0, AdSpend > 0). The kind is
// assigned once, during the candidate pass, never inferred downstream.
type SalesRecord struct {
	SKU       string           `json:"sku"`
	Platform  string           `json:"platform"`
	Date      time.Time        `json:"date"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Quantity  int              `json:"quantity"`
	Margin    *float64         `json:"margin,omitempty"` // explicit %, overrides catalog-derived
	Profit    *decimal.Decimal `json:"profit,omitempty"` // explicit, overrides revenue×margin
	AdSpend   decimal.Decimal  `json:"adSpend"`
}

// RefundRecord is one refund-ledger row. Quantity is positive.
type RefundRecord struct {
	SKU          string          `json:"sku"`
	Platform     string          `json:"platform"`
	Date         time.Time       `json:"date"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	Quantity     int             `json:"quantity"`
	Reason       string          `json:"reason,omitempty"`
}

// ChannelStat is the per-channel breakdown carried on an inventory snapshot.
type ChannelStat struct {
	Channel       string          `json:"channel"`
	Alias         string          `json:"alias,omitempty"` // channel listing title
	DailyVelocity float64         `json:"dailyVelocity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
}

// InventorySnapshot is one inventory-ledger row.
type InventorySnapshot struct {
	SKU               string        `json:"sku"`
	ProductName       string        `json:"productName"`
	StockLevel        int           `json:"stockLevel"`
	AvgDailyVelocity  float64       `json:"avgDailyVelocity"`
	PrevDailyVelocity float64       `json:"prevDailyVelocity"`
	AgedStockQty      int           `json:"agedStockQty"`
	Channels          []ChannelStat `json:"channels,omitempty"`
}

// Product is the catalog record every ledger row joins against by SKU.
type Product struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	FeePct        float64         `json:"feePct"` // platform fee, % of unit price
	FulfilmentFee decimal.Decimal `json:"fulfilmentFee"`
	ReturnRate    float64         `json:"returnRate"` // catalog lifetime %, not period
	StockLevel    int             `json:"stockLevel"`
	Aliases       []string        `json:"aliases,omitempty"` // per-channel listing titles
}

// Ledgers bundles the read-only inputs for one query execution.
// The engine never mutates any of these slices.
type Ledgers struct {
	Sales     []SalesRecord
	Refunds   []RefundRecord
	Inventory []InventorySnapshot
	Catalog   []Product
}

// ============================================================================
// RECORD KIND — Tagged classification, assigned exactly once
// ============================================================================

// RecordKind tags a candidate with the ledger-entry variant it came from.
type RecordKind int

const (
	KindSale RecordKind = iota
	KindAdCost
	KindRefund
	KindSnapshot
)

func (k RecordKind) String() string {
	switch k {
	case KindSale:
		return "sale"
	case KindAdCost:
		return "ad_cost"
	case KindRefund:
		return "refund"
	case KindSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// ============================================================================
// PERIOD STATS — Per-SKU totals, rebuilt every query
// ============================================================================

// PeriodStats accumulates one SKU's current- and previous-window totals.
// Scoped to a single query execution; never cached across calls.
type PeriodStats struct {
	CurrentRevenue float64
	CurrentQty     float64
	RefundTotal    float64
	RefundQty      float64
	OrganicQty     float64
	AdEligibleQty  float64

	PrevRevenue float64
	PrevQty     float64
	PrevProfit  float64
}

// ============================================================================
// CANDIDATE — One annotated row per qualifying ledger record
// ============================================================================

// Candidate is one qualifying ledger record with all entity-joined and
// derived metrics attached. Built once, never mutated afterwards.
// Trend fields are nil when the query window is unbounded (no previous
// period exists to compare against).
type Candidate struct {
	Kind        RecordKind `json:"kind"`
	SKU         string     `json:"sku"`
	Platform    string     `json:"platform,omitempty"`
	ProductName string     `json:"productName"`
	Date        time.Time  `json:"date,omitempty"`

	UnitPrice    float64 `json:"unitPrice"`
	Quantity     float64 `json:"quantity"`
	Revenue      float64 `json:"revenue"`
	Profit       float64 `json:"profit"`
	Margin       float64 `json:"margin"` // % — meaningful for sales only
	AdSpend      float64 `json:"adSpend"`
	RefundAmount float64 `json:"refundAmount,omitempty"`
	Reason       string  `json:"reason,omitempty"`

	CostPrice  float64 `json:"costPrice"`
	StockLevel float64 `json:"stockLevel"`

	// Share of the grand total revenue across the final matching set.
	ContributionPct float64 `json:"contributionPct"`

	// Period-derived, shared by every candidate of the same SKU.
	PeriodReturnRate  float64  `json:"periodReturnRate"`
	OrganicShare      *float64 `json:"organicShare,omitempty"` // nil when no ad-eligible qty
	TACoS             float64  `json:"tacos"`
	DaysRemaining     float64  `json:"daysRemaining"`
	AgedStockPct      float64  `json:"agedStockPct"`
	MarginChange      *float64 `json:"marginChange,omitempty"`
	VelocityChangePct *float64 `json:"velocityChangePct,omitempty"`

	// Previous-window carry for rollup-level PoP deltas.
	PrevRevenue float64 `json:"prevRevenue,omitempty"`
	PrevQty     float64 `json:"prevQty,omitempty"`
	PrevProfit  float64 `json:"prevProfit,omitempty"`
	HasPrev     bool    `json:"hasPrev"`

	// Channel listing titles from the joined product, used by name filters.
	aliases []string
}

// ============================================================================
// ROLLUP TREE — TopGroup → SubGroup → items
// ============================================================================

// Totals is the weighted-aggregate block shared by both rollup levels.
// Refund-kind rows feed the refund totals only; sale and ad-cost rows feed
// revenue/profit/quantity/ad-spend.
type Totals struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalProfit      float64 `json:"totalProfit"`
	TotalQty         float64 `json:"totalQty"`
	TotalAdSpend     float64 `json:"totalAdSpend"`
	AdEnabledRevenue float64 `json:"adEnabledRevenue"`

	TotalRefundAmount float64 `json:"totalRefundAmount"`
	TotalRefundQty    float64 `json:"totalRefundQty"`

	WeightedMargin       float64  `json:"weightedMargin"`
	TACoS                float64  `json:"tacos"`
	OrganicShare         *float64 `json:"organicShare,omitempty"`
	PeriodReturnRate     float64  `json:"periodReturnRate"`
	WeightedMarginChange *float64 `json:"weightedMarginChange,omitempty"`
	VelocityChangePct    *float64 `json:"velocityChangePct,omitempty"`

	// Inventory-target groups carry stock-cover instead of revenue totals.
	StockLevel       float64 `json:"stockLevel,omitempty"`
	AvgDailyVelocity float64 `json:"avgDailyVelocity,omitempty"`
	CoverDays        float64 `json:"coverDays,omitempty"`
	CoverLabel       string  `json:"coverLabel,omitempty"`
	AgedStockPct     float64 `json:"agedStockPct,omitempty"`

	// Previous-window sums (first record per unique SKU, to avoid double
	// counting across multiple transaction rows of the same SKU).
	prevRevenue float64
	prevQty     float64
	prevProfit  float64
	hasPrev     bool
	prevSeen    map[string]bool
}

// SubGroup is a second-level rollup node keyed by the dimension
// complementary to its parent's.
type SubGroup struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Items []Candidate `json:"items"`
	Totals
}

// Band classifies a top-level group's volume for display badges.
type Band string

const (
	BandTop       Band = "top"
	BandMiddle    Band = "middle"
	BandBottom    Band = "bottom"
	BandLowVolume Band = "low_volume"
)

// TopGroup is a first-level rollup node (channel or SKU, depending on the
// requested group dimension). Its totals equal the sum of its subgroups'.
type TopGroup struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	SubGroups []SubGroup `json:"subGroups"`
	Band      Band       `json:"band,omitempty"`
	Totals
}

// ============================================================================
// RESULT
// ============================================================================

// Result is the engine's output: the flat annotated candidate list plus the
// grouped rollup tree, ready for direct consumption by a rendering layer.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	Groups     []TopGroup  `json:"groups"`
	TimeLabel  string      `json:"timeLabel"`
	LowVolume  bool        `json:"lowVolume"` // banding disabled, all totals under the floor
}
