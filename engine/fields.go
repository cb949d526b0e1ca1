package engine

// ============================================================================
// FIELD REGISTRY — Enumerated field references with typed accessors
// ============================================================================
// Filter and sort fields arrive from the translator as strings. They
// resolve here into a closed FieldRef enum with one accessor per variant;
// unknown names resolve to FieldUnknown and fail every predicate instead
// of silently comparing against a missing value. Accessors read values the
// candidate builder computed once, so resolution never recomputes a metric.
//
// Eligibility is part of the accessor contract: margin-family fields are
// defined for sales only, so a margin filter can never accidentally match
// an ad-cost or refund row.
// ============================================================================

// FieldRef identifies one filterable/sortable candidate field.
type FieldRef int

const (
	FieldUnknown FieldRef = iota
	FieldRevenue
	FieldProfit
	FieldMargin
	FieldQuantity
	FieldUnitPrice
	FieldAdSpend
	FieldTACoS
	FieldOrganicShare
	FieldReturnRate
	FieldRefundAmount
	FieldStockLevel
	FieldDaysRemaining
	FieldAgedStockPct
	FieldMarginChange
	FieldVelocityChange
	FieldCostPrice
	FieldName
	FieldSKU
	FieldPlatform
)

// fieldNames maps the translator's field-name vocabulary (including common
// aliases) onto the enum.
var fieldNames = map[string]FieldRef{
	"revenue":           FieldRevenue,
	"sales":             FieldRevenue,
	"profit":            FieldProfit,
	"margin":            FieldMargin,
	"quantity":          FieldQuantity,
	"qty":               FieldQuantity,
	"units":             FieldQuantity,
	"unitprice":         FieldUnitPrice,
	"price":             FieldUnitPrice,
	"adspend":           FieldAdSpend,
	"tacos":             FieldTACoS,
	"organicshare":      FieldOrganicShare,
	"returnrate":        FieldReturnRate,
	"periodreturnrate":  FieldReturnRate,
	"refundamount":      FieldRefundAmount,
	"stocklevel":        FieldStockLevel,
	"stock":             FieldStockLevel,
	"daysremaining":     FieldDaysRemaining,
	"coverdays":         FieldDaysRemaining,
	"runway":            FieldDaysRemaining,
	"agedstockpct":      FieldAgedStockPct,
	"agedstock":         FieldAgedStockPct,
	"marginchange":      FieldMarginChange,
	"velocitychange":    FieldVelocityChange,
	"velocitychangepct": FieldVelocityChange,
	"costprice":         FieldCostPrice,
	"name":              FieldName,
	"sku":               FieldSKU,
	"platform":          FieldPlatform,
	"channel":           FieldPlatform,
}

// ParseFieldRef resolves a translator field name. Unknown names return
// FieldUnknown.
func ParseFieldRef(name string) FieldRef {
	return fieldNames[normalizeKey(name)]
}

// IsText reports whether the field carries a string value.
func (f FieldRef) IsText() bool {
	switch f {
	case FieldName, FieldSKU, FieldPlatform:
		return true
	}
	return false
}

// Value reads the field's numeric value from a candidate. ok is false when
// the field is textual, not applicable to the candidate's kind, or has no
// value (nil trend metrics on unbounded windows).
func (f FieldRef) Value(c *Candidate) (float64, bool) {
	switch f {
	case FieldRevenue:
		return c.Revenue, true
	case FieldProfit:
		return c.Profit, c.Kind != KindRefund
	case FieldMargin:
		// Margin is a sale economics figure; ad-cost and refund rows are
		// never eligible for margin filters.
		return c.Margin, c.Kind == KindSale
	case FieldQuantity:
		return c.Quantity, true
	case FieldUnitPrice:
		return c.UnitPrice, true
	case FieldAdSpend:
		return c.AdSpend, true
	case FieldTACoS:
		return c.TACoS, true
	case FieldOrganicShare:
		if c.OrganicShare == nil {
			return 0, false
		}
		return *c.OrganicShare, true
	case FieldReturnRate:
		return c.PeriodReturnRate, true
	case FieldRefundAmount:
		return c.RefundAmount, true
	case FieldStockLevel:
		return c.StockLevel, true
	case FieldDaysRemaining:
		return c.DaysRemaining, true
	case FieldAgedStockPct:
		return c.AgedStockPct, true
	case FieldMarginChange:
		if c.MarginChange == nil || c.Kind != KindSale {
			return 0, false
		}
		return *c.MarginChange, true
	case FieldVelocityChange:
		if c.VelocityChangePct == nil {
			return 0, false
		}
		return *c.VelocityChangePct, true
	case FieldCostPrice:
		return c.CostPrice, true
	}
	return 0, false
}

// Text reads the field's string value from a candidate.
func (f FieldRef) Text(c *Candidate) (string, bool) {
	switch f {
	case FieldName:
		return c.ProductName, true
	case FieldSKU:
		return c.SKU, true
	case FieldPlatform:
		return c.Platform, true
	}
	return "", false
}

// sortValue is the Top-N/ordering accessor: inapplicable fields count as 0
// so a mixed candidate list still ranks deterministically.
func (f FieldRef) sortValue(c *Candidate) float64 {
	v, ok := f.Value(c)
	if !ok {
		return 0
	}
	return v
}
