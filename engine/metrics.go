package engine

import (
	"math"
	"strings"
)

// ============================================================================
// METRIC CALCULATOR — Pure derivations over raw entity fields
// ============================================================================
// Every function here guards its own divisions: a percentage with a zero
// denominator is 0, a day-count with zero velocity is the 999 sentinel.
// NaN and Inf never escape into an aggregate.
// ============================================================================

// coverDaysSentinel stands in for "effectively infinite runway" when the
// sales velocity is zero.
const coverDaysSentinel = 999

// coverDaysDisplayCap caps the rendered stock-cover label at ">2y".
const coverDaysDisplayCap = 730

// safeNum coerces NaN/Inf (the residue of missing or malformed inputs)
// to 0 so they cannot poison an accumulator.
func safeNum(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// pct returns part/whole×100, 0 when the denominator is 0.
func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return safeNum(part / whole * 100)
}

// UnitMargin computes the margin % of one sale from catalog economics:
// (price − cost − platform fee − fulfilment fee) / price × 100.
func UnitMargin(price, cost, feePct, fulfilmentFee float64) float64 {
	if price == 0 {
		return 0
	}
	net := price - cost - price*feePct/100 - fulfilmentFee
	return safeNum(net / price * 100)
}

// ProfitFromMargin derives absolute profit from revenue and a margin %.
func ProfitFromMargin(revenue, marginPct float64) float64 {
	return safeNum(revenue * marginPct / 100)
}

// CoverDays computes stock runway in days. Zero velocity yields the 999
// sentinel, never Inf.
func CoverDays(stockLevel, dailyVelocity float64) float64 {
	if dailyVelocity <= 0 {
		return coverDaysSentinel
	}
	return safeNum(stockLevel / dailyVelocity)
}

// CoverLabel renders a cover-days value for display, capped at ">2y".
func CoverLabel(days float64) string {
	if days >= coverDaysSentinel {
		return "no sales"
	}
	if days > coverDaysDisplayCap {
		return ">2y"
	}
	return formatDays(days)
}

func formatDays(days float64) string {
	d := int(math.Round(days))
	if d == 1 {
		return "1 day"
	}
	return itoa(d) + " days"
}

// itoa avoids pulling fmt into the hot path for a trivial conversion.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// velocityChangePct compares current vs previous period quantity. A rise
// from a zero baseline reads as +100%.
func velocityChangePct(currentQty, prevQty float64) float64 {
	if prevQty > 0 {
		return safeNum((currentQty - prevQty) / prevQty * 100)
	}
	if currentQty > 0 {
		return 100
	}
	return 0
}

// normalizeKey lowercases and trims a join/lookup key (SKU, platform).
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RoundTo2 rounds to 2 decimal places for display values.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
