package intent

import (
	"strings"

	"github.com/marketlens-org/marketlens/engine"
)

// ============================================================================
// QUERY CONTEXT DETECTION
// ============================================================================
// The aggregator's default ordering depends on what the user was actually
// asking about. That context is derived here — outside the engine — by
// keyword matching against the original free-text query, backed up by the
// intent's filter and sort fields, and passed in as plain booleans.
// ============================================================================

var contextKeywords = map[string][]string{
	"aged":      {"aged", "old stock", "stale", "sitting"},
	"organic":   {"organic"},
	"returns":   {"return rate", "returns", "refund rate", "refunds"},
	"inventory": {"stock", "inventory", "restock", "runway", "cover", "out of stock"},
	"volume":    {"best seller", "best-selling", "top selling", "most sold", "units sold", "volume"},
	"ads":       {"tacos", "ad spend", "ad dependency", "advertising", "ppc"},
	"margin":    {"margin", "profit", "profitability"},
}

// DetectContext derives the SortContext for an intent from the original
// free-text query plus the intent's own filter and sort fields.
func DetectContext(query string, intent engine.SearchIntent) engine.SortContext {
	q := strings.ToLower(query)

	var sc engine.SortContext
	sc.AgedStock = matchesAny(q, contextKeywords["aged"]) || usesField(intent, engine.FieldAgedStockPct)
	sc.OrganicShare = matchesAny(q, contextKeywords["organic"]) || usesField(intent, engine.FieldOrganicShare)
	sc.ReturnRate = matchesAny(q, contextKeywords["returns"]) || usesField(intent, engine.FieldReturnRate)
	sc.Inventory = intent.TargetDataset == engine.DatasetInventory ||
		matchesAny(q, contextKeywords["inventory"]) ||
		usesField(intent, engine.FieldStockLevel) ||
		usesField(intent, engine.FieldDaysRemaining)
	sc.Volume = matchesAny(q, contextKeywords["volume"]) || usesField(intent, engine.FieldQuantity)
	sc.AdDependency = matchesAny(q, contextKeywords["ads"]) || usesField(intent, engine.FieldTACoS)
	sc.Margin = matchesAny(q, contextKeywords["margin"]) ||
		usesField(intent, engine.FieldMargin) ||
		usesField(intent, engine.FieldProfit)
	return sc
}

func matchesAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// usesField reports whether the intent filters or sorts on the field.
func usesField(intent engine.SearchIntent, ref engine.FieldRef) bool {
	for _, f := range intent.Filters {
		if engine.ParseFieldRef(f.Field) == ref {
			return true
		}
	}
	if intent.Sort != nil && engine.ParseFieldRef(intent.Sort.Field) == ref {
		return true
	}
	return false
}
