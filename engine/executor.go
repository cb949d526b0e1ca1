package engine

import (
	"github.com/google/uuid"
)

// ============================================================================
// EXECUTOR — Pipeline dispatcher
// ============================================================================
// Entry point: Execute(intent, ledgers, opts...)
//
// Pipeline:
//   1. Normalize the intent (deterministic translator-inconsistency fixes)
//   2. Resolve the time window (+ symmetric previous window)
//   3. Accumulate per-SKU period stats (one pass per ledger)
//   4. Build annotated candidates (entity join, predicates, sort totals)
//   5. Restrict to the top-N SKUs
//   6. Fold into the grouped tree and badge volume bands
//
// This function never calls an external service. All computation is local
// and synchronous; every intermediate map is scoped to this one call, so
// concurrent Execute calls for different intents never share state.
// ============================================================================

// Execute runs a SearchIntent against the ledgers and returns the flat
// candidate list plus the grouped rollup tree. Data problems (dangling
// SKUs, malformed dates, zero denominators) degrade to exclusion or zero
// per field — they never surface as errors.
func Execute(intent SearchIntent, data Ledgers, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	intent = NormalizeIntent(intent)

	log := cfg.Logger.With().Str("query_id", uuid.NewString()).Logger()

	win := ResolveWindow(intent.TimeRange, cfg.Now())
	log.Debug().
		Str("dataset", string(intent.TargetDataset)).
		Str("window", win.Label()).
		Int("filters", len(intent.Filters)).
		Int("sales", len(data.Sales)).
		Int("refunds", len(data.Refunds)).
		Int("inventory", len(data.Inventory)).
		Msg("executing search intent")

	for _, f := range intent.Filters {
		if ParseFieldRef(f.Field) == FieldUnknown {
			log.Warn().Str("field", f.Field).Msg("unknown filter field — no record can match it")
		}
	}

	stats := AccumulatePeriodStats(data, win, cfg)
	cands, sortTotals := BuildCandidates(intent, data, win, stats, cfg)
	log.Debug().Int("candidates", len(cands)).Int("skus", len(sortTotals)).Msg("candidate pass complete")

	cands = SelectTopSKUs(cands, sortTotals, intent)
	attachContribution(cands)

	groups := BuildGroups(cands, intent, data, cfg)
	lowVolume := applyBands(groups, intent.TargetDataset, cfg.Bands)

	log.Info().
		Int("candidates", len(cands)).
		Int("groups", len(groups)).
		Bool("low_volume", lowVolume).
		Msg("search intent executed")

	return &Result{
		Candidates: cands,
		Groups:     groups,
		TimeLabel:  win.Label(),
		LowVolume:  lowVolume,
	}, nil
}

// NormalizeIntent applies deterministic rules that fix common translator
// inconsistencies before execution.
func NormalizeIntent(intent SearchIntent) SearchIntent {
	switch intent.TargetDataset {
	case DatasetSales, DatasetInventory, DatasetRefunds, DatasetDeepDive:
	default:
		intent.TargetDataset = DatasetSales
	}

	if intent.Limit < 0 {
		intent.Limit = 0
	}

	if intent.Sort != nil {
		if intent.Sort.Field == "" {
			intent.Sort = nil
		} else if intent.Sort.Direction != "asc" {
			intent.Sort.Direction = "desc"
		}
	}

	return intent
}
