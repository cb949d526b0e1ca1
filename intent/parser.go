package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marketlens-org/marketlens/engine"
)

// ============================================================================
// INTENT PARSER — Extracts a SearchIntent from translator output
// ============================================================================
// The NL→intent translator lives outside this repository; it hands over a
// JSON document (often wrapped in markdown fences). This parser cleans it
// up, fills defaults, and normalizes operators so the engine only ever
// sees the canonical vocabulary.
// ============================================================================

// operatorAliases maps translator spellings onto the canonical operator set.
var operatorAliases = map[string]engine.Operator{
	">":        engine.OpGT,
	"gt":       engine.OpGT,
	"<":        engine.OpLT,
	"lt":       engine.OpLT,
	">=":       engine.OpGTE,
	"gte":      engine.OpGTE,
	"<=":       engine.OpLTE,
	"lte":      engine.OpLTE,
	"=":        engine.OpEQ,
	"==":       engine.OpEQ,
	"eq":       engine.OpEQ,
	"contains": engine.OpContains,
}

// Parse extracts a SearchIntent from the translator's JSON response.
func Parse(response string) (*engine.SearchIntent, error) {
	response = stripFences(response)

	var intent engine.SearchIntent
	if err := json.Unmarshal([]byte(response), &intent); err != nil {
		return nil, fmt.Errorf("failed to parse intent response: %w (response: %.200s)", err, response)
	}

	applyDefaults(&intent)
	normalized := engine.NormalizeIntent(intent)
	return &normalized, nil
}

// stripFences removes markdown code blocks the translator tends to wrap
// JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// applyDefaults fills the fields the translator commonly omits.
func applyDefaults(intent *engine.SearchIntent) {
	if intent.TargetDataset == "" {
		intent.TargetDataset = engine.DatasetSales
	}
	if intent.TimeRange.Relative == "" && intent.TimeRange.Absolute == "" {
		intent.TimeRange.Relative = "30d"
	}

	for i := range intent.Filters {
		f := &intent.Filters[i]
		key := strings.ToLower(strings.TrimSpace(string(f.Operator)))
		if op, ok := operatorAliases[key]; ok {
			f.Operator = op
		}
	}
}
