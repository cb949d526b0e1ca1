package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// PREDICATE EVALUATOR TESTS
// ============================================================================

func saleCandidate() Candidate {
	return Candidate{
		Kind:        KindSale,
		SKU:         "SKU-ALPHA",
		Platform:    "amazon",
		ProductName: "Walnut Desk Organizer",
		Revenue:     300,
		Margin:      30,
		Quantity:    3,
		aliases:     []string{"Premium Walnut Desk Organiser (UK)"},
	}
}

func TestEvaluateFilterComparisons(t *testing.T) {
	c := saleCandidate()

	cases := []struct {
		filter Filter
		want   bool
	}{
		{Filter{Field: "revenue", Operator: OpGT, Value: "200"}, true},
		{Filter{Field: "revenue", Operator: OpGT, Value: "300"}, false},
		{Filter{Field: "revenue", Operator: OpGTE, Value: "300"}, true},
		{Filter{Field: "margin", Operator: OpLT, Value: "40"}, true},
		{Filter{Field: "margin", Operator: OpLTE, Value: "30"}, true},
		{Filter{Field: "qty", Operator: OpEQ, Value: "3"}, true},
		{Filter{Field: "qty", Operator: OpEQ, Value: "3.0000000001"}, true}, // loose equality
		{Filter{Field: "qty", Operator: OpEQ, Value: "4"}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EvaluateFilter(&c, tc.filter), "%+v", tc.filter)
	}
}

func TestEvaluateFilterTextFields(t *testing.T) {
	c := saleCandidate()

	assert.True(t, EvaluateFilter(&c, Filter{Field: "platform", Operator: OpEQ, Value: "Amazon"}))
	assert.True(t, EvaluateFilter(&c, Filter{Field: "sku", Operator: OpContains, Value: "alpha"}))

	// Ordering operators never apply to text.
	assert.False(t, EvaluateFilter(&c, Filter{Field: "platform", Operator: OpGT, Value: "a"}))
}

func TestNameContainsSearchesAliases(t *testing.T) {
	c := saleCandidate()

	assert.True(t, EvaluateFilter(&c, Filter{Field: "name", Operator: OpContains, Value: "walnut"}))
	assert.True(t, EvaluateFilter(&c, Filter{Field: "name", Operator: OpContains, Value: "organiser"}),
		"channel alias spelling matches")
	assert.True(t, EvaluateFilter(&c, Filter{Field: "name", Operator: OpContains, Value: "sku-alpha"}),
		"name search also covers the SKU")
	assert.False(t, EvaluateFilter(&c, Filter{Field: "name", Operator: OpContains, Value: "bamboo"}))
	assert.False(t, EvaluateFilter(&c, Filter{Field: "name", Operator: OpContains, Value: ""}),
		"empty needle matches nothing")
}

func TestUnknownFieldFailsEveryOperator(t *testing.T) {
	c := saleCandidate()
	for _, op := range []Operator{OpGT, OpLT, OpGTE, OpLTE, OpEQ, OpContains} {
		assert.False(t, EvaluateFilter(&c, Filter{Field: "frobnication", Operator: op, Value: "1"}),
			"operator %s", op)
	}
}

func TestInapplicableKindFailsFilter(t *testing.T) {
	adCost := Candidate{Kind: KindAdCost, AdSpend: 15}

	// An ad-cost row has no margin: even "margin < 0" must not admit it.
	assert.False(t, EvaluateFilter(&adCost, Filter{Field: "margin", Operator: OpLT, Value: "0"}))
	assert.False(t, EvaluateFilter(&adCost, Filter{Field: "margin", Operator: OpEQ, Value: "0"}))
}

func TestNonNumericValueFailsNumericFilter(t *testing.T) {
	c := saleCandidate()
	assert.False(t, EvaluateFilter(&c, Filter{Field: "revenue", Operator: OpGT, Value: "lots"}))
}

func TestPassesAllAndsFilters(t *testing.T) {
	c := saleCandidate()

	assert.True(t, passesAll(&c, []Filter{
		{Field: "revenue", Operator: OpGT, Value: "200"},
		{Field: "platform", Operator: OpEQ, Value: "amazon"},
	}))
	assert.False(t, passesAll(&c, []Filter{
		{Field: "revenue", Operator: OpGT, Value: "200"},
		{Field: "platform", Operator: OpEQ, Value: "ebay"},
	}))
	assert.True(t, passesAll(&c, nil), "no filters admits everything")
}
