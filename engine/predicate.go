package engine

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// PREDICATE EVALUATOR
// ============================================================================
// Applies one filter to one candidate. Filters AND-combine across a filter
// list. Nothing here ever panics: an unresolvable field, an inapplicable
// kind, or a non-numeric comparison value all evaluate to "record excluded".
// ============================================================================

// looseEq is the tolerance for "=" on numeric fields.
const looseEq = 1e-9

// EvaluateFilter reports whether a candidate passes a single filter.
func EvaluateFilter(c *Candidate, f Filter) bool {
	ref := ParseFieldRef(f.Field)
	if ref == FieldUnknown {
		return false
	}

	switch f.Operator {
	case OpContains:
		return evalContains(c, ref, f.Value)
	case OpEQ:
		return evalEquals(c, ref, f.Value)
	case OpGT, OpLT, OpGTE, OpLTE:
		return evalCompare(c, ref, f.Operator, f.Value)
	}
	return false
}

// passesAll applies every filter with AND semantics.
func passesAll(c *Candidate, filters []Filter) bool {
	for _, f := range filters {
		if !EvaluateFilter(c, f) {
			return false
		}
	}
	return true
}

// evalContains performs a case-insensitive substring match. A name filter
// matches the product name, the SKU, or any channel alias — first hit wins.
func evalContains(c *Candidate, ref FieldRef, value string) bool {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return false
	}

	if ref == FieldName {
		if strings.Contains(strings.ToLower(c.ProductName), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(c.SKU), needle) {
			return true
		}
		for _, alias := range c.aliases {
			if strings.Contains(strings.ToLower(alias), needle) {
				return true
			}
		}
		return false
	}

	text, ok := ref.Text(c)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(text), needle)
}

// evalEquals is case-insensitive string equality for text fields and loose
// numeric equality for numeric ones.
func evalEquals(c *Candidate, ref FieldRef, value string) bool {
	if ref.IsText() {
		text, ok := ref.Text(c)
		if !ok {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(value))
	}

	want, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	got, ok := ref.Value(c)
	if !ok {
		return false
	}
	return math.Abs(got-want) < looseEq
}

// evalCompare handles the four ordering operators on numeric fields.
func evalCompare(c *Candidate, ref FieldRef, op Operator, value string) bool {
	if ref.IsText() {
		return false
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	got, ok := ref.Value(c)
	if !ok {
		return false
	}

	switch op {
	case OpGT:
		return got > want
	case OpLT:
		return got < want
	case OpGTE:
		return got >= want
	case OpLTE:
		return got <= want
	}
	return false
}
