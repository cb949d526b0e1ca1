package engine

import "sort"

// ============================================================================
// VOLUME-BAND CLASSIFIER
// ============================================================================
// Percentile-based tiering of group totals for display badges. When even
// the largest total sits under the absolute floor, the whole set reads as
// low volume and banding is disabled.
// ============================================================================

// ClassifyBands tiers each value as Top/Middle/Bottom by percentile
// thresholds. The second return is true when the entire set is low volume.
func ClassifyBands(values []float64, cfg BandConfig) ([]Band, bool) {
	if len(values) == 0 {
		return nil, false
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	if max < cfg.MinAbsoluteFloor {
		bands := make([]Band, len(values))
		for i := range bands {
			bands[i] = BandLowVolume
		}
		return bands, true
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	bottomVal := sorted[clampIndex(int(float64(n)*cfg.BottomPercentile/100), n)]
	topVal := sorted[clampIndex(int(float64(n)*(1-cfg.TopPercentile/100)), n)]

	bands := make([]Band, len(values))
	for i, v := range values {
		switch {
		case v >= topVal:
			bands[i] = BandTop
		case v <= bottomVal:
			bands[i] = BandBottom
		default:
			bands[i] = BandMiddle
		}
	}
	return bands, false
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// applyBands badges each top-level group by its volume total: revenue for
// transaction groups, stock level for inventory groups.
func applyBands(groups []TopGroup, dataset Dataset, cfg BandConfig) bool {
	if len(groups) == 0 {
		return false
	}

	values := make([]float64, len(groups))
	for i := range groups {
		if dataset == DatasetInventory {
			values[i] = groups[i].StockLevel
		} else {
			values[i] = groups[i].TotalRevenue
		}
	}

	bands, low := ClassifyBands(values, cfg)
	for i := range groups {
		groups[i].Band = bands[i]
	}
	return low
}
