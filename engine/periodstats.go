package engine

// ============================================================================
// PERIOD STATS ACCUMULATOR
// ============================================================================
// One linear pass over the refund ledger and one over the sales ledger,
// producing per-SKU current- and previous-window totals. The map is scoped
// to a single query execution — nothing survives across calls.
// ============================================================================

// AccumulatePeriodStats builds the per-SKU period totals both passes of the
// candidate builder read from. Every SKU touched by any in-window record
// gets exactly one entry; SKUs never touched read as all-zero.
func AccumulatePeriodStats(data Ledgers, win Window, cfg *config) map[string]*PeriodStats {
	stats := make(map[string]*PeriodStats)
	catalog := indexCatalog(data.Catalog)

	get := func(sku string) *PeriodStats {
		key := normalizeKey(sku)
		ps, ok := stats[key]
		if !ok {
			ps = &PeriodStats{}
			stats[key] = ps
		}
		return ps
	}

	for i := range data.Refunds {
		r := &data.Refunds[i]
		if cfg.excluded(r.Platform) || !win.Contains(r.Date) {
			continue
		}
		ps := get(r.SKU)
		ps.RefundTotal += safeNum(r.RefundAmount.InexactFloat64())
		ps.RefundQty += float64(r.Quantity)
	}

	for i := range data.Sales {
		s := &data.Sales[i]
		if cfg.excluded(s.Platform) {
			continue
		}

		price := safeNum(s.UnitPrice.InexactFloat64())
		qty := float64(s.Quantity)
		revenue := price * qty
		adSpend := safeNum(s.AdSpend.InexactFloat64())

		if win.Contains(s.Date) {
			ps := get(s.SKU)
			ps.CurrentRevenue += revenue
			ps.CurrentQty += qty
			if cfg.AdsEligible(s.Platform) {
				ps.AdEligibleQty += qty
				if adSpend == 0 {
					ps.OrganicQty += qty
				}
			}
			continue
		}

		if win.ContainsPrev(s.Date) {
			ps := get(s.SKU)
			ps.PrevRevenue += revenue
			ps.PrevQty += qty
			ps.PrevProfit += recordProfit(s, revenue, catalog)
		}
	}

	return stats
}

// recordProfit resolves a sales record's absolute profit: the explicit
// field when present, otherwise revenue × margin/100 with the margin
// resolved the same way the candidate builder resolves it.
func recordProfit(s *SalesRecord, revenue float64, catalog map[string]*Product) float64 {
	if s.Profit != nil {
		return safeNum(s.Profit.InexactFloat64())
	}
	return ProfitFromMargin(revenue, recordMargin(s, catalog))
}

// recordMargin resolves a sales record's margin %: explicit field first,
// then catalog economics. Missing catalog entries read as margin 0.
func recordMargin(s *SalesRecord, catalog map[string]*Product) float64 {
	if s.Margin != nil {
		return safeNum(*s.Margin)
	}
	p, ok := catalog[normalizeKey(s.SKU)]
	if !ok {
		return 0
	}
	return UnitMargin(
		safeNum(s.UnitPrice.InexactFloat64()),
		safeNum(p.CostPrice.InexactFloat64()),
		safeNum(p.FeePct),
		safeNum(p.FulfilmentFee.InexactFloat64()),
	)
}

// indexCatalog builds the SKU → Product join map for one execution.
func indexCatalog(products []Product) map[string]*Product {
	m := make(map[string]*Product, len(products))
	for i := range products {
		m[normalizeKey(products[i].SKU)] = &products[i]
	}
	return m
}
