package engine

import "sort"

// ============================================================================
// CANDIDATE BUILDER + TOP-N SELECTOR
// ============================================================================
// Second ledger pass, gated by the current window only. Each qualifying
// record becomes one annotated Candidate carrying every derived and trend
// metric, so later stages (predicates, sorting, rollups) never recompute.
// Rows whose SKU has no catalog entity are skipped silently — dangling
// references are tolerated, not fatal.
//
// For the inventory dataset the pass walks snapshots instead of
// transactions: one candidate per snapshot, stock-cover metrics attached.
// ============================================================================

// BuildCandidates runs the candidate pass and returns the qualifying
// candidates plus the running per-SKU total of the active sort field
// (Top-N input). Filters AND-combine; the sort field falls back to revenue.
func BuildCandidates(intent SearchIntent, data Ledgers, win Window, stats map[string]*PeriodStats, cfg *config) ([]Candidate, map[string]float64) {
	catalog := indexCatalog(data.Catalog)
	snapshots := indexInventory(data.Inventory)

	sortRef := activeSortRef(intent)
	totals := make(map[string]float64)
	var out []Candidate

	admit := func(c Candidate) {
		if !passesAll(&c, intent.Filters) {
			return
		}
		totals[normalizeKey(c.SKU)] += sortRef.sortValue(&c)
		out = append(out, c)
	}

	if intent.TargetDataset == DatasetInventory {
		for i := range data.Inventory {
			snap := &data.Inventory[i]
			product, ok := catalog[normalizeKey(snap.SKU)]
			if !ok {
				continue
			}
			admit(buildSnapshotCandidate(snap, product, stats, win))
		}
		return out, totals
	}

	for i := range data.Sales {
		s := &data.Sales[i]
		if cfg.excluded(s.Platform) || !win.Contains(s.Date) {
			continue
		}
		product, ok := catalog[normalizeKey(s.SKU)]
		if !ok {
			continue
		}
		admit(buildSaleCandidate(s, product, snapshots, stats, win, catalog))
	}

	for i := range data.Refunds {
		r := &data.Refunds[i]
		if cfg.excluded(r.Platform) || !win.Contains(r.Date) {
			continue
		}
		product, ok := catalog[normalizeKey(r.SKU)]
		if !ok {
			continue
		}
		admit(buildRefundCandidate(r, product, snapshots, stats, win))
	}

	return out, totals
}

// activeSortRef resolves the intent's sort field, falling back to revenue.
func activeSortRef(intent SearchIntent) FieldRef {
	if intent.Sort != nil {
		if ref := ParseFieldRef(intent.Sort.Field); ref != FieldUnknown {
			return ref
		}
	}
	return FieldRevenue
}

// ============================================================================
// PER-KIND CONSTRUCTORS
// ============================================================================

func buildSaleCandidate(s *SalesRecord, product *Product, snapshots map[string]*InventorySnapshot, stats map[string]*PeriodStats, win Window, catalog map[string]*Product) Candidate {
	price := safeNum(s.UnitPrice.InexactFloat64())
	qty := float64(s.Quantity)
	adSpend := safeNum(s.AdSpend.InexactFloat64())

	c := Candidate{
		SKU:         s.SKU,
		Platform:    s.Platform,
		ProductName: product.Name,
		Date:        s.Date,
		UnitPrice:   price,
		AdSpend:     adSpend,
		CostPrice:   safeNum(product.CostPrice.InexactFloat64()),
		aliases:     product.Aliases,
	}

	switch {
	case qty < 0:
		// A negative-quantity sales row is a refund booked in the sales
		// ledger; fold it into the refund shape.
		c.Kind = KindRefund
		c.Quantity = -qty
		c.RefundAmount = price * -qty
	case price == 0 && adSpend > 0:
		c.Kind = KindAdCost
		c.Quantity = qty
	default:
		c.Kind = KindSale
		c.Quantity = qty
		c.Revenue = price * qty
		c.Margin = recordMargin(s, catalog)
		c.Profit = recordProfit(s, c.Revenue, catalog)
		c.TACoS = pct(adSpend, c.Revenue)
	}

	attachStockMetrics(&c, product, snapshots)
	attachPeriodMetrics(&c, stats, win)
	return c
}

func buildRefundCandidate(r *RefundRecord, product *Product, snapshots map[string]*InventorySnapshot, stats map[string]*PeriodStats, win Window) Candidate {
	c := Candidate{
		Kind:         KindRefund,
		SKU:          r.SKU,
		Platform:     r.Platform,
		ProductName:  product.Name,
		Date:         r.Date,
		Quantity:     float64(r.Quantity),
		RefundAmount: safeNum(r.RefundAmount.InexactFloat64()),
		Reason:       r.Reason,
		CostPrice:    safeNum(product.CostPrice.InexactFloat64()),
		aliases:      product.Aliases,
	}
	attachStockMetrics(&c, product, snapshots)
	attachPeriodMetrics(&c, stats, win)
	return c
}

func buildSnapshotCandidate(snap *InventorySnapshot, product *Product, stats map[string]*PeriodStats, win Window) Candidate {
	name := snap.ProductName
	if name == "" {
		name = product.Name
	}

	c := Candidate{
		Kind:          KindSnapshot,
		SKU:           snap.SKU,
		ProductName:   name,
		CostPrice:     safeNum(product.CostPrice.InexactFloat64()),
		StockLevel:    float64(snap.StockLevel),
		DaysRemaining: CoverDays(float64(snap.StockLevel), safeNum(snap.AvgDailyVelocity)),
		AgedStockPct:  pct(float64(snap.AgedStockQty), float64(snap.StockLevel)),
		aliases:       product.Aliases,
	}

	// Velocity trend comes from the snapshot itself, not the query window.
	vc := velocityChangePct(safeNum(snap.AvgDailyVelocity), safeNum(snap.PrevDailyVelocity))
	c.VelocityChangePct = &vc

	if ps := stats[normalizeKey(snap.SKU)]; ps != nil {
		c.Quantity = ps.CurrentQty
		c.Revenue = ps.CurrentRevenue
		c.PeriodReturnRate = pct(ps.RefundTotal, ps.CurrentRevenue)
	}
	return c
}

// ============================================================================
// ENRICHMENT
// ============================================================================

// attachStockMetrics joins the SKU's inventory snapshot (falling back to
// catalog stock) for cover-days and aged-stock figures.
func attachStockMetrics(c *Candidate, product *Product, snapshots map[string]*InventorySnapshot) {
	if snap, ok := snapshots[normalizeKey(c.SKU)]; ok {
		c.StockLevel = float64(snap.StockLevel)
		c.DaysRemaining = CoverDays(float64(snap.StockLevel), safeNum(snap.AvgDailyVelocity))
		c.AgedStockPct = pct(float64(snap.AgedStockQty), float64(snap.StockLevel))
		return
	}
	c.StockLevel = float64(product.StockLevel)
	c.DaysRemaining = CoverDays(c.StockLevel, 0)
}

// attachPeriodMetrics copies the SKU's period totals onto the candidate and
// derives the trend metrics. Trend fields stay nil for unbounded windows —
// there is no previous period to compare against.
func attachPeriodMetrics(c *Candidate, stats map[string]*PeriodStats, win Window) {
	ps := stats[normalizeKey(c.SKU)]
	if ps == nil {
		ps = &PeriodStats{}
	}

	c.PeriodReturnRate = pct(ps.RefundTotal, ps.CurrentRevenue)
	if ps.AdEligibleQty > 0 {
		share := pct(ps.OrganicQty, ps.AdEligibleQty)
		c.OrganicShare = &share
	}

	if !win.Bounded {
		return
	}

	c.PrevRevenue = ps.PrevRevenue
	c.PrevQty = ps.PrevQty
	c.PrevProfit = ps.PrevProfit
	c.HasPrev = true

	vc := velocityChangePct(ps.CurrentQty, ps.PrevQty)
	c.VelocityChangePct = &vc

	if c.Kind == KindSale {
		prevMargin := 0.0
		if ps.PrevRevenue > 0 {
			prevMargin = pct(ps.PrevProfit, ps.PrevRevenue)
		}
		mc := c.Margin - prevMargin
		c.MarginChange = &mc
	}
}

// ============================================================================
// TOP-N SELECTOR
// ============================================================================

// SelectTopSKUs ranks SKUs by their aggregated sort-field total and keeps
// every record of the top limit SKUs — the limit bounds entities, not rows.
// With no limit the candidate list passes through untouched. Ranking is
// stable on first-appearance order, so repeated runs select the same SKUs.
func SelectTopSKUs(cands []Candidate, totals map[string]float64, intent SearchIntent) []Candidate {
	if intent.Limit <= 0 || len(cands) == 0 {
		return cands
	}

	// SKUs in first-appearance order, for deterministic ties.
	var skus []string
	seen := make(map[string]bool)
	for i := range cands {
		key := normalizeKey(cands[i].SKU)
		if !seen[key] {
			seen[key] = true
			skus = append(skus, key)
		}
	}

	ascending := intent.Sort != nil && intent.Sort.Direction == "asc"
	sort.SliceStable(skus, func(i, j int) bool {
		if ascending {
			return totals[skus[i]] < totals[skus[j]]
		}
		return totals[skus[i]] > totals[skus[j]]
	})

	if intent.Limit < len(skus) {
		skus = skus[:intent.Limit]
	}
	keep := make(map[string]bool, len(skus))
	for _, s := range skus {
		keep[s] = true
	}

	filtered := make([]Candidate, 0, len(cands))
	for i := range cands {
		if keep[normalizeKey(cands[i].SKU)] {
			filtered = append(filtered, cands[i])
		}
	}
	return filtered
}

// attachContribution fills each candidate's revenue share of the grand
// total across the final matching set. Runs after Top-N selection so the
// shares describe what the caller actually receives.
func attachContribution(cands []Candidate) {
	var grand float64
	for i := range cands {
		grand += cands[i].Revenue
	}
	if grand == 0 {
		return
	}
	for i := range cands {
		cands[i].ContributionPct = pct(cands[i].Revenue, grand)
	}
}

// indexInventory builds the SKU → snapshot join map for one execution.
func indexInventory(snaps []InventorySnapshot) map[string]*InventorySnapshot {
	m := make(map[string]*InventorySnapshot, len(snaps))
	for i := range snaps {
		m[normalizeKey(snaps[i].SKU)] = &snaps[i]
	}
	return m
}
