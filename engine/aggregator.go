package engine

import "sort"

// ============================================================================
// HIERARCHICAL AGGREGATOR
// ============================================================================
// Folds the filtered candidate list into a two-level tree: TopGroup keyed
// by channel or SKU, SubGroup keyed by the complementary dimension. Totals
// accumulate so that every TopGroup total equals the sum of its SubGroups'
// — refund rows feed the refund totals only and never revenue/profit.
//
// Inventory-target queries fold snapshots instead: stock-cover replaces
// the revenue totals and subgroups carry per-channel velocity/cover.
// ============================================================================

// BuildGroups aggregates candidates into the grouped result tree and
// orders every level by the intent's sort or the query-context fallback.
func BuildGroups(cands []Candidate, intent SearchIntent, data Ledgers, cfg *config) []TopGroup {
	if len(cands) == 0 {
		return nil
	}

	var groups []TopGroup
	if intent.TargetDataset == DatasetInventory {
		groups = buildInventoryGroups(cands, data)
	} else {
		groups = buildTransactionGroups(cands, resolveGroupDim(intent, cfg), cfg)
	}

	key, asc := groupComparator(intent, cfg.SortContext)
	orderGroups(groups, key, asc)
	return groups
}

// resolveGroupDim picks the first-level dimension: channel→SKU for
// sales/refunds, SKU→channel for deep-dive, unless overridden.
func resolveGroupDim(intent SearchIntent, cfg *config) GroupDim {
	if cfg.GroupBy != GroupAuto {
		return cfg.GroupBy
	}
	if intent.TargetDataset == DatasetDeepDive {
		return GroupSKU
	}
	return GroupChannel
}

// ============================================================================
// TRANSACTION GROUPS
// ============================================================================

func buildTransactionGroups(cands []Candidate, dim GroupDim, cfg *config) []TopGroup {
	topKey := func(c *Candidate) (string, string) { return normalizeKey(c.Platform), c.Platform }
	subKey := func(c *Candidate) (string, string) { return normalizeKey(c.SKU), c.ProductName }
	if dim == GroupSKU {
		topKey, subKey = subKey, topKey
	}

	grouped := make(map[string]*TopGroup)
	var order []string

	for i := range cands {
		c := &cands[i]
		tk, tl := topKey(c)
		tg, ok := grouped[tk]
		if !ok {
			tg = &TopGroup{Key: tk, Label: tl}
			grouped[tk] = tg
			order = append(order, tk)
		}
		tg.Totals.add(c, cfg.AdsEligible)

		sk, sl := subKey(c)
		var sg *SubGroup
		for j := range tg.SubGroups {
			if tg.SubGroups[j].Key == sk {
				sg = &tg.SubGroups[j]
				break
			}
		}
		if sg == nil {
			tg.SubGroups = append(tg.SubGroups, SubGroup{Key: sk, Label: sl})
			sg = &tg.SubGroups[len(tg.SubGroups)-1]
		}
		sg.Totals.add(c, cfg.AdsEligible)
		sg.Items = append(sg.Items, *c)
	}

	groups := make([]TopGroup, 0, len(order))
	for _, k := range order {
		tg := grouped[k]
		for j := range tg.SubGroups {
			tg.SubGroups[j].Totals.finalize()
		}
		tg.Totals.finalize()
		groups = append(groups, *tg)
	}
	return groups
}

// add accumulates one candidate. Sale, ad-cost and snapshot rows feed the
// revenue-family totals (an ad-cost row carries zero revenue but full ad
// spend); refund rows feed the refund totals only.
func (t *Totals) add(c *Candidate, adsEligible func(string) bool) {
	switch c.Kind {
	case KindRefund:
		t.TotalRefundAmount += c.RefundAmount
		t.TotalRefundQty += c.Quantity
	case KindSale, KindAdCost, KindSnapshot:
		t.TotalRevenue += c.Revenue
		t.TotalProfit += c.Profit
		t.TotalQty += c.Quantity
		t.TotalAdSpend += c.AdSpend
		if adsEligible(c.Platform) {
			t.AdEnabledRevenue += c.Revenue
		}
	}

	// Previous-window values repeat on every row of a SKU; take the first.
	if c.HasPrev {
		if t.prevSeen == nil {
			t.prevSeen = make(map[string]bool)
		}
		key := normalizeKey(c.SKU)
		if !t.prevSeen[key] {
			t.prevSeen[key] = true
			t.prevRevenue += c.PrevRevenue
			t.prevQty += c.PrevQty
			t.prevProfit += c.PrevProfit
			t.hasPrev = true
		}
	}
}

// finalize computes the weighted aggregates after accumulation.
func (t *Totals) finalize() {
	t.WeightedMargin = pct(t.TotalProfit, t.TotalRevenue)
	t.TACoS = pct(t.TotalAdSpend, t.AdEnabledRevenue)
	if t.AdEnabledRevenue > 0 {
		share := 100 - t.TACoS
		if share < 0 {
			share = 0
		}
		t.OrganicShare = &share
	}
	t.PeriodReturnRate = pct(t.TotalRefundQty, t.TotalQty)

	if t.hasPrev {
		prevMargin := 0.0
		if t.prevRevenue > 0 {
			prevMargin = pct(t.prevProfit, t.prevRevenue)
		}
		change := t.WeightedMargin - prevMargin
		t.WeightedMarginChange = &change

		vc := velocityChangePct(t.TotalQty, t.prevQty)
		t.VelocityChangePct = &vc
	}
	t.prevSeen = nil
}

// ============================================================================
// INVENTORY GROUPS
// ============================================================================

// buildInventoryGroups keys TopGroups by SKU with stock-cover totals and
// one SubGroup per sales channel carrying that channel's velocity/cover.
func buildInventoryGroups(cands []Candidate, data Ledgers) []TopGroup {
	snapshots := indexInventory(data.Inventory)

	groups := make([]TopGroup, 0, len(cands))
	for i := range cands {
		c := &cands[i]
		tg := TopGroup{Key: normalizeKey(c.SKU), Label: c.ProductName}
		tg.StockLevel = c.StockLevel
		tg.CoverDays = c.DaysRemaining
		tg.CoverLabel = CoverLabel(c.DaysRemaining)
		tg.AgedStockPct = c.AgedStockPct
		tg.TotalQty = c.Quantity
		tg.TotalRevenue = c.Revenue
		tg.PeriodReturnRate = c.PeriodReturnRate
		tg.VelocityChangePct = c.VelocityChangePct

		if snap, ok := snapshots[normalizeKey(c.SKU)]; ok {
			tg.AvgDailyVelocity = safeNum(snap.AvgDailyVelocity)
			for _, ch := range snap.Channels {
				sg := SubGroup{Key: normalizeKey(ch.Channel), Label: ch.Channel}
				sg.AvgDailyVelocity = safeNum(ch.DailyVelocity)
				sg.StockLevel = c.StockLevel
				sg.CoverDays = CoverDays(c.StockLevel, safeNum(ch.DailyVelocity))
				sg.CoverLabel = CoverLabel(sg.CoverDays)
				sg.Items = []Candidate{*c}
				tg.SubGroups = append(tg.SubGroups, sg)
			}
		}
		groups = append(groups, tg)
	}
	return groups
}

// ============================================================================
// ORDERING
// ============================================================================

// groupComparator maps the intent's sort (or the query-context fallback)
// to a Totals accessor plus direction. Context priority when no explicit
// sort: aged stock > organic share > return rate > inventory (ascending
// stock) > volume > ad dependency > margin > revenue.
func groupComparator(intent SearchIntent, sctx SortContext) (func(*Totals) float64, bool) {
	if intent.Sort != nil {
		if key := totalsAccessor(ParseFieldRef(intent.Sort.Field)); key != nil {
			return key, intent.Sort.Direction == "asc"
		}
	}

	switch {
	case sctx.AgedStock:
		return func(t *Totals) float64 { return t.AgedStockPct }, false
	case sctx.OrganicShare:
		return func(t *Totals) float64 { return deref(t.OrganicShare) }, false
	case sctx.ReturnRate:
		return func(t *Totals) float64 { return t.PeriodReturnRate }, false
	case sctx.Inventory:
		return func(t *Totals) float64 { return t.StockLevel }, true
	case sctx.Volume:
		return func(t *Totals) float64 { return t.TotalQty }, false
	case sctx.AdDependency:
		return func(t *Totals) float64 { return t.TACoS }, false
	case sctx.Margin:
		return func(t *Totals) float64 { return t.TotalProfit }, false
	default:
		return func(t *Totals) float64 { return t.TotalRevenue }, false
	}
}

// totalsAccessor maps a sortable field onto the group-level metric.
func totalsAccessor(ref FieldRef) func(*Totals) float64 {
	switch ref {
	case FieldRevenue:
		return func(t *Totals) float64 { return t.TotalRevenue }
	case FieldProfit, FieldMargin:
		return func(t *Totals) float64 { return t.TotalProfit }
	case FieldQuantity:
		return func(t *Totals) float64 { return t.TotalQty }
	case FieldAdSpend:
		return func(t *Totals) float64 { return t.TotalAdSpend }
	case FieldTACoS:
		return func(t *Totals) float64 { return t.TACoS }
	case FieldOrganicShare:
		return func(t *Totals) float64 { return deref(t.OrganicShare) }
	case FieldReturnRate:
		return func(t *Totals) float64 { return t.PeriodReturnRate }
	case FieldRefundAmount:
		return func(t *Totals) float64 { return t.TotalRefundAmount }
	case FieldStockLevel:
		return func(t *Totals) float64 { return t.StockLevel }
	case FieldDaysRemaining:
		return func(t *Totals) float64 { return t.CoverDays }
	case FieldAgedStockPct:
		return func(t *Totals) float64 { return t.AgedStockPct }
	case FieldMarginChange:
		return func(t *Totals) float64 { return deref(t.WeightedMarginChange) }
	case FieldVelocityChange:
		return func(t *Totals) float64 { return deref(t.VelocityChangePct) }
	}
	return nil
}

// orderGroups applies the comparator at every tree level. Stable sort —
// ties keep ledger order, which keeps repeated runs identical.
func orderGroups(groups []TopGroup, key func(*Totals) float64, asc bool) {
	less := func(a, b *Totals) bool {
		if asc {
			return key(a) < key(b)
		}
		return key(a) > key(b)
	}
	sort.SliceStable(groups, func(i, j int) bool { return less(&groups[i].Totals, &groups[j].Totals) })
	for g := range groups {
		sub := groups[g].SubGroups
		sort.SliceStable(sub, func(i, j int) bool { return less(&sub[i].Totals, &sub[j].Totals) })
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
