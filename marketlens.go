// Package marketlens provides a marketplace-seller analytics engine.
//
// Usage:
//
//	import "github.com/marketlens-org/marketlens/engine"
//
//	result, err := engine.Execute(searchIntent, ledgers,
//	    engine.WithAdsEligibility(settings.AdsEligible),
//	    engine.WithExcludedPlatforms(settings.ExcludedPlatforms()),
//	)
//
// The engine takes a SearchIntent (produced by an external translator) and
// three read-only ledgers (sales, refunds, inventory snapshots) joined
// against a product catalog, and returns a flat list of annotated
// candidates plus a two-level channel/SKU rollup with period-over-period
// deltas and volume bands.
//
// Intent translation is handled separately by the intent package.
// The engine never calls any external service — all computation is local.
package marketlens
