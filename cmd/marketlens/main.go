package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/marketlens-org/marketlens/config"
	"github.com/marketlens-org/marketlens/engine"
	"github.com/marketlens-org/marketlens/helpers"
	"github.com/marketlens-org/marketlens/intent"
)

// ============================================================================
// MARKETLENS CLI — seller analytics over CSV ledgers
// ============================================================================

const version = "0.3.0"

func main() {
	salesPath := flag.String("sales", "", "Path to sales ledger CSV")
	refundsPath := flag.String("refunds", "", "Path to refund ledger CSV")
	inventoryPath := flag.String("inventory", "", "Path to inventory snapshot CSV")
	catalogPath := flag.String("catalog", "", "Path to product catalog CSV (required)")
	intentJSON := flag.String("intent", "", "Search intent JSON (inline)")
	intentFile := flag.String("intent-file", "", "Path to search intent JSON file")
	queryText := flag.String("query", "", "Original free-text query (context detection only)")
	format := flag.String("format", "json", "Output format: json, pretty, text, csv")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `MarketLens — seller analytics over CSV ledgers

Usage:
  marketlens --catalog products.csv --sales sales.csv --intent '{"targetDataset":"sales","timeRange":{"relative":"30d"}}'
  marketlens --catalog products.csv --inventory stock.csv --intent-file intent.json --format text
  marketlens --catalog products.csv --sales sales.csv --refunds refunds.csv --format csv --out rollup.csv

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  LOG_LEVEL             trace|debug|info|warn|error (default info)
  AD_PLATFORMS          comma-separated ad-eligible platforms (default amazon,ebay)
  EXCLUDED_PLATFORMS    comma-separated platforms dropped from aggregates
  BAND_TOP_PCT, BAND_BOTTOM_PCT, BAND_MIN_FLOOR   volume-band thresholds

Formats:
  json      Full JSON output (default)
  pretty    Pretty-printed JSON
  text      Human-readable group summary
  csv       Rollup tree as CSV (ready for Sheets/Excel)
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("marketlens %s\n", version)
		os.Exit(0)
	}
	if *catalogPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --catalog is required")
		flag.Usage()
		os.Exit(1)
	}
	if *intentJSON == "" && *intentFile == "" {
		fmt.Fprintln(os.Stderr, "Error: either --intent or --intent-file is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}
	log := buildLogger(cfg)

	// ── Intent ────────────────────────────────────────────────────────────
	raw := *intentJSON
	if *intentFile != "" {
		b, err := os.ReadFile(*intentFile)
		if err != nil {
			fatalf("Failed to read intent file: %v", err)
		}
		raw = string(b)
	}
	searchIntent, err := intent.Parse(raw)
	if err != nil {
		fatalf("Failed to parse intent: %v", err)
	}
	query := *queryText
	if query == "" {
		query = searchIntent.Query
	}
	sortCtx := intent.DetectContext(query, *searchIntent)

	// ── Ledgers ───────────────────────────────────────────────────────────
	data, err := helpers.LoadLedgers(*salesPath, *refundsPath, *inventoryPath, *catalogPath)
	if err != nil {
		fatalf("Failed to load ledgers: %v", err)
	}
	log.Info().
		Int("sales", len(data.Sales)).
		Int("refunds", len(data.Refunds)).
		Int("inventory", len(data.Inventory)).
		Int("catalog", len(data.Catalog)).
		Msg("ledgers loaded")

	// ── Execute ───────────────────────────────────────────────────────────
	result, err := engine.Execute(*searchIntent, data,
		engine.WithLogger(log),
		engine.WithAdsEligibility(cfg.AdsEligible),
		engine.WithExcludedPlatforms(cfg.Engine.ExcludedPlatforms),
		engine.WithBandConfig(cfg.BandConfig()),
		engine.WithSortContext(sortCtx),
	)
	if err != nil {
		fatalf("Execution failed: %v", err)
	}

	// ── Render output ─────────────────────────────────────────────────────
	writer := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	switch *format {
	case "csv":
		writeCSV(writer, result)
	case "text":
		writeText(writer, result)
	case "pretty":
		writeJSON(writer, result, true)
	default:
		writeJSON(writer, result, false)
	}
	if *outFile != "" {
		log.Info().Str("path", *outFile).Msg("output written")
	}
}

// buildLogger wires zerolog: console output in development, JSON otherwise.
func buildLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.App.Env == "development" {
		w := zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// ============================================================================
// OUTPUT WRITERS
// ============================================================================

func writeJSON(w *os.File, result *engine.Result, pretty bool) {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		fatalf("Failed to marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
}

// writeCSV flattens the rollup tree: one row per subgroup, prefixed by its
// top-level group.
func writeCSV(w *os.File, result *engine.Result) {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"Group", "Subgroup", "Revenue", "Profit", "Margin %", "Quantity",
		"Ad Spend", "TACoS %", "Refunds", "Return Rate %", "Band"})

	for _, g := range result.Groups {
		if len(g.SubGroups) == 0 {
			cw.Write(groupRow(g.Label, "", g.Totals, string(g.Band)))
			continue
		}
		for _, sg := range g.SubGroups {
			cw.Write(groupRow(g.Label, sg.Label, sg.Totals, string(g.Band)))
		}
	}
}

func groupRow(group, sub string, t engine.Totals, band string) []string {
	return []string{
		group, sub,
		fmtNum(t.TotalRevenue),
		fmtNum(t.TotalProfit),
		fmtNum(t.WeightedMargin),
		fmtNum(t.TotalQty),
		fmtNum(t.TotalAdSpend),
		fmtNum(t.TACoS),
		fmtNum(t.TotalRefundAmount),
		fmtNum(t.PeriodReturnRate),
		band,
	}
}

// writeText prints a human-readable group summary.
func writeText(w *os.File, result *engine.Result) {
	fmt.Fprintf(w, "Window: %s — %d matching records, %d groups\n",
		result.TimeLabel, len(result.Candidates), len(result.Groups))
	if result.LowVolume {
		fmt.Fprintln(w, "All groups are low volume; banding disabled.")
	}
	for _, g := range result.Groups {
		if g.CoverLabel != "" {
			fmt.Fprintf(w, "%s  stock=%s cover=%s aged=%s%% %s\n",
				g.Label, fmtNum(g.StockLevel), g.CoverLabel, fmtNum(g.AgedStockPct), trendSuffix(g.VelocityChangePct))
			continue
		}
		fmt.Fprintf(w, "%s  revenue=%s profit=%s margin=%s%% tacos=%s%% %s\n",
			g.Label, fmtNum(g.TotalRevenue), fmtNum(g.TotalProfit),
			fmtNum(g.WeightedMargin), fmtNum(g.TACoS), trendSuffix(g.WeightedMarginChange))
	}
}

func trendSuffix(change *float64) string {
	if change == nil {
		return "(trend n/a)"
	}
	return fmt.Sprintf("(%+.1f%% vs previous period)", *change)
}

func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(engine.RoundTo2(v), 'f', 2, 64)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
