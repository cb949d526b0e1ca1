package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketlens-org/marketlens/engine"
)

// ============================================================================
// LEDGER LOADERS — CSV → typed ledgers
// ============================================================================
// The consumer reads the CSV bytes from wherever they live; these helpers
// convert them into the engine's typed rows. Column mapping is by
// snake-cased header name, unmapped columns are silently skipped, and
// malformed rows are dropped rather than failing the whole load. Money
// columns parse as decimals; an unparseable date leaves the zero time,
// which the engine treats as out of every window.
// ============================================================================

// LoadLedgers reads the four CSV files into one Ledgers bundle. Empty
// paths are allowed — the matching slice stays nil.
func LoadLedgers(salesPath, refundsPath, inventoryPath, catalogPath string) (engine.Ledgers, error) {
	var data engine.Ledgers
	var err error

	if salesPath != "" {
		if data.Sales, err = loadFile(salesPath, ParseSalesCSV); err != nil {
			return data, err
		}
	}
	if refundsPath != "" {
		if data.Refunds, err = loadFile(refundsPath, ParseRefundsCSV); err != nil {
			return data, err
		}
	}
	if inventoryPath != "" {
		if data.Inventory, err = loadFile(inventoryPath, ParseInventoryCSV); err != nil {
			return data, err
		}
	}
	if catalogPath != "" {
		if data.Catalog, err = loadFile(catalogPath, ParseCatalogCSV); err != nil {
			return data, err
		}
	}
	return data, nil
}

func loadFile[T any](path string, parse func([]byte) ([]T, error)) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rows, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

// ParseSalesCSV parses sales-ledger rows. Expected columns: sku, platform,
// date, unit_price, quantity, margin, profit, ad_spend.
func ParseSalesCSV(data []byte) ([]engine.SalesRecord, error) {
	return parseRows(data, func(row map[string]string) (engine.SalesRecord, bool) {
		if row["sku"] == "" {
			return engine.SalesRecord{}, false
		}
		rec := engine.SalesRecord{
			SKU:       row["sku"],
			Platform:  row["platform"],
			Date:      parseDate(row["date"]),
			UnitPrice: parseMoney(row["unit_price"]),
			Quantity:  parseInt(row["quantity"]),
			AdSpend:   parseMoney(row["ad_spend"]),
		}
		if v, err := strconv.ParseFloat(row["margin"], 64); err == nil {
			rec.Margin = &v
		}
		if row["profit"] != "" {
			if d, err := decimal.NewFromString(row["profit"]); err == nil {
				rec.Profit = &d
			}
		}
		return rec, true
	})
}

// ParseRefundsCSV parses refund-ledger rows. Expected columns: sku,
// platform, date, refund_amount, quantity, reason.
func ParseRefundsCSV(data []byte) ([]engine.RefundRecord, error) {
	return parseRows(data, func(row map[string]string) (engine.RefundRecord, bool) {
		if row["sku"] == "" {
			return engine.RefundRecord{}, false
		}
		return engine.RefundRecord{
			SKU:          row["sku"],
			Platform:     row["platform"],
			Date:         parseDate(row["date"]),
			RefundAmount: parseMoney(row["refund_amount"]),
			Quantity:     parseInt(row["quantity"]),
			Reason:       row["reason"],
		}, true
	})
}

// ParseInventoryCSV parses inventory snapshots. Expected columns: sku,
// product_name, stock_level, avg_daily_velocity, prev_daily_velocity,
// aged_stock_qty, channels ("amazon:2.5|ebay:0.8" velocity pairs).
func ParseInventoryCSV(data []byte) ([]engine.InventorySnapshot, error) {
	return parseRows(data, func(row map[string]string) (engine.InventorySnapshot, bool) {
		if row["sku"] == "" {
			return engine.InventorySnapshot{}, false
		}
		return engine.InventorySnapshot{
			SKU:               row["sku"],
			ProductName:       row["product_name"],
			StockLevel:        parseInt(row["stock_level"]),
			AvgDailyVelocity:  parseFloat(row["avg_daily_velocity"]),
			PrevDailyVelocity: parseFloat(row["prev_daily_velocity"]),
			AgedStockQty:      parseInt(row["aged_stock_qty"]),
			Channels:          parseChannels(row["channels"]),
		}, true
	})
}

// ParseCatalogCSV parses the product catalog. Expected columns: sku, name,
// cost_price, fee_pct, fulfilment_fee, return_rate, stock_level, aliases
// (pipe-separated listing titles).
func ParseCatalogCSV(data []byte) ([]engine.Product, error) {
	return parseRows(data, func(row map[string]string) (engine.Product, bool) {
		if row["sku"] == "" {
			return engine.Product{}, false
		}
		p := engine.Product{
			SKU:           row["sku"],
			Name:          row["name"],
			CostPrice:     parseMoney(row["cost_price"]),
			FeePct:        parseFloat(row["fee_pct"]),
			FulfilmentFee: parseMoney(row["fulfilment_fee"]),
			ReturnRate:    parseFloat(row["return_rate"]),
			StockLevel:    parseInt(row["stock_level"]),
		}
		if aliases := strings.TrimSpace(row["aliases"]); aliases != "" {
			p.Aliases = strings.Split(aliases, "|")
		}
		return p, true
	})
}

// ============================================================================
// ROW MACHINERY
// ============================================================================

// parseRows reads header-mapped CSV rows, skipping malformed ones.
func parseRows[T any](data []byte, build func(map[string]string) (T, bool)) ([]T, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = toSnakeCase(strings.TrimSpace(h))
	}

	var out []T
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		fields := make(map[string]string, len(keys))
		for i, val := range row {
			if i >= len(keys) {
				break
			}
			fields[keys[i]] = strings.TrimSpace(val)
		}

		if rec, ok := build(fields); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// parseChannels parses "amazon:2.5|ebay:0.8" into per-channel stats.
func parseChannels(s string) []engine.ChannelStat {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []engine.ChannelStat
	for _, pair := range strings.Split(s, "|") {
		name, vel, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		out = append(out, engine.ChannelStat{
			Channel:       strings.TrimSpace(name),
			DailyVelocity: parseFloat(vel),
		})
	}
	return out
}

func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
