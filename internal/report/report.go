// Package report renders analyses and backtests as terminal tables, CSV or
// JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jevit/stock-analyzer/internal/indicator"
)

// Format is an output format name
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (use table, json or csv)", s)
	}
}

// WriteJSON encodes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// fixed rounds half away from zero to places decimals
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func pct(v float64) string {
	return fixed(v, 1) + "%"
}

func signedPct(v float64) string {
	s := pct(v)
	if v > 0 && s != "0.0%" {
		return "+" + s
	}
	return s
}

func value(v indicator.Value, places int32) string {
	if !v.Valid {
		return "-"
	}
	return fixed(v.V, places)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
