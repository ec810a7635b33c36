package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jevit/stock-analyzer/internal/backtest"
	"github.com/jevit/stock-analyzer/internal/indicator"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/internal/strategy"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{" JSON ", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFixedRounding(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   string
	}{
		{2.345, 2, "2.35"},
		{-2.345, 2, "-2.35"},
		{1.005, 2, "1.01"},
		{100, 2, "100.00"},
		{0.04, 1, "0.0"},
	}
	for _, tt := range tests {
		if got := fixed(tt.v, tt.places); got != tt.want {
			t.Errorf("fixed(%v, %d) = %q, want %q", tt.v, tt.places, got, tt.want)
		}
	}

	if got := signedPct(3.21); got != "+3.2%" {
		t.Errorf("signedPct(3.21) = %q", got)
	}
	if got := signedPct(-0.01); got != "0.0%" && got != "-0.0%" {
		t.Errorf("signedPct(-0.01) = %q", got)
	}
}

func sampleAnalyses() []scoring.TickerAnalysis {
	return []scoring.TickerAnalysis{
		{
			Symbol:          "AAPL",
			Name:            "Apple Inc.",
			Date:            time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			Close:           183.456,
			RSI:             indicator.Of(58.123),
			ATRPct:          indicator.Of(1.87),
			GlobalScore:     82,
			BestStrategy:    strategy.NameBreakout,
			SignalsDetected: 2,
			HasSignal:       true,
			Levels:          &strategy.Levels{Entry: 183.456, Stop: 176.1, Target: 198.2, RiskReward: 2.004},
			Reasons:         []string{"Confluence: 2 strategies signaling"},
			RiskSummary:     "No major risk identified",
			Verdict:         scoring.Verdict{Tier: scoring.TierFavorable, Emoji: "🟢", Label: "Favorable"},
		},
		{Symbol: "BAD", Error: "empty price history"},
	}
}

func TestAnalysisCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := AnalysisCSV(&buf, sampleAnalyses()); err != nil {
		t.Fatalf("AnalysisCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(records))
	}

	col := make(map[string]int)
	for i, name := range records[0] {
		col[name] = i
	}
	row := records[1]
	checks := map[string]string{
		"ticker":        "AAPL",
		"date":          "2024-05-10",
		"close":         "183.46",
		"rsi":           "58.12",
		"change_1d_pct": "",
		"entry":         "183.46",
		"risk_reward":   "2.00",
		"verdict":       "favorable",
		"main_reason":   "Confluence: 2 strategies signaling",
	}
	for name, want := range checks {
		if got := row[col[name]]; got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if got := records[2][col["error"]]; got != "empty price history" {
		t.Errorf("failed row error = %q", got)
	}
}

func TestTradesCSVAndTable(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	closed := backtest.NewTrade("MSFT", strategy.NameGoldenCross, day, 400, 380, 440)
	if err := closed.Close(day.AddDate(0, 0, 12), 440, backtest.ExitTakeProfit); err != nil {
		t.Fatal(err)
	}
	open := backtest.NewTrade("MSFT", strategy.NameBreakout, day.AddDate(0, 0, 20), 410, 395, 450)
	trades := []backtest.Trade{closed, open}

	var buf bytes.Buffer
	if err := TradesCSV(&buf, trades); err != nil {
		t.Fatalf("TradesCSV() error = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want 3", len(records))
	}
	if records[1][9] != "take_profit" || records[1][10] != "10.00" || records[1][11] != "12" {
		t.Errorf("closed trade row = %v", records[1])
	}
	if records[2][7] != "" || records[2][2] != "open" {
		t.Errorf("open trade row = %v", records[2])
	}

	buf.Reset()
	TradesTable(&buf, trades)
	out := buf.String()
	if !strings.Contains(out, "MSFT") || !strings.Contains(out, "take_profit") || !strings.Contains(out, "+10.0%") {
		t.Errorf("table output missing trade data:\n%s", out)
	}
}

func TestResultsTableOrder(t *testing.T) {
	results := map[string]backtest.Results{
		backtest.AllStrategies: {Strategy: backtest.AllStrategies, TotalTrades: 3},
		"Breakout":             {Strategy: "Breakout", TotalTrades: 2},
		"Golden Cross":         {Strategy: "Golden Cross", TotalTrades: 1},
	}

	var buf bytes.Buffer
	ResultsTable(&buf, results)
	out := buf.String()

	b := strings.Index(out, "Breakout")
	g := strings.Index(out, "Golden Cross")
	a := strings.LastIndex(out, backtest.AllStrategies)
	if b < 0 || g < 0 || a < 0 || !(b < g && g < a) {
		t.Errorf("rows out of order (breakout %d, golden %d, all %d):\n%s", b, g, a, out)
	}
}

func TestAnalysisTable(t *testing.T) {
	analyses := sampleAnalyses()
	wl := &scoring.WatchlistReport{
		RunID:   "run-1",
		Total:   2,
		Results: analyses[:1],
		Failed:  analyses[1:],
	}

	var buf bytes.Buffer
	AnalysisTable(&buf, wl, 5)
	out := buf.String()

	for _, want := range []string{"AAPL", "Breakout", "Entry: 183.46", "BAD: empty price history", "run-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleAnalyses()[0]); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["ticker"] != "AAPL" || decoded["change_1d_pct"] != nil {
		t.Errorf("decoded = %v", decoded)
	}
}
