package backtest

import (
	"testing"
)

// closedTrade returns a trade entered at 100 on day0+entry and closed at
// 100+pnl after days calendar days
func closedTrade(symbol, strategyName string, entry, days int, pnl float64, reason ExitReason) Trade {
	t := NewTrade(symbol, strategyName, day0.AddDate(0, 0, entry), 100, 90, 120)
	_ = t.Close(day0.AddDate(0, 0, entry+days), 100+pnl, reason)
	return t
}

func TestMaxDrawdownOnTradeSequence(t *testing.T) {
	trades := []Trade{
		closedTrade("A", "S", 0, 2, 5, ExitTakeProfit),
		closedTrade("A", "S", 1, 2, 3, ExitTakeProfit),
		closedTrade("A", "S", 2, 2, -10, ExitStopLoss),
		closedTrade("A", "S", 3, 2, 2, ExitTimeout),
	}

	r := AnalyzeTrades("S", trades)
	if !approx(r.MaxDrawdownPct, 10) {
		t.Errorf("max drawdown = %.4f, want 10", r.MaxDrawdownPct)
	}
	if !approx(r.TotalReturnPct, 0) {
		t.Errorf("total return = %.4f, want 0", r.TotalReturnPct)
	}
	if r.MaxConsecutiveLosses != 1 || r.MaxConsecutiveWins != 2 {
		t.Errorf("streaks = %d losses / %d wins, want 1/2", r.MaxConsecutiveLosses, r.MaxConsecutiveWins)
	}
}

func TestProfitFactor(t *testing.T) {
	tests := []struct {
		name string
		pnls []float64
		want float64
	}{
		{"wins twice the losses", []float64{12, -4, 8, -6}, 2.0},
		{"no losers is guarded", []float64{5, 7}, 0},
		{"no winners", []float64{-5, -1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trades []Trade
			for i, p := range tt.pnls {
				trades = append(trades, closedTrade("A", "S", i, 1, p, ExitTimeout))
			}
			if got := AnalyzeTrades("S", trades).ProfitFactor; !approx(got, tt.want) {
				t.Errorf("profit factor = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestAnalyzeTradesStatistics(t *testing.T) {
	open := NewTrade("A", "S", day0, 100, 90, 120)
	trades := []Trade{
		closedTrade("A", "S", 0, 4, 10, ExitTakeProfit),
		closedTrade("A", "S", 1, 2, -5, ExitStopLoss),
		closedTrade("A", "S", 2, 6, 20, ExitTakeProfit),
		closedTrade("A", "S", 3, 8, 0, ExitEndOfData),
		open,
	}

	r := AnalyzeTrades("S", trades)

	if r.TotalTrades != 4 || r.WinningTrades != 2 || r.LosingTrades != 2 {
		t.Fatalf("counts = %d/%d/%d, want 4/2/2 (open trades ignored, zero P&L loses)", r.TotalTrades, r.WinningTrades, r.LosingTrades)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"win rate", r.WinRatePct, 50},
		{"avg win", r.AvgWinPct, 15},
		{"avg loss", r.AvgLossPct, -2.5},
		{"avg return", r.AvgReturnPct, 6.25},
		{"best", r.BestTradePct, 20},
		{"worst", r.WorstTradePct, -5},
		{"profit factor", r.ProfitFactor, 6},
		{"expectancy", r.Expectancy, 6.25},
		{"avg duration", r.AvgDurationDays, 5},
		{"avg win duration", r.AvgWinDurationDays, 5},
		{"avg loss duration", r.AvgLossDurationDays, 5},
		// Realized R/R over the three non-zero trades: 1, 0.5, 2
		{"avg realized rr", r.AvgRRRealized, 3.5 / 3},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %.4f, want %.4f", c.name, c.got, c.want)
		}
	}

	if r.TakeProfitExits != 2 || r.StopLossExits != 1 || r.EndOfDataExits != 1 || r.TimeoutExits != 0 {
		t.Errorf("exits = tp %d sl %d eod %d to %d", r.TakeProfitExits, r.StopLossExits, r.EndOfDataExits, r.TimeoutExits)
	}
	if r.SharpeRatio <= 0 {
		t.Errorf("sharpe = %.4f, want positive", r.SharpeRatio)
	}
	wantPeriod := day0.Format("2006-01-02") + " ~ " + day0.AddDate(0, 0, 11).Format("2006-01-02")
	if r.Period != wantPeriod {
		t.Errorf("period = %q, want %q", r.Period, wantPeriod)
	}
}

func TestAnalyzeTradesEmpty(t *testing.T) {
	r := AnalyzeTrades("S", nil)
	if r.TotalTrades != 0 || r.ProfitFactor != 0 || r.Strategy != "S" {
		t.Errorf("empty results = %+v", r)
	}
}

func TestAnalyzeByStrategy(t *testing.T) {
	byTicker := map[string][]Trade{
		"AAA": {
			closedTrade("AAA", "Breakout", 0, 1, 4, ExitTakeProfit),
			closedTrade("AAA", "Golden Cross", 1, 1, -2, ExitStopLoss),
		},
		"BBB": {
			closedTrade("BBB", "Breakout", 2, 1, -1, ExitStopLoss),
		},
	}

	results := AnalyzeByStrategy(byTicker)

	if len(results) != 3 {
		t.Fatalf("groups = %d, want 3", len(results))
	}
	if got := results["Breakout"].TotalTrades; got != 2 {
		t.Errorf("Breakout trades = %d, want 2", got)
	}
	if got := results["Golden Cross"].TotalTrades; got != 1 {
		t.Errorf("Golden Cross trades = %d, want 1", got)
	}
	all := results[AllStrategies]
	if all.TotalTrades != 3 || !approx(all.TotalReturnPct, 1) {
		t.Errorf("all strategies = %d trades / %.2f%%, want 3 / 1%%", all.TotalTrades, all.TotalReturnPct)
	}
}

func TestEquityCurve(t *testing.T) {
	trades := []Trade{
		closedTrade("A", "S", 5, 5, 2, ExitTimeout),  // exits day 10
		closedTrade("B", "S", 0, 3, -1, ExitTimeout), // exits day 3
		NewTrade("C", "S", day0, 100, 90, 120),
	}

	curve := EquityCurve(trades)
	if len(curve) != 2 {
		t.Fatalf("points = %d, want 2", len(curve))
	}
	if curve[0].Symbol != "B" || !approx(curve[0].CumulativeReturnPct, -1) {
		t.Errorf("first point = %+v", curve[0])
	}
	if curve[1].Symbol != "A" || !approx(curve[1].CumulativeReturnPct, 1) {
		t.Errorf("second point = %+v", curve[1])
	}
}

func TestRunMonteCarlo(t *testing.T) {
	var trades []Trade
	for i, p := range []float64{5, -3, 8, -10, 2, 4, -1} {
		trades = append(trades, closedTrade("A", "S", i, 1, p, ExitTimeout))
	}

	a := RunMonteCarlo(trades, 500, 42)
	b := RunMonteCarlo(trades, 500, 42)
	if a == nil || b == nil {
		t.Fatal("RunMonteCarlo() returned nil")
	}
	if *a != *b {
		t.Errorf("same seed gave different results: %+v vs %+v", a, b)
	}
	if a.WorstCase > a.MedianReturn || a.MedianReturn > a.BestCase {
		t.Errorf("percentiles out of order: %+v", a)
	}
	if a.Trades != 7 || a.Simulations != 500 {
		t.Errorf("counts = %d trades / %d sims", a.Trades, a.Simulations)
	}

	if RunMonteCarlo(nil, 100, 1) != nil {
		t.Error("expected nil without trades")
	}
}
