package backtest

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// AllStrategies is the pseudo-strategy grouping every trade
const AllStrategies = "All Strategies"

// Results are aggregate statistics over closed trades. Percentages are
// per-trade returns, summed where cumulative.
type Results struct {
	Strategy string `json:"strategy_name"`
	Period   string `json:"period"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRatePct    float64 `json:"win_rate_pct"`

	AvgWinPct      float64 `json:"avg_win_pct"`
	AvgLossPct     float64 `json:"avg_loss_pct"`
	AvgReturnPct   float64 `json:"avg_return_pct"`
	TotalReturnPct float64 `json:"total_return_pct"`
	BestTradePct   float64 `json:"best_trade_pct"`
	WorstTradePct  float64 `json:"worst_trade_pct"`

	ProfitFactor   float64 `json:"profit_factor"`    // Gross wins / gross losses, 0 without losers
	AvgRRRealized  float64 `json:"avg_rr_realized"`  // Over trades with a positive realized R/R
	Expectancy     float64 `json:"expectancy_pct"`   // Expected % per trade
	SharpeRatio    float64 `json:"sharpe_ratio"`     // Per-trade returns, annualized
	MaxDrawdownPct float64 `json:"max_drawdown_pct"` // On cumulative P&L in trade order

	MaxConsecutiveLosses int `json:"max_consecutive_losses"`
	MaxConsecutiveWins   int `json:"max_consecutive_wins"`

	AvgDurationDays     float64 `json:"avg_duration_days"`
	AvgWinDurationDays  float64 `json:"avg_win_duration_days"`
	AvgLossDurationDays float64 `json:"avg_loss_duration_days"`

	StopLossExits   int `json:"stop_loss_exits"`
	TakeProfitExits int `json:"take_profit_exits"`
	TimeoutExits    int `json:"timeout_exits"`
	EndOfDataExits  int `json:"end_of_data_exits"`
}

// AnalyzeTrades computes statistics over the closed trades, in list order
func AnalyzeTrades(strategyName string, trades []Trade) Results {
	result := Results{Strategy: strategyName}

	closed := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}
	if len(closed) == 0 {
		return result
	}

	result.Period = tradePeriod(closed)
	result.TotalTrades = len(closed)

	var returns, winReturns, lossReturns []float64
	var durations, winDurations, lossDurations []float64
	var rrs []float64
	var grossWin, grossLoss float64
	var winStreak, loseStreak int

	for _, t := range closed {
		returns = append(returns, t.PnLPct)
		durations = append(durations, float64(t.DurationDays))
		if rr := t.RealizedRR(); rr > 0 {
			rrs = append(rrs, rr)
		}

		if t.IsWin {
			winReturns = append(winReturns, t.PnLPct)
			winDurations = append(winDurations, float64(t.DurationDays))
			grossWin += t.PnLPct

			winStreak++
			loseStreak = 0
			result.MaxConsecutiveWins = max(result.MaxConsecutiveWins, winStreak)
		} else {
			lossReturns = append(lossReturns, t.PnLPct)
			lossDurations = append(lossDurations, float64(t.DurationDays))
			grossLoss += math.Abs(t.PnLPct)

			loseStreak++
			winStreak = 0
			result.MaxConsecutiveLosses = max(result.MaxConsecutiveLosses, loseStreak)
		}

		switch t.ExitReason {
		case ExitStopLoss:
			result.StopLossExits++
		case ExitTakeProfit:
			result.TakeProfitExits++
		case ExitTimeout:
			result.TimeoutExits++
		case ExitEndOfData:
			result.EndOfDataExits++
		}
	}

	result.WinningTrades = len(winReturns)
	result.LosingTrades = len(lossReturns)
	result.WinRatePct = float64(result.WinningTrades) / float64(result.TotalTrades) * 100

	if len(winReturns) > 0 {
		result.AvgWinPct = average(winReturns)
		result.BestTradePct = slices.Max(winReturns)
	}
	if len(lossReturns) > 0 {
		result.AvgLossPct = average(lossReturns)
		result.WorstTradePct = slices.Min(lossReturns)
	}

	result.AvgReturnPct = average(returns)
	result.TotalReturnPct = sum(returns)

	if grossLoss > 0 {
		result.ProfitFactor = grossWin / grossLoss
	}
	result.AvgRRRealized = average(rrs)

	winRate := result.WinRatePct / 100
	result.Expectancy = winRate*result.AvgWinPct + (1-winRate)*result.AvgLossPct

	// Sharpe Ratio (simplified, annualized)
	if std := stdDev(returns); std > 0 {
		result.SharpeRatio = average(returns) / std * math.Sqrt(252)
	}

	result.MaxDrawdownPct = maxDrawdown(returns)

	result.AvgDurationDays = average(durations)
	result.AvgWinDurationDays = average(winDurations)
	result.AvgLossDurationDays = average(lossDurations)

	return result
}

// AnalyzeByStrategy groups every ticker's trades by strategy and adds the
// AllStrategies group over the union
func AnalyzeByStrategy(tradesByTicker map[string][]Trade) map[string]Results {
	tickers := make([]string, 0, len(tradesByTicker))
	for ticker := range tradesByTicker {
		tickers = append(tickers, ticker)
	}
	slices.Sort(tickers)

	var all []Trade
	byStrategy := make(map[string][]Trade)
	for _, ticker := range tickers {
		for _, t := range tradesByTicker[ticker] {
			all = append(all, t)
			byStrategy[t.Strategy] = append(byStrategy[t.Strategy], t)
		}
	}

	results := make(map[string]Results, len(byStrategy)+1)
	for name, trades := range byStrategy {
		results[name] = AnalyzeTrades(name, trades)
	}
	results[AllStrategies] = AnalyzeTrades(AllStrategies, all)

	return results
}

// EquityPoint is the cumulative return after one exit
type EquityPoint struct {
	Date                time.Time `json:"date"`
	Symbol              string    `json:"ticker"`
	CumulativeReturnPct float64   `json:"cumulative_return_pct"`
}

// EquityCurve accumulates closed-trade returns in exit-date order
func EquityCurve(trades []Trade) []EquityPoint {
	closed := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}
	slices.SortStableFunc(closed, func(a, b Trade) int {
		return a.ExitDate.Compare(b.ExitDate)
	})

	curve := make([]EquityPoint, 0, len(closed))
	var cumulative float64
	for _, t := range closed {
		cumulative += t.PnLPct
		curve = append(curve, EquityPoint{
			Date:                t.ExitDate,
			Symbol:              t.Symbol,
			CumulativeReturnPct: cumulative,
		})
	}
	return curve
}

// SortTrades orders trades by entry date, then ticker
func SortTrades(trades []Trade) {
	slices.SortStableFunc(trades, func(a, b Trade) int {
		if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
}

// maxDrawdown is the largest fall of cumulative P&L from its running peak.
// The peak starts at the first cumulative value.
func maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var cumulative, maxDD float64
	peak := returns[0]
	for _, r := range returns {
		cumulative += r
		peak = math.Max(peak, cumulative)
		maxDD = math.Max(maxDD, peak-cumulative)
	}
	return maxDD
}

func tradePeriod(trades []Trade) string {
	first, last := trades[0].EntryDate, trades[0].ExitDate
	for _, t := range trades[1:] {
		if t.EntryDate.Before(first) {
			first = t.EntryDate
		}
		if t.ExitDate.After(last) {
			last = t.ExitDate
		}
	}
	return formatPeriod(first, last)
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := average(values)
	var sumSquares float64
	for _, v := range values {
		sumSquares += (v - avg) * (v - avg)
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
