package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/jevit/stock-analyzer/internal/backtest"
	"github.com/jevit/stock-analyzer/internal/scoring"
)

// AnalysisCSV writes one row per analyzed ticker, failures included
func AnalysisCSV(w io.Writer, analyses []scoring.TickerAnalysis) error {
	cw := csv.NewWriter(w)
	header := []string{
		"ticker", "name", "date", "close", "change_1d_pct", "rsi", "atr_pct", "volume_ratio", "dist_sma200_pct",
		"global_score", "best_strategy", "signals_detected", "has_signal",
		"entry", "stop", "target", "risk_reward", "verdict", "main_reason", "risk_summary", "error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, a := range analyses {
		entry, stop, target, rr := "", "", "", ""
		if a.Levels.Complete() {
			entry = fixed(a.Levels.Entry, 2)
			stop = fixed(a.Levels.Stop, 2)
			target = fixed(a.Levels.Target, 2)
			rr = fixed(a.Levels.RiskReward, 2)
		}
		date := ""
		if !a.Date.IsZero() {
			date = a.Date.Format("2006-01-02")
		}
		record := []string{
			a.Symbol,
			a.Name,
			date,
			fixed(a.Close, 2),
			csvValue(a.Change1DPct.V, a.Change1DPct.Valid),
			csvValue(a.RSI.V, a.RSI.Valid),
			csvValue(a.ATRPct.V, a.ATRPct.Valid),
			csvValue(a.VolumeRatio.V, a.VolumeRatio.Valid),
			csvValue(a.DistSMALong.V, a.DistSMALong.Valid),
			strconv.Itoa(a.GlobalScore),
			a.BestStrategy,
			strconv.Itoa(a.SignalsDetected),
			strconv.FormatBool(a.HasSignal),
			entry, stop, target, rr,
			string(a.Verdict.Tier),
			a.MainReason(),
			a.RiskSummary,
			a.Error,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// TradesCSV writes one row per trade
func TradesCSV(w io.Writer, trades []backtest.Trade) error {
	cw := csv.NewWriter(w)
	header := []string{
		"ticker", "strategy", "status", "entry_date", "entry_price", "stop_loss", "take_profit",
		"exit_date", "exit_price", "exit_reason", "pnl_pct", "duration_days", "max_adverse_pct", "max_favorable_pct", "is_win",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		exitDate, exitPrice := "", ""
		if t.IsClosed() {
			exitDate = t.ExitDate.Format("2006-01-02")
			exitPrice = fixed(t.ExitPrice, 4)
		}
		record := []string{
			t.Symbol,
			t.Strategy,
			t.Status.String(),
			t.EntryDate.Format("2006-01-02"),
			fixed(t.EntryPrice, 4),
			fixed(t.StopLoss, 4),
			fixed(t.TakeProfit, 4),
			exitDate,
			exitPrice,
			string(t.ExitReason),
			fixed(t.PnLPct, 2),
			strconv.Itoa(t.DurationDays),
			fixed(t.MaxAdversePct, 2),
			fixed(t.MaxFavorablePct, 2),
			strconv.FormatBool(t.IsWin),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ResultsCSV writes one row per strategy statistics block
func ResultsCSV(w io.Writer, results []backtest.Results) error {
	cw := csv.NewWriter(w)
	header := []string{
		"strategy", "period", "total_trades", "winning_trades", "losing_trades", "win_rate_pct",
		"avg_win_pct", "avg_loss_pct", "total_return_pct", "profit_factor", "avg_rr_realized",
		"max_drawdown_pct", "sharpe_ratio", "max_consecutive_losses", "exits",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		exits := strings.Join([]string{
			strconv.Itoa(r.StopLossExits), strconv.Itoa(r.TakeProfitExits),
			strconv.Itoa(r.TimeoutExits), strconv.Itoa(r.EndOfDataExits),
		}, "/")
		record := []string{
			r.Strategy,
			r.Period,
			strconv.Itoa(r.TotalTrades),
			strconv.Itoa(r.WinningTrades),
			strconv.Itoa(r.LosingTrades),
			fixed(r.WinRatePct, 2),
			fixed(r.AvgWinPct, 2),
			fixed(r.AvgLossPct, 2),
			fixed(r.TotalReturnPct, 2),
			fixed(r.ProfitFactor, 2),
			fixed(r.AvgRRRealized, 2),
			fixed(r.MaxDrawdownPct, 2),
			fixed(r.SharpeRatio, 2),
			strconv.Itoa(r.MaxConsecutiveLosses),
			exits,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(v float64, valid bool) string {
	if !valid {
		return ""
	}
	return fixed(v, 2)
}
