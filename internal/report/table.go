package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/jevit/stock-analyzer/internal/backtest"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/internal/strategy"
)

// AnalysisTable prints the ranked watchlist, then details for the top
// entries
func AnalysisTable(w io.Writer, wl *scoring.WatchlistReport, details int) {
	if len(wl.Results) == 0 {
		fmt.Fprintf(w, "No ticker scored %d or more.\n", wl.MinScore)
	} else {
		table := tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"Ticker", "Name", "Score", "Best Strategy", "Signals", "Close", "1D", "RSI", "Verdict"}),
		)
		for _, a := range wl.Results {
			table.Append([]string{
				a.Symbol,
				truncate(a.Name, 18),
				strconv.Itoa(a.GlobalScore),
				bestLabel(a),
				strconv.Itoa(a.SignalsDetected),
				fixed(a.Close, 2),
				change(a),
				value(a.RSI, 1),
				a.Verdict.Emoji + " " + a.Verdict.Label,
			})
		}
		table.Render()
	}

	shown := 0
	for _, a := range wl.Results {
		if shown >= details {
			break
		}
		if !a.HasSignal {
			continue
		}
		fmt.Fprintln(w)
		AnalysisDetail(w, a)
		shown++
	}

	if len(wl.Failed) > 0 {
		fmt.Fprintf(w, "\nFailed (%d):\n", len(wl.Failed))
		for _, a := range wl.Failed {
			fmt.Fprintf(w, "  %s: %s\n", a.Symbol, a.Error)
		}
	}

	fmt.Fprintf(w, "\nAnalyzed %d tickers in %s (run %s)\n", wl.Total, wl.Elapsed.Round(time.Millisecond), wl.RunID)
}

// AnalysisDetail prints one ticker's verdict, levels and reasons
func AnalysisDetail(w io.Writer, a scoring.TickerAnalysis) {
	fmt.Fprintf(w, "[%s] %s  %s %s (score %d/100)\n", a.Symbol, a.Name, a.Verdict.Emoji, a.Verdict.Label, a.GlobalScore)
	if a.Failed() {
		fmt.Fprintf(w, "  Error: %s\n", a.Error)
		return
	}

	fmt.Fprintf(w, "  Close: %s | RSI: %s | ATR: %s%% | Volume: %sx avg | vs SMA200: %s%%\n",
		fixed(a.Close, 2), value(a.RSI, 1), value(a.ATRPct, 2), value(a.VolumeRatio, 2), value(a.DistSMALong, 1))
	fmt.Fprintf(w, "  Trend: %s | Momentum: %s | Volatility: %s | Volume: %s\n",
		a.Statuses.Trend, a.Statuses.Momentum, a.Statuses.Volatility, a.Statuses.Volume)

	if a.Levels.Complete() {
		fmt.Fprintf(w, "  Entry: %s | Stop: %s | Target: %s | R/R: %s\n",
			fixed(a.Levels.Entry, 2), fixed(a.Levels.Stop, 2), fixed(a.Levels.Target, 2), fixed(a.Levels.RiskReward, 2))
	}
	for _, r := range a.Reasons {
		fmt.Fprintf(w, "  + %s\n", r)
	}
	for _, warning := range a.Warnings {
		fmt.Fprintf(w, "  - %s\n", warning)
	}
	fmt.Fprintf(w, "  Risk: %s\n", a.RiskSummary)
	fmt.Fprintf(w, "  >> %s\n", a.Verdict.Action)
}

// StrategyBreakdown prints every detector's score for one ticker
func StrategyBreakdown(w io.Writer, a scoring.TickerAnalysis) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Strategy", "Signal", "Score", "Entry", "Stop", "Target", "Main Reason"}),
	)
	for _, r := range a.Strategies {
		signal := "no"
		if r.Signal {
			signal = "YES"
		}
		entry, stop, target := "-", "-", "-"
		if r.Levels.Complete() {
			entry, stop, target = fixed(r.Levels.Entry, 2), fixed(r.Levels.Stop, 2), fixed(r.Levels.Target, 2)
		}
		reason := ""
		if len(r.Reasons) > 0 {
			reason = r.Reasons[0]
		} else if len(r.Warnings) > 0 {
			reason = r.Warnings[0]
		}
		table.Append([]string{r.Strategy, signal, strconv.Itoa(r.Score), entry, stop, target, truncate(reason, 45)})
	}
	table.Render()
}

// StrategiesTable lists the available detectors
func StrategiesTable(w io.Writer, infos []strategy.Info) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Name", "Type", "Description"}),
	)
	for _, info := range infos {
		table.Append([]string{info.Name, info.Type, info.Description})
	}
	table.Render()
}

// ResultsTable prints per-strategy statistics, the aggregate row last
func ResultsTable(w io.Writer, results map[string]backtest.Results) {
	names := make([]string, 0, len(results))
	for name := range results {
		if name != backtest.AllStrategies {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := results[backtest.AllStrategies]; ok {
		names = append(names, backtest.AllStrategies)
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Strategy", "Trades", "Win Rate", "Avg Win", "Avg Loss", "Total", "PF", "Max DD", "Sharpe", "SL/TP/TO/EOD"}),
	)
	for _, name := range names {
		r := results[name]
		table.Append([]string{
			name,
			strconv.Itoa(r.TotalTrades),
			pct(r.WinRatePct),
			signedPct(r.AvgWinPct),
			signedPct(r.AvgLossPct),
			signedPct(r.TotalReturnPct),
			fixed(r.ProfitFactor, 2),
			pct(r.MaxDrawdownPct),
			fixed(r.SharpeRatio, 2),
			fmt.Sprintf("%d/%d/%d/%d", r.StopLossExits, r.TakeProfitExits, r.TimeoutExits, r.EndOfDataExits),
		})
	}
	table.Render()
}

// ResultsSummary prints one strategy's statistics in full
func ResultsSummary(w io.Writer, r backtest.Results) {
	fmt.Fprintf(w, "%s (%s)\n", r.Strategy, r.Period)
	fmt.Fprintf(w, "  Trades: %d (%d wins / %d losses) | Win rate: %s\n", r.TotalTrades, r.WinningTrades, r.LosingTrades, pct(r.WinRatePct))
	fmt.Fprintf(w, "  Avg win: %s | Avg loss: %s | Avg trade: %s | Total: %s\n",
		signedPct(r.AvgWinPct), signedPct(r.AvgLossPct), signedPct(r.AvgReturnPct), signedPct(r.TotalReturnPct))
	fmt.Fprintf(w, "  Best: %s | Worst: %s | Profit factor: %s | Realized R/R: %s\n",
		signedPct(r.BestTradePct), signedPct(r.WorstTradePct), fixed(r.ProfitFactor, 2), fixed(r.AvgRRRealized, 2))
	fmt.Fprintf(w, "  Expectancy: %s | Sharpe: %s | Max drawdown: %s\n",
		signedPct(r.Expectancy), fixed(r.SharpeRatio, 2), pct(r.MaxDrawdownPct))
	fmt.Fprintf(w, "  Streaks: %d wins / %d losses | Avg hold: %s days (wins %s, losses %s)\n",
		r.MaxConsecutiveWins, r.MaxConsecutiveLosses, fixed(r.AvgDurationDays, 1), fixed(r.AvgWinDurationDays, 1), fixed(r.AvgLossDurationDays, 1))
	fmt.Fprintf(w, "  Exits: stop %d | target %d | timeout %d | end of data %d\n",
		r.StopLossExits, r.TakeProfitExits, r.TimeoutExits, r.EndOfDataExits)
}

// TradesTable lists trades in the given order
func TradesTable(w io.Writer, trades []backtest.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "No trades.")
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Ticker", "Strategy", "Entry Date", "Entry", "Exit Date", "Exit", "P&L", "Days", "Exit Reason"}),
	)
	for _, t := range trades {
		exitDate, exitPrice, reason := "-", "-", t.Status.String()
		if t.IsClosed() {
			exitDate = t.ExitDate.Format("2006-01-02")
			exitPrice = fixed(t.ExitPrice, 2)
			reason = string(t.ExitReason)
		}
		table.Append([]string{
			t.Symbol,
			t.Strategy,
			t.EntryDate.Format("2006-01-02"),
			fixed(t.EntryPrice, 2),
			exitDate,
			exitPrice,
			signedPct(t.PnLPct),
			strconv.Itoa(t.DurationDays),
			reason,
		})
	}
	table.Render()
}

// MonteCarlo prints a Monte Carlo summary
func MonteCarlo(w io.Writer, mc *backtest.MonteCarloResult) {
	if mc == nil {
		return
	}
	fmt.Fprintf(w, "Monte Carlo (%d simulations of %d trades)\n", mc.Simulations, mc.Trades)
	fmt.Fprintf(w, "  Return: median %s | 5th pct %s | 95th pct %s\n",
		signedPct(mc.MedianReturn), signedPct(mc.WorstCase), signedPct(mc.BestCase))
	fmt.Fprintf(w, "  Drawdown: median %s | 95th pct %s | Ruin probability: %s\n",
		pct(mc.MedianDrawdown), pct(mc.WorstDrawdown), pct(mc.RuinProbability))
}

func bestLabel(a scoring.TickerAnalysis) string {
	if a.BestStrategy == "" {
		return "-"
	}
	return a.BestStrategy
}

func change(a scoring.TickerAnalysis) string {
	if !a.Change1DPct.Valid {
		return "-"
	}
	return signedPct(a.Change1DPct.V)
}
