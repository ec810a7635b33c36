package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jevit/stock-analyzer/internal/indicator"
	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/internal/strategy"
	"github.com/jevit/stock-analyzer/pkg/model"
)

// Config holds backtest parameters
type Config struct {
	LookbackDays   int     // Calendar days replayed, counted back from the last bar
	MaxHoldingDays int     // Calendar days before a timeout exit
	SlippagePct    float64 // e.g., 0.1 = 0.1%
	WarmupBars     int     // Bars skipped before the replay starts
	MaxEntryGapPct float64 // Next open must be within this % of the entry
	Workers        int     // BacktestAll pool size, 0 = one per CPU
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		LookbackDays:   365,
		MaxHoldingDays: 30,
		SlippagePct:    0.1,
		WarmupBars:     60,
		MaxEntryGapPct: 5,
	}
}

// Validate checks backtest parameters
func (c Config) Validate() error {
	var errs []error
	if c.LookbackDays <= 0 {
		errs = append(errs, fmt.Errorf("lookback_days must be positive, got %d", c.LookbackDays))
	}
	if c.MaxHoldingDays <= 0 {
		errs = append(errs, fmt.Errorf("max_holding_days must be positive, got %d", c.MaxHoldingDays))
	}
	if c.SlippagePct < 0 || c.SlippagePct >= 5 {
		errs = append(errs, fmt.Errorf("slippage_pct must be in [0, 5), got %.2f", c.SlippagePct))
	}
	if c.WarmupBars < 1 {
		errs = append(errs, fmt.Errorf("warmup_bars must be at least 1, got %d", c.WarmupBars))
	}
	if c.MaxEntryGapPct <= 0 {
		errs = append(errs, fmt.Errorf("max_entry_gap_pct must be positive, got %.2f", c.MaxEntryGapPct))
	}
	return errors.Join(errs...)
}

// TickerResult holds every trade simulated on one ticker
type TickerResult struct {
	Symbol   string   `json:"ticker"`
	Period   string   `json:"period"`
	Bars     int      `json:"bars"`
	Trades   []Trade  `json:"trades"`
	Warnings []string `json:"warnings,omitempty"`
}

// Failure records a ticker that could not be backtested
type Failure struct {
	Symbol string `json:"ticker"`
	Error  string `json:"error"`
}

// Run is the outcome of a batch backtest
type Run struct {
	ID       string         `json:"run_id"`
	Strategy string         `json:"strategy"`
	Started  time.Time      `json:"started_at"`
	Elapsed  time.Duration  `json:"elapsed_ns"`
	Tickers  []TickerResult `json:"tickers"`
	Failed   []Failure      `json:"failed"`
}

// Trades returns every trade of the run, ticker by ticker
func (r *Run) Trades() []Trade {
	var out []Trade
	for _, t := range r.Tickers {
		out = append(out, t.Trades...)
	}
	return out
}

// TradesByTicker maps each ticker to its trades
func (r *Run) TradesByTicker() map[string][]Trade {
	out := make(map[string][]Trade, len(r.Tickers))
	for _, t := range r.Tickers {
		if len(t.Trades) > 0 {
			out[t.Symbol] = t.Trades
		}
	}
	return out
}

// Engine replays detectors bar by bar over history. It holds no mutable
// state, so concurrent backtests never share trades.
type Engine struct {
	config    Config
	params    indicator.Params
	detectors []strategy.Detector
	scanner   *scanner.Scanner
	logger    zerolog.Logger
}

// NewEngine creates a backtest engine over the given detectors
func NewEngine(cfg Config, params indicator.Params, detectors []strategy.Detector, logger zerolog.Logger) *Engine {
	return &Engine{
		config:    cfg,
		params:    params,
		detectors: detectors,
		scanner:   scanner.NewScanner(cfg.Workers, 0),
		logger:    logger.With().Str("component", "backtest").Logger(),
	}
}

// SetProgressCallback reports BacktestAll progress
func (e *Engine) SetProgressCallback(fn scanner.ProgressCallback) {
	e.scanner.SetProgressCallback(fn)
}

// BacktestTicker simulates the named strategy, or every strategy for an
// empty name, over the lookback window of one ticker's history
func (e *Engine) BacktestTicker(symbol string, candles []model.Candle, strategyName string) (*TickerResult, error) {
	detectors, err := strategy.Select(e.detectors, strategyName)
	if err != nil {
		return nil, err
	}

	// Readings are causal, so one pass over the full history matches
	// recomputing on every prefix.
	series, err := indicator.Compute(symbol, candles, e.params)
	if err != nil {
		return nil, err
	}

	bars := series.Bars
	last := bars[len(bars)-1]
	cutoff := last.Time.AddDate(0, 0, -e.config.LookbackDays)

	windowStart := 0
	for windowStart < len(bars) && bars[windowStart].Time.Before(cutoff) {
		windowStart++
	}

	result := &TickerResult{
		Symbol: symbol,
		Period: formatPeriod(bars[windowStart].Time, last.Time),
		Bars:   len(bars) - windowStart,
		Trades: []Trade{},
	}

	if result.Bars < e.config.WarmupBars {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Not enough data for backtesting: %d bars in window, need %d",
			result.Bars, e.config.WarmupBars))
		e.logger.Warn().Str("symbol", symbol).Int("bars", result.Bars).Msg("not enough data for backtesting")
		return result, nil
	}

	start := max(windowStart, e.config.WarmupBars)
	for _, d := range detectors {
		result.Trades = append(result.Trades, e.simulate(symbol, series, start, d)...)
	}

	e.logger.Debug().
		Str("symbol", symbol).
		Str("strategy", strategyName).
		Int("trades", len(result.Trades)).
		Msg("ticker backtested")

	return result, nil
}

// simulation owns the trades of one (ticker, detector) replay. open indexes
// the trades still running.
type simulation struct {
	trades []Trade
	open   []int
}

func (e *Engine) simulate(symbol string, series *indicator.Series, start int, d strategy.Detector) []Trade {
	slippage := e.config.SlippagePct / 100
	bars := series.Bars
	sim := &simulation{}

	for i := start; i < len(bars); i++ {
		sim.update(&bars[i], e.config.MaxHoldingDays, slippage)

		res := d.Evaluate(series.Truncate(i + 1))
		if !res.Signal || !res.Levels.Complete() {
			continue
		}

		entry := res.Levels.Entry * (1 + slippage)
		entryDate, nextOpen := bars[i].Time, bars[i].Close
		if i+1 < len(bars) {
			entryDate, nextOpen = bars[i+1].Time, bars[i+1].Open
		}
		if math.Abs(nextOpen-entry)/entry >= e.config.MaxEntryGapPct/100 {
			continue
		}

		sim.open = append(sim.open, len(sim.trades))
		sim.trades = append(sim.trades, NewTrade(symbol, d.Name(), entryDate, entry, res.Levels.Stop, res.Levels.Target))
	}

	lastBar := bars[len(bars)-1]
	for _, idx := range sim.open {
		_ = sim.trades[idx].Close(lastBar.Time, lastBar.Close, ExitEndOfData)
	}
	sim.open = nil

	return sim.trades
}

// update applies one bar to every open trade. Stop is checked before target,
// target before timeout, and a trade exits for at most one reason.
func (sim *simulation) update(bar *indicator.Bar, maxHoldingDays int, slippage float64) {
	stillOpen := sim.open[:0]
	for _, idx := range sim.open {
		t := &sim.trades[idx]
		if bar.Time.Before(t.EntryDate) {
			stillOpen = append(stillOpen, idx)
			continue
		}

		t.UpdateExtremes(bar.Low)
		t.UpdateExtremes(bar.High)

		var reason ExitReason
		var price float64
		switch {
		case bar.Low <= t.StopLoss:
			reason, price = ExitStopLoss, t.StopLoss*(1-slippage)
		case bar.High >= t.TakeProfit:
			reason, price = ExitTakeProfit, t.TakeProfit*(1-slippage)
		case t.HeldDays(bar.Time) >= maxHoldingDays:
			reason, price = ExitTimeout, bar.Close
		default:
			t.DurationDays = t.HeldDays(bar.Time)
			stillOpen = append(stillOpen, idx)
			continue
		}

		// Indexes in open always point at open trades
		_ = t.Close(bar.Time, price, reason)
	}
	sim.open = stillOpen
}

// BacktestAll backtests every history on the scanner pool. Tickers whose
// history is invalid are recorded in Failed and do not stop the batch.
func (e *Engine) BacktestAll(ctx context.Context, histories []model.History, strategyName string) (*Run, error) {
	if _, err := strategy.Select(e.detectors, strategyName); err != nil {
		return nil, err
	}

	start := time.Now()
	bySymbol := make(map[string][]model.Candle, len(histories))
	symbols := make([]string, 0, len(histories))
	for _, h := range histories {
		if _, dup := bySymbol[h.Stock.Symbol]; dup {
			continue
		}
		bySymbol[h.Stock.Symbol] = h.Candles
		symbols = append(symbols, h.Stock.Symbol)
	}

	outcomes := scanner.Run(ctx, e.scanner, symbols, func(_ context.Context, symbol string) (*TickerResult, error) {
		return e.BacktestTicker(symbol, bySymbol[symbol], strategyName)
	})

	run := &Run{
		ID:       uuid.New().String(),
		Strategy: strategyName,
		Started:  start,
		Tickers:  []TickerResult{},
		Failed:   []Failure{},
	}
	if run.Strategy == "" {
		run.Strategy = "all"
	}

	for _, o := range outcomes {
		if o.Err != nil {
			e.logger.Warn().Str("symbol", o.Symbol).Err(o.Err).Msg("backtest failed")
			run.Failed = append(run.Failed, Failure{Symbol: o.Symbol, Error: o.Err.Error()})
			continue
		}
		run.Tickers = append(run.Tickers, *o.Value)
	}
	run.Elapsed = time.Since(start)

	e.logger.Info().
		Str("run_id", run.ID).
		Str("strategy", run.Strategy).
		Int("tickers", len(symbols)).
		Int("trades", len(run.Trades())).
		Int("failed", len(run.Failed)).
		Dur("elapsed", run.Elapsed).
		Msg("backtest complete")

	return run, nil
}

func formatPeriod(from, to time.Time) string {
	return from.Format("2006-01-02") + " ~ " + to.Format("2006-01-02")
}
