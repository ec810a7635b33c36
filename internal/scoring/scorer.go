package scoring

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jevit/stock-analyzer/internal/indicator"
	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/internal/strategy"
	"github.com/jevit/stock-analyzer/pkg/model"
)

// Config holds scorer settings
type Config struct {
	AlertScoreThreshold int // Minimum global score for an alert
	Workers             int // Watchlist worker pool size, 0 = one per CPU
	ConfluenceTwo       int // Bonus when exactly two detectors signal
	ConfluenceThree     int // Bonus when three or more detectors signal
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		AlertScoreThreshold: 75,
		ConfluenceTwo:       10,
		ConfluenceThree:     15,
	}
}

// Scorer runs every detector on a ticker and folds the results into one
// analysis. It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	detectors []strategy.Detector
	params    indicator.Params
	config    Config
	scanner   *scanner.Scanner
	logger    zerolog.Logger
}

// NewScorer creates a scorer over the given detectors, evaluated in order
func NewScorer(detectors []strategy.Detector, params indicator.Params, cfg Config, logger zerolog.Logger) *Scorer {
	return &Scorer{
		detectors: detectors,
		params:    params,
		config:    cfg,
		scanner:   scanner.NewScanner(cfg.Workers, 0),
		logger:    logger.With().Str("component", "scorer").Logger(),
	}
}

// SetProgressCallback reports watchlist progress
func (s *Scorer) SetProgressCallback(fn scanner.ProgressCallback) {
	s.scanner.SetProgressCallback(fn)
}

// AnalyzeTicker computes indicators for a raw history and analyzes it.
// A history that fails validation yields an analysis carrying Error.
func (s *Scorer) AnalyzeTicker(symbol string, candles []model.Candle) TickerAnalysis {
	return s.AnalyzeHistory(model.History{
		Stock:   model.Stock{Symbol: symbol, Name: symbol},
		Candles: candles,
	})
}

// AnalyzeHistory is AnalyzeTicker with the stock's display name
func (s *Scorer) AnalyzeHistory(h model.History) TickerAnalysis {
	name := h.Stock.Name
	if name == "" {
		name = h.Stock.Symbol
	}

	series, err := indicator.Compute(h.Stock.Symbol, h.Candles, s.params)
	if err != nil {
		s.logger.Warn().Str("symbol", h.Stock.Symbol).Err(err).Msg("indicator computation failed")
		return TickerAnalysis{
			Symbol:     h.Stock.Symbol,
			Name:       name,
			Strategies: []strategy.Result{},
			Reasons:    []string{},
			Warnings:   []string{},
			Error:      err.Error(),
		}
	}

	a := s.AnalyzeSeries(series)
	a.Name = name
	return a
}

// AnalyzeSeries evaluates every detector against the same series snapshot
func (s *Scorer) AnalyzeSeries(series *indicator.Series) TickerAnalysis {
	a := TickerAnalysis{
		Symbol:     series.Symbol,
		Name:       series.Symbol,
		Strategies: make([]strategy.Result, 0, len(s.detectors)),
		Reasons:    []string{},
		Warnings:   []string{},
	}

	last := series.Last()
	if last == nil {
		a.Error = model.ErrEmptyHistory.Error()
		return a
	}

	a.Date = last.Time
	a.Close = last.Close
	a.Change1DPct = last.Return1D
	a.RSI = last.RSI
	a.ATRPct = last.ATRPct
	a.VolumeRatio = last.VolumeRatio
	a.DistSMALong = last.DistSMALong

	maxScore := 0
	best := -1
	for _, d := range s.detectors {
		r := d.Evaluate(series)
		a.Strategies = append(a.Strategies, r)

		if r.Signal {
			a.SignalsDetected++
		}
		// Strictly greater: ties keep the earlier detector
		if r.Score > maxScore {
			maxScore = r.Score
			best = len(a.Strategies) - 1
		}
		a.Reasons = append(a.Reasons, r.Reasons...)
		a.Warnings = append(a.Warnings, r.Warnings...)
	}

	switch {
	case a.SignalsDetected >= 3:
		a.ConfluenceBonus = s.config.ConfluenceThree
	case a.SignalsDetected == 2:
		a.ConfluenceBonus = s.config.ConfluenceTwo
	}
	if a.ConfluenceBonus > 0 {
		a.Reasons = append([]string{fmt.Sprintf("Confluence: %d strategies signaling", a.SignalsDetected)}, a.Reasons...)
	}

	a.GlobalScore = min(100, maxScore+a.ConfluenceBonus)
	a.HasSignal = a.SignalsDetected > 0

	if best >= 0 {
		r := a.Strategies[best]
		a.BestStrategy = r.Strategy
		if r.Signal && r.Levels != nil {
			levels := *r.Levels
			a.Levels = &levels
		}
	}

	a.RiskSummary = riskSummary(&a)
	a.Statuses = noviceStatuses(&a)
	a.NoviceSummary = noviceSummary(&a)
	a.Verdict = verdict(&a)

	s.logger.Debug().
		Str("symbol", a.Symbol).
		Int("score", a.GlobalScore).
		Str("strategy", a.BestStrategy).
		Msg("ticker analyzed")

	return a
}

// AnalyzeWatchlist analyzes every history on the scanner pool. Failed
// tickers are kept apart from the ranking, which is by global score
// descending then symbol.
func (s *Scorer) AnalyzeWatchlist(ctx context.Context, histories []model.History, minScore int) *WatchlistReport {
	start := time.Now()

	bySymbol := make(map[string]model.History, len(histories))
	symbols := make([]string, 0, len(histories))
	for _, h := range histories {
		if _, dup := bySymbol[h.Stock.Symbol]; dup {
			continue
		}
		bySymbol[h.Stock.Symbol] = h
		symbols = append(symbols, h.Stock.Symbol)
	}

	outcomes := scanner.Run(ctx, s.scanner, symbols, func(_ context.Context, symbol string) (TickerAnalysis, error) {
		return s.AnalyzeHistory(bySymbol[symbol]), nil
	})

	report := &WatchlistReport{
		RunID:     uuid.New().String(),
		Generated: start,
		MinScore:  minScore,
		Total:     len(symbols),
		Results:   []TickerAnalysis{},
		Failed:    []TickerAnalysis{},
	}

	for _, o := range outcomes {
		a := o.Value
		if o.Err != nil {
			a = TickerAnalysis{Symbol: o.Symbol, Name: o.Symbol, Error: o.Err.Error()}
		}
		if a.Failed() {
			s.logger.Warn().Str("symbol", a.Symbol).Str("error", a.Error).Msg("ticker failed")
			report.Failed = append(report.Failed, a)
			continue
		}
		if a.GlobalScore >= minScore {
			report.Results = append(report.Results, a)
		}
	}

	Rank(report.Results)
	report.Elapsed = time.Since(start)

	s.logger.Info().
		Str("run_id", report.RunID).
		Int("tickers", report.Total).
		Int("ranked", len(report.Results)).
		Int("failed", len(report.Failed)).
		Int("min_score", minScore).
		Dur("elapsed", report.Elapsed).
		Msg("watchlist analyzed")

	return report
}

// Rank sorts analyses by global score descending, then by symbol
func Rank(analyses []TickerAnalysis) {
	slices.SortStableFunc(analyses, func(a, b TickerAnalysis) int {
		if c := cmp.Compare(b.GlobalScore, a.GlobalScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
}

// Alerts returns the analyses with a signal and a score at or above threshold
func Alerts(analyses []TickerAnalysis, threshold int) []TickerAnalysis {
	var out []TickerAnalysis
	for _, a := range analyses {
		if !a.Failed() && a.HasSignal && a.GlobalScore >= threshold {
			out = append(out, a)
		}
	}
	return out
}

// Alerts applies the configured alert threshold
func (s *Scorer) Alerts(analyses []TickerAnalysis) []TickerAnalysis {
	return Alerts(analyses, s.config.AlertScoreThreshold)
}
