// Package daemon rescans a watchlist after every US market close and raises
// alerts for strong signals, skipping ticker and strategy pairs that alerted
// within a cooldown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jevit/stock-analyzer/internal/provider"
	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/pkg/model"
)

// Config holds daemon settings
type Config struct {
	Schedule   MarketSchedule
	RunDelay   time.Duration // after the session close, lets daily bars settle
	Cooldown   time.Duration // before a ticker and strategy may alert again
	Retention  time.Duration // alert records older than this are dropped
	RunOnStart bool          // scan immediately, then follow the schedule
	DryRun     bool          // log alerts without recording them
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Schedule:   DefaultMarketSchedule(),
		RunDelay:   30 * time.Minute,
		Cooldown:   24 * time.Hour,
		Retention:  30 * 24 * time.Hour,
		RunOnStart: true,
	}
}

// Validate checks daemon settings
func (c Config) Validate() error {
	var errs []error
	if c.RunDelay < 0 {
		errs = append(errs, fmt.Errorf("run_delay must not be negative, got %s", c.RunDelay))
	}
	if c.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must not be negative, got %s", c.Cooldown))
	}
	if c.Retention < c.Cooldown {
		errs = append(errs, fmt.Errorf("retention (%s) must cover the cooldown (%s)", c.Retention, c.Cooldown))
	}
	s := c.Schedule
	if s.OpenHour*60+s.OpenMin >= s.CloseHour*60+s.CloseMin {
		errs = append(errs, fmt.Errorf("session must open before it closes"))
	}
	return errors.Join(errs...)
}

// Options wires the daemon to the analysis pipeline
type Options struct {
	Provider    provider.Provider
	Scorer      *scoring.Scorer
	Scanner     *scanner.Scanner
	Watchlist   []model.Stock
	HistoryDays int
	History     *AlertHistory
	Logger      zerolog.Logger
}

// ScanSummary is the outcome of one scan
type ScanSummary struct {
	RunID      string                   `json:"run_id"`
	Time       time.Time                `json:"time"`
	Scanned    int                      `json:"tickers_scanned"`
	Failed     int                      `json:"tickers_failed"`
	Signals    int                      `json:"signals_found"`
	Duplicates int                      `json:"alerts_skipped_duplicate"`
	Alerts     []scoring.TickerAnalysis `json:"alerts"`
	Elapsed    time.Duration            `json:"elapsed_ns"`
}

// Daemon runs scheduled scans
type Daemon struct {
	config Config
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

// NewDaemon creates a daemon
func NewDaemon(cfg Config, opts Options) *Daemon {
	if opts.Scanner == nil {
		opts.Scanner = scanner.NewScanner(0, 0)
	}
	return &Daemon{
		config: cfg,
		opts:   opts,
		logger: opts.Logger.With().Str("component", "daemon").Logger(),
		now:    time.Now,
	}
}

// Scan fetches fresh histories, scores the watchlist and raises the alerts
// that are not duplicates
func (d *Daemon) Scan(ctx context.Context) (*ScanSummary, error) {
	if len(d.opts.Watchlist) == 0 {
		return nil, errors.New("empty watchlist")
	}
	start := d.now()

	// Bars cached by an earlier scan predate today's close
	if c, ok := d.opts.Provider.(interface{ Invalidate(string) }); ok {
		c.Invalidate("")
	}

	loaded := provider.LoadHistories(ctx, d.opts.Provider, d.opts.Scanner, d.opts.Watchlist, d.opts.HistoryDays)
	report := d.opts.Scorer.AnalyzeWatchlist(ctx, loaded.Histories, 0)
	report.AddFailures(loaded.Failed)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signals := d.opts.Scorer.Alerts(report.Results)
	fresh := d.opts.History.Filter(signals)

	summary := &ScanSummary{
		RunID:      report.RunID,
		Time:       start,
		Scanned:    report.Total,
		Failed:     len(report.Failed),
		Signals:    len(signals),
		Duplicates: len(signals) - len(fresh),
		Alerts:     fresh,
	}
	if summary.Alerts == nil {
		summary.Alerts = []scoring.TickerAnalysis{}
	}

	for _, a := range fresh {
		d.logger.Info().
			Str("symbol", a.Symbol).
			Str("strategy", a.BestStrategy).
			Int("score", a.GlobalScore).
			Float64("close", a.Close).
			Str("verdict", a.Verdict.Label).
			Bool("dry_run", d.config.DryRun).
			Msg("alert")
		if !d.config.DryRun {
			d.opts.History.Record(a)
		}
	}

	if !d.config.DryRun {
		if removed := d.opts.History.Cleanup(d.config.Retention); removed > 0 {
			d.logger.Debug().Int("removed", removed).Msg("old alert records dropped")
		}
		if err := d.opts.History.Save(); err != nil {
			return summary, fmt.Errorf("saving alert history: %w", err)
		}
	}

	summary.Elapsed = d.now().Sub(start)
	d.logger.Info().
		Str("run_id", summary.RunID).
		Int("tickers", summary.Scanned).
		Int("failed", summary.Failed).
		Int("signals", summary.Signals).
		Int("alerts", len(summary.Alerts)).
		Int("duplicates", summary.Duplicates).
		Dur("elapsed", summary.Elapsed).
		Msg("scan complete")

	return summary, nil
}

// Run scans on start when configured, then after every session close until
// ctx is cancelled. Scan errors are logged and do not stop the loop.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info().
		Int("tickers", len(d.opts.Watchlist)).
		Dur("run_delay", d.config.RunDelay).
		Dur("cooldown", d.config.Cooldown).
		Msg("daemon started")

	if d.config.RunOnStart {
		d.scan(ctx)
	}

	for {
		now := d.now()
		next := d.config.Schedule.NextRun(now, d.config.RunDelay)
		wait := next.Sub(now)
		d.logger.Info().
			Time("next_run", next).
			Str("in", FormatDuration(wait)).
			Msg("waiting for next scan")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info().Msg("daemon stopped")
			return nil
		case <-timer.C:
		}

		d.scan(ctx)
	}
}

func (d *Daemon) scan(ctx context.Context) {
	if _, err := d.Scan(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error().Err(err).Msg("scan failed")
	}
}
