package daemon

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jevit/stock-analyzer/internal/indicator"
	"github.com/jevit/stock-analyzer/internal/provider"
	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/internal/strategy"
	"github.com/jevit/stock-analyzer/pkg/model"
)

type countingProvider struct {
	mu    sync.Mutex
	calls map[string]int
}

func (p *countingProvider) Name() string      { return "counting" }
func (p *countingProvider) IsAvailable() bool { return true }

func (p *countingProvider) GetDailyCandles(_ context.Context, symbol string, days int) ([]model.Candle, error) {
	p.mu.Lock()
	p.calls[symbol]++
	p.mu.Unlock()

	if symbol != "AAA" {
		return nil, fmt.Errorf("%s: %w", symbol, provider.ErrNoData)
	}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, 320)
	for i := range candles {
		c := 100 + float64(i)*0.1 + 3*math.Sin(float64(i)/6)
		candles[i] = model.Candle{
			Time:   start.AddDate(0, 0, i),
			Open:   c - 0.2,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100000,
		}
	}
	return candles, nil
}

func newTestDaemon(t *testing.T, cfg Config, stocks []model.Stock) (*Daemon, *countingProvider, string) {
	t.Helper()

	stub := &countingProvider{calls: make(map[string]int)}
	path := filepath.Join(t.TempDir(), "alerts.json")
	history, err := NewAlertHistory(path, cfg.Cooldown)
	if err != nil {
		t.Fatal(err)
	}

	registry := strategy.NewRegistry(strategy.DefaultConfig())
	d := NewDaemon(cfg, Options{
		Provider:    provider.NewCachingProvider(stub, 300, time.Hour),
		Scorer:      scoring.NewScorer(registry.All(), indicator.DefaultParams(), scoring.DefaultConfig(), zerolog.Nop()),
		Scanner:     scanner.NewScanner(2, 0),
		Watchlist:   stocks,
		HistoryDays: 300,
		History:     history,
		Logger:      zerolog.Nop(),
	})
	return d, stub, path
}

func TestScan(t *testing.T) {
	stocks := []model.Stock{{Symbol: "AAA"}, {Symbol: "ZZZ"}}
	d, stub, path := newTestDaemon(t, DefaultConfig(), stocks)

	first, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if first.Scanned != 2 || first.Failed != 1 || first.RunID == "" {
		t.Errorf("first scan = %+v", first)
	}
	if first.Signals != first.Duplicates+len(first.Alerts) || first.Duplicates != 0 {
		t.Errorf("signals %d, duplicates %d, alerts %d", first.Signals, first.Duplicates, len(first.Alerts))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("alert history not saved: %v", err)
	}

	second, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan() error = %v", err)
	}
	if len(second.Alerts) != 0 || second.Duplicates != second.Signals {
		t.Errorf("second scan raised %d alerts, duplicates %d of %d", len(second.Alerts), second.Duplicates, second.Signals)
	}

	// Every scan refetches past the cache
	if got := stub.calls["AAA"]; got != 2 {
		t.Errorf("AAA fetched %d times, want 2", got)
	}
}

func TestScanDryRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DryRun = true
	d, _, path := newTestDaemon(t, cfg, []model.Stock{{Symbol: "AAA"}})

	if _, err := d.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dry run wrote the alert history: %v", err)
	}
}

func TestScanEmptyWatchlist(t *testing.T) {
	d, _, _ := newTestDaemon(t, DefaultConfig(), nil)
	if _, err := d.Scan(context.Background()); err == nil {
		t.Error("expected an error for an empty watchlist")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RunOnStart = false
	d, stub, _ := newTestDaemon(t, cfg, []model.Stock{{Symbol: "AAA"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
	if len(stub.calls) != 0 {
		t.Errorf("cancelled daemon fetched %v", stub.calls)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Retention = time.Hour
	cfg.Schedule.CloseHour = 8
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation errors")
	}
}
