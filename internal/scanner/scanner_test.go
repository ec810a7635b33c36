package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRunPreservesOrder(t *testing.T) {
	s := NewScanner(4, 0)
	symbols := []string{"AAPL", "MSFT", "NVDA", "AMZN", "META", "GOOG"}

	out := Run(context.Background(), s, symbols, func(_ context.Context, symbol string) (int, error) {
		return len(symbol), nil
	})

	if len(out) != len(symbols) {
		t.Fatalf("got %d outcomes, want %d", len(out), len(symbols))
	}
	for i, o := range out {
		if o.Symbol != symbols[i] {
			t.Errorf("outcome %d symbol = %s, want %s", i, o.Symbol, symbols[i])
		}
		if o.Value != len(symbols[i]) {
			t.Errorf("outcome %d value = %d, want %d", i, o.Value, len(symbols[i]))
		}
		if o.Failed() {
			t.Errorf("outcome %d unexpected error: %v", i, o.Err)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	s := NewScanner(2, 0)
	errBad := errors.New("bad history")

	out := Run(context.Background(), s, []string{"OK", "ERR", "PANIC", "OK2"}, func(_ context.Context, symbol string) (string, error) {
		switch symbol {
		case "ERR":
			return "", errBad
		case "PANIC":
			panic("boom")
		}
		return symbol, nil
	})

	if out[0].Failed() || out[3].Failed() {
		t.Errorf("healthy tickers failed: %v, %v", out[0].Err, out[3].Err)
	}
	if !errors.Is(out[1].Err, errBad) {
		t.Errorf("ERR outcome = %v, want %v", out[1].Err, errBad)
	}
	if out[2].Err == nil || !strings.Contains(out[2].Err.Error(), "panic") {
		t.Errorf("PANIC outcome = %v, want panic error", out[2].Err)
	}
}

func TestRunProgress(t *testing.T) {
	s := NewScanner(3, 0)

	var mu sync.Mutex
	var calls, last int
	s.SetProgressCallback(func(_ string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if done > last {
			last = done
		}
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
	})

	Run(context.Background(), s, []string{"A", "B", "C", "D", "E"}, func(context.Context, string) (struct{}, error) {
		return struct{}{}, nil
	})

	if calls != 5 || last != 5 {
		t.Errorf("progress calls = %d, last = %d, want 5/5", calls, last)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := Run(ctx, NewScanner(1, 0), []string{"A", "B"}, func(context.Context, string) (int, error) {
		return 1, nil
	})

	for _, o := range out {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", o.Symbol, o.Err)
		}
	}
}

func TestRunTimeoutPerTicker(t *testing.T) {
	s := NewScanner(2, 200*time.Millisecond)
	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "SLOW"}

	// Ten 60ms jobs on two workers outlast one timeout; only SLOW may fail.
	out := Run(context.Background(), s, symbols, func(ctx context.Context, symbol string) (int, error) {
		wait := 60 * time.Millisecond
		if symbol == "SLOW" {
			wait = time.Minute
		}
		select {
		case <-time.After(wait):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	for _, o := range out[:10] {
		if o.Failed() {
			t.Errorf("%s: err = %v, want success", o.Symbol, o.Err)
		}
	}
	if slow := out[10]; !errors.Is(slow.Err, context.DeadlineExceeded) {
		t.Errorf("SLOW: err = %v, want context.DeadlineExceeded", slow.Err)
	}
}

func TestNewScannerDefaultsWorkers(t *testing.T) {
	if s := NewScanner(0, 0); s.Workers() < 1 {
		t.Errorf("workers = %d, want >= 1", s.Workers())
	}
	if out := Run(context.Background(), NewScanner(2, 0), nil, func(context.Context, string) (int, error) { return 0, nil }); len(out) != 0 {
		t.Errorf("empty input produced %d outcomes", len(out))
	}
}
