package scanner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProgressCallback is called with progress updates
type ProgressCallback func(symbol string, done, total int)

// Scanner runs one unit of work per ticker on a bounded worker pool
type Scanner struct {
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
}

// NewScanner creates a new scanner. workers <= 0 uses one worker per CPU.
// timeout bounds each ticker's unit of work; <= 0 disables it.
func NewScanner(workers int, timeout time.Duration) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		workers: workers,
		timeout: timeout,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// Workers returns the pool size
func (s *Scanner) Workers() int {
	return s.workers
}

// Outcome is the result of one ticker's unit of work
type Outcome[T any] struct {
	Symbol string
	Value  T
	Err    error
}

// Failed reports whether the unit of work returned an error
func (o Outcome[T]) Failed() bool {
	return o.Err != nil
}

// Run calls fn once per symbol and returns the outcomes in input order.
// A failing or panicking ticker only marks its own outcome. After
// cancellation, tickers not yet started are marked with ctx.Err().
func Run[T any](ctx context.Context, s *Scanner, symbols []string, fn func(ctx context.Context, symbol string) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(symbols))
	if len(symbols) == 0 {
		return outcomes
	}

	jobChan := make(chan int, len(symbols))
	for i := range symbols {
		jobChan <- i
	}
	close(jobChan)

	workers := min(s.workers, len(symbols))
	var doneCount int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobChan {
				symbol := symbols[i]
				outcomes[i].Symbol = symbol

				if err := ctx.Err(); err != nil {
					outcomes[i].Err = err
				} else {
					outcomes[i].Value, outcomes[i].Err = safeCall(ctx, s.timeout, symbol, fn)
				}

				count := atomic.AddInt64(&doneCount, 1)
				if s.progressFunc != nil {
					s.progressFunc(symbol, int(count), len(symbols))
				}
			}
		}()
	}
	wg.Wait()

	return outcomes
}

func safeCall[T any](ctx context.Context, timeout time.Duration, symbol string, fn func(context.Context, string) (T, error)) (value T, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", symbol, r)
		}
	}()
	return fn(ctx, symbol)
}
