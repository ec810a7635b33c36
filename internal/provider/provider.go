package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/pkg/model"
)

// ErrNoData is returned when a provider has no history for a symbol
var ErrNoData = errors.New("no data available")

// Provider defines the interface for daily history sources
type Provider interface {
	// Name returns the provider name
	Name() string

	// GetDailyCandles fetches up to days daily bars, oldest first
	GetDailyCandles(ctx context.Context, symbol string, days int) ([]model.Candle, error)

	// IsAvailable checks if the provider can serve requests
	IsAvailable() bool
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// FallbackProvider tries multiple providers in order
type FallbackProvider struct {
	providers []Provider
}

// NewFallbackProvider creates a new fallback provider
func NewFallbackProvider(providers ...Provider) *FallbackProvider {
	// Filter to only available providers
	available := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.IsAvailable() {
			available = append(available, p)
		}
	}
	return &FallbackProvider{providers: available}
}

// Name returns the combined provider name
func (f *FallbackProvider) Name() string {
	return "fallback"
}

// GetDailyCandles tries each provider in order until one succeeds
func (f *FallbackProvider) GetDailyCandles(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	if len(f.providers) == 0 {
		return nil, &ProviderError{Provider: f.Name(), Err: errors.New("no provider available")}
	}

	var errs []error
	for _, p := range f.providers {
		data, err := p.GetDailyCandles(ctx, symbol, days)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// IsAvailable returns true if any provider is available
func (f *FallbackProvider) IsAvailable() bool {
	return len(f.providers) > 0
}

// Providers returns the list of underlying providers
func (f *FallbackProvider) Providers() []Provider {
	return f.providers
}

// IsRetryable reports whether err is a provider error worth retrying
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// LoadResult holds the histories fetched for a watchlist
type LoadResult struct {
	Histories []model.History
	Failed    map[string]error
}

// LoadHistories fetches every stock's history on the scanner pool, in input
// order. Fetch failures are collected per symbol.
func LoadHistories(ctx context.Context, p Provider, sc *scanner.Scanner, stocks []model.Stock, days int) LoadResult {
	bySymbol := make(map[string]model.Stock, len(stocks))
	symbols := make([]string, 0, len(stocks))
	for _, s := range stocks {
		if _, dup := bySymbol[s.Symbol]; dup {
			continue
		}
		bySymbol[s.Symbol] = s
		symbols = append(symbols, s.Symbol)
	}

	outcomes := scanner.Run(ctx, sc, symbols, func(ctx context.Context, symbol string) ([]model.Candle, error) {
		return p.GetDailyCandles(ctx, symbol, days)
	})

	result := LoadResult{Failed: make(map[string]error)}
	for _, o := range outcomes {
		if o.Err != nil {
			result.Failed[o.Symbol] = o.Err
			continue
		}
		if len(o.Value) == 0 {
			result.Failed[o.Symbol] = fmt.Errorf("%s: %w", o.Symbol, ErrNoData)
			continue
		}
		result.Histories = append(result.Histories, model.History{Stock: bySymbol[o.Symbol], Candles: o.Value})
	}
	return result
}

// lastN returns the most recent n candles, or all of them when n <= 0
func lastN(candles []model.Candle, n int) []model.Candle {
	if n > 0 && len(candles) > n {
		return candles[len(candles)-n:]
	}
	return candles
}
