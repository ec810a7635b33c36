package provider

import (
	"context"
	"sync"
	"time"

	"github.com/jevit/stock-analyzer/pkg/model"
)

// DefaultCacheTTL is how long cached histories stay fresh
const DefaultCacheTTL = 12 * time.Hour

type cacheEntry struct {
	candles   []model.Candle
	fetchedAt time.Time
}

// CachingProvider wraps a Provider with an in-memory cache for GetDailyCandles.
// Analysis and backtest of the same ticker share one download.
type CachingProvider struct {
	inner   Provider
	cache   map[string]cacheEntry
	mu      sync.Mutex
	maxDays int
	ttl     time.Duration
	now     func() time.Time
}

// NewCachingProvider creates a caching wrapper. maxDays is the number of days
// to always fetch, ttl <= 0 uses DefaultCacheTTL.
func NewCachingProvider(inner Provider, maxDays int, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingProvider{
		inner:   inner,
		cache:   make(map[string]cacheEntry),
		maxDays: maxDays,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (p *CachingProvider) Name() string      { return p.inner.Name() }
func (p *CachingProvider) IsAvailable() bool { return p.inner.IsAvailable() }

func (p *CachingProvider) GetDailyCandles(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	p.mu.Lock()
	entry, ok := p.cache[symbol]
	p.mu.Unlock()

	fresh := ok && p.now().Sub(entry.fetchedAt) < p.ttl
	if fresh && (days <= 0 || len(entry.candles) >= days || days <= p.maxDays) {
		return lastN(entry.candles, days), nil
	}

	// Fetch max days to serve later requests in one call
	fetchDays := max(p.maxDays, days)

	candles, err := p.inner.GetDailyCandles(ctx, symbol, fetchDays)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[symbol] = cacheEntry{candles: candles, fetchedAt: p.now()}
	p.mu.Unlock()

	return lastN(candles, days), nil
}

// Invalidate drops one symbol, or everything for an empty symbol
func (p *CachingProvider) Invalidate(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if symbol == "" {
		p.cache = make(map[string]cacheEntry)
		return
	}
	delete(p.cache, symbol)
}
