package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jevit/stock-analyzer/internal/scoring"
)

// AlertRecord is one raised alert
type AlertRecord struct {
	Symbol   string    `json:"ticker"`
	Strategy string    `json:"strategy"`
	Score    int       `json:"score"`
	Price    float64   `json:"price"`
	Time     time.Time `json:"timestamp"`
}

// AlertHistory remembers raised alerts so the same ticker and strategy do
// not alert twice within the cooldown. It is persisted as JSON.
type AlertHistory struct {
	path     string
	cooldown time.Duration
	records  map[string]AlertRecord
	mu       sync.Mutex
	now      func() time.Time
}

// NewAlertHistory loads the history at path. A missing file starts empty.
func NewAlertHistory(path string, cooldown time.Duration) (*AlertHistory, error) {
	h := &AlertHistory{
		path:     path,
		cooldown: cooldown,
		records:  make(map[string]AlertRecord),
		now:      time.Now,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading alert history: %w", err)
	}
	if err := json.Unmarshal(data, &h.records); err != nil {
		return nil, fmt.Errorf("parsing alert history %s: %w", path, err)
	}
	return h, nil
}

func alertKey(symbol, strategyName string) string {
	return strings.ToUpper(symbol) + ":" + strategyName
}

// IsDuplicate reports whether symbol alerted for strategyName within the
// cooldown
func (h *AlertHistory) IsDuplicate(symbol, strategyName string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.records[alertKey(symbol, strategyName)]
	return ok && rec.Time.After(h.now().Add(-h.cooldown))
}

// Filter keeps the analyses with a signal and a best strategy that have not
// alerted within the cooldown
func (h *AlertHistory) Filter(analyses []scoring.TickerAnalysis) []scoring.TickerAnalysis {
	var out []scoring.TickerAnalysis
	for _, a := range analyses {
		if !a.HasSignal || a.BestStrategy == "" {
			continue
		}
		if h.IsDuplicate(a.Symbol, a.BestStrategy) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Record marks a as alerted now
func (h *AlertHistory) Record(a scoring.TickerAnalysis) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[alertKey(a.Symbol, a.BestStrategy)] = AlertRecord{
		Symbol:   strings.ToUpper(a.Symbol),
		Strategy: a.BestStrategy,
		Score:    a.GlobalScore,
		Price:    a.Close,
		Time:     h.now(),
	}
}

// Cleanup drops records older than maxAge and returns how many went
func (h *AlertHistory) Cleanup(maxAge time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-maxAge)
	removed := 0
	for key, rec := range h.records {
		if rec.Time.Before(cutoff) {
			delete(h.records, key)
			removed++
		}
	}
	return removed
}

// Recent returns the records of the last window, newest first
func (h *AlertHistory) Recent(window time.Duration) []AlertRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-window)
	var out []AlertRecord
	for _, rec := range h.records {
		if rec.Time.After(cutoff) {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b AlertRecord) int {
		return b.Time.Compare(a.Time)
	})
	return out
}

// Len returns the number of records
func (h *AlertHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// Save writes the history atomically
func (h *AlertHistory) Save() error {
	h.mu.Lock()
	data, err := json.MarshalIndent(h.records, "", "  ")
	h.mu.Unlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".alert-history-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), h.path)
}
