package scoring

import (
	"sort"
	"time"

	"github.com/jevit/stock-analyzer/internal/indicator"
	"github.com/jevit/stock-analyzer/internal/strategy"
)

// Tier is the verdict bucket derived from the global score
type Tier string

const (
	TierFavorable Tier = "favorable"
	TierCorrect   Tier = "correct"
	TierWatch     Tier = "watch"
	TierWait      Tier = "wait"
)

// Verdict is the plain-language conclusion attached to an analysis
type Verdict struct {
	Tier         Tier     `json:"tier"`
	Emoji        string   `json:"emoji"`
	Label        string   `json:"label"`
	Detail       string   `json:"detail"`
	Action       string   `json:"action"`
	Positives    int      `json:"positives"`
	Negatives    int      `json:"negatives"`
	RiskWarnings []string `json:"risk_warnings,omitempty"`
}

// Statuses are short labelled readings for beginners
type Statuses struct {
	Trend      string `json:"trend"`
	Momentum   string `json:"momentum"`
	Volatility string `json:"volatility"`
	Volume     string `json:"volume"`
	Overall    string `json:"overall"`
}

// TickerAnalysis is the consolidated result of every detector on one ticker
type TickerAnalysis struct {
	Symbol string    `json:"ticker"`
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`

	Change1DPct indicator.Value `json:"change_1d_pct"`
	RSI         indicator.Value `json:"rsi"`
	ATRPct      indicator.Value `json:"atr_pct"`
	VolumeRatio indicator.Value `json:"volume_ratio"`
	DistSMALong indicator.Value `json:"dist_sma200_pct"`

	GlobalScore     int    `json:"global_score"`
	BestStrategy    string `json:"best_strategy"`
	SignalsDetected int    `json:"signals_detected"`
	ConfluenceBonus int    `json:"confluence_bonus"`
	HasSignal       bool   `json:"has_signal"`

	// Levels come from the best strategy, and only when it signaled
	Levels *strategy.Levels `json:"levels,omitempty"`

	Strategies []strategy.Result `json:"strategy_results"`
	Reasons    []string          `json:"reasons"`
	Warnings   []string          `json:"warnings"`

	RiskSummary   string   `json:"risk_summary"`
	Statuses      Statuses `json:"statuses"`
	NoviceSummary string   `json:"novice_summary"`
	Verdict       Verdict  `json:"verdict"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the ticker could not be analyzed
func (a *TickerAnalysis) Failed() bool {
	return a.Error != ""
}

// MainReason returns the first reason, or an empty string
func (a *TickerAnalysis) MainReason() string {
	if len(a.Reasons) == 0 {
		return ""
	}
	return a.Reasons[0]
}

// Result returns the named detector's result
func (a *TickerAnalysis) Result(name string) (strategy.Result, bool) {
	for _, r := range a.Strategies {
		if r.Strategy == name {
			return r, true
		}
	}
	return strategy.Result{}, false
}

// WatchlistReport is the ranked outcome of a batch analysis
type WatchlistReport struct {
	RunID     string           `json:"run_id"`
	Generated time.Time        `json:"generated_at"`
	MinScore  int              `json:"min_score"`
	Total     int              `json:"total"`
	Results   []TickerAnalysis `json:"results"`
	Failed    []TickerAnalysis `json:"failed"`
	Elapsed   time.Duration    `json:"elapsed_ns"`
}

// AddFailures records tickers that never reached the scorer, such as failed
// downloads, in symbol order
func (r *WatchlistReport) AddFailures(failed map[string]error) {
	symbols := make([]string, 0, len(failed))
	for sym := range failed {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		r.Failed = append(r.Failed, TickerAnalysis{Symbol: sym, Name: sym, Error: failed[sym].Error()})
	}
	r.Total += len(symbols)
}
