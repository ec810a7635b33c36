package strategy

import (
	"errors"
	"fmt"

	"github.com/jevit/stock-analyzer/internal/indicator"
)

// Detector names, in the order the scorer evaluates them
const (
	NameTrendPullback  = "Trend Pullback"
	NameBreakout       = "Breakout"
	NameMeanReversion  = "Mean Reversion"
	NameMACDCrossover  = "MACD Crossover"
	NameGoldenCross    = "Golden Cross"
	NameVolumeBreakout = "Volume Breakout"
)

// ErrUnknownStrategy is returned when a detector name is not registered
var ErrUnknownStrategy = errors.New("unknown strategy")

// Levels are indicative trade levels attached to a result
type Levels struct {
	Entry      float64 `json:"entry_level"`
	Stop       float64 `json:"invalidation_level"`
	Target     float64 `json:"target_level"`
	RiskReward float64 `json:"risk_reward_ratio"`
}

// Complete reports whether every level is a usable price
func (l *Levels) Complete() bool {
	return l != nil && l.Entry > 0 && l.Stop > 0 && l.Target > 0
}

// Result is the output of one detector at one evaluation point.
// Reasons list the conditions that held, Warnings the ones that failed or
// carry risk, both in evaluation order.
type Result struct {
	Strategy string             `json:"strategy_name"`
	Signal   bool               `json:"signal_detected"`
	Score    int                `json:"score"`
	Reasons  []string           `json:"reasons"`
	Warnings []string           `json:"warnings"`
	Levels   *Levels            `json:"levels,omitempty"`
	Details  map[string]float64 `json:"details,omitempty"`
}

// Detector evaluates one rule set against the latest bar of a series.
// Implementations look only at bars up to and including the last one and
// report data problems as warnings, never as errors.
type Detector interface {
	// Name returns the strategy name
	Name() string

	// Description returns a brief description
	Description() string

	// Evaluate scores the latest bar of the series
	Evaluate(s *indicator.Series) Result
}

// Config bundles the settings of all six detectors
type Config struct {
	MinBars        int
	Pullback       PullbackConfig
	Breakout       BreakoutConfig
	MeanReversion  MeanReversionConfig
	MACD           MACDConfig
	GoldenCross    GoldenCrossConfig
	VolumeBreakout VolumeBreakoutConfig
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinBars:        200,
		Pullback:       DefaultPullbackConfig(),
		Breakout:       DefaultBreakoutConfig(),
		MeanReversion:  DefaultMeanReversionConfig(),
		MACD:           DefaultMACDConfig(),
		GoldenCross:    DefaultGoldenCrossConfig(),
		VolumeBreakout: DefaultVolumeBreakoutConfig(),
	}
}

// Validate checks detector settings
func (c Config) Validate() error {
	var errs []error
	if c.MinBars < 2 {
		errs = append(errs, fmt.Errorf("min_bars must be at least 2, got %d", c.MinBars))
	}
	if c.Pullback.MaxDistancePct <= 0 {
		errs = append(errs, fmt.Errorf("pullback_max_distance_pct must be positive"))
	}
	if c.Breakout.VolumeMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("breakout_volume_multiplier must be positive"))
	}
	if c.Breakout.MinATRPct < 0 {
		errs = append(errs, fmt.Errorf("breakout_min_atr_pct must not be negative"))
	}
	if c.GoldenCross.MaxAge < 1 {
		errs = append(errs, fmt.Errorf("golden_cross_max_age must be at least 1"))
	}
	if c.VolumeBreakout.SwingLowBars < 1 {
		errs = append(errs, fmt.Errorf("volume breakout swing low bars must be at least 1"))
	}
	return errors.Join(errs...)
}

func newResult(name string) Result {
	return Result{
		Strategy: name,
		Reasons:  []string{},
		Warnings: []string{},
		Details:  make(map[string]float64),
	}
}

// reason records a condition that held and its points
func (r *Result) reason(points int, format string, args ...any) {
	r.Score += points
	r.Reasons = append(r.Reasons, fmt.Sprintf(format, args...))
}

// warn records a failed or risky condition; some still earn partial points
func (r *Result) warn(points int, format string, args ...any) {
	r.Score += points
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// headline puts the signal summary first
func (r *Result) headline(text string) {
	r.Reasons = append([]string{text}, r.Reasons...)
}

func (r *Result) clamp() {
	r.Score = max(0, min(100, r.Score))
}

// checkHistory rejects series that are too short to score
func checkHistory(r *Result, s *indicator.Series, minBars int) bool {
	if s.Len() < minBars {
		r.warn(0, "Insufficient data: %d bars, need %d", s.Len(), minBars)
		return false
	}
	return true
}

func smaLabel(period int) string {
	return fmt.Sprintf("SMA%d", period)
}
