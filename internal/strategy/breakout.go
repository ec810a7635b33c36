package strategy

import (
	"github.com/jevit/stock-analyzer/internal/indicator"
)

// BreakoutConfig holds configuration for the breakout strategy.
// The lookback window itself is indicator.Params.HighLookback.
type BreakoutConfig struct {
	VolumeMultiplier float64 // Minimum volume ratio for a confirmed breakout
	StrongVolume     float64 // Volume ratio earning full volume points
	MinATRPct        float64 // Minimum ATR% (flat stocks do not break out)
	GoodATRPct       float64 // ATR% earning full volatility points
	StopATR          float64
	TargetATR        float64
}

// DefaultBreakoutConfig returns default configuration
func DefaultBreakoutConfig() BreakoutConfig {
	return BreakoutConfig{
		VolumeMultiplier: 1.5,
		StrongVolume:     2.0,
		MinATRPct:        1.0,
		GoodATRPct:       2.0,
		StopATR:          2.5,
		TargetATR:        3.0,
	}
}

// BreakoutStrategy detects closes above the prior N-day high
// Buy signal when:
// 1. Close breaks the highest high of the previous N bars (today excluded)
// 2. Volume ratio is at least VolumeMultiplier
// 3. ATR% is at least MinATRPct
type BreakoutStrategy struct {
	config  BreakoutConfig
	minBars int
}

// NewBreakoutStrategy creates a new breakout strategy
func NewBreakoutStrategy(cfg BreakoutConfig, minBars int) *BreakoutStrategy {
	return &BreakoutStrategy{config: cfg, minBars: minBars}
}

// Name returns the strategy name
func (s *BreakoutStrategy) Name() string {
	return NameBreakout
}

// Description returns the strategy description
func (s *BreakoutStrategy) Description() string {
	return "Breakout - close above the prior lookback high on expanding volume"
}

// Evaluate scores the latest bar
func (s *BreakoutStrategy) Evaluate(series *indicator.Series) Result {
	r := newResult(s.Name())
	if !checkHistory(&r, series, s.minBars) {
		return r
	}

	today := series.Last()
	if !today.PriorHigh.Valid || !today.SMALong.Valid || !today.ATR.Valid {
		r.warn(0, "Missing indicators: prior high, SMA or ATR not calculated")
		return r
	}

	p := series.Params
	close := today.Close
	priorHigh := today.PriorHigh.V
	volRatio := today.VolumeRatio
	atrPct := today.ATRPct

	r.Details["close"] = close
	r.Details["prior_high"] = priorHigh
	r.Details["atr"] = today.ATR.V
	r.Details["atr_pct"] = atrPct.Or(0)
	r.Details["volume_ratio"] = volRatio.Or(0)
	r.Details["sma_long"] = today.SMALong.V

	// Condition 1: close above the prior high
	breakout := close > priorHigh
	if breakout {
		pct := (close - priorHigh) / priorHigh * 100
		points := 25
		if pct >= 3 {
			points = 35
		} else if pct >= 1 {
			points = 30
		}
		r.reason(points, "Close above the %d-day high (+%.1f%%)", p.HighLookback, pct)
	} else {
		r.warn(0, "No breakout (close %.2f vs high %.2f)", close, priorHigh)
	}

	// Condition 2: volume surge
	volumeSurge := volRatio.GE(s.config.VolumeMultiplier)
	switch {
	case volRatio.GE(s.config.StrongVolume):
		r.reason(35, "Very high volume (%.1fx average)", volRatio.V)
	case volumeSurge:
		r.reason(25, "High volume (%.1fx average)", volRatio.V)
	case volRatio.GE(1.0):
		r.warn(10, "Average volume (%.1fx) - weak confirmation", volRatio.V)
	default:
		r.warn(0, "Low volume (%sx) - suspicious breakout", volRatio)
	}

	// Condition 3: enough volatility
	volatile := atrPct.GE(s.config.MinATRPct)
	switch {
	case atrPct.GE(s.config.GoodATRPct):
		r.reason(20, "Good volatility (ATR %.1f%%)", atrPct.V)
	case volatile:
		r.reason(15, "Sufficient volatility (ATR %.1f%%)", atrPct.V)
	default:
		r.warn(0, "Stock too flat (ATR %s%%)", atrPct)
	}

	// Bonus: trend context
	if close > today.SMALong.V {
		r.reason(10, "Underlying uptrend (price > %s)", smaLabel(p.SMALong))
	} else {
		r.warn(0, "Breakout against the trend (price < %s)", smaLabel(p.SMALong))
	}

	r.clamp()
	r.Signal = breakout && volumeSurge && volatile
	r.Levels = atrLevels(close, today.ATR.V, s.config.StopATR, s.config.TargetATR)

	return r
}
