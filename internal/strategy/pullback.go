package strategy

import (
	"math"

	"github.com/jevit/stock-analyzer/internal/indicator"
)

// PullbackConfig holds configuration for the trend pullback strategy
type PullbackConfig struct {
	MaxDistancePct float64 // Max distance from the medium SMA counted as a pullback (2 = 2%)
	StrongVolume   float64 // Volume ratio earning full volume points
	ATRMultiplier  float64 // Stop and target distance in ATRs
}

// DefaultPullbackConfig returns default configuration
func DefaultPullbackConfig() PullbackConfig {
	return PullbackConfig{
		MaxDistancePct: 2.0,
		StrongVolume:   1.5,
		ATRMultiplier:  2.0,
	}
}

// PullbackStrategy implements the "Pullback in Uptrend" strategy
// Buy signal when:
// 1. Close is above SMA200 (established uptrend)
// 2. Close is within MaxDistancePct of SMA50
// 3. RSI is above 50 (bonus when it just crossed)
// 4. Volume is above its average
type PullbackStrategy struct {
	config  PullbackConfig
	minBars int
}

// NewPullbackStrategy creates a new pullback strategy
func NewPullbackStrategy(cfg PullbackConfig, minBars int) *PullbackStrategy {
	return &PullbackStrategy{config: cfg, minBars: minBars}
}

// Name returns the strategy name
func (s *PullbackStrategy) Name() string {
	return NameTrendPullback
}

// Description returns the strategy description
func (s *PullbackStrategy) Description() string {
	return "Pullback in uptrend - price above SMA200 retraces to SMA50 with momentum returning"
}

// Evaluate scores the latest bar
func (s *PullbackStrategy) Evaluate(series *indicator.Series) Result {
	r := newResult(s.Name())
	if !checkHistory(&r, series, s.minBars) {
		return r
	}

	today := series.Last()
	if !today.SMAMedium.Valid || !today.SMALong.Valid || !today.RSI.Valid || !today.ATR.Valid {
		r.warn(0, "Missing indicators: SMA, RSI or ATR not calculated")
		return r
	}

	p := series.Params
	close := today.Close
	dist := math.Abs(today.DistSMAMedium.Or(0))
	rsi := today.RSI.V
	volRatio := today.VolumeRatio

	r.Details["close"] = close
	r.Details["sma_medium"] = today.SMAMedium.V
	r.Details["sma_long"] = today.SMALong.V
	r.Details["rsi"] = rsi
	r.Details["atr"] = today.ATR.V
	r.Details["volume_ratio"] = volRatio.Or(0)
	r.Details["dist_sma_medium_pct"] = dist

	// Condition 1: uptrend
	uptrend := close > today.SMALong.V
	if uptrend {
		r.reason(25, "Price above %s (uptrend)", smaLabel(p.SMALong))
	} else {
		r.warn(0, "Price below %s - no established uptrend", smaLabel(p.SMALong))
	}

	// Condition 2: close to the medium SMA, closer scores higher
	nearSMA := dist <= s.config.MaxDistancePct
	if nearSMA {
		proximity := math.Max(0, 25-(dist/s.config.MaxDistancePct)*15)
		r.reason(int(proximity), "Price near %s (%.1f%% away)", smaLabel(p.SMAMedium), dist)
	} else {
		r.warn(0, "Price too far from %s (%.1f%%)", smaLabel(p.SMAMedium), dist)
	}

	// Condition 3: RSI momentum
	switch {
	case today.RSICrossedUp50 && rsi > 50:
		r.reason(25, "RSI crossed above 50 (%.1f)", rsi)
	case rsi > 50:
		r.reason(15, "RSI above 50 (%.1f)", rsi)
	default:
		r.warn(0, "RSI below 50 (%.1f) - weak momentum", rsi)
	}

	// Condition 4: volume confirmation
	volumeConfirm := volRatio.GT(1.0)
	switch {
	case volRatio.GE(s.config.StrongVolume):
		r.reason(25, "Strong volume (%.1fx average)", volRatio.V)
	case volRatio.GE(1.0):
		r.reason(15, "Healthy volume (%.1fx average)", volRatio.V)
	default:
		r.warn(0, "Low volume (%sx average)", volRatio)
	}

	r.clamp()
	r.Signal = uptrend && nearSMA && rsi > 50 && volumeConfirm
	r.Levels = atrLevels(close, today.ATR.V, s.config.ATRMultiplier, s.config.ATRMultiplier)

	return r
}
