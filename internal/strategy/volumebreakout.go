package strategy

import (
	"math"

	"github.com/jevit/stock-analyzer/internal/indicator"
)

// VolumeBreakoutConfig holds configuration for the volume breakout strategy.
// The high window is indicator.Params.HighShortLookback.
type VolumeBreakoutConfig struct {
	MinVolumeRatio float64 // Volume ratio required for a signal
	MinScore       int
	SwingLowBars   int     // Bars whose lowest low anchors the stop
	SwingLowBuffer float64 // Stop sits this fraction of the swing low
	StopATR        float64
	RewardMultiple float64
}

// DefaultVolumeBreakoutConfig returns default configuration
func DefaultVolumeBreakoutConfig() VolumeBreakoutConfig {
	return VolumeBreakoutConfig{
		MinVolumeRatio: 1.5,
		MinScore:       65,
		SwingLowBars:   3,
		SwingLowBuffer: 0.99,
		StopATR:        2.0,
		RewardMultiple: 2.5,
	}
}

// VolumeBreakoutStrategy detects an intraday break of the prior short-window
// high on exploding volume
type VolumeBreakoutStrategy struct {
	config  VolumeBreakoutConfig
	minBars int
}

// NewVolumeBreakoutStrategy creates a new volume breakout strategy
func NewVolumeBreakoutStrategy(cfg VolumeBreakoutConfig, minBars int) *VolumeBreakoutStrategy {
	return &VolumeBreakoutStrategy{config: cfg, minBars: minBars}
}

// Name returns the strategy name
func (s *VolumeBreakoutStrategy) Name() string {
	return NameVolumeBreakout
}

// Description returns the strategy description
func (s *VolumeBreakoutStrategy) Description() string {
	return "Volume breakout - new short-term high on a volume explosion"
}

// Evaluate scores the latest bar
func (s *VolumeBreakoutStrategy) Evaluate(series *indicator.Series) Result {
	r := newResult(s.Name())
	if !checkHistory(&r, series, s.minBars) {
		return r
	}

	today := series.Last()
	if !today.VolumeAvg.Valid || !today.PriorHighShort.Valid {
		r.warn(0, "Missing indicators: volume average or prior high not calculated")
		return r
	}

	p := series.Params
	close := today.Close
	priorHigh := today.PriorHighShort.V
	vol := today.VolumeRatio

	r.Details["high"] = today.Candle.High
	r.Details["prior_high"] = priorHigh
	r.Details["volume_ratio"] = vol.Or(0)

	// 1. Price breakout
	breakout := today.Candle.High > priorHigh
	if breakout {
		pct := (today.Candle.High - priorHigh) / priorHigh * 100
		switch {
		case pct > 3:
			r.reason(30, "Strong breakout: +%.1f%% above the %d-day high", pct, p.HighShortLookback)
		case pct > 1:
			r.reason(25, "Breakout of %.1f%%", pct)
		default:
			r.reason(15, "Slight breakout (%.1f%%)", pct)
		}
	} else {
		r.warn(0, "No break above the %d-day high (%.2f)", p.HighShortLookback, priorHigh)
	}

	// 2. Volume explosion
	if vol.Valid {
		switch {
		case vol.V > 3.0:
			r.reason(35, "VOLUME EXPLOSION: %.1fx", vol.V)
		case vol.V > 2.0:
			r.reason(30, "Very strong volume (%.1fx)", vol.V)
		case vol.V > 1.5:
			r.reason(20, "High volume (%.1fx)", vol.V)
		case vol.V > 1.0:
			r.warn(10, "Volume weak for a breakout (%.1fx)", vol.V)
		default:
			r.warn(0, "Insufficient volume (%.1fx)", vol.V)
		}
	}

	// 3. RSI momentum
	if rsi := today.RSI; rsi.Valid {
		switch {
		case rsi.V > 70:
			r.reason(15, "Very strong momentum (RSI %.0f)", rsi.V)
		case rsi.V > 60:
			r.reason(12, "Good momentum (RSI %.0f)", rsi.V)
		case rsi.V > 50:
			r.reason(8, "Positive momentum (RSI %.0f)", rsi.V)
		default:
			r.warn(0, "Weak momentum (RSI %.0f)", rsi.V)
		}
	}

	// 4. Trend context
	if today.SMAMedium.Valid && today.SMALong.Valid {
		if today.SMAMedium.V > today.SMALong.V {
			r.reason(10, "Bullish context (%s > %s)", smaLabel(p.SMAMedium), smaLabel(p.SMALong))
		} else {
			r.warn(0, "Bearish context (%s < %s)", smaLabel(p.SMAMedium), smaLabel(p.SMALong))
		}
	}

	// 5. Volatility
	if atrPct := today.ATRPct; atrPct.Valid {
		switch {
		case atrPct.V > 2.0 && atrPct.V < 6.0:
			r.reason(10, "Suitable volatility (%.1f%%)", atrPct.V)
		case atrPct.V >= 6.0:
			r.warn(5, "High volatility (%.1f%%)", atrPct.V)
		}
	}

	r.clamp()

	switch {
	case breakout && vol.GT(s.config.MinVolumeRatio) && r.Score >= s.config.MinScore:
		r.Signal = true
		stop := math.Max(s.swingLow(series)*s.config.SwingLowBuffer, close-s.config.StopATR*atrOrDefault(today))
		r.Levels = riskMultipleLevels(close, stop, s.config.RewardMultiple)
		r.headline("Volume breakout signal - strong momentum potential")
	case breakout && !vol.GE(s.config.MinVolumeRatio):
		r.warn(0, "Breakout without volume - weak signal")
	case vol.GT(2.0) && !breakout:
		r.warn(0, "Strong volume but no price breakout")
	}

	return r
}

// swingLow is the lowest low of the last SwingLowBars bars
func (s *VolumeBreakoutStrategy) swingLow(series *indicator.Series) float64 {
	low := series.Last().Candle.Low
	for i := 1; i < s.config.SwingLowBars; i++ {
		b := series.Back(i)
		if b == nil {
			break
		}
		low = math.Min(low, b.Candle.Low)
	}
	return low
}
