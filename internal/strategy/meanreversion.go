package strategy

import (
	"github.com/jevit/stock-analyzer/internal/indicator"
)

// MeanReversionConfig holds configuration for the mean reversion strategy
type MeanReversionConfig struct {
	OversoldRSI  float64 // RSI threshold for oversold
	ExtremeRSI   float64 // RSI threshold for deeply oversold
	WeakRSI      float64 // RSI below this still earns partial points
	StrongVolume float64
	StopATR      float64
}

// DefaultMeanReversionConfig returns default configuration
func DefaultMeanReversionConfig() MeanReversionConfig {
	return MeanReversionConfig{
		OversoldRSI:  30,
		ExtremeRSI:   25,
		WeakRSI:      40,
		StrongVolume: 1.5,
		StopATR:      1.5,
	}
}

// MeanReversionStrategy detects rebounds from the lower Bollinger Band
// Buy signal when:
// 1. Price closed at or below the lower band today or in the last two bars
// 2. RSI is oversold today or yesterday
// 3. Price is recovering (up on the day and back above the lower band)
// Target is the middle band.
type MeanReversionStrategy struct {
	config  MeanReversionConfig
	minBars int
}

// NewMeanReversionStrategy creates a new mean reversion strategy
func NewMeanReversionStrategy(cfg MeanReversionConfig, minBars int) *MeanReversionStrategy {
	return &MeanReversionStrategy{config: cfg, minBars: minBars}
}

// Name returns the strategy name
func (s *MeanReversionStrategy) Name() string {
	return NameMeanReversion
}

// Description returns the strategy description
func (s *MeanReversionStrategy) Description() string {
	return "Mean reversion - oversold bounce off the lower Bollinger Band toward the middle band"
}

// Evaluate scores the latest bar
func (s *MeanReversionStrategy) Evaluate(series *indicator.Series) Result {
	r := newResult(s.Name())
	if !checkHistory(&r, series, s.minBars) {
		return r
	}

	today := series.Last()
	prev := series.Back(1)
	prev2 := series.Back(2)

	if !today.BBLower.Valid || !today.BBMiddle.Valid || !prev.BBLower.Valid {
		r.warn(0, "Bollinger Bands not calculated")
		return r
	}
	if !today.RSI.Valid || !today.ATR.Valid || !today.SMALong.Valid {
		r.warn(0, "Missing indicators: SMA, RSI or ATR not calculated")
		return r
	}

	cfg := s.config
	close := today.Close
	bbLower := today.BBLower.V
	rsi := today.RSI.V
	prevRSI := prev.RSI

	r.Details["close"] = close
	r.Details["bb_lower"] = bbLower
	r.Details["bb_middle"] = today.BBMiddle.V
	r.Details["rsi"] = rsi
	r.Details["atr"] = today.ATR.V
	r.Details["volume_ratio"] = today.VolumeRatio.Or(0)

	// Condition 1: at or below the lower band recently
	wasBelow := prev.Close <= prev.BBLower.V || (prev2 != nil && prev2.BBLower.GE(prev2.Close))
	touched := wasBelow || close <= bbLower
	switch {
	case close <= bbLower:
		r.reason(30, "Price below lower Bollinger Band (%.2f < %.2f)", close, bbLower)
	case wasBelow:
		r.reason(25, "Price was below the lower Bollinger Band recently")
	default:
		r.warn(0, "Price not in the Bollinger oversold zone")
	}

	// Condition 2: RSI oversold
	oversold := rsi < cfg.OversoldRSI || prevRSI.LT(cfg.OversoldRSI)
	switch {
	case rsi < cfg.ExtremeRSI:
		r.reason(30, "RSI deeply oversold (%.1f)", rsi)
	case rsi < cfg.OversoldRSI:
		r.reason(25, "RSI oversold (%.1f)", rsi)
	case prevRSI.LT(cfg.OversoldRSI) && rsi > prevRSI.V:
		r.reason(20, "RSI rebounding from oversold (%.1f -> %.1f)", prevRSI.V, rsi)
	case rsi < cfg.WeakRSI:
		r.warn(10, "RSI low but not oversold (%.1f)", rsi)
	default:
		r.warn(0, "RSI not oversold (%.1f)", rsi)
	}

	// Condition 3: recovery
	recovering := close > prev.Close && close > bbLower
	switch {
	case wasBelow && close > bbLower:
		r.reason(25, "Rebound: price back above the lower Bollinger Band")
	case close > prev.Close:
		r.reason(15, "Price up today")
	default:
		r.warn(0, "No rebound signal yet")
	}

	// Volume on the rebound
	vol := today.VolumeRatio
	switch {
	case vol.GE(cfg.StrongVolume):
		r.reason(15, "High volume on rebound (%.1fx)", vol.V)
	case vol.GE(1.0):
		r.Score += 10
	default:
		r.Score += 5
	}

	// Context: trend
	if close > today.SMALong.V {
		r.reason(10, "Rebound within an uptrend (price > %s)", smaLabel(series.Params.SMALong))
	} else {
		r.warn(0, "Rebound against the trend - higher risk")
	}

	r.clamp()
	r.Signal = touched && oversold && recovering
	r.Levels = NewLevels(close, close-today.ATR.V*cfg.StopATR, today.BBMiddle.V)

	return r
}
