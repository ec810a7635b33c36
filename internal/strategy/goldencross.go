package strategy

import (
	"math"

	"github.com/jevit/stock-analyzer/internal/indicator"
)

// GoldenCrossConfig holds configuration for the golden cross strategy
type GoldenCrossConfig struct {
	MinScore       int     // Score required when the cross is not fresh
	MaxAge         int     // Bars scanned back when counting days in golden cross
	RecentDays     int     // Cross younger than this earns 30 points
	SMABuffer      float64 // Stop floor as a fraction of SMA200
	StopATR        float64
	RewardMultiple float64
}

// DefaultGoldenCrossConfig returns default configuration
func DefaultGoldenCrossConfig() GoldenCrossConfig {
	return GoldenCrossConfig{
		MinScore:       70,
		MaxAge:         30,
		RecentDays:     10,
		SMABuffer:      0.98,
		StopATR:        2.5,
		RewardMultiple: 2.0,
	}
}

// GoldenCrossStrategy detects SMA50 crossing above SMA200
type GoldenCrossStrategy struct {
	config  GoldenCrossConfig
	minBars int
}

// NewGoldenCrossStrategy creates a new golden cross strategy
func NewGoldenCrossStrategy(cfg GoldenCrossConfig, minBars int) *GoldenCrossStrategy {
	return &GoldenCrossStrategy{config: cfg, minBars: minBars}
}

// Name returns the strategy name
func (s *GoldenCrossStrategy) Name() string {
	return NameGoldenCross
}

// Description returns the strategy description
func (s *GoldenCrossStrategy) Description() string {
	return "Golden cross - SMA50 crosses above SMA200, long-term bullish signal"
}

// Evaluate scores the latest bar
func (s *GoldenCrossStrategy) Evaluate(series *indicator.Series) Result {
	r := newResult(s.Name())
	if !checkHistory(&r, series, s.minBars) {
		return r
	}

	p := series.Params
	fast, slow := smaLabel(p.SMAMedium), smaLabel(p.SMALong)

	today := series.Last()
	prev := series.Back(1)
	if !today.SMAMedium.Valid || !today.SMALong.Valid {
		r.warn(0, "Missing indicators: %s or %s not calculated", fast, slow)
		return r
	}

	close := today.Close
	sma50 := today.SMAMedium.V
	sma200 := today.SMALong.V
	bullish := sma50 > sma200

	r.Details["sma_medium"] = sma50
	r.Details["sma_long"] = sma200

	// 1. Crossover freshness
	fresh := false
	switch {
	case bullish && prev.SMAMedium.Valid && prev.SMALong.Valid && prev.SMAMedium.V <= prev.SMALong.V:
		fresh = true
		r.reason(40, "GOLDEN CROSS: %s just crossed above %s", fast, slow)
	case bullish:
		days := s.daysInCross(series)
		r.Details["days_in_cross"] = float64(days)
		switch {
		case days <= s.config.RecentDays:
			r.reason(30, "Recent golden cross (%dd)", days)
		case days <= s.config.MaxAge:
			r.reason(20, "Golden cross in progress (%dd)", days)
		default:
			r.reason(10, "Old golden cross (%dd+)", days)
		}
	case sma50 < sma200:
		r.warn(0, "Death cross - %s below %s", fast, slow)
	}

	// 2. Price position
	switch {
	case close > sma50 && close > sma200:
		dist50 := (close - sma50) / sma50 * 100
		dist200 := (close - sma200) / sma200 * 100
		if dist50 > 5 && dist200 > 10 {
			r.reason(25, "Price well above both SMAs")
		} else {
			r.reason(15, "Price above both SMAs")
		}
	case close > sma50:
		r.warn(10, "Price above %s but below %s", fast, slow)
	default:
		r.warn(0, "Price below %s", fast)
	}

	// 3. RSI
	if rsi := today.RSI; rsi.Valid {
		switch {
		case rsi.V > 50 && rsi.V < 70:
			r.reason(15, "Bullish RSI (%.0f)", rsi.V)
		case rsi.V >= 70:
			r.warn(8, "RSI overbought (%.0f)", rsi.V)
		case rsi.V > 40:
			r.reason(5, "Neutral RSI (%.0f)", rsi.V)
		}
	}

	// 4. Volume
	if vol := today.VolumeRatio; vol.Valid {
		switch {
		case vol.V > 1.2:
			r.reason(10, "Strong volume (%.1fx)", vol.V)
		case vol.V > 0.8:
			r.Score += 5
		}
	}

	// 5. Volatility
	if atrPct := today.ATRPct; atrPct.Valid {
		switch {
		case atrPct.V > 1.0 && atrPct.V < 4.0:
			r.reason(10, "Healthy volatility (%.1f%%)", atrPct.V)
		case atrPct.V < 1.0:
			r.Score += 5
		}
	}

	r.clamp()

	switch {
	case (fresh || (bullish && r.Score >= s.config.MinScore)) && close > sma50:
		r.Signal = true
		stop := math.Max(sma200*s.config.SMABuffer, close-s.config.StopATR*atrOrDefault(today))
		r.Levels = riskMultipleLevels(close, stop, s.config.RewardMultiple)
		r.headline("Golden cross signal - long-term uptrend")
	case bullish && r.Score < s.config.MinScore:
		r.warn(0, "Golden cross present but conditions are weak")
	}

	return r
}

// daysInCross counts consecutive bars, latest first, with the medium SMA above
// the long one. At most MaxAge-1 bars are inspected.
func (s *GoldenCrossStrategy) daysInCross(series *indicator.Series) int {
	days := 0
	for i := 0; i < s.config.MaxAge-1; i++ {
		b := series.Back(i)
		if b == nil || !b.SMAMedium.Valid || !b.SMALong.Valid || b.SMAMedium.V <= b.SMALong.V {
			break
		}
		days++
	}
	return days
}
