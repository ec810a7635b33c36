package strategy

import (
	"github.com/jevit/stock-analyzer/internal/indicator"
)

// MACDConfig holds configuration for the MACD crossover strategy
type MACDConfig struct {
	MinScore       int     // Score required on top of a fresh crossover
	StrongTrendPct float64 // Distance above SMA200 earning full trend points
	StopATR        float64
	RewardMultiple float64 // Target distance in units of risk
}

// DefaultMACDConfig returns default configuration
func DefaultMACDConfig() MACDConfig {
	return MACDConfig{
		MinScore:       60,
		StrongTrendPct: 10,
		StopATR:        2.0,
		RewardMultiple: 2.0,
	}
}

// MACDStrategy detects a fresh bullish MACD/signal crossover in an uptrend
type MACDStrategy struct {
	config  MACDConfig
	minBars int
}

// NewMACDStrategy creates a new MACD crossover strategy
func NewMACDStrategy(cfg MACDConfig, minBars int) *MACDStrategy {
	return &MACDStrategy{config: cfg, minBars: minBars}
}

// Name returns the strategy name
func (s *MACDStrategy) Name() string {
	return NameMACDCrossover
}

// Description returns the strategy description
func (s *MACDStrategy) Description() string {
	return "MACD crossover - MACD line crosses above its signal line while price holds above SMA200"
}

// Evaluate scores the latest bar
func (s *MACDStrategy) Evaluate(series *indicator.Series) Result {
	r := newResult(s.Name())
	if !checkHistory(&r, series, s.minBars) {
		return r
	}

	today := series.Last()
	prev := series.Back(1)
	if !today.MACD.Valid || !today.MACDSignal.Valid || !today.SMALong.Valid {
		r.warn(0, "Missing indicators: MACD or %s not calculated", smaLabel(series.Params.SMALong))
		return r
	}

	close := today.Close
	macd := today.MACD.V
	signal := today.MACDSignal.V
	sma := today.SMALong.V
	trend := smaLabel(series.Params.SMALong)

	r.Details["macd"] = macd
	r.Details["macd_signal"] = signal
	r.Details["macd_hist"] = today.MACDHist.Or(0)
	r.Details["sma_long"] = sma

	// 1. Crossover
	crossover := false
	if prev.MACD.Valid && prev.MACDSignal.Valid {
		if macd > signal && prev.MACD.V <= prev.MACDSignal.V {
			crossover = true
			r.reason(30, "MACD just crossed above its signal line")
		} else if macd > signal {
			r.reason(15, "MACD above its signal line (no fresh crossover)")
		}
	}

	// 2. Trend
	if close > sma {
		dist := (close - sma) / sma * 100
		if dist > s.config.StrongTrendPct {
			r.reason(25, "Price well above %s (+%.1f%%)", trend, dist)
		} else {
			r.reason(15, "Price above %s (+%.1f%%)", trend, dist)
		}
	} else {
		r.warn(0, "Price below %s (downtrend)", trend)
	}

	// 3. Positive territory
	if macd > 0 {
		r.reason(15, "MACD in positive territory")
	}

	// 4. RSI band
	if rsi := today.RSI; rsi.Valid {
		switch {
		case rsi.V > 50 && rsi.V < 70:
			r.reason(15, "RSI at %.0f (bullish, not overbought)", rsi.V)
		case rsi.V >= 70:
			r.warn(5, "RSI overbought (%.0f)", rsi.V)
		case rsi.V <= 30:
			r.warn(0, "RSI oversold (%.0f) - weak trend", rsi.V)
		}
	}

	// 5. Volatility
	if atrPct := today.ATRPct; atrPct.Valid {
		switch {
		case atrPct.V > 1.0 && atrPct.V < 5.0:
			r.reason(15, "Normal volatility (%.1f%%)", atrPct.V)
		case atrPct.V <= 1.0:
			r.warn(5, "Low volatility (limited movement)")
		default:
			r.warn(0, "High volatility (%.1f%%)", atrPct.V)
		}
	}

	r.clamp()

	switch {
	case crossover && close > sma && r.Score >= s.config.MinScore:
		r.Signal = true
		stop := close - s.config.StopATR*atrOrDefault(today)
		r.Levels = riskMultipleLevels(close, stop, s.config.RewardMultiple)
		r.headline("Bullish MACD crossover signal")
	case crossover && r.Score < s.config.MinScore:
		r.warn(0, "MACD crossover detected but overall score is weak")
	case close <= sma:
		r.warn(0, "No signal: price below %s", trend)
	}

	return r
}
