package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jevit/stock-analyzer/internal/strategy"
)

const undetermined = "⚪ Undetermined"

func noviceStatuses(a *TickerAnalysis) Statuses {
	st := Statuses{
		Trend:      undetermined,
		Momentum:   undetermined,
		Volatility: undetermined,
		Volume:     undetermined,
	}

	if d := a.DistSMALong; d.Valid {
		switch {
		case d.V > 5:
			st.Trend = "🟢 Bullish"
		case d.V > 0:
			st.Trend = "🟡 Slightly bullish"
		case d.V > -5:
			st.Trend = "🟡 Slightly bearish"
		default:
			st.Trend = "🔴 Bearish"
		}
	}

	if rsi := a.RSI; rsi.Valid {
		switch {
		case rsi.V >= 70:
			st.Momentum = "🔴 Overbought (caution)"
		case rsi.V >= 60:
			st.Momentum = "🟢 Strong momentum"
		case rsi.V >= 40:
			st.Momentum = "🟡 Neutral"
		case rsi.V >= 30:
			st.Momentum = "🟡 Weak momentum"
		default:
			st.Momentum = "🟢 Oversold (opportunity?)"
		}
	}

	if atr := a.ATRPct; atr.Valid {
		switch {
		case atr.V >= 5:
			st.Volatility = "🔴 Very volatile (risky)"
		case atr.V >= 3:
			st.Volatility = "🟡 Volatile"
		case atr.V >= 1.5:
			st.Volatility = "🟢 Normal"
		default:
			st.Volatility = "🔵 Calm"
		}
	}

	if vol := a.VolumeRatio; vol.Valid {
		switch {
		case vol.V >= 2:
			st.Volume = "🟢 Very strong volume"
		case vol.V >= 1.5:
			st.Volume = "🟢 High volume"
		case vol.V >= 0.8:
			st.Volume = "🟡 Normal volume"
		default:
			st.Volume = "🔴 Weak volume"
		}
	}

	switch {
	case a.GlobalScore >= 80:
		st.Overall = "🌟 Strong signal"
	case a.GlobalScore >= 60:
		st.Overall = "✅ Interesting signal"
	case a.GlobalScore >= 40:
		st.Overall = "🟡 Worth watching"
	default:
		st.Overall = "⚪ No signal"
	}

	return st
}

var strategyExplanations = map[string]string{
	strategy.NameTrendPullback:  "the stock is in an uptrend and pulling back toward support (SMA50)",
	strategy.NameBreakout:       "the stock is breaking its recent highs on volume",
	strategy.NameMeanReversion:  "the stock looks oversold and is starting to rebound toward its average",
	strategy.NameMACDCrossover:  "MACD just turned up through its signal line while price holds its long-term trend",
	strategy.NameGoldenCross:    "the medium-term average has crossed above the long-term one",
	strategy.NameVolumeBreakout: "the stock is making a new short-term high on exploding volume",
}

// noviceSummary explains the analysis in plain language, one paragraph per
// reading
func noviceSummary(a *TickerAnalysis) string {
	parts := []string{fmt.Sprintf("%s currently trades at %.2f.", a.Symbol, a.Close)}

	if d := a.DistSMALong; d.Valid {
		switch {
		case d.V > 10:
			parts = append(parts, fmt.Sprintf("Strong uptrend: price is %.1f%% above its long-term average (SMA200).", d.V))
		case d.V > 0:
			parts = append(parts, fmt.Sprintf("Uptrend: price is %.1f%% above its long-term average.", d.V))
		case d.V > -10:
			parts = append(parts, fmt.Sprintf("Downtrend: price is %.1f%% below its long-term average. Caution advised.", math.Abs(d.V)))
		default:
			parts = append(parts, fmt.Sprintf("Strong downtrend: price is %.1f%% below its long-term average.", math.Abs(d.V)))
		}
	}

	if rsi := a.RSI; rsi.Valid {
		switch {
		case rsi.V >= 70:
			parts = append(parts, fmt.Sprintf("Overbought (RSI %.0f): the stock rose a lot recently and may need to pause or correct.", rsi.V))
		case rsi.V <= 30:
			parts = append(parts, fmt.Sprintf("Oversold (RSI %.0f): the stock fell a lot. Sometimes an opportunity, but beware of falling knives.", rsi.V))
		case rsi.V >= 50:
			parts = append(parts, fmt.Sprintf("Positive momentum (RSI %.0f).", rsi.V))
		default:
			parts = append(parts, fmt.Sprintf("Weak momentum (RSI %.0f).", rsi.V))
		}
	}

	if vol := a.VolumeRatio; vol.Valid {
		switch {
		case vol.V >= 2:
			parts = append(parts, fmt.Sprintf("Explosive volume (%.1fx normal): heavy activity today.", vol.V))
		case vol.V >= 1.5:
			parts = append(parts, fmt.Sprintf("High volume (%.1fx normal): more interest than usual.", vol.V))
		case vol.V < 0.5:
			parts = append(parts, fmt.Sprintf("Very low volume (%.1fx normal): little investor interest today.", vol.V))
		}
	}

	if atr := a.ATRPct; atr.Valid {
		switch {
		case atr.V >= 5:
			parts = append(parts, fmt.Sprintf("Very volatile (ATR %.1f%%): moves of %.1f%% a day on average.", atr.V, atr.V))
		case atr.V >= 3:
			parts = append(parts, fmt.Sprintf("Volatile (ATR %.1f%%): large daily moves, size positions accordingly.", atr.V))
		}
	}

	if a.HasSignal {
		if text, ok := strategyExplanations[a.BestStrategy]; ok {
			parts = append(parts, fmt.Sprintf("%s signal (score %d/100): %s.", a.BestStrategy, a.GlobalScore, text))
		}
		if l := a.Levels; l.Complete() && a.Close > 0 {
			riskPct := math.Abs((l.Stop - a.Close) / a.Close * 100)
			rewardPct := math.Abs((l.Target - a.Close) / a.Close * 100)
			parts = append(parts, fmt.Sprintf("Indicative levels: entry ~%.2f, stop ~%.2f (-%.1f%%), target ~%.2f (+%.1f%%).",
				l.Entry, l.Stop, riskPct, l.Target, rewardPct))
		}
	} else {
		parts = append(parts, "No active signal: conditions are not met for the monitored strategies.")
	}

	parts = append(parts, "Automatic technical analysis, not investment advice.")
	return strings.Join(parts, "\n\n")
}
