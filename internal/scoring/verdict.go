package scoring

import (
	"fmt"
	"strings"
)

// riskSummary lists the risk factors that apply, joined with " | "
func riskSummary(a *TickerAnalysis) string {
	var risks []string

	switch {
	case a.ATRPct.GT(5):
		risks = append(risks, "Very high volatility")
	case a.ATRPct.GT(3):
		risks = append(risks, "High volatility")
	}

	switch {
	case a.DistSMALong.LT(0):
		risks = append(risks, "Price below SMA200 (downtrend)")
	case a.DistSMALong.GT(20):
		risks = append(risks, "Price far above SMA200 (possible excess)")
	}

	switch {
	case a.RSI.GT(80):
		risks = append(risks, "RSI overbought")
	case a.RSI.LT(20):
		risks = append(risks, "RSI deeply oversold")
	}

	if a.VolumeRatio.LT(0.5) {
		risks = append(risks, "Very low volume")
	}

	if len(risks) == 0 {
		return "No major risk identified"
	}
	return strings.Join(risks, " | ")
}

// factors tallies positive and negative technical factors. Undefined
// readings fall back to neutral values.
func factors(a *TickerAnalysis) (positives, negatives int) {
	rsi := a.RSI.Or(50)
	atrPct := a.ATRPct.Or(2)
	vol := a.VolumeRatio.Or(1)
	dist := a.DistSMALong.Or(0)

	switch {
	case dist > 5:
		positives += 2
	case dist > 0:
		positives++
	case dist < -10:
		negatives += 2
	case dist < 0:
		negatives++
	}

	switch {
	case rsi >= 40 && rsi <= 60:
		positives++
	case rsi > 75:
		negatives += 2
	case rsi < 25:
		positives++
		negatives++
	}

	switch {
	case vol >= 1.5:
		positives++
	case vol < 0.5:
		negatives++
	}

	if atrPct > 5 || atrPct < 1 {
		negatives++
	}

	if a.Levels != nil && a.Levels.RiskReward > 0 {
		switch rr := a.Levels.RiskReward; {
		case rr >= 2:
			positives += 2
		case rr >= 1.5:
			positives++
		case rr < 1:
			negatives++
		}
	}

	return positives, negatives
}

// verdict maps the global score to a tier and writes its explanation.
// The same analysis always produces the same verdict.
func verdict(a *TickerAnalysis) Verdict {
	score := a.GlobalScore
	rsi := a.RSI.Or(50)
	atrPct := a.ATRPct.Or(2)
	vol := a.VolumeRatio.Or(1)
	dist := a.DistSMALong.Or(0)
	rr := 0.0
	if a.Levels != nil {
		rr = a.Levels.RiskReward
	}

	v := Verdict{}
	v.Positives, v.Negatives = factors(a)

	var lines []string
	switch {
	case score >= 80 && a.HasSignal:
		v.Tier = TierFavorable
		v.Emoji = "🌟"
		v.Label = "Favorable technical setup"
		lines = append(lines,
			fmt.Sprintf("Positive overall analysis - score %d/100.", score),
			fmt.Sprintf("- %s signal detected with conviction", a.BestStrategy),
			pick(dist > 0, "- Long-term uptrend", "- Rebound potential"),
			pick(vol >= 1.5, "- Volume confirms the move", "- Momentum in place"),
		)
		if rr >= 1.5 {
			lines = append(lines, "- Favorable risk/reward ratio")
		}
		lines = append(lines, fmt.Sprintf("Technical conditions are met for the %q setup.", a.BestStrategy))
		v.Action = pick(rr >= 2,
			"Study this setup first - define your own levels before any decision",
			"Interesting setup - check that the R/R ratio suits you")

	case score >= 60 && a.HasSignal:
		v.Tier = TierCorrect
		v.Emoji = "✅"
		v.Label = "Correct technical setup"
		lines = append(lines,
			fmt.Sprintf("Moderate overall analysis - score %d/100, %s signal detected.", score, a.BestStrategy),
			pick(v.Negatives > v.Positives, "- The setup is present but not optimal", "- The setup is present with some reservations"),
			pick(dist > 0, "- Favorable trend", "- Trend context to monitor"),
			pick(atrPct > 4, "- Watch the high volatility", "- Acceptable volatility"),
		)
		if rsi > 70 || rsi < 30 {
			lines = append(lines, "RSI in an extreme zone calls for caution.")
		}
		if vol < 1.2 {
			lines = append(lines, "Volume could be more convincing.")
		}
		v.Action = "Monitor - possibly wait for a better confirmation"

	case score >= 40:
		v.Tier = TierWatch
		v.Emoji = "🟡"
		v.Label = "Setup developing"
		momentum := "- Decent momentum"
		if rsi < 40 || rsi > 60 {
			zone := "neutral"
			if rsi > 70 {
				zone = "overbought"
			} else if rsi < 30 {
				zone = "oversold"
			}
			momentum = fmt.Sprintf("- RSI at %.0f - %s zone", rsi, zone)
		}
		lines = append(lines,
			fmt.Sprintf("Neutral overall analysis - score %d/100, conditions are not met yet.", score),
			"- Some factors are positive, others are missing",
			pick(dist > 0, "- Price in an uptrend", "- Price below the long-term trend"),
			momentum,
			"The setup may develop over the next few days.",
		)
		v.Action = "Add to watchlist - wait for conditions to improve"

	default:
		v.Tier = TierWait
		v.Emoji = "⚪"
		v.Label = "No technical setup"
		trend := "- Trend fine but timing not optimal"
		if dist < -5 {
			trend = "- Downtrend"
		} else if dist < 5 {
			trend = "- Uncertain trend"
		}
		lines = append(lines,
			fmt.Sprintf("Negative overall analysis - score %d/100, no signal detected.", score),
			"- No strategy conditions are met",
			trend,
			pick(vol < 0.8, "- Insufficient volume", "- Volume fine"),
			"This says nothing about the company, only about technical timing.",
		)
		v.Action = "Wait - technical conditions are not favorable right now"
	}

	if atrPct > 5 {
		v.RiskWarnings = append(v.RiskWarnings, "Very high volatility - risk of sharp moves")
	}
	if rsi > 80 {
		v.RiskWarnings = append(v.RiskWarnings, "Extreme RSI overbought - correction risk")
	}
	if rsi < 20 {
		v.RiskWarnings = append(v.RiskWarnings, "Extreme RSI oversold - the stock may keep falling")
	}
	if dist < -20 {
		v.RiskWarnings = append(v.RiskWarnings, "Price far below its average - pronounced downtrend")
	}
	if vol < 0.3 {
		v.RiskWarnings = append(v.RiskWarnings, "Very low volume - liquidity may be reduced")
	}
	if len(v.RiskWarnings) > 0 {
		lines = append(lines, "Specific alerts:")
		for _, w := range v.RiskWarnings {
			lines = append(lines, "- "+w)
		}
	}

	v.Detail = strings.Join(lines, "\n")
	return v
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
