package strategy

import (
	"math"

	"github.com/jevit/stock-analyzer/internal/indicator"
)

// RiskReward returns |target-entry| / |entry-stop|, or 0 when the stop sits on the entry
func RiskReward(entry, stop, target float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(target-entry) / risk
}

// NewLevels builds levels and derives their risk/reward ratio
func NewLevels(entry, stop, target float64) *Levels {
	return &Levels{
		Entry:      entry,
		Stop:       stop,
		Target:     target,
		RiskReward: RiskReward(entry, stop, target),
	}
}

// atrLevels places stop and target at ATR multiples around the close
func atrLevels(close, atr, stopMult, targetMult float64) *Levels {
	return NewLevels(close, close-atr*stopMult, close+atr*targetMult)
}

// riskMultipleLevels sets the target at a multiple of the distance to stop
func riskMultipleLevels(close, stop, multiple float64) *Levels {
	risk := close - stop
	return NewLevels(close, stop, close+risk*multiple)
}

// atrOrDefault falls back to 2% of the close when ATR is undefined
func atrOrDefault(b *indicator.Bar) float64 {
	return b.ATR.Or(b.Close * 0.02)
}
