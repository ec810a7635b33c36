package backtest

import (
	"math/rand/v2"
	"sort"
)

// ruinDrawdownPct is the cumulative loss counted as ruin in a simulation
const ruinDrawdownPct = 50

// MonteCarloResult contains Monte Carlo simulation results
type MonteCarloResult struct {
	Simulations     int     `json:"simulations"`
	Trades          int     `json:"trades"`
	MedianReturn    float64 `json:"median_return_pct"`
	WorstCase       float64 `json:"worst_case_pct"` // 5th percentile
	BestCase        float64 `json:"best_case_pct"`  // 95th percentile
	MedianDrawdown  float64 `json:"median_drawdown_pct"`
	WorstDrawdown   float64 `json:"worst_drawdown_pct"` // 95th percentile
	RuinProbability float64 `json:"ruin_probability"`   // % of sims losing ruinDrawdownPct
}

// RunMonteCarlo draws trade sequences from the closed trades, with
// replacement, and reports the spread of outcomes. The same seed gives the
// same result.
func RunMonteCarlo(trades []Trade, simulations int, seed uint64) *MonteCarloResult {
	var returns []float64
	for _, t := range trades {
		if t.IsClosed() {
			returns = append(returns, t.PnLPct)
		}
	}
	if len(returns) == 0 || simulations <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	finalReturns := make([]float64, simulations)
	maxDDs := make([]float64, simulations)
	ruinCount := 0

	sample := make([]float64, len(returns))
	for sim := 0; sim < simulations; sim++ {
		for i := range sample {
			sample[i] = returns[rng.IntN(len(returns))]
		}

		finalReturns[sim] = sum(sample)
		maxDDs[sim] = maxDrawdown(sample)

		var cumulative float64
		for _, r := range sample {
			cumulative += r
			if cumulative <= -ruinDrawdownPct {
				ruinCount++
				break
			}
		}
	}

	sort.Float64s(finalReturns)
	sort.Float64s(maxDDs)

	return &MonteCarloResult{
		Simulations:     simulations,
		Trades:          len(returns),
		MedianReturn:    finalReturns[simulations/2],
		WorstCase:       finalReturns[simulations/20],
		BestCase:        finalReturns[simulations*19/20],
		MedianDrawdown:  maxDDs[simulations/2],
		WorstDrawdown:   maxDDs[simulations*19/20],
		RuinProbability: float64(ruinCount) / float64(simulations) * 100,
	}
}
