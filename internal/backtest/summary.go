package backtest

import "slices"

// Summary bundles a run with its statistics
type Summary struct {
	Run        *Run               `json:"run"`
	Results    map[string]Results `json:"results"`
	Equity     []EquityPoint      `json:"equity_curve"`
	MonteCarlo *MonteCarloResult  `json:"monte_carlo,omitempty"`
}

// Summarize computes per-strategy statistics, the equity curve and, when
// simulations > 0, a Monte Carlo over every closed trade
func Summarize(run *Run, simulations int, seed uint64) *Summary {
	trades := run.Trades()
	s := &Summary{
		Run:     run,
		Results: AnalyzeByStrategy(run.TradesByTicker()),
		Equity:  EquityCurve(trades),
	}
	if simulations > 0 {
		SortTrades(trades)
		s.MonteCarlo = RunMonteCarlo(trades, simulations, seed)
	}
	return s
}

// AddFailures records tickers whose history could not be loaded
func (r *Run) AddFailures(failed map[string]error) {
	symbols := make([]string, 0, len(failed))
	for sym := range failed {
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)

	for _, sym := range symbols {
		r.Failed = append(r.Failed, Failure{Symbol: sym, Error: failed[sym].Error()})
	}
}
