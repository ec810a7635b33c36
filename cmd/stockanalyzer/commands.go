package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/jevit/stock-analyzer/internal/backtest"
	"github.com/jevit/stock-analyzer/internal/daemon"
	"github.com/jevit/stock-analyzer/internal/provider"
	"github.com/jevit/stock-analyzer/internal/report"
	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/internal/strategy"
	"github.com/jevit/stock-analyzer/internal/web"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		minScore   int
		details    int
		alertsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [symbols...]",
		Short: "Score a watchlist with every detector and rank it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-score") {
				minScore = a.cfg.Scoring.MinScore
			}
			if minScore < 0 || minScore > 100 {
				return fmt.Errorf("--min-score must be in [0, 100], got %d", minScore)
			}

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			loaded, err := a.load(ctx, args)
			if err != nil {
				return err
			}

			registry := strategy.NewRegistry(a.cfg.StrategyConfig())
			scorer := scoring.NewScorer(registry.All(), a.cfg.IndicatorParams(), a.cfg.ScoringConfig(), a.logger)

			wl := scorer.AnalyzeWatchlist(ctx, loaded.Histories, minScore)
			wl.AddFailures(loaded.Failed)
			if alertsOnly {
				wl.Results = scorer.Alerts(wl.Results)
			}

			switch a.format {
			case report.FormatJSON:
				return report.WriteJSON(os.Stdout, wl)
			case report.FormatCSV:
				return report.AnalysisCSV(os.Stdout, wl.Results)
			}

			report.AnalysisTable(os.Stdout, wl, details)
			if !alertsOnly {
				if alerts := scorer.Alerts(wl.Results); len(alerts) > 0 {
					fmt.Printf("\n%d alert(s) at or above score %d:", len(alerts), a.cfg.Scoring.AlertScoreThreshold)
					for _, al := range alerts {
						fmt.Printf(" %s(%d)", al.Symbol, al.GlobalScore)
					}
					fmt.Println()
				}
			}
			return ctx.Err()
		},
	}

	cmd.Flags().IntVar(&minScore, "min-score", 0, "hide tickers below this global score (default from config)")
	cmd.Flags().IntVar(&details, "details", 5, "number of signaling tickers to describe in full")
	cmd.Flags().BoolVar(&alertsOnly, "alerts", false, "only show tickers above the alert threshold")
	return cmd
}

func newBacktestCmd() *cobra.Command {
	var (
		strategyName string
		showTrades   bool
		simulations  int
		seed         uint64
	)

	cmd := &cobra.Command{
		Use:   "backtest [symbols...]",
		Short: "Replay detectors over history and report trade statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("monte-carlo") {
				simulations = a.cfg.Backtest.MonteCarloRuns
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Backtest.MonteCarloSeed
			}

			registry := strategy.NewRegistry(a.cfg.StrategyConfig())
			if _, err := registry.Select(strategyName); err != nil {
				return err
			}

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			loaded, err := a.load(ctx, args)
			if err != nil {
				return err
			}

			engine := backtest.NewEngine(a.cfg.BacktestConfig(), a.cfg.IndicatorParams(), registry.All(), a.logger)
			run, err := engine.BacktestAll(ctx, loaded.Histories, strategyName)
			if err != nil {
				return fmt.Errorf("backtesting: %w", err)
			}
			run.AddFailures(loaded.Failed)

			summary := backtest.Summarize(run, simulations, seed)

			switch a.format {
			case report.FormatJSON:
				return report.WriteJSON(os.Stdout, summary)
			case report.FormatCSV:
				if showTrades {
					trades := run.Trades()
					backtest.SortTrades(trades)
					return report.TradesCSV(os.Stdout, trades)
				}
				return report.ResultsCSV(os.Stdout, sortedResults(summary.Results))
			}

			printBacktest(summary, strategyName, showTrades)
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&strategyName, "strategy", "", "detector to replay (default: all)")
	cmd.Flags().BoolVar(&showTrades, "trades", false, "list every trade")
	cmd.Flags().IntVar(&simulations, "monte-carlo", 0, "Monte Carlo simulations, 0 disables (default from config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Monte Carlo seed (default from config)")
	return cmd
}

func printBacktest(s *backtest.Summary, strategyName string, showTrades bool) {
	run := s.Run
	fmt.Printf("Backtest %s: %d tickers, %d trades\n\n", run.Strategy, len(run.Tickers), len(run.Trades()))

	for _, t := range run.Tickers {
		for _, w := range t.Warnings {
			fmt.Printf("  [%s] %s\n", t.Symbol, w)
		}
	}

	report.ResultsTable(os.Stdout, s.Results)

	if strategyName != "" {
		for name, r := range s.Results {
			if name != backtest.AllStrategies {
				fmt.Println()
				report.ResultsSummary(os.Stdout, r)
			}
		}
	} else {
		fmt.Println()
		report.ResultsSummary(os.Stdout, s.Results[backtest.AllStrategies])
	}

	if showTrades {
		trades := run.Trades()
		backtest.SortTrades(trades)
		fmt.Println()
		report.TradesTable(os.Stdout, trades)
	}

	if s.MonteCarlo != nil {
		fmt.Println()
		report.MonteCarlo(os.Stdout, s.MonteCarlo)
	}

	if len(run.Failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(run.Failed))
		for _, f := range run.Failed {
			fmt.Printf("  %s: %s\n", f.Symbol, f.Error)
		}
	}

	fmt.Printf("\nBacktested in %s (run %s)\n", run.Elapsed.Round(time.Millisecond), run.ID)
}

func sortedResults(results map[string]backtest.Results) []backtest.Results {
	out := make([]backtest.Results, 0, len(results))
	for name, r := range results {
		if name != backtest.AllStrategies {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b backtest.Results) int {
		return cmp.Compare(a.Strategy, b.Strategy)
	})
	if all, ok := results[backtest.AllStrategies]; ok {
		out = append(out, all)
	}
	return out
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			infos := strategy.NewRegistry(a.cfg.StrategyConfig()).AllInfo()
			if a.format == report.FormatJSON {
				return report.WriteJSON(os.Stdout, infos)
			}
			report.StrategiesTable(os.Stdout, infos)
			return nil
		},
	}
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [symbols...]",
		Short: "Download daily histories from Yahoo Finance into the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			stocks, err := a.watchlist(args)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			yahoo := provider.NewYahooProvider(a.cfg.Data.RateLimit)
			store := provider.NewCSVProvider(a.cfg.Data.Dir)
			days := a.cfg.Data.HistoryDays

			syms := make([]string, len(stocks))
			for i, s := range stocks {
				syms[i] = s.Symbol
			}

			sc := a.scanner()
			bar := a.newProgressBar(len(syms), "Fetching")
			sc.SetProgressCallback(func(_ string, done, _ int) {
				bar.Set(done)
			})

			start := time.Now()
			outcomes := scanner.Run(ctx, sc, syms, func(ctx context.Context, symbol string) (int, error) {
				candles, err := yahoo.GetDailyCandles(ctx, symbol, days)
				if err != nil {
					return 0, err
				}
				if err := store.SaveCandles(symbol, candles); err != nil {
					return 0, err
				}
				return len(candles), nil
			})
			bar.Finish()

			saved, failed := 0, 0
			for _, o := range outcomes {
				if o.Failed() {
					failed++
					a.logger.Warn().Str("symbol", o.Symbol).Err(o.Err).Msg("fetch failed")
					continue
				}
				saved++
				a.logger.Debug().Str("symbol", o.Symbol).Int("bars", o.Value).Str("path", store.Path(o.Symbol)).Msg("saved")
			}

			a.logger.Info().
				Int("saved", saved).
				Int("failed", failed).
				Str("dir", a.cfg.Data.Dir).
				Dur("elapsed", time.Since(start)).
				Msg("fetch complete")

			if saved == 0 && failed > 0 {
				return fmt.Errorf("no histories downloaded")
			}
			return ctx.Err()
		},
	}
}

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analyses and backtests as a JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = a.cfg.Web.Port
			}

			p, err := a.provider()
			if err != nil {
				return err
			}

			watchlist, err := a.watchlist(args)
			if err != nil {
				return err
			}

			registry := strategy.NewRegistry(a.cfg.StrategyConfig())
			params := a.cfg.IndicatorParams()

			srv := web.NewServer(web.Options{
				Provider:       p,
				Registry:       registry,
				Scorer:         scoring.NewScorer(registry.All(), params, a.cfg.ScoringConfig(), a.logger),
				Engine:         backtest.NewEngine(a.cfg.BacktestConfig(), params, registry.All(), a.logger),
				Scanner:        a.scanner(),
				Watchlist:      watchlist,
				HistoryDays:    a.cfg.Data.HistoryDays,
				MonteCarloRuns: a.cfg.Backtest.MonteCarloRuns,
				MonteCarloSeed: a.cfg.Backtest.MonteCarloSeed,
				Logger:         a.logger,
			})

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(port)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "listen port (default from config)")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		once   bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "watch [symbols...]",
		Short: "Rescan the watchlist after every market close and log new alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			p, err := a.provider()
			if err != nil {
				return err
			}
			watchlist, err := a.watchlist(args)
			if err != nil {
				return err
			}

			cfg := a.cfg.DaemonConfig()
			cfg.DryRun = dryRun

			history, err := daemon.NewAlertHistory(a.cfg.AlertHistoryPath(), cfg.Cooldown)
			if err != nil {
				return err
			}

			registry := strategy.NewRegistry(a.cfg.StrategyConfig())
			d := daemon.NewDaemon(cfg, daemon.Options{
				Provider:    p,
				Scorer:      scoring.NewScorer(registry.All(), a.cfg.IndicatorParams(), a.cfg.ScoringConfig(), a.logger),
				Scanner:     a.scanner(),
				Watchlist:   watchlist,
				HistoryDays: a.cfg.Data.HistoryDays,
				History:     history,
				Logger:      a.logger,
			})

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			if !once {
				return d.Run(ctx)
			}

			summary, err := d.Scan(ctx)
			if err != nil {
				return err
			}
			switch a.format {
			case report.FormatJSON:
				return report.WriteJSON(os.Stdout, summary)
			case report.FormatCSV:
				return report.AnalysisCSV(os.Stdout, summary.Alerts)
			}
			fmt.Printf("Scanned %d tickers (%d failed): %d signals, %d new alerts, %d duplicates\n\n",
				summary.Scanned, summary.Failed, summary.Signals, len(summary.Alerts), summary.Duplicates)
			for _, al := range summary.Alerts {
				report.AnalysisDetail(os.Stdout, al)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "scan once now and exit")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log alerts without recording them in the alert history")
	return cmd
}

// load resolves the watchlist and downloads every history, with a progress
// bar on interactive terminals
func (a *app) load(ctx context.Context, args []string) (provider.LoadResult, error) {
	p, err := a.provider()
	if err != nil {
		return provider.LoadResult{}, err
	}
	stocks, err := a.watchlist(args)
	if err != nil {
		return provider.LoadResult{}, err
	}

	sc := a.scanner()
	bar := a.newProgressBar(len(stocks), "Loading")
	sc.SetProgressCallback(func(_ string, done, _ int) {
		bar.Set(done)
	})

	start := time.Now()
	loaded := provider.LoadHistories(ctx, p, sc, stocks, a.cfg.Data.HistoryDays)
	bar.Finish()

	a.logger.Info().
		Str("provider", p.Name()).
		Int("tickers", len(stocks)).
		Int("loaded", len(loaded.Histories)).
		Int("failed", len(loaded.Failed)).
		Dur("elapsed", time.Since(start)).
		Msg("histories loaded")

	if len(loaded.Histories) == 0 && len(loaded.Failed) > 0 {
		a.logger.Warn().Msg("no history could be loaded")
	}
	return loaded, nil
}
