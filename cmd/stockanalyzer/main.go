package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jevit/stock-analyzer/internal/config"
	"github.com/jevit/stock-analyzer/internal/logging"
	"github.com/jevit/stock-analyzer/internal/provider"
	"github.com/jevit/stock-analyzer/internal/report"
	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/internal/symbols"
	"github.com/jevit/stock-analyzer/pkg/model"
)

var (
	cfgFile    string
	source     string
	dataDir    string
	workers    int
	format     string
	verbose    bool
	symbolList string
	tickerFile string
	universe   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stockanalyzer",
		Short: "Technical analysis scanner and backtester for daily stock data",
		Long: `Stockanalyzer scores a watchlist of stocks with six technical detectors
and replays them over history:

Strategies:
  trend-pullback   - Uptrending stock pulling back to its 50-day average
  breakout         - Close above the recent high on expanding volume
  mean-reversion   - Oversold stock stretched below its lower Bollinger band
  macd-crossover   - MACD line crossing its signal line
  golden-cross     - 50-day average crossing above the 200-day average
  volume-breakout  - Volume spike with a strong directional close

Examples:
  stockanalyzer analyze --symbols AAPL,MSFT,NVDA
  stockanalyzer analyze --universe nasdaq100 --min-score 60
  stockanalyzer backtest --symbols AAPL --strategy breakout
  stockanalyzer fetch --universe test --data-dir data
  stockanalyzer serve --port 8080
  stockanalyzer watch --tickers tickers.txt`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "config.yaml", "config file path")
	flags.StringVar(&source, "source", "", "data source: auto, yahoo, csv (default from config)")
	flags.StringVar(&dataDir, "data-dir", "", "directory of <SYMBOL>.csv files")
	flags.IntVar(&workers, "workers", 0, "number of parallel workers (default from config)")
	flags.StringVar(&format, "format", "table", "output format: table, json, csv")
	flags.BoolVar(&verbose, "verbose", false, "debug logging")
	flags.StringVar(&symbolList, "symbols", "", "comma-separated list of symbols")
	flags.StringVar(&tickerFile, "tickers", "", "file with one ticker per line")
	flags.StringVar(&universe, "universe", "", "predefined universe: default, sp500, nasdaq100, test")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newBacktestCmd(),
		newStrategiesCmd(),
		newFetchCmd(),
		newServeCmd(),
		newWatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the wiring shared by every subcommand
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	format report.Format
}

func setup() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Override config with CLI flags
	if source != "" {
		cfg.Data.Source = source
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if workers > 0 {
		cfg.Scanner.Workers = workers
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	outFormat, err := report.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logging.New(cfg.Log, os.Stderr),
		format: outFormat,
	}, nil
}

// provider builds the configured data source behind an in-memory cache
func (a *app) provider() (provider.Provider, error) {
	csvProvider := provider.NewCSVProvider(a.cfg.Data.Dir)
	yahoo := provider.NewYahooProvider(a.cfg.Data.RateLimit)

	var p provider.Provider
	switch a.cfg.Data.Source {
	case "csv":
		if !csvProvider.IsAvailable() {
			return nil, fmt.Errorf("data directory %s not found", a.cfg.Data.Dir)
		}
		p = csvProvider
	case "yahoo":
		p = yahoo
	default:
		fallback := provider.NewFallbackProvider(csvProvider, yahoo)
		if !fallback.IsAvailable() {
			return nil, fmt.Errorf("no available data providers")
		}
		names := make([]string, 0, len(fallback.Providers()))
		for _, fp := range fallback.Providers() {
			names = append(names, fp.Name())
		}
		a.logger.Debug().Strs("providers", names).Msg("using providers")
		p = fallback
	}

	return provider.NewCachingProvider(p, a.cfg.Data.HistoryDays, a.cfg.Data.CacheTTL), nil
}

// watchlist resolves the symbols to work on. Positional args win over
// flags; the configured tickers file is used when it exists.
func (a *app) watchlist(args []string) ([]model.Stock, error) {
	src := symbols.Source{List: symbolList, File: tickerFile, Universe: universe}
	if len(args) > 0 {
		src = symbols.Source{List: strings.Join(args, ",")}
	}
	if src.List == "" && src.File == "" && src.Universe == "" {
		if _, err := os.Stat(a.cfg.Data.TickersFile); err == nil {
			src.File = a.cfg.Data.TickersFile
		}
	}

	stocks, err := symbols.Load(src)
	if err != nil {
		return nil, fmt.Errorf("loading symbols: %w", err)
	}
	return stocks, nil
}

func (a *app) scanner() *scanner.Scanner {
	return scanner.NewScanner(a.cfg.Scanner.Workers, a.cfg.Scanner.Timeout)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(logger zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Warn().Msg("interrupted, stopping")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// newProgressBar draws on stderr, and only for interactive table output
func (a *app) newProgressBar(total int, description string) *progressbar.ProgressBar {
	if a.format != report.FormatTable || !logging.IsTerminal(os.Stderr) {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
