package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jevit/stock-analyzer/internal/backtest"
	"github.com/jevit/stock-analyzer/internal/daemon"
	"github.com/jevit/stock-analyzer/internal/indicator"
	"github.com/jevit/stock-analyzer/internal/logging"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/internal/strategy"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override
const EnvPrefix = "STOCK_ANALYZER_"

// Config represents the application configuration
type Config struct {
	Data       DataConfig      `yaml:"data"`
	Scanner    ScannerConfig   `yaml:"scanner"`
	Indicators IndicatorConfig `yaml:"indicators"`
	Strategies StrategyConfig  `yaml:"strategies"`
	Scoring    ScoringConfig   `yaml:"scoring"`
	Backtest   BacktestConfig  `yaml:"backtest"`
	Log        logging.Config  `yaml:"log"`
	Web        WebConfig       `yaml:"web"`
	Daemon     DaemonConfig    `yaml:"daemon"`
}

// DataConfig selects where price histories come from
type DataConfig struct {
	// Source is yahoo, csv or auto (csv first, then yahoo)
	Source      string        `yaml:"source"`
	Dir         string        `yaml:"dir"`
	TickersFile string        `yaml:"tickers_file"`
	HistoryDays int           `yaml:"history_days"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	RateLimit   int           `yaml:"rate_limit"` // Yahoo requests per minute
}

// ScannerConfig holds scanner settings
type ScannerConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// IndicatorConfig holds indicator window lengths
type IndicatorConfig struct {
	SMAShort        int     `yaml:"sma_short"`
	SMAMedium       int     `yaml:"sma_medium"`
	SMALong         int     `yaml:"sma_long"`
	RSIPeriod       int     `yaml:"rsi_period"`
	ATRPeriod       int     `yaml:"atr_period"`
	BBPeriod        int     `yaml:"bb_period"`
	BBStdDev        float64 `yaml:"bb_std"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	VolumeAvgPeriod int     `yaml:"volume_avg_period"`
}

// StrategyConfig holds detector thresholds
type StrategyConfig struct {
	MinBars                  int     `yaml:"min_bars"`
	PullbackSMADistancePct   float64 `yaml:"pullback_sma_distance_pct"`
	BreakoutLookbackDays     int     `yaml:"breakout_lookback_days"`
	BreakoutVolumeMultiplier float64 `yaml:"breakout_volume_multiplier"`
	BreakoutMinATRPct        float64 `yaml:"breakout_min_atr_pct"`
	OversoldRSI              float64 `yaml:"oversold_rsi"`
	VolumeBreakoutMinRatio   float64 `yaml:"volume_breakout_min_ratio"`
}

// ScoringConfig holds aggregation settings
type ScoringConfig struct {
	AlertScoreThreshold int `yaml:"alert_score_threshold"`
	MinScore            int `yaml:"min_score"`
	ConfluenceTwo       int `yaml:"confluence_two"`
	ConfluenceThree     int `yaml:"confluence_three"`
}

// BacktestConfig holds replay settings
type BacktestConfig struct {
	LookbackDays   int     `yaml:"lookback_days"`
	MaxHoldingDays int     `yaml:"max_holding_days"`
	SlippagePct    float64 `yaml:"slippage_pct"`
	WarmupBars     int     `yaml:"warmup_bars"`
	MaxEntryGapPct float64 `yaml:"max_entry_gap_pct"`
	MonteCarloRuns int     `yaml:"monte_carlo_runs"`
	MonteCarloSeed uint64  `yaml:"monte_carlo_seed"`
}

// WebConfig holds API server settings
type WebConfig struct {
	Port int `yaml:"port"`
}

// DaemonConfig holds scheduled scan settings
type DaemonConfig struct {
	RunDelay    time.Duration `yaml:"run_delay"` // after the session close
	Cooldown    time.Duration `yaml:"cooldown"`
	Retention   time.Duration `yaml:"retention"`
	HistoryFile string        `yaml:"history_file"` // relative paths live in data.dir
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	params := indicator.DefaultParams()
	strategies := strategy.DefaultConfig()
	scorer := scoring.DefaultConfig()
	bt := backtest.DefaultConfig()
	watch := daemon.DefaultConfig()

	return &Config{
		Data: DataConfig{
			Source:      "auto",
			Dir:         "data",
			TickersFile: "tickers.txt",
			HistoryDays: 5 * 252,
			CacheTTL:    12 * time.Hour,
			RateLimit:   30,
		},
		Scanner: ScannerConfig{
			Workers: 10,
			Timeout: 30 * time.Second,
		},
		Indicators: IndicatorConfig{
			SMAShort:        params.SMAShort,
			SMAMedium:       params.SMAMedium,
			SMALong:         params.SMALong,
			RSIPeriod:       params.RSIPeriod,
			ATRPeriod:       params.ATRPeriod,
			BBPeriod:        params.BBPeriod,
			BBStdDev:        params.BBStdDev,
			MACDFast:        params.MACDFast,
			MACDSlow:        params.MACDSlow,
			MACDSignal:      params.MACDSignal,
			VolumeAvgPeriod: params.VolumeAvgPeriod,
		},
		Strategies: StrategyConfig{
			MinBars:                  strategies.MinBars,
			PullbackSMADistancePct:   strategies.Pullback.MaxDistancePct,
			BreakoutLookbackDays:     params.HighLookback,
			BreakoutVolumeMultiplier: strategies.Breakout.VolumeMultiplier,
			BreakoutMinATRPct:        strategies.Breakout.MinATRPct,
			OversoldRSI:              strategies.MeanReversion.OversoldRSI,
			VolumeBreakoutMinRatio:   strategies.VolumeBreakout.MinVolumeRatio,
		},
		Scoring: ScoringConfig{
			AlertScoreThreshold: scorer.AlertScoreThreshold,
			ConfluenceTwo:       scorer.ConfluenceTwo,
			ConfluenceThree:     scorer.ConfluenceThree,
		},
		Backtest: BacktestConfig{
			LookbackDays:   bt.LookbackDays,
			MaxHoldingDays: bt.MaxHoldingDays,
			SlippagePct:    bt.SlippagePct,
			WarmupBars:     bt.WarmupBars,
			MaxEntryGapPct: bt.MaxEntryGapPct,
			MonteCarloRuns: 1000,
			MonteCarloSeed: 42,
		},
		Log: logging.DefaultConfig(),
		Web: WebConfig{Port: 8080},
		Daemon: DaemonConfig{
			RunDelay:    watch.RunDelay,
			Cooldown:    watch.Cooldown,
			Retention:   watch.Retention,
			HistoryFile: "alert_history.json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. A .env file in the working directory is read first and
// STOCK_ANALYZER_* variables override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from the environment
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	str("SOURCE", &c.Data.Source)
	str("DATA_DIR", &c.Data.Dir)
	str("TICKERS_FILE", &c.Data.TickersFile)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	num("WORKERS", &c.Scanner.Workers)
	num("ALERT_SCORE_THRESHOLD", &c.Scoring.AlertScoreThreshold)
	num("PORT", &c.Web.Port)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	switch c.Data.Source {
	case "auto", "yahoo", "csv":
	default:
		errs = append(errs, fmt.Errorf("data.source must be auto, yahoo or csv, got %q", c.Data.Source))
	}
	if c.Data.HistoryDays < 1 {
		errs = append(errs, fmt.Errorf("data.history_days must be at least 1"))
	}
	if c.Scanner.Workers < 1 {
		errs = append(errs, fmt.Errorf("scanner.workers must be at least 1"))
	}
	if c.Scoring.AlertScoreThreshold < 0 || c.Scoring.AlertScoreThreshold > 100 {
		errs = append(errs, fmt.Errorf("scoring.alert_score_threshold must be in [0, 100]"))
	}
	if c.Backtest.MonteCarloRuns < 0 {
		errs = append(errs, fmt.Errorf("backtest.monte_carlo_runs must not be negative"))
	}
	if c.Daemon.HistoryFile == "" {
		errs = append(errs, fmt.Errorf("daemon.history_file must be set"))
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port must be in [1, 65535]"))
	}

	errs = append(errs,
		c.IndicatorParams().Validate(),
		c.StrategyConfig().Validate(),
		c.BacktestConfig().Validate(),
		c.Log.Validate(),
		c.DaemonConfig().Validate(),
	)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// IndicatorParams converts the indicator section
func (c *Config) IndicatorParams() indicator.Params {
	p := indicator.DefaultParams()
	p.SMAShort = c.Indicators.SMAShort
	p.SMAMedium = c.Indicators.SMAMedium
	p.SMALong = c.Indicators.SMALong
	p.RSIPeriod = c.Indicators.RSIPeriod
	p.ATRPeriod = c.Indicators.ATRPeriod
	p.BBPeriod = c.Indicators.BBPeriod
	p.BBStdDev = c.Indicators.BBStdDev
	p.MACDFast = c.Indicators.MACDFast
	p.MACDSlow = c.Indicators.MACDSlow
	p.MACDSignal = c.Indicators.MACDSignal
	p.VolumeAvgPeriod = c.Indicators.VolumeAvgPeriod
	p.HighLookback = c.Strategies.BreakoutLookbackDays
	return p
}

// StrategyConfig converts the strategies section
func (c *Config) StrategyConfig() strategy.Config {
	s := strategy.DefaultConfig()
	s.MinBars = c.Strategies.MinBars
	s.Pullback.MaxDistancePct = c.Strategies.PullbackSMADistancePct
	s.Breakout.VolumeMultiplier = c.Strategies.BreakoutVolumeMultiplier
	s.Breakout.MinATRPct = c.Strategies.BreakoutMinATRPct
	s.MeanReversion.OversoldRSI = c.Strategies.OversoldRSI
	s.VolumeBreakout.MinVolumeRatio = c.Strategies.VolumeBreakoutMinRatio
	return s
}

// ScoringConfig converts the scoring section
func (c *Config) ScoringConfig() scoring.Config {
	return scoring.Config{
		AlertScoreThreshold: c.Scoring.AlertScoreThreshold,
		Workers:             c.Scanner.Workers,
		ConfluenceTwo:       c.Scoring.ConfluenceTwo,
		ConfluenceThree:     c.Scoring.ConfluenceThree,
	}
}

// BacktestConfig converts the backtest section
func (c *Config) BacktestConfig() backtest.Config {
	return backtest.Config{
		LookbackDays:   c.Backtest.LookbackDays,
		MaxHoldingDays: c.Backtest.MaxHoldingDays,
		SlippagePct:    c.Backtest.SlippagePct,
		WarmupBars:     c.Backtest.WarmupBars,
		MaxEntryGapPct: c.Backtest.MaxEntryGapPct,
		Workers:        c.Scanner.Workers,
	}
}

// DaemonConfig converts the daemon section
func (c *Config) DaemonConfig() daemon.Config {
	d := daemon.DefaultConfig()
	d.RunDelay = c.Daemon.RunDelay
	d.Cooldown = c.Daemon.Cooldown
	d.Retention = c.Daemon.Retention
	return d
}

// AlertHistoryPath resolves the alert history file against the data dir
func (c *Config) AlertHistoryPath() string {
	if filepath.IsAbs(c.Daemon.HistoryFile) {
		return c.Daemon.HistoryFile
	}
	return filepath.Join(c.Data.Dir, c.Daemon.HistoryFile)
}
