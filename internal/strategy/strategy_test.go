package strategy

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jevit/stock-analyzer/internal/indicator"
	"github.com/jevit/stock-analyzer/pkg/model"
)

// testSeries builds n bars of neutral readings; mutate adjusts bar i
func testSeries(n int, mutate func(i int, b *indicator.Bar)) *indicator.Series {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]indicator.Bar, n)
	for i := range bars {
		b := indicator.Bar{
			Candle: model.Candle{
				Time:   start.AddDate(0, 0, i),
				Open:   100,
				High:   101,
				Low:    99,
				Close:  100,
				Volume: 1000,
			},
			SMAShort:         indicator.Of(100),
			SMAMedium:        indicator.Of(100),
			SMALong:          indicator.Of(95),
			RSI:              indicator.Of(55),
			ATR:              indicator.Of(2),
			ATRPct:           indicator.Of(2),
			BBMiddle:         indicator.Of(100),
			BBUpper:          indicator.Of(104),
			BBLower:          indicator.Of(96),
			MACD:             indicator.Of(0.5),
			MACDSignal:       indicator.Of(0.5),
			MACDHist:         indicator.Of(0),
			VolumeAvg:        indicator.Of(1000),
			VolumeRatio:      indicator.Of(1.0),
			DistSMAShort:     indicator.Of(0),
			DistSMAMedium:    indicator.Of(0),
			DistSMALong:      indicator.Of(5.26),
			RollingHigh:      indicator.Of(105),
			PriorHigh:        indicator.Of(105),
			RollingHighShort: indicator.Of(103),
			PriorHighShort:   indicator.Of(103),
		}
		if mutate != nil {
			mutate(i, &b)
		}
		bars[i] = b
	}
	return &indicator.Series{Symbol: "TEST", Params: indicator.DefaultParams(), Bars: bars}
}

func lastBar(n int, fn func(b *indicator.Bar)) func(int, *indicator.Bar) {
	return func(i int, b *indicator.Bar) {
		if i == n-1 {
			fn(b)
		}
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func hasText(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func allDetectors() []Detector {
	return NewRegistry(DefaultConfig()).All()
}

func TestInsufficientData(t *testing.T) {
	short := testSeries(150, nil)

	for _, d := range allDetectors() {
		r := d.Evaluate(short)
		if r.Signal || r.Score != 0 {
			t.Errorf("%s: expected no signal and zero score, got signal=%v score=%d", d.Name(), r.Signal, r.Score)
		}
		if !hasText(r.Warnings, "Insufficient data") {
			t.Errorf("%s: expected insufficient data warning, got %v", d.Name(), r.Warnings)
		}
		if r.Levels != nil {
			t.Errorf("%s: expected no levels", d.Name())
		}
	}
}

func TestPullbackSignal(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.SMAMedium = indicator.Of(99)
		b.DistSMAMedium = indicator.Of(1.0)
		b.SMALong = indicator.Of(90)
		b.RSI = indicator.Of(55)
		b.RSICrossedUp50 = true
		b.VolumeRatio = indicator.Of(1.6)
	}))

	r := NewPullbackStrategy(DefaultPullbackConfig(), 200).Evaluate(s)

	// 25 uptrend + int(25 - 0.5*15) proximity + 25 RSI cross + 25 volume
	if r.Score != 92 {
		t.Errorf("score = %d, want 92", r.Score)
	}
	if !r.Signal {
		t.Fatalf("expected signal, warnings: %v", r.Warnings)
	}
	if r.Levels.Entry != 100 || r.Levels.Stop != 96 || r.Levels.Target != 104 {
		t.Errorf("levels = %+v, want 100/96/104", *r.Levels)
	}
	if !approx(r.Levels.RiskReward, 1) {
		t.Errorf("risk/reward = %f, want 1", r.Levels.RiskReward)
	}
	if len(r.Reasons) != 4 || len(r.Warnings) != 0 {
		t.Errorf("expected 4 reasons and no warnings, got %v / %v", r.Reasons, r.Warnings)
	}
}

func TestPullbackPartialCreditIsNotASignal(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.DistSMAMedium = indicator.Of(1.0)
		b.VolumeRatio = indicator.Of(1.0) // needs to exceed 1.0
	}))

	r := NewPullbackStrategy(DefaultPullbackConfig(), 200).Evaluate(s)
	if r.Signal {
		t.Error("volume ratio of exactly 1.0 must not confirm")
	}
	// 25 + 17 + 15 (RSI above 50) + 15 (healthy volume)
	if r.Score != 72 {
		t.Errorf("score = %d, want 72", r.Score)
	}
}

func TestBreakoutSignal(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.PriorHigh = indicator.Of(97)
		b.VolumeRatio = indicator.Of(2.1)
		b.ATRPct = indicator.Of(2.5)
	}))

	r := NewBreakoutStrategy(DefaultBreakoutConfig(), 200).Evaluate(s)
	if !r.Signal {
		t.Fatalf("expected breakout signal, warnings: %v", r.Warnings)
	}
	if r.Score != 100 {
		t.Errorf("score = %d, want 100", r.Score)
	}
	if r.Levels.Stop != 95 || r.Levels.Target != 106 {
		t.Errorf("levels = %+v, want stop 95 target 106", *r.Levels)
	}
	if !approx(r.Levels.RiskReward, 1.2) {
		t.Errorf("risk/reward = %f, want 1.2", r.Levels.RiskReward)
	}
}

func TestBreakoutTiers(t *testing.T) {
	tests := []struct {
		name       string
		priorHigh  float64
		volume     float64
		atrPct     float64
		wantScore  int
		wantSignal bool
	}{
		{"weak breakout, average volume", 99.5, 1.2, 1.5, 25 + 10 + 15 + 10, false},
		{"mid breakout, surge", 98.5, 1.5, 1.0, 30 + 25 + 15 + 10, true},
		{"no breakout", 105, 3.0, 3.0, 0 + 35 + 20 + 10, false},
		{"flat stock", 97, 2.0, 0.5, 35 + 35 + 0 + 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 250
			s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
				b.PriorHigh = indicator.Of(tt.priorHigh)
				b.VolumeRatio = indicator.Of(tt.volume)
				b.ATRPct = indicator.Of(tt.atrPct)
			}))
			r := NewBreakoutStrategy(DefaultBreakoutConfig(), 200).Evaluate(s)
			if r.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", r.Score, tt.wantScore)
			}
			if r.Signal != tt.wantSignal {
				t.Errorf("signal = %v, want %v", r.Signal, tt.wantSignal)
			}
		})
	}
}

func TestMeanReversionSignal(t *testing.T) {
	n := 250
	s := testSeries(n, func(i int, b *indicator.Bar) {
		switch i {
		case n - 2:
			b.Close = 95
			b.Low = 94
			b.RSI = indicator.Of(24)
		case n - 1:
			b.Close = 97
			b.RSI = indicator.Of(28)
		}
	})

	r := NewMeanReversionStrategy(DefaultMeanReversionConfig(), 200).Evaluate(s)
	if !r.Signal {
		t.Fatalf("expected signal, warnings: %v", r.Warnings)
	}
	// 25 was below + 25 RSI oversold + 25 rebound + 10 volume + 10 trend
	if r.Score != 95 {
		t.Errorf("score = %d, want 95", r.Score)
	}
	if r.Levels.Target != 100 || r.Levels.Stop != 94 {
		t.Errorf("levels = %+v, want stop 94 target 100 (middle band)", *r.Levels)
	}
}

func TestMeanReversionMissingBands(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.BBLower = indicator.Value{}
	}))

	r := NewMeanReversionStrategy(DefaultMeanReversionConfig(), 200).Evaluate(s)
	if r.Signal || r.Score != 0 {
		t.Errorf("expected zero-score non-signal, got %d", r.Score)
	}
	if !hasText(r.Warnings, "Bollinger Bands not calculated") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestMACDCrossoverSignal(t *testing.T) {
	n := 250
	s := testSeries(n, func(i int, b *indicator.Bar) {
		switch i {
		case n - 2:
			b.MACD = indicator.Of(0.4)
		case n - 1:
			b.MACD = indicator.Of(0.6)
		}
	})

	r := NewMACDStrategy(DefaultMACDConfig(), 200).Evaluate(s)
	if !r.Signal {
		t.Fatalf("expected signal, warnings: %v", r.Warnings)
	}
	if r.Score != 90 {
		t.Errorf("score = %d, want 90", r.Score)
	}
	if r.Reasons[0] != "Bullish MACD crossover signal" {
		t.Errorf("headline should come first, got %q", r.Reasons[0])
	}
	if r.Levels.Stop != 96 || r.Levels.Target != 108 || !approx(r.Levels.RiskReward, 2) {
		t.Errorf("levels = %+v", *r.Levels)
	}
}

func TestMACDCrossoverBelowTrend(t *testing.T) {
	n := 250
	s := testSeries(n, func(i int, b *indicator.Bar) {
		b.SMALong = indicator.Of(105)
		switch i {
		case n - 2:
			b.MACD = indicator.Of(0.4)
		case n - 1:
			b.MACD = indicator.Of(0.6)
		}
	})

	r := NewMACDStrategy(DefaultMACDConfig(), 200).Evaluate(s)
	if r.Signal {
		t.Error("crossover below SMA200 must not signal")
	}
	if r.Levels != nil {
		t.Error("no levels expected without a signal")
	}
	if !hasText(r.Warnings, "No signal: price below SMA200") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestGoldenCrossFresh(t *testing.T) {
	n := 250
	s := testSeries(n, func(i int, b *indicator.Bar) {
		switch i {
		case n - 2:
			b.SMAMedium = indicator.Of(94.9)
		case n - 1:
			b.SMAMedium = indicator.Of(95.1)
		default:
			b.SMAMedium = indicator.Of(94)
		}
	})

	r := NewGoldenCrossStrategy(DefaultGoldenCrossConfig(), 200).Evaluate(s)
	if !r.Signal {
		t.Fatalf("expected signal, warnings: %v", r.Warnings)
	}
	// 40 fresh + 15 price + 15 RSI + 5 volume + 10 volatility
	if r.Score != 85 {
		t.Errorf("score = %d, want 85", r.Score)
	}
	// max(95*0.98, 100-2.5*2) = 95
	if r.Levels.Stop != 95 || r.Levels.Target != 110 {
		t.Errorf("levels = %+v", *r.Levels)
	}
}

func TestGoldenCrossAgedAndWeak(t *testing.T) {
	s := testSeries(250, nil) // SMA50 100 > SMA200 95 on every bar, close == SMA50

	r := NewGoldenCrossStrategy(DefaultGoldenCrossConfig(), 200).Evaluate(s)
	if r.Signal {
		t.Error("close not above SMA50 must not signal")
	}
	if r.Details["days_in_cross"] != 29 {
		t.Errorf("days in cross = %v, want 29", r.Details["days_in_cross"])
	}
	// 20 in progress + 0 price + 15 RSI + 5 volume + 10 volatility
	if r.Score != 50 {
		t.Errorf("score = %d, want 50", r.Score)
	}
	if !hasText(r.Warnings, "conditions are weak") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestGoldenCrossDeathCross(t *testing.T) {
	s := testSeries(250, func(i int, b *indicator.Bar) {
		b.SMAMedium = indicator.Of(90)
	})

	r := NewGoldenCrossStrategy(DefaultGoldenCrossConfig(), 200).Evaluate(s)
	if r.Signal {
		t.Error("death cross must not signal")
	}
	if !hasText(r.Warnings, "Death cross") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestVolumeBreakoutSignal(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.Open = 101
		b.High = 104.5
		b.Low = 101
		b.Close = 104
		b.PriorHighShort = indicator.Of(100)
		b.VolumeRatio = indicator.Of(3.5)
		b.RSI = indicator.Of(65)
		b.ATRPct = indicator.Of(2.5)
	}))

	r := NewVolumeBreakoutStrategy(DefaultVolumeBreakoutConfig(), 200).Evaluate(s)
	if !r.Signal {
		t.Fatalf("expected signal, warnings: %v", r.Warnings)
	}
	// 30 breakout + 35 volume + 12 RSI + 10 trend + 10 volatility
	if r.Score != 97 {
		t.Errorf("score = %d, want 97", r.Score)
	}
	// max(99*0.99, 104-4) = 100, target 104 + 4*2.5
	if r.Levels.Stop != 100 || r.Levels.Target != 114 || !approx(r.Levels.RiskReward, 2.5) {
		t.Errorf("levels = %+v", *r.Levels)
	}
}

func TestVolumeBreakoutWithoutVolume(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.High = 104.5
		b.PriorHighShort = indicator.Of(100)
		b.VolumeRatio = indicator.Of(1.2)
	}))

	r := NewVolumeBreakoutStrategy(DefaultVolumeBreakoutConfig(), 200).Evaluate(s)
	if r.Signal {
		t.Error("breakout without volume must not signal")
	}
	if !hasText(r.Warnings, "Breakout without volume") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.PriorHigh = indicator.Of(97)
		b.VolumeRatio = indicator.Of(2.1)
	}))

	for _, d := range allDetectors() {
		first := d.Evaluate(s)
		second := d.Evaluate(s)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: results differ between identical evaluations", d.Name())
		}
	}
}

func TestRiskRewardMatchesLevels(t *testing.T) {
	n := 250
	series := []*indicator.Series{
		testSeries(n, lastBar(n, func(b *indicator.Bar) {
			b.PriorHigh = indicator.Of(97)
			b.VolumeRatio = indicator.Of(2.1)
		})),
		testSeries(n, func(i int, b *indicator.Bar) {
			if i == n-2 {
				b.MACD = indicator.Of(0.4)
			}
			if i == n-1 {
				b.MACD = indicator.Of(0.6)
			}
		}),
	}

	for _, s := range series {
		for _, d := range allDetectors() {
			r := d.Evaluate(s)
			if !r.Signal {
				continue
			}
			l := r.Levels
			if !approx(l.RiskReward, RiskReward(l.Entry, l.Stop, l.Target)) {
				t.Errorf("%s: stored R/R %f does not match levels", d.Name(), l.RiskReward)
			}
		}
	}

	if RiskReward(100, 100, 110) != 0 {
		t.Error("R/R must be 0 when stop equals entry")
	}
}

func TestEvaluateIgnoresFutureBars(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.PriorHigh = indicator.Of(97)
		b.VolumeRatio = indicator.Of(2.1)
	}))
	d := NewBreakoutStrategy(DefaultBreakoutConfig(), 200)

	if !d.Evaluate(s).Signal {
		t.Fatal("expected a signal on the full series")
	}
	if d.Evaluate(s.Truncate(n - 1)).Signal {
		t.Error("a prefix must not see the breakout bar")
	}
}

func TestScoresStayInRange(t *testing.T) {
	n := 250
	s := testSeries(n, lastBar(n, func(b *indicator.Bar) {
		b.PriorHigh = indicator.Of(50)
		b.PriorHighShort = indicator.Of(50)
		b.High = 120
		b.VolumeRatio = indicator.Of(9)
		b.ATRPct = indicator.Of(3)
	}))

	for _, d := range allDetectors() {
		r := d.Evaluate(s)
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("%s: score %d out of range", d.Name(), r.Score)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(DefaultConfig())

	want := []string{NameTrendPullback, NameBreakout, NameMeanReversion, NameMACDCrossover, NameGoldenCross, NameVolumeBreakout}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}

	d, err := reg.Get("golden-cross")
	if err != nil || d.Name() != NameGoldenCross {
		t.Errorf("slug lookup failed: %v", err)
	}

	if _, err := reg.Get("morning-dip"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	all, err := reg.Select("")
	if err != nil || len(all) != 6 {
		t.Errorf("empty selection should return all detectors, got %d (%v)", len(all), err)
	}

	for _, info := range reg.AllInfo() {
		if info.Type == "" || info.Description == "" {
			t.Errorf("incomplete info for %s", info.Name)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg := DefaultConfig()
	cfg.MinBars = 0
	cfg.Breakout.VolumeMultiplier = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
}
