package indicator

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by Compute for unusable window lengths
var ErrInvalidParams = errors.New("invalid indicator parameters")

// Params holds the window lengths used by Compute
type Params struct {
	SMAShort  int // default 20
	SMAMedium int // default 50
	SMALong   int // default 200

	RSIPeriod int
	ATRPeriod int

	BBPeriod int
	BBStdDev float64

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	VolumeAvgPeriod int

	// Rolling high windows: breakout and volume-breakout lookbacks
	HighLookback      int
	HighShortLookback int
}

// DefaultParams returns the standard indicator settings
func DefaultParams() Params {
	return Params{
		SMAShort:          20,
		SMAMedium:         50,
		SMALong:           200,
		RSIPeriod:         14,
		ATRPeriod:         14,
		BBPeriod:          20,
		BBStdDev:          2.0,
		MACDFast:          12,
		MACDSlow:          26,
		MACDSignal:        9,
		VolumeAvgPeriod:   20,
		HighLookback:      55,
		HighShortLookback: 20,
	}
}

// Validate returns every invalid setting joined into one error
func (p Params) Validate() error {
	var errs []error

	periods := []struct {
		name  string
		value int
	}{
		{"sma_short", p.SMAShort},
		{"sma_medium", p.SMAMedium},
		{"sma_long", p.SMALong},
		{"rsi_period", p.RSIPeriod},
		{"atr_period", p.ATRPeriod},
		{"bb_period", p.BBPeriod},
		{"macd_fast", p.MACDFast},
		{"macd_slow", p.MACDSlow},
		{"macd_signal", p.MACDSignal},
		{"volume_avg_period", p.VolumeAvgPeriod},
		{"high_lookback", p.HighLookback},
		{"high_short_lookback", p.HighShortLookback},
	}
	for _, pr := range periods {
		if pr.value < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", pr.name, pr.value))
		}
	}

	if p.BBPeriod == 1 {
		errs = append(errs, fmt.Errorf("bb_period must be at least 2 for a standard deviation"))
	}
	if p.BBStdDev <= 0 {
		errs = append(errs, fmt.Errorf("bb_std must be positive, got %g", p.BBStdDev))
	}
	if p.SMAShort >= p.SMAMedium || p.SMAMedium >= p.SMALong {
		errs = append(errs, fmt.Errorf("sma periods must increase: %d < %d < %d", p.SMAShort, p.SMAMedium, p.SMALong))
	}
	if p.MACDFast >= p.MACDSlow {
		errs = append(errs, fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)", p.MACDFast, p.MACDSlow))
	}

	return errors.Join(errs...)
}
