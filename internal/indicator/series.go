package indicator

import (
	"fmt"

	"github.com/jevit/stock-analyzer/pkg/model"
)

// Bar is one daily candle annotated with every indicator reading
type Bar struct {
	model.Candle

	SMAShort  Value `json:"sma_short"`
	SMAMedium Value `json:"sma_medium"`
	SMALong   Value `json:"sma_long"`

	RSI            Value `json:"rsi"`
	RSICrossedUp50 bool  `json:"rsi_crossed_up_50"`

	ATR    Value `json:"atr"`
	ATRPct Value `json:"atr_pct"`

	BBMiddle Value `json:"bb_middle"`
	BBUpper  Value `json:"bb_upper"`
	BBLower  Value `json:"bb_lower"`

	MACD       Value `json:"macd"`
	MACDSignal Value `json:"macd_signal"`
	MACDHist   Value `json:"macd_hist"`

	VolumeAvg   Value `json:"volume_avg"`
	VolumeRatio Value `json:"volume_ratio"`

	DistSMAShort  Value `json:"dist_sma_short_pct"`
	DistSMAMedium Value `json:"dist_sma_medium_pct"`
	DistSMALong   Value `json:"dist_sma_long_pct"`

	// RollingHigh includes today; PriorHigh covers only the bars before today.
	RollingHigh      Value `json:"rolling_high"`
	PriorHigh        Value `json:"prior_high"`
	RollingHighShort Value `json:"rolling_high_short"`
	PriorHighShort   Value `json:"prior_high_short"`

	Return1D Value `json:"return_1d_pct"`
}

// Series is an indicator-annotated daily history of one ticker
type Series struct {
	Symbol string `json:"symbol"`
	Params Params `json:"-"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Last returns the latest bar, or nil for an empty series
func (s *Series) Last() *Bar {
	return s.Back(0)
}

// Back returns the bar n positions before the latest (0 = latest), or nil
func (s *Series) Back(n int) *Bar {
	idx := s.Len() - 1 - n
	if n < 0 || idx < 0 {
		return nil
	}
	return &s.Bars[idx]
}

// Truncate returns a view of the first n bars. Capacity is capped so the view
// can never reach later bars.
func (s *Series) Truncate(n int) *Series {
	if n > s.Len() {
		n = s.Len()
	}
	if n < 0 {
		n = 0
	}
	return &Series{
		Symbol: s.Symbol,
		Params: s.Params,
		Bars:   s.Bars[:n:n],
	}
}

// Compute validates the parameters and the history, then annotates every
// bar with indicators.
// Every reading is causal: bar i depends only on bars 0..i, so a truncated
// series carries the same readings as one computed on the prefix alone.
func Compute(symbol string, candles []model.Candle, p Params) (*Series, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err := model.ValidateCandles(candles); err != nil {
		return nil, fmt.Errorf("computing indicators for %s: %w", symbol, err)
	}

	n := len(candles)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
		volumes[i] = float64(c.Volume)
	}

	smaShort := SMA(closes, p.SMAShort)
	smaMedium := SMA(closes, p.SMAMedium)
	smaLong := SMA(closes, p.SMALong)

	rsi := RSI(closes, p.RSIPeriod)
	atr := SMA(TrueRange(highs, lows, closes), p.ATRPeriod)

	bbMiddle := SMA(closes, p.BBPeriod)
	bbStd := StdDev(closes, p.BBPeriod)

	emaFast := EMA(closes, p.MACDFast)
	emaSlow := EMA(closes, p.MACDSlow)
	macd := make([]float64, n)
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	macdSignal := EMA(macd, p.MACDSignal)

	volAvg := SMA(volumes, p.VolumeAvgPeriod)

	high := RollingMax(highs, p.HighLookback)
	priorHigh := PriorMax(highs, p.HighLookback)
	highShort := RollingMax(highs, p.HighShortLookback)
	priorHighShort := PriorMax(highs, p.HighShortLookback)

	bars := make([]Bar, n)
	for i, c := range candles {
		b := Bar{
			Candle:           c,
			SMAShort:         smaShort[i],
			SMAMedium:        smaMedium[i],
			SMALong:          smaLong[i],
			RSI:              rsi[i],
			ATR:              atr[i],
			BBMiddle:         bbMiddle[i],
			MACD:             Of(macd[i]),
			MACDSignal:       Of(macdSignal[i]),
			MACDHist:         Of(macd[i] - macdSignal[i]),
			VolumeAvg:        volAvg[i],
			RollingHigh:      high[i],
			PriorHigh:        priorHigh[i],
			RollingHighShort: highShort[i],
			PriorHighShort:   priorHighShort[i],
		}

		if atr[i].Valid && c.Close > 0 {
			b.ATRPct = Of(atr[i].V / c.Close * 100)
		}
		if bbMiddle[i].Valid && bbStd[i].Valid {
			b.BBUpper = Of(bbMiddle[i].V + p.BBStdDev*bbStd[i].V)
			b.BBLower = Of(bbMiddle[i].V - p.BBStdDev*bbStd[i].V)
		}
		if volAvg[i].Valid && volAvg[i].V > 0 {
			b.VolumeRatio = Of(volumes[i] / volAvg[i].V)
		}

		b.DistSMAShort = pctDistance(c.Close, smaShort[i])
		b.DistSMAMedium = pctDistance(c.Close, smaMedium[i])
		b.DistSMALong = pctDistance(c.Close, smaLong[i])

		if i > 0 && closes[i-1] != 0 {
			b.Return1D = Of((c.Close - closes[i-1]) / closes[i-1] * 100)
		}

		// Crossed above 50 within the last two bars
		if rsi[i].GT(50) && i >= 1 {
			crossed := rsi[i-1].LE(50)
			if i >= 2 {
				crossed = crossed || rsi[i-2].LE(50)
			}
			b.RSICrossedUp50 = crossed
		}

		bars[i] = b
	}

	return &Series{Symbol: symbol, Params: p, Bars: bars}, nil
}
