package indicator

import "math"

// SMA returns the simple rolling mean of values. The first period-1 entries
// are undefined.
func SMA(values []float64, period int) []Value {
	out := make([]Value, len(values))
	if period < 1 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		var sum float64
		for _, v := range values[i-period+1 : i+1] {
			sum += v
		}
		out[i] = Of(sum / float64(period))
	}
	return out
}

// StdDev returns the rolling sample standard deviation (n-1 denominator)
func StdDev(values []float64, period int) []Value {
	out := make([]Value, len(values))
	if period < 2 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		var sum float64
		for _, v := range window {
			sum += v
		}
		mean := sum / float64(period)
		var sq float64
		for _, v := range window {
			sq += (v - mean) * (v - mean)
		}
		out[i] = Of(math.Sqrt(sq / float64(period-1)))
	}
	return out
}

// EMA is the exponential moving average with alpha = 2/(span+1), seeded with
// the first value. It is defined from the first bar.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Wilder smooths values with Wilder's recurrence. The seed is the simple mean
// of the first period values (defined at index period-1); each later entry is
// (prev*(period-1) + value) / period.
func Wilder(values []float64, period int) []Value {
	out := make([]Value, len(values))
	if period < 1 || len(values) < period {
		return out
	}

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	avg := seed / float64(period)
	out[period-1] = Of(avg)

	for i := period; i < len(values); i++ {
		avg = (avg*float64(period-1) + values[i]) / float64(period)
		out[i] = Of(avg)
	}
	return out
}

// RSI computes the relative strength index of closes using Wilder smoothing.
// The first bar has no change and contributes zero gain and zero loss.
func RSI(closes []float64, period int) []Value {
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := Wilder(gains, period)
	avgLoss := Wilder(losses, period)

	out := make([]Value, len(closes))
	for i := range closes {
		if !avgGain[i].Valid || !avgLoss[i].Valid {
			continue
		}
		if avgLoss[i].V == 0 {
			out[i] = Of(100)
			continue
		}
		rs := avgGain[i].V / avgLoss[i].V
		out[i] = Of(100 - 100/(1+rs))
	}
	return out
}

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and uses high-low.
func TrueRange(highs, lows, closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		tr := highs[i] - lows[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(highs[i]-closes[i-1]))
			tr = math.Max(tr, math.Abs(lows[i]-closes[i-1]))
		}
		out[i] = tr
	}
	return out
}

// RollingMax returns the max over the trailing period values, current included
func RollingMax(values []float64, period int) []Value {
	out := make([]Value, len(values))
	if period < 1 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = Of(maxOf(values[i-period+1 : i+1]))
	}
	return out
}

// PriorMax returns the max over the period values before the current one
func PriorMax(values []float64, period int) []Value {
	out := make([]Value, len(values))
	if period < 1 {
		return out
	}
	for i := period; i < len(values); i++ {
		out[i] = Of(maxOf(values[i-period : i]))
	}
	return out
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func pctDistance(price float64, ref Value) Value {
	if !ref.Valid || ref.V == 0 {
		return Value{}
	}
	return Of((price - ref.V) / ref.V * 100)
}
