package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyHistory is returned when a price history has no bars
	ErrEmptyHistory = errors.New("empty price history")

	// ErrInvalidHistory is returned when bars are out of order or malformed
	ErrInvalidHistory = errors.New("invalid price history")
)

// Candle represents a single daily bar (OHLCV data)
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Stock represents basic stock information
type Stock struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
}

// History is the ordered daily history of one ticker
type History struct {
	Stock   Stock    `json:"stock"`
	Candles []Candle `json:"candles"`
}

// ValidateCandles checks ordering and OHLC shape of a daily history.
// Dates must be strictly increasing and every bar must satisfy
// high >= max(open, close) >= min(open, close) >= low >= 0.
func ValidateCandles(candles []Candle) error {
	if len(candles) == 0 {
		return ErrEmptyHistory
	}

	for i, c := range candles {
		if i > 0 && !c.Time.After(candles[i-1].Time) {
			return fmt.Errorf("%w: bar %d (%s) is not after %s", ErrInvalidHistory,
				i, c.Time.Format("2006-01-02"), candles[i-1].Time.Format("2006-01-02"))
		}
		if c.Low < 0 || c.Volume < 0 {
			return fmt.Errorf("%w: bar %d has negative values", ErrInvalidHistory, i)
		}
		bodyHigh := max(c.Open, c.Close)
		bodyLow := min(c.Open, c.Close)
		if c.High < bodyHigh || bodyLow < c.Low {
			return fmt.Errorf("%w: bar %d (%s) has inconsistent OHLC %.4f/%.4f/%.4f/%.4f", ErrInvalidHistory,
				i, c.Time.Format("2006-01-02"), c.Open, c.High, c.Low, c.Close)
		}
	}

	return nil
}
