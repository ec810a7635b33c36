package model

import (
	"errors"
	"testing"
	"time"
)

func TestValidateCandles(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	good := Candle{Time: day, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100}

	tests := []struct {
		name    string
		candles []Candle
		wantErr error
	}{
		{"empty", nil, ErrEmptyHistory},
		{"single bar", []Candle{good}, nil},
		{
			"increasing dates",
			[]Candle{good, {Time: day.AddDate(0, 0, 1), Open: 10, High: 10, Low: 10, Close: 10}},
			nil,
		},
		{
			"duplicate date",
			[]Candle{good, good},
			ErrInvalidHistory,
		},
		{
			"high below close",
			[]Candle{{Time: day, Open: 10, High: 10.2, Low: 9, Close: 10.5}},
			ErrInvalidHistory,
		},
		{
			"low above open",
			[]Candle{{Time: day, Open: 10, High: 11, Low: 10.1, Close: 10.5}},
			ErrInvalidHistory,
		},
		{
			"negative volume",
			[]Candle{{Time: day, Open: 10, High: 11, Low: 9, Close: 10, Volume: -1}},
			ErrInvalidHistory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandles(tt.candles)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
