package daemon

import (
	"testing"
	"time"
)

func et(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, ETLocation())
}

func TestMarketStatus(t *testing.T) {
	schedule := DefaultMarketSchedule()

	tests := []struct {
		name       string
		now        time.Time
		wantOpen   bool
		wantReason string
		wantToOpen time.Duration
	}{
		{"regular session", et(2026, 10, 14, 10, 0), true, "open", 0},
		{"pre-market", et(2026, 10, 14, 8, 0), false, "pre-market", 90 * time.Minute},
		{"after hours", et(2026, 10, 14, 17, 0), false, "after-hours", 16*time.Hour + 30*time.Minute},
		{"at the close", et(2026, 10, 14, 16, 0), false, "after-hours", 17*time.Hour + 30*time.Minute},
		{"saturday", et(2026, 10, 17, 12, 0), false, "weekend", 45*time.Hour + 30*time.Minute},
		{"thanksgiving", et(2026, 11, 26, 12, 0), false, "holiday", 21*time.Hour + 30*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.Status(tt.now)
			if got.IsOpen != tt.wantOpen || got.Reason != tt.wantReason {
				t.Errorf("Status() = open %v reason %q, want %v %q", got.IsOpen, got.Reason, tt.wantOpen, tt.wantReason)
			}
			if got.TimeToOpen != tt.wantToOpen {
				t.Errorf("TimeToOpen = %v, want %v", got.TimeToOpen, tt.wantToOpen)
			}
		})
	}

	if got := schedule.Status(et(2026, 10, 14, 10, 0)); got.TimeToClose != 6*time.Hour {
		t.Errorf("TimeToClose = %v, want 6h", got.TimeToClose)
	}
}

func TestNextRun(t *testing.T) {
	schedule := DefaultMarketSchedule()
	delay := 30 * time.Minute

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"same day", et(2026, 10, 14, 10, 0), et(2026, 10, 14, 16, 30)},
		{"after today's run", et(2026, 10, 14, 16, 45), et(2026, 10, 15, 16, 30)},
		{"exactly at run time", et(2026, 10, 14, 16, 30), et(2026, 10, 15, 16, 30)},
		{"friday evening", et(2026, 10, 16, 17, 0), et(2026, 10, 19, 16, 30)},
		{"sunday", et(2026, 10, 18, 9, 0), et(2026, 10, 19, 16, 30)},
		{"skips thanksgiving", et(2026, 11, 25, 17, 0), et(2026, 11, 27, 16, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schedule.NextRun(tt.now, delay); !got.Equal(tt.want) {
				t.Errorf("NextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTradingDays(t *testing.T) {
	if IsTradingDay(et(2026, 12, 25, 12, 0)) {
		t.Error("Christmas is not a trading day")
	}
	if !IsTradingDay(et(2026, 12, 24, 12, 0)) {
		t.Error("Christmas Eve 2026 is a trading day")
	}
	if got := NextTradingDay(et(2026, 7, 2, 12, 0)); got.Day() != 6 {
		t.Errorf("after 2026-07-02 = %v, want July 6", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3*time.Hour + 12*time.Minute, "3h 12m"},
		{45 * time.Minute, "45m"},
		{-time.Minute, "0m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
