package daemon

import (
	"fmt"
	"time"
)

// MarketSchedule is the regular session in US Eastern time
type MarketSchedule struct {
	OpenHour  int // 9
	OpenMin   int // 30
	CloseHour int // 16
	CloseMin  int // 0
}

// DefaultMarketSchedule returns the NYSE/NASDAQ regular session
func DefaultMarketSchedule() MarketSchedule {
	return MarketSchedule{
		OpenHour:  9,
		OpenMin:   30,
		CloseHour: 16,
		CloseMin:  0,
	}
}

// MarketStatus describes the session at one instant
type MarketStatus struct {
	IsOpen        bool
	CurrentTimeET time.Time
	OpenTime      time.Time
	CloseTime     time.Time
	TimeToOpen    time.Duration
	TimeToClose   time.Duration
	Reason        string // "open", "weekend", "holiday", "pre-market", "after-hours"
}

// ETLocation returns US Eastern time, or a fixed EST zone when the tz
// database is unavailable
func ETLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	return loc
}

func (s MarketSchedule) openAt(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), s.OpenHour, s.OpenMin, 0, 0, day.Location())
}

func (s MarketSchedule) closeAt(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), s.CloseHour, s.CloseMin, 0, 0, day.Location())
}

// Status reports the session state at now
func (s MarketSchedule) Status(now time.Time) MarketStatus {
	now = now.In(ETLocation())
	status := MarketStatus{
		CurrentTimeET: now,
		OpenTime:      s.openAt(now),
		CloseTime:     s.closeAt(now),
	}

	switch {
	case !isWeekday(now):
		status.Reason = "weekend"
	case IsUSHoliday(now):
		status.Reason = "holiday"
	case now.Before(status.OpenTime):
		status.Reason = "pre-market"
		status.TimeToOpen = status.OpenTime.Sub(now)
		return status
	case !now.Before(status.CloseTime):
		status.Reason = "after-hours"
	default:
		status.IsOpen = true
		status.Reason = "open"
		status.TimeToClose = status.CloseTime.Sub(now)
		return status
	}

	status.TimeToOpen = s.openAt(NextTradingDay(now)).Sub(now)
	return status
}

// NextRun returns the first session close plus delay that falls strictly
// after now
func (s MarketSchedule) NextRun(now time.Time, delay time.Duration) time.Time {
	now = now.In(ETLocation())
	day := now
	if !IsTradingDay(day) {
		day = NextTradingDay(day)
	}
	for {
		run := s.closeAt(day).Add(delay)
		if run.After(now) {
			return run
		}
		day = NextTradingDay(day)
	}
}

// NextTradingDay returns the first trading day after t's date
func NextTradingDay(t time.Time) time.Time {
	day := t.AddDate(0, 0, 1)
	for !IsTradingDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// IsTradingDay reports whether t's date is a weekday and not an exchange
// holiday
func IsTradingDay(t time.Time) bool {
	return isWeekday(t) && !IsUSHoliday(t)
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// FormatDuration renders d as "3h 12m" or "12m"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "0m"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Full-day NYSE closures, observed dates
var usHolidays = map[string]bool{
	"2024-01-01": true, "2024-01-15": true, "2024-02-19": true, "2024-03-29": true,
	"2024-05-27": true, "2024-06-19": true, "2024-07-04": true, "2024-09-02": true,
	"2024-11-28": true, "2024-12-25": true,

	"2025-01-01": true, "2025-01-09": true, "2025-01-20": true, "2025-02-17": true,
	"2025-04-18": true, "2025-05-26": true, "2025-06-19": true, "2025-07-04": true,
	"2025-09-01": true, "2025-11-27": true, "2025-12-25": true,

	"2026-01-01": true, "2026-01-19": true, "2026-02-16": true, "2026-04-03": true,
	"2026-05-25": true, "2026-06-19": true, "2026-07-03": true, "2026-09-07": true,
	"2026-11-26": true, "2026-12-25": true,

	"2027-01-01": true, "2027-01-18": true, "2027-02-15": true, "2027-03-26": true,
	"2027-05-31": true, "2027-06-18": true, "2027-07-05": true, "2027-09-06": true,
	"2027-11-25": true, "2027-12-24": true,
}

// IsUSHoliday reports whether t's date is a listed exchange holiday
func IsUSHoliday(t time.Time) bool {
	return usHolidays[t.Format("2006-01-02")]
}
