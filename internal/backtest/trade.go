package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrTradeClosed is returned when closing a trade twice
var ErrTradeClosed = errors.New("trade already closed")

// ExitReason explains why a trade was closed
type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitTimeout    ExitReason = "timeout"
	ExitEndOfData  ExitReason = "end_of_data"
)

// Status is the lifecycle state of a trade
type Status int

const (
	StatusOpen Status = iota
	StatusClosed
)

func (s Status) String() string {
	if s == StatusClosed {
		return "closed"
	}
	return "open"
}

// MarshalText encodes the status as "open" or "closed"
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "open" or "closed"
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "open":
		*s = StatusOpen
	case "closed":
		*s = StatusClosed
	default:
		return fmt.Errorf("unknown trade status %q", text)
	}
	return nil
}

// Trade is one simulated position. It starts open and is closed exactly
// once with an exit reason.
type Trade struct {
	Symbol     string    `json:"ticker"`
	Strategy   string    `json:"strategy"`
	Status     Status    `json:"status"`
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`

	ExitDate   time.Time  `json:"exit_date,omitzero"`
	ExitPrice  float64    `json:"exit_price,omitempty"`
	ExitReason ExitReason `json:"exit_reason,omitempty"`

	PnLPct          float64 `json:"pnl_pct"`
	DurationDays    int     `json:"duration_days"`
	MaxAdversePct   float64 `json:"max_adverse_pct"`   // Worst excursion while open, <= 0
	MaxFavorablePct float64 `json:"max_favorable_pct"` // Best excursion while open, >= 0
	IsWin           bool    `json:"is_win"`
}

// NewTrade opens a trade
func NewTrade(symbol, strategyName string, entryDate time.Time, entry, stop, target float64) Trade {
	return Trade{
		Symbol:     symbol,
		Strategy:   strategyName,
		Status:     StatusOpen,
		EntryDate:  entryDate,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
	}
}

// IsClosed reports whether the trade has exited
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// Close exits the trade and computes its outcome
func (t *Trade) Close(date time.Time, price float64, reason ExitReason) error {
	if t.IsClosed() {
		return fmt.Errorf("%w: %s %s entered %s", ErrTradeClosed, t.Symbol, t.Strategy, t.EntryDate.Format("2006-01-02"))
	}

	t.Status = StatusClosed
	t.ExitDate = date
	t.ExitPrice = price
	t.ExitReason = reason
	t.PnLPct = t.returnPct(price)
	t.IsWin = t.PnLPct > 0
	t.DurationDays = t.HeldDays(date)
	return nil
}

// UpdateExtremes tracks the largest adverse and favorable moves
func (t *Trade) UpdateExtremes(price float64) {
	pct := t.returnPct(price)
	if pct < 0 {
		t.MaxAdversePct = math.Min(t.MaxAdversePct, pct)
	} else {
		t.MaxFavorablePct = math.Max(t.MaxFavorablePct, pct)
	}
}

// HeldDays returns whole calendar days between entry and date
func (t *Trade) HeldDays(date time.Time) int {
	return int(date.Sub(t.EntryDate).Hours() / 24)
}

// RealizedRR is |pnl%| over the planned risk in percent. Zero while open or
// when the stop sits on the entry.
func (t *Trade) RealizedRR() float64 {
	if !t.IsClosed() || t.EntryPrice == 0 {
		return 0
	}
	risk := math.Abs((t.StopLoss - t.EntryPrice) / t.EntryPrice * 100)
	if risk == 0 {
		return 0
	}
	return math.Abs(t.PnLPct) / risk
}

func (t *Trade) returnPct(price float64) float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	return (price - t.EntryPrice) / t.EntryPrice * 100
}
