// Package risk evaluates the daily loss lock.
//
// A user whose realized result for the New York trading day reaches LockThresholdR
// or worse is locked out of new submissions until the window moves at New York
// midnight. Nothing is persisted: every evaluation recomputes from trades.
package risk

import (
	"time"

	"team-journal/internal/models"
	"team-journal/pkg/utils"
)

// LockThresholdR is the inclusive daily loss limit in R.
const LockThresholdR = -2.0

// DailyRisk is the evaluated state of one user's trading day.
type DailyRisk struct {
	Date       models.Date `json:"date"`
	TotalR     float64     `json:"total_r"`
	TradeCount int         `json:"trade_count"`
	IsLocked   bool        `json:"is_locked"`
}

// EvaluateDailyRisk sums result over the trades dated referenceDate.
// Reviewed and pending trades both count.
func EvaluateDailyRisk(trades []models.Trade, referenceDate models.Date) DailyRisk {
	out := DailyRisk{Date: referenceDate}
	for _, t := range trades {
		if t.TradeDate != referenceDate {
			continue
		}
		out.TotalR += t.Result
		out.TradeCount++
	}
	out.IsLocked = out.TotalR <= LockThresholdR
	return out
}

// DisplayR returns TotalR rounded to one decimal.
func (r DailyRisk) DisplayR() float64 {
	return utils.RoundTo(r.TotalR, 1)
}

// RemainingR returns how much more R can be lost before the lock engages.
// Zero once locked.
func (r DailyRisk) RemainingR() float64 {
	remaining := r.TotalR - LockThresholdR
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Evaluator binds risk evaluation to a trading-day clock.
type Evaluator struct {
	day utils.TradingDay
}

// NewEvaluator creates an evaluator. A nil clock reads the wall clock.
func NewEvaluator(clock utils.Clock) *Evaluator {
	return NewEvaluatorIn(clock, utils.NewYorkLocation)
}

// NewEvaluatorIn creates an evaluator whose trading day is bounded in loc.
func NewEvaluatorIn(clock utils.Clock, loc *time.Location) *Evaluator {
	return &Evaluator{day: utils.NewTradingDay(clock, loc)}
}

// Today returns the New York trading date.
func (e *Evaluator) Today() models.Date {
	return e.day.Today()
}

// NextReset returns the instant the current window closes.
func (e *Evaluator) NextReset() time.Time {
	return e.day.NextReset()
}

// Evaluate evaluates the user's trades against today's window.
func (e *Evaluator) Evaluate(trades []models.Trade) DailyRisk {
	return EvaluateDailyRisk(trades, e.Today())
}
