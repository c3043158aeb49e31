package utils

import (
	"fmt"
	"time"
	// Embedded zone database so the trading day is exact on hosts without tzdata.
	_ "time/tzdata"

	"team-journal/internal/models"
)

// TradingTimezone is the reference zone for the trading day.
const TradingTimezone = "America/New_York"

// NewYorkLocation is the timezone that bounds the trading day.
var NewYorkLocation *time.Location

func init() {
	var err error
	NewYorkLocation, err = time.LoadLocation(TradingTimezone)
	if err != nil {
		// A fixed offset would be wrong across daylight saving changes.
		panic(fmt.Sprintf("loading %s: %v", TradingTimezone, err))
	}
}

// Clock supplies the current time. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.At }

// TradingDay resolves "today" for a clock in a reference location.
type TradingDay struct {
	Clock    Clock
	Location *time.Location
}

// NewTradingDay creates a TradingDay. A nil clock reads the wall clock and a nil
// location falls back to New York.
func NewTradingDay(clock Clock, loc *time.Location) TradingDay {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = NewYorkLocation
	}
	return TradingDay{Clock: clock, Location: loc}
}

// Today returns the current calendar date in the reference location.
func (d TradingDay) Today() models.Date {
	return models.DateIn(d.Clock.Now(), d.Location)
}

// NextReset returns the instant the current trading day ends.
func (d TradingDay) NextReset() time.Time {
	return d.Today().AddDays(1).Time(d.Location)
}

// TradingDate returns the New York calendar date of the clock's current time.
func TradingDate(clock Clock) models.Date {
	return NewTradingDay(clock, NewYorkLocation).Today()
}

// TimeUntilReset returns the duration until the New York day rolls over.
func TimeUntilReset(clock Clock) time.Duration {
	day := NewTradingDay(clock, NewYorkLocation)
	return day.NextReset().Sub(day.Clock.Now())
}
