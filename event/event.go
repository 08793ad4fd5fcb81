// Package event models the days the London Stock Exchange is closed so that rebalance dates land
// on trading days.
package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
)

var (
	ErrStartAfterEnd = errors.New("event start time is after end time")
	ErrUnsetTime     = errors.New("unset event start or end time")
	ErrNoEventName   = errors.New("no event name")
)

// maxRollDays bounds the search for the next trading day.
const maxRollDays = 366

// Event is a named span of time the exchange is closed.
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// lseHolidays are the England and Wales bank holidays the exchange observes.
var lseHolidays = []*cal.Holiday{
	gb.NewYear,
	gb.GoodFriday,
	gb.EasterMonday,
	gb.EarlyMay,
	gb.SpringHoliday,
	gb.SummerHoliday,
	gb.ChristmasDay,
	gb.BoxingDay,
}

// Calendar answers whether the exchange trades on a given date. Only the date of a timestamp in
// its own location is considered.
type Calendar struct {
	bc       *cal.BusinessCalendar
	holidays []*cal.Holiday
}

// NewLSECalendar returns the London Stock Exchange trading calendar: weekdays other than the
// observed bank holidays.
func NewLSECalendar() *Calendar {
	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(lseHolidays...)
	return &Calendar{bc: bc, holidays: lseHolidays}
}

// IsTradingDay reports whether the exchange is open on the date of t.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	return c.bc.IsWorkday(t)
}

// NextTradingDay returns the first trading day strictly after t at the same time of day.
func (c *Calendar) NextTradingDay(t time.Time) time.Time {
	return c.RollForward(t.AddDate(0, 0, 1))
}

// RollForward returns t if it is a trading day, otherwise the next trading day.
func (c *Calendar) RollForward(t time.Time) time.Time {
	for i := 0; i < maxRollDays && !c.IsTradingDay(t); i++ {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// RebalanceDate returns the trading day on or after the given number of calendar days from
// from.
func (c *Calendar) RebalanceDate(from time.Time, days int) time.Time {
	return c.RollForward(from.AddDate(0, 0, days))
}

// Holidays returns one day long closure events for every observed holiday between start and
// end inclusive, in date order.
func (c *Calendar) Holidays(start, end time.Time) []Event {
	var events []Event
	for year := start.Year(); year <= end.Year(); year++ {
		for _, hol := range c.holidays {
			events = append(events, Holiday(hol, year, start, end)...)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

// Holiday returns the closure event for hol in year if its observed date lies between start and
// end inclusive. The event is expressed in the location of start.
func Holiday(hol *cal.Holiday, year int, start, end time.Time) []Event {
	_, observed := hol.Calc(year)
	if observed.IsZero() {
		return nil
	}
	loc := start.Location()
	day := time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, loc)
	if day.Before(start) || day.After(end) {
		return nil
	}
	return []Event{{
		Name:  strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, year), " ", "_"),
		Start: day,
		End:   day.AddDate(0, 0, 1),
	}}
}
