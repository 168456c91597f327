// Package calendar holds every date boundary computation used by the
// rollups and groupers. All arithmetic is done on calendar fields
// (time.Date / AddDate) in a fixed location, never on elapsed seconds, so
// week and month starts do not drift across DST transitions.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/climb-tracker/internal/domain"
)

var (
	ErrUnknownPeriod  = errors.New("unknown period")
	ErrUnknownWeekday = errors.New("unknown weekday")
)

// Calendar truncates and steps through day/week/month periods.
type Calendar struct {
	loc       *time.Location
	weekStart time.Weekday
}

// New creates a Calendar in loc whose weeks start on weekStart.
// A nil location means UTC.
func New(loc *time.Location, weekStart time.Weekday) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, weekStart: weekStart}
}

// Default is a UTC calendar with Monday week starts.
func Default() *Calendar {
	return New(time.UTC, time.Monday)
}

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// StartOfDay returns local midnight of t's day.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// StartOfWeek returns midnight of the most recent week-start day on or before t.
func (c *Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) - int(c.weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of t's month.
func (c *Calendar) StartOfMonth(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc)
}

// MonthIndex returns the month index of t as seen in the calendar's zone.
func (c *Calendar) MonthIndex(t time.Time) int {
	return domain.MonthIndex(t.In(c.loc))
}

// Truncate returns the start of the period containing t.
func (c *Calendar) Truncate(t time.Time, p domain.Period) (time.Time, error) {
	switch p {
	case domain.PeriodDay:
		return c.StartOfDay(t), nil
	case domain.PeriodWeek:
		return c.StartOfWeek(t), nil
	case domain.PeriodMonth:
		return c.StartOfMonth(t), nil
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrUnknownPeriod, p)
}

// Add steps n periods from a period start.
func (c *Calendar) Add(start time.Time, p domain.Period, n int) (time.Time, error) {
	start = start.In(c.loc)
	switch p {
	case domain.PeriodDay:
		return start.AddDate(0, 0, n), nil
	case domain.PeriodWeek:
		return start.AddDate(0, 0, 7*n), nil
	case domain.PeriodMonth:
		return start.AddDate(0, n, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrUnknownPeriod, p)
}

// PeriodStarts returns the k period starts covering [now-(k-1)*p, now],
// oldest first.
func (c *Calendar) PeriodStarts(now time.Time, p domain.Period, k int) ([]time.Time, error) {
	if k <= 0 {
		return nil, nil
	}
	current, err := c.Truncate(now, p)
	if err != nil {
		return nil, err
	}
	starts := make([]time.Time, k)
	for i := 0; i < k; i++ {
		start, err := c.Add(current, p, -(k - 1 - i))
		if err != nil {
			return nil, err
		}
		starts[i] = start
	}
	return starts, nil
}

// ParsePeriod maps "day", "week" or "month" (any case) to a Period.
func ParsePeriod(s string) (domain.Period, error) {
	switch p := domain.Period(strings.ToLower(strings.TrimSpace(s))); p {
	case domain.PeriodDay, domain.PeriodWeek, domain.PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPeriod, s)
}

// ParseWeekday maps an English weekday name to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("%w %q", ErrUnknownWeekday, s)
}
