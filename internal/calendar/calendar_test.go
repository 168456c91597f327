package calendar_test

import (
	"testing"
	"time"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar_StartOfWeek_Monday(t *testing.T) {
	cal := calendar.Default()

	// 2024-05-09 is a Thursday
	thu := time.Date(2024, 5, 9, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), cal.StartOfWeek(thu))

	// Monday maps to itself, Sunday to the previous Monday
	mon := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, mon, cal.StartOfWeek(mon))
	sun := time.Date(2024, 5, 12, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, mon, cal.StartOfWeek(sun))
}

func TestCalendar_StartOfWeek_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tz database not available: %s", err)
	}
	cal := calendar.New(loc, time.Monday)

	// DST starts on Sunday 2024-03-31 in Berlin
	afterSwitch := time.Date(2024, 4, 3, 9, 0, 0, 0, loc)
	weekStart := cal.StartOfWeek(afterSwitch)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, loc), weekStart)

	prev, err := cal.Add(weekStart, domain.PeriodWeek, -1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, loc), prev)
	assert.Equal(t, 0, prev.Hour())
	// the week across the switch is only 167 hours long
	assert.Equal(t, 167*time.Hour, weekStart.Sub(prev))
}

func TestCalendar_Truncate(t *testing.T) {
	cal := calendar.Default()
	ts := time.Date(2024, 2, 29, 13, 14, 15, 0, time.UTC)

	day, err := cal.Truncate(ts, domain.PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), day)

	month, err := cal.Truncate(ts, domain.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), month)

	_, err = cal.Truncate(ts, domain.Period("year"))
	assert.Error(t, err)
}

func TestCalendar_PeriodStarts(t *testing.T) {
	cal := calendar.Default()
	now := time.Date(2024, 5, 9, 12, 0, 0, 0, time.UTC)

	weeks, err := cal.PeriodStarts(now, domain.PeriodWeek, 5)
	require.NoError(t, err)
	require.Len(t, weeks, 5)
	assert.Equal(t, time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC), weeks[0])
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), weeks[4])

	months, err := cal.PeriodStarts(now, domain.PeriodMonth, 3)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}, months)

	none, err := cal.PeriodStarts(now, domain.PeriodWeek, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParsePeriodAndWeekday(t *testing.T) {
	p, err := calendar.ParsePeriod(" Week ")
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodWeek, p)

	_, err = calendar.ParsePeriod("fortnight")
	assert.ErrorIs(t, err, calendar.ErrUnknownPeriod)

	d, err := calendar.ParseWeekday("sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	_, err = calendar.ParseWeekday("someday")
	assert.ErrorIs(t, err, calendar.ErrUnknownWeekday)
}
