// Package rollup buckets workouts into calendar weeks or months for charting.
package rollup

import (
	"errors"
	"sort"
	"time"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/stats"
	"alcyxob/climb-tracker/internal/workouts"
)

const DefaultPeriods = 5

var ErrInvalidPeriods = errors.New("number of periods must be positive")

// MetricFunc extracts the summed quantity from a workout.
type MetricFunc func(domain.WorkoutSample) float64

// Minutes is the default metric: duration / 60.
func Minutes(w domain.WorkoutSample) float64 {
	return w.Minutes()
}

type Builder struct {
	cal    *calendar.Calendar
	metric MetricFunc
}

// NewBuilder creates a Builder summing metric; nil means Minutes.
func NewBuilder(cal *calendar.Calendar, metric MetricFunc) *Builder {
	if cal == nil {
		cal = calendar.Default()
	}
	if metric == nil {
		metric = Minutes
	}
	return &Builder{cal: cal, metric: metric}
}

// Calendar returns the calendar the buckets are cut with.
func (b *Builder) Calendar() *calendar.Calendar {
	return b.cal
}

// Window returns [start of the oldest period, start of the period after now)
// for k periods ending at now.
func (b *Builder) Window(now time.Time, period domain.Period, k int) (time.Time, time.Time, error) {
	if k <= 0 {
		return time.Time{}, time.Time{}, ErrInvalidPeriods
	}
	starts, err := b.cal.PeriodStarts(now, period, k)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := b.cal.Add(starts[len(starts)-1], period, 1)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return starts[0], end, nil
}

// Build returns exactly k buckets, one per period ending with the one that
// contains now, sorted ascending. Periods without workouts are present with a
// zero total; workouts outside the window are ignored.
func (b *Builder) Build(ws []domain.WorkoutSample, period domain.Period, now time.Time, k int) ([]domain.Bucket, error) {
	if k <= 0 {
		return nil, ErrInvalidPeriods
	}
	groups, err := workouts.GroupByPeriod(b.cal, ws, period)
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]domain.Bucket, len(groups))
	for start, group := range groups {
		values := make([]float64, len(group))
		for i, w := range group {
			values[i] = b.metric(w)
		}
		totals[start.Unix()] = domain.Bucket{
			Period:       period,
			PeriodStart:  start,
			TotalMinutes: stats.Sum(values),
			Workouts:     len(group),
		}
	}

	expected, err := b.cal.PeriodStarts(now, period, k)
	if err != nil {
		return nil, err
	}
	buckets := make([]domain.Bucket, 0, k)
	for _, start := range expected {
		bucket, ok := totals[start.Unix()]
		if !ok {
			bucket = domain.Bucket{Period: period, PeriodStart: start}
		}
		buckets = append(buckets, bucket)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].PeriodStart.Before(buckets[j].PeriodStart)
	})
	return buckets, nil
}
