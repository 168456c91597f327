// Package workouts filters, bounds and groups workout samples.
package workouts

import (
	"sort"
	"time"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"
)

// FromSamples converts the workout-typed samples, skipping everything else
// and any sample with a negative duration.
func FromSamples(samples []domain.Sample) []domain.WorkoutSample {
	out := make([]domain.WorkoutSample, 0, len(samples))
	for _, s := range samples {
		if s.Type != domain.SampleWorkout || s.DurationSeconds < 0 {
			continue
		}
		out = append(out, domain.WorkoutFromSample(s))
	}
	return out
}

// FilterByActivity keeps the workouts whose kind equals kind, in input order.
func FilterByActivity(samples []domain.WorkoutSample, kind domain.ActivityKind) []domain.WorkoutSample {
	out := make([]domain.WorkoutSample, 0, len(samples))
	for _, w := range samples {
		if w.ActivityKind == kind {
			out = append(out, w)
		}
	}
	return out
}

// LimitRecent returns the n most recent workouts, newest first.
// The input slice is not modified.
func LimitRecent(samples []domain.WorkoutSample, n int) []domain.WorkoutSample {
	sorted := make([]domain.WorkoutSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// GroupByPeriod buckets workouts by the calendar start of their period.
// Within a bucket the input order is kept.
func GroupByPeriod(
	cal *calendar.Calendar,
	samples []domain.WorkoutSample,
	period domain.Period,
) (map[time.Time][]domain.WorkoutSample, error) {
	groups := make(map[time.Time][]domain.WorkoutSample)
	for _, w := range samples {
		start, err := cal.Truncate(w.StartTime, period)
		if err != nil {
			return nil, err
		}
		groups[start] = append(groups[start], w)
	}
	return groups, nil
}
