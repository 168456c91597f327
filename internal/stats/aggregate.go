// Package stats computes per-workout and cross-workout statistics.
package stats

import (
	"alcyxob/climb-tracker/internal/domain"

	mstats "github.com/montanaflynn/stats"
)

// Average returns the arithmetic mean of series.
func Average(series []float64) (float64, error) {
	if len(series) == 0 {
		return 0, domain.ErrEmptySeries
	}
	return mstats.Mean(series)
}

// Minimum returns the smallest value of series.
func Minimum(series []float64) (float64, error) {
	if len(series) == 0 {
		return 0, domain.ErrEmptySeries
	}
	return mstats.Min(series)
}

// Maximum returns the largest value of series.
func Maximum(series []float64) (float64, error) {
	if len(series) == 0 {
		return 0, domain.ErrEmptySeries
	}
	return mstats.Max(series)
}

// Sum adds up series; an empty series sums to zero.
func Sum(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	total, _ := mstats.Sum(series)
	return total
}

// RecoveryEstimate is duration * maxHR / avgHR, evaluated in that order.
func RecoveryEstimate(durationSeconds, maxHR, avgHR float64) (float64, error) {
	if avgHR <= 0 {
		return 0, domain.ErrInvalidRate
	}
	return durationSeconds * maxHR / avgHR, nil
}

// BPMs extracts the bpm values of a heart rate series.
func BPMs(series []domain.HeartRatePoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.BPM
	}
	return values
}

// HeartRate reduces one workout's series to average, min and max.
func HeartRate(workoutID string, series []domain.HeartRatePoint) (domain.HeartRateAggregate, error) {
	values := BPMs(series)
	avg, err := Average(values)
	if err != nil {
		return domain.HeartRateAggregate{}, err
	}
	lo, err := Minimum(values)
	if err != nil {
		return domain.HeartRateAggregate{}, err
	}
	hi, err := Maximum(values)
	if err != nil {
		return domain.HeartRateAggregate{}, err
	}
	return domain.HeartRateAggregate{
		WorkoutID: workoutID,
		Average:   avg,
		Min:       lo,
		Max:       hi,
	}, nil
}

// Recovery derives the recovery estimate of a workout from its heart rate aggregate.
func Recovery(w domain.WorkoutSample, agg domain.HeartRateAggregate) (domain.RecoveryEstimate, error) {
	seconds, err := RecoveryEstimate(w.DurationSeconds, agg.Max, agg.Average)
	if err != nil {
		return domain.RecoveryEstimate{}, err
	}
	return domain.RecoveryEstimate{WorkoutID: w.ID, RecoverySeconds: seconds}, nil
}
