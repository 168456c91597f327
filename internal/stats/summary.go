package stats

import (
	"context"
	"errors"

	"alcyxob/climb-tracker/internal/domain"

	"github.com/sourcegraph/conc/iter"
)

// WorkoutStats is one workout with whatever derived values could be computed.
// A nil field means the value is not available for this workout; Error holds
// the reason when the heart rate fetch itself failed.
type WorkoutStats struct {
	Workout    domain.WorkoutSample       `json:"workout"`
	HeartRate  *domain.HeartRateAggregate `json:"heartRate,omitempty"`
	HRVAverage *float64                   `json:"hrvAverage,omitempty"`
	Recovery   *domain.RecoveryEstimate   `json:"recovery,omitempty"`
	Err        error                      `json:"-"`
	Error      string                     `json:"error,omitempty"`
}

// Summaries computes WorkoutStats for every workout concurrently and returns
// them in input order once all sub-fetches have finished.
func (a *Aggregator) Summaries(ctx context.Context, userID string, workouts []domain.WorkoutSample) []WorkoutStats {
	return iter.Map(workouts, func(w *domain.WorkoutSample) WorkoutStats {
		return a.summary(ctx, userID, *w)
	})
}

func (a *Aggregator) summary(ctx context.Context, userID string, w domain.WorkoutSample) WorkoutStats {
	ws := WorkoutStats{Workout: w}

	if hrv, err := a.fetcher.Values(ctx, userID, domain.SampleHRV, w); err == nil {
		if avg, err := Average(hrv); err == nil {
			ws.HRVAverage = &avg
		}
	}

	series, err := a.fetcher.HeartRateSeries(ctx, userID, w)
	if err != nil {
		ws.Err = err
		ws.Error = err.Error()
		return ws
	}
	agg, err := HeartRate(w.ID, series)
	if errors.Is(err, domain.ErrEmptySeries) {
		return ws
	}
	if err != nil {
		ws.Err = err
		ws.Error = err.Error()
		return ws
	}
	ws.HeartRate = &agg

	if rec, err := Recovery(w, agg); err == nil {
		ws.Recovery = &rec
	}
	return ws
}
