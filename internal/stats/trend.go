package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/metrics"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/multierr"
)

// Metric names a per-workout derived value.
type Metric string

const (
	MetricAvgHeartRate Metric = "avg_heart_rate"
	MetricMinHeartRate Metric = "min_heart_rate"
	MetricMaxHeartRate Metric = "max_heart_rate"
	MetricHRV          Metric = "hrv"
	MetricCalories     Metric = "calories"
	MetricDuration     Metric = "duration"
	MetricRecovery     Metric = "recovery"
)

var ErrUnknownMetric = errors.New("unknown metric")

var ErrNoCalories = errors.New("workout has no calorie data")

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricAvgHeartRate, MetricMinHeartRate, MetricMaxHeartRate,
		MetricHRV, MetricCalories, MetricDuration, MetricRecovery:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Fetcher loads the per-workout data the metrics need.
type Fetcher interface {
	HeartRateSeries(ctx context.Context, userID string, w domain.WorkoutSample) ([]domain.HeartRatePoint, error)
	Values(ctx context.Context, userID string, sampleType domain.SampleType, w domain.WorkoutSample) ([]float64, error)
}

// WorkoutFailure records a sub-fetch that could not contribute a value.
type WorkoutFailure struct {
	WorkoutID string    `json:"workoutId"`
	Date      time.Time `json:"date"`
	Err       error     `json:"-"`
	Error     string    `json:"error"`
}

// Trend is a metric across a bounded set of workouts. Points keep the
// workout dates so the series can be plotted. Empty is set when no workout
// contributed a value; it is the "nothing to show" state, not an error.
// Skipped lists workouts that had no data for the metric.
type Trend struct {
	Metric   Metric              `json:"metric"`
	Points   []domain.DatedValue `json:"points"`
	Overall  float64             `json:"overall"`
	Empty    bool                `json:"empty"`
	Skipped  []string            `json:"skipped,omitempty"`
	Failures []WorkoutFailure    `json:"failures,omitempty"`
}

// Err joins the per-workout failures, nil when every sub-fetch succeeded.
func (t Trend) Err() error {
	var err error
	for _, f := range t.Failures {
		err = multierr.Append(err, fmt.Errorf("workout %s: %w", f.WorkoutID, f.Err))
	}
	return err
}

// Aggregator fans per-workout statistic fetches out concurrently.
type Aggregator struct {
	fetcher Fetcher
	metrics *metrics.Manager
}

func NewAggregator(fetcher Fetcher, metricsManager *metrics.Manager) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		metrics: metricsManager,
	}
}

// PerWorkout computes metric for a single workout.
func (a *Aggregator) PerWorkout(ctx context.Context, userID string, metric Metric, w domain.WorkoutSample) (float64, error) {
	switch metric {
	case MetricDuration:
		return w.DurationSeconds, nil
	case MetricCalories:
		if w.CaloriesBurned == nil {
			return 0, ErrNoCalories
		}
		return *w.CaloriesBurned, nil
	case MetricHRV:
		values, err := a.fetcher.Values(ctx, userID, domain.SampleHRV, w)
		if err != nil {
			return 0, err
		}
		return Average(values)
	case MetricAvgHeartRate, MetricMinHeartRate, MetricMaxHeartRate, MetricRecovery:
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}

	series, err := a.fetcher.HeartRateSeries(ctx, userID, w)
	if err != nil {
		return 0, err
	}
	agg, err := HeartRate(w.ID, series)
	if err != nil {
		return 0, err
	}
	switch metric {
	case MetricAvgHeartRate:
		return agg.Average, nil
	case MetricMinHeartRate:
		return agg.Min, nil
	case MetricMaxHeartRate:
		return agg.Max, nil
	}
	rec, err := Recovery(w, agg)
	if err != nil {
		return 0, err
	}
	return rec.RecoverySeconds, nil
}

type workoutValue struct {
	workout domain.WorkoutSample
	value   float64
	err     error
}

// AcrossWorkouts applies metric to every workout concurrently, waits for all
// of them and reduces the successful values again: max of maxima, min of
// minima, mean otherwise. A failed workout is reported in Failures and does
// not stop the others from contributing.
func (a *Aggregator) AcrossWorkouts(ctx context.Context, userID string, metric Metric, workouts []domain.WorkoutSample) (Trend, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return Trend{}, err
	}
	trend := Trend{Metric: metric, Points: []domain.DatedValue{}}
	if len(workouts) == 0 {
		trend.Empty = true
		return trend, nil
	}

	results := iter.Map(workouts, func(w *domain.WorkoutSample) workoutValue {
		v, err := a.PerWorkout(ctx, userID, metric, *w)
		return workoutValue{workout: *w, value: v, err: err}
	})

	values := make([]float64, 0, len(results))
	for _, r := range results {
		if noData(r.err) {
			trend.Skipped = append(trend.Skipped, r.workout.ID)
			continue
		}
		if r.err != nil {
			trend.Failures = append(trend.Failures, WorkoutFailure{
				WorkoutID: r.workout.ID,
				Date:      r.workout.StartTime,
				Err:       r.err,
				Error:     r.err.Error(),
			})
			a.recordFailure(userID, metric, r)
			continue
		}
		trend.Points = append(trend.Points, domain.DatedValue{
			WorkoutID: r.workout.ID,
			Date:      r.workout.StartTime,
			Value:     r.value,
		})
		values = append(values, r.value)
	}

	sort.SliceStable(trend.Points, func(i, j int) bool {
		return trend.Points[i].Date.Before(trend.Points[j].Date)
	})
	sort.SliceStable(trend.Failures, func(i, j int) bool {
		return trend.Failures[i].Date.Before(trend.Failures[j].Date)
	})

	if len(values) == 0 {
		trend.Empty = true
		return trend, nil
	}

	var err error
	switch metric {
	case MetricMaxHeartRate:
		trend.Overall, err = Maximum(values)
	case MetricMinHeartRate:
		trend.Overall, err = Minimum(values)
	default:
		trend.Overall, err = Average(values)
	}
	if err != nil {
		return Trend{}, err
	}
	return trend, nil
}

// noData reports whether err only means the workout has nothing to show.
func noData(err error) bool {
	return errors.Is(err, domain.ErrEmptySeries) || errors.Is(err, ErrNoCalories)
}

func (a *Aggregator) recordFailure(userID string, metric Metric, r workoutValue) {
	if a.metrics != nil {
		a.metrics.CounterWorkoutStatFailure.Inc()
	}
	log.WithFields(log.Fields{
		"user":    userID,
		"metric":  metric,
		"workout": r.workout.ID,
	}).Warnf("workout statistic unavailable: %s", r.err)
}
