// Package healthstore abstracts queries against the external time-series
// health sample source.
package healthstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/metrics"

	log "github.com/sirupsen/logrus"
)

const DefaultQueryTimeout = 10 * time.Second

var ErrInvalidQuery = errors.New("invalid sample query")

// Query selects samples of one type for one user in [Start, End).
// Limit <= 0 means no limit.
type Query struct {
	UserID         string
	Type           domain.SampleType
	Start          time.Time
	End            time.Time
	Limit          int
	SortDescending bool
}

func (q Query) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidQuery)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%w: unknown sample type %q", ErrInvalidQuery, q.Type)
	}
	if !q.End.After(q.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidQuery)
	}
	return nil
}

// SampleSource is the external health sample store.
// Implementations return domain.ErrUnauthorized when the store itself denies access.
type SampleSource interface {
	QuerySamples(ctx context.Context, q Query) ([]domain.Sample, error)
}

// PermissionChecker reports whether a user shared a sample type.
type PermissionChecker interface {
	Authorized(ctx context.Context, userID string, sampleType domain.SampleType) (bool, error)
}

// Store wraps a SampleSource with authorization, a bounded timeout and
// error classification. It never retries: each failure is reported once.
type Store struct {
	source      SampleSource
	permissions PermissionChecker
	timeout     time.Duration
	metrics     *metrics.Manager
}

// NewStore creates a Store. A nil PermissionChecker allows every type.
func NewStore(
	source SampleSource,
	permissions PermissionChecker,
	timeout time.Duration,
	metricsManager *metrics.Manager,
) *Store {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Store{
		source:      source,
		permissions: permissions,
		timeout:     timeout,
		metrics:     metricsManager,
	}
}

// Query returns the samples matching q sorted by start time in the
// requested direction. An empty slice with a nil error means "no data";
// authorization failures, store errors and timeouts are distinct errors.
func (s *Store) Query(ctx context.Context, q Query) ([]domain.Sample, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	samples, err := s.query(ctx, q)
	if s.metrics != nil {
		s.metrics.HistSampleQueryDuration.Observe(time.Since(started).Seconds())
		s.metrics.CounterSampleQueries.WithLabelValues(string(q.Type), outcome(samples, err)).Inc()
	}
	if err != nil {
		log.WithFields(log.Fields{
			"user": q.UserID,
			"type": q.Type,
		}).Debugf("sample query failed: %s", err)
		return nil, err
	}
	return samples, nil
}

func (s *Store) query(ctx context.Context, q Query) ([]domain.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.permissions != nil {
		ok, err := s.permissions.Authorized(ctx, q.UserID, q.Type)
		if err != nil {
			return nil, classify(ctx, err)
		}
		if !ok {
			return nil, domain.ErrUnauthorized
		}
	}

	type result struct {
		samples []domain.Sample
		err     error
	}
	done := make(chan result, 1)
	go func() {
		samples, err := s.source.QuerySamples(ctx, q)
		done <- result{samples: samples, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, classify(ctx, ctx.Err())
	}
	if res.err != nil {
		return nil, classify(ctx, res.err)
	}

	return normalize(res.samples, q), nil
}

// normalize enforces the query contract regardless of how well the source
// honours it: matching type and window, sort direction, then limit.
func normalize(samples []domain.Sample, q Query) []domain.Sample {
	out := make([]domain.Sample, 0, len(samples))
	for _, smp := range samples {
		if smp.Type != q.Type {
			continue
		}
		if smp.Start.Before(q.Start) || !smp.Start.Before(q.End) {
			continue
		}
		out = append(out, smp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.SortDescending {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].Start.Before(out[j].Start)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTimeout),
		errors.Is(err, domain.ErrDataUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.ErrTimeout
	}
	return fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
}

func outcome(samples []domain.Sample, err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case err != nil:
		return "unavailable"
	case len(samples) == 0:
		return "empty"
	}
	return "ok"
}

// Workouts returns the workout samples in [start, end).
func (s *Store) Workouts(
	ctx context.Context,
	userID string,
	start, end time.Time,
	limit int,
	sortDescending bool,
) ([]domain.WorkoutSample, error) {
	samples, err := s.Query(ctx, Query{
		UserID:         userID,
		Type:           domain.SampleWorkout,
		Start:          start,
		End:            end,
		Limit:          limit,
		SortDescending: sortDescending,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.WorkoutSample, 0, len(samples))
	for _, smp := range samples {
		if smp.DurationSeconds < 0 {
			continue
		}
		out = append(out, domain.WorkoutFromSample(smp))
	}
	return out, nil
}

// HeartRateSeries returns the ordered heart rate readings inside a workout.
func (s *Store) HeartRateSeries(ctx context.Context, userID string, w domain.WorkoutSample) ([]domain.HeartRatePoint, error) {
	samples, err := s.Query(ctx, Query{
		UserID: userID,
		Type:   domain.SampleHeartRate,
		Start:  w.StartTime,
		End:    windowEnd(w),
	})
	if err != nil {
		return nil, err
	}
	series := make([]domain.HeartRatePoint, 0, len(samples))
	for _, smp := range samples {
		series = append(series, domain.HeartRatePoint{Time: smp.Start, BPM: smp.Value})
	}
	return series, nil
}

// Values returns the raw values of sampleType inside a workout, ordered by time.
func (s *Store) Values(ctx context.Context, userID string, sampleType domain.SampleType, w domain.WorkoutSample) ([]float64, error) {
	samples, err := s.Query(ctx, Query{
		UserID: userID,
		Type:   sampleType,
		Start:  w.StartTime,
		End:    windowEnd(w),
	})
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(samples))
	for _, smp := range samples {
		values = append(values, smp.Value)
	}
	return values, nil
}

// windowEnd keeps zero-length workouts queryable.
func windowEnd(w domain.WorkoutSample) time.Time {
	end := w.End()
	if !end.After(w.StartTime) {
		end = w.StartTime.Add(time.Second)
	}
	return end
}
