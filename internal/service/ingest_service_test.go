package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/healthstore"
	"alcyxob/climb-tracker/internal/metrics"
)

func TestIngest_StoresNormalizedSamples(t *testing.T) {
	source := healthstore.NewMemorySource()
	m := metrics.NewTestManager()
	svc := NewIngestService(source, m)
	ctx := context.Background()

	start := time.Date(2025, time.March, 13, 18, 0, 0, 0, time.UTC)
	n, err := svc.Ingest(ctx, "u1", []domain.Sample{
		{UserID: "someone-else", Type: domain.SampleWorkout, Start: start, End: start.Add(time.Hour)},
		{ID: "hr-1", Type: domain.SampleHeartRate, Start: start.Add(time.Minute), Value: 120},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	workouts, err := source.QuerySamples(ctx, healthstore.Query{
		UserID: "u1", Type: domain.SampleWorkout, Start: start, End: start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	w := workouts[0]
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "u1", w.UserID)
	assert.Equal(t, domain.ActivityOther, w.ActivityKind)
	assert.InDelta(t, 3600, w.DurationSeconds, 1e-9)
	assert.Equal(t, SourceDevice, w.Source)

	hr, err := source.QuerySamples(ctx, healthstore.Query{
		UserID: "u1", Type: domain.SampleHeartRate, Start: start, End: start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, hr, 1)
	assert.Equal(t, "hr-1", hr[0].DeviceID)
	assert.NotEqual(t, "hr-1", hr[0].ID)
	assert.True(t, hr[0].End.Equal(hr[0].Start))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterSamplesIngested.WithLabelValues(SourceDevice)))
}

func TestIngest_SameDeviceIDAcrossUsers(t *testing.T) {
	source := healthstore.NewMemorySource()
	svc := NewIngestService(source, nil)
	ctx := context.Background()
	start := time.Date(2025, time.March, 13, 18, 0, 0, 0, time.UTC)

	_, err := svc.Ingest(ctx, "u1", []domain.Sample{
		{ID: "s1", Type: domain.SampleWorkout, ActivityKind: domain.ActivityClimbing, Start: start, DurationSeconds: 1800},
	})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "u2", []domain.Sample{
		{ID: "s1", Type: domain.SampleHeartRate, Start: start, Value: 90},
	})
	require.NoError(t, err)

	query := func(user string, typ domain.SampleType) []domain.Sample {
		got, err := source.QuerySamples(ctx, healthstore.Query{
			UserID: user, Type: typ, Start: start.Add(-time.Hour), End: start.Add(time.Hour),
		})
		require.NoError(t, err)
		return got
	}
	u1Workouts := query("u1", domain.SampleWorkout)
	require.Len(t, u1Workouts, 1)
	assert.Equal(t, domain.ActivityClimbing, u1Workouts[0].ActivityKind)
	assert.Empty(t, query("u1", domain.SampleHeartRate))

	u2HR := query("u2", domain.SampleHeartRate)
	require.Len(t, u2HR, 1)
	assert.NotEqual(t, u1Workouts[0].ID, u2HR[0].ID)
}

func TestIngest_ResendKeepsRecordedStart(t *testing.T) {
	source := healthstore.NewMemorySource()
	svc := NewIngestService(source, nil)
	ctx := context.Background()
	start := time.Date(2025, time.March, 13, 18, 0, 0, 0, time.UTC)

	_, err := svc.Ingest(ctx, "u1", []domain.Sample{
		{ID: "w1", Type: domain.SampleWorkout, ActivityKind: domain.ActivityClimbing, Start: start, DurationSeconds: 1800},
	})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "u1", []domain.Sample{
		{ID: "w1", Type: domain.SampleWorkout, ActivityKind: domain.ActivityClimbing, Start: start.Add(10 * time.Minute), DurationSeconds: 600},
	})
	require.NoError(t, err)

	got, err := source.QuerySamples(ctx, healthstore.Query{
		UserID: "u1", Type: domain.SampleWorkout, Start: start.Add(-time.Hour), End: start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(start))
	assert.InDelta(t, 1800, got[0].DurationSeconds, 1e-9)
}

func TestIngest_RejectsInvalidBatch(t *testing.T) {
	source := healthstore.NewMemorySource()
	svc := NewIngestService(source, nil)
	start := time.Date(2025, time.March, 13, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		sample domain.Sample
	}{
		{"negative duration", domain.Sample{Type: domain.SampleWorkout, Start: start, DurationSeconds: -1}},
		{"unknown type", domain.Sample{Type: "steps", Start: start}},
		{"missing start", domain.Sample{Type: domain.SampleHeartRate, Value: 90}},
		{"end before start", domain.Sample{Type: domain.SampleHRV, Start: start, End: start.Add(-time.Minute)}},
		{"negative calories", domain.Sample{Type: domain.SampleWorkout, Start: start, DurationSeconds: 60, CaloriesBurned: kcal(-5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid := domain.Sample{Type: domain.SampleHeartRate, Start: start, Value: 100}
			_, err := svc.Ingest(context.Background(), "u1", []domain.Sample{valid, tt.sample})
			require.ErrorIs(t, err, ErrValidationFailed)
			assert.True(t, strings.HasPrefix(err.Error(), "sample 1:"))
		})
	}

	stored, err := source.QuerySamples(context.Background(), healthstore.Query{
		UserID: "u1", Type: domain.SampleHeartRate, Start: start.Add(-time.Hour), End: start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, stored, "rejected batches store nothing")
}

func TestIngest_Limits(t *testing.T) {
	svc := NewIngestService(healthstore.NewMemorySource(), nil)

	n, err := svc.Ingest(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Ingest(context.Background(), "u1", make([]domain.Sample, MaxIngestBatch+1))
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	_, err = svc.Ingest(context.Background(), "", []domain.Sample{{}})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
