package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/climb-tracker/internal/domain"
)

func grantAll(t *testing.T, s *testServer, userID string) {
	t.Helper()
	w := s.do(t, http.MethodPut, "/api/v1/health/permissions", userID, UpdatePermissionsRequest{
		Grant: []domain.SampleType{domain.SampleWorkout, domain.SampleHeartRate, domain.SampleHRV, domain.SampleActiveEnergy},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRecentWorkoutsWithoutPermission(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/health/workouts/recent", "u1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIngestThenRecentWorkouts(t *testing.T) {
	s := newTestServer(t)
	grantAll(t, s, "u1")

	start := time.Now().Add(-3 * time.Hour).UTC().Truncate(time.Second)
	req := IngestSamplesRequest{Samples: []domain.Sample{
		{Type: domain.SampleWorkout, ActivityKind: domain.ActivityClimbing, Start: start, DurationSeconds: 3600},
		{Type: domain.SampleWorkout, ActivityKind: domain.ActivityRunning, Start: start.Add(-time.Hour), DurationSeconds: 600},
		{Type: domain.SampleHeartRate, Start: start.Add(10 * time.Minute), End: start.Add(10 * time.Minute), Value: 120},
	}}
	w := s.do(t, http.MethodPost, "/api/v1/health/samples", "u1", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored IngestSamplesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, 3, stored.Stored)

	w = s.do(t, http.MethodGet, "/api/v1/health/workouts/recent?n=3", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Workouts []json.RawMessage `json:"workouts"`
		Empty    bool              `json:"empty"`
		Degraded bool              `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Workouts, 1)
	assert.False(t, res.Empty)
	assert.False(t, res.Degraded)

	// other users see nothing of u1's data
	grantAll(t, s, "u2")
	w = s.do(t, http.MethodGet, "/api/v1/health/workouts/recent", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Empty(t, res.Workouts)
	assert.True(t, res.Empty)
}

func TestIngestRejectsNegativeDuration(t *testing.T) {
	s := newTestServer(t)
	req := IngestSamplesRequest{Samples: []domain.Sample{
		{Type: domain.SampleWorkout, Start: time.Now().Add(-time.Hour), DurationSeconds: -5},
	}}
	w := s.do(t, http.MethodPost, "/api/v1/health/samples", "u1", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendAndRollupValidation(t *testing.T) {
	s := newTestServer(t)
	grantAll(t, s, "u1")

	tests := []struct {
		name string
		path string
		code int
	}{
		{"unknown metric", "/api/v1/health/trends/steps", http.StatusBadRequest},
		{"bad n", "/api/v1/health/trends/duration?n=abc", http.StatusBadRequest},
		{"negative n", "/api/v1/health/trends/duration?n=-1", http.StatusBadRequest},
		{"duration trend", "/api/v1/health/trends/duration?n=2", http.StatusOK},
		{"unknown period", "/api/v1/health/rollups/year", http.StatusBadRequest},
		{"bad k", "/api/v1/health/rollups/week?k=x", http.StatusBadRequest},
		{"weekly rollup", "/api/v1/health/rollups/week?k=3", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, "u1", nil)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestWeeklyRollupIsZeroFilled(t *testing.T) {
	s := newTestServer(t)
	grantAll(t, s, "u1")

	w := s.do(t, http.MethodGet, "/api/v1/health/rollups/week?k=4", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Buckets []struct {
			TotalMinutes float64 `json:"totalMinutes"`
		} `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Buckets, 4)
	for _, b := range res.Buckets {
		assert.Zero(t, b.TotalMinutes)
	}
}

func TestPermissionsRoundTrip(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/health/permissions", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/health/permissions", "u1", UpdatePermissionsRequest{
		Grant: []domain.SampleType{domain.SampleWorkout, domain.SampleHRV},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/health/permissions", "u1", UpdatePermissionsRequest{
		Revoke: []domain.SampleType{domain.SampleHRV},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var perms domain.HealthPermissions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &perms))
	assert.Equal(t, []domain.SampleType{domain.SampleWorkout}, perms.Granted)

	w = s.do(t, http.MethodPut, "/api/v1/health/permissions", "u1", UpdatePermissionsRequest{
		Grant: []domain.SampleType{"steps"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
