package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardsEmpty(t *testing.T) {
	s := newTestServer(t)

	for path, metric := range map[string]string{
		"/api/v1/leaderboards/best-times":      "monthly_best_seconds",
		"/api/v1/leaderboards/monthly-minutes": "monthly_minutes",
	} {
		w := s.do(t, http.MethodGet, path, "u1", nil)
		require.Equal(t, http.StatusOK, w.Code, path)

		var res LeaderboardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, metric, res.Metric)
		assert.Empty(t, res.Entries)
	}
}

func TestMonthlyMinutesLeaderboardAfterRollup(t *testing.T) {
	s := newTestServer(t)
	grantAll(t, s, "u1")

	// a monthly rollup publishes the current month's minutes
	w := s.do(t, http.MethodGet, "/api/v1/health/rollups/month", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/leaderboards/monthly-minutes", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res LeaderboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "u1-name", res.Entries[0].Username)
	assert.Equal(t, 1, res.Entries[0].Position)
	assert.Equal(t, "1ST", res.Entries[0].Label)
	assert.True(t, res.Entries[0].Podium)
}
