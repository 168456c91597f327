package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/climb-tracker/internal/timer"
)

func TestHangTimerEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/timers/hang/stop", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/timers/hang/start", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state TimerStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, timer.StateCountingDown, state.State)
	assert.Equal(t, timer.DefaultCountdownSeconds, state.Remaining)

	w = s.do(t, http.MethodPost, "/api/v1/timers/hang/start", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/timers/hang", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, timer.StateCountingDown, state.State)

	// stopping during the countdown cancels without a result
	w = s.do(t, http.MethodPost, "/api/v1/timers/hang/stop", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stopped HangStopResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stopped))
	assert.False(t, stopped.Completed)
	assert.Equal(t, timer.StateIdle, stopped.State.State)

	// timers are per user
	w = s.do(t, http.MethodGet, "/api/v1/timers/hang", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, timer.StateIdle, state.State)
}

func TestRestTimerEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/timers/rest/start", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state TimerStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, timer.StateRunning, state.State)
	assert.Equal(t, timer.DefaultRestSeconds, state.Remaining)

	w = s.do(t, http.MethodPost, "/api/v1/timers/rest/stop", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, timer.StateIdle, state.State)

	w = s.do(t, http.MethodPost, "/api/v1/timers/rest/start", "u1", StartRestRequest{Seconds: 90})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 90, state.Remaining)

	w = s.do(t, http.MethodGet, "/api/v1/timers/rest", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, timer.StateRunning, state.State)

	w = s.do(t, http.MethodPost, "/api/v1/timers/rest/start", "u1", map[string]int{"seconds": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
