package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestTimer_CountsDownToFinished(t *testing.T) {
	sched := &fakeScheduler{}
	rt := NewRestTimer(0, DefaultRestTick, sched)

	var finished int
	var remaining []int
	rt.Subscribe(func(e Event) {
		switch e.Type {
		case EventFinished:
			finished++
		case EventCountdown:
			remaining = append(remaining, e.Remaining)
		}
	})

	require.NoError(t, rt.Start(3))
	assert.Equal(t, StateRunning, rt.Snapshot().State)

	sched.fire(DefaultRestTick, 5)

	assert.Equal(t, []int{2, 1, 0}, remaining)
	assert.Equal(t, 1, finished)
	assert.Equal(t, StateIdle, rt.Snapshot().State)
}

func TestRestTimer_DefaultDuration(t *testing.T) {
	rt := NewRestTimer(0, 0, &fakeScheduler{})

	require.NoError(t, rt.Start(0))
	assert.Equal(t, DefaultRestSeconds, rt.Snapshot().Remaining)
	assert.ErrorIs(t, rt.Start(10), ErrAlreadyStarted)
	require.NoError(t, rt.Stop())
}

func TestRestTimer_StopCancelsTicks(t *testing.T) {
	sched := &fakeScheduler{}
	rt := NewRestTimer(60, DefaultRestTick, sched)

	require.NoError(t, rt.Start(0))
	sched.fire(DefaultRestTick, 10)
	pending := sched.last(DefaultRestTick)

	require.NoError(t, rt.Stop())
	pending.fn()

	snap := rt.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Zero(t, snap.Remaining)
	assert.ErrorIs(t, rt.Stop(), ErrNotStarted)
}

func TestRestTimer_RejectsNegative(t *testing.T) {
	rt := NewRestTimer(60, DefaultRestTick, &fakeScheduler{})
	assert.ErrorIs(t, rt.Start(-1), ErrInvalidDuration)
}
