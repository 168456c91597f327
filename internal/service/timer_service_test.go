package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/metrics"
	"alcyxob/climb-tracker/internal/repository"
	"alcyxob/climb-tracker/internal/repository/document"
	"alcyxob/climb-tracker/internal/repository/memory"
	"alcyxob/climb-tracker/internal/timer"
)

var testSettings = TimerSettings{
	CountdownSeconds: 3,
	HangTick:         10 * time.Millisecond,
	RestTick:         time.Second,
	RestSeconds:      90,
}

func newTimerService() (TimerService, *fakeScheduler, repository.BestTimeRepository, *metrics.Manager) {
	sched := &fakeScheduler{}
	repo := document.NewBestTimeRepository(memory.NewDocumentStore())
	m := metrics.NewTestManager()
	svc := NewTimerService(repo, m, testSettings, sched, fixedClock{now: testNow})
	return svc, sched, repo, m
}

func TestTimerService_HangSessionRecordsBest(t *testing.T) {
	svc, sched, repo, m := newTimerService()
	ctx := context.Background()
	alice := domain.Principal{UserID: "u1", Username: "alice"}

	snap, err := svc.StartHang(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, timer.StateCountingDown, snap.State)
	assert.Equal(t, 3, snap.Remaining)

	sched.fire(time.Second, 3)
	sched.fire(testSettings.HangTick, 200)

	state, err := svc.HangState(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, timer.StateRunning, state.State)
	assert.Equal(t, 2*time.Second, state.Elapsed)

	stopped, err := svc.StopHang(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, stopped.Result)
	assert.Equal(t, 2*time.Second, stopped.Result.LastTime)
	assert.True(t, stopped.Result.NewPersonalBest)
	assert.Equal(t, timer.StateIdle, stopped.State.State)

	rec, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Username)
	assert.InDelta(t, 2, rec.PersonalBestSeconds, 1e-9)
	assert.Equal(t, domain.MonthIndex(testNow), rec.MonthlyBestMonth)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterBestTimeUpdates.WithLabelValues("personal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterBestTimeUpdates.WithLabelValues("monthly")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterTimerSessions.WithLabelValues("hang", "completed")))
}

func TestTimerService_LoadsStoredRecord(t *testing.T) {
	svc, sched, repo, m := newTimerService()
	ctx := context.Background()
	require.NoError(t, repo.SaveBestTime(ctx, domain.BestTimeRecord{
		UserID:              "u1",
		Username:            "alice",
		PersonalBestSeconds: 60,
		MonthlyBestSeconds:  45,
		MonthlyBestMonth:    domain.MonthIndex(testNow),
	}))

	alice := domain.Principal{UserID: "u1", Username: "alice"}
	_, err := svc.StartHang(ctx, alice)
	require.NoError(t, err)
	sched.fire(time.Second, 3)
	sched.fire(testSettings.HangTick, 100)

	stopped, err := svc.StopHang(ctx, alice)
	require.NoError(t, err)
	assert.False(t, stopped.Result.NewPersonalBest)
	assert.False(t, stopped.Result.NewMonthlyBest)
	assert.InDelta(t, 60, stopped.State.Record.PersonalBestSeconds, 1e-9)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CounterBestTimeUpdates.WithLabelValues("personal")))
}

func TestTimerService_CancelDuringCountdown(t *testing.T) {
	svc, sched, repo, m := newTimerService()
	ctx := context.Background()
	bob := domain.Principal{UserID: "u2", Username: "bob"}

	_, err := svc.StartHang(ctx, bob)
	require.NoError(t, err)
	sched.fire(time.Second, 2)

	stopped, err := svc.StopHang(ctx, bob)
	require.NoError(t, err)
	assert.Nil(t, stopped.Result)
	assert.Equal(t, timer.StateIdle, stopped.State.State)
	assert.Zero(t, stopped.State.Elapsed)

	_, err = repo.Get(ctx, "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterTimerSessions.WithLabelValues("hang", "cancelled")))
}

func TestTimerService_Conflicts(t *testing.T) {
	svc, _, _, _ := newTimerService()
	ctx := context.Background()
	p := domain.Principal{UserID: "u1"}

	_, err := svc.StopHang(ctx, p)
	assert.ErrorIs(t, err, timer.ErrNotStarted)

	_, err = svc.StartHang(ctx, p)
	require.NoError(t, err)
	_, err = svc.StartHang(ctx, p)
	assert.ErrorIs(t, err, timer.ErrAlreadyStarted)

	svc.Close()
}

func TestTimerService_RestTimer(t *testing.T) {
	svc, sched, _, m := newTimerService()
	ctx := context.Background()
	p := domain.Principal{UserID: "u1"}

	snap, err := svc.StartRest(ctx, p, 0)
	require.NoError(t, err)
	assert.Equal(t, 90, snap.Remaining)
	require.NoError(t, func() error { _, err := svc.StopRest(ctx, p); return err }())

	_, err = svc.StartRest(ctx, p, 2)
	require.NoError(t, err)
	sched.fire(time.Second, 2)

	state, err := svc.RestState(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, timer.StateIdle, state.State)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterTimerSessions.WithLabelValues("rest", "finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterTimerSessions.WithLabelValues("rest", "cancelled")))

	_, err = svc.StopRest(ctx, p)
	assert.ErrorIs(t, err, timer.ErrNotStarted)
}

func TestTimerService_CloseStopsEverything(t *testing.T) {
	svc, sched, _, _ := newTimerService()
	ctx := context.Background()

	_, err := svc.StartHang(ctx, domain.Principal{UserID: "u1"})
	require.NoError(t, err)
	_, err = svc.StartRest(ctx, domain.Principal{UserID: "u2"}, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, sched.active())

	svc.Close()
	assert.Zero(t, sched.active())

	state, err := svc.HangState(ctx, domain.Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, timer.StateIdle, state.State)
}

// stallingBestRepo blocks Get for one user until release is closed.
type stallingBestRepo struct {
	repository.BestTimeRepository
	slowUser string
	entered  chan struct{}
	release  chan struct{}
}

func (r *stallingBestRepo) Get(ctx context.Context, userID string) (*domain.BestTimeRecord, error) {
	if userID == r.slowUser {
		close(r.entered)
		<-r.release
	}
	return r.BestTimeRepository.Get(ctx, userID)
}

func TestTimerService_SlowLoadDoesNotBlockOtherUsers(t *testing.T) {
	repo := &stallingBestRepo{
		BestTimeRepository: document.NewBestTimeRepository(memory.NewDocumentStore()),
		slowUser:           "slow",
		entered:            make(chan struct{}),
		release:            make(chan struct{}),
	}
	svc := NewTimerService(repo, metrics.NewTestManager(), testSettings, &fakeScheduler{}, fixedClock{now: testNow})
	defer svc.Close()
	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.HangState(ctx, domain.Principal{UserID: "slow"})
		slowDone <- err
	}()
	<-repo.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := svc.HangState(ctx, domain.Principal{UserID: "fast"})
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("fast user waited on another user's load")
	}

	close(repo.release)
	require.NoError(t, <-slowDone)

	a, err := svc.HangState(ctx, domain.Principal{UserID: "slow"})
	require.NoError(t, err)
	assert.Equal(t, timer.StateIdle, a.State)
}
