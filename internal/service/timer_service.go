package service

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/metrics"
	"alcyxob/climb-tracker/internal/repository"
	"alcyxob/climb-tracker/internal/timer"
)

type TimerSettings struct {
	CountdownSeconds int
	HangTick         time.Duration
	RestTick         time.Duration
	RestSeconds      int
	Calendar         *calendar.Calendar
}

// HangStopResult is the stopped session together with the tracker state
// after the stop. Result is nil when the countdown was cancelled.
type HangStopResult struct {
	Result *timer.Result  `json:"result,omitempty"`
	State  timer.Snapshot `json:"state"`
}

// TimerService keeps one hang tracker and one rest timer per user.
type TimerService interface {
	StartHang(ctx context.Context, p domain.Principal) (timer.Snapshot, error)
	StopHang(ctx context.Context, p domain.Principal) (*HangStopResult, error)
	HangState(ctx context.Context, p domain.Principal) (timer.Snapshot, error)
	StartRest(ctx context.Context, p domain.Principal, seconds int) (timer.Snapshot, error)
	StopRest(ctx context.Context, p domain.Principal) (timer.Snapshot, error)
	RestState(ctx context.Context, p domain.Principal) (timer.Snapshot, error)
	// Close cancels every running timer without recording results.
	Close()
}

type timerService struct {
	bestRepo repository.BestTimeRepository
	metrics  *metrics.Manager
	settings TimerSettings
	sched    timer.Scheduler
	clock    timer.Clock

	mu       sync.Mutex
	trackers map[string]*timer.Tracker
	rests    map[string]*timer.RestTimer
}

// NewTimerService creates a new instance of timerService. A nil scheduler
// or clock uses the wall clock.
func NewTimerService(
	bestRepo repository.BestTimeRepository,
	metricsManager *metrics.Manager,
	settings TimerSettings,
	sched timer.Scheduler,
	clock timer.Clock,
) TimerService {
	if sched == nil {
		sched = timer.TickerScheduler{}
	}
	if clock == nil {
		clock = timer.SystemClock
	}
	return &timerService{
		bestRepo: bestRepo,
		metrics:  metricsManager,
		settings: settings,
		sched:    sched,
		clock:    clock,
		trackers: make(map[string]*timer.Tracker),
		rests:    make(map[string]*timer.RestTimer),
	}
}

func (s *timerService) tracker(ctx context.Context, p domain.Principal) (*timer.Tracker, error) {
	s.mu.Lock()
	tr, ok := s.trackers[p.UserID]
	s.mu.Unlock()
	if ok {
		return tr, nil
	}

	// Loaded without s.mu so a slow store only stalls this user.
	rec, err := s.bestRepo.Get(ctx, p.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		rec = &domain.BestTimeRecord{UserID: p.UserID}
	case err != nil:
		return nil, err
	}
	rec.UserID = p.UserID
	rec.Username = p.DisplayName()

	s.mu.Lock()
	defer s.mu.Unlock()
	if tr, ok := s.trackers[p.UserID]; ok {
		return tr, nil
	}
	tr = timer.NewTracker(timer.Config{
		CountdownSeconds: s.settings.CountdownSeconds,
		TickInterval:     s.settings.HangTick,
		Calendar:         s.settings.Calendar,
	}, *rec, s.bestRepo, s.sched, s.clock)
	tr.Subscribe(s.onHangEvent(p.UserID))

	s.trackers[p.UserID] = tr
	return tr, nil
}

func (s *timerService) onHangEvent(userID string) timer.Listener {
	return func(e timer.Event) {
		if e.Type != timer.EventBestUpdated || e.Result == nil {
			return
		}
		fields := log.Fields{
			"user":      userID,
			"last_time": e.Result.LastTime.Seconds(),
		}
		if e.Result.NewPersonalBest {
			s.countBest("personal")
			fields["personal_best"] = e.Result.Record.PersonalBestSeconds
		}
		if e.Result.NewMonthlyBest {
			s.countBest("monthly")
			fields["monthly_best"] = e.Result.Record.MonthlyBestSeconds
		}
		log.WithFields(fields).Info("hang best time updated")
	}
}

func (s *timerService) countBest(kind string) {
	if s.metrics != nil {
		s.metrics.CounterBestTimeUpdates.WithLabelValues(kind).Inc()
	}
}

func (s *timerService) countSession(timerName, outcome string) {
	if s.metrics != nil {
		s.metrics.CounterTimerSessions.WithLabelValues(timerName, outcome).Inc()
	}
}

func (s *timerService) StartHang(ctx context.Context, p domain.Principal) (timer.Snapshot, error) {
	tr, err := s.tracker(ctx, p)
	if err != nil {
		return timer.Snapshot{}, err
	}
	if err := tr.Start(); err != nil {
		return tr.Snapshot(), err
	}
	return tr.Snapshot(), nil
}

// StopHang stops the user's hang session. A failed best-time write is
// logged; the result is still returned since the in-memory record holds it.
func (s *timerService) StopHang(ctx context.Context, p domain.Principal) (*HangStopResult, error) {
	tr, err := s.tracker(ctx, p)
	if err != nil {
		return nil, err
	}
	res, err := tr.Stop(ctx)
	if errors.Is(err, timer.ErrNotStarted) {
		return nil, err
	}
	if err != nil {
		log.WithField("user", p.UserID).WithError(err).Error("failed to persist best time")
	}

	if res == nil {
		s.countSession("hang", "cancelled")
	} else {
		s.countSession("hang", "completed")
	}
	return &HangStopResult{Result: res, State: tr.Snapshot()}, nil
}

func (s *timerService) HangState(ctx context.Context, p domain.Principal) (timer.Snapshot, error) {
	tr, err := s.tracker(ctx, p)
	if err != nil {
		return timer.Snapshot{}, err
	}
	return tr.Snapshot(), nil
}

func (s *timerService) rest(userID string) *timer.RestTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.rests[userID]
	if !ok {
		rt = timer.NewRestTimer(s.settings.RestSeconds, s.settings.RestTick, s.sched)
		rt.Subscribe(func(e timer.Event) {
			if e.Type == timer.EventFinished {
				s.countSession("rest", "finished")
				log.WithField("user", userID).Debug("rest timer finished")
			}
		})
		s.rests[userID] = rt
	}
	return rt
}

func (s *timerService) StartRest(_ context.Context, p domain.Principal, seconds int) (timer.Snapshot, error) {
	rt := s.rest(p.UserID)
	if err := rt.Start(seconds); err != nil {
		return rt.Snapshot(), err
	}
	return rt.Snapshot(), nil
}

func (s *timerService) StopRest(_ context.Context, p domain.Principal) (timer.Snapshot, error) {
	rt := s.rest(p.UserID)
	if err := rt.Stop(); err != nil {
		return rt.Snapshot(), err
	}
	s.countSession("rest", "cancelled")
	return rt.Snapshot(), nil
}

func (s *timerService) RestState(_ context.Context, p domain.Principal) (timer.Snapshot, error) {
	return s.rest(p.UserID).Snapshot(), nil
}

func (s *timerService) Close() {
	s.mu.Lock()
	trackers := make([]*timer.Tracker, 0, len(s.trackers))
	for _, tr := range s.trackers {
		trackers = append(trackers, tr)
	}
	rests := make([]*timer.RestTimer, 0, len(s.rests))
	for _, rt := range s.rests {
		rests = append(rests, rt)
	}
	s.mu.Unlock()

	for _, tr := range trackers {
		tr.Cancel()
	}
	for _, rt := range rests {
		_ = rt.Stop()
	}
}
