// Package timer implements the hang-timer best-time tracker and the rest
// countdown timer.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"
)

const (
	DefaultCountdownSeconds = 3
	DefaultHangTick         = 10 * time.Millisecond
	countdownTick           = time.Second
)

var (
	ErrAlreadyStarted = errors.New("timer already started")
	ErrNotStarted     = errors.New("timer not started")
)

// BestTimeSaver persists an updated best-time record.
type BestTimeSaver interface {
	SaveBestTime(ctx context.Context, rec domain.BestTimeRecord) error
}

// Config tunes a Tracker. Calendar decides which month a finished hang
// counts for; nil means UTC.
type Config struct {
	CountdownSeconds int
	TickInterval     time.Duration
	Calendar         *calendar.Calendar
}

// Tracker is the Idle → CountingDown → Running → Idle state machine.
// Every tick callback carries the generation it was scheduled in and is
// dropped once a start or stop has moved the generation on.
type Tracker struct {
	mu sync.Mutex

	cfg   Config
	clock Clock
	sched Scheduler
	saver BestTimeSaver

	state     State
	remaining int
	elapsed   time.Duration
	lastTime  time.Duration
	record    domain.BestTimeRecord

	gen       uint64
	stopTicks func()
	listeners listeners
}

func NewTracker(
	cfg Config,
	record domain.BestTimeRecord,
	saver BestTimeSaver,
	sched Scheduler,
	clock Clock,
) *Tracker {
	if cfg.CountdownSeconds < 0 {
		cfg.CountdownSeconds = DefaultCountdownSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultHangTick
	}
	if cfg.Calendar == nil {
		cfg.Calendar = calendar.Default()
	}
	if sched == nil {
		sched = TickerScheduler{}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Tracker{
		cfg:    cfg,
		clock:  clock,
		sched:  sched,
		saver:  saver,
		state:  StateIdle,
		record: record,
	}
}

// Subscribe registers fn for all future events.
func (t *Tracker) Subscribe(fn Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners.add(fn)
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:     t.state,
		Remaining: t.remaining,
		Elapsed:   t.elapsed,
		LastTime:  t.lastTime,
		Record:    t.record,
	}
}

// Start begins the countdown. With a zero countdown the tracker goes
// straight to Running.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}

	var events []Event
	if t.cfg.CountdownSeconds == 0 {
		events = t.beginRunningLocked()
	} else {
		t.gen++
		gen := t.gen
		t.state = StateCountingDown
		t.remaining = t.cfg.CountdownSeconds
		t.stopTicks = t.sched.Every(countdownTick, func() { t.countdownTick(gen) })
		events = []Event{{Type: EventStateChanged, State: StateCountingDown, Remaining: t.remaining}}
	}
	fns := t.listeners.snapshot()
	t.mu.Unlock()

	publish(fns, events)
	return nil
}

// Stop ends the current session. Stopping during the countdown cancels it
// without touching elapsed time or bests and returns a nil Result.
// Stopping a running session freezes the elapsed time, updates the bests and
// saves the record when a best changed.
func (t *Tracker) Stop(ctx context.Context) (*Result, error) {
	t.mu.Lock()
	switch t.state {
	case StateIdle:
		t.mu.Unlock()
		return nil, ErrNotStarted
	case StateCountingDown:
		t.cancelTicksLocked()
		t.state = StateIdle
		t.remaining = 0
		fns := t.listeners.snapshot()
		t.mu.Unlock()
		publish(fns, []Event{{Type: EventStateChanged, State: StateIdle}})
		return nil, nil
	}

	t.cancelTicksLocked()
	res := t.finishLocked()
	t.state = StateIdle
	t.elapsed = 0
	saver := t.saver
	fns := t.listeners.snapshot()
	t.mu.Unlock()

	events := []Event{{Type: EventStateChanged, State: StateIdle, Result: res}}
	var err error
	if res.NewPersonalBest || res.NewMonthlyBest {
		events = append(events, Event{Type: EventBestUpdated, State: StateIdle, Result: res})
		if saver != nil {
			if saveErr := saver.SaveBestTime(ctx, res.Record); saveErr != nil {
				err = fmt.Errorf("save best time: %w", saveErr)
			}
		}
	}
	publish(fns, events)
	return res, err
}

// Cancel returns to Idle from any state without recording the session.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	if t.state == StateIdle {
		t.mu.Unlock()
		return
	}
	t.cancelTicksLocked()
	t.state = StateIdle
	t.remaining = 0
	t.elapsed = 0
	fns := t.listeners.snapshot()
	t.mu.Unlock()

	publish(fns, []Event{{Type: EventStateChanged, State: StateIdle}})
}

func (t *Tracker) countdownTick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != StateCountingDown {
		t.mu.Unlock()
		return
	}
	t.remaining--
	events := []Event{{Type: EventCountdown, State: StateCountingDown, Remaining: t.remaining}}
	if t.remaining <= 0 {
		t.cancelTicksLocked()
		events = append(events, t.beginRunningLocked()...)
	}
	fns := t.listeners.snapshot()
	t.mu.Unlock()

	publish(fns, events)
}

func (t *Tracker) runningTick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	t.elapsed += t.cfg.TickInterval
	event := Event{Type: EventTick, State: StateRunning, Elapsed: t.elapsed}
	fns := t.listeners.snapshot()
	t.mu.Unlock()

	publish(fns, []Event{event})
}

func (t *Tracker) beginRunningLocked() []Event {
	t.gen++
	gen := t.gen
	t.state = StateRunning
	t.remaining = 0
	t.elapsed = 0
	t.stopTicks = t.sched.Every(t.cfg.TickInterval, func() { t.runningTick(gen) })
	return []Event{{Type: EventStateChanged, State: StateRunning}}
}

func (t *Tracker) cancelTicksLocked() {
	t.gen++
	if t.stopTicks != nil {
		t.stopTicks()
		t.stopTicks = nil
	}
}

func (t *Tracker) finishLocked() *Result {
	t.lastTime = t.elapsed
	seconds := t.elapsed.Seconds()
	res := &Result{LastTime: t.elapsed}

	if seconds > t.record.PersonalBestSeconds {
		t.record.PersonalBestSeconds = seconds
		res.NewPersonalBest = true
	}

	month := t.cfg.Calendar.MonthIndex(t.clock.Now())
	if t.record.MonthlyBestMonth != month {
		t.record.MonthlyBestMonth = month
		t.record.MonthlyBestSeconds = seconds
		res.NewMonthlyBest = true
	} else if seconds > t.record.MonthlyBestSeconds {
		t.record.MonthlyBestSeconds = seconds
		res.NewMonthlyBest = true
	}

	t.record.LastTimeSeconds = seconds
	if res.NewPersonalBest || res.NewMonthlyBest {
		t.record.UpdatedAt = t.clock.Now().UTC()
	}
	res.Record = t.record
	return res
}
