package timer

import (
	"errors"
	"sync"
	"time"
)

const (
	DefaultRestSeconds = 180
	DefaultRestTick    = time.Second
)

var ErrInvalidDuration = errors.New("rest duration must be positive")

// RestTimer counts a rest period down to zero, one tick per interval.
type RestTimer struct {
	mu sync.Mutex

	sched    Scheduler
	interval time.Duration
	defaults int

	state     State
	remaining int
	gen       uint64
	stopTicks func()
	listeners listeners
}

func NewRestTimer(defaultSeconds int, interval time.Duration, sched Scheduler) *RestTimer {
	if defaultSeconds <= 0 {
		defaultSeconds = DefaultRestSeconds
	}
	if interval <= 0 {
		interval = DefaultRestTick
	}
	if sched == nil {
		sched = TickerScheduler{}
	}
	return &RestTimer{
		sched:    sched,
		interval: interval,
		defaults: defaultSeconds,
		state:    StateIdle,
	}
}

func (r *RestTimer) Subscribe(fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners.add(fn)
}

func (r *RestTimer) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{State: r.state, Remaining: r.remaining}
}

// Start counts down from seconds, or from the default when seconds is 0.
func (r *RestTimer) Start(seconds int) error {
	if seconds < 0 {
		return ErrInvalidDuration
	}
	if seconds == 0 {
		seconds = r.defaults
	}

	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.gen++
	gen := r.gen
	r.state = StateRunning
	r.remaining = seconds
	r.stopTicks = r.sched.Every(r.interval, func() { r.tick(gen) })
	fns := r.listeners.snapshot()
	remaining := r.remaining
	r.mu.Unlock()

	publish(fns, []Event{{Type: EventStateChanged, State: StateRunning, Remaining: remaining}})
	return nil
}

// Stop cancels a running countdown.
func (r *RestTimer) Stop() error {
	r.mu.Lock()
	if r.state == StateIdle {
		r.mu.Unlock()
		return ErrNotStarted
	}
	r.cancelLocked()
	r.state = StateIdle
	r.remaining = 0
	fns := r.listeners.snapshot()
	r.mu.Unlock()

	publish(fns, []Event{{Type: EventStateChanged, State: StateIdle}})
	return nil
}

func (r *RestTimer) tick(gen uint64) {
	r.mu.Lock()
	if gen != r.gen || r.state != StateRunning {
		r.mu.Unlock()
		return
	}
	r.remaining--
	events := []Event{{Type: EventCountdown, State: StateRunning, Remaining: r.remaining}}
	if r.remaining <= 0 {
		r.cancelLocked()
		r.state = StateIdle
		r.remaining = 0
		events = append(events,
			Event{Type: EventFinished, State: StateIdle},
			Event{Type: EventStateChanged, State: StateIdle},
		)
	}
	fns := r.listeners.snapshot()
	r.mu.Unlock()

	publish(fns, events)
}

func (r *RestTimer) cancelLocked() {
	r.gen++
	if r.stopTicks != nil {
		r.stopTicks()
		r.stopTicks = nil
	}
}
