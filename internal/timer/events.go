package timer

import (
	"time"

	"alcyxob/climb-tracker/internal/domain"
)

type State string

const (
	StateIdle         State = "idle"
	StateCountingDown State = "counting_down"
	StateRunning      State = "running"
)

type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventCountdown    EventType = "countdown"
	EventTick         EventType = "tick"
	EventBestUpdated  EventType = "best_updated"
	EventFinished     EventType = "finished"
)

// Event is published to subscribers after the state mutex is released.
type Event struct {
	Type      EventType
	State     State
	Remaining int
	Elapsed   time.Duration
	Result    *Result
}

type Listener func(Event)

// Result describes a completed timed session.
type Result struct {
	LastTime        time.Duration         `json:"lastTime"`
	NewPersonalBest bool                  `json:"newPersonalBest"`
	NewMonthlyBest  bool                  `json:"newMonthlyBest"`
	Record          domain.BestTimeRecord `json:"record"`
}

// Snapshot is a consistent copy of a timer's observable state.
type Snapshot struct {
	State     State                 `json:"state"`
	Remaining int                   `json:"remaining"`
	Elapsed   time.Duration         `json:"elapsed"`
	LastTime  time.Duration         `json:"lastTime"`
	Record    domain.BestTimeRecord `json:"record"`
}

type listeners struct {
	fns []Listener
}

func (l *listeners) add(fn Listener) {
	l.fns = append(l.fns, fn)
}

func (l *listeners) snapshot() []Listener {
	return append([]Listener(nil), l.fns...)
}

func publish(fns []Listener, events []Event) {
	for _, e := range events {
		for _, fn := range fns {
			fn(e)
		}
	}
}
