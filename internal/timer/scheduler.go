package timer

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned stop func is called.
// stop only signals: a call to fn that already started may still complete,
// so callers must ignore ticks that arrive after a state change.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Clock supplies the current time for month rollover checks.
type Clock interface {
	Now() time.Time
}

// TickerScheduler runs each job on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// prefer exiting when both are ready
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}
