// Package fitimport turns FIT activity files into raw health samples.
package fitimport

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tormoder/fit"

	"alcyxob/climb-tracker/internal/domain"
)

// SourceFIT tags samples created from an imported file.
const SourceFIT = "fit"

// sportRockClimbing is the FIT profile value for rock climbing.
const sportRockClimbing = fit.Sport(31)

var (
	ErrInvalidFile = errors.New("invalid FIT file")
	ErrNoSession   = errors.New("activity file has no session message")
)

// Converter maps decoded activities to samples. NewID supplies sample ids.
type Converter struct {
	NewID func() string
}

func NewConverter() *Converter {
	return &Converter{NewID: uuid.NewString}
}

// Decode parses data as a FIT activity file.
func Decode(data []byte) (*fit.ActivityFile, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: activity expected: %v", ErrInvalidFile, err)
	}
	return activity, nil
}

// Convert returns one workout sample built from the first session followed
// by one heart-rate sample per record that carries a valid reading.
func (c *Converter) Convert(userID string, activity *fit.ActivityFile) ([]domain.Sample, error) {
	if activity == nil || len(activity.Sessions) == 0 {
		return nil, ErrNoSession
	}
	session := activity.Sessions[0]
	first, last := recordBounds(activity.Records)

	start := validTimeOrZero(session.StartTime)
	if start.IsZero() {
		start = first
	}
	if start.IsZero() {
		return nil, fmt.Errorf("%w: session has no start time", ErrInvalidFile)
	}

	duration := safePositive(session.GetTotalTimerTimeScaled())
	if duration == 0 {
		if end := validTimeOrZero(session.Timestamp); end.After(start) {
			duration = end.Sub(start).Seconds()
		}
	}
	if duration == 0 && last.After(start) {
		duration = last.Sub(start).Seconds()
	}

	workout := domain.Sample{
		ID:              c.NewID(),
		UserID:          userID,
		Type:            domain.SampleWorkout,
		Start:           start.UTC(),
		End:             start.Add(time.Duration(duration * float64(time.Second))).UTC(),
		ActivityKind:    activityKind(session.Sport),
		DurationSeconds: duration,
		Source:          SourceFIT,
	}
	if session.TotalCalories != math.MaxUint16 {
		kcal := float64(session.TotalCalories)
		workout.CaloriesBurned = &kcal
	}

	samples := []domain.Sample{workout}
	for _, rec := range activity.Records {
		if rec == nil || rec.HeartRate == math.MaxUint8 || rec.HeartRate == 0 {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		samples = append(samples, domain.Sample{
			ID:     c.NewID(),
			UserID: userID,
			Type:   domain.SampleHeartRate,
			Start:  ts.UTC(),
			End:    ts.UTC(),
			Value:  float64(rec.HeartRate),
			Source: SourceFIT,
		})
	}
	return samples, nil
}

func activityKind(sport fit.Sport) domain.ActivityKind {
	switch sport {
	case sportRockClimbing:
		return domain.ActivityClimbing
	case fit.SportRunning:
		return domain.ActivityRunning
	case fit.SportCycling:
		return domain.ActivityCycling
	case fit.SportTraining:
		return domain.ActivityStrength
	default:
		return domain.ActivityOther
	}
}

func recordBounds(records []*fit.RecordMsg) (first, last time.Time) {
	for _, r := range records {
		if r == nil {
			continue
		}
		ts := validTimeOrZero(r.Timestamp)
		if ts.IsZero() {
			continue
		}
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	return first, last
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func safePositive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
