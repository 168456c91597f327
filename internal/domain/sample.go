// internal/domain/sample.go
package domain

import (
	"time"
)

// SampleType tags the kind of raw data point stored by the health source.
type SampleType string

const (
	SampleWorkout      SampleType = "workout"
	SampleHeartRate    SampleType = "heart_rate"
	SampleHRV          SampleType = "hrv"
	SampleActiveEnergy SampleType = "active_energy"
)

// Valid reports whether t is one of the known sample types.
func (t SampleType) Valid() bool {
	switch t {
	case SampleWorkout, SampleHeartRate, SampleHRV, SampleActiveEnergy:
		return true
	}
	return false
}

// ActivityKind is the activity tag carried by workout samples.
type ActivityKind string

const (
	ActivityClimbing ActivityKind = "climbing"
	ActivityRunning  ActivityKind = "running"
	ActivityCycling  ActivityKind = "cycling"
	ActivityStrength ActivityKind = "strength"
	ActivityOther    ActivityKind = "other"
)

// Sample is a single raw data point as exported by the device.
// Workout samples carry ActivityKind, DurationSeconds and optionally
// CaloriesBurned; heart rate, HRV and energy samples carry Value.
// ID is assigned by the server; DeviceID is the id the device sent.
type Sample struct {
	ID              string       `bson:"_id" json:"id"`
	DeviceID        string       `bson:"deviceId,omitempty" json:"deviceId,omitempty"`
	UserID          string       `bson:"userId" json:"userId"`
	Type            SampleType   `bson:"type" json:"type"`
	Start           time.Time    `bson:"start" json:"start"`
	End             time.Time    `bson:"end" json:"end"`
	Value           float64      `bson:"value,omitempty" json:"value,omitempty"`
	ActivityKind    ActivityKind `bson:"activityKind,omitempty" json:"activityKind,omitempty"`
	DurationSeconds float64      `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	CaloriesBurned  *float64     `bson:"caloriesBurned,omitempty" json:"caloriesBurned,omitempty"`
	Source          string       `bson:"source,omitempty" json:"source,omitempty"` // "device", "fit"
}

// HeartRatePoint is one (timestamp, bpm) reading.
type HeartRatePoint struct {
	Time time.Time `json:"time"`
	BPM  float64   `json:"bpm"`
}

// WorkoutSample is one completed activity session.
// StartTime comes from the external store and is never rewritten here.
type WorkoutSample struct {
	ID              string       `json:"id"`
	ActivityKind    ActivityKind `json:"activityKind"`
	StartTime       time.Time    `json:"startTime"`
	DurationSeconds float64      `json:"durationSeconds"`
	CaloriesBurned  *float64     `json:"caloriesBurned,omitempty"`

	// Consumed transiently to compute aggregates, never persisted.
	HeartRateSeries []HeartRatePoint `json:"-"`
}

// End returns the end of the session window.
func (w WorkoutSample) End() time.Time {
	return w.StartTime.Add(time.Duration(w.DurationSeconds * float64(time.Second)))
}

// Minutes returns the session duration in minutes.
func (w WorkoutSample) Minutes() float64 {
	return w.DurationSeconds / 60
}

// WorkoutFromSample converts a workout-typed raw sample.
func WorkoutFromSample(s Sample) WorkoutSample {
	return WorkoutSample{
		ID:              s.ID,
		ActivityKind:    s.ActivityKind,
		StartTime:       s.Start,
		DurationSeconds: s.DurationSeconds,
		CaloriesBurned:  s.CaloriesBurned,
	}
}
