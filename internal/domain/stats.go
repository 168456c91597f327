package domain

import "time"

// HeartRateAggregate is derived per workout and never stored.
type HeartRateAggregate struct {
	WorkoutID string  `json:"workoutId"`
	Average   float64 `json:"average"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// RecoveryEstimate approximates recovery time as duration * maxHR / avgHR.
type RecoveryEstimate struct {
	WorkoutID       string  `json:"workoutId"`
	RecoverySeconds float64 `json:"recoverySeconds"`
}

// DatedValue is one derived value plotted against the workout date.
type DatedValue struct {
	WorkoutID string    `json:"workoutId"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
}

// Period is a calendar bucket width.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Bucket is one week or month of aggregated activity.
type Bucket struct {
	Period       Period    `json:"period"`
	PeriodStart  time.Time `json:"periodStart"`
	TotalMinutes float64   `json:"totalMinutes"`
	Workouts     int       `json:"workouts"`
}
