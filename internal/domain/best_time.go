package domain

import "time"

// BestTimeRecord is the per-user persisted hang-timer state.
// MonthlyBestMonth is a month index (year*12 + month-1) so that the same
// calendar month in a different year counts as a rollover.
type BestTimeRecord struct {
	UserID              string    `bson:"userId" json:"userId"`
	Username            string    `bson:"username" json:"username"`
	PersonalBestSeconds float64   `bson:"personalBestSeconds" json:"personalBestSeconds"`
	MonthlyBestSeconds  float64   `bson:"monthlyBestSeconds" json:"monthlyBestSeconds"`
	MonthlyBestMonth    int       `bson:"monthlyBestMonth" json:"monthlyBestMonth"`
	LastTimeSeconds     float64   `bson:"lastTimeSeconds" json:"lastTimeSeconds"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// MonthIndex returns the month index used by BestTimeRecord.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// MonthlyMinutes is the per-user minutes climbed in one calendar month.
type MonthlyMinutes struct {
	UserID    string    `bson:"userId" json:"userId"`
	Username  string    `bson:"username" json:"username"`
	Month     int       `bson:"month" json:"month"`
	Minutes   float64   `bson:"minutes" json:"minutes"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LeaderboardEntry is rebuilt for each query.
type LeaderboardEntry struct {
	Username    string  `json:"username"`
	MetricValue float64 `json:"metricValue"`
	Position    int     `json:"position"`
	Label       string  `json:"label"`
	Podium      bool    `json:"podium"`
}
