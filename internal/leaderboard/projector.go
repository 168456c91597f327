// Package leaderboard ranks per-user scores for the current scoring period.
package leaderboard

import (
	"fmt"
	"sort"

	"alcyxob/climb-tracker/internal/domain"
)

// Row is one unranked (username, metric) pair as fetched from the store.
type Row struct {
	Username    string
	MetricValue float64
}

// Project sorts rows by MetricValue descending and assigns positions 1..N.
// Equal values keep their fetch order; positions are never shared.
func Project(rows []Row) []domain.LeaderboardEntry {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MetricValue > sorted[j].MetricValue
	})

	entries := make([]domain.LeaderboardEntry, len(sorted))
	for i, r := range sorted {
		position := i + 1
		entries[i] = domain.LeaderboardEntry{
			Username:    r.Username,
			MetricValue: r.MetricValue,
			Position:    position,
			Label:       OrdinalLabel(position),
			Podium:      IsPodium(position),
		}
	}
	return entries
}

// Rows converts entries back to rows, keeping their order.
func Rows(entries []domain.LeaderboardEntry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{Username: e.Username, MetricValue: e.MetricValue}
	}
	return rows
}

// OrdinalLabel renders a position as shown on the board: 1ST, 2ND, 3RD and
// <n>TH for everything else, including 11, 12 and 13.
func OrdinalLabel(position int) string {
	switch position {
	case 1:
		return "1ST"
	case 2:
		return "2ND"
	case 3:
		return "3RD"
	}
	return fmt.Sprintf("%dTH", position)
}

// IsPodium reports whether position gets the top-3 treatment.
func IsPodium(position int) bool {
	return position >= 1 && position <= 3
}
