package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/healthstore"
	"alcyxob/climb-tracker/internal/repository"
	"alcyxob/climb-tracker/internal/rollup"
	"alcyxob/climb-tracker/internal/stats"
	"alcyxob/climb-tracker/internal/workouts"
)

// historyStart bounds "all history" queries.
var historyStart = time.Unix(0, 0).UTC()

type RecentWorkouts struct {
	Workouts []stats.WorkoutStats `json:"workouts"`
	Empty    bool                 `json:"empty"`
	Degraded bool                 `json:"degraded"`
}

type TrendResult struct {
	stats.Trend
	Degraded bool `json:"degraded"`
}

type RollupResult struct {
	Period   domain.Period   `json:"period"`
	Buckets  []domain.Bucket `json:"buckets"`
	Degraded bool            `json:"degraded"`
}

// DashboardService composes the health pipeline for one user.
// Source failures (unavailable, timeout) degrade to empty results;
// domain.ErrUnauthorized is returned to the caller.
type DashboardService interface {
	RecentWorkouts(ctx context.Context, userID string, n int) (*RecentWorkouts, error)
	Trend(ctx context.Context, userID string, metric stats.Metric, n int) (*TrendResult, error)
	Rollup(ctx context.Context, p domain.Principal, period domain.Period, k int) (*RollupResult, error)
}

type dashboardService struct {
	store       *healthstore.Store
	aggregator  *stats.Aggregator
	rollups     *rollup.Builder
	minutesRepo repository.MonthlyMinutesRepository
	defaultN    int
	defaultK    int
	now         func() time.Time
}

// NewDashboardService creates a new instance of dashboardService.
func NewDashboardService(
	store *healthstore.Store,
	aggregator *stats.Aggregator,
	rollups *rollup.Builder,
	minutesRepo repository.MonthlyMinutesRepository,
	defaultN, defaultK int,
	now func() time.Time,
) DashboardService {
	if defaultN <= 0 {
		defaultN = 5
	}
	if defaultK <= 0 {
		defaultK = rollup.DefaultPeriods
	}
	if now == nil {
		now = time.Now
	}
	return &dashboardService{
		store:       store,
		aggregator:  aggregator,
		rollups:     rollups,
		minutesRepo: minutesRepo,
		defaultN:    defaultN,
		defaultK:    defaultK,
		now:         now,
	}
}

// recentClimbs returns the n most recent climbing workouts, newest first.
func (s *dashboardService) recentClimbs(ctx context.Context, userID string, n int) ([]domain.WorkoutSample, error) {
	all, err := s.store.Workouts(ctx, userID, historyStart, s.now(), 0, true)
	if err != nil {
		return nil, err
	}
	return workouts.LimitRecent(workouts.FilterByActivity(all, domain.ActivityClimbing), n), nil
}

func (s *dashboardService) RecentWorkouts(ctx context.Context, userID string, n int) (*RecentWorkouts, error) {
	if n <= 0 {
		n = s.defaultN
	}
	climbs, err := s.recentClimbs(ctx, userID, n)
	if err != nil {
		if degraded(err, log.Fields{"user": userID, "op": "recent_workouts"}) {
			return &RecentWorkouts{Workouts: []stats.WorkoutStats{}, Empty: true, Degraded: true}, nil
		}
		return nil, err
	}

	summaries := s.aggregator.Summaries(ctx, userID, climbs)
	return &RecentWorkouts{
		Workouts: summaries,
		Empty:    len(summaries) == 0,
	}, nil
}

func (s *dashboardService) Trend(ctx context.Context, userID string, metric stats.Metric, n int) (*TrendResult, error) {
	if n <= 0 {
		n = s.defaultN
	}
	climbs, err := s.recentClimbs(ctx, userID, n)
	if err != nil {
		if degraded(err, log.Fields{"user": userID, "op": "trend", "metric": metric}) {
			return &TrendResult{
				Trend:    stats.Trend{Metric: metric, Points: []domain.DatedValue{}, Empty: true},
				Degraded: true,
			}, nil
		}
		return nil, err
	}

	trend, err := s.aggregator.AcrossWorkouts(ctx, userID, metric, climbs)
	if err != nil {
		return nil, err
	}
	return &TrendResult{Trend: trend}, nil
}

func (s *dashboardService) Rollup(ctx context.Context, p domain.Principal, period domain.Period, k int) (*RollupResult, error) {
	if k <= 0 {
		k = s.defaultK
	}
	now := s.now()
	start, end, err := s.rollups.Window(now, period, k)
	if err != nil {
		return nil, err
	}

	result := &RollupResult{Period: period}
	all, err := s.store.Workouts(ctx, p.UserID, start, end, 0, false)
	if err != nil {
		if !degraded(err, log.Fields{"user": p.UserID, "op": "rollup", "period": period}) {
			return nil, err
		}
		result.Degraded = true
		all = nil
	}

	buckets, err := s.rollups.Build(workouts.FilterByActivity(all, domain.ActivityClimbing), period, now, k)
	if err != nil {
		return nil, err
	}
	result.Buckets = buckets

	if period == domain.PeriodMonth && !result.Degraded && len(buckets) > 0 {
		s.saveMonthlyMinutes(ctx, p, now, buckets[len(buckets)-1])
	}
	return result, nil
}

// saveMonthlyMinutes is best effort: the rollup is returned either way.
func (s *dashboardService) saveMonthlyMinutes(ctx context.Context, p domain.Principal, now time.Time, current domain.Bucket) {
	if s.minutesRepo == nil {
		return
	}
	rec := domain.MonthlyMinutes{
		UserID:    p.UserID,
		Username:  p.DisplayName(),
		Month:     s.rollups.Calendar().MonthIndex(current.PeriodStart),
		Minutes:   current.TotalMinutes,
		UpdatedAt: now.UTC(),
	}
	if err := s.minutesRepo.Save(ctx, rec); err != nil {
		log.WithFields(log.Fields{"user": p.UserID, "month": rec.Month}).WithError(err).Error("failed to save monthly minutes")
	}
}
