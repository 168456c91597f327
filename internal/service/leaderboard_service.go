package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/leaderboard"
	"alcyxob/climb-tracker/internal/metrics"
	"alcyxob/climb-tracker/internal/repository"
)

const megabyte = 1024 * 1024

// LeaderboardService projects the current month's stored records into
// ranked leaderboards. Projections are cached for the configured TTL.
type LeaderboardService interface {
	BestTimes(ctx context.Context) ([]domain.LeaderboardEntry, error)
	MonthlyMinutes(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

type leaderboardService struct {
	bestRepo    repository.BestTimeRepository
	minutesRepo repository.MonthlyMinutesRepository
	cal         *calendar.Calendar
	cache       *freecache.Cache
	cacheTTL    int
	metrics     *metrics.Manager
	now         func() time.Time
}

// NewLeaderboardService creates a new instance of leaderboardService.
// A non-positive ttl disables caching. cal must be the calendar the monthly
// records were written with; nil means UTC.
func NewLeaderboardService(
	bestRepo repository.BestTimeRepository,
	minutesRepo repository.MonthlyMinutesRepository,
	cal *calendar.Calendar,
	cacheSizeMB int,
	ttl time.Duration,
	metricsManager *metrics.Manager,
	now func() time.Time,
) LeaderboardService {
	if cacheSizeMB <= 0 {
		cacheSizeMB = 8
	}
	if now == nil {
		now = time.Now
	}
	if cal == nil {
		cal = calendar.Default()
	}
	return &leaderboardService{
		bestRepo:    bestRepo,
		minutesRepo: minutesRepo,
		cal:         cal,
		cache:       freecache.NewCache(cacheSizeMB * megabyte),
		cacheTTL:    int(ttl.Seconds()),
		metrics:     metricsManager,
		now:         now,
	}
}

func (s *leaderboardService) BestTimes(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	month := s.cal.MonthIndex(s.now())
	return s.cached(fmt.Sprintf("best_times::%d", month), func() ([]domain.LeaderboardEntry, error) {
		records, err := s.bestRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]leaderboard.Row, 0, len(records))
		for _, rec := range records {
			if rec.MonthlyBestMonth != month || rec.MonthlyBestSeconds <= 0 {
				continue
			}
			rows = append(rows, leaderboard.Row{
				Username:    displayName(rec.Username, rec.UserID),
				MetricValue: rec.MonthlyBestSeconds,
			})
		}
		return leaderboard.Project(rows), nil
	})
}

func (s *leaderboardService) MonthlyMinutes(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	month := s.cal.MonthIndex(s.now())
	return s.cached(fmt.Sprintf("monthly_minutes::%d", month), func() ([]domain.LeaderboardEntry, error) {
		records, err := s.minutesRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]leaderboard.Row, 0, len(records))
		for _, rec := range records {
			if rec.Month != month {
				continue
			}
			rows = append(rows, leaderboard.Row{
				Username:    displayName(rec.Username, rec.UserID),
				MetricValue: rec.Minutes,
			})
		}
		return leaderboard.Project(rows), nil
	})
}

func (s *leaderboardService) cached(key string, load func() ([]domain.LeaderboardEntry, error)) ([]domain.LeaderboardEntry, error) {
	if s.cacheTTL > 0 {
		if data, err := s.cache.Get([]byte(key)); err == nil {
			var entries []domain.LeaderboardEntry
			if err = json.Unmarshal(data, &entries); err == nil {
				s.countCache("hit")
				return entries, nil
			}
			log.Errorf("failed to unmarshal cached leaderboard %s: %s", key, err)
		}
		s.countCache("miss")
	}

	entries, err := load()
	if err != nil {
		return nil, err
	}

	if s.cacheTTL > 0 {
		data, err := json.Marshal(entries)
		if err == nil {
			err = s.cache.Set([]byte(key), data, s.cacheTTL)
		}
		if err != nil {
			log.Errorf("failed to cache leaderboard %s: %s", key, err)
		}
	}
	return entries, nil
}

func (s *leaderboardService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.CounterLeaderboardCache.WithLabelValues(result).Inc()
	}
}

func displayName(username, userID string) string {
	if username != "" {
		return username
	}
	return userID
}
