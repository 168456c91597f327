package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterSampleQueries      *prometheus.CounterVec
	CounterSamplesIngested    *prometheus.CounterVec
	CounterWorkoutStatFailure prometheus.Counter
	CounterTimerSessions      *prometheus.CounterVec
	CounterBestTimeUpdates    *prometheus.CounterVec
	CounterLeaderboardCache   *prometheus.CounterVec

	// histograms
	HistSampleQueryDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("climb", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("climb", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterSampleQueries := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sample_queries",
		Help:      "The total number of health sample queries by type and outcome",
	}, []string{"type", "outcome"})
	counterSamplesIngested := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "samples_ingested",
		Help:      "The total number of stored health samples by source",
	}, []string{"source"})
	counterWorkoutStatFailure := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workout_stat_failures",
		Help:      "The total number of per-workout statistic sub-fetches that failed",
	})
	counterTimerSessions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "timer_sessions",
		Help:      "The total number of timer sessions by timer and outcome",
	}, []string{"timer", "outcome"})
	counterBestTimeUpdates := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "best_time_updates",
		Help:      "The total number of new personal or monthly bests",
	}, []string{"kind"})
	counterLeaderboardCache := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "leaderboard_cache",
		Help:      "Leaderboard cache lookups by result",
	}, []string{"result"})

	histSampleQueryDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sample_query_duration_seconds",
		Help:      "Duration of health sample queries",
		Buckets:   prometheus.DefBuckets,
	})

	return &Manager{
		CounterSampleQueries:      counterSampleQueries,
		CounterSamplesIngested:    counterSamplesIngested,
		CounterWorkoutStatFailure: counterWorkoutStatFailure,
		CounterTimerSessions:      counterTimerSessions,
		CounterBestTimeUpdates:    counterBestTimeUpdates,
		CounterLeaderboardCache:   counterLeaderboardCache,
		HistSampleQueryDuration:   histSampleQueryDuration,
	}
}
