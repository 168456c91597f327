package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/api"
	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/config"
	"alcyxob/climb-tracker/internal/healthstore"
	"alcyxob/climb-tracker/internal/logging"
	"alcyxob/climb-tracker/internal/metrics"
	"alcyxob/climb-tracker/internal/repository"
	"alcyxob/climb-tracker/internal/repository/document"
	"alcyxob/climb-tracker/internal/repository/memory"
	"alcyxob/climb-tracker/internal/repository/mongo"
	"alcyxob/climb-tracker/internal/rollup"
	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/stats"
	"alcyxob/climb-tracker/internal/storage"
)

// backends are the storage implementations selected by database.driver.
type backends struct {
	samples   repository.SampleRepository
	documents repository.DocumentStore
	files     storage.FileStorage
	close     func()
}

// @title Climb Tracker API
// @version 1.0
// @description Health metrics, hang timers and leaderboards for climbers.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.Logging.File,
		LogToStdout:   cfg.Logging.ToStdout,
		LogLevel:      cfg.Logging.Level,
		LogFormatJSON: cfg.Logging.JSON,
	})
	log.Info("starting climb tracker server")

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager(cfg.Metrics.Namespace, "server", registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage backends ---
	b, err := setupBackends(ctx, cfg)
	if err != nil {
		log.Fatalf("could not set up storage: %v", err)
	}
	defer b.close()

	// --- Repositories ---
	bestRepo := document.NewBestTimeRepository(b.documents)
	minutesRepo := document.NewMonthlyMinutesRepository(b.documents)
	permRepo := document.NewPermissionRepository(b.documents)

	// --- Services ---
	cal, err := buildCalendar(cfg.Rollup)
	if err != nil {
		log.Fatalf("invalid rollup config: %v", err)
	}
	store := healthstore.NewStore(b.samples, permRepo, cfg.Health.QueryTimeout, metricsManager)
	dashboardService := service.NewDashboardService(
		store,
		stats.NewAggregator(store, metricsManager),
		rollup.NewBuilder(cal, nil),
		minutesRepo,
		cfg.Health.RecentWorkouts,
		cfg.Rollup.Periods,
		time.Now,
	)
	ingestService := service.NewIngestService(b.samples, metricsManager)
	timerService := service.NewTimerService(bestRepo, metricsManager, service.TimerSettings{
		CountdownSeconds: cfg.Timer.CountdownSeconds,
		HangTick:         cfg.Timer.HangTick,
		RestTick:         cfg.Timer.RestTick,
		RestSeconds:      cfg.Timer.RestSeconds,
		Calendar:         cal,
	}, nil, nil)
	defer timerService.Close()

	services := api.Services{
		Dashboard:    dashboardService,
		Ingest:       ingestService,
		Permissions:  service.NewPermissionService(permRepo),
		Timers:       timerService,
		Leaderboards: service.NewLeaderboardService(bestRepo, minutesRepo, cal, cfg.Leaderboard.CacheSizeMB, cfg.Leaderboard.CacheTTL, metricsManager, time.Now),
		Imports:      service.NewImportService(b.files, ingestService, cfg.S3.PresignExpiry),
	}

	// --- Gin Engine ---
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, services, registry)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("listen: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	log.Info("server exiting")
}

func setupBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		files := storage.NewMemoryStorage(cfg.S3.BucketName)
		files.SetUploadBase(api.DirectUploadPath)
		return &backends{
			samples:   healthstore.NewMemorySource(),
			documents: memory.NewDocumentStore(),
			files:     files,
			close:     func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		return nil, err
	}
	closeDB := func() {
		if err := mongo.DisconnectDB(client); err != nil {
			log.Errorf("failed to disconnect MongoDB: %v", err)
		}
	}
	db := client.Database(cfg.Database.Name)

	go func() {
		indexCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureSampleIndexes(indexCtx, db)
	}()

	files, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		closeDB()
		return nil, err
	}

	return &backends{
		samples:   mongo.NewMongoSampleRepository(db),
		documents: mongo.NewMongoDocumentStore(db),
		files:     files,
		close:     closeDB,
	}, nil
}

func buildCalendar(cfg config.RollupConfig) (*calendar.Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	weekStart, err := calendar.ParseWeekday(cfg.WeekStart)
	if err != nil {
		return nil, err
	}
	return calendar.New(loc, weekStart), nil
}
