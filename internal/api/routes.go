package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alcyxob/climb-tracker/internal/service"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Dashboard    service.DashboardService
	Ingest       service.IngestService
	Permissions  service.PermissionService
	Timers       service.TimerService
	Leaderboards service.LeaderboardService
	Imports      service.ImportService
}

// SetupRoutes registers every route. A nil gatherer disables /metrics.
func SetupRoutes(router *gin.Engine, jwtSecret string, services Services, gatherer prometheus.Gatherer) {
	healthHandler := NewHealthHandler(services.Dashboard, services.Ingest, services.Permissions)
	timerHandler := NewTimerHandler(services.Timers)
	leaderboardHandler := NewLeaderboardHandler(services.Leaderboards)
	importHandler := NewImportHandler(services.Imports)

	router.Use(RequestLogger())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			p, ok := principal(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": p.UserID, "username": p.Username})
		})

		healthGroup := protected.Group("/health")
		{
			healthGroup.GET("/workouts/recent", healthHandler.RecentWorkouts)
			healthGroup.GET("/trends/:metric", healthHandler.Trend)
			healthGroup.GET("/rollups/:period", healthHandler.Rollup)
			healthGroup.POST("/samples", healthHandler.IngestSamples)
			healthGroup.GET("/permissions", healthHandler.GetPermissions)
			healthGroup.PUT("/permissions", healthHandler.UpdatePermissions)
		}

		timerGroup := protected.Group("/timers")
		{
			timerGroup.POST("/hang/start", timerHandler.StartHang)
			timerGroup.POST("/hang/stop", timerHandler.StopHang)
			timerGroup.GET("/hang", timerHandler.HangState)
			timerGroup.POST("/rest/start", timerHandler.StartRest)
			timerGroup.POST("/rest/stop", timerHandler.StopRest)
			timerGroup.GET("/rest", timerHandler.RestState)
		}

		leaderboardGroup := protected.Group("/leaderboards")
		{
			leaderboardGroup.GET("/best-times", leaderboardHandler.BestTimes)
			leaderboardGroup.GET("/monthly-minutes", leaderboardHandler.MonthlyMinutes)
		}

		importGroup := protected.Group("/imports/fit")
		{
			importGroup.POST("/upload-url", importHandler.CreateUploadURL)
			importGroup.POST("/confirm", importHandler.ConfirmImport)
			importGroup.PUT("/objects/*objectKey", importHandler.UploadObject)
		}
	}
}
