package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/service"
)

type LeaderboardHandler struct {
	leaderboards service.LeaderboardService
}

func NewLeaderboardHandler(leaderboards service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboards: leaderboards}
}

type LeaderboardResponse struct {
	Metric  string                    `json:"metric"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// BestTimes godoc
// @Summary This month's hang best times, ranked
// @Tags Leaderboards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LeaderboardResponse
// @Router /leaderboards/best-times [get]
func (h *LeaderboardHandler) BestTimes(c *gin.Context) {
	entries, err := h.leaderboards.BestTimes(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, LeaderboardResponse{Metric: "monthly_best_seconds", Entries: entries})
}

// MonthlyMinutes godoc
// @Summary This month's climbing minutes, ranked
// @Tags Leaderboards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LeaderboardResponse
// @Router /leaderboards/monthly-minutes [get]
func (h *LeaderboardHandler) MonthlyMinutes(c *gin.Context) {
	entries, err := h.leaderboards.MonthlyMinutes(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, LeaderboardResponse{Metric: "monthly_minutes", Entries: entries})
}
