package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/stats"
)

// HealthHandler serves the dashboard, sample ingestion and permissions.
type HealthHandler struct {
	dashboard   service.DashboardService
	ingest      service.IngestService
	permissions service.PermissionService
}

func NewHealthHandler(
	dashboard service.DashboardService,
	ingest service.IngestService,
	permissions service.PermissionService,
) *HealthHandler {
	return &HealthHandler{dashboard: dashboard, ingest: ingest, permissions: permissions}
}

// --- DTOs for API ---

type IngestSamplesRequest struct {
	Samples []domain.Sample `json:"samples" binding:"required"`
}

type IngestSamplesResponse struct {
	Stored int `json:"stored"`
}

type UpdatePermissionsRequest struct {
	Grant  []domain.SampleType `json:"grant"`
	Revoke []domain.SampleType `json:"revoke"`
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		abortWithError(c, http.StatusBadRequest, "Query parameter '"+name+"' must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// RecentWorkouts godoc
// @Summary Recent climbing workouts with heart rate, HRV and recovery
// @Tags Health
// @Produce json
// @Security BearerAuth
// @Param n query int false "Number of workouts"
// @Success 200 {object} service.RecentWorkouts
// @Failure 403 {object} gin.H "Health data access not granted"
// @Router /health/workouts/recent [get]
func (h *HealthHandler) RecentWorkouts(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	n, ok := queryInt(c, "n")
	if !ok {
		return
	}
	res, err := h.dashboard.RecentWorkouts(c.Request.Context(), p.UserID, n)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Trend godoc
// @Summary One metric across the most recent climbing workouts
// @Tags Health
// @Produce json
// @Security BearerAuth
// @Param metric path string true "avg_heart_rate, min_heart_rate, max_heart_rate, hrv, calories, duration or recovery"
// @Param n query int false "Number of workouts"
// @Success 200 {object} service.TrendResult
// @Router /health/trends/{metric} [get]
func (h *HealthHandler) Trend(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	metric, err := stats.ParseMetric(c.Param("metric"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	n, ok := queryInt(c, "n")
	if !ok {
		return
	}
	res, err := h.dashboard.Trend(c.Request.Context(), p.UserID, metric, n)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Rollup godoc
// @Summary Climbing minutes per day, week or month, gaps filled with zero
// @Tags Health
// @Produce json
// @Security BearerAuth
// @Param period path string true "day, week or month"
// @Param k query int false "Number of periods"
// @Success 200 {object} service.RollupResult
// @Router /health/rollups/{period} [get]
func (h *HealthHandler) Rollup(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	period, err := calendar.ParsePeriod(c.Param("period"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	k, ok := queryInt(c, "k")
	if !ok {
		return
	}
	res, err := h.dashboard.Rollup(c.Request.Context(), p, period, k)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// IngestSamples godoc
// @Summary Store a batch of raw health samples from the device
// @Tags Health
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param samples body IngestSamplesRequest true "Samples"
// @Success 201 {object} IngestSamplesResponse
// @Failure 400 {object} gin.H "Invalid sample"
// @Router /health/samples [post]
func (h *HealthHandler) IngestSamples(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req IngestSamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	n, err := h.ingest.Ingest(c.Request.Context(), p.UserID, req.Samples)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, IngestSamplesResponse{Stored: n})
}

func (h *HealthHandler) GetPermissions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	perms, err := h.permissions.Get(c.Request.Context(), p.UserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// UpdatePermissions godoc
// @Summary Grant or revoke access to sample types
// @Tags Health
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdatePermissionsRequest true "Types to grant and revoke"
// @Success 200 {object} domain.HealthPermissions
// @Router /health/permissions [put]
func (h *HealthHandler) UpdatePermissions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	perms, err := h.permissions.Update(c.Request.Context(), p.UserID, req.Grant, req.Revoke)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}
