package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/timer"
)

type TimerHandler struct {
	timers service.TimerService
}

func NewTimerHandler(timers service.TimerService) *TimerHandler {
	return &TimerHandler{timers: timers}
}

type StartRestRequest struct {
	Seconds int `json:"seconds" binding:"omitempty,min=0"`
}

// TimerStateResponse reports durations in seconds for the app.
type TimerStateResponse struct {
	State           timer.State `json:"state"`
	Remaining       int         `json:"remaining"`
	ElapsedSeconds  float64     `json:"elapsedSeconds"`
	LastTimeSeconds float64     `json:"lastTimeSeconds"`
	PersonalBest    float64     `json:"personalBestSeconds"`
	MonthlyBest     float64     `json:"monthlyBestSeconds"`
}

type HangStopResponse struct {
	Completed       bool               `json:"completed"`
	LastTimeSeconds float64            `json:"lastTimeSeconds"`
	NewPersonalBest bool               `json:"newPersonalBest"`
	NewMonthlyBest  bool               `json:"newMonthlyBest"`
	State           TimerStateResponse `json:"state"`
}

func mapSnapshot(s timer.Snapshot) TimerStateResponse {
	return TimerStateResponse{
		State:           s.State,
		Remaining:       s.Remaining,
		ElapsedSeconds:  s.Elapsed.Seconds(),
		LastTimeSeconds: s.LastTime.Seconds(),
		PersonalBest:    s.Record.PersonalBestSeconds,
		MonthlyBest:     s.Record.MonthlyBestSeconds,
	}
}

// StartHang godoc
// @Summary Start the hang timer countdown
// @Tags Timers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TimerStateResponse
// @Failure 409 {object} gin.H "Timer already started"
// @Router /timers/hang/start [post]
func (h *TimerHandler) StartHang(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	snap, err := h.timers.StartHang(c.Request.Context(), p)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSnapshot(snap))
}

// StopHang godoc
// @Summary Stop the hang timer; cancels a running countdown
// @Tags Timers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} HangStopResponse
// @Failure 409 {object} gin.H "Timer not started"
// @Router /timers/hang/stop [post]
func (h *TimerHandler) StopHang(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.timers.StopHang(c.Request.Context(), p)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := HangStopResponse{State: mapSnapshot(res.State)}
	if res.Result != nil {
		resp.Completed = true
		resp.LastTimeSeconds = res.Result.LastTime.Seconds()
		resp.NewPersonalBest = res.Result.NewPersonalBest
		resp.NewMonthlyBest = res.Result.NewMonthlyBest
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TimerHandler) HangState(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	snap, err := h.timers.HangState(c.Request.Context(), p)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSnapshot(snap))
}

// StartRest godoc
// @Summary Start the rest countdown
// @Tags Timers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartRestRequest false "Rest length, default when omitted"
// @Success 200 {object} TimerStateResponse
// @Router /timers/rest/start [post]
func (h *TimerHandler) StartRest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req StartRestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	snap, err := h.timers.StartRest(c.Request.Context(), p, req.Seconds)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSnapshot(snap))
}

func (h *TimerHandler) StopRest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	snap, err := h.timers.StopRest(c.Request.Context(), p)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSnapshot(snap))
}

func (h *TimerHandler) RestState(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	snap, err := h.timers.RestState(c.Request.Context(), p)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSnapshot(snap))
}
