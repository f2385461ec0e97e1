package api

import (
	"net/http"
	"strconv"

	"github.com/du-phan/resilio-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes the daily metrics series and the refresh cycle.
type MetricsHandler struct {
	syncService service.SyncService
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(syncService service.SyncService) *MetricsHandler {
	return &MetricsHandler{syncService: syncService}
}

// GetDailyMetrics godoc
// @Summary Get the daily fitness/fatigue series
// @Description Returns CTL, ATL, TSB, ACWR and readiness per day, newest last.
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param days query int false "Number of trailing days (default 42)"
// @Success 200 {array} domain.DailyMetrics
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /metrics/daily [get]
func (h *MetricsHandler) GetDailyMetrics(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			abortWithError(c, http.StatusBadRequest, "Query parameter 'days' must be a positive integer")
			return
		}
		days = parsed
	}

	series, err := h.syncService.GetDailyMetrics(c.Request.Context(), athleteID, days)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load daily metrics")
		return
	}

	c.JSON(http.StatusOK, series)
}

// Refresh godoc
// @Summary Run a refresh cycle
// @Description Recomputes the metrics series from stored activities, expires stale suggestions and evaluates adaptation triggers against the active plan.
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.RefreshSummary
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /refresh [post]
func (h *MetricsHandler) Refresh(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	summary, err := h.syncService.Refresh(c.Request.Context(), athleteID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Refresh cycle failed")
		return
	}

	c.JSON(http.StatusOK, summary)
}
