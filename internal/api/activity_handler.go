package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/du-phan/resilio-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// ActivityHandler holds the activity service dependency.
type ActivityHandler struct {
	activityService service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// --- Request Structs ---

type IngestActivitiesRequest struct {
	Activities []service.ActivityInput `json:"activities" binding:"required"`
}

type ExportUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// IngestActivities godoc
// @Summary Ingest a batch of activities
// @Description Stores a date-ordered batch of raw activities and computes their training loads.
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param batch body IngestActivitiesRequest true "Activity batch"
// @Success 201 {object} service.IngestResult
// @Failure 400 {object} gin.H "Invalid batch"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /activities [post]
func (h *ActivityHandler) IngestActivities(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	var req IngestActivitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.activityService.IngestBatch(c.Request.Context(), athleteID, req.Activities)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch),
			errors.Is(err, service.ErrNegativeDuration),
			errors.Is(err, service.ErrNonMonotonicDates),
			errors.Is(err, service.ErrMissingDate):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to ingest activities")
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// RequestExportUpload godoc
// @Summary Request a presigned upload URL for a raw export file
// @Description Returns a short-lived PUT URL for archiving the original device export.
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExportUploadRequest true "Upload details"
// @Success 200 {object} service.ExportUploadResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /activities/exports [post]
func (h *ActivityHandler) RequestExportUpload(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	var req ExportUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.activityService.RequestExportUploadURL(c.Request.Context(), athleteID, req.ContentType)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListActivities godoc
// @Summary List the athlete's activity history
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Activity
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	activities, err := h.activityService.GetHistory(c.Request.Context(), athleteID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load activities")
		return
	}

	c.JSON(http.StatusOK, activities)
}
