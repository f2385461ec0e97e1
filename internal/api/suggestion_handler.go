package api

import (
	"errors"
	"net/http"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionHandler manages the adaptation suggestion lifecycle endpoints.
type SuggestionHandler struct {
	planService service.PlanService
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(planService service.PlanService) *SuggestionHandler {
	return &SuggestionHandler{planService: planService}
}

// ListSuggestions godoc
// @Summary List adaptation suggestions
// @Tags Suggestions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, accepted, declined, expired)"
// @Success 200 {array} domain.Suggestion
// @Failure 400 {object} gin.H "Unknown status filter"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /suggestions [get]
func (h *SuggestionHandler) ListSuggestions(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	status, err := parseSuggestionStatus(c.Query("status"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := h.planService.ListSuggestions(c.Request.Context(), athleteID, status)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}

	c.JSON(http.StatusOK, suggestions)
}

// AcceptSuggestion godoc
// @Summary Accept a pending suggestion
// @Description Applies the suggestion's prescription changes to the active plan and marks it accepted.
// @Tags Suggestions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Success 200 {object} domain.TrainingPlan "Updated plan"
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Not Found"
// @Failure 409 {object} gin.H "Suggestion not pending"
// @Failure 410 {object} gin.H "Target workout gone"
// @Router /suggestions/{id}/accept [post]
func (h *SuggestionHandler) AcceptSuggestion(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}
	suggestionID, ok := suggestionIDFromPath(c)
	if !ok {
		return
	}

	plan, err := h.planService.ApplySuggestion(c.Request.Context(), athleteID, suggestionID)
	if err != nil {
		h.mapLifecycleError(c, err, "Failed to accept suggestion")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeclineSuggestion godoc
// @Summary Decline a pending suggestion
// @Description Marks the suggestion declined; the same trigger will not re-fire for the same workout until expiry.
// @Tags Suggestions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Success 204 "Declined"
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Not Found"
// @Failure 409 {object} gin.H "Suggestion not pending"
// @Router /suggestions/{id}/decline [post]
func (h *SuggestionHandler) DeclineSuggestion(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}
	suggestionID, ok := suggestionIDFromPath(c)
	if !ok {
		return
	}

	if err := h.planService.DeclineSuggestion(c.Request.Context(), athleteID, suggestionID); err != nil {
		h.mapLifecycleError(c, err, "Failed to decline suggestion")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SuggestionHandler) mapLifecycleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSuggestionNotFound), errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSuggestionAccessDenied), errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSuggestionNotPending):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSuggestionWorkoutGone):
		abortWithError(c, http.StatusGone, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

func suggestionIDFromPath(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid suggestion ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}
