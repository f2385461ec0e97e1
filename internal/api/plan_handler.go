package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/engine/planner"
	"github.com/du-phan/resilio-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// PreviewPlan godoc
// @Summary Preview a generated training plan
// @Description Builds a full plan draft from the athlete's goal and current fitness without persisting it.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PlanDraft
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 409 {object} gin.H "No goal set"
// @Failure 422 {object} gin.H "Not enough weeks before the goal"
// @Router /plans/preview [get]
func (h *PlanHandler) PreviewPlan(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	draft, err := h.planService.Preview(c.Request.Context(), athleteID)
	if err != nil {
		var insufficient *planner.InsufficientTimeError
		switch {
		case errors.Is(err, service.ErrNoGoal):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.As(err, &insufficient):
			abortWithError(c, http.StatusUnprocessableEntity, insufficient.Error())
		case errors.Is(err, planner.ErrUnknownGoal):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate plan preview")
		}
		return
	}

	c.JSON(http.StatusOK, draft)
}

// CreatePlan godoc
// @Summary Generate and activate a training plan
// @Description Builds a plan draft, persists it and deactivates any previous active plan.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 201 {object} domain.TrainingPlan
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 409 {object} gin.H "No goal set"
// @Failure 422 {object} gin.H "Not enough weeks before the goal"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	draft, err := h.planService.Preview(c.Request.Context(), athleteID)
	if err != nil {
		var insufficient *planner.InsufficientTimeError
		switch {
		case errors.Is(err, service.ErrNoGoal):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.As(err, &insufficient):
			abortWithError(c, http.StatusUnprocessableEntity, insufficient.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate plan")
		}
		return
	}

	plan, err := h.planService.Populate(c.Request.Context(), athleteID, &draft.Plan)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to persist plan")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetActivePlan godoc
// @Summary Get the active training plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.TrainingPlan
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "No active plan"
// @Router /plans/active [get]
func (h *PlanHandler) GetActivePlan(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	plan, err := h.planService.GetActive(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load active plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ValidateActivePlan godoc
// @Summary Validate the active plan against the training guardrails
// @Description Re-runs every guardrail over the active plan, useful after accepted suggestions have modified it.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "violations list"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "No active plan"
// @Router /plans/active/validation [get]
func (h *PlanHandler) ValidateActivePlan(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	violations, err := h.planService.ValidateActive(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to validate active plan")
		}
		return
	}
	if violations == nil {
		violations = []domain.GuardrailViolation{}
	}

	c.JSON(http.StatusOK, gin.H{"violations": violations})
}

// parseSuggestionStatus validates the optional ?status= filter.
func parseSuggestionStatus(raw string) (*domain.SuggestionStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status := domain.SuggestionStatus(raw)
	switch status {
	case domain.SuggestionPending, domain.SuggestionAccepted, domain.SuggestionDeclined, domain.SuggestionExpired:
		return &status, nil
	default:
		return nil, fmt.Errorf("unknown suggestion status %q", raw)
	}
}
