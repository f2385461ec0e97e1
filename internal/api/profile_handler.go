package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler holds the profile service dependency.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetMe godoc
// @Summary Get the authenticated athlete
// @Description Returns the athlete account and planning profile.
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Not Found"
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	user, err := h.profileService.Get(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load athlete")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Update the athlete planning profile
// @Description Replaces the goal, constraints, VDOT baseline and multi-sport policy.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body domain.AthleteProfile true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	athleteID, ok := athleteIDFromContext(c)
	if !ok {
		return
	}

	var profile domain.AthleteProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), athleteID, profile)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfile) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}
