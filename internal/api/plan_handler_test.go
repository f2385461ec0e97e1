package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubPlanService returns a canned draft and records the populate call, so
// the handler wiring can be exercised without repositories.
type stubPlanService struct {
	draft      *service.PlanDraft
	previewErr error
	populated  *domain.TrainingPlan
}

func (s *stubPlanService) Preview(_ context.Context, _ primitive.ObjectID) (*service.PlanDraft, error) {
	if s.previewErr != nil {
		return nil, s.previewErr
	}
	return s.draft, nil
}

func (s *stubPlanService) Populate(_ context.Context, athleteID primitive.ObjectID, draft *domain.TrainingPlan) (*domain.TrainingPlan, error) {
	draft.AthleteID = athleteID
	draft.ID = primitive.NewObjectID()
	draft.IsActive = true
	s.populated = draft
	return draft, nil
}

func (s *stubPlanService) GetActive(_ context.Context, _ primitive.ObjectID) (*domain.TrainingPlan, error) {
	return nil, service.ErrPlanNotFound
}

func (s *stubPlanService) ValidateActive(_ context.Context, _ primitive.ObjectID) ([]domain.GuardrailViolation, error) {
	return nil, nil
}

func (s *stubPlanService) ListSuggestions(_ context.Context, _ primitive.ObjectID, _ *domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return nil, nil
}

func (s *stubPlanService) ApplySuggestion(_ context.Context, _, _ primitive.ObjectID) (*domain.TrainingPlan, error) {
	return nil, service.ErrSuggestionNotFound
}

func (s *stubPlanService) DeclineSuggestion(_ context.Context, _, _ primitive.ObjectID) error {
	return service.ErrSuggestionNotFound
}

func planRouter(athleteID primitive.ObjectID, svc service.PlanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, athleteID.Hex())
	})
	handler := NewPlanHandler(svc)
	router.GET("/plans/preview", handler.PreviewPlan)
	router.POST("/plans", handler.CreatePlan)
	return router
}

func draftFixture() *service.PlanDraft {
	return &service.PlanDraft{
		Plan: domain.TrainingPlan{
			Goal:      domain.Goal10K,
			StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Weeks: []domain.WeekPlan{{
				Index: 1, Phase: domain.PhaseBase, TargetVolumeKm: 30,
			}},
		},
	}
}

func TestCreatePlanCommitsDraft(t *testing.T) {
	athleteID := primitive.NewObjectID()
	svc := &stubPlanService{draft: draftFixture()}
	router := planRouter(athleteID, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/plans", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.populated, "the generated draft must reach populate")
	assert.Equal(t, athleteID, svc.populated.AthleteID)
	assert.True(t, svc.populated.IsActive)

	var body domain.TrainingPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.Goal10K, body.Goal)
	assert.False(t, body.ID.IsZero())
}

func TestCreatePlanNoGoal(t *testing.T) {
	athleteID := primitive.NewObjectID()
	svc := &stubPlanService{previewErr: service.ErrNoGoal}
	router := planRouter(athleteID, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/plans", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Nil(t, svc.populated)
}

func TestPreviewPlanDoesNotPersist(t *testing.T) {
	athleteID := primitive.NewObjectID()
	svc := &stubPlanService{draft: draftFixture()}
	router := planRouter(athleteID, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/plans/preview", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.populated, "preview must never populate")
}
