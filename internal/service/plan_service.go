package service

import (
	"context"
	"errors"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/engine/planner"
	"github.com/du-phan/resilio-app-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoGoal                 = errors.New("athlete profile has no goal set")
	ErrPlanNotFound           = errors.New("training plan not found")
	ErrSuggestionNotFound     = errors.New("suggestion not found")
	ErrSuggestionNotPending   = errors.New("suggestion is not pending")
	ErrSuggestionWorkoutGone  = errors.New("suggestion targets a workout no longer in the plan")
	ErrPlanAccessDenied       = errors.New("access denied to this training plan")
	ErrSuggestionAccessDenied = errors.New("access denied to this suggestion")
)

// PlanDraft is a generated but uncommitted plan plus its validation result.
// Nothing is stored until the explicit populate call.
type PlanDraft struct {
	Plan       domain.TrainingPlan          `json:"plan"`
	Allocation planner.PhaseAllocation      `json:"allocation"`
	Volume     planner.VolumeRecommendation `json:"volume"`
	Violations []domain.GuardrailViolation  `json:"violations"`
}

// PlanService generates, validates and commits training plans, and owns the
// suggestion accept/decline boundary.
type PlanService interface {
	Preview(ctx context.Context, athleteID primitive.ObjectID) (*PlanDraft, error)
	Populate(ctx context.Context, athleteID primitive.ObjectID, draft *domain.TrainingPlan) (*domain.TrainingPlan, error)
	GetActive(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error)
	ValidateActive(ctx context.Context, athleteID primitive.ObjectID) ([]domain.GuardrailViolation, error)

	ListSuggestions(ctx context.Context, athleteID primitive.ObjectID, status *domain.SuggestionStatus) ([]domain.Suggestion, error)
	ApplySuggestion(ctx context.Context, athleteID, suggestionID primitive.ObjectID) (*domain.TrainingPlan, error)
	DeclineSuggestion(ctx context.Context, athleteID, suggestionID primitive.ObjectID) error
}

// planService implements the PlanService interface.
type planService struct {
	userRepo       repository.UserRepository
	activityRepo   repository.ActivityRepository
	metricsRepo    repository.DailyMetricsRepository
	planRepo       repository.TrainingPlanRepository
	suggestionRepo repository.SuggestionRepository

	now func() time.Time
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	metricsRepo repository.DailyMetricsRepository,
	planRepo repository.TrainingPlanRepository,
	suggestionRepo repository.SuggestionRepository,
) PlanService {
	return &planService{
		userRepo:       userRepo,
		activityRepo:   activityRepo,
		metricsRepo:    metricsRepo,
		planRepo:       planRepo,
		suggestionRepo: suggestionRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Preview generates a full plan draft from the athlete's goal, current CTL
// and recent volume. The draft is returned with its guardrail validation and
// is not persisted; populate commits it.
func (s *planService) Preview(ctx context.Context, athleteID primitive.ObjectID) (*PlanDraft, error) {
	user, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if user.Profile.Goal == nil {
		return nil, ErrNoGoal
	}
	goal := user.Profile.Goal

	now := s.now()
	startDate := nextMonday(now)
	totalWeeks := weeksBetween(startDate, domain.Midnight(goal.TargetDate))

	// 1. Phase allocation; surfaces InsufficientTimeError for short runways.
	alloc, err := planner.AllocatePhases(totalWeeks, goal.Type)
	if err != nil {
		return nil, err
	}

	// 2. Volume recommendation from CTL and recent actual volume.
	var currentCTL float64
	if latest, err := s.metricsRepo.GetLatest(ctx, athleteID); err == nil {
		currentCTL = latest.CTL
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	recentKm, err := s.recentWeeklyRunKm(ctx, athleteID, now)
	if err != nil {
		return nil, err
	}
	rec := planner.SuggestVolume(currentCTL, goal.Type.DistanceKm(), totalWeeks, recentKm)

	// 3. Volume curve with recovery weeks, then concrete weeks.
	recoveryWeeks := planner.DefaultRecoveryWeeks(totalWeeks, alloc.TaperWeeks)
	curve := planner.ProgressVolume(rec.StartKm, rec.PeakKm, totalWeeks, recoveryWeeks)

	plan := domain.TrainingPlan{
		AthleteID: athleteID,
		Goal:      goal.Type,
		StartDate: startDate,
	}
	for _, wv := range curve {
		volume := wv.VolumeKm
		phase := alloc.PhaseForWeek(wv.Index)
		if phase == domain.PhaseTaper {
			// Taper weeks shed volume beyond the linear trend.
			volume *= 0.6
		}
		week, err := planner.BuildWeek(wv.Index, phase, startDate.AddDate(0, 0, (wv.Index-1)*7), volume, wv.Recovery, user.Profile)
		if err != nil {
			return nil, err
		}
		plan.Weeks = append(plan.Weeks, week)
	}

	return &PlanDraft{
		Plan:       plan,
		Allocation: alloc,
		Volume:     rec,
		Violations: planner.ValidatePlan(&plan, user.Profile),
	}, nil
}

// Populate commits a generated draft as the athlete's active plan. This is
// the explicit approval boundary: the engine never activates a plan itself.
func (s *planService) Populate(ctx context.Context, athleteID primitive.ObjectID, draft *domain.TrainingPlan) (*domain.TrainingPlan, error) {
	if draft == nil || len(draft.Weeks) == 0 {
		return nil, errors.New("draft plan with at least one week is required")
	}
	draft.AthleteID = athleteID
	draft.IsActive = true

	if err := s.planRepo.DeactivateAllForAthlete(ctx, athleteID); err != nil {
		return nil, err
	}
	planID, err := s.planRepo.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	draft.ID = planID
	return draft, nil
}

// GetActive retrieves the athlete's active plan.
func (s *planService) GetActive(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetActiveByAthlete(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// ValidateActive re-runs guardrail validation over the stored active plan.
func (s *planService) ValidateActive(ctx context.Context, athleteID primitive.ObjectID) ([]domain.GuardrailViolation, error) {
	user, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	plan, err := s.GetActive(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return planner.ValidatePlan(plan, user.Profile), nil
}

// ListSuggestions retrieves the athlete's suggestions, optionally filtered
// by status.
func (s *planService) ListSuggestions(ctx context.Context, athleteID primitive.ObjectID, status *domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return s.suggestionRepo.GetByAthlete(ctx, athleteID, status)
}

// ApplySuggestion accepts a pending suggestion and merges its proposed
// fragment into the targeted prescription. This is the only write path into
// a stored plan outside populate and the safety override.
func (s *planService) ApplySuggestion(ctx context.Context, athleteID, suggestionID primitive.ObjectID) (*domain.TrainingPlan, error) {
	suggestion, err := s.suggestionRepo.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}
	if suggestion.AthleteID != athleteID {
		return nil, ErrSuggestionAccessDenied
	}
	if suggestion.Status != domain.SuggestionPending {
		return nil, ErrSuggestionNotPending
	}

	plan, err := s.planRepo.GetByID(ctx, suggestion.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.AthleteID != athleteID {
		return nil, ErrPlanAccessDenied
	}

	_, workout := plan.FindWorkout(suggestion.WorkoutID)
	if workout == nil {
		return nil, ErrSuggestionWorkoutGone
	}

	// Merge and persist the plan first: if the plan write fails the
	// suggestion stays pending and the apply can be retried. The status
	// write is guarded so a concurrent decline cannot double-resolve.
	suggestion.ApplyTo(workout)
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.suggestionRepo.UpdateStatus(ctx, suggestionID, domain.SuggestionAccepted, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSuggestionNotPending
		}
		return nil, err
	}
	return plan, nil
}

// DeclineSuggestion declines a pending suggestion. The record is retained
// for audit and keeps blocking its (trigger, workout) pair until expiry.
func (s *planService) DeclineSuggestion(ctx context.Context, athleteID, suggestionID primitive.ObjectID) error {
	suggestion, err := s.suggestionRepo.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSuggestionNotFound
		}
		return err
	}
	if suggestion.AthleteID != athleteID {
		return ErrSuggestionAccessDenied
	}
	if err := s.suggestionRepo.UpdateStatus(ctx, suggestionID, domain.SuggestionDeclined, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSuggestionNotPending
		}
		return err
	}
	return nil
}

// recentWeeklyRunKm estimates actual weekly running volume from the last 28
// days of history, for the 110% recommendation cap.
func (s *planService) recentWeeklyRunKm(ctx context.Context, athleteID primitive.ObjectID, now time.Time) (float64, error) {
	since := domain.Midnight(now).AddDate(0, 0, -28)
	activities, err := s.activityRepo.GetByAthleteSince(ctx, athleteID, since)
	if err != nil {
		return 0, err
	}
	var runMinutes float64
	for i := range activities {
		if activities[i].Sport == domain.SportRunning {
			runMinutes += activities[i].DurationMin
		}
	}
	// Rough conversion at a 6 min/km reference pace, averaged per week.
	return runMinutes / 6 / 4, nil
}

// nextMonday returns the first Monday strictly after t, as UTC midnight.
func nextMonday(t time.Time) time.Time {
	d := domain.Midnight(t).AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// weeksBetween counts whole weeks from start to end.
func weeksBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24 / 7)
}
