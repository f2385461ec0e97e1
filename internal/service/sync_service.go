package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/engine/adapt"
	"github.com/du-phan/resilio-app-sub001/internal/engine/load"
	"github.com/du-phan/resilio-app-sub001/internal/engine/metrics"
	"github.com/du-phan/resilio-app-sub001/internal/repository"
	"github.com/du-phan/resilio-app-sub001/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshSummary reports what one refresh cycle produced.
type RefreshSummary struct {
	Days               int                  `json:"days"`
	Latest             *domain.DailyMetrics `json:"latest,omitempty"`
	NewSuggestions     []domain.Suggestion  `json:"newSuggestions"`
	AppliedOverrides   []domain.Suggestion  `json:"appliedOverrides"`
	ExpiredSuggestions int64                `json:"expiredSuggestions"`
}

// SyncService owns the refresh cycle: recompute the full metrics series from
// the activity history, then run the adaptation triggers against the active
// plan. The cycle is logically single-writer; the sync collaborator holds
// the coarse lock and never runs two refreshes for one athlete concurrently.
type SyncService interface {
	Refresh(ctx context.Context, athleteID primitive.ObjectID) (*RefreshSummary, error)
	GetDailyMetrics(ctx context.Context, athleteID primitive.ObjectID, days int) ([]domain.DailyMetrics, error)
}

// syncService implements the SyncService interface.
type syncService struct {
	userRepo       repository.UserRepository
	activityRepo   repository.ActivityRepository
	metricsRepo    repository.DailyMetricsRepository
	planRepo       repository.TrainingPlanRepository
	suggestionRepo repository.SuggestionRepository

	metricsEngine *metrics.Engine
	adaptEngine   *adapt.Engine

	now func() time.Time // injectable clock for tests
}

// NewSyncService creates a new instance of syncService.
func NewSyncService(
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	metricsRepo repository.DailyMetricsRepository,
	planRepo repository.TrainingPlanRepository,
	suggestionRepo repository.SuggestionRepository,
	metricsEngine *metrics.Engine,
	adaptEngine *adapt.Engine,
) SyncService {
	return &syncService{
		userRepo:       userRepo,
		activityRepo:   activityRepo,
		metricsRepo:    metricsRepo,
		planRepo:       planRepo,
		suggestionRepo: suggestionRepo,
		metricsEngine:  metricsEngine,
		adaptEngine:    adaptEngine,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Refresh runs one full cycle: normalize -> fold metrics -> persist ->
// expire stale suggestions -> evaluate triggers -> persist suggestions and
// apply safety overrides. Re-running with an unchanged activity set stores
// an identical metrics series and creates no new suggestions.
func (s *syncService) Refresh(ctx context.Context, athleteID primitive.ObjectID) (*RefreshSummary, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	now := s.now()

	user, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	// 1. Load the full activity history and recompute loads from the raw
	// fields. Stored load values are a cache of this computation, never a
	// source of truth.
	activities, err := s.activityRepo.GetByAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	for i := range activities {
		loads, _ := load.Normalize(activities[i].Sport, activities[i].DurationMin, activities[i].RPE)
		activities[i].SystemicLoadAU = loads.SystemicAU
		activities[i].LowerBodyLoadAU = loads.LowerBodyAU
	}

	// 2. Fold the day stream into the metrics series and persist it whole.
	series := s.metricsEngine.Recompute(athleteID, metrics.AggregateDays(activities))
	if err := s.metricsRepo.ReplaceForAthlete(ctx, athleteID, series); err != nil {
		return nil, err
	}

	summary := &RefreshSummary{Days: len(series)}
	if len(series) > 0 {
		latest := series[len(series)-1]
		summary.Latest = &latest
	}

	// 3. Close out suggestions past their expiry before evaluating.
	expired, err := s.suggestionRepo.ExpirePending(ctx, athleteID, now)
	if err != nil {
		return nil, err
	}
	summary.ExpiredSuggestions = expired

	// 4. Evaluate the trigger table against the active plan, if any.
	plan, err := s.planRepo.GetActiveByAthlete(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			telemetry.RefreshCycles.Inc()
			return summary, nil // no plan: metrics only
		}
		return nil, err
	}
	if summary.Latest == nil {
		telemetry.RefreshCycles.Inc()
		return summary, nil // no history yet, nothing to trigger on
	}

	unexpired, err := s.suggestionRepo.GetUnexpiredByAthlete(ctx, athleteID, now)
	if err != nil {
		return nil, err
	}

	result := s.adaptEngine.Evaluate(adapt.Input{
		Now:     now,
		Metrics: *summary.Latest,
		Recent:  recentActivities(activities, now, 7),
		Plan:    plan,
		Profile: user.Profile,
		Open:    adapt.NewOpenIndex(unexpired, now),
	})

	// 5. Persist pending suggestions.
	for i := range result.Pending {
		if _, err := s.suggestionRepo.Create(ctx, &result.Pending[i]); err != nil {
			return nil, err
		}
		telemetry.SuggestionsEmitted.WithLabelValues(string(result.Pending[i].Trigger)).Inc()
	}
	summary.NewSuggestions = result.Pending

	// 6. Safety overrides mutate the stored plan immediately and are
	// recorded as already accepted.
	if len(result.Overrides) > 0 {
		for i := range result.Overrides {
			o := &result.Overrides[i]
			if _, w := plan.FindWorkout(o.WorkoutID); w != nil {
				o.ApplyTo(w)
			}
			if _, err := s.suggestionRepo.Create(ctx, o); err != nil {
				return nil, err
			}
			telemetry.SuggestionsEmitted.WithLabelValues(string(o.Trigger)).Inc()
			log.Printf("INFO: safety override applied for athlete %s, workout %s: %s", athleteID.Hex(), o.WorkoutID.Hex(), o.Rationale)
		}
		if err := s.planRepo.Update(ctx, plan); err != nil {
			return nil, err
		}
	}
	summary.AppliedOverrides = result.Overrides

	telemetry.RefreshCycles.Inc()
	return summary, nil
}

// GetDailyMetrics retrieves the trailing `days` of the metrics series.
func (s *syncService) GetDailyMetrics(ctx context.Context, athleteID primitive.ObjectID, days int) ([]domain.DailyMetrics, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	if days <= 0 {
		days = 42
	}
	to := domain.Midnight(s.now())
	from := to.AddDate(0, 0, -(days - 1))
	return s.metricsRepo.GetRange(ctx, athleteID, from, to)
}

// recentActivities filters the history to the trailing window the
// adaptation engine inspects.
func recentActivities(activities []domain.Activity, now time.Time, days int) []domain.Activity {
	cutoff := domain.Midnight(now).AddDate(0, 0, -days)
	var out []domain.Activity
	for i := range activities {
		if !activities[i].Day().Before(cutoff) {
			out = append(out, activities[i])
		}
	}
	return out
}
