package repository

import (
	"context"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with athlete accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile domain.AthleteProfile) error
}

// ActivityRepository defines the interface for the activity history.
// Activities are append-only; corrections happen by re-ingesting.
type ActivityRepository interface {
	InsertMany(ctx context.Context, activities []domain.Activity) ([]primitive.ObjectID, error)
	GetByAthlete(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Activity, error)
	GetByAthleteSince(ctx context.Context, athleteID primitive.ObjectID, since time.Time) ([]domain.Activity, error)
}

// DailyMetricsRepository stores the derived per-day metrics. ReplaceForAthlete
// swaps the whole series atomically enough for a single-writer refresh, which
// keeps recomputation idempotent.
type DailyMetricsRepository interface {
	ReplaceForAthlete(ctx context.Context, athleteID primitive.ObjectID, series []domain.DailyMetrics) error
	GetRange(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.DailyMetrics, error)
	GetLatest(ctx context.Context, athleteID primitive.ObjectID) (*domain.DailyMetrics, error)
}

// TrainingPlanRepository defines the interface for training plan data.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetActiveByAthlete(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error)
	Update(ctx context.Context, plan *domain.TrainingPlan) error
	DeactivateAllForAthlete(ctx context.Context, athleteID primitive.ObjectID) error
}

// SuggestionRepository stores adaptation suggestions. Declined and expired
// suggestions are retained for audit; only status changes, never deletion.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Suggestion, error)
	GetByAthlete(ctx context.Context, athleteID primitive.ObjectID, status *domain.SuggestionStatus) ([]domain.Suggestion, error)
	// GetUnexpiredByAthlete returns every suggestion whose expiry is still in
	// the future, regardless of status: the adaptation engine's dedupe index
	// is built from these.
	GetUnexpiredByAthlete(ctx context.Context, athleteID primitive.ObjectID, now time.Time) ([]domain.Suggestion, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SuggestionStatus, resolvedAt time.Time) error
	// ExpirePending marks every pending suggestion past its expiry as
	// expired and returns how many were affected.
	ExpirePending(ctx context.Context, athleteID primitive.ObjectID, now time.Time) (int64, error)
}
