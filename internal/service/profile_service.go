package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidProfile = errors.New("invalid profile")
)

// ProfileService reads and updates the athlete's planning profile. The
// profile is the only mutable planning input; plans and suggestions always
// read it fresh rather than caching a copy.
type ProfileService interface {
	Get(ctx context.Context, athleteID primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, athleteID primitive.ObjectID, profile domain.AthleteProfile) (*domain.User, error)
}

type profileService struct {
	userRepo repository.UserRepository
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(userRepo repository.UserRepository) ProfileService {
	return &profileService{userRepo: userRepo}
}

func (s *profileService) Get(ctx context.Context, athleteID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Update validates and persists a full replacement of the athlete profile.
func (s *profileService) Update(ctx context.Context, athleteID primitive.ObjectID, profile domain.AthleteProfile) (*domain.User, error) {
	// 1. Validate the incoming profile.
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	// 2. Persist.
	if err := s.userRepo.UpdateProfile(ctx, athleteID, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	// 3. Return the updated user document.
	return s.Get(ctx, athleteID)
}

func validateProfile(p domain.AthleteProfile) error {
	if p.VDOT != 0 && (p.VDOT < 20 || p.VDOT > 85) {
		return fmt.Errorf("%w: vdot %.1f out of range [20, 85]", ErrInvalidProfile, p.VDOT)
	}
	if p.Goal != nil {
		if p.Goal.Type.DistanceKm() == 0 {
			return fmt.Errorf("%w: unknown goal type %q", ErrInvalidProfile, p.Goal.Type)
		}
		if !p.Goal.TargetDate.After(time.Now()) {
			return fmt.Errorf("%w: goal target date must be in the future", ErrInvalidProfile)
		}
	}
	c := p.Constraints
	if c.MinRunDaysPerWeek < 0 || c.MaxRunDaysPerWeek > 7 {
		return fmt.Errorf("%w: run days per week must be within [0, 7]", ErrInvalidProfile)
	}
	if c.MaxRunDaysPerWeek != 0 && c.MinRunDaysPerWeek > c.MaxRunDaysPerWeek {
		return fmt.Errorf("%w: min run days exceeds max run days", ErrInvalidProfile)
	}
	if c.MaxSessionDuration < 0 {
		return fmt.Errorf("%w: max session duration must be non-negative", ErrInvalidProfile)
	}
	if p.LowerBodyDailyLimitAU != nil && *p.LowerBodyDailyLimitAU <= 0 {
		return fmt.Errorf("%w: lower-body daily limit must be positive", ErrInvalidProfile)
	}
	return nil
}
