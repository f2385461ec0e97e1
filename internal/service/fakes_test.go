package service

// In-memory repository implementations for service tests. They mirror the
// mongo repositories' contracts: sentinel errors, pending-guarded status
// updates and whole-series metric replacement.

import (
	"context"
	"sort"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, profile domain.AthleteProfile) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Profile = profile
	r.users[id] = u
	return nil
}

// --- Activities ---

type fakeActivityRepo struct {
	activities []domain.Activity
}

func (r *fakeActivityRepo) InsertMany(_ context.Context, activities []domain.Activity) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(activities))
	for i := range activities {
		if activities[i].ID == primitive.NilObjectID {
			activities[i].ID = primitive.NewObjectID()
		}
		ids[i] = activities[i].ID
		r.activities = append(r.activities, activities[i])
	}
	return ids, nil
}

func (r *fakeActivityRepo) GetByAthlete(_ context.Context, athleteID primitive.ObjectID) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range r.activities {
		if a.AthleteID == athleteID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeActivityRepo) GetByAthleteSince(ctx context.Context, athleteID primitive.ObjectID, since time.Time) ([]domain.Activity, error) {
	all, _ := r.GetByAthlete(ctx, athleteID)
	var out []domain.Activity
	for _, a := range all {
		if !a.Date.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- Daily metrics ---

type fakeMetricsRepo struct {
	series map[primitive.ObjectID][]domain.DailyMetrics
}

func newFakeMetricsRepo() *fakeMetricsRepo {
	return &fakeMetricsRepo{series: make(map[primitive.ObjectID][]domain.DailyMetrics)}
}

func (r *fakeMetricsRepo) ReplaceForAthlete(_ context.Context, athleteID primitive.ObjectID, series []domain.DailyMetrics) error {
	out := make([]domain.DailyMetrics, len(series))
	copy(out, series)
	r.series[athleteID] = out
	return nil
}

func (r *fakeMetricsRepo) GetRange(_ context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.DailyMetrics, error) {
	var out []domain.DailyMetrics
	for _, m := range r.series[athleteID] {
		if !m.Date.Before(from) && !m.Date.After(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMetricsRepo) GetLatest(_ context.Context, athleteID primitive.ObjectID) (*domain.DailyMetrics, error) {
	series := r.series[athleteID]
	if len(series) == 0 {
		return nil, repository.ErrNotFound
	}
	out := series[len(series)-1]
	return &out, nil
}

// --- Training plans ---

type fakePlanRepo struct {
	plans     map[primitive.ObjectID]domain.TrainingPlan
	updateErr error
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]domain.TrainingPlan)}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	r.plans[plan.ID] = clonePlan(plan)
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := clonePlan(&p)
	return &out, nil
}

func (r *fakePlanRepo) GetActiveByAthlete(_ context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error) {
	for _, p := range r.plans {
		if p.AthleteID == athleteID && p.IsActive {
			out := clonePlan(&p)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) Update(_ context.Context, plan *domain.TrainingPlan) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	r.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r *fakePlanRepo) DeactivateAllForAthlete(_ context.Context, athleteID primitive.ObjectID) error {
	for id, p := range r.plans {
		if p.AthleteID == athleteID && p.IsActive {
			p.IsActive = false
			r.plans[id] = p
		}
	}
	return nil
}

func clonePlan(p *domain.TrainingPlan) domain.TrainingPlan {
	out := *p
	out.Weeks = make([]domain.WeekPlan, len(p.Weeks))
	for i, w := range p.Weeks {
		cw := w
		cw.Prescriptions = make([]domain.WorkoutPrescription, len(w.Prescriptions))
		copy(cw.Prescriptions, w.Prescriptions)
		out.Weeks[i] = cw
	}
	return out
}

// --- Suggestions ---

type fakeSuggestionRepo struct {
	suggestions map[primitive.ObjectID]domain.Suggestion
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{suggestions: make(map[primitive.ObjectID]domain.Suggestion)}
}

func (r *fakeSuggestionRepo) Create(_ context.Context, suggestion *domain.Suggestion) (primitive.ObjectID, error) {
	if suggestion.ID == primitive.NilObjectID {
		suggestion.ID = primitive.NewObjectID()
	}
	r.suggestions[suggestion.ID] = *suggestion
	return suggestion.ID, nil
}

func (r *fakeSuggestionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Suggestion, error) {
	s, ok := r.suggestions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeSuggestionRepo) GetByAthlete(_ context.Context, athleteID primitive.ObjectID, status *domain.SuggestionStatus) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	for _, s := range r.suggestions {
		if s.AthleteID != athleteID {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSuggestionRepo) GetUnexpiredByAthlete(_ context.Context, athleteID primitive.ObjectID, now time.Time) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	for _, s := range r.suggestions {
		if s.AthleteID == athleteID && now.Before(s.ExpiresAt) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSuggestionRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.SuggestionStatus, resolvedAt time.Time) error {
	s, ok := r.suggestions[id]
	if !ok || s.Status != domain.SuggestionPending {
		return repository.ErrNotFound
	}
	s.Status = status
	s.ResolvedAt = &resolvedAt
	r.suggestions[id] = s
	return nil
}

func (r *fakeSuggestionRepo) ExpirePending(_ context.Context, athleteID primitive.ObjectID, now time.Time) (int64, error) {
	var n int64
	for id, s := range r.suggestions {
		if s.AthleteID == athleteID && s.Status == domain.SuggestionPending && !s.ExpiresAt.After(now) {
			s.Status = domain.SuggestionExpired
			s.ResolvedAt = &now
			r.suggestions[id] = s
			n++
		}
	}
	return n, nil
}
