package adapt

import (
	"testing"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var evalNow = time.Date(2026, 4, 8, 9, 0, 0, 0, time.UTC) // Wednesday morning

func floatPtr(v float64) *float64 { return &v }

// testPlan builds a one-week plan with an easy run today, a quality session
// in two days and a long run on Sunday.
func testPlan() *domain.TrainingPlan {
	monday := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	return &domain.TrainingPlan{
		ID:        primitive.NewObjectID(),
		AthleteID: primitive.NewObjectID(),
		IsActive:  true,
		Weeks: []domain.WeekPlan{{
			Index:     1,
			Phase:     domain.PhaseBuild,
			StartDate: monday,
			Prescriptions: []domain.WorkoutPrescription{
				{
					ID: primitive.NewObjectID(), Type: domain.WorkoutEasy, Zone: domain.ZoneE,
					Date: monday.AddDate(0, 0, 2), DurationMin: 50, DistanceKm: 8,
				},
				{
					ID: primitive.NewObjectID(), Type: domain.WorkoutTempo, Zone: domain.ZoneT,
					Date: monday.AddDate(0, 0, 4), DurationMin: 40, DistanceKm: 8, Quality: true,
				},
				{
					ID: primitive.NewObjectID(), Type: domain.WorkoutLong, Zone: domain.ZoneE,
					Date: monday.AddDate(0, 0, 6), DurationMin: 100, DistanceKm: 16, LongRun: true,
				},
			},
		}},
	}
}

func baseInput(plan *domain.TrainingPlan) Input {
	return Input{
		Now:     evalNow,
		Metrics: domain.DailyMetrics{Date: domain.Midnight(evalNow), CTL: 45, ATL: 50, TSB: -5},
		Plan:    plan,
		Open:    make(OpenIndex),
	}
}

func TestEvaluateNoTriggersNoSuggestions(t *testing.T) {
	e := NewEngine(DefaultParams())
	res := e.Evaluate(baseInput(testPlan()))

	assert.Empty(t, res.Pending)
	assert.Empty(t, res.Overrides)
}

func TestACWRElevatedDowngradesNextQuality(t *testing.T) {
	e := NewEngine(DefaultParams())
	plan := testPlan()
	in := baseInput(plan)
	in.Metrics.ACWR = floatPtr(1.4)

	res := e.Evaluate(in)

	require.Len(t, res.Pending, 1)
	s := res.Pending[0]
	assert.Equal(t, domain.TriggerACWRElevated, s.Trigger)
	assert.Equal(t, domain.SuggestionDowngrade, s.Type)
	assert.Equal(t, plan.Weeks[0].Prescriptions[1].ID, s.WorkoutID, "targets the tempo session")
	assert.Equal(t, domain.SuggestionPending, s.Status)
	require.NotNil(t, s.Proposed.Type)
	assert.Equal(t, domain.WorkoutEasy, *s.Proposed.Type)
	// Expires at the end of the affected workout's day.
	assert.Equal(t, domain.Midnight(plan.Weeks[0].Prescriptions[1].Date).AddDate(0, 0, 1), s.ExpiresAt)
}

func TestACWRHighSupersedesElevated(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan())
	in.Metrics.ACWR = floatPtr(1.6)

	res := e.Evaluate(in)

	require.Len(t, res.Pending, 1)
	assert.Equal(t, domain.TriggerACWRHigh, res.Pending[0].Trigger)
}

func TestACWRHighWithoutQualityProposesRest(t *testing.T) {
	e := NewEngine(DefaultParams())
	plan := testPlan()
	plan.Weeks[0].Prescriptions = plan.Weeks[0].Prescriptions[:1] // easy run only
	in := baseInput(plan)
	in.Metrics.ACWR = floatPtr(1.7)

	res := e.Evaluate(in)

	require.Len(t, res.Pending, 1)
	assert.Equal(t, domain.SuggestionRest, res.Pending[0].Type)
}

func TestReadinessLowShortensNonQuality(t *testing.T) {
	e := NewEngine(DefaultParams())
	plan := testPlan()
	in := baseInput(plan)
	in.Metrics.Readiness = floatPtr(45)

	res := e.Evaluate(in)

	require.Len(t, res.Pending, 1)
	s := res.Pending[0]
	assert.Equal(t, domain.TriggerReadinessLow, s.Trigger)
	// The next workout is today's easy run: shortened, not converted.
	assert.Equal(t, plan.Weeks[0].Prescriptions[0].ID, s.WorkoutID)
	assert.Nil(t, s.Proposed.Type)
	require.NotNil(t, s.Proposed.DurationMin)
	assert.InDelta(t, 40, *s.Proposed.DurationMin, 1e-9)
}

func TestReadinessVeryLowProposesRest(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan())
	in.Metrics.Readiness = floatPtr(30)

	res := e.Evaluate(in)

	require.Len(t, res.Pending, 1)
	s := res.Pending[0]
	assert.Equal(t, domain.TriggerReadinessVeryLow, s.Trigger)
	assert.Equal(t, domain.SuggestionRest, s.Type)
	require.NotNil(t, s.Proposed.Type)
	assert.Equal(t, domain.WorkoutRest, *s.Proposed.Type)
}

func TestLowerBodyOverloadUsesProfileOverride(t *testing.T) {
	e := NewEngine(DefaultParams())
	plan := testPlan()
	in := baseInput(plan)
	in.Metrics.LowerBodyLoadAU = 250

	// Below the 300 AU default: quiet.
	assert.Empty(t, e.Evaluate(in).Pending)

	// The athlete's own 200 AU gate is tighter.
	in.Profile.LowerBodyDailyLimitAU = floatPtr(200)
	res := e.Evaluate(in)
	require.Len(t, res.Pending, 1)
	s := res.Pending[0]
	assert.Equal(t, domain.TriggerLowerBodyOverload, s.Trigger)
	assert.Equal(t, plan.Weeks[0].Prescriptions[1].ID, s.WorkoutID, "targets the next hard or long session")
}

func TestInjurySignalAutoApplies(t *testing.T) {
	e := NewEngine(DefaultParams())
	plan := testPlan()
	in := baseInput(plan)
	in.Recent = []domain.Activity{{
		Date:  domain.Midnight(evalNow),
		Sport: domain.SportRunning,
		Notes: "felt a sharp pain in left calf at km 6",
	}}

	res := e.Evaluate(in)

	assert.Empty(t, res.Pending)
	require.Len(t, res.Overrides, 1)
	s := res.Overrides[0]
	assert.Equal(t, domain.TriggerInjurySignal, s.Trigger)
	assert.Equal(t, domain.SuggestionAccepted, s.Status)
	assert.True(t, s.AutoApplied)
	require.NotNil(t, s.ResolvedAt)
	require.NotNil(t, s.Proposed.Type)
	assert.Equal(t, domain.WorkoutRest, *s.Proposed.Type)
}

func TestInjurySignalIgnoresOldNotes(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan())
	in.Recent = []domain.Activity{{
		Date:  domain.Midnight(evalNow).AddDate(0, 0, -3),
		Sport: domain.SportRunning,
		Notes: "knee pain after the descent",
	}}

	res := e.Evaluate(in)
	assert.Empty(t, res.Overrides)
}

func TestSessionDensityMovesQuality(t *testing.T) {
	e := NewEngine(DefaultParams())
	plan := testPlan()
	// Quality session tomorrow, inside the spacing window.
	plan.Weeks[0].Prescriptions[1].Date = domain.Midnight(evalNow).AddDate(0, 0, 1)
	in := baseInput(plan)
	in.Recent = []domain.Activity{
		{Date: domain.Midnight(evalNow).AddDate(0, 0, -1), Sport: domain.SportRunning, RPE: 8},
		{Date: domain.Midnight(evalNow), Sport: domain.SportRunning, RPE: 7.5},
	}

	res := e.Evaluate(in)

	require.Len(t, res.Pending, 1)
	s := res.Pending[0]
	assert.Equal(t, domain.TriggerSessionDensity, s.Trigger)
	assert.Equal(t, domain.SuggestionMove, s.Type)
	require.NotNil(t, s.Proposed.Date)
	// Last hard day + 2 days restores 48h spacing.
	assert.Equal(t, domain.Midnight(evalNow).AddDate(0, 0, 2), *s.Proposed.Date)
}

func TestSessionDensityDowngradesWhenMoveWouldNotHelp(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan()) // tempo already 2+ days out
	in.Recent = []domain.Activity{
		{Date: domain.Midnight(evalNow).AddDate(0, 0, -1), Sport: domain.SportRunning, RPE: 8},
		{Date: domain.Midnight(evalNow), Sport: domain.SportRunning, RPE: 7.5},
	}

	res := e.Evaluate(in)

	require.Len(t, res.Pending, 1)
	assert.Equal(t, domain.SuggestionDowngrade, res.Pending[0].Type)
}

func TestSessionDensityIgnoresSpacedSessions(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan())
	in.Recent = []domain.Activity{
		{Date: domain.Midnight(evalNow).AddDate(0, 0, -4), Sport: domain.SportRunning, RPE: 8},
		{Date: domain.Midnight(evalNow), Sport: domain.SportRunning, RPE: 8},
	}

	res := e.Evaluate(in)
	assert.Empty(t, res.Pending)
}

func TestEvaluateIdempotentWithOpenIndex(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan())
	in.Metrics.ACWR = floatPtr(1.6)

	first := e.Evaluate(in)
	require.Len(t, first.Pending, 1)

	// Re-running with the previous output in the index adds nothing.
	in.Open = NewOpenIndex(first.Pending, evalNow)
	second := e.Evaluate(in)
	assert.Empty(t, second.Pending)
	assert.Empty(t, second.Overrides)
}

func TestDeclinedSuggestionDoesNotRefire(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan())
	in.Metrics.ACWR = floatPtr(1.6)

	first := e.Evaluate(in)
	require.Len(t, first.Pending, 1)
	declined := first.Pending[0]
	declined.Status = domain.SuggestionDeclined

	// Declined but unexpired: the pair stays blocked.
	in.Open = NewOpenIndex([]domain.Suggestion{declined}, evalNow)
	assert.Empty(t, e.Evaluate(in).Pending)

	// Past expiry the block lifts.
	in.Open = NewOpenIndex([]domain.Suggestion{declined}, declined.ExpiresAt.Add(time.Hour))
	assert.Len(t, e.Evaluate(in).Pending, 1)
}

func TestOneSuggestionPerWorkoutPerCycle(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(testPlan())
	// Both readiness and ACWR trip; the tempo session can only collect one
	// proposal, the readiness trigger falls to today's easy run.
	in.Metrics.ACWR = floatPtr(1.6)
	in.Metrics.Readiness = floatPtr(30)

	res := e.Evaluate(in)

	seen := make(map[primitive.ObjectID]int)
	for _, s := range res.Pending {
		seen[s.WorkoutID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "workout %s targeted %d times", id.Hex(), n)
	}
}

func TestEvaluateNoPlan(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := baseInput(nil)
	in.Metrics.ACWR = floatPtr(2.0)

	res := e.Evaluate(in)
	assert.Empty(t, res.Pending)
	assert.Empty(t, res.Overrides)
}

func TestApplyToMergesFragment(t *testing.T) {
	plan := testPlan()
	tempo := &plan.Weeks[0].Prescriptions[1]
	s := domain.Suggestion{Proposed: domain.PrescriptionFragment{}}
	easy := domain.WorkoutEasy
	zone := domain.ZoneE
	km := 6.4
	s.Proposed.Type = &easy
	s.Proposed.Zone = &zone
	s.Proposed.DistanceKm = &km

	s.ApplyTo(tempo)

	assert.Equal(t, domain.WorkoutEasy, tempo.Type)
	assert.Equal(t, domain.ZoneE, tempo.Zone)
	assert.Equal(t, 6.4, tempo.DistanceKm)
	assert.False(t, tempo.Quality, "quality flag re-derived from the new type")
	assert.Equal(t, 40.0, tempo.DurationMin, "nil fragment fields stay untouched")
}
