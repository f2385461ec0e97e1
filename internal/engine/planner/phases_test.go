package planner

import (
	"errors"
	"testing"

	"github.com/du-phan/resilio-app-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatePhasesSplits(t *testing.T) {
	tests := []struct {
		name  string
		goal  domain.GoalType
		weeks int
		want  PhaseAllocation
	}{
		{"12-week 10k", domain.Goal10K, 12, PhaseAllocation{BaseWeeks: 4, BuildWeeks: 5, PeakWeeks: 2, TaperWeeks: 1}},
		{"16-week marathon", domain.GoalMarathon, 16, PhaseAllocation{BaseWeeks: 5, BuildWeeks: 6, PeakWeeks: 3, TaperWeeks: 2}},
		{"8-week 5k", domain.Goal5K, 8, PhaseAllocation{BaseWeeks: 3, BuildWeeks: 3, PeakWeeks: 1, TaperWeeks: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AllocatePhases(tt.weeks, tt.goal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.weeks, got.Total())
		})
	}
}

func TestAllocatePhasesRoundingFavorsBase(t *testing.T) {
	// 10 weeks of 5k: peak lands exactly on 1.5, the tie goes down and the
	// leftover week stays in base.
	got, err := AllocatePhases(10, domain.Goal5K)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PeakWeeks)
	assert.Equal(t, 4, got.BaseWeeks)
}

func TestAllocatePhasesEveryPhasePresent(t *testing.T) {
	for goal, tpl := range phaseTemplates {
		for weeks := tpl.minWeeks; weeks <= tpl.minWeeks+20; weeks++ {
			got, err := AllocatePhases(weeks, goal)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.BaseWeeks, 1, "%s %d weeks", goal, weeks)
			assert.GreaterOrEqual(t, got.BuildWeeks, 1, "%s %d weeks", goal, weeks)
			assert.GreaterOrEqual(t, got.PeakWeeks, 1, "%s %d weeks", goal, weeks)
			assert.GreaterOrEqual(t, got.TaperWeeks, 1, "%s %d weeks", goal, weeks)
			assert.Equal(t, weeks, got.Total(), "%s %d weeks", goal, weeks)
		}
	}
}

func TestAllocatePhasesInsufficientTime(t *testing.T) {
	_, err := AllocatePhases(12, domain.GoalMarathon)

	var insufficient *InsufficientTimeError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 12, insufficient.Requested)
	assert.Equal(t, 16, insufficient.MinWeeks)
	assert.Contains(t, insufficient.Error(), "minimum is 16")
}

func TestAllocatePhasesUnknownGoal(t *testing.T) {
	_, err := AllocatePhases(12, domain.GoalType("ultra"))
	assert.True(t, errors.Is(err, ErrUnknownGoal))
}

func TestPhaseForWeek(t *testing.T) {
	alloc := PhaseAllocation{BaseWeeks: 4, BuildWeeks: 5, PeakWeeks: 2, TaperWeeks: 1}

	assert.Equal(t, domain.PhaseBase, alloc.PhaseForWeek(1))
	assert.Equal(t, domain.PhaseBase, alloc.PhaseForWeek(4))
	assert.Equal(t, domain.PhaseBuild, alloc.PhaseForWeek(5))
	assert.Equal(t, domain.PhaseBuild, alloc.PhaseForWeek(9))
	assert.Equal(t, domain.PhasePeak, alloc.PhaseForWeek(10))
	assert.Equal(t, domain.PhasePeak, alloc.PhaseForWeek(11))
	assert.Equal(t, domain.PhaseTaper, alloc.PhaseForWeek(12))
}
