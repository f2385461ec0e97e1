package planner

import (
	"testing"

	"github.com/du-phan/resilio-app-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressVolumeLinearTrend(t *testing.T) {
	out := ProgressVolume(30, 50, 5, nil)

	require.Len(t, out, 5)
	assert.Equal(t, 30.0, out[0].VolumeKm)
	assert.Equal(t, 35.0, out[1].VolumeKm)
	assert.Equal(t, 50.0, out[4].VolumeKm)
	for _, wv := range out {
		assert.False(t, wv.Recovery)
	}
}

func TestProgressVolumeRecoveryDipsOffTrend(t *testing.T) {
	out := ProgressVolume(30, 50, 5, []int{3})

	// Week 3 trend is 40km; the recovery dip takes it to 28 but week 4
	// resumes from the trend, not from the dip.
	assert.True(t, out[2].Recovery)
	assert.InDelta(t, 28.0, out[2].VolumeKm, 0.1)
	assert.InDelta(t, 45.0, out[3].VolumeKm, 0.1)
}

func TestProgressVolumeSingleWeek(t *testing.T) {
	out := ProgressVolume(40, 60, 1, nil)
	require.Len(t, out, 1)
	assert.Equal(t, 40.0, out[0].VolumeKm)
}

func TestDefaultRecoveryWeeks(t *testing.T) {
	assert.Equal(t, []int{4, 8, 12}, DefaultRecoveryWeeks(16, 2))
	assert.Equal(t, []int{4}, DefaultRecoveryWeeks(8, 1))
	assert.Empty(t, DefaultRecoveryWeeks(4, 1))
}

func TestSuggestVolumeCapsAtRecentVolume(t *testing.T) {
	// High CTL but low recent volume: the 10% rule binds the start.
	rec := SuggestVolume(60, domain.Goal10K.DistanceKm(), 12, 30)

	assert.InDelta(t, 33.0, rec.StartKm, 0.1)
	assert.LessOrEqual(t, rec.PeakKm, goalPeakKm[domain.Goal10K])
}

func TestSuggestVolumeCapacityFloor(t *testing.T) {
	rec := SuggestVolume(0, domain.Goal5K.DistanceKm(), 10, 0)

	assert.Equal(t, 15.0, rec.CapacityKm)
	assert.InDelta(t, 12.8, rec.StartKm, 0.1)
	assert.GreaterOrEqual(t, rec.PeakKm, rec.StartKm)
}

func TestSuggestVolumePeakReachable(t *testing.T) {
	// Short runway: the peak must stay within what 10% weekly growth can
	// actually reach, not jump to the goal's ceiling.
	rec := SuggestVolume(30, domain.GoalMarathon.DistanceKm(), 8, 28)

	maxReachable := rec.StartKm * 2 // far looser than 1.1^6.4, sanity bound
	assert.Less(t, rec.PeakKm, maxReachable)
	assert.Less(t, rec.PeakKm, goalPeakKm[domain.GoalMarathon])
}
