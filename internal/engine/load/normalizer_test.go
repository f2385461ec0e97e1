package load

import (
	"testing"

	"github.com/du-phan/resilio-app-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKnownSports(t *testing.T) {
	tests := []struct {
		name         string
		sport        domain.Sport
		durationMin  float64
		rpe          float64
		wantSystemic float64
		wantLower    float64
	}{
		{"moderate run", domain.SportRunning, 60, 5, 60, 60},
		{"hard run", domain.SportRunning, 60, 8, 96, 96},
		{"easy ride", domain.SportCycling, 60, 5, 51, 21},
		{"climbing session", domain.SportClimbing, 120, 6, 86.4, 14.4},
		{"swim", domain.SportSwimming, 40, 5, 30, 2},
		{"lifting", domain.SportStrength, 45, 7, 44.1, 28.35},
		{"hike", domain.SportHiking, 180, 3, 70.2, 59.4},
		{"yoga", domain.SportYoga, 60, 2, 7.2, 2.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := Normalize(tt.sport, tt.durationMin, tt.rpe)
			assert.Empty(t, warnings)
			assert.InDelta(t, tt.wantSystemic, got.SystemicAU, 1e-9)
			assert.InDelta(t, tt.wantLower, got.LowerBodyAU, 1e-9)
		})
	}
}

func TestNormalizeUnknownSportFallsBack(t *testing.T) {
	got, warnings := Normalize(domain.Sport("curling"), 60, 5)

	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "curling")
	// Conservative defaults: 0.7 systemic, 0.5 lower body.
	assert.InDelta(t, 42.0, got.SystemicAU, 1e-9)
	assert.InDelta(t, 30.0, got.LowerBodyAU, 1e-9)
}

func TestNormalizeClampsRPE(t *testing.T) {
	low, _ := Normalize(domain.SportRunning, 60, 0)
	floor, _ := Normalize(domain.SportRunning, 60, 1)
	assert.Equal(t, floor, low)

	high, _ := Normalize(domain.SportRunning, 60, 15)
	ceil, _ := Normalize(domain.SportRunning, 60, 10)
	assert.Equal(t, ceil, high)
}

func TestNormalizeNegativeDuration(t *testing.T) {
	got, warnings := Normalize(domain.SportRunning, -30, 5)

	assert.Len(t, warnings, 1)
	assert.Zero(t, got.SystemicAU)
	assert.Zero(t, got.LowerBodyAU)
}

func TestEffortFactorMonotonic(t *testing.T) {
	prev := 0.0
	for rpe := 1.0; rpe <= 10; rpe++ {
		ef := EffortFactor(rpe)
		assert.Greater(t, ef, prev, "effort factor must rise with RPE")
		prev = ef
	}
	assert.InDelta(t, 1.0, EffortFactor(5), 1e-9)
}

func TestKnownSport(t *testing.T) {
	assert.True(t, KnownSport(domain.SportRunning))
	assert.True(t, KnownSport(domain.SportYoga))
	assert.False(t, KnownSport(domain.Sport("parkour")))
}
