// Package load converts raw activities into the two load channels the
// metrics engine consumes: systemic (whole-body cardiovascular stress) and
// lower-body (impact-specific, running-relevant stress).
package load

import (
	"fmt"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
)

// Load is the pair of per-channel scalars for one activity, in arbitrary
// units (AU).
type Load struct {
	SystemicAU  float64
	LowerBodyAU float64
}

// multipliers is a per-sport pair: how much of the session effort lands on
// each channel relative to running.
type multipliers struct {
	systemic  float64
	lowerBody float64
}

// sportMultipliers maps each known sport to its channel multipliers.
// Running is the reference sport at 1.0/1.0.
var sportMultipliers = map[domain.Sport]multipliers{
	domain.SportRunning:  {1.0, 1.0},
	domain.SportCycling:  {0.85, 0.35},
	domain.SportClimbing: {0.6, 0.1},
	domain.SportSwimming: {0.75, 0.05},
	domain.SportStrength: {0.7, 0.45},
	domain.SportHiking:   {0.65, 0.55},
	domain.SportYoga:     {0.3, 0.1},
}

// defaultMultipliers is the conservative fallback for unrecognized sports:
// high enough on both channels that an unknown sport never hides real stress.
var defaultMultipliers = multipliers{0.7, 0.5}

// Normalize computes the two load scalars for one raw activity. Unknown
// sports never fail: they get the conservative default pair and a warning
// string for the caller to surface. RPE outside 1-10 is clamped.
func Normalize(sport domain.Sport, durationMin, rpe float64) (Load, []string) {
	var warnings []string

	m, ok := sportMultipliers[sport]
	if !ok {
		m = defaultMultipliers
		warnings = append(warnings, fmt.Sprintf("unknown sport %q: using default load multipliers", sport))
	}

	if durationMin < 0 {
		durationMin = 0
		warnings = append(warnings, "negative duration clamped to zero")
	}

	ef := EffortFactor(rpe)
	return Load{
		SystemicAU:  durationMin * ef * m.systemic,
		LowerBodyAU: durationMin * ef * m.lowerBody,
	}, warnings
}

// EffortFactor maps session RPE (1-10) to a strictly positive, monotonically
// increasing weight. RPE 5 is the 1.0 reference so an hour of moderate
// running yields ~60 AU.
func EffortFactor(rpe float64) float64 {
	if rpe < 1 {
		rpe = 1
	}
	if rpe > 10 {
		rpe = 10
	}
	// Linear in RPE: 0.2 at RPE 1 up to 2.0 at RPE 10, crossing 1.0 at 5.
	return rpe * 0.2
}

// KnownSport reports whether the normalizer has a multiplier pair for the
// sport, i.e. whether ingest should flag it.
func KnownSport(sport domain.Sport) bool {
	_, ok := sportMultipliers[sport]
	return ok
}
