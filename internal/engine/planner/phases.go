// Package planner is the pure plan toolkit: phase allocation, volume
// progression, VDOT-based workout construction and guardrail validation.
// Nothing in this package performs I/O or mutates stored state.
package planner

import (
	"fmt"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
)

// phaseTemplate is a goal-specific periodization split, in fractions of the
// total plan length, plus the documented minimum plan length for the goal.
type phaseTemplate struct {
	base, build, peak, taper float64
	minWeeks                 int
}

var phaseTemplates = map[domain.GoalType]phaseTemplate{
	domain.Goal5K:       {base: 0.35, build: 0.40, peak: 0.15, taper: 0.10, minWeeks: 6},
	domain.Goal10K:      {base: 0.30, build: 0.45, peak: 0.15, taper: 0.10, minWeeks: 8},
	domain.GoalHalf:     {base: 0.30, build: 0.45, peak: 0.15, taper: 0.10, minWeeks: 12},
	domain.GoalMarathon: {base: 0.30, build: 0.40, peak: 0.20, taper: 0.10, minWeeks: 16},
}

// PhaseAllocation is the whole-week split of a plan across phases.
type PhaseAllocation struct {
	BaseWeeks  int `json:"baseWeeks"`
	BuildWeeks int `json:"buildWeeks"`
	PeakWeeks  int `json:"peakWeeks"`
	TaperWeeks int `json:"taperWeeks"`
}

// Total returns the summed week count.
func (a PhaseAllocation) Total() int {
	return a.BaseWeeks + a.BuildWeeks + a.PeakWeeks + a.TaperWeeks
}

// PhaseForWeek returns the phase of the 1-based week index.
func (a PhaseAllocation) PhaseForWeek(week int) domain.Phase {
	switch {
	case week <= a.BaseWeeks:
		return domain.PhaseBase
	case week <= a.BaseWeeks+a.BuildWeeks:
		return domain.PhaseBuild
	case week <= a.BaseWeeks+a.BuildWeeks+a.PeakWeeks:
		return domain.PhasePeak
	default:
		return domain.PhaseTaper
	}
}

// InsufficientTimeError reports a plan request below the goal's documented
// minimum length.
type InsufficientTimeError struct {
	Goal      domain.GoalType
	Requested int
	MinWeeks  int
}

func (e *InsufficientTimeError) Error() string {
	return fmt.Sprintf("insufficient time for %s: %d weeks requested, minimum is %d", e.Goal, e.Requested, e.MinWeeks)
}

// ErrUnknownGoal is returned for goal types with no template.
var ErrUnknownGoal = fmt.Errorf("unknown goal type")

// AllocatePhases splits totalWeeks into base/build/peak/taper using the
// goal's percentage template. Non-base phases round half-down so rounding
// ties always favor the base phase, and every phase gets at least one week.
func AllocatePhases(totalWeeks int, goal domain.GoalType) (PhaseAllocation, error) {
	tpl, ok := phaseTemplates[goal]
	if !ok {
		return PhaseAllocation{}, fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
	}
	if totalWeeks < tpl.minWeeks {
		return PhaseAllocation{}, &InsufficientTimeError{Goal: goal, Requested: totalWeeks, MinWeeks: tpl.minWeeks}
	}

	alloc := PhaseAllocation{
		BuildWeeks: atLeastOne(roundHalfDown(float64(totalWeeks) * tpl.build)),
		PeakWeeks:  atLeastOne(roundHalfDown(float64(totalWeeks) * tpl.peak)),
		TaperWeeks: atLeastOne(roundHalfDown(float64(totalWeeks) * tpl.taper)),
	}
	alloc.BaseWeeks = totalWeeks - alloc.BuildWeeks - alloc.PeakWeeks - alloc.TaperWeeks
	if alloc.BaseWeeks < 1 {
		// Minimum-week checks should prevent this, but never emit a plan
		// without a base phase.
		alloc.BuildWeeks -= 1 - alloc.BaseWeeks
		alloc.BaseWeeks = 1
	}
	return alloc, nil
}

// roundHalfDown rounds to the nearest integer with exact halves going down,
// leaving the leftover week to the base phase.
func roundHalfDown(v float64) int {
	n := int(v)
	if v-float64(n) > 0.5 {
		return n + 1
	}
	return n
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
