package domain

import "time"

// GoalType identifies the target race distance.
type GoalType string

const (
	Goal5K       GoalType = "5k"
	Goal10K      GoalType = "10k"
	GoalHalf     GoalType = "half_marathon"
	GoalMarathon GoalType = "marathon"
)

// DistanceKm returns the race distance for the goal, or 0 for an unknown goal.
func (g GoalType) DistanceKm() float64 {
	switch g {
	case Goal5K:
		return 5
	case Goal10K:
		return 10
	case GoalHalf:
		return 21.1
	case GoalMarathon:
		return 42.2
	default:
		return 0
	}
}

// ConflictPolicy controls how multi-sport scheduling conflicts are resolved
// when a run and another sport compete for the same day.
type ConflictPolicy string

const (
	ConflictPreferRun   ConflictPolicy = "prefer_run"
	ConflictPreferOther ConflictPolicy = "prefer_other"
	ConflictBalance     ConflictPolicy = "balance"
)

// Goal is the athlete's target race.
type Goal struct {
	Type          GoalType  `bson:"type" json:"type"`
	TargetDate    time.Time `bson:"targetDate" json:"targetDate"`
	TargetTimeMin *float64  `bson:"targetTimeMin,omitempty" json:"targetTimeMin,omitempty"` // optional finish time, minutes
}

// Constraints bound what the plan toolkit may schedule.
type Constraints struct {
	MinRunDaysPerWeek  int            `bson:"minRunDaysPerWeek" json:"minRunDaysPerWeek"`
	MaxRunDaysPerWeek  int            `bson:"maxRunDaysPerWeek" json:"maxRunDaysPerWeek"`
	MaxSessionDuration float64        `bson:"maxSessionDurationMin" json:"maxSessionDurationMin"` // minutes
	AvailableDays      []time.Weekday `bson:"availableDays,omitempty" json:"availableDays,omitempty"`
}

// AthleteProfile is the athlete's planning snapshot: goal, constraints, VDOT
// baseline and multi-sport policy. It is read-only for the engines; only the
// explicit profile-update operation mutates it.
type AthleteProfile struct {
	Goal           *Goal          `bson:"goal,omitempty" json:"goal,omitempty"`
	Constraints    Constraints    `bson:"constraints" json:"constraints"`
	VDOT           float64        `bson:"vdot" json:"vdot"`
	ConflictPolicy ConflictPolicy `bson:"conflictPolicy" json:"conflictPolicy"`

	// Optional athlete-specific override of the daily lower-body load gate.
	LowerBodyDailyLimitAU *float64 `bson:"lowerBodyDailyLimitAu,omitempty" json:"lowerBodyDailyLimitAu,omitempty"`

	// Observed typical distances, used to scale minimum-session guardrails
	// when known.
	TypicalEasyKm *float64 `bson:"typicalEasyKm,omitempty" json:"typicalEasyKm,omitempty"`
	TypicalLongKm *float64 `bson:"typicalLongKm,omitempty" json:"typicalLongKm,omitempty"`
}
