package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phase is a periodization phase of a training plan.
type Phase string

const (
	PhaseBase  Phase = "base"
	PhaseBuild Phase = "build"
	PhasePeak  Phase = "peak"
	PhaseTaper Phase = "taper"
)

// WorkoutType identifies the kind of prescribed session.
type WorkoutType string

const (
	WorkoutEasy       WorkoutType = "easy"
	WorkoutLong       WorkoutType = "long"
	WorkoutTempo      WorkoutType = "tempo"      // T-pace continuous
	WorkoutInterval   WorkoutType = "interval"   // I-pace repeats
	WorkoutRepetition WorkoutType = "repetition" // R-pace repeats
	WorkoutRecovery   WorkoutType = "recovery"
	WorkoutRest       WorkoutType = "rest"
)

// IsQuality reports whether the type is a quality (high-intensity) session.
func (t WorkoutType) IsQuality() bool {
	return t == WorkoutTempo || t == WorkoutInterval || t == WorkoutRepetition
}

// IntensityZone is a Daniels training zone.
type IntensityZone string

const (
	ZoneE IntensityZone = "E" // easy
	ZoneM IntensityZone = "M" // marathon
	ZoneT IntensityZone = "T" // threshold
	ZoneI IntensityZone = "I" // interval
	ZoneR IntensityZone = "R" // repetition
)

// PaceRange is a target pace band in minutes per kilometre.
type PaceRange struct {
	FastMinPerKm float64 `bson:"fastMinPerKm" json:"fastMinPerKm"`
	SlowMinPerKm float64 `bson:"slowMinPerKm" json:"slowMinPerKm"`
}

// Mid returns the midpoint pace of the range.
func (p PaceRange) Mid() float64 {
	return (p.FastMinPerKm + p.SlowMinPerKm) / 2
}

// HRRange is a target heart-rate band as percentages of max HR.
type HRRange struct {
	LowPct  int `bson:"lowPct" json:"lowPct"`
	HighPct int `bson:"highPct" json:"highPct"`
}

// StructureKind tags the workout structure variant.
type StructureKind string

const (
	StructureContinuous StructureKind = "continuous"
	StructureIntervals  StructureKind = "intervals"
)

// WorkoutStructure is a closed tagged variant: exactly one of the payload
// fields is set, selected by Kind. This replaces the loosely-typed per-type
// dictionaries the data originally travelled as.
type WorkoutStructure struct {
	Kind       StructureKind      `bson:"kind" json:"kind"`
	Continuous *ContinuousSegment `bson:"continuous,omitempty" json:"continuous,omitempty"`
	Intervals  *IntervalSet       `bson:"intervals,omitempty" json:"intervals,omitempty"`
}

// ContinuousSegment describes a steady effort (easy, long, tempo).
type ContinuousSegment struct {
	DistanceKm float64   `bson:"distanceKm" json:"distanceKm"`
	Pace       PaceRange `bson:"pace" json:"pace"`
}

// IntervalSet describes a repeated work/recovery structure.
type IntervalSet struct {
	Reps           int       `bson:"reps" json:"reps"`
	WorkDistanceKm float64   `bson:"workDistanceKm" json:"workDistanceKm"` // per rep
	WorkPace       PaceRange `bson:"workPace" json:"workPace"`
	RecoveryMin    float64   `bson:"recoveryMin" json:"recoveryMin"` // jog/rest between reps
}

// WorkoutPrescription is one scheduled session inside a WeekPlan. The plan
// toolkit always returns it fully populated; the adaptation engine only ever
// rewrites selected fields through the suggestion-apply merge.
type WorkoutPrescription struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type        WorkoutType        `bson:"type" json:"type"`
	Date        time.Time          `bson:"date" json:"date"` // UTC midnight
	DurationMin float64            `bson:"durationMin" json:"durationMin"`
	DistanceKm  float64            `bson:"distanceKm" json:"distanceKm"`
	Zone        IntensityZone      `bson:"zone" json:"zone"`
	TargetHR    HRRange            `bson:"targetHr" json:"targetHr"`
	Structure   WorkoutStructure   `bson:"structure" json:"structure"`
	LongRun     bool               `bson:"longRun" json:"longRun"`
	Quality     bool               `bson:"quality" json:"quality"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WeekPlan is one week of a TrainingPlan.
type WeekPlan struct {
	Index          int                   `bson:"index" json:"index"` // 1-based
	Phase          Phase                 `bson:"phase" json:"phase"`
	StartDate      time.Time             `bson:"startDate" json:"startDate"` // Monday, UTC midnight
	TargetVolumeKm float64               `bson:"targetVolumeKm" json:"targetVolumeKm"`
	Recovery       bool                  `bson:"recovery" json:"recovery"`
	Prescriptions  []WorkoutPrescription `bson:"prescriptions" json:"prescriptions"`
}

// RunVolumeKm sums the prescribed running distance of the week.
func (w *WeekPlan) RunVolumeKm() float64 {
	var total float64
	for _, p := range w.Prescriptions {
		total += p.DistanceKm
	}
	return total
}

// TrainingPlan owns the ordered week sequence for one goal. At most one plan
// per athlete is active at a time.
type TrainingPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Goal      GoalType           `bson:"goal" json:"goal"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	Weeks     []WeekPlan         `bson:"weeks" json:"weeks"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FindWorkout locates a prescription by ID, returning its week index or -1.
func (p *TrainingPlan) FindWorkout(id primitive.ObjectID) (weekIdx int, w *WorkoutPrescription) {
	for wi := range p.Weeks {
		for pi := range p.Weeks[wi].Prescriptions {
			if p.Weeks[wi].Prescriptions[pi].ID == id {
				return wi, &p.Weeks[wi].Prescriptions[pi]
			}
		}
	}
	return -1, nil
}
