package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TriggerClass names the adaptation trigger that produced a suggestion.
type TriggerClass string

const (
	TriggerACWRElevated      TriggerClass = "acwr_elevated"
	TriggerACWRHigh          TriggerClass = "acwr_high"
	TriggerReadinessLow      TriggerClass = "readiness_low"
	TriggerReadinessVeryLow  TriggerClass = "readiness_very_low"
	TriggerLowerBodyOverload TriggerClass = "lower_body_overload"
	TriggerInjurySignal      TriggerClass = "injury_signal"
	TriggerSessionDensity    TriggerClass = "session_density"
)

// SuggestionType classifies the proposed plan modification.
type SuggestionType string

const (
	SuggestionDowngrade  SuggestionType = "downgrade"
	SuggestionSkip       SuggestionType = "skip"
	SuggestionMove       SuggestionType = "move"
	SuggestionSubstitute SuggestionType = "substitute"
	SuggestionRest       SuggestionType = "rest"
)

// SuggestionStatus is the lifecycle state. Pending is the only non-terminal
// state; accepted, declined and expired are terminal.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionDeclined SuggestionStatus = "declined"
	SuggestionExpired  SuggestionStatus = "expired"
)

// PrescriptionFragment carries the subset of WorkoutPrescription fields a
// suggestion proposes to change. Nil fields are left untouched by apply.
type PrescriptionFragment struct {
	Type        *WorkoutType   `bson:"type,omitempty" json:"type,omitempty"`
	DurationMin *float64       `bson:"durationMin,omitempty" json:"durationMin,omitempty"`
	DistanceKm  *float64       `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
	Zone        *IntensityZone `bson:"zone,omitempty" json:"zone,omitempty"`
	Date        *time.Time     `bson:"date,omitempty" json:"date,omitempty"`
}

// Suggestion is a proposed, reversible modification to a scheduled workout.
// Ordinary suggestions wait for an explicit accept/decline; the safety
// override class is applied immediately and recorded as already accepted.
// Declined and expired suggestions are retained for audit.
type Suggestion struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AthleteID    primitive.ObjectID   `bson:"athleteId" json:"athleteId"`
	PlanID       primitive.ObjectID   `bson:"planId" json:"planId"`
	WorkoutID    primitive.ObjectID   `bson:"workoutId" json:"workoutId"`
	Trigger      TriggerClass         `bson:"trigger" json:"trigger"`
	TriggerValue float64              `bson:"triggerValue" json:"triggerValue"`
	Type         SuggestionType       `bson:"suggestionType" json:"suggestionType"`
	Original     PrescriptionFragment `bson:"original" json:"original"`
	Proposed     PrescriptionFragment `bson:"proposed" json:"proposed"`
	Rationale    string               `bson:"rationale" json:"rationale"`
	Status       SuggestionStatus     `bson:"status" json:"status"`
	AutoApplied  bool                 `bson:"autoApplied" json:"autoApplied"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	ExpiresAt    time.Time            `bson:"expiresAt" json:"expiresAt"`
	ResolvedAt   *time.Time           `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// IsOpen reports whether the suggestion still blocks re-firing of its
// (trigger, workout) pair: pending and not yet past expiry.
func (s *Suggestion) IsOpen(now time.Time) bool {
	return s.Status == SuggestionPending && now.Before(s.ExpiresAt)
}

// ApplyTo merges the proposed fragment into the prescription. Only non-nil
// fragment fields are written; the quality/long-run flags are re-derived so
// the prescription stays internally consistent.
func (s *Suggestion) ApplyTo(w *WorkoutPrescription) {
	if s.Proposed.Type != nil {
		w.Type = *s.Proposed.Type
		w.Quality = w.Type.IsQuality()
		w.LongRun = w.Type == WorkoutLong
	}
	if s.Proposed.DurationMin != nil {
		w.DurationMin = *s.Proposed.DurationMin
	}
	if s.Proposed.DistanceKm != nil {
		w.DistanceKm = *s.Proposed.DistanceKm
		if w.Structure.Kind == StructureContinuous && w.Structure.Continuous != nil {
			w.Structure.Continuous.DistanceKm = *s.Proposed.DistanceKm
		}
	}
	if s.Proposed.Zone != nil {
		w.Zone = *s.Proposed.Zone
	}
	if s.Proposed.Date != nil {
		w.Date = *s.Proposed.Date
	}
}
