package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sport identifies the activity discipline. The load normalizer maps each
// sport to a pair of channel multipliers; unrecognized sports fall back to
// conservative defaults rather than failing.
type Sport string

const (
	SportRunning  Sport = "running"
	SportCycling  Sport = "cycling"
	SportClimbing Sport = "climbing"
	SportSwimming Sport = "swimming"
	SportStrength Sport = "strength"
	SportHiking   Sport = "hiking"
	SportYoga     Sport = "yoga"
)

// Activity is one recorded training session. It is immutable once ingested:
// the two load scalars are a pure function of (sport, duration, RPE) and are
// recomputed from those fields on every refresh, never hand-edited.
type Activity struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID       primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Date            time.Time          `bson:"date" json:"date"` // UTC, truncated to midnight
	Sport           Sport              `bson:"sport" json:"sport"`
	DurationMin     float64            `bson:"durationMin" json:"durationMin"`
	RPE             float64            `bson:"rpe" json:"rpe"` // 1-10 session effort
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	SystemicLoadAU  float64            `bson:"systemicLoadAu" json:"systemicLoadAu"`
	LowerBodyLoadAU float64            `bson:"lowerBodyLoadAu" json:"lowerBodyLoadAu"`
	ExportObjectKey string             `bson:"exportObjectKey,omitempty" json:"exportObjectKey,omitempty"` // S3 key of the raw export file, if archived
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// Day returns the activity date truncated to UTC midnight. All per-day
// aggregation keys off this value.
func (a *Activity) Day() time.Time {
	return Midnight(a.Date)
}

// Midnight truncates t to UTC midnight.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
