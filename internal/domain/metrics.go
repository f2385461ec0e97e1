package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyMetrics is the derived training-load record for one calendar day.
// It is fully recomputable from the Activity history up to that day; the
// metrics collection is replaced wholesale on every refresh, so two refreshes
// over the same activity set produce identical sequences.
type DailyMetrics struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Date      time.Time          `bson:"date" json:"date"` // UTC midnight

	// Total per-channel load for the day (sum over activities).
	SystemicLoadAU  float64 `bson:"systemicLoadAu" json:"systemicLoadAu"`
	LowerBodyLoadAU float64 `bson:"lowerBodyLoadAu" json:"lowerBodyLoadAu"`

	CTL float64 `bson:"ctl" json:"ctl"` // chronic load, 42-day EWMA ("fitness")
	ATL float64 `bson:"atl" json:"atl"` // acute load, 7-day EWMA ("fatigue")
	TSB float64 `bson:"tsb" json:"tsb"` // ctl - atl ("form")

	// ACWR is nil until the athlete has enough history for the chronic
	// window; a zero here would read as "massively undertrained", which is
	// not what missing data means.
	ACWR *float64 `bson:"acwr,omitempty" json:"acwr"`

	// Readiness is a bounded 0-100 composite of TSB and short-term load
	// trend. Nil while CTL is still zero (brand-new athlete).
	Readiness *float64 `bson:"readiness,omitempty" json:"readiness"`
}

// ACWR risk zone boundaries.
const (
	ACWRSafeMin    = 0.8
	ACWRCautionMin = 1.3
	ACWRDangerMin  = 1.5
)

// ACWRZone names the risk band a workload ratio falls in.
type ACWRZone string

const (
	ZoneUndertrained ACWRZone = "undertrained"
	ZoneSafe         ACWRZone = "safe"
	ZoneCaution      ACWRZone = "caution"
	ZoneDanger       ACWRZone = "danger"
)

// ZoneForACWR classifies a workload ratio.
func ZoneForACWR(acwr float64) ACWRZone {
	switch {
	case acwr < ACWRSafeMin:
		return ZoneUndertrained
	case acwr < ACWRCautionMin:
		return ZoneSafe
	case acwr < ACWRDangerMin:
		return ZoneCaution
	default:
		return ZoneDanger
	}
}
