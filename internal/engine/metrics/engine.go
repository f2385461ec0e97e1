// Package metrics folds the per-day load stream into the daily training-load
// signal: chronic/acute load, training-stress balance, acute:chronic workload
// ratio and a composite readiness score.
package metrics

import (
	"sort"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Params are the tunable constants of the metrics model. The source
// literature documents two workload-ratio conventions (42/7-day EWMA CTL/ATL
// vs 7/28-day simple-average ACWR) without reconciling them, so both sets of
// windows stay configurable rather than hardcoded.
type Params struct {
	CTLDays float64 // EWMA time constant for chronic load
	ATLDays float64 // EWMA time constant for acute load

	ACWRAcuteDays      int // simple rolling-average window, acute side
	ACWRChronicDays    int // simple rolling-average window, chronic side
	ACWRMinHistoryDays int // days of history required before ACWR is defined

	// Readiness composite weights. Each contribution is clamped to
	// [0, weight] and the sum is clamped to [0, 100]; monotonicity in TSB
	// and in the acute/chronic trend is the contract, the exact split is a
	// tuning choice.
	ReadinessTSBWeight   float64
	ReadinessTrendWeight float64
}

// DefaultParams returns the documented model constants.
func DefaultParams() Params {
	return Params{
		CTLDays:              42,
		ATLDays:              7,
		ACWRAcuteDays:        7,
		ACWRChronicDays:      28,
		ACWRMinHistoryDays:   28,
		ReadinessTSBWeight:   60,
		ReadinessTrendWeight: 40,
	}
}

// DayLoad is the summed per-channel load of one calendar day.
type DayLoad struct {
	Date        time.Time // UTC midnight
	SystemicAU  float64
	LowerBodyAU float64
}

// Engine computes DailyMetrics sequences. It holds no state between calls;
// Recompute is a pure fold over the day stream.
type Engine struct {
	params Params
}

// NewEngine creates a metrics engine, falling back to defaults for unset
// window parameters.
func NewEngine(params Params) *Engine {
	def := DefaultParams()
	if params.CTLDays <= 0 {
		params.CTLDays = def.CTLDays
	}
	if params.ATLDays <= 0 {
		params.ATLDays = def.ATLDays
	}
	if params.ACWRAcuteDays <= 0 {
		params.ACWRAcuteDays = def.ACWRAcuteDays
	}
	if params.ACWRChronicDays <= 0 {
		params.ACWRChronicDays = def.ACWRChronicDays
	}
	if params.ACWRMinHistoryDays <= 0 {
		params.ACWRMinHistoryDays = def.ACWRMinHistoryDays
	}
	if params.ReadinessTSBWeight <= 0 {
		params.ReadinessTSBWeight = def.ReadinessTSBWeight
	}
	if params.ReadinessTrendWeight <= 0 {
		params.ReadinessTrendWeight = def.ReadinessTrendWeight
	}
	return &Engine{params: params}
}

// Params returns the engine's effective constants.
func (e *Engine) Params() Params {
	return e.params
}

// AggregateDays sums activity loads per calendar day. Input order does not
// matter; the output is sorted by date with one entry per day that has at
// least one activity.
func AggregateDays(activities []domain.Activity) []DayLoad {
	byDay := make(map[time.Time]*DayLoad)
	for i := range activities {
		day := activities[i].Day()
		dl, ok := byDay[day]
		if !ok {
			dl = &DayLoad{Date: day}
			byDay[day] = dl
		}
		dl.SystemicAU += activities[i].SystemicLoadAU
		dl.LowerBodyAU += activities[i].LowerBodyLoadAU
	}
	out := make([]DayLoad, 0, len(byDay))
	for _, dl := range byDay {
		out = append(out, *dl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Recompute folds the day-load stream into one DailyMetrics per calendar day
// from the first load day through the last, filling gap days with zero load.
// Seeded at zero for an athlete with no prior history. Given the same loads
// the same sequence results, so replay after a backfill is safe.
func (e *Engine) Recompute(athleteID primitive.ObjectID, loads []DayLoad) []domain.DailyMetrics {
	if len(loads) == 0 {
		return nil
	}
	sorted := make([]DayLoad, len(loads))
	copy(sorted, loads)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	loadByDay := make(map[time.Time]DayLoad, len(sorted))
	for _, dl := range sorted {
		loadByDay[domain.Midnight(dl.Date)] = dl
	}

	start := domain.Midnight(sorted[0].Date)
	end := domain.Midnight(sorted[len(sorted)-1].Date)

	var out []domain.DailyMetrics
	var ctl, atl float64
	var systemicHistory []float64 // per-day systemic totals, oldest first

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dl := loadByDay[day] // zero-valued on rest days

		ctl += (dl.SystemicAU - ctl) / e.params.CTLDays
		atl += (dl.SystemicAU - atl) / e.params.ATLDays
		tsb := ctl - atl

		systemicHistory = append(systemicHistory, dl.SystemicAU)

		m := domain.DailyMetrics{
			AthleteID:       athleteID,
			Date:            day,
			SystemicLoadAU:  dl.SystemicAU,
			LowerBodyLoadAU: dl.LowerBodyAU,
			CTL:             ctl,
			ATL:             atl,
			TSB:             tsb,
		}
		if acwr, ok := e.acwr(systemicHistory); ok {
			m.ACWR = &acwr
		}
		if r, ok := e.readiness(ctl, atl, tsb); ok {
			m.Readiness = &r
		}
		out = append(out, m)
	}
	return out
}

// acwr computes the rolling-average workload ratio once enough history
// exists. Undefined (ok=false) below the minimum history or when the chronic
// average is zero.
func (e *Engine) acwr(history []float64) (float64, bool) {
	if len(history) < e.params.ACWRMinHistoryDays {
		return 0, false
	}
	acute := tailMean(history, e.params.ACWRAcuteDays)
	chronic := tailMean(history, e.params.ACWRChronicDays)
	if chronic == 0 {
		return 0, false
	}
	return acute / chronic, true
}

// readiness is the bounded 0-100 composite. Unavailable while CTL is still
// zero: a brand-new athlete has no baseline to score against.
//
// TSB contribution: linear from 0 at TSB=-30 to full weight at TSB=+10.
// Trend contribution: linear from full weight at ATL/CTL=0.8 down to 0 at
// ATL/CTL=1.8. Higher TSB always raises readiness; acute load rising against
// chronic always lowers it.
func (e *Engine) readiness(ctl, atl, tsb float64) (float64, bool) {
	if ctl == 0 {
		return 0, false
	}

	tsbPart := rescale(tsb, -30, 10) * e.params.ReadinessTSBWeight
	trendPart := (1 - rescale(atl/ctl, 0.8, 1.8)) * e.params.ReadinessTrendWeight

	score := tsbPart + trendPart
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// rescale maps v linearly onto [0,1] between lo and hi, clamped.
func rescale(v, lo, hi float64) float64 {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return 1
	}
	return (v - lo) / (hi - lo)
}

// tailMean averages the last n values of xs (all of xs if shorter).
func tailMean(xs []float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	start := len(xs) - n
	if start < 0 {
		start = 0
	}
	window := xs[start:]
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, x := range window {
		sum += x
	}
	return sum / float64(len(window))
}
