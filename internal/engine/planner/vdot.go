package planner

import "github.com/du-phan/resilio-app-sub001/internal/domain"

// TrainingPaces holds the per-zone pace targets derived from a VDOT value,
// in decimal minutes per kilometre.
type TrainingPaces struct {
	Easy       domain.PaceRange
	Marathon   float64
	Threshold  float64
	Interval   float64
	Repetition float64
}

// vdotRow is one anchor row of the pace table.
type vdotRow struct {
	vdot                 float64
	easyFast, easySlow   float64
	marathon, threshold  float64
	interval, repetition float64
}

// vdotTable anchors the Daniels pace tables at 5-point steps; lookups
// interpolate linearly between rows and clamp at the ends.
var vdotTable = []vdotRow{
	{30, 7.70, 8.40, 7.05, 6.60, 6.05, 5.70},
	{35, 6.87, 7.53, 6.27, 5.88, 5.38, 5.05},
	{40, 6.19, 6.80, 5.63, 5.29, 4.84, 4.53},
	{45, 5.63, 6.20, 5.11, 4.80, 4.39, 4.10},
	{50, 5.15, 5.70, 4.68, 4.38, 4.02, 3.75},
	{55, 4.74, 5.27, 4.30, 4.04, 3.70, 3.45},
	{60, 4.38, 4.90, 3.98, 3.74, 3.43, 3.20},
}

// PacesForVDOT returns interpolated training paces for the VDOT value.
// Values outside the table clamp to the nearest anchor row.
func PacesForVDOT(vdot float64) TrainingPaces {
	first, last := vdotTable[0], vdotTable[len(vdotTable)-1]
	if vdot <= first.vdot {
		return pacesFromRow(first)
	}
	if vdot >= last.vdot {
		return pacesFromRow(last)
	}
	for i := 1; i < len(vdotTable); i++ {
		hi := vdotTable[i]
		if vdot > hi.vdot {
			continue
		}
		lo := vdotTable[i-1]
		t := (vdot - lo.vdot) / (hi.vdot - lo.vdot)
		return TrainingPaces{
			Easy: domain.PaceRange{
				FastMinPerKm: lerp(lo.easyFast, hi.easyFast, t),
				SlowMinPerKm: lerp(lo.easySlow, hi.easySlow, t),
			},
			Marathon:   lerp(lo.marathon, hi.marathon, t),
			Threshold:  lerp(lo.threshold, hi.threshold, t),
			Interval:   lerp(lo.interval, hi.interval, t),
			Repetition: lerp(lo.repetition, hi.repetition, t),
		}
	}
	return pacesFromRow(last)
}

func pacesFromRow(r vdotRow) TrainingPaces {
	return TrainingPaces{
		Easy:       domain.PaceRange{FastMinPerKm: r.easyFast, SlowMinPerKm: r.easySlow},
		Marathon:   r.marathon,
		Threshold:  r.threshold,
		Interval:   r.interval,
		Repetition: r.repetition,
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// hrRangeForZone maps an intensity zone to its target band as % of max HR.
func hrRangeForZone(zone domain.IntensityZone) domain.HRRange {
	switch zone {
	case domain.ZoneE:
		return domain.HRRange{LowPct: 65, HighPct: 79}
	case domain.ZoneM:
		return domain.HRRange{LowPct: 80, HighPct: 89}
	case domain.ZoneT:
		return domain.HRRange{LowPct: 88, HighPct: 92}
	case domain.ZoneI:
		return domain.HRRange{LowPct: 95, HighPct: 100}
	case domain.ZoneR:
		return domain.HRRange{LowPct: 95, HighPct: 100}
	default:
		return domain.HRRange{}
	}
}
