package planner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
)

// Guardrail rule names. Violations carry these so callers can key off them.
const (
	RuleIntensityDistribution = "intensity_distribution"
	RuleTempoVolume           = "tempo_volume"
	RuleIntervalVolume        = "interval_volume"
	RuleRepetitionVolume      = "repetition_volume"
	RuleLongRunShare          = "long_run_share"
	RuleLongRunDuration       = "long_run_duration"
	RuleWeeklyProgression     = "weekly_progression"
	RuleMinimumSession        = "minimum_session"
	RuleQualitySpacing        = "quality_spacing"
	RuleVolumeSum             = "volume_sum"
)

// Evidence-based bounds.
const (
	lowIntensityMinShare = 0.80 // 80/20 principle, at >=3 run days
	tempoMaxShare        = 0.10 // Daniels: T-pace <=10% of weekly volume
	intervalMaxShare     = 0.08 // Daniels: I-pace <= min(10km, 8%)
	intervalMaxKm        = 10.0
	repetitionMaxShare   = 0.05 // Daniels: R-pace <= min(8km, 5%)
	repetitionMaxKm      = 8.0
	longRunMaxShare      = 0.30 // Pfitzinger: long run <=25-30% of volume
	longRunMaxMinutes    = 150.0
	minEasyKm            = 5.0
	minLongKm            = 8.0
	qualitySpacingHours  = 48.0
)

// Validate evaluates every guardrail rule against one week, independently
// and without short-circuiting: a week breaching three rules returns three
// violations. prevWeekKm is the previous non-recovery week's volume (0 when
// unknown), used by the progression rule.
func Validate(week domain.WeekPlan, profile domain.AthleteProfile, prevWeekKm float64) []domain.GuardrailViolation {
	var out []domain.GuardrailViolation

	volume := week.RunVolumeKm()
	if volume == 0 {
		return out
	}

	out = append(out, checkVolumeSum(week)...)
	out = append(out, checkIntensityDistribution(week)...)
	out = append(out, checkPaceVolumes(week, volume)...)
	out = append(out, checkLongRun(week, volume)...)
	out = append(out, checkProgression(week, prevWeekKm)...)
	out = append(out, checkMinimumSessions(week, profile)...)
	out = append(out, checkQualitySpacing(week)...)

	return out
}

// ValidatePlan validates every week of a plan, threading the previous
// non-recovery week's volume through the progression rule and the date of
// the last quality session through the spacing rule, so hard days that
// straddle a week boundary are still caught.
func ValidatePlan(plan *domain.TrainingPlan, profile domain.AthleteProfile) []domain.GuardrailViolation {
	var out []domain.GuardrailViolation
	var prevKm float64
	var lastQuality *time.Time
	for i := range plan.Weeks {
		week := &plan.Weeks[i]
		out = append(out, Validate(*week, profile, prevKm)...)
		if !week.Recovery {
			prevKm = week.RunVolumeKm()
		}

		dates := qualityDates(*week)
		if len(dates) == 0 {
			continue
		}
		if lastQuality != nil {
			if gap := dates[0].Sub(*lastQuality).Hours(); gap < qualitySpacingHours {
				out = append(out, spacingViolation(week.Index, gap))
			}
		}
		last := dates[len(dates)-1]
		lastQuality = &last
	}
	return out
}

// severityForBreach escalates with the magnitude of the breach: less than
// 25% past the bound is a warning, beyond that danger.
func severityForBreach(actual, limit float64) domain.Severity {
	if limit == 0 {
		return domain.SeverityWarning
	}
	if math.Abs(actual/limit) >= 1.25 {
		return domain.SeverityDanger
	}
	return domain.SeverityWarning
}

func checkVolumeSum(week domain.WeekPlan) []domain.GuardrailViolation {
	if week.TargetVolumeKm <= 0 {
		return nil
	}
	actual := week.RunVolumeKm()
	drift := math.Abs(actual-week.TargetVolumeKm) / week.TargetVolumeKm
	switch {
	case drift < 0.05:
		return nil
	case drift <= 0.10:
		return []domain.GuardrailViolation{{
			Rule:      RuleVolumeSum,
			Severity:  domain.SeverityWarning,
			WeekIndex: week.Index,
			Actual:    round1(actual),
			Limit:     week.TargetVolumeKm,
			Message:   fmt.Sprintf("week %d prescriptions sum to %.1fkm vs %.1fkm target (%.0f%% off): review", week.Index, actual, week.TargetVolumeKm, drift*100),
		}}
	default:
		return []domain.GuardrailViolation{{
			Rule:      RuleVolumeSum,
			Severity:  domain.SeverityDanger,
			WeekIndex: week.Index,
			Actual:    round1(actual),
			Limit:     week.TargetVolumeKm,
			Message:   fmt.Sprintf("week %d prescriptions sum to %.1fkm vs %.1fkm target (%.0f%% off): invalid", week.Index, actual, week.TargetVolumeKm, drift*100),
		}}
	}
}

// checkIntensityDistribution enforces the 80/20 principle once the week has
// three or more run days: at least 80% of training time at low intensity.
func checkIntensityDistribution(week domain.WeekPlan) []domain.GuardrailViolation {
	runDays := 0
	var totalMin, lowMin float64
	for i := range week.Prescriptions {
		p := &week.Prescriptions[i]
		if p.Type == domain.WorkoutRest {
			continue
		}
		runDays++
		totalMin += p.DurationMin
		if p.Zone == domain.ZoneE || p.Zone == domain.ZoneM {
			lowMin += p.DurationMin
		}
	}
	if runDays < 3 || totalMin == 0 {
		return nil
	}
	share := lowMin / totalMin
	if share >= lowIntensityMinShare {
		return nil
	}
	sev := domain.SeverityWarning
	if share < 0.70 {
		sev = domain.SeverityDanger
	}
	return []domain.GuardrailViolation{{
		Rule:      RuleIntensityDistribution,
		Severity:  sev,
		WeekIndex: week.Index,
		Actual:    round1(share * 100),
		Limit:     lowIntensityMinShare * 100,
		Message:   fmt.Sprintf("week %d: only %.0f%% of training time at low intensity, 80%% minimum", week.Index, share*100),
	}}
}

// checkPaceVolumes enforces the Daniels per-zone volume caps.
func checkPaceVolumes(week domain.WeekPlan, volume float64) []domain.GuardrailViolation {
	var tempoKm, intervalKm, repKm float64
	for i := range week.Prescriptions {
		p := &week.Prescriptions[i]
		switch p.Type {
		case domain.WorkoutTempo:
			tempoKm += p.DistanceKm
		case domain.WorkoutInterval:
			intervalKm += qualityWorkKm(p)
		case domain.WorkoutRepetition:
			repKm += qualityWorkKm(p)
		}
	}

	var out []domain.GuardrailViolation
	if limit := volume * tempoMaxShare; tempoKm > limit {
		out = append(out, domain.GuardrailViolation{
			Rule: RuleTempoVolume, Severity: severityForBreach(tempoKm, limit), WeekIndex: week.Index,
			Actual: round1(tempoKm), Limit: round1(limit),
			Message: fmt.Sprintf("week %d: %.1fkm at T-pace exceeds 10%% of weekly volume (%.1fkm)", week.Index, tempoKm, limit),
		})
	}
	if limit := math.Min(intervalMaxKm, volume*intervalMaxShare); intervalKm > limit {
		out = append(out, domain.GuardrailViolation{
			Rule: RuleIntervalVolume, Severity: severityForBreach(intervalKm, limit), WeekIndex: week.Index,
			Actual: round1(intervalKm), Limit: round1(limit),
			Message: fmt.Sprintf("week %d: %.1fkm at I-pace exceeds min(10km, 8%% of volume) = %.1fkm", week.Index, intervalKm, limit),
		})
	}
	if limit := math.Min(repetitionMaxKm, volume*repetitionMaxShare); repKm > limit {
		out = append(out, domain.GuardrailViolation{
			Rule: RuleRepetitionVolume, Severity: severityForBreach(repKm, limit), WeekIndex: week.Index,
			Actual: round1(repKm), Limit: round1(limit),
			Message: fmt.Sprintf("week %d: %.1fkm at R-pace exceeds min(8km, 5%% of volume) = %.1fkm", week.Index, repKm, limit),
		})
	}
	return out
}

// qualityWorkKm counts only the work reps of an interval session; the easy
// running around them is not I/R-pace volume.
func qualityWorkKm(p *domain.WorkoutPrescription) float64 {
	if p.Structure.Kind == domain.StructureIntervals && p.Structure.Intervals != nil {
		iv := p.Structure.Intervals
		return float64(iv.Reps) * iv.WorkDistanceKm
	}
	return p.DistanceKm
}

func checkLongRun(week domain.WeekPlan, volume float64) []domain.GuardrailViolation {
	var out []domain.GuardrailViolation
	for i := range week.Prescriptions {
		p := &week.Prescriptions[i]
		if !p.LongRun {
			continue
		}
		if share := p.DistanceKm / volume; share > longRunMaxShare {
			out = append(out, domain.GuardrailViolation{
				Rule: RuleLongRunShare, Severity: severityForBreach(share, longRunMaxShare), WeekIndex: week.Index,
				Actual: round1(share * 100), Limit: longRunMaxShare * 100,
				Message: fmt.Sprintf("week %d: long run is %.0f%% of weekly volume, 30%% maximum", week.Index, share*100),
			})
		}
		if p.DurationMin > longRunMaxMinutes {
			out = append(out, domain.GuardrailViolation{
				Rule: RuleLongRunDuration, Severity: severityForBreach(p.DurationMin, longRunMaxMinutes), WeekIndex: week.Index,
				Actual: round1(p.DurationMin), Limit: longRunMaxMinutes,
				Message: fmt.Sprintf("week %d: long run of %.0f minutes exceeds the 150-minute cap", week.Index, p.DurationMin),
			})
		}
	}
	return out
}

func checkProgression(week domain.WeekPlan, prevWeekKm float64) []domain.GuardrailViolation {
	if prevWeekKm <= 0 || week.Recovery {
		return nil
	}
	volume := week.RunVolumeKm()
	limit := prevWeekKm * TenPercentCap
	if volume <= limit {
		return nil
	}
	increase := (volume/prevWeekKm - 1) * 100
	sev := domain.SeverityWarning
	if increase > 20 {
		sev = domain.SeverityDanger
	}
	return []domain.GuardrailViolation{{
		Rule:      RuleWeeklyProgression,
		Severity:  sev,
		WeekIndex: week.Index,
		Actual:    round1(volume),
		Limit:     round1(limit),
		Message:   fmt.Sprintf("week %d: volume up %.0f%% over previous non-recovery week, 10%% maximum", week.Index, increase),
	}}
}

// checkMinimumSessions flags sessions too short to be worth scheduling:
// easy runs below 5km and long runs below 8km, or below 80% of the
// athlete's observed typical distances when those are known.
func checkMinimumSessions(week domain.WeekPlan, profile domain.AthleteProfile) []domain.GuardrailViolation {
	easyMin := minEasyKm
	if profile.TypicalEasyKm != nil {
		easyMin = *profile.TypicalEasyKm * 0.8
	}
	longMin := minLongKm
	if profile.TypicalLongKm != nil {
		longMin = *profile.TypicalLongKm * 0.8
	}

	var out []domain.GuardrailViolation
	for i := range week.Prescriptions {
		p := &week.Prescriptions[i]
		var min float64
		switch {
		case p.LongRun:
			min = longMin
		case p.Type == domain.WorkoutEasy:
			min = easyMin
		default:
			continue
		}
		if p.DistanceKm >= min {
			continue
		}
		out = append(out, domain.GuardrailViolation{
			Rule: RuleMinimumSession, Severity: domain.SeverityInfo, WeekIndex: week.Index,
			Actual: round1(p.DistanceKm), Limit: round1(min),
			Message: fmt.Sprintf("week %d: %s of %.1fkm is below the %.1fkm feasibility minimum", week.Index, p.Type, p.DistanceKm, min),
		})
	}
	return out
}

// checkQualitySpacing enforces 48 hours between quality sessions within one
// week. ValidatePlan additionally checks the gap across week boundaries.
func checkQualitySpacing(week domain.WeekPlan) []domain.GuardrailViolation {
	dates := qualityDates(week)
	if len(dates) < 2 {
		return nil
	}
	var out []domain.GuardrailViolation
	for i := 1; i < len(dates); i++ {
		if gap := dates[i].Sub(dates[i-1]).Hours(); gap < qualitySpacingHours {
			out = append(out, spacingViolation(week.Index, gap))
		}
	}
	return out
}

// qualityDates returns the dates of the week's quality sessions in
// chronological order.
func qualityDates(week domain.WeekPlan) []time.Time {
	var dates []time.Time
	for i := range week.Prescriptions {
		if week.Prescriptions[i].Quality {
			dates = append(dates, week.Prescriptions[i].Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func spacingViolation(weekIndex int, gap float64) domain.GuardrailViolation {
	sev := domain.SeverityWarning
	if gap < 24 {
		sev = domain.SeverityDanger
	}
	return domain.GuardrailViolation{
		Rule: RuleQualitySpacing, Severity: sev, WeekIndex: weekIndex,
		Actual: round1(gap), Limit: qualitySpacingHours,
		Message: fmt.Sprintf("week %d: quality sessions %.0fh apart, 48h minimum", weekIndex, gap),
	}
}
