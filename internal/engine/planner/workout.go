package planner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnknownWorkoutType is returned for workout types the toolkit has no
// prescription template for. Unknown types are a validation error, never a
// silent default.
var ErrUnknownWorkoutType = errors.New("unknown workout type")

// ConstructWorkout builds a fully populated prescription for the requested
// type and duration, with paces and HR bands looked up from the athlete's
// VDOT. The returned prescription is never partial: distance, zone, HR band
// and structure are always set for non-rest types.
func ConstructWorkout(workoutType domain.WorkoutType, durationMin float64, profile domain.AthleteProfile) (domain.WorkoutPrescription, error) {
	if durationMin < 0 {
		return domain.WorkoutPrescription{}, fmt.Errorf("negative duration %.1f", durationMin)
	}
	paces := PacesForVDOT(profile.VDOT)

	w := domain.WorkoutPrescription{
		ID:          primitive.NewObjectID(),
		Type:        workoutType,
		DurationMin: durationMin,
		Quality:     workoutType.IsQuality(),
		LongRun:     workoutType == domain.WorkoutLong,
	}

	switch workoutType {
	case domain.WorkoutEasy, domain.WorkoutLong:
		w.Zone = domain.ZoneE
		w.Structure = continuous(durationMin/paces.Easy.Mid(), paces.Easy)

	case domain.WorkoutRecovery:
		// Recovery runs sit at the slow edge of the easy band.
		pace := domain.PaceRange{
			FastMinPerKm: paces.Easy.SlowMinPerKm,
			SlowMinPerKm: paces.Easy.SlowMinPerKm + 0.5,
		}
		w.Zone = domain.ZoneE
		w.Structure = continuous(durationMin/pace.Mid(), pace)

	case domain.WorkoutTempo:
		pace := paceBand(paces.Threshold)
		w.Zone = domain.ZoneT
		w.Structure = continuous(durationMin/pace.Mid(), pace)

	case domain.WorkoutInterval:
		w.Zone = domain.ZoneI
		w.Structure = intervals(durationMin, 1.0, paceBand(paces.Interval), 2.5, paces.Easy)

	case domain.WorkoutRepetition:
		w.Zone = domain.ZoneR
		w.Structure = intervals(durationMin, 0.4, paceBand(paces.Repetition), 2.0, paces.Easy)

	case domain.WorkoutRest:
		w.Zone = domain.ZoneE
		w.DurationMin = 0
		w.Structure = domain.WorkoutStructure{
			Kind:       domain.StructureContinuous,
			Continuous: &domain.ContinuousSegment{},
		}
		return w, nil

	default:
		return domain.WorkoutPrescription{}, fmt.Errorf("%w: %q", ErrUnknownWorkoutType, workoutType)
	}

	w.TargetHR = hrRangeForZone(w.Zone)
	w.DistanceKm = structureDistance(w.Structure)
	return w, nil
}

// continuous wraps a steady segment of the given distance and pace band.
func continuous(distanceKm float64, pace domain.PaceRange) domain.WorkoutStructure {
	return domain.WorkoutStructure{
		Kind: domain.StructureContinuous,
		Continuous: &domain.ContinuousSegment{
			DistanceKm: round2(distanceKm),
			Pace:       pace,
		},
	}
}

// intervals splits the session into warmup/cooldown at easy pace plus
// work reps of repKm at workPace with fixed recoveries. Roughly a third of
// the session is quality work; the rest is easy running around it.
func intervals(durationMin, repKm float64, workPace domain.PaceRange, recoveryMin float64, easy domain.PaceRange) domain.WorkoutStructure {
	repTime := repKm * workPace.Mid()
	workBudget := durationMin / 3
	reps := int(math.Round(workBudget / repTime))
	if reps < 3 {
		reps = 3
	}
	return domain.WorkoutStructure{
		Kind: domain.StructureIntervals,
		Intervals: &domain.IntervalSet{
			Reps:           reps,
			WorkDistanceKm: repKm,
			WorkPace:       workPace,
			RecoveryMin:    recoveryMin,
		},
	}
}

// structureDistance computes the total session distance. For interval sets
// the surrounding easy running is counted at easy pace so the prescription's
// distance reflects the whole session, not just the reps.
func structureDistance(s domain.WorkoutStructure) float64 {
	switch s.Kind {
	case domain.StructureContinuous:
		return s.Continuous.DistanceKm
	case domain.StructureIntervals:
		iv := s.Intervals
		return round2(float64(iv.Reps) * iv.WorkDistanceKm * 2.2) // reps + easy running around them
	default:
		return 0
	}
}

// paceBand widens a single target pace into a ±3% band.
func paceBand(pace float64) domain.PaceRange {
	return domain.PaceRange{
		FastMinPerKm: round2(pace * 0.97),
		SlowMinPerKm: round2(pace * 1.03),
	}
}

// BuildWeek lays out one week's prescriptions so their distances sum to the
// target volume: a long run, an optional phase-dependent quality session and
// easy runs filling the remainder. The residual after construction lands on
// the last easy run so the volume-sum invariant holds exactly.
func BuildWeek(index int, phase domain.Phase, startDate time.Time, volumeKm float64, recovery bool, profile domain.AthleteProfile) (domain.WeekPlan, error) {
	week := domain.WeekPlan{
		Index:          index,
		Phase:          phase,
		StartDate:      domain.Midnight(startDate),
		TargetVolumeKm: volumeKm,
		Recovery:       recovery,
	}
	if volumeKm <= 0 {
		return week, nil
	}
	paces := PacesForVDOT(profile.VDOT)

	runDays := profile.Constraints.MaxRunDaysPerWeek
	if runDays <= 0 {
		runDays = 4
	}
	if runDays > 7 {
		runDays = 7
	}

	// Long run: just over a quarter of the week, capped by the 150-minute
	// guardrail and the athlete's max session constraint.
	longKm := volumeKm * 0.25
	maxLongMin := 150.0
	if profile.Constraints.MaxSessionDuration > 0 && profile.Constraints.MaxSessionDuration < maxLongMin {
		maxLongMin = profile.Constraints.MaxSessionDuration
	}
	if longCap := maxLongMin / paces.Easy.Mid(); longKm > longCap {
		longKm = longCap
	}

	// Quality session by phase; recovery weeks drop quality entirely.
	qualityType, qualityShare := qualityForPhase(phase)
	if recovery {
		qualityType = ""
	}

	var prescriptions []domain.WorkoutPrescription

	long, err := ConstructWorkout(domain.WorkoutLong, longKm*paces.Easy.Mid(), profile)
	if err != nil {
		return week, err
	}
	long.Date = week.StartDate.AddDate(0, 0, 6) // Sunday
	prescriptions = append(prescriptions, long)

	var qualityKm float64
	if qualityType != "" {
		qualityKm = volumeKm * qualityShare
		q, err := ConstructWorkout(qualityType, qualityKm*paceForQuality(qualityType, paces), profile)
		if err != nil {
			return week, err
		}
		q.Date = week.StartDate.AddDate(0, 0, 2) // Wednesday, 48h+ from the long run
		prescriptions = append(prescriptions, q)
	}

	// Easy runs fill whatever volume the long and quality sessions left.
	easyTotal := volumeKm - totalDistance(prescriptions)
	easyDays := runDays - len(prescriptions)
	if easyDays < 1 {
		easyDays = 1
	}
	// Avoid prescribing token runs below the feasibility minimum.
	for easyDays > 1 && easyTotal/float64(easyDays) < 5 {
		easyDays--
	}
	easySlots := []int{1, 4, 5, 0, 3} // Tue, Fri, Sat, Mon, Thu
	if qualityType == "" {
		easySlots = append(easySlots, 2) // Wednesday is free without a quality session
	}
	if easyDays > len(easySlots) {
		easyDays = len(easySlots)
	}
	for i := 0; i < easyDays && easyTotal > 0; i++ {
		km := easyTotal / float64(easyDays-i)
		e, err := ConstructWorkout(domain.WorkoutEasy, km*paces.Easy.Mid(), profile)
		if err != nil {
			return week, err
		}
		e.Date = week.StartDate.AddDate(0, 0, easySlots[i])
		prescriptions = append(prescriptions, e)
		easyTotal -= e.DistanceKm
	}

	// Residual from rounding lands on the last prescription so the week sums
	// to its target exactly.
	if n := len(prescriptions); n > 0 {
		last := &prescriptions[n-1]
		residual := volumeKm - totalDistance(prescriptions)
		if last.Structure.Kind == domain.StructureContinuous && last.DistanceKm+residual > 0 {
			last.DistanceKm = round2(last.DistanceKm + residual)
			last.Structure.Continuous.DistanceKm = last.DistanceKm
			last.DurationMin = round2(last.DistanceKm * last.Structure.Continuous.Pace.Mid())
		}
	}

	week.Prescriptions = prescriptions
	return week, nil
}

// qualityForPhase returns the phase's quality session type and its share of
// weekly volume. Base weeks carry no quality work.
func qualityForPhase(phase domain.Phase) (domain.WorkoutType, float64) {
	switch phase {
	case domain.PhaseBuild:
		return domain.WorkoutTempo, 0.09
	case domain.PhasePeak:
		return domain.WorkoutInterval, 0.07
	case domain.PhaseTaper:
		return domain.WorkoutTempo, 0.05
	default:
		return "", 0
	}
}

func paceForQuality(t domain.WorkoutType, paces TrainingPaces) float64 {
	switch t {
	case domain.WorkoutInterval:
		// Interval distance includes the easy running around the reps, so
		// the effective whole-session pace is close to easy pace.
		return paces.Easy.Mid()
	case domain.WorkoutRepetition:
		return paces.Easy.Mid()
	default:
		return paces.Threshold
	}
}

func totalDistance(ps []domain.WorkoutPrescription) float64 {
	var sum float64
	for i := range ps {
		sum += ps[i].DistanceKm
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
