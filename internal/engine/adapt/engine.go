// Package adapt watches the daily metrics stream and proposes bounded plan
// modifications. Ordinary triggers only ever create pending suggestions for
// an external accept/decline; the narrow safety-override class (injury
// signal) is applied immediately and recorded as already accepted.
package adapt

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Params are the adaptation engine's tunable thresholds.
type Params struct {
	ReadinessLow      float64 // below this: downgrade next workout
	ReadinessVeryLow  float64 // below this: rest day
	LowerBodyLimitAU  float64 // default daily lower-body gate (profile may override)
	DensityRPE        float64 // sessions at or above this RPE count as hard
	DensityWindowDays int     // trailing window for the density trigger
	InjuryKeywords    []string
}

// DefaultParams returns the documented trigger thresholds.
func DefaultParams() Params {
	return Params{
		ReadinessLow:      50,
		ReadinessVeryLow:  35,
		LowerBodyLimitAU:  300,
		DensityRPE:        7,
		DensityWindowDays: 7,
		InjuryKeywords:    []string{"pain", "injur", "strain", "sprain", "tweak", "sharp"},
	}
}

// OpenKey indexes suggestions by (trigger class, workout). The engine
// consults this index before creating a suggestion, so repeated syncs on the
// same day never duplicate a proposal.
type OpenKey struct {
	Trigger   domain.TriggerClass
	WorkoutID primitive.ObjectID
}

// OpenIndex is the set of (trigger, workout) pairs that must not re-fire.
type OpenIndex map[OpenKey]struct{}

// NewOpenIndex builds the index from existing suggestions: every suggestion
// whose expiry is still in the future blocks its pair, whatever its status —
// a declined or expired suggestion does not re-fire within its window.
func NewOpenIndex(suggestions []domain.Suggestion, now time.Time) OpenIndex {
	idx := make(OpenIndex)
	for i := range suggestions {
		s := &suggestions[i]
		if now.Before(s.ExpiresAt) {
			idx[OpenKey{Trigger: s.Trigger, WorkoutID: s.WorkoutID}] = struct{}{}
		}
	}
	return idx
}

// Input is everything one evaluation cycle reads. The engine never touches
// storage; the caller materializes all of it first.
type Input struct {
	Now     time.Time
	Metrics domain.DailyMetrics
	Recent  []domain.Activity // trailing window, newest data included
	Plan    *domain.TrainingPlan
	Profile domain.AthleteProfile
	Open    OpenIndex
}

// Result of one evaluation cycle. Overrides are already-accepted safety
// suggestions the caller must apply to the stored plan; Pending wait for an
// external accept/decline.
type Result struct {
	Pending   []domain.Suggestion
	Overrides []domain.Suggestion
}

// Engine evaluates the trigger table. Stateless; safe to reuse.
type Engine struct {
	params Params
}

// NewEngine creates an adaptation engine, falling back to defaults for
// unset thresholds.
func NewEngine(params Params) *Engine {
	def := DefaultParams()
	if params.ReadinessLow <= 0 {
		params.ReadinessLow = def.ReadinessLow
	}
	if params.ReadinessVeryLow <= 0 {
		params.ReadinessVeryLow = def.ReadinessVeryLow
	}
	if params.LowerBodyLimitAU <= 0 {
		params.LowerBodyLimitAU = def.LowerBodyLimitAU
	}
	if params.DensityRPE <= 0 {
		params.DensityRPE = def.DensityRPE
	}
	if params.DensityWindowDays <= 0 {
		params.DensityWindowDays = def.DensityWindowDays
	}
	if len(params.InjuryKeywords) == 0 {
		params.InjuryKeywords = def.InjuryKeywords
	}
	return &Engine{params: params}
}

// Evaluate runs the trigger table once against the current metrics and
// plan. Evaluation is read-only and idempotent: with an unchanged input and
// an index containing the previous output, the result is empty.
func (e *Engine) Evaluate(in Input) Result {
	var res Result
	if in.Plan == nil || len(in.Plan.Weeks) == 0 {
		return res
	}

	// Tracks workouts already targeted this cycle so one workout never
	// collects two proposals in a single evaluation.
	targeted := make(map[primitive.ObjectID]struct{})

	emit := func(s *domain.Suggestion) {
		if s == nil {
			return
		}
		if _, dup := in.Open[OpenKey{Trigger: s.Trigger, WorkoutID: s.WorkoutID}]; dup {
			return
		}
		if _, dup := targeted[s.WorkoutID]; dup {
			return
		}
		targeted[s.WorkoutID] = struct{}{}
		if s.AutoApplied {
			res.Overrides = append(res.Overrides, *s)
		} else {
			res.Pending = append(res.Pending, *s)
		}
	}

	// Safety override first: it may consume the next workout before the
	// ordinary triggers look at it.
	emit(e.injurySignal(in))

	// ACWR triggers. High supersedes elevated.
	if in.Metrics.ACWR != nil {
		acwr := *in.Metrics.ACWR
		switch {
		case acwr >= domain.ACWRDangerMin:
			emit(e.acwrHigh(in, acwr))
		case acwr >= domain.ACWRCautionMin:
			emit(e.acwrElevated(in, acwr))
		}
	}

	// Readiness triggers. Very low supersedes low.
	if in.Metrics.Readiness != nil {
		r := *in.Metrics.Readiness
		switch {
		case r < e.params.ReadinessVeryLow:
			emit(e.readinessVeryLow(in, r))
		case r < e.params.ReadinessLow:
			emit(e.readinessLow(in, r))
		}
	}

	emit(e.lowerBodyOverload(in))
	emit(e.sessionDensity(in))

	return res
}

// --- Individual triggers ---

func (e *Engine) acwrElevated(in Input, acwr float64) *domain.Suggestion {
	target := nextWorkout(in.Plan, in.Now, qualityOnly)
	if target == nil {
		return nil
	}
	s := newSuggestion(in, target, domain.TriggerACWRElevated, acwr, domain.SuggestionDowngrade)
	s.Proposed = downgradeToEasy(target)
	s.Rationale = fmt.Sprintf("workload ratio %.2f is in the caution zone (1.3-1.5): downgrade the next quality session", acwr)
	return s
}

func (e *Engine) acwrHigh(in Input, acwr float64) *domain.Suggestion {
	target := nextWorkout(in.Plan, in.Now, qualityOnly)
	if target != nil {
		s := newSuggestion(in, target, domain.TriggerACWRHigh, acwr, domain.SuggestionDowngrade)
		s.Proposed = downgradeToEasy(target)
		s.Rationale = fmt.Sprintf("workload ratio %.2f is in the danger zone (>=1.5): convert the next quality session to easy", acwr)
		return s
	}
	// No quality session ahead: propose rest on the next session instead.
	target = nextWorkout(in.Plan, in.Now, anyRun)
	if target == nil {
		return nil
	}
	s := newSuggestion(in, target, domain.TriggerACWRHigh, acwr, domain.SuggestionRest)
	s.Proposed = restFragment()
	s.Rationale = fmt.Sprintf("workload ratio %.2f is in the danger zone (>=1.5): consider a rest day", acwr)
	return s
}

func (e *Engine) readinessLow(in Input, readiness float64) *domain.Suggestion {
	target := nextWorkout(in.Plan, in.Now, anyRun)
	if target == nil {
		return nil
	}
	s := newSuggestion(in, target, domain.TriggerReadinessLow, readiness, domain.SuggestionDowngrade)
	if target.Quality {
		s.Proposed = downgradeToEasy(target)
	} else {
		s.Proposed = shorten(target, 0.8)
	}
	s.Rationale = fmt.Sprintf("readiness %.0f is below 50: lower the intensity of the next workout", readiness)
	return s
}

func (e *Engine) readinessVeryLow(in Input, readiness float64) *domain.Suggestion {
	target := nextWorkout(in.Plan, in.Now, anyRun)
	if target == nil {
		return nil
	}
	s := newSuggestion(in, target, domain.TriggerReadinessVeryLow, readiness, domain.SuggestionRest)
	s.Proposed = restFragment()
	s.Rationale = fmt.Sprintf("readiness %.0f is below 35: take a rest day", readiness)
	return s
}

func (e *Engine) lowerBodyOverload(in Input) *domain.Suggestion {
	limit := e.params.LowerBodyLimitAU
	if in.Profile.LowerBodyDailyLimitAU != nil {
		limit = *in.Profile.LowerBodyDailyLimitAU
	}
	if in.Metrics.LowerBodyLoadAU <= limit {
		return nil
	}
	target := nextWorkout(in.Plan, in.Now, qualityOrLong)
	if target == nil {
		return nil
	}
	s := newSuggestion(in, target, domain.TriggerLowerBodyOverload, in.Metrics.LowerBodyLoadAU, domain.SuggestionDowngrade)
	s.Proposed = downgradeToEasy(target)
	s.Rationale = fmt.Sprintf("lower-body load %.0f AU exceeds the %.0f AU daily limit: gate the next hard or long session", in.Metrics.LowerBodyLoadAU, limit)
	return s
}

// injurySignal is the safety-override trigger: a flagged keyword in today's
// activity notes forces rest on the next workout immediately. The returned
// suggestion is already accepted and marked auto-applied.
func (e *Engine) injurySignal(in Input) *domain.Suggestion {
	keyword, found := e.findInjuryKeyword(in)
	if !found {
		return nil
	}
	target := nextWorkout(in.Plan, in.Now, anyRun)
	if target == nil {
		return nil
	}
	s := newSuggestion(in, target, domain.TriggerInjurySignal, 0, domain.SuggestionRest)
	s.Proposed = restFragment()
	s.Status = domain.SuggestionAccepted
	s.AutoApplied = true
	now := in.Now
	s.ResolvedAt = &now
	s.Rationale = fmt.Sprintf("injury signal (%q) detected in activity notes: rest applied automatically, review before resuming", keyword)
	return s
}

func (e *Engine) findInjuryKeyword(in Input) (string, bool) {
	today := domain.Midnight(in.Now)
	for i := range in.Recent {
		if !in.Recent[i].Day().Equal(today) {
			continue
		}
		notes := strings.ToLower(in.Recent[i].Notes)
		for _, kw := range e.params.InjuryKeywords {
			if strings.Contains(notes, kw) {
				return kw, true
			}
		}
	}
	return "", false
}

// sessionDensity fires when the trailing window holds two or more hard
// sessions closer than 48 hours apart; the next quality session gets moved
// past the spacing window.
func (e *Engine) sessionDensity(in Input) *domain.Suggestion {
	var hardDates []time.Time
	cutoff := domain.Midnight(in.Now).AddDate(0, 0, -e.params.DensityWindowDays)
	for i := range in.Recent {
		a := &in.Recent[i]
		if a.RPE >= e.params.DensityRPE && !a.Day().Before(cutoff) {
			hardDates = append(hardDates, a.Day())
		}
	}
	if len(hardDates) < 2 {
		return nil
	}
	sort.Slice(hardDates, func(i, j int) bool { return hardDates[i].Before(hardDates[j]) })

	crowded := false
	for i := 1; i < len(hardDates); i++ {
		if hardDates[i].Sub(hardDates[i-1]).Hours() < 48 {
			crowded = true
			break
		}
	}
	if !crowded {
		return nil
	}

	target := nextWorkout(in.Plan, in.Now, qualityOnly)
	if target == nil {
		return nil
	}
	lastHard := hardDates[len(hardDates)-1]
	moved := lastHard.AddDate(0, 0, 2)

	s := newSuggestion(in, target, domain.TriggerSessionDensity, float64(len(hardDates)), domain.SuggestionMove)
	if moved.After(target.Date) {
		s.Proposed = domain.PrescriptionFragment{Date: &moved}
		s.Rationale = fmt.Sprintf("%d hard sessions inside 48h in the last %d days: move the next quality session to restore spacing", len(hardDates), e.params.DensityWindowDays)
	} else {
		s.Type = domain.SuggestionDowngrade
		s.Proposed = downgradeToEasy(target)
		s.Rationale = fmt.Sprintf("%d hard sessions inside 48h in the last %d days: downgrade the next quality session", len(hardDates), e.params.DensityWindowDays)
	}
	return s
}

// --- Target selection and fragments ---

type targetFilter func(*domain.WorkoutPrescription) bool

func qualityOnly(w *domain.WorkoutPrescription) bool { return w.Quality }
func qualityOrLong(w *domain.WorkoutPrescription) bool {
	return w.Quality || w.LongRun
}
func anyRun(w *domain.WorkoutPrescription) bool { return w.Type != domain.WorkoutRest }

// nextWorkout finds the earliest prescription on or after now matching the
// filter.
func nextWorkout(plan *domain.TrainingPlan, now time.Time, match targetFilter) *domain.WorkoutPrescription {
	today := domain.Midnight(now)
	var best *domain.WorkoutPrescription
	for wi := range plan.Weeks {
		for pi := range plan.Weeks[wi].Prescriptions {
			w := &plan.Weeks[wi].Prescriptions[pi]
			if w.Date.Before(today) || !match(w) {
				continue
			}
			if best == nil || w.Date.Before(best.Date) {
				best = w
			}
		}
	}
	return best
}

// newSuggestion fills the common fields: identity, original fragment and
// expiry at the end of the affected workout's day.
func newSuggestion(in Input, target *domain.WorkoutPrescription, trigger domain.TriggerClass, value float64, kind domain.SuggestionType) *domain.Suggestion {
	return &domain.Suggestion{
		ID:           primitive.NewObjectID(),
		AthleteID:    in.Plan.AthleteID,
		PlanID:       in.Plan.ID,
		WorkoutID:    target.ID,
		Trigger:      trigger,
		TriggerValue: value,
		Type:         kind,
		Original:     fragmentOf(target),
		Status:       domain.SuggestionPending,
		CreatedAt:    in.Now,
		ExpiresAt:    domain.Midnight(target.Date).AddDate(0, 0, 1),
	}
}

func fragmentOf(w *domain.WorkoutPrescription) domain.PrescriptionFragment {
	t, d, km, z := w.Type, w.DurationMin, w.DistanceKm, w.Zone
	return domain.PrescriptionFragment{Type: &t, DurationMin: &d, DistanceKm: &km, Zone: &z}
}

// downgradeToEasy proposes converting the session to an easy run of reduced
// duration.
func downgradeToEasy(w *domain.WorkoutPrescription) domain.PrescriptionFragment {
	t := domain.WorkoutEasy
	z := domain.ZoneE
	d := w.DurationMin * 0.8
	km := w.DistanceKm * 0.8
	return domain.PrescriptionFragment{Type: &t, Zone: &z, DurationMin: &d, DistanceKm: &km}
}

func shorten(w *domain.WorkoutPrescription, factor float64) domain.PrescriptionFragment {
	d := w.DurationMin * factor
	km := w.DistanceKm * factor
	return domain.PrescriptionFragment{DurationMin: &d, DistanceKm: &km}
}

func restFragment() domain.PrescriptionFragment {
	t := domain.WorkoutRest
	zero := 0.0
	return domain.PrescriptionFragment{Type: &t, DurationMin: &zero, DistanceKm: &zero}
}
