package planner

import (
	"math"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
)

// RecoveryWeekFactor reduces a recovery week's volume relative to the
// un-reduced linear trend.
const RecoveryWeekFactor = 0.7

// TenPercentCap bounds week-over-week volume growth (the "10% rule"). It is
// applied both at recommendation time and at validation time.
const TenPercentCap = 1.10

// WeeklyVolume is one point on the plan's volume curve.
type WeeklyVolume struct {
	Index    int     `json:"index"` // 1-based
	VolumeKm float64 `json:"volumeKm"`
	Recovery bool    `json:"recovery"`
}

// ProgressVolume interpolates weekly volume linearly from startKm to peakKm
// over the given number of weeks. Weeks listed in recoveryWeeks (1-based)
// are reduced by RecoveryWeekFactor off the trend; the trend itself is not
// reduced, so the week after a recovery week steps up from the last
// non-recovery volume, not from the dip.
func ProgressVolume(startKm, peakKm float64, weeks int, recoveryWeeks []int) []WeeklyVolume {
	if weeks <= 0 {
		return nil
	}
	recovery := make(map[int]bool, len(recoveryWeeks))
	for _, w := range recoveryWeeks {
		recovery[w] = true
	}

	out := make([]WeeklyVolume, weeks)
	for i := 0; i < weeks; i++ {
		trend := startKm
		if weeks > 1 {
			trend = startKm + (peakKm-startKm)*float64(i)/float64(weeks-1)
		}
		wv := WeeklyVolume{Index: i + 1, VolumeKm: round1(trend)}
		if recovery[i+1] {
			wv.Recovery = true
			wv.VolumeKm = round1(trend * RecoveryWeekFactor)
		}
		out[i] = wv
	}
	return out
}

// DefaultRecoveryWeeks places a recovery week every fourth week, never in
// the final (taper) stretch.
func DefaultRecoveryWeeks(totalWeeks, taperWeeks int) []int {
	var out []int
	for w := 4; w <= totalWeeks-taperWeeks; w += 4 {
		out = append(out, w)
	}
	return out
}

// VolumeRecommendation is the suggested start/peak of a volume curve.
type VolumeRecommendation struct {
	StartKm float64 `json:"startKm"`
	PeakKm  float64 `json:"peakKm"`
	// CapacityKm is the CTL-implied weekly capacity band midpoint the
	// recommendation was bounded against.
	CapacityKm float64 `json:"capacityKm"`
}

// goalPeakKm is the upper bound of a sensible peak week per goal distance.
var goalPeakKm = map[domain.GoalType]float64{
	domain.Goal5K:       45,
	domain.Goal10K:      55,
	domain.GoalHalf:     65,
	domain.GoalMarathon: 80,
}

// SuggestVolume bounds the starting weekly volume to the athlete's
// CTL-implied capacity and to 110% of recent actual volume, then projects a
// peak the 10% rule can actually reach in the weeks available.
func SuggestVolume(currentCTL, goalDistanceKm float64, weeksAvailable int, recentWeeklyKm float64) VolumeRecommendation {
	// CTL is average daily systemic load in AU; for a runner it tracks
	// weekly kilometres closely enough to serve as a capacity proxy.
	capacity := currentCTL
	if capacity < 15 {
		capacity = 15 // floor for athletes with little history
	}

	start := capacity * 0.85
	if recentWeeklyKm > 0 && start > recentWeeklyKm*TenPercentCap {
		start = recentWeeklyKm * TenPercentCap
	}

	peakCap := 45.0
	for goal, cap := range goalPeakKm {
		if goal.DistanceKm() == goalDistanceKm {
			peakCap = cap
		}
	}

	// Growth weeks exclude roughly the final taper stretch.
	growthWeeks := float64(weeksAvailable) * 0.8
	reachable := start * math.Pow(TenPercentCap, growthWeeks)
	peak := math.Min(peakCap, reachable)
	if peak < start {
		peak = start
	}

	return VolumeRecommendation{
		StartKm:    round1(start),
		PeakKm:     round1(peak),
		CapacityKm: round1(capacity),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
