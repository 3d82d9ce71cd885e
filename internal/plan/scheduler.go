package plan

import "math"

// SchedulerParams are the progressive-overload tuning constants. Kept as
// data so the curve can be adjusted without touching the math.
type SchedulerParams struct {
	GrowthPerWeek  float64 // build-phase growth per effective week
	PeakFactor     float64 // cumulative cap over baseline
	StepBackEvery  int     // every Nth week is reduced volume
	StepBackFactor float64 // multiplier applied on step-back weeks
	TaperHigh      float64 // taper starts at this fraction of peak
	TaperLow       float64 // and decays linearly to this floor
}

func DefaultSchedulerParams() SchedulerParams {
	return SchedulerParams{
		GrowthPerWeek:  0.03,
		PeakFactor:     1.8,
		StepBackEvery:  4,
		StepBackFactor: 0.75,
		TaperHigh:      0.7,
		TaperLow:       0.3,
	}
}

// Phase labels, derived from fractional position in the plan.
const (
	PhaseBase  = "Base"
	PhaseBuild = "Build"
	PhasePeak  = "Peak"
	PhaseTaper = "Taper"
)

// TaperStart returns the first taper week: the later of the last three
// weeks and the 85% mark.
func TaperStart(totalWeeks int) int {
	byCount := totalWeeks - 3
	byFraction := int(math.Floor(float64(totalWeeks) * 0.85))
	if byCount > byFraction {
		return byCount
	}
	return byFraction
}

// Phase labels a week Base/Build/Peak/Taper from its position.
func Phase(week, totalWeeks int) string {
	switch {
	case week >= TaperStart(totalWeeks):
		return PhaseTaper
	case week >= int(math.Floor(float64(totalWeeks)*0.5)):
		return PhasePeak
	case week >= int(math.Floor(float64(totalWeeks)*0.25)):
		return PhaseBuild
	default:
		return PhaseBase
	}
}

// IsStepBackWeek reports whether the week is a designated reduced-volume
// week (every 4th week before the taper).
func (p SchedulerParams) IsStepBackWeek(week, totalWeeks int) bool {
	return week%p.StepBackEvery == 0 && week < TaperStart(totalWeeks)
}

// WeeklyTargetMiles computes the target volume for a week of the plan:
// ~3% growth per effective build week (step-backs don't count as growth),
// capped at PeakFactor over baseline, a StepBackFactor cut on step-back
// weeks, and a linear TaperHigh->TaperLow decay of the theoretical peak
// through the taper.
func (p SchedulerParams) WeeklyTargetMiles(week, totalWeeks int, baselineMiles float64) float64 {
	taperStart := TaperStart(totalWeeks)
	peakWeek := taperStart - 1

	target := baselineMiles
	if week <= peakWeek {
		buildWeeks := (week/p.StepBackEvery)*(p.StepBackEvery-1) + week%p.StepBackEvery
		factor := 1 + float64(buildWeeks)*p.GrowthPerWeek
		target = baselineMiles * math.Min(factor, p.PeakFactor)
	}

	if p.IsStepBackWeek(week, totalWeeks) {
		target *= p.StepBackFactor
	}

	if week >= taperStart {
		taperWeek := week - taperStart + 1
		taperWeeks := totalWeeks - taperStart + 1
		factor := p.TaperHigh
		if taperWeeks > 1 {
			factor -= float64(taperWeek-1) / float64(taperWeeks-1) * (p.TaperHigh - p.TaperLow)
		}
		target = baselineMiles * p.PeakFactor * math.Max(factor, p.TaperLow)
	}

	return math.Round(target)
}

// PhaseWorkoutTypes is the workout vocabulary eligible for a phase. Hill
// repeats belong to Build, Yasso 800s to Peak.
func PhaseWorkoutTypes(phase string) []WorkoutType {
	switch phase {
	case PhaseBase:
		return []WorkoutType{TypeEasy, TypeRecovery, TypeLong}
	case PhaseBuild:
		return []WorkoutType{TypeEasy, TypeTempo, TypeFartlek, TypeHillRepeats, TypeLong}
	case PhasePeak:
		return []WorkoutType{TypeEasy, TypeMarathonPace, TypeYasso800s, TypeProgression, TypeInterval, TypeLong}
	default: // Taper
		return []WorkoutType{TypeEasy, TypeTempo, TypeRecovery, TypeLong}
	}
}
