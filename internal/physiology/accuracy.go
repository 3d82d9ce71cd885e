package physiology

// AccuracyInputs captures which profile fields were actually supplied,
// independent of the defaults applied later.
type AccuracyInputs struct {
	HasWearable   bool
	HasManualPR   bool
	WeeklyMileage float64
	HasAge        bool
	HasGender     bool
}

// AccuracyScore maps profile completeness to a 0-100 confidence score.
// Purely additive so the number stays explainable to the runner.
func AccuracyScore(in AccuracyInputs) int {
	score := 50
	if in.HasWearable {
		score += 20
	}
	if in.HasManualPR {
		score += 15
	}
	if in.WeeklyMileage > 0 {
		score += 10
	}
	if in.HasAge {
		score += 3
	}
	if in.HasGender {
		score += 2
	}
	if score > 100 {
		score = 100
	}
	return score
}
