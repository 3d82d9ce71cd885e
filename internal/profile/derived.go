package profile

import (
	"math"

	"github.com/rahulreddy97/freerunna/internal/physiology"
	"github.com/rahulreddy97/freerunna/internal/shared/pace"
)

// Derived holds everything recomputed from a profile change. It has no
// identity of its own: always rebuilt fresh, never diffed.
type Derived struct {
	VDOT                  float64                    `json:"vdot"`
	PredictedMarathonPace string                     `json:"predicted_marathon_pace"` // age/gender adjusted, "M:SS"/mile
	RiegelExponent        float64                    `json:"riegel_exponent"`
	MileageTax            string                     `json:"mileage_tax"`
	AgeGenderFactor       float64                    `json:"age_gender_factor"`
	TrainingPaces         physiology.TrainingPaces   `json:"training_paces"`
	HeartRateZones        []physiology.HeartRateZone `json:"heart_rate_zones"`
	MaxHeartRate          int                        `json:"max_heart_rate"`
	AccuracyScore         int                        `json:"accuracy_score"`
	BestResult            BestResult                 `json:"best_result"`
}

// ComputeDerived runs the full prediction pipeline for a normalized
// profile.
func ComputeDerived(n Normalized, calc *physiology.Calculator) Derived {
	vdot := math.Round(calc.VDOT(n.Best.TimeMinutes, n.Best.DistanceKm)*10) / 10
	exp, tax := calc.RiegelExponent(n.WeeklyMileage)

	paceMinutes := calc.PredictedMarathonPaceMinutes(n.Best.TimeMinutes, n.Best.DistanceKm, n.WeeklyMileage)
	factor := calc.AgeGenderFactor(n.Age, n.Gender)
	adjusted := paceMinutes * factor

	return Derived{
		VDOT:                  vdot,
		PredictedMarathonPace: pace.FormatMinutes(adjusted),
		RiegelExponent:        exp,
		MileageTax:            tax,
		AgeGenderFactor:       factor,
		TrainingPaces:         calc.TrainingPaces(adjusted),
		HeartRateZones:        calc.HeartRateZones(n.MaxHeartRate),
		MaxHeartRate:          n.MaxHeartRate,
		AccuracyScore: physiology.AccuracyScore(physiology.AccuracyInputs{
			HasWearable:   n.HasWearable,
			HasManualPR:   n.HasManualPR,
			WeeklyMileage: suppliedMileage(n),
			HasAge:        n.HasAge,
			HasGender:     n.HasGender,
		}),
		BestResult: n.Best,
	}
}

// suppliedMileage reports mileage only when the runner actually entered
// it; the normalize default must not inflate the accuracy score.
func suppliedMileage(n Normalized) float64 {
	if !n.HasMileage {
		return 0
	}
	return n.WeeklyMileage
}
