package profile

import (
	"time"

	"github.com/rahulreddy97/freerunna/internal/physiology"
	"github.com/rahulreddy97/freerunna/internal/shared/pace"
)

// PR source priority, highest first. Exactly one best result is selected;
// lower-priority results are ignored even when present.
const (
	SourceWearable   = "wearable_5k"
	SourceManual5K   = "manual_5k"
	SourceManual10K  = "manual_10k"
	SourceManualHalf = "manual_half"
	SourceEstimate   = "estimate"
)

// Defaults applied by Normalize. Consolidated here so every component
// downstream agrees on them.
const (
	defaultAge           = 30
	defaultGender        = "male"
	defaultWeeklyMileage = 25.0
	defaultBest5KMinutes = 25.0
)

// Runner is the stored profile. Optional fields are pointers so that
// "not supplied" is distinguishable from zero; this feeds the accuracy
// score. The profile is owned by the account-management collaborator;
// this service only reads it and writes back derived metrics.
type Runner struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Age           *int      `json:"age,omitempty"`
	Gender        *string   `json:"gender,omitempty"`
	WeeklyMileage *float64  `json:"weekly_mileage,omitempty"`
	MaxHeartRate  *int      `json:"max_heart_rate,omitempty"`
	StravaLink    string    `json:"strava_link,omitempty"`
	TerraAPIKey   string    `json:"-"`
	Best5KMinutes *float64  `json:"best_5k_minutes,omitempty"` // wearable-derived
	ManualPRs     ManualPRs `json:"manual_prs"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ManualPRs are user-entered race results as "MM:SS" / "H:MM:SS" strings.
type ManualPRs struct {
	FiveK        string `json:"five_k,omitempty"`
	TenK         string `json:"ten_k,omitempty"`
	HalfMarathon string `json:"half_marathon,omitempty"`
	Marathon     string `json:"marathon,omitempty"`
}

// BestResult is the single race result all predictions are based on.
type BestResult struct {
	TimeMinutes float64 `json:"time_minutes"`
	DistanceKm  float64 `json:"distance_km"`
	Source      string  `json:"source"`
}

// Normalized is a Runner with every default applied exactly once.
// Downstream math never re-derives defaults ad hoc.
type Normalized struct {
	Age           int
	Gender        string
	WeeklyMileage float64
	MaxHeartRate  int
	Best          BestResult
	HasWearable   bool
	HasManualPR   bool
	HasMileage    bool
	HasAge        bool
	HasGender     bool
}

// Normalize applies defaults and selects the best result by strict
// priority: wearable 5K > manual 5K > manual 10K > manual half >
// generic estimate.
func (r Runner) Normalize() Normalized {
	n := Normalized{
		Age:           defaultAge,
		Gender:        defaultGender,
		WeeklyMileage: defaultWeeklyMileage,
		HasWearable:   r.StravaLink != "" || r.TerraAPIKey != "",
	}
	if r.Age != nil && *r.Age > 0 {
		n.Age = *r.Age
		n.HasAge = true
	}
	if r.Gender != nil && *r.Gender != "" {
		n.Gender = *r.Gender
		n.HasGender = true
	}
	if r.WeeklyMileage != nil && *r.WeeklyMileage > 0 {
		n.WeeklyMileage = *r.WeeklyMileage
		n.HasMileage = true
	}
	if r.MaxHeartRate != nil && *r.MaxHeartRate > 0 {
		n.MaxHeartRate = *r.MaxHeartRate
	} else {
		n.MaxHeartRate = physiology.TanakaMaxHR(n.Age)
	}
	n.HasManualPR = r.ManualPRs.FiveK != "" || r.ManualPRs.TenK != "" || r.ManualPRs.HalfMarathon != ""

	n.Best = r.bestResult(n.HasWearable)
	return n
}

func (r Runner) bestResult(hasWearable bool) BestResult {
	if hasWearable && r.Best5KMinutes != nil && *r.Best5KMinutes > 0 {
		return BestResult{TimeMinutes: *r.Best5KMinutes, DistanceKm: 5, Source: SourceWearable}
	}
	if m := pace.ParseToMinutes(r.ManualPRs.FiveK); m > 0 {
		return BestResult{TimeMinutes: m, DistanceKm: 5, Source: SourceManual5K}
	}
	if m := pace.ParseToMinutes(r.ManualPRs.TenK); m > 0 {
		return BestResult{TimeMinutes: m, DistanceKm: 10, Source: SourceManual10K}
	}
	if m := pace.ParseToMinutes(r.ManualPRs.HalfMarathon); m > 0 {
		return BestResult{TimeMinutes: m, DistanceKm: 21.0975, Source: SourceManualHalf}
	}
	return BestResult{TimeMinutes: defaultBest5KMinutes, DistanceKm: 5, Source: SourceEstimate}
}

// DataQuality is a coarse label passed to the workout producer.
func (n Normalized) DataQuality() string {
	switch {
	case n.HasWearable:
		return "HIGH (wearable connected)"
	case n.HasManualPR:
		return "MEDIUM (manual PRs provided)"
	default:
		return "LOW (using estimates)"
	}
}

// GenerationProgress mirrors the plan-generation state persisted on the
// profile so clients can poll while chunks stream in.
type GenerationProgress struct {
	CurrentWeek int       `json:"current_week"`
	TotalWeeks  int       `json:"total_weeks"`
	Status      string    `json:"status"` // generating | completed | failed
	StartedAt   time.Time `json:"started_at"`
}
