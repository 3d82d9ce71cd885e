package physiology

import (
	"math"

	"github.com/rahulreddy97/freerunna/internal/shared/pace"
)

// Calculator derives fitness predictions from a single race result. All
// methods are pure; inputs are assumed pre-validated (these are
// predictive heuristics, not safety checks) so malformed values produce
// garbage, never panics or errors.
type Calculator struct {
	p Params
}

func NewCalculator(p Params) *Calculator {
	return &Calculator{p: p}
}

// VDOT implements Jack Daniels' VO2-at-velocity over percent-VO2max
// approximation for a race of timeMinutes over distanceKm.
func (c *Calculator) VDOT(timeMinutes, distanceKm float64) float64 {
	velocity := distanceKm / timeMinutes // km per minute
	percentVO2max := 0.8 + 0.1894393*math.Exp(-0.012778*timeMinutes) +
		0.2989558*math.Exp(-0.1932605*timeMinutes)
	vo2AtVelocity := -4.60 + 0.182258*velocity*1000 +
		0.000104*math.Pow(velocity*1000, 2)
	return vo2AtVelocity / percentVO2max
}

// RiegelExponent selects the mileage-tax exponent band for a runner's
// weekly volume.
func (c *Calculator) RiegelExponent(weeklyMileage float64) (float64, string) {
	for _, b := range c.p.Bands {
		if weeklyMileage >= b.MinWeeklyMiles && (b.MaxWeeklyMiles == 0 || weeklyMileage < b.MaxWeeklyMiles) {
			return b.Exponent, b.Descriptor
		}
	}
	return c.p.DefaultExponent, c.p.DefaultBandLabel
}

// PredictedMarathonMinutes scales a PR to marathon distance using Riegel
// with the mileage-tax exponent: T2 = T1 * (42.195/D1)^exp.
func (c *Calculator) PredictedMarathonMinutes(prMinutes, prDistanceKm, weeklyMileage float64) float64 {
	exp, _ := c.RiegelExponent(weeklyMileage)
	return prMinutes * math.Pow(c.p.MarathonKm/prDistanceKm, exp)
}

// PredictedMarathonPaceMinutes returns minutes per mile for the
// predicted marathon time.
func (c *Calculator) PredictedMarathonPaceMinutes(prMinutes, prDistanceKm, weeklyMileage float64) float64 {
	return c.PredictedMarathonMinutes(prMinutes, prDistanceKm, weeklyMileage) / c.p.MarathonMiles
}

// AgeGenderFactor returns the multiplicative pace adjustment for a
// runner's demographics: slight advantage under 25, growing per-year
// penalties past 40/50/60, and a flat 5% for female runners (mirroring
// the elite women's/men's marathon gap).
func (c *Calculator) AgeGenderFactor(age int, gender string) float64 {
	factor := 1.0
	switch {
	case age < 25:
		factor = 0.98
	case age > 60:
		factor = 1.0 + 10*0.005 + 10*0.008 + float64(age-60)*0.01
	case age > 50:
		factor = 1.0 + 10*0.005 + float64(age-50)*0.008
	case age > 40:
		factor = 1.0 + float64(age-40)*0.005
	}
	if gender == "female" {
		factor *= 1.05
	}
	return factor
}

// TrainingPaces holds the three derived workout paces as "M:SS" per mile.
type TrainingPaces struct {
	Easy     string `json:"easy"`
	Tempo    string `json:"tempo"`
	Interval string `json:"interval"`
}

// TrainingPaces derives easy/tempo/interval paces from the adjusted
// marathon pace in minutes per mile.
func (c *Calculator) TrainingPaces(marathonPaceMinutes float64) TrainingPaces {
	return TrainingPaces{
		Easy:     pace.FormatMinutes(marathonPaceMinutes * c.p.EasyFactor),
		Tempo:    pace.FormatMinutes(marathonPaceMinutes * c.p.TempoFactor),
		Interval: pace.FormatMinutes(marathonPaceMinutes * c.p.IntervalFactor),
	}
}

// HeartRateZone is one of the five %max-HR training bands.
type HeartRateZone struct {
	Zone        int    `json:"zone"`
	Label       string `json:"label"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Description string `json:"description"`
}

// HeartRateZones derives the five training zones from max heart rate.
func (c *Calculator) HeartRateZones(maxHR int) []HeartRateZone {
	pct := func(f float64) int { return int(math.Round(float64(maxHR) * f)) }
	return []HeartRateZone{
		{Zone: 1, Label: "Recovery", Min: pct(0.50), Max: pct(0.60), Description: "Very light, conversation pace"},
		{Zone: 2, Label: "Easy/Aerobic", Min: pct(0.60), Max: pct(0.70), Description: "Building aerobic base"},
		{Zone: 3, Label: "Tempo", Min: pct(0.70), Max: pct(0.80), Description: "Comfortably hard"},
		{Zone: 4, Label: "Threshold", Min: pct(0.80), Max: pct(0.90), Description: "Hard, limited conversation"},
		{Zone: 5, Label: "VO2max", Min: pct(0.90), Max: maxHR, Description: "Maximum effort"},
	}
}

// Zone buckets a heart-rate sample into zones 1-5 using the same bands
// as HeartRateZones.
func (c *Calculator) Zone(bpm, maxHR int) int {
	if maxHR <= 0 {
		return 1
	}
	pct := float64(bpm) / float64(maxHR) * 100
	switch {
	case pct < 60:
		return 1
	case pct < 70:
		return 2
	case pct < 80:
		return 3
	case pct < 90:
		return 4
	default:
		return 5
	}
}

// TanakaMaxHR estimates max heart rate as 208 - 0.7*age.
func TanakaMaxHR(age int) int {
	return int(math.Round(208 - 0.7*float64(age)))
}
