package physiology

// RiegelBand maps a weekly-mileage range to the Riegel exponent applied
// when scaling a shorter race to marathon distance. Lower-volume runners
// fade more over the full distance than pure Riegel scaling predicts, so
// the exponent grows as mileage drops.
type RiegelBand struct {
	MinWeeklyMiles float64 // inclusive
	MaxWeeklyMiles float64 // exclusive; 0 means unbounded
	Exponent       float64
	Descriptor     string
}

// Params holds the empirical constants behind the calculator. They come
// from named formulas (Riegel, Daniels VDOT, Tanaka) plus tuned bands, so
// they live here rather than inline in the math.
type Params struct {
	Bands            []RiegelBand
	DefaultExponent  float64
	DefaultBandLabel string

	EasyFactor     float64
	TempoFactor    float64
	IntervalFactor float64

	MarathonKm    float64
	MarathonMiles float64
}

// DefaultParams returns the production tuning.
func DefaultParams() Params {
	return Params{
		Bands: []RiegelBand{
			{MinWeeklyMiles: 0, MaxWeeklyMiles: 20, Exponent: 1.10, Descriptor: "heavy fatigue penalty (< 20 mi/week)"},
			{MinWeeklyMiles: 20, MaxWeeklyMiles: 30, Exponent: 1.08, Descriptor: "fatigue penalty (< 30 mi/week)"},
			{MinWeeklyMiles: 50, MaxWeeklyMiles: 70, Exponent: 1.05, Descriptor: "endurance bonus (50-70 mi/week)"},
			{MinWeeklyMiles: 70, MaxWeeklyMiles: 0, Exponent: 1.04, Descriptor: "elite endurance bonus (70+ mi/week)"},
		},
		DefaultExponent:  1.06,
		DefaultBandLabel: "standard endurance base",

		EasyFactor:     1.15,
		TempoFactor:    0.95,
		IntervalFactor: 0.85,

		MarathonKm:    42.195,
		MarathonMiles: 26.2,
	}
}
