package geo

import "math"

const (
	earthRadiusKm = 6371.0
	kmPerMile     = 1.60934
)

// HaversineKm returns the great-circle distance in kilometers between
// two lat/lng pairs in degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// HaversineMiles returns the great-circle distance in miles.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineKm(lat1, lng1, lat2, lng2) / kmPerMile
}

// MilesToKm converts miles to kilometers.
func MilesToKm(miles float64) float64 {
	return miles * kmPerMile
}
