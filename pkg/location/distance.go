package location

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Distance computes the great-circle distance in kilometers between two
// samples using the haversine formula.
func Distance(a, b Sample) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Significant reports whether moving from prev to next exceeds the given
// threshold in kilometers. The very first fix (prev == nil) is always
// significant so it is reported regardless of coordinates.
func Significant(prev *Sample, next Sample, thresholdKm float64) bool {
	if prev == nil {
		return true
	}
	return Distance(*prev, next) > thresholdKm
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
