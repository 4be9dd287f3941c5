package geo

import "math"

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance between two coordinates in
// kilometres, using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	lat1, lon1 = toRad(lat1), toRad(lon1)
	lat2, lon2 = toRad(lat2), toRad(lon2)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
