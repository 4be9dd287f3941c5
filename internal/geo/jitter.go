package geo

import "crypto/md5"

// Bounds describes how far a city's venues may spread from its centre, in
// degrees of latitude and longitude.
type Bounds struct {
	LatVariance float64
	LonVariance float64
}

// defaultBounds applies to cities without a tuned entry.
var defaultBounds = Bounds{LatVariance: 0.1, LonVariance: 0.1}

// cityBounds holds approximate city extents so jittered venues land inside
// the city they belong to.
var cityBounds = map[string]Bounds{
	"london":    {0.15, 0.25},
	"paris":     {0.1, 0.15},
	"berlin":    {0.12, 0.15},
	"madrid":    {0.08, 0.12},
	"barcelona": {0.08, 0.12},
	"amsterdam": {0.08, 0.12},
	"lisbon":    {0.08, 0.12},
	"rome":      {0.06, 0.08},
	"vienna":    {0.08, 0.1},
	"prague":    {0.08, 0.1},
	"warsaw":    {0.12, 0.15},
	"budapest":  {0.08, 0.1},
	"athens":    {0.08, 0.1},
	"istanbul":  {0.15, 0.25},
	"sofia":     {0.1, 0.12},
}

// BoundsFor returns the jitter bounds for a city, falling back to the default
// variance for unknown cities.
func BoundsFor(city string) Bounds {
	if b, ok := cityBounds[Normalize(city)]; ok {
		return b
	}
	return defaultBounds
}

// Jitter offsets a city-level coordinate by a hash of the venue identity so
// that venues sharing only city-level coordinates still occupy distinct,
// reproducible points on the map. The same (location, city) pair always maps
// to the same offset, across calls and across restarts, which is what makes
// the unpersisted venue cache safe to rebuild from scratch.
func Jitter(cityLat, cityLon float64, location, city string) Coordinate {
	bounds := BoundsFor(city)

	sum := md5.Sum([]byte(VenueKey(location, city)))

	// Map the first two bytes to signed fractions in [-1, 1].
	latFrac := (float64(sum[0])/255.0)*2 - 1
	lonFrac := (float64(sum[1])/255.0)*2 - 1

	return Coordinate{
		Lat: cityLat + latFrac*bounds.LatVariance,
		Lon: cityLon + lonFrac*bounds.LonVariance,
	}
}
