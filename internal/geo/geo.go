// Package geo assigns map coordinates to workshop and event venues.
//
// Resolution falls back through explicit admin input, the predefined-location
// table, street-level geocoding, and finally city coordinates with a
// deterministic jitter. A resolved base point is then displaced by dance style
// and by sibling position so that markers sharing a venue stay readable on the
// map.
package geo

import "strings"

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Normalize lowercases and trims a city or location name so case variants of
// the same place share cache entries and lookups.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// VenueKey builds the cache key for a (location, city) pair.
func VenueKey(location, city string) string {
	return Normalize(location) + "|" + Normalize(city)
}
