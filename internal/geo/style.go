package geo

import "math"

// styleRadius is the spread applied for the style offset, roughly seven
// metres at the equator. Fixed on purpose: markers for the same venue must
// land at the same distance regardless of who created the record.
const styleRadius = 0.000063

// styleAngles maps each dance style to a compass bearing on the circle around
// a venue's base point.
var styleAngles = map[string]float64{
	"salsa":      45,  // northeast
	"bachata":    135, // southeast
	"kizomba":    225, // southwest
	"zouk":       315, // northwest
	"lets_party": 0,   // north
}

// StyleAngle is a total function from style names to bearings in [0, 360).
// Styles missing from the table get the slot after the known ones, evenly
// re-spaced, so no style string can produce an undefined position and the
// same string always maps to the same angle.
func StyleAngle(style string) float64 {
	if angle, ok := styleAngles[Normalize(style)]; ok {
		return angle
	}
	n := len(styleAngles) + 1
	return float64(n-1) * (360.0 / float64(n))
}

// offset converts a compass bearing and radius to lat/lon deltas. Bearings
// follow map convention: 0°=north means +lat, 90°=east means +lon.
func offset(angleDeg, radius float64) (dLat, dLon float64) {
	rad := angleDeg * math.Pi / 180
	return radius * math.Cos(rad), radius * math.Sin(rad)
}

// DisplaceByStyle shifts a base point onto the style's sector of the circle
// around the venue, separating same-venue markers of different styles. Pure
// function, no I/O.
func DisplaceByStyle(lat, lon float64, style string) Coordinate {
	dLat, dLon := offset(StyleAngle(style), styleRadius)
	return Coordinate{Lat: lat + dLat, Lon: lon + dLon}
}
