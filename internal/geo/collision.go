package geo

// collisionRadius spreads same-style duplicates around a smaller circle
// inside the style sector, roughly two to three metres.
const collisionRadius = 0.000025

// DisplaceBySibling spreads records that share venue and style evenly around
// the style-displaced point. siblingIndex is the 0-based position of this
// record within the group (insertion order), siblingCount the group size
// including the record itself. With at most one record in the group the point
// is returned unchanged.
//
// The caller computes index and count from a fresh query over existing
// records; the group is never cached because membership changes with every
// create and delete.
func DisplaceBySibling(lat, lon float64, siblingIndex, siblingCount int) Coordinate {
	if siblingCount <= 1 {
		return Coordinate{Lat: lat, Lon: lon}
	}

	angle := float64(siblingIndex) * 360.0 / float64(siblingCount)
	dLat, dLon := offset(angle, collisionRadius)
	return Coordinate{Lat: lat + dLat, Lon: lon + dLon}
}
