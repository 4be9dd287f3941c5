package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Sofia to Plovdiv is roughly 133 km as the crow flies.
	d := DistanceKm(42.6977, 23.3219, 42.1354, 24.7453)
	assert.InDelta(t, 133, d, 5)

	assert.Zero(t, DistanceKm(42.6977, 23.3219, 42.6977, 23.3219))
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("sofia")
	assert.False(t, ok)

	c.Put("sofia", Coordinate{Lat: 42.6977, Lon: 23.3219})
	coord, ok := c.Get("sofia")
	assert.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 42.6977, Lon: 23.3219}, coord)

	// Overwrite keeps a single entry per key.
	c.Put("sofia", Coordinate{Lat: 1, Lon: 2})
	coord, _ = c.Get("sofia")
	assert.Equal(t, Coordinate{Lat: 1, Lon: 2}, coord)
	assert.Equal(t, 1, c.store.ItemCount())
}
