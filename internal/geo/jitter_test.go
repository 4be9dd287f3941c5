package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJitter_Deterministic(t *testing.T) {
	first := Jitter(42.6977, 23.3219, "Studio X", "Sofia")
	second := Jitter(42.6977, 23.3219, "Studio X", "Sofia")

	assert.Equal(t, first, second, "same venue must always map to the same jittered point")
}

func TestJitter_CaseInsensitive(t *testing.T) {
	lower := Jitter(42.6977, 23.3219, "studio x", "sofia")
	mixed := Jitter(42.6977, 23.3219, "  Studio X ", "SOFIA")

	assert.Equal(t, lower, mixed, "case and whitespace variants must share an offset")
}

func TestJitter_WithinBounds(t *testing.T) {
	bounds := BoundsFor("Sofia")
	coord := Jitter(42.6977, 23.3219, "Club Eleven", "Sofia")

	assert.LessOrEqual(t, math.Abs(coord.Lat-42.6977), bounds.LatVariance)
	assert.LessOrEqual(t, math.Abs(coord.Lon-23.3219), bounds.LonVariance)
}

func TestJitter_DistinctVenues(t *testing.T) {
	a := Jitter(48.8566, 2.3522, "Studio A", "Paris")
	b := Jitter(48.8566, 2.3522, "Studio B", "Paris")

	assert.NotEqual(t, a, b, "different venues should scatter to different points")
}

func TestBoundsFor_UnknownCityDefault(t *testing.T) {
	b := BoundsFor("Plovdiv")
	assert.Equal(t, defaultBounds, b)
}

func TestBoundsFor_KnownCity(t *testing.T) {
	b := BoundsFor("Sofia")
	assert.Equal(t, Bounds{LatVariance: 0.1, LonVariance: 0.12}, b)
}
