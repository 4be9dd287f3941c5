package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeocoder records every query and replays canned answers.
type fakeGeocoder struct {
	calls   []string
	results map[string]*Coordinate
	err     error
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (*Coordinate, error) {
	f.calls = append(f.calls, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCityResolver_SeedHitSkipsGeocoder(t *testing.T) {
	gc := &fakeGeocoder{}
	r := NewCityResolver(NewCache(), gc, "Europe", newTestLogger())

	coord, ok := r.Resolve(context.Background(), "Sofia")
	require.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 42.6977, Lon: 23.3219}, coord)
	assert.Empty(t, gc.calls, "seeded cities never reach the geocoder")
}

func TestCityResolver_LiveLookupCachedOnce(t *testing.T) {
	gc := &fakeGeocoder{results: map[string]*Coordinate{
		"Plovdiv, Europe": {Lat: 42.1354, Lon: 24.7453},
	}}
	r := NewCityResolver(NewCache(), gc, "Europe", newTestLogger())

	first, ok := r.Resolve(context.Background(), "Plovdiv")
	require.True(t, ok)

	second, ok := r.Resolve(context.Background(), "plovdiv ")
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Len(t, gc.calls, 1, "second resolve must be served from cache")
}

func TestCityResolver_FailureIsAbsence(t *testing.T) {
	gc := &fakeGeocoder{err: errors.New("connection refused")}
	r := NewCityResolver(NewCache(), gc, "Europe", newTestLogger())

	_, ok := r.Resolve(context.Background(), "Atlantis")
	assert.False(t, ok)

	// A failure must not poison the cache: a later success still lands.
	gc.err = nil
	gc.results = map[string]*Coordinate{"Atlantis, Europe": {Lat: 1, Lon: 2}}
	coord, ok := r.Resolve(context.Background(), "Atlantis")
	require.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 1, Lon: 2}, coord)
}

func TestVenueResolver_StreetLevelHitCached(t *testing.T) {
	gc := &fakeGeocoder{results: map[string]*Coordinate{
		"Studio Dance Fever, Sofia, Europe": {Lat: 42.69, Lon: 23.31},
	}}
	cities := NewCityResolver(NewCache(), gc, "Europe", newTestLogger())
	venues := NewVenueResolver(NewCache(), gc, cities, "Europe", newTestLogger())

	first, ok := venues.Resolve(context.Background(), "Studio Dance Fever", "Sofia")
	require.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 42.69, Lon: 23.31}, first)
	assert.Len(t, gc.calls, 1)

	second, ok := venues.Resolve(context.Background(), "studio dance fever", "SOFIA")
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Len(t, gc.calls, 1, "cache hit must not issue another external query")
}

func TestVenueResolver_CityFallbackCachesJitteredPoint(t *testing.T) {
	// Street geocoding knows nothing; Sofia is seeded, so the resolver falls
	// back to city coordinates plus jitter.
	gc := &fakeGeocoder{}
	cities := NewCityResolver(NewCache(), gc, "Europe", newTestLogger())
	venueCache := NewCache()
	venues := NewVenueResolver(venueCache, gc, cities, "Europe", newTestLogger())

	got, ok := venues.Resolve(context.Background(), "Studio Ritmo", "Sofia")
	require.True(t, ok)

	want := Jitter(42.6977, 23.3219, "Studio Ritmo", "Sofia")
	assert.Equal(t, want, got)

	cached, ok := venueCache.Get(VenueKey("Studio Ritmo", "Sofia"))
	require.True(t, ok)
	assert.Equal(t, want, cached, "venue tier caches the jittered point, not the raw city point")

	// Resolving again returns the identical coordinate without re-querying.
	calls := len(gc.calls)
	again, ok := venues.Resolve(context.Background(), "Studio Ritmo", "Sofia")
	require.True(t, ok)
	assert.Equal(t, got, again)
	assert.Len(t, gc.calls, calls)
}

func TestVenueResolver_NothingResolves(t *testing.T) {
	gc := &fakeGeocoder{}
	cities := NewCityResolver(NewCache(), gc, "Europe", newTestLogger())
	venues := NewVenueResolver(NewCache(), gc, cities, "Europe", newTestLogger())

	_, ok := venues.Resolve(context.Background(), "Nowhere Hall", "Atlantis")
	assert.False(t, ok, "missing coordinates are a valid outcome, not an error")
}
