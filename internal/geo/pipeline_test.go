package geo

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePredefined records lookups and replays a fixed table.
type fakePredefined struct {
	calls   int
	entries map[string]Coordinate
}

func (f *fakePredefined) LookupCoordinates(_ context.Context, location, city string) (*Coordinate, error) {
	f.calls++
	if coord, ok := f.entries[VenueKey(location, city)]; ok {
		return &coord, nil
	}
	return nil, nil
}

func newTestPipeline(predefined PredefinedLookup, gc Geocoder) *Pipeline {
	logger := newTestLogger()
	cities := NewCityResolver(NewCache(), gc, "Europe", logger)
	venues := NewVenueResolver(NewCache(), gc, cities, "Europe", logger)
	return NewPipeline(predefined, venues, logger)
}

func f64(v float64) *float64 { return &v }

func TestPipeline_ExplicitCoordinatesWin(t *testing.T) {
	predefined := &fakePredefined{entries: map[string]Coordinate{
		VenueKey("Studio Ritmo", "Sofia"): {Lat: 1, Lon: 1},
	}}
	gc := &fakeGeocoder{}
	p := newTestPipeline(predefined, gc)

	got, ok := p.Assign(context.Background(), Assignment{
		ExplicitLat: f64(42.7), ExplicitLon: f64(23.3),
		City: "Sofia", Location: "Studio Ritmo", Style: "salsa",
		SiblingIndex: 0, SiblingCount: 1,
	})
	require.True(t, ok)

	want := DisplaceByStyle(42.7, 23.3, "salsa")
	assert.Equal(t, want, got)
	assert.Zero(t, predefined.calls, "explicit input must short-circuit the predefined store")
	assert.Empty(t, gc.calls, "explicit input must short-circuit the geocoder")
}

func TestPipeline_PredefinedBeatsGeocoder(t *testing.T) {
	predefined := &fakePredefined{entries: map[string]Coordinate{
		VenueKey("Studio Ritmo", "Sofia"): {Lat: 42.65, Lon: 23.35},
	}}
	gc := &fakeGeocoder{}
	p := newTestPipeline(predefined, gc)

	got, ok := p.Assign(context.Background(), Assignment{
		City: "Sofia", Location: "Studio Ritmo", Style: "bachata",
		SiblingIndex: 0, SiblingCount: 1,
	})
	require.True(t, ok)

	want := DisplaceByStyle(42.65, 23.35, "bachata")
	assert.Equal(t, want, got)
	assert.Equal(t, 1, predefined.calls)
	assert.Empty(t, gc.calls, "a predefined match must never reach the geocoder")
}

func TestPipeline_SofiaFallbackEndToEnd(t *testing.T) {
	// Street geocoding fails for the venue, Sofia resolves from the seed
	// table, jitter applies Sofia's bounds, then the salsa angle (45°).
	gc := &fakeGeocoder{}
	p := newTestPipeline(&fakePredefined{}, gc)

	got, ok := p.Assign(context.Background(), Assignment{
		City: "Sofia", Location: "Studio Ritmo", Style: "salsa",
		SiblingIndex: 0, SiblingCount: 1,
	})
	require.True(t, ok)

	jittered := Jitter(42.6977, 23.3219, "Studio Ritmo", "Sofia")
	assert.InDelta(t, styleRadius*math.Cos(math.Pi/4), got.Lat-jittered.Lat, 1e-9)
	assert.InDelta(t, styleRadius*math.Sin(math.Pi/4), got.Lon-jittered.Lon, 1e-9)
}

func TestPipeline_CollisionAppliedAfterStyle(t *testing.T) {
	p := newTestPipeline(&fakePredefined{}, &fakeGeocoder{})

	base := Assignment{
		ExplicitLat: f64(42.7), ExplicitLon: f64(23.3),
		City: "Sofia", Location: "Studio Ritmo", Style: "salsa",
	}

	var points []Coordinate
	for i := 0; i < 3; i++ {
		in := base
		in.SiblingIndex, in.SiblingCount = i, 3
		got, ok := p.Assign(context.Background(), in)
		require.True(t, ok)
		points = append(points, got)
	}

	styled := DisplaceByStyle(42.7, 23.3, "salsa")
	for i, p := range points {
		want := DisplaceBySibling(styled.Lat, styled.Lon, i, 3)
		assert.Equal(t, want, p, "collision offset spreads within the style sector")
	}
	assert.NotEqual(t, points[0], points[1])
	assert.NotEqual(t, points[1], points[2])
}

func TestPipeline_NoBasePoint(t *testing.T) {
	p := newTestPipeline(&fakePredefined{}, &fakeGeocoder{})

	_, ok := p.Assign(context.Background(), Assignment{
		City: "Atlantis", Location: "Nowhere Hall", Style: "salsa",
		SiblingIndex: 0, SiblingCount: 1,
	})
	assert.False(t, ok, "absence must propagate; record creation is not blocked")
}

func TestPipeline_NilPredefinedLookup(t *testing.T) {
	p := newTestPipeline(nil, &fakeGeocoder{})

	got, ok := p.Assign(context.Background(), Assignment{
		City: "Sofia", Location: "Studio Ritmo", Style: "zouk",
		SiblingIndex: 0, SiblingCount: 1,
	})
	require.True(t, ok)
	assert.NotZero(t, got.Lat)
}

func TestPipeline_ResolveBaseSkipsDisplacement(t *testing.T) {
	predefined := &fakePredefined{entries: map[string]Coordinate{
		VenueKey("Studio Ritmo", "Sofia"): {Lat: 42.65, Lon: 23.35},
	}}
	p := newTestPipeline(predefined, &fakeGeocoder{})

	got, ok := p.ResolveBase(context.Background(), Assignment{
		City: "Sofia", Location: "Studio Ritmo",
	})
	require.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 42.65, Lon: 23.35}, got,
		"base resolution must return the raw point untouched")
}
