package geo

import (
	"context"
	"log/slog"
	"time"

	"github.com/ritmohub/go-dance-listings/app/observability/metrics"
)

// defaultStreetTimeout bounds a single street-level geocoding attempt. A
// stalled provider degrades to the city fallback instead of blocking record
// creation.
const defaultStreetTimeout = 5 * time.Second

// VenueResolver resolves a (location, city) pair to a base point: venue-tier
// cache, then one street-level geocoding query, then city coordinates with
// deterministic jitter. On the city fallback the jittered point is what gets
// cached, so repeat lookups return an identical coordinate without re-querying.
type VenueResolver struct {
	logger        *slog.Logger
	cache         *Cache
	geocoder      Geocoder
	cities        *CityResolver
	regionHint    string
	streetTimeout time.Duration
}

// NewVenueResolver wires a resolver around the venue-tier cache.
func NewVenueResolver(cache *Cache, geocoder Geocoder, cities *CityResolver, regionHint string, logger *slog.Logger) *VenueResolver {
	return &VenueResolver{
		logger:        logger,
		cache:         cache,
		geocoder:      geocoder,
		cities:        cities,
		regionHint:    regionHint,
		streetTimeout: defaultStreetTimeout,
	}
}

// Resolve returns the base point for a venue, or ok=false when street
// geocoding and the city fallback both come up empty. Missing coordinates are
// a valid outcome; records persist without them.
func (r *VenueResolver) Resolve(ctx context.Context, location, city string) (Coordinate, bool) {
	key := VenueKey(location, city)

	if coord, ok := r.cache.Get(key); ok {
		if m := metrics.App(); m != nil {
			m.CacheHitsTotal.Add(ctx, 1)
		}
		return coord, true
	}
	if m := metrics.App(); m != nil {
		m.CacheMissesTotal.Add(ctx, 1)
	}

	streetCtx, cancel := context.WithTimeout(ctx, r.streetTimeout)
	defer cancel()

	coord, err := r.geocoder.Geocode(streetCtx, location+", "+city+", "+r.regionHint)
	if err != nil {
		r.logger.DebugContext(ctx, "Street-level geocoding failed",
			slog.String("location", location), slog.String("city", city), slog.Any("error", err))
		if m := metrics.App(); m != nil {
			m.GeocodeFailuresTotal.Add(ctx, 1)
		}
	}
	if coord != nil {
		r.cache.Put(key, *coord)
		r.logger.InfoContext(ctx, "Street-level geocoded venue",
			slog.String("location", location), slog.String("city", city),
			slog.Float64("lat", coord.Lat), slog.Float64("lon", coord.Lon))
		return *coord, true
	}

	cityCoord, ok := r.cities.Resolve(ctx, city)
	if !ok {
		return Coordinate{}, false
	}

	jittered := Jitter(cityCoord.Lat, cityCoord.Lon, location, city)
	r.cache.Put(key, jittered)
	r.logger.InfoContext(ctx, "Using jittered city coordinates for venue",
		slog.String("location", location), slog.String("city", city),
		slog.Float64("lat", jittered.Lat), slog.Float64("lon", jittered.Lon))
	return jittered, true
}
