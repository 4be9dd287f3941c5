package geo

import (
	"context"
	"log/slog"

	"github.com/ritmohub/go-dance-listings/app/observability/metrics"
)

// citySeed holds approximate centre coordinates for the cities the platform
// launched with. Everything else goes through the live geocoder once and is
// cached for the rest of the process lifetime.
var citySeed = map[string]Coordinate{
	"london":    {Lat: 51.5074, Lon: -0.1278},
	"paris":     {Lat: 48.8566, Lon: 2.3522},
	"berlin":    {Lat: 52.5200, Lon: 13.4050},
	"madrid":    {Lat: 40.4168, Lon: -3.7038},
	"barcelona": {Lat: 41.3851, Lon: 2.1734},
	"amsterdam": {Lat: 52.3676, Lon: 4.9041},
	"lisbon":    {Lat: 38.7223, Lon: -9.1393},
	"milan":     {Lat: 45.4642, Lon: 9.1900},
	"rome":      {Lat: 41.9028, Lon: 12.4964},
	"vienna":    {Lat: 48.2082, Lon: 16.3738},
	"prague":    {Lat: 50.0755, Lon: 14.4378},
	"warsaw":    {Lat: 52.2297, Lon: 21.0122},
	"budapest":  {Lat: 47.4979, Lon: 19.0402},
	"athens":    {Lat: 37.9838, Lon: 23.7275},
	"istanbul":  {Lat: 41.0082, Lon: 28.9784},
	"sofia":     {Lat: 42.6977, Lon: 23.3219},
}

// CityResolver resolves a city name to approximate coordinates: cache, then
// seed table, then one live geocoder query. Absence is an expected outcome,
// never an error.
type CityResolver struct {
	logger     *slog.Logger
	cache      *Cache
	geocoder   Geocoder
	regionHint string
}

// NewCityResolver wires a resolver around the city-tier cache. regionHint is
// appended to live queries to disambiguate city names ("Europe" by default).
func NewCityResolver(cache *Cache, geocoder Geocoder, regionHint string, logger *slog.Logger) *CityResolver {
	return &CityResolver{
		logger:     logger,
		cache:      cache,
		geocoder:   geocoder,
		regionHint: regionHint,
	}
}

// Resolve returns the coordinates for city, or ok=false when neither the seed
// table nor the geocoder knows it.
func (r *CityResolver) Resolve(ctx context.Context, city string) (Coordinate, bool) {
	key := Normalize(city)

	if coord, ok := r.cache.Get(key); ok {
		if m := metrics.App(); m != nil {
			m.CacheHitsTotal.Add(ctx, 1)
		}
		return coord, true
	}
	if m := metrics.App(); m != nil {
		m.CacheMissesTotal.Add(ctx, 1)
	}

	if coord, ok := citySeed[key]; ok {
		r.cache.Put(key, coord)
		return coord, true
	}

	coord, err := r.geocoder.Geocode(ctx, city+", "+r.regionHint)
	if err != nil {
		r.logger.WarnContext(ctx, "City geocoding failed",
			slog.String("city", city), slog.Any("error", err))
		if m := metrics.App(); m != nil {
			m.GeocodeFailuresTotal.Add(ctx, 1)
		}
		return Coordinate{}, false
	}
	if coord == nil {
		r.logger.DebugContext(ctx, "City not found by geocoder", slog.String("city", city))
		return Coordinate{}, false
	}

	r.cache.Put(key, *coord)
	return *coord, true
}
