package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ritmohub/go-dance-listings/app/observability/metrics"
)

// Geocoder resolves a free-text address to a coordinate. Implementations
// return (nil, nil) when the provider has no match; an error only signals a
// transport or decoding failure. Callers treat both the same way: fall through
// to the next strategy.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Coordinate, error)
}

// NominatimClient queries a Nominatim-compatible search endpoint. Nominatim is
// rate-sensitive, so callers are expected to sit behind a Cache and a custom
// User-Agent is mandatory.
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

var _ Geocoder = (*NominatimClient)(nil)

// NewNominatimClient builds a client for the given search endpoint, e.g.
// "https://nominatim.openstreetmap.org". timeout bounds each request; the
// per-call context may shorten it further.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode issues a single search query and returns the best match, or nil if
// the provider found nothing.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (*Coordinate, error) {
	if m := metrics.App(); m != nil {
		m.GeocodeRequestsTotal.Add(ctx, 1)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder responded with status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q in geocode response: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q in geocode response: %w", places[0].Lon, err)
	}

	return &Coordinate{Lat: lat, Lon: lon}, nil
}
