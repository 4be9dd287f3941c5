package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	GeocodeRequestsTotal  metric.Int64Counter
	GeocodeFailuresTotal  metric.Int64Counter
	CacheHitsTotal        metric.Int64Counter
	CacheMissesTotal      metric.Int64Counter
	AssignDurationSeconds metric.Float64Histogram
	RegisterRequestsTotal metric.Int64Counter
	DbQueryErrorsTotal    metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-dance-listings")
		var err error
		m := &AppMetrics{}

		m.GeocodeRequestsTotal, err = meter.Int64Counter(
			"geocode_requests_total",
			metric.WithDescription("Total number of external geocoding queries issued"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_requests_total: %v", err)
		}

		m.GeocodeFailuresTotal, err = meter.Int64Counter(
			"geocode_failures_total",
			metric.WithDescription("Total number of failed or timed-out geocoding queries"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_failures_total: %v", err)
		}

		m.CacheHitsTotal, err = meter.Int64Counter(
			"geo_cache_hits_total",
			metric.WithDescription("Coordinate cache hits across both tiers"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geo_cache_hits_total: %v", err)
		}

		m.CacheMissesTotal, err = meter.Int64Counter(
			"geo_cache_misses_total",
			metric.WithDescription("Coordinate cache misses across both tiers"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geo_cache_misses_total: %v", err)
		}

		m.AssignDurationSeconds, err = meter.Float64Histogram(
			"coordinate_assign_duration_seconds",
			metric.WithDescription("Duration of full coordinate assignments in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create coordinate_assign_duration_seconds: %v", err)
		}

		m.RegisterRequestsTotal, err = meter.Int64Counter(
			"register_requests_total",
			metric.WithDescription("Total number of register requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create register_requests_total: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// App returns the global metrics instance, or nil when InitAppMetrics has not
// run yet (tests skip metrics setup entirely).
func App() *AppMetrics {
	return appMetrics
}
