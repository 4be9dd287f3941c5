package geo

import (
	"context"
	"log/slog"
	"time"

	"github.com/ritmohub/go-dance-listings/app/observability/metrics"
)

// PredefinedLookup finds operator-curated coordinates for an exact
// (location, city) match. Implementations return (nil, nil) when no entry
// exists.
type PredefinedLookup interface {
	LookupCoordinates(ctx context.Context, location, city string) (*Coordinate, error)
}

// Assignment carries everything the pipeline needs to position one record.
// SiblingIndex and SiblingCount come from a fresh query over existing records
// sharing (city, location, style); for a brand-new record the index equals the
// number of pre-existing siblings.
type Assignment struct {
	ExplicitLat *float64
	ExplicitLon *float64
	City        string
	Location    string
	Style       string

	SiblingIndex int
	SiblingCount int
}

// strategy is one step in the ordered base-point resolution chain.
type strategy struct {
	name    string
	resolve func(ctx context.Context, in Assignment) (Coordinate, bool)
}

// Pipeline orchestrates coordinate assignment for create and update flows.
// The base point comes from the first strategy that produces one (explicit
// admin input, then the predefined-location table, then the resolver chain),
// and the style and collision offsets are applied afterwards, in that order. The
// style angle picks the sector; the collision offset spreads within it.
type Pipeline struct {
	logger     *slog.Logger
	predefined PredefinedLookup
	venues     *VenueResolver
	strategies []strategy
}

// NewPipeline wires the assignment pipeline. predefined may be nil when no
// curated location table is available.
func NewPipeline(predefined PredefinedLookup, venues *VenueResolver, logger *slog.Logger) *Pipeline {
	p := &Pipeline{
		logger:     logger,
		predefined: predefined,
		venues:     venues,
	}
	p.strategies = []strategy{
		{name: "explicit", resolve: p.fromExplicit},
		{name: "predefined", resolve: p.fromPredefined},
		{name: "resolver", resolve: p.fromResolver},
	}
	return p
}

// Assign computes the final displaced coordinate for a record, or ok=false
// when no base point could be obtained. The record must still persist in that
// case; missing coordinates are a valid state. Updates that change location,
// style, or explicit input must call Assign again from scratch, since a
// previously displaced point is never a valid base for a new assignment.
func (p *Pipeline) Assign(ctx context.Context, in Assignment) (Coordinate, bool) {
	start := time.Now()

	base, resolved := p.ResolveBase(ctx, in)
	if !resolved {
		return Coordinate{}, false
	}

	styled := DisplaceByStyle(base.Lat, base.Lon, in.Style)
	final := DisplaceBySibling(styled.Lat, styled.Lon, in.SiblingIndex, in.SiblingCount)

	if m := metrics.App(); m != nil {
		m.AssignDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}
	return final, true
}

// ResolveBase runs only the base-point strategy chain, without style or
// collision displacement. Records that carry no style, such as events, are
// positioned with this directly.
func (p *Pipeline) ResolveBase(ctx context.Context, in Assignment) (Coordinate, bool) {
	for _, s := range p.strategies {
		if coord, ok := s.resolve(ctx, in); ok {
			p.logger.DebugContext(ctx, "Base point resolved",
				slog.String("strategy", s.name),
				slog.String("location", in.Location), slog.String("city", in.City))
			return coord, true
		}
	}
	p.logger.WarnContext(ctx, "No coordinates available for venue",
		slog.String("location", in.Location), slog.String("city", in.City))
	return Coordinate{}, false
}

func (p *Pipeline) fromExplicit(_ context.Context, in Assignment) (Coordinate, bool) {
	if in.ExplicitLat == nil || in.ExplicitLon == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *in.ExplicitLat, Lon: *in.ExplicitLon}, true
}

func (p *Pipeline) fromPredefined(ctx context.Context, in Assignment) (Coordinate, bool) {
	if p.predefined == nil {
		return Coordinate{}, false
	}
	coord, err := p.predefined.LookupCoordinates(ctx, in.Location, in.City)
	if err != nil {
		p.logger.WarnContext(ctx, "Predefined location lookup failed",
			slog.String("location", in.Location), slog.String("city", in.City), slog.Any("error", err))
		return Coordinate{}, false
	}
	if coord == nil {
		return Coordinate{}, false
	}
	return *coord, true
}

func (p *Pipeline) fromResolver(ctx context.Context, in Assignment) (Coordinate, bool) {
	return p.venues.Resolve(ctx, in.Location, in.City)
}
