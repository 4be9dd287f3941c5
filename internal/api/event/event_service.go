package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ritmohub/go-dance-listings/internal/geo"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

// ErrValidation marks admin input the service refused.
var ErrValidation = errors.New("validation failed")

// BaseResolver produces a venue base point for records without a dance
// style. *geo.Pipeline satisfies it.
type BaseResolver interface {
	ResolveBase(ctx context.Context, in geo.Assignment) (geo.Coordinate, bool)
}

var _ EventService = (*ServiceImpl)(nil)

// EventService defines the business logic around events.
type EventService interface {
	Create(ctx context.Context, adminID uuid.UUID, params types.CreateEventParams) (*types.Event, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateEventParams) (*types.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Event, error)
	List(ctx context.Context, city string) ([]types.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     EventRepo
	resolver BaseResolver
}

func NewServiceImpl(repo EventRepo, resolver BaseResolver, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		resolver: resolver,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, adminID uuid.UUID, params types.CreateEventParams) (*types.Event, error) {
	l := s.logger.With(slog.String("method", "Create"))

	params.Title = strings.TrimSpace(params.Title)
	params.City = strings.TrimSpace(params.City)
	params.Location = strings.TrimSpace(params.Location)
	if params.Title == "" || params.City == "" || params.Location == "" {
		return nil, fmt.Errorf("%w: title, city and location are required", ErrValidation)
	}

	// Events carry no style, so only the base point applies. No collision
	// handling either; two events at the same venue share the point.
	var lat, lon *float64
	coord, ok := s.resolver.ResolveBase(ctx, geo.Assignment{
		ExplicitLat: params.Lat,
		ExplicitLon: params.Lon,
		City:        params.City,
		Location:    params.Location,
	})
	if ok {
		lat, lon = &coord.Lat, &coord.Lon
	} else {
		l.WarnContext(ctx, "Event created without coordinates",
			slog.String("location", params.Location), slog.String("city", params.City))
	}

	return s.repo.CreateEvent(ctx, adminID, params, lat, lon)
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.UpdateEventParams) (*types.Event, error) {
	existing, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateEvent(ctx, id, params); err != nil {
		return nil, err
	}

	// A venue change or a new explicit point invalidates the stored
	// coordinates; the base point resolves again from scratch.
	if params.City != nil || params.Location != nil ||
		params.Lat != nil || params.Lon != nil {
		city := existing.City
		if params.City != nil {
			city = *params.City
		}
		location := existing.Location
		if params.Location != nil {
			location = *params.Location
		}

		var lat, lon *float64
		coord, ok := s.resolver.ResolveBase(ctx, geo.Assignment{
			ExplicitLat: params.Lat,
			ExplicitLon: params.Lon,
			City:        city,
			Location:    location,
		})
		if ok {
			lat, lon = &coord.Lat, &coord.Lon
		}
		if err := s.repo.SetCoordinates(ctx, id, lat, lon); err != nil {
			return nil, err
		}
	}

	return s.repo.GetEvent(ctx, id)
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context, city string) ([]types.Event, error) {
	return s.repo.ListEvents(ctx, city)
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteEvent(ctx, id)
}
