package workshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ritmohub/go-dance-listings/app/observability/metrics"
	"github.com/ritmohub/go-dance-listings/internal/geo"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

// ErrValidation marks admin input the service refused before touching the
// pipeline or the database.
var ErrValidation = errors.New("validation failed")

// Assigner is the coordinate-assignment entry point. *geo.Pipeline satisfies
// it; tests inject fakes.
type Assigner interface {
	Assign(ctx context.Context, in geo.Assignment) (geo.Coordinate, bool)
}

var _ WorkshopService = (*ServiceImpl)(nil)

// WorkshopService defines the business logic around workshops.
type WorkshopService interface {
	Create(ctx context.Context, adminID uuid.UUID, params types.CreateWorkshopParams) (*types.Workshop, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateWorkshopParams) (*types.Workshop, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*types.Workshop, error)
	List(ctx context.Context, filter types.WorkshopFilter) ([]types.Workshop, error)
	Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]types.NearbyWorkshop, error)
	Register(ctx context.Context, userID, workshopID uuid.UUID) error
	CancelRegistration(ctx context.Context, userID, workshopID uuid.UUID) error
	Participants(ctx context.Context, workshopID uuid.UUID) ([]types.Participant, error)
	SetAttendance(ctx context.Context, workshopID, userID uuid.UUID, attended bool) error
	Stats(ctx context.Context) (*types.AdminStats, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     WorkshopRepo
	assigner Assigner
}

func NewServiceImpl(repo WorkshopRepo, assigner Assigner, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		assigner: assigner,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, adminID uuid.UUID, params types.CreateWorkshopParams) (*types.Workshop, error) {
	l := s.logger.With(slog.String("method", "Create"))

	params.City = strings.TrimSpace(params.City)
	params.Location = strings.TrimSpace(params.Location)
	if params.City == "" || params.Location == "" || params.Style == "" {
		return nil, fmt.Errorf("%w: city, location and style are required", ErrValidation)
	}
	if params.Difficulty == "" {
		params.Difficulty = "intermediate"
	}
	if params.Recurrence == "" {
		params.Recurrence = "single"
	}

	// Count-then-insert is racy under concurrent creates for the same venue
	// and style; two records can end up with the same sibling index. Accepted
	// for now, admin writes are rare and a later update re-spreads them.
	siblings, err := s.repo.CountSiblings(ctx, params.City, params.Location, params.Style, uuid.Nil)
	if err != nil {
		return nil, err
	}

	lat, lon := s.assign(ctx, geo.Assignment{
		ExplicitLat:  params.Lat,
		ExplicitLon:  params.Lon,
		City:         params.City,
		Location:     params.Location,
		Style:        params.Style,
		SiblingIndex: siblings,
		SiblingCount: siblings + 1,
	})
	if lat == nil {
		l.WarnContext(ctx, "Workshop created without coordinates",
			slog.String("location", params.Location), slog.String("city", params.City))
	}

	return s.repo.CreateWorkshop(ctx, adminID, params, lat, lon)
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.UpdateWorkshopParams) (*types.Workshop, error) {
	existing, err := s.repo.GetWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWorkshop(ctx, id, params); err != nil {
		return nil, err
	}

	// A change to the venue, style, or explicit input invalidates the stored
	// point entirely; the assignment runs again from scratch.
	if params.City != nil || params.Location != nil || params.Style != nil ||
		params.Lat != nil || params.Lon != nil {
		city := existing.City
		if params.City != nil {
			city = *params.City
		}
		location := existing.Location
		if params.Location != nil {
			location = *params.Location
		}
		style := existing.Style
		if params.Style != nil {
			style = *params.Style
		}

		siblings, err := s.repo.CountSiblings(ctx, city, location, style, id)
		if err != nil {
			return nil, err
		}

		lat, lon := s.assign(ctx, geo.Assignment{
			ExplicitLat:  params.Lat,
			ExplicitLon:  params.Lon,
			City:         city,
			Location:     location,
			Style:        style,
			SiblingIndex: siblings,
			SiblingCount: siblings + 1,
		})
		if err := s.repo.SetCoordinates(ctx, id, lat, lon); err != nil {
			return nil, err
		}
	}

	return s.repo.GetWorkshop(ctx, id)
}

// assign runs the pipeline and maps its outcome onto nullable columns.
func (s *ServiceImpl) assign(ctx context.Context, in geo.Assignment) (*float64, *float64) {
	coord, ok := s.assigner.Assign(ctx, in)
	if !ok {
		return nil, nil
	}
	return &coord.Lat, &coord.Lon
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWorkshop(ctx, id)
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.Workshop, error) {
	return s.repo.GetWorkshop(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter types.WorkshopFilter) ([]types.Workshop, error) {
	return s.repo.ListWorkshops(ctx, filter)
}

func (s *ServiceImpl) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]types.NearbyWorkshop, error) {
	if radiusKm <= 0 {
		radiusKm = 50
	}

	workshops, err := s.repo.ListWithCoordinates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.NearbyWorkshop, 0)
	for _, w := range workshops {
		d := geo.DistanceKm(lat, lon, *w.Lat, *w.Lon)
		if d <= radiusKm {
			out = append(out, types.NearbyWorkshop{Workshop: w, DistanceKm: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func (s *ServiceImpl) Register(ctx context.Context, userID, workshopID uuid.UUID) error {
	if m := metrics.App(); m != nil {
		m.RegisterRequestsTotal.Add(ctx, 1)
	}
	return s.repo.Register(ctx, userID, workshopID)
}

func (s *ServiceImpl) CancelRegistration(ctx context.Context, userID, workshopID uuid.UUID) error {
	return s.repo.CancelRegistration(ctx, userID, workshopID)
}

func (s *ServiceImpl) Participants(ctx context.Context, workshopID uuid.UUID) ([]types.Participant, error) {
	return s.repo.Participants(ctx, workshopID)
}

func (s *ServiceImpl) SetAttendance(ctx context.Context, workshopID, userID uuid.UUID, attended bool) error {
	return s.repo.SetAttendance(ctx, workshopID, userID, attended)
}

func (s *ServiceImpl) Stats(ctx context.Context) (*types.AdminStats, error) {
	return s.repo.Stats(ctx)
}
