package locations

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/api/auth"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListLocations(w http.ResponseWriter, r *http.Request)
	UpsertLocation(w http.ResponseWriter, r *http.Request)
	DeleteLocation(w http.ResponseWriter, r *http.Request)
}

// HandlerImpl serves the admin CRUD surface for curated venues. The table
// is small and write-rare, so handlers talk to the repository directly.
type HandlerImpl struct {
	repo   LocationsRepo
	logger *slog.Logger
}

func NewHandlerImpl(repo LocationsRepo, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		repo:   repo,
		logger: logger,
	}
}

func (h *HandlerImpl) ListLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListLocations"))

	locs, err := h.repo.List(ctx, r.URL.Query().Get("city"))
	if err != nil {
		l.ErrorContext(ctx, "Failed to list predefined locations", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list locations")
		return
	}
	if locs == nil {
		locs = []types.PredefinedLocation{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, locs)
}

func (h *HandlerImpl) UpsertLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpsertLocation"))

	adminIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	adminID, err := uuid.Parse(adminIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var params types.UpsertPredefinedLocationParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	params.City = strings.TrimSpace(params.City)
	params.LocationName = strings.TrimSpace(params.LocationName)
	if params.City == "" || params.LocationName == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city and location_name are required")
		return
	}
	if params.Lat < -90 || params.Lat > 90 || params.Lon < -180 || params.Lon > 180 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Coordinates out of range")
		return
	}

	loc, err := h.repo.Upsert(ctx, adminID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to upsert predefined location", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save location")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, loc)
}

func (h *HandlerImpl) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteLocation"))

	id, err := uuid.Parse(chi.URLParam(r, "locationID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid location ID format")
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Location not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete predefined location", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete location")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
