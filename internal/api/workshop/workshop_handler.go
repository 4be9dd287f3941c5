package workshop

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/api/auth"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListWorkshops(w http.ResponseWriter, r *http.Request)
	GetWorkshop(w http.ResponseWriter, r *http.Request)
	NearbyWorkshops(w http.ResponseWriter, r *http.Request)
	CreateWorkshop(w http.ResponseWriter, r *http.Request)
	UpdateWorkshop(w http.ResponseWriter, r *http.Request)
	DeleteWorkshop(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	CancelRegistration(w http.ResponseWriter, r *http.Request)
	Participants(w http.ResponseWriter, r *http.Request)
	SetAttendance(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	workshopService WorkshopService
	logger          *slog.Logger
}

// NewHandlerImpl creates a new workshop HandlerImpl instance.
func NewHandlerImpl(workshopService WorkshopService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		workshopService: workshopService,
		logger:          logger,
	}
}

func workshopIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "workshopID"))
}

// ListWorkshops serves the public browse view with optional filters.
func (h *HandlerImpl) ListWorkshops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListWorkshops"))

	q := r.URL.Query()
	filter := types.WorkshopFilter{
		Style:      q.Get("style"),
		City:       q.Get("city"),
		Difficulty: q.Get("difficulty"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
	}

	workshops, err := h.workshopService.List(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list workshops", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list workshops")
		return
	}
	if workshops == nil {
		workshops = []types.Workshop{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, workshops)
}

func (h *HandlerImpl) GetWorkshop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetWorkshop"))

	id, err := workshopIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid workshop ID format")
		return
	}

	workshop, err := h.workshopService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Workshop not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get workshop", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve workshop")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, workshop)
}

// NearbyWorkshops returns workshops within radius_km of (lat, lon), closest
// first.
func (h *HandlerImpl) NearbyWorkshops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "NearbyWorkshops"))

	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}
	radiusKm, _ := strconv.ParseFloat(q.Get("radius_km"), 64)

	nearby, err := h.workshopService.Nearby(ctx, lat, lon, radiusKm)
	if err != nil {
		l.ErrorContext(ctx, "Failed to search nearby workshops", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search nearby workshops")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, nearby)
}

func (h *HandlerImpl) CreateWorkshop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateWorkshop"))

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

	var params types.CreateWorkshopParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	workshop, err := h.workshopService.Create(ctx, adminID, params)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to create workshop", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create workshop")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, workshop)
}

func (h *HandlerImpl) UpdateWorkshop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateWorkshop"))

	id, err := workshopIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid workshop ID format")
		return
	}

	var params types.UpdateWorkshopParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	workshop, err := h.workshopService.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Workshop not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update workshop", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update workshop")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, workshop)
}

func (h *HandlerImpl) DeleteWorkshop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteWorkshop"))

	id, err := workshopIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid workshop ID format")
		return
	}

	if err := h.workshopService.Delete(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Workshop not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete workshop", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete workshop")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	userID, ok := authenticatedUserID(ctx, w, r)
	if !ok {
		return
	}
	id, err := workshopIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid workshop ID format")
		return
	}

	if err := h.workshopService.Register(ctx, userID, id); err != nil {
		switch {
		case errors.Is(err, api.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Already registered for this workshop")
		case errors.Is(err, api.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Workshop not found")
		default:
			l.ErrorContext(ctx, "Failed to register", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to register")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]string{"message": "Registered"})
}

func (h *HandlerImpl) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CancelRegistration"))

	userID, ok := authenticatedUserID(ctx, w, r)
	if !ok {
		return
	}
	id, err := workshopIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid workshop ID format")
		return
	}

	if err := h.workshopService.CancelRegistration(ctx, userID, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Registration not found")
			return
		}
		l.ErrorContext(ctx, "Failed to cancel registration", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to cancel registration")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) Participants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Participants"))

	id, err := workshopIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid workshop ID format")
		return
	}

	participants, err := h.workshopService.Participants(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list participants", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list participants")
		return
	}
	if participants == nil {
		participants = []types.Participant{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, participants)
}

type attendanceRequest struct {
	UserID   string `json:"user_id"`
	Attended bool   `json:"attended"`
}

func (h *HandlerImpl) SetAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SetAttendance"))

	id, err := workshopIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid workshop ID format")
		return
	}

	var req attendanceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	if err := h.workshopService.SetAttendance(ctx, id, userID, req.Attended); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Registration not found")
			return
		}
		l.ErrorContext(ctx, "Failed to set attendance", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to set attendance")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Attendance updated"})
}

func (h *HandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Stats"))

	stats, err := h.workshopService.Stats(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to compute stats", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, stats)
}

func authenticatedUserID(ctx context.Context, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
