package event

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/api/auth"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

// maxPhotoBytes caps event photo uploads at 8MB.
const maxPhotoBytes = 8 << 20

var errPhotoTooLarge = errors.New("photo too large")

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListEvents(w http.ResponseWriter, r *http.Request)
	GetEvent(w http.ResponseWriter, r *http.Request)
	CreateEvent(w http.ResponseWriter, r *http.Request)
	UpdateEvent(w http.ResponseWriter, r *http.Request)
	DeleteEvent(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	eventService EventService
	logger       *slog.Logger
	uploadDir    string
}

// NewHandlerImpl creates a new event HandlerImpl instance. uploadDir is where
// event photos land; it is served as static content by the router.
func NewHandlerImpl(eventService EventService, uploadDir string, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		eventService: eventService,
		logger:       logger,
		uploadDir:    uploadDir,
	}
}

func (h *HandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListEvents"))

	events, err := h.eventService.List(ctx, r.URL.Query().Get("city"))
	if err != nil {
		l.ErrorContext(ctx, "Failed to list events", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []types.Event{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, events)
}

func (h *HandlerImpl) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetEvent"))

	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid event ID format")
		return
	}

	ev, err := h.eventService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Event not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get event", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve event")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ev)
}

// CreateEvent accepts a multipart form: the event fields plus an optional
// "photo" file part.
func (h *HandlerImpl) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateEvent"))

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

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Expected multipart form data")
		return
	}

	params := types.CreateEventParams{
		Title:          r.FormValue("title"),
		EventOrganizer: r.FormValue("event_organizer"),
		Location:       r.FormValue("location"),
		City:           r.FormValue("city"),
		StartDate:      r.FormValue("start_date"),
		StartTime:      r.FormValue("start_time"),
		EndDate:        r.FormValue("end_date"),
		EndTime:        r.FormValue("end_time"),
	}
	params.Country = optionalFormValue(r, "country")
	params.Description = optionalFormValue(r, "description")
	params.FacebookURL = optionalFormValue(r, "facebook_url")
	params.Lat = optionalFormFloat(r, "lat")
	params.Lon = optionalFormFloat(r, "lon")

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photoPath, err := h.savePhoto(file, header)
		if err != nil {
			if errors.Is(err, errPhotoTooLarge) {
				api.ErrorResponse(w, r, http.StatusRequestEntityTooLarge, "Photo exceeds the upload limit")
				return
			}
			l.ErrorContext(ctx, "Failed to store event photo", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store photo")
			return
		}
		params.PhotoPath = &photoPath
	}

	ev, err := h.eventService.Create(ctx, adminID, params)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to create event", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create event")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, ev)
}

// UpdateEvent accepts the same multipart form as CreateEvent; fields left out
// of the form keep their stored values, a "photo" part replaces the photo.
func (h *HandlerImpl) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateEvent"))

	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid event ID format")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Expected multipart form data")
		return
	}

	params := types.UpdateEventParams{
		Title:          optionalFormValue(r, "title"),
		EventOrganizer: optionalFormValue(r, "event_organizer"),
		Location:       optionalFormValue(r, "location"),
		City:           optionalFormValue(r, "city"),
		Country:        optionalFormValue(r, "country"),
		StartDate:      optionalFormValue(r, "start_date"),
		StartTime:      optionalFormValue(r, "start_time"),
		EndDate:        optionalFormValue(r, "end_date"),
		EndTime:        optionalFormValue(r, "end_time"),
		Description:    optionalFormValue(r, "description"),
		FacebookURL:    optionalFormValue(r, "facebook_url"),
		Lat:            optionalFormFloat(r, "lat"),
		Lon:            optionalFormFloat(r, "lon"),
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photoPath, err := h.savePhoto(file, header)
		if err != nil {
			if errors.Is(err, errPhotoTooLarge) {
				api.ErrorResponse(w, r, http.StatusRequestEntityTooLarge, "Photo exceeds the upload limit")
				return
			}
			l.ErrorContext(ctx, "Failed to store event photo", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store photo")
			return
		}
		params.PhotoPath = &photoPath
	}

	ev, err := h.eventService.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Event not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update event", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update event")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ev)
}

func (h *HandlerImpl) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteEvent"))

	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid event ID format")
		return
	}

	if err := h.eventService.Delete(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Event not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete event", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// savePhoto writes the uploaded file under uploadDir with a unique
// timestamped name and returns the relative path stored in the DB.
func (h *HandlerImpl) savePhoto(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("unsupported photo extension %q", ext)
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	defer dst.Close()

	// Reading one byte past the cap distinguishes an oversized upload from
	// one that is exactly at it; a truncated image must never be persisted.
	n, err := io.Copy(dst, io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to write photo file: %w", err)
	}
	if n > maxPhotoBytes {
		if rmErr := os.Remove(filepath.Join(h.uploadDir, name)); rmErr != nil {
			return "", fmt.Errorf("failed to remove oversized photo: %w", rmErr)
		}
		return "", fmt.Errorf("%w: exceeds %d bytes", errPhotoTooLarge, maxPhotoBytes)
	}
	return name, nil
}

func optionalFormValue(r *http.Request, key string) *string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return &v
	}
	return nil
}

func optionalFormFloat(r *http.Request, key string) *float64 {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
