package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ritmohub/go-dance-listings/internal/api/auth"
	"github.com/ritmohub/go-dance-listings/internal/api/event"
	"github.com/ritmohub/go-dance-listings/internal/api/locations"
	"github.com/ritmohub/go-dance-listings/internal/api/workshop"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler      *auth.HandlerImpl
	WorkshopHandler  *workshop.HandlerImpl
	EventHandler     *event.HandlerImpl
	LocationsHandler *locations.HandlerImpl

	AuthenticateMiddleware func(http.Handler) http.Handler
	RequireAdmin           func(http.Handler) http.Handler

	// UploadDir is served read-only under /uploads for event photos.
	UploadDir string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	if cfg.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// --- Public routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)

			r.Get("/workshops", cfg.WorkshopHandler.ListWorkshops)
			r.Get("/workshops/nearby", cfg.WorkshopHandler.NearbyWorkshops)
			r.Get("/workshops/{workshopID}", cfg.WorkshopHandler.GetWorkshop)

			r.Get("/events", cfg.EventHandler.ListEvents)
			r.Get("/events/{eventID}", cfg.EventHandler.GetEvent)
		})

		// --- Protected routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)

			r.Post("/workshops/{workshopID}/register", cfg.WorkshopHandler.Register)
			r.Delete("/workshops/{workshopID}/register", cfg.WorkshopHandler.CancelRegistration)
		})

		// --- Admin routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Use(cfg.RequireAdmin)

			r.Post("/admin/workshops", cfg.WorkshopHandler.CreateWorkshop)
			r.Put("/admin/workshops/{workshopID}", cfg.WorkshopHandler.UpdateWorkshop)
			r.Delete("/admin/workshops/{workshopID}", cfg.WorkshopHandler.DeleteWorkshop)
			r.Get("/admin/workshops/{workshopID}/participants", cfg.WorkshopHandler.Participants)
			r.Post("/admin/workshops/{workshopID}/attendance", cfg.WorkshopHandler.SetAttendance)
			r.Get("/admin/stats", cfg.WorkshopHandler.Stats)

			r.Post("/admin/events", cfg.EventHandler.CreateEvent)
			r.Put("/admin/events/{eventID}", cfg.EventHandler.UpdateEvent)
			r.Delete("/admin/events/{eventID}", cfg.EventHandler.DeleteEvent)

			r.Get("/admin/locations", cfg.LocationsHandler.ListLocations)
			r.Post("/admin/locations", cfg.LocationsHandler.UpsertLocation)
			r.Delete("/admin/locations/{locationID}", cfg.LocationsHandler.DeleteLocation)
		})
	})

	return r
}
