package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	database "github.com/ritmohub/go-dance-listings/app/db"
	"github.com/ritmohub/go-dance-listings/config"
	"github.com/ritmohub/go-dance-listings/internal/api/auth"
	"github.com/ritmohub/go-dance-listings/internal/api/event"
	"github.com/ritmohub/go-dance-listings/internal/api/locations"
	"github.com/ritmohub/go-dance-listings/internal/api/workshop"
	"github.com/ritmohub/go-dance-listings/internal/geo"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	Pipeline         *geo.Pipeline
	VenueResolver    *geo.VenueResolver
	WorkshopRepo     workshop.WorkshopRepo
	AuthHandler      *auth.HandlerImpl
	WorkshopHandler  *workshop.HandlerImpl
	EventHandler     *event.HandlerImpl
	LocationsHandler *locations.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	// Geo core: geocoder, two cache tiers, resolver chain, pipeline.
	geocoder := geo.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	cityResolver := geo.NewCityResolver(geo.NewCache(), geocoder, cfg.Geocoder.RegionHint, logger)
	venueResolver := geo.NewVenueResolver(geo.NewCache(), geocoder, cityResolver, cfg.Geocoder.RegionHint, logger)

	locationsRepo := locations.NewPostgresLocationsRepo(pool, logger)
	pipeline := geo.NewPipeline(locationsRepo, venueResolver, logger)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewServiceImpl(authRepo, cfg.JWT, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	workshopRepo := workshop.NewPostgresWorkshopRepo(pool, logger)
	workshopService := workshop.NewServiceImpl(workshopRepo, pipeline, logger)
	workshopHandler := workshop.NewHandlerImpl(workshopService, logger)

	eventRepo := event.NewPostgresEventRepo(pool, logger)
	eventService := event.NewServiceImpl(eventRepo, pipeline, logger)
	eventHandler := event.NewHandlerImpl(eventService, cfg.Server.UploadDir, logger)

	locationsHandler := locations.NewHandlerImpl(locationsRepo, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		Pipeline:         pipeline,
		VenueResolver:    venueResolver,
		WorkshopRepo:     workshopRepo,
		AuthHandler:      authHandler,
		WorkshopHandler:  workshopHandler,
		EventHandler:     eventHandler,
		LocationsHandler: locationsHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}

// WarmVenueCache resolves every distinct (location, city) pair already in the
// database into the venue cache so the first map render after a restart never
// waits on live geocoding. Failures are per-venue and non-fatal.
func (c *Container) WarmVenueCache(ctx context.Context) error {
	rows, err := c.Pool.Query(ctx, `
		SELECT DISTINCT location, city FROM workshops
		UNION
		SELECT DISTINCT location, city FROM events`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type venue struct{ location, city string }
	var venues []venue
	for rows.Next() {
		var v venue
		if err := rows.Scan(&v.location, &v.city); err != nil {
			return err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, v := range venues {
		v := v
		g.Go(func() error {
			if _, ok := c.VenueResolver.Resolve(gctx, v.location, v.city); !ok {
				c.Logger.Warn("Warm-up could not resolve venue",
					slog.String("location", v.location), slog.String("city", v.city))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.Logger.Info("Venue cache warm-up complete", slog.Int("venues", len(venues)))
	return nil
}
