package locations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/geo"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

var _ LocationsRepo = (*PostgresLocationsRepo)(nil)
var _ geo.PredefinedLookup = (*PostgresLocationsRepo)(nil)

// LocationsRepo defines the contract for the curated venue table.
type LocationsRepo interface {
	// LookupCoordinates finds the curated coordinates for a venue by
	// case-insensitive (location, city) match. Returns (nil, nil) when no
	// entry exists.
	LookupCoordinates(ctx context.Context, location, city string) (*geo.Coordinate, error)

	List(ctx context.Context, city string) ([]types.PredefinedLocation, error)

	// Upsert creates an entry or replaces the coordinates of an existing
	// (location_name, city) pair.
	Upsert(ctx context.Context, adminID uuid.UUID, params types.UpsertPredefinedLocationParams) (*types.PredefinedLocation, error)

	// Delete removes an entry. Returns api.ErrNotFound when it never existed.
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresLocationsRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresLocationsRepo(pgxpool api.DBPool, logger *slog.Logger) *PostgresLocationsRepo {
	return &PostgresLocationsRepo{
		logger: logger,
		pgpool: pgxpool,
	}
}

func (r *PostgresLocationsRepo) LookupCoordinates(ctx context.Context, location, city string) (*geo.Coordinate, error) {
	var coord geo.Coordinate
	err := r.pgpool.QueryRow(ctx, `
		SELECT lat, lon FROM predefined_locations
		WHERE LOWER(location_name) = LOWER($1) AND LOWER(city) = LOWER($2)`,
		location, city).Scan(&coord.Lat, &coord.Lon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query predefined location: %w", err)
	}
	return &coord, nil
}

func (r *PostgresLocationsRepo) List(ctx context.Context, city string) ([]types.PredefinedLocation, error) {
	query := `
		SELECT id, country, city, location_name, lat, lon, created_by, created_at
		FROM predefined_locations`
	args := []interface{}{}
	if city != "" {
		query += ` WHERE LOWER(city) = LOWER($1)`
		args = append(args, city)
	}
	query += ` ORDER BY city, location_name`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predefined locations: %w", err)
	}
	defer rows.Close()

	var out []types.PredefinedLocation
	for rows.Next() {
		var loc types.PredefinedLocation
		if err := rows.Scan(&loc.ID, &loc.Country, &loc.City, &loc.LocationName,
			&loc.Lat, &loc.Lon, &loc.CreatedBy, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan predefined location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *PostgresLocationsRepo) Upsert(ctx context.Context, adminID uuid.UUID, params types.UpsertPredefinedLocationParams) (*types.PredefinedLocation, error) {
	var loc types.PredefinedLocation
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO predefined_locations (country, city, location_name, lat, lon, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (location_name, city) DO UPDATE
		SET country = EXCLUDED.country, lat = EXCLUDED.lat, lon = EXCLUDED.lon
		RETURNING id, country, city, location_name, lat, lon, created_by, created_at`,
		params.Country, params.City, params.LocationName, params.Lat, params.Lon, adminID).Scan(
		&loc.ID, &loc.Country, &loc.City, &loc.LocationName,
		&loc.Lat, &loc.Lon, &loc.CreatedBy, &loc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert predefined location: %w", err)
	}

	r.logger.InfoContext(ctx, "Predefined location upserted",
		slog.String("city", loc.City), slog.String("location", loc.LocationName))
	return &loc, nil
}

func (r *PostgresLocationsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM predefined_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete predefined location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}
