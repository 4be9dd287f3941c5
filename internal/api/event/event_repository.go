package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

var _ EventRepo = (*PostgresEventRepo)(nil)

// EventRepo defines the contract for event persistence.
type EventRepo interface {
	CreateEvent(ctx context.Context, adminID uuid.UUID, params types.CreateEventParams, lat, lon *float64) (*types.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*types.Event, error)
	ListEvents(ctx context.Context, city string) ([]types.Event, error)

	// UpdateEvent applies the non-nil fields of params.
	UpdateEvent(ctx context.Context, id uuid.UUID, params types.UpdateEventParams) error

	// SetCoordinates overwrites the stored point; nil clears it.
	SetCoordinates(ctx context.Context, id uuid.UUID, lat, lon *float64) error

	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

type PostgresEventRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresEventRepo(pgxpool api.DBPool, logger *slog.Logger) *PostgresEventRepo {
	return &PostgresEventRepo{
		logger: logger,
		pgpool: pgxpool,
	}
}

const eventColumns = `
	id, admin_id, title, photo_path, event_organizer, location, country, city,
	start_date, start_time, end_date, end_time, description, facebook_url,
	lat, lon, created_at`

func scanEvent(row pgx.Row) (*types.Event, error) {
	var e types.Event
	err := row.Scan(&e.ID, &e.AdminID, &e.Title, &e.PhotoPath, &e.EventOrganizer,
		&e.Location, &e.Country, &e.City, &e.StartDate, &e.StartTime,
		&e.EndDate, &e.EndTime, &e.Description, &e.FacebookURL,
		&e.Lat, &e.Lon, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresEventRepo) CreateEvent(ctx context.Context, adminID uuid.UUID, params types.CreateEventParams, lat, lon *float64) (*types.Event, error) {
	l := r.logger.With(slog.String("method", "CreateEvent"))

	query := `
		INSERT INTO events (admin_id, title, photo_path, event_organizer, location,
			country, city, start_date, start_time, end_date, end_time,
			description, facebook_url, lat, lon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + eventColumns

	e, err := scanEvent(r.pgpool.QueryRow(ctx, query,
		adminID, params.Title, params.PhotoPath, params.EventOrganizer,
		params.Location, params.Country, params.City, params.StartDate,
		params.StartTime, params.EndDate, params.EndTime, params.Description,
		params.FacebookURL, lat, lon))
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	l.InfoContext(ctx, "Event created",
		slog.String("eventID", e.ID.String()), slog.String("city", e.City))
	return e, nil
}

func (r *PostgresEventRepo) GetEvent(ctx context.Context, id uuid.UUID) (*types.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return e, nil
}

func (r *PostgresEventRepo) ListEvents(ctx context.Context, city string) ([]types.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []interface{}{}
	if city != "" {
		query += ` WHERE city ILIKE $1`
		args = append(args, "%"+city+"%")
	}
	query += ` ORDER BY start_date, start_time`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []types.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *PostgresEventRepo) UpdateEvent(ctx context.Context, id uuid.UUID, params types.UpdateEventParams) error {
	var setClauses []string
	var args []interface{}
	argID := 1

	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if params.Title != nil {
		add("title", *params.Title)
	}
	if params.EventOrganizer != nil {
		add("event_organizer", *params.EventOrganizer)
	}
	if params.Location != nil {
		add("location", *params.Location)
	}
	if params.City != nil {
		add("city", *params.City)
	}
	if params.Country != nil {
		add("country", *params.Country)
	}
	if params.StartDate != nil {
		add("start_date", *params.StartDate)
	}
	if params.StartTime != nil {
		add("start_time", *params.StartTime)
	}
	if params.EndDate != nil {
		add("end_date", *params.EndDate)
	}
	if params.EndTime != nil {
		add("end_time", *params.EndTime)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.FacebookURL != nil {
		add("facebook_url", *params.FacebookURL)
	}
	if params.PhotoPath != nil {
		add("photo_path", *params.PhotoPath)
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argID)
	args = append(args, id)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepo) SetCoordinates(ctx context.Context, id uuid.UUID, lat, lon *float64) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE events SET lat = $1, lon = $2 WHERE id = $3", lat, lon, id)
	if err != nil {
		return fmt.Errorf("failed to set event coordinates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}
