package workshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ritmohub/go-dance-listings/app/observability/metrics"
	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

var _ WorkshopRepo = (*PostgresWorkshopRepo)(nil)

// WorkshopRepo defines the contract for workshop and registration persistence.
type WorkshopRepo interface {
	CreateWorkshop(ctx context.Context, adminID uuid.UUID, params types.CreateWorkshopParams, lat, lon *float64) (*types.Workshop, error)

	// GetWorkshop returns one workshop with its participant count.
	// Returns api.ErrNotFound when it doesn't exist.
	GetWorkshop(ctx context.Context, id uuid.UUID) (*types.Workshop, error)

	ListWorkshops(ctx context.Context, filter types.WorkshopFilter) ([]types.Workshop, error)

	// ListWithCoordinates returns every workshop that has a resolved point.
	ListWithCoordinates(ctx context.Context) ([]types.Workshop, error)

	// UpdateWorkshop applies the non-nil fields of params.
	UpdateWorkshop(ctx context.Context, id uuid.UUID, params types.UpdateWorkshopParams) error

	// SetCoordinates overwrites the stored point, nil clears it.
	SetCoordinates(ctx context.Context, id uuid.UUID, lat, lon *float64) error

	DeleteWorkshop(ctx context.Context, id uuid.UUID) error

	// CountSiblings returns how many other workshops share the normalized
	// (city, location) pair and the exact style. excludeID skips the record
	// being updated; pass uuid.Nil on create.
	CountSiblings(ctx context.Context, city, location, style string, excludeID uuid.UUID) (int, error)

	// Register adds a user to a workshop. Returns api.ErrConflict on a
	// duplicate registration and api.ErrNotFound when the workshop is gone.
	Register(ctx context.Context, userID, workshopID uuid.UUID) error

	CancelRegistration(ctx context.Context, userID, workshopID uuid.UUID) error

	Participants(ctx context.Context, workshopID uuid.UUID) ([]types.Participant, error)

	SetAttendance(ctx context.Context, workshopID, userID uuid.UUID, attended bool) error

	Stats(ctx context.Context) (*types.AdminStats, error)
}

type PostgresWorkshopRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresWorkshopRepo(pgxpool api.DBPool, logger *slog.Logger) *PostgresWorkshopRepo {
	return &PostgresWorkshopRepo{
		logger: logger,
		pgpool: pgxpool,
	}
}

const workshopColumns = `
	w.id, w.admin_id, w.title, w.city, w.location, w.date, w.start_time,
	w.end_time, w.style, w.difficulty, w.instructor_name, w.description,
	w.max_participants, w.lat, w.lon, w.facebook_url, w.recurrence, w.created_at,
	(SELECT COUNT(*) FROM registrations reg WHERE reg.workshop_id = w.id) AS participant_count`

func scanWorkshop(row pgx.Row) (*types.Workshop, error) {
	var w types.Workshop
	err := row.Scan(&w.ID, &w.AdminID, &w.Title, &w.City, &w.Location, &w.Date,
		&w.StartTime, &w.EndTime, &w.Style, &w.Difficulty, &w.InstructorName,
		&w.Description, &w.MaxParticipants, &w.Lat, &w.Lon, &w.FacebookURL,
		&w.Recurrence, &w.CreatedAt, &w.ParticipantCount)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *PostgresWorkshopRepo) CreateWorkshop(ctx context.Context, adminID uuid.UUID, params types.CreateWorkshopParams, lat, lon *float64) (*types.Workshop, error) {
	ctx, span := otel.Tracer("WorkshopRepo").Start(ctx, "CreateWorkshop", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "workshops"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateWorkshop"))

	query := `
		INSERT INTO workshops (admin_id, title, city, location, date, start_time,
			end_time, style, difficulty, instructor_name, description,
			max_participants, lat, lon, facebook_url, recurrence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`

	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, query,
		adminID, params.Title, params.City, params.Location, params.Date,
		params.StartTime, params.EndTime, params.Style, params.Difficulty,
		params.InstructorName, params.Description, params.MaxParticipants,
		lat, lon, params.FacebookURL, params.Recurrence).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert workshop: %w", err)
	}

	l.InfoContext(ctx, "Workshop created",
		slog.String("workshopID", id.String()),
		slog.String("city", params.City), slog.String("style", params.Style))
	return r.GetWorkshop(ctx, id)
}

func (r *PostgresWorkshopRepo) GetWorkshop(ctx context.Context, id uuid.UUID) (*types.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops w WHERE w.id = $1`
	w, err := scanWorkshop(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query workshop: %w", err)
	}
	return w, nil
}

func (r *PostgresWorkshopRepo) ListWorkshops(ctx context.Context, filter types.WorkshopFilter) ([]types.Workshop, error) {
	ctx, span := otel.Tracer("WorkshopRepo").Start(ctx, "ListWorkshops", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "workshops"),
	))
	defer span.End()

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Style != "" {
		conditions = append(conditions, fmt.Sprintf("w.style = $%d", argID))
		args = append(args, filter.Style)
		argID++
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("w.city ILIKE $%d", argID))
		args = append(args, "%"+filter.City+"%")
		argID++
	}
	if filter.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("w.difficulty = $%d", argID))
		args = append(args, filter.Difficulty)
		argID++
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("w.date >= $%d", argID))
		args = append(args, filter.DateFrom)
		argID++
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("w.date <= $%d", argID))
		args = append(args, filter.DateTo)
		argID++
	}

	query := `SELECT ` + workshopColumns + ` FROM workshops w`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY w.date, w.start_time"

	return r.queryWorkshops(ctx, query, args...)
}

func (r *PostgresWorkshopRepo) ListWithCoordinates(ctx context.Context) ([]types.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops w
		WHERE w.lat IS NOT NULL AND w.lon IS NOT NULL`
	return r.queryWorkshops(ctx, query)
}

func (r *PostgresWorkshopRepo) queryWorkshops(ctx context.Context, query string, args ...interface{}) ([]types.Workshop, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		if m := metrics.App(); m != nil {
			m.DbQueryErrorsTotal.Add(ctx, 1)
		}
		return nil, fmt.Errorf("failed to query workshops: %w", err)
	}
	defer rows.Close()

	var out []types.Workshop
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workshop: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *PostgresWorkshopRepo) UpdateWorkshop(ctx context.Context, id uuid.UUID, params types.UpdateWorkshopParams) error {
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
	if params.City != nil {
		add("city", *params.City)
	}
	if params.Location != nil {
		add("location", *params.Location)
	}
	if params.Date != nil {
		add("date", *params.Date)
	}
	if params.StartTime != nil {
		add("start_time", *params.StartTime)
	}
	if params.EndTime != nil {
		add("end_time", *params.EndTime)
	}
	if params.Style != nil {
		add("style", *params.Style)
	}
	if params.Difficulty != nil {
		add("difficulty", *params.Difficulty)
	}
	if params.InstructorName != nil {
		add("instructor_name", *params.InstructorName)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE workshops SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argID)
	args = append(args, id)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update workshop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresWorkshopRepo) SetCoordinates(ctx context.Context, id uuid.UUID, lat, lon *float64) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE workshops SET lat = $1, lon = $2 WHERE id = $3", lat, lon, id)
	if err != nil {
		return fmt.Errorf("failed to set workshop coordinates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresWorkshopRepo) DeleteWorkshop(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM workshops WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workshop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresWorkshopRepo) CountSiblings(ctx context.Context, city, location, style string, excludeID uuid.UUID) (int, error) {
	var count int
	err := r.pgpool.QueryRow(ctx, `
		SELECT COUNT(*) FROM workshops
		WHERE LOWER(city) = LOWER($1) AND LOWER(location) = LOWER($2)
		  AND style = $3 AND id <> $4`,
		city, location, style, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count siblings: %w", err)
	}
	return count, nil
}

func (r *PostgresWorkshopRepo) Register(ctx context.Context, userID, workshopID uuid.UUID) error {
	l := r.logger.With(slog.String("method", "Register"),
		slog.String("workshopID", workshopID.String()))

	_, err := r.pgpool.Exec(ctx, `
		INSERT INTO registrations (user_id, workshop_id)
		VALUES ($1, $2)`,
		userID, workshopID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return api.ErrConflict
			case "23503":
				return api.ErrNotFound
			}
		}
		return fmt.Errorf("failed to register: %w", err)
	}

	l.InfoContext(ctx, "User registered for workshop", slog.String("userID", userID.String()))
	return nil
}

func (r *PostgresWorkshopRepo) CancelRegistration(ctx context.Context, userID, workshopID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `
		DELETE FROM registrations WHERE user_id = $1 AND workshop_id = $2`,
		userID, workshopID)
	if err != nil {
		return fmt.Errorf("failed to cancel registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresWorkshopRepo) Participants(ctx context.Context, workshopID uuid.UUID) ([]types.Participant, error) {
	rows, err := r.pgpool.Query(ctx, `
		SELECT u.id, u.username, reg.registered_at, reg.attended
		FROM registrations reg
		JOIN users u ON u.id = reg.user_id
		WHERE reg.workshop_id = $1
		ORDER BY reg.registered_at`,
		workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var out []types.Participant
	for rows.Next() {
		var p types.Participant
		if err := rows.Scan(&p.UserID, &p.Username, &p.RegisteredAt, &p.Attended); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresWorkshopRepo) SetAttendance(ctx context.Context, workshopID, userID uuid.UUID, attended bool) error {
	tag, err := r.pgpool.Exec(ctx, `
		UPDATE registrations SET attended = $1
		WHERE workshop_id = $2 AND user_id = $3`,
		attended, workshopID, userID)
	if err != nil {
		return fmt.Errorf("failed to set attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresWorkshopRepo) Stats(ctx context.Context) (*types.AdminStats, error) {
	var stats types.AdminStats
	err := r.pgpool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM workshops),
			(SELECT COUNT(*) FROM registrations),
			(SELECT COUNT(*) FROM users)`).Scan(
		&stats.TotalWorkshops, &stats.TotalRegistrations, &stats.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats totals: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, `
		SELECT style, COUNT(*) FROM workshops GROUP BY style`)
	if err != nil {
		return nil, fmt.Errorf("failed to query style breakdown: %w", err)
	}
	defer rows.Close()

	stats.WorkshopsByStyle = make(map[string]int)
	for rows.Next() {
		var style string
		var count int
		if err := rows.Scan(&style, &count); err != nil {
			return nil, fmt.Errorf("failed to scan style breakdown: %w", err)
		}
		stats.WorkshopsByStyle[style] = count
	}
	return &stats, rows.Err()
}
