package workshop

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

func emptyUpdate() types.UpdateWorkshopParams { return types.UpdateWorkshopParams{} }

func newMockRepo(t *testing.T) (*PostgresWorkshopRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresWorkshopRepo(mockPool, logger), mockPool
}

func TestCountSiblings(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newMockRepo(t)

	excludeID := uuid.New()
	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM workshops")).
		WithArgs("Sofia", "Club Dance Station", "salsa", excludeID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountSiblings(ctx, "Sofia", "Club Dance Station", "salsa", excludeID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRegisterErrorMapping(t *testing.T) {
	ctx := context.Background()
	userID, workshopID := uuid.New(), uuid.New()

	t.Run("duplicate registration maps to conflict", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
			WithArgs(userID, workshopID).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		assert.ErrorIs(t, repo.Register(ctx, userID, workshopID), api.ErrConflict)
	})

	t.Run("missing workshop maps to not found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
			WithArgs(userID, workshopID).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		assert.ErrorIs(t, repo.Register(ctx, userID, workshopID), api.ErrNotFound)
	})

	t.Run("successful insert", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
			WithArgs(userID, workshopID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Register(ctx, userID, workshopID))
	})
}

func TestSetCoordinates(t *testing.T) {
	ctx := context.Background()

	t.Run("nil pointers clear the stored point", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := uuid.New()
		mockPool.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET lat = $1, lon = $2 WHERE id = $3")).
			WithArgs((*float64)(nil), (*float64)(nil), id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		var latNil, lonNil *float64
		assert.NoError(t, repo.SetCoordinates(ctx, id, latNil, lonNil))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("missing workshop reports not found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := uuid.New()
		lat, lon := 42.7, 23.3
		mockPool.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET lat = $1, lon = $2 WHERE id = $3")).
			WithArgs(&lat, &lon, id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.SetCoordinates(ctx, id, &lat, &lon), api.ErrNotFound)
	})
}

func TestUpdateWorkshopDynamicSet(t *testing.T) {
	ctx := context.Background()

	t.Run("no fields is a no-op", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		assert.NoError(t, repo.UpdateWorkshop(ctx, uuid.New(), emptyUpdate()))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("only the provided columns appear in SET", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := uuid.New()
		mockPool.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET style = $1 WHERE id = $2")).
			WithArgs("bachata", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		upd := emptyUpdate()
		style := "bachata"
		upd.Style = &style
		assert.NoError(t, repo.UpdateWorkshop(ctx, id, upd))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newMockRepo(t)

	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(pgxmock.NewRows([]string{"w", "r", "u"}).AddRow(12, 80, 40))
	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT style, COUNT(*) FROM workshops GROUP BY style")).
		WillReturnRows(pgxmock.NewRows([]string{"style", "count"}).
			AddRow("salsa", 7).
			AddRow("bachata", 5))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalWorkshops)
	assert.Equal(t, 80, stats.TotalRegistrations)
	assert.Equal(t, 40, stats.TotalUsers)
	assert.Equal(t, map[string]int{"salsa": 7, "bachata": 5}, stats.WorkshopsByStyle)
}
