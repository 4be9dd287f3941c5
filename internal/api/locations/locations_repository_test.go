package locations

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresLocationsRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresLocationsRepo(mockPool, logger), mockPool
}

func TestLookupCoordinates(t *testing.T) {
	ctx := context.Background()

	t.Run("match is case insensitive and returns the stored point", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT lat, lon FROM predefined_locations")).
			WithArgs("Club Dance Station", "Sofia").
			WillReturnRows(pgxmock.NewRows([]string{"lat", "lon"}).AddRow(42.6858, 23.3189))

		coord, err := repo.LookupCoordinates(ctx, "Club Dance Station", "Sofia")
		require.NoError(t, err)
		require.NotNil(t, coord)
		assert.InDelta(t, 42.6858, coord.Lat, 1e-9)
		assert.InDelta(t, 23.3189, coord.Lon, 1e-9)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("no entry returns nil without error", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT lat, lon FROM predefined_locations")).
			WithArgs("Unknown Hall", "Sofia").
			WillReturnRows(pgxmock.NewRows([]string{"lat", "lon"}))

		coord, err := repo.LookupCoordinates(ctx, "Unknown Hall", "Sofia")
		require.NoError(t, err)
		assert.Nil(t, coord)
	})
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newMockRepo(t)

	adminID := uuid.New()
	locID := uuid.New()
	now := time.Now()
	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO predefined_locations")).
		WithArgs("Bulgaria", "Sofia", "Club Dance Station", 42.6858, 23.3189, adminID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "country", "city", "location_name", "lat", "lon", "created_by", "created_at"}).
			AddRow(locID, "Bulgaria", "Sofia", "Club Dance Station", 42.6858, 23.3189, adminID, now))

	loc, err := repo.Upsert(ctx, adminID, types.UpsertPredefinedLocationParams{
		Country:      "Bulgaria",
		City:         "Sofia",
		LocationName: "Club Dance Station",
		Lat:          42.6858,
		Lon:          23.3189,
	})
	require.NoError(t, err)
	assert.Equal(t, locID, loc.ID)
	assert.Equal(t, "Club Dance Station", loc.LocationName)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing row deleted", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := uuid.New()
		mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM predefined_locations WHERE id = $1")).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("missing row reports not found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := uuid.New()
		mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM predefined_locations WHERE id = $1")).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(ctx, id), api.ErrNotFound)
	})
}
