package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for user and refresh token persistence.
type AuthRepo interface {
	// CreateUser inserts a new user with a hashed password.
	// Returns api.ErrConflict when the username is taken.
	CreateUser(ctx context.Context, username, email, password string) (*types.User, error)

	// GetUserByUsername retrieves a user for login.
	// Returns api.ErrNotFound if no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)

	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)

	VerifyPassword(hashedPassword, password string) error

	// StoreRefreshToken persists a refresh token with its expiry.
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// ValidateRefreshToken returns the owning user ID of a live, unrevoked
	// token. Returns api.ErrUnauthorized for unknown, expired or revoked
	// tokens.
	ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error)

	// RevokeRefreshToken marks a single token revoked.
	RevokeRefreshToken(ctx context.Context, token string) error

	// RevokeAllRefreshTokens invalidates every live token of a user.
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresAuthRepo(pgxpool api.DBPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgxpool,
	}
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, username, email, password string) (*types.User, error) {
	l := r.logger.With(slog.String("method", "CreateUser"), slog.String("username", username))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user types.User
	err = r.pgpool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, username, COALESCE(email, ''), is_admin, created_at`,
		username, email, string(hashedPassword)).Scan(
		&user.ID, &user.Username, &user.Email, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			l.WarnContext(ctx, "Username already taken")
			return nil, api.ErrConflict
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.String("userID", user.ID.String()))
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx, `
		SELECT id, username, COALESCE(email, ''), password_hash, is_admin, created_at
		FROM users WHERE username = $1`,
		username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx, `
		SELECT id, username, COALESCE(email, ''), is_admin, created_at
		FROM users WHERE id = $1`,
		userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.pgpool.QueryRow(ctx, `
		SELECT user_id FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > now()`,
		token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, api.ErrUnauthorized
		}
		return uuid.Nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}
	return userID, nil
}

func (r *PostgresAuthRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.pgpool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token = $1 AND revoked_at IS NULL`,
		token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pgpool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}
