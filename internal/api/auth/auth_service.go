package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ritmohub/go-dance-listings/config"
	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

var _ AuthService = (*ServiceImpl)(nil)

// AuthService defines the business logic for registration and sessions.
type AuthService interface {
	Register(ctx context.Context, params types.RegisterRequest) (*types.TokenResponse, error)
	Login(ctx context.Context, username, password string) (*types.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
}

func NewServiceImpl(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, params types.RegisterRequest) (*types.TokenResponse, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("username", params.Username))

	user, err := s.repo.CreateUser(ctx, params.Username, params.Email, params.Password)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "User registered")
	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) Login(ctx context.Context, username, password string) (*types.TokenResponse, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("username", username))

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "Login attempt for unknown user")
			return nil, api.ErrUnauthorized
		}
		return nil, err
	}

	if err := s.repo.VerifyPassword(user.PasswordHash, password); err != nil {
		l.WarnContext(ctx, "Invalid password")
		return nil, api.ErrUnauthorized
	}

	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	l := s.logger.With(slog.String("method", "Refresh"))

	userID, err := s.repo.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Rotate: the presented token is single use.
	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	l.DebugContext(ctx, "Refresh token rotated", slog.String("userID", userID.String()))
	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, refreshToken)
}

func (s *ServiceImpl) issueTokens(ctx context.Context, user *types.User) (*types.TokenResponse, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:  user.ID.String(),
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTTL)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, now.Add(s.jwtCfg.RefreshTTL)); err != nil {
		return nil, err
	}

	return &types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		Username:     user.Username,
		IsAdmin:      user.IsAdmin,
	}, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
