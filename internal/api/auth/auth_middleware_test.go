package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmohub/go-dance-listings/config"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

func signTestToken(t *testing.T, cfg config.JWTConfig, isAdmin bool, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := types.Claims{
		UserID:  "11111111-2222-3333-4444-555555555555",
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
	require.NoError(t, err)
	return signed
}

func TestAuthenticate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testJWTConfig()

	var gotUserID string
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserIDFromContext(r.Context())
		gotAdmin = IsAdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := Authenticate(logger, cfg)(next)

	t.Run("valid token passes claims through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/workshops", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, cfg, true, time.Hour))
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "11111111-2222-3333-4444-555555555555", gotUserID)
		assert.True(t, gotAdmin)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/workshops", nil)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/workshops", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, cfg, false, -time.Minute))
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong issuer rejected", func(t *testing.T) {
		other := cfg
		other.Issuer = "someone-else"
		req := httptest.NewRequest(http.MethodGet, "/workshops", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, other, false, time.Hour))
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testJWTConfig()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	chain := Authenticate(logger, cfg)(RequireAdmin(logger)(next))

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/workshops", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, cfg, true, time.Hour))
		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("regular user forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/workshops", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, cfg, false, time.Hour))
		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
