package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ritmohub/go-dance-listings/internal/api"
	"github.com/ritmohub/go-dance-listings/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, params types.RegisterRequest) (*types.TokenResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*types.TokenResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func newTestHandler(svc AuthService) *HandlerImpl {
	return NewHandlerImpl(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestHandlerLogin(t *testing.T) {
	t.Run("returns token pair on success", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Login", mock.Anything, "maria", "pass-word").Return(&types.TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Username:     "maria",
		}, nil)

		h := newTestHandler(mockSvc)
		rr := doJSON(t, h.Login, http.MethodPost, "/auth/login", types.LoginRequest{Username: "maria", Password: "pass-word"})

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp types.TokenResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "access", resp.AccessToken)
		assert.Equal(t, "refresh", resp.RefreshToken)
	})

	t.Run("maps unauthorized to 401", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Login", mock.Anything, "maria", "bad").Return(nil, api.ErrUnauthorized)

		h := newTestHandler(mockSvc)
		rr := doJSON(t, h.Login, http.MethodPost, "/auth/login", types.LoginRequest{Username: "maria", Password: "bad"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		h := newTestHandler(new(MockAuthService))
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
		rr := httptest.NewRecorder()
		h.Login(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandlerRegister(t *testing.T) {
	t.Run("created on success", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Register", mock.Anything, types.RegisterRequest{Username: "maria", Password: "str0ng-pass"}).
			Return(&types.TokenResponse{Username: "maria"}, nil)

		h := newTestHandler(mockSvc)
		rr := doJSON(t, h.Register, http.MethodPost, "/auth/register", types.RegisterRequest{Username: "maria", Password: "str0ng-pass"})
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("short password rejected before the service runs", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		h := newTestHandler(mockSvc)
		rr := doJSON(t, h.Register, http.MethodPost, "/auth/register", types.RegisterRequest{Username: "maria", Password: "short"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockSvc.AssertNotCalled(t, "Register")
	})

	t.Run("duplicate username maps to 409", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, api.ErrConflict)

		h := newTestHandler(mockSvc)
		rr := doJSON(t, h.Register, http.MethodPost, "/auth/register", types.RegisterRequest{Username: "maria", Password: "str0ng-pass"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestHandlerRefresh(t *testing.T) {
	t.Run("missing token is a bad request", func(t *testing.T) {
		h := newTestHandler(new(MockAuthService))
		rr := doJSON(t, h.Refresh, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": ""})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("expired token maps to 401", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Refresh", mock.Anything, "stale").Return(nil, api.ErrUnauthorized)

		h := newTestHandler(mockSvc)
		rr := doJSON(t, h.Refresh, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": "stale"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
