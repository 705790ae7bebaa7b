package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
)

// Mock token repository for testing
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *models.APIToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Save(ctx context.Context, token *models.APIToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByToken(ctx context.Context, token string) (*models.APIToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIToken), args.Error(1)
}

func (m *MockTokenRepository) List(ctx context.Context) ([]models.APIToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.APIToken), args.Error(1)
}

func (m *MockTokenRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func authTestRouter(tokens *MockTokenRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BearerAuth(tokens))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func TestBearerAuthMissingHeader(t *testing.T) {
	router := authTestRouter(new(MockTokenRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Authorization header required")
}

func TestBearerAuthMalformedHeader(t *testing.T) {
	router := authTestRouter(new(MockTokenRepository))

	for _, header := range []string{"abc123", "Basic abc123", "Bearer a b"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, "header=%q", header)
		require.Contains(t, w.Body.String(), "Invalid Authorization header format", "header=%q", header)
	}
}

func TestBearerAuthUnknownToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	tokens.On("FindByToken", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	router := authTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer nope")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestBearerAuthExpiredToken(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	tokens := new(MockTokenRepository)
	tokens.On("FindByToken", mock.Anything, "stale").Return(&models.APIToken{
		Token:     "stale",
		Name:      "old-client",
		ExpiresAt: &expired,
	}, nil)

	router := authTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer stale")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestBearerAuthValidToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	tokens.On("FindByToken", mock.Anything, "good").Return(&models.APIToken{
		Token: "good",
		Name:  "ci-client",
	}, nil)
	// last_used_at is persisted off the request path
	tokens.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()

	router := authTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pong")
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// A generated ID is echoed back
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// A caller-supplied ID is preserved
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	router.ServeHTTP(w, req)
	require.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
