package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/middleware"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Catalog hydration runs at construction time.
	mock.ExpectQuery(`SELECT.*FROM role_definitions`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "label", "description", "permissions", "updated_at"}))
	// The expiry job's startup sweep may land before the router is exercised.
	mock.ExpectExec(`UPDATE invitations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cfg := &config.Config{}
	cfg.Logging.Level = "error"
	cfg.Invitations.ExpiryCheckIntervalHours = 1

	r, bg := NewRouter(cfg, sqlx.NewDb(db, "postgres"))
	t.Cleanup(bg.Shutdown)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_SystemEndpoints(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	assert.Equal(t, http.StatusOK, get(r, "/version").Code)
	assert.Contains(t, get(r, "/version").Body.String(), "v1")
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/auth/me",
		"/api/v1/companies",
		"/api/v1/members",
		"/api/v1/roles",
		"/api/v1/stats",
		"/api/v1/audit-logs",
	} {
		assert.Equal(t, http.StatusUnauthorized, get(r, path).Code, "path %s", path)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/nonsense").Code)
}

func TestGeneralRateLimitConfig_Defaults(t *testing.T) {
	assert.Equal(t, middleware.DefaultRateLimitConfig(), generalRateLimitConfig(&config.Config{}))
}

func TestGeneralRateLimitConfig_Overrides(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.RateLimiting.RequestsPerMinute = 120
	cfg.Security.RateLimiting.Burst = 25

	rlc := generalRateLimitConfig(cfg)
	assert.Equal(t, 120, rlc.RequestsPerMinute)
	assert.Equal(t, 25, rlc.BurstSize)
}

func TestAuthRateLimitConfig_Overrides(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.RateLimiting.AuthRequestsPerMinute = 3

	assert.Equal(t, 3, authRateLimitConfig(cfg).RequestsPerMinute)
}
