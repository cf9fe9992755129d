package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshop/internal/core/clock"
	appctx "smartshop/internal/core/context"
	"smartshop/internal/domain/auth"
	"smartshop/internal/infrastructure/storage/postgres"
	"smartshop/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubDB struct{ err error }

func (s stubDB) Ping(context.Context) error { return s.err }

func (s stubDB) Stats() postgres.PoolStats { return postgres.PoolStats{MaxConns: 25} }

type tokenTable map[string]*appctx.UserContext

func (t tokenTable) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := t[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func newTestRouter(db stubDB) *gin.Engine {
	return NewRouter(RouterConfig{
		Logger:   logger.NewNop(),
		Database: db,
		JWTValidator: tokenTable{
			"store": {UserID: "u-2", UserName: "clerk", Roles: []string{auth.RoleStoreAdmin}},
		},
		Clock:   clock.NewFixed(time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)),
		Version: "test",
	})
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_StatusIsPublic(t *testing.T) {
	r := newTestRouter(stubDB{})

	w := get(r, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Healthy", body["status"])
	assert.Equal(t, "2025-09-20T12:00:00Z", body["timestamp"])
	assert.Equal(t, "Healthy", body["database"].(map[string]any)["status"])
}

func TestRouter_ReadinessReflectsDatabase(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(newTestRouter(stubDB{}), "/health/ready", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(newTestRouter(stubDB{err: errors.New("down")}), "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, get(newTestRouter(stubDB{err: errors.New("down")}), "/health/live", "").Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(stubDB{})

	for _, path := range []string{"/api/products", "/api/customers", "/api/paymentmethods", "/api/settings", "/api/invoices", "/api/sequences", "/api/users"} {
		w := get(r, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_UsersRequireSysAdmin(t *testing.T) {
	r := newTestRouter(stubDB{})

	w := get(r, "/api/users", "store")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_UnknownRouteIsEnvelope(t *testing.T) {
	r := newTestRouter(stubDB{})

	w := get(r, "/api/nothing-here", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, http.StatusNotFound, body["statusCode"])
}
