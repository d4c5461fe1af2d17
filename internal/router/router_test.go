package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/internal/middleware"
	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/pkg/auth"
)

type stubHandler struct {
	path   string
	public string
}

func (h stubHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func (h stubHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST(h.public, func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func newTestRouter(t *testing.T, reg *prometheus.Registry) (*Router, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt := auth.NewJWTService("secret", "barber-api", time.Hour)
	authMW := middleware.NewAuthMiddleware(jwt, config.AdminConfig{SuperAdminEmails: []string{"root@example.com"}})

	r := NewRouter(authMW, nil, Handlers{
		Spots:  stubHandler{path: "/spots/remaining"},
		Barber: stubHandler{path: "/barbers/ping"},
		Admin:  stubHandler{path: "/companies"},
		Report: stubHandler{path: "/reports/signups", public: "/visits"},
	}, RouterConfig{
		RateLimit:     100,
		RateBurst:     100,
		CORSConfig:    middleware.NewCORSConfig([]string{"*"}),
		MetricsPrefix: "test",
		Registerer:    reg,
	})
	r.Setup()
	return r, jwt
}

func request(t *testing.T, r *Router, method, path, token string) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.Engine().ServeHTTP(w, req)
	return w.Code
}

func TestRouteGroups(t *testing.T) {
	r, jwt := newTestRouter(t, prometheus.NewRegistry())

	owner, err := jwt.GenerateAccessToken(&model.Principal{UserID: uuid.New(), Email: "owner@example.com"})
	require.NoError(t, err)
	root, err := jwt.GenerateAccessToken(&model.Principal{UserID: uuid.New(), Email: "root@example.com"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, request(t, r, http.MethodGet, "/api/v1/spots/remaining", ""))
	assert.Equal(t, http.StatusNoContent, request(t, r, http.MethodPost, "/api/v1/visits", ""))

	assert.Equal(t, http.StatusUnauthorized, request(t, r, http.MethodGet, "/api/v1/barbers/ping", ""))
	assert.Equal(t, http.StatusNoContent, request(t, r, http.MethodGet, "/api/v1/barbers/ping", owner))

	assert.Equal(t, http.StatusUnauthorized, request(t, r, http.MethodGet, "/api/v1/admin/companies", ""))
	assert.Equal(t, http.StatusForbidden, request(t, r, http.MethodGet, "/api/v1/admin/companies", owner))
	assert.Equal(t, http.StatusNoContent, request(t, r, http.MethodGet, "/api/v1/admin/companies", root))
	assert.Equal(t, http.StatusNoContent, request(t, r, http.MethodGet, "/api/v1/admin/reports/signups", root))
}

func TestRequestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, _ := newTestRouter(t, reg)

	request(t, r, http.MethodGet, "/api/v1/spots/remaining", "")
	request(t, r, http.MethodGet, "/api/v1/barbers/ping", "")

	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.requestTotal.WithLabelValues(http.MethodGet, "/api/v1/spots/remaining", "204")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.errorTotal.WithLabelValues(http.MethodGet, "/api/v1/barbers/ping", "client")))
}
