package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cybershield/intel/internal/api/middleware"
	"github.com/cybershield/intel/internal/config"
)

func setupRouter(t *testing.T, cfg config.Config) (*gin.Engine, *Services) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if cfg.IngestLimit == 0 {
		cfg.IngestLimit = config.DefaultIngestLimit
	}
	svc, err := Register(router, db, cfg)
	require.NoError(t, err)
	return router, svc
}

func serve(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	router, svc := setupRouter(t, config.Config{})
	require.NotNil(t, svc.Ingest)

	paths := map[string]bool{}
	for _, r := range router.Routes() {
		paths[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/health",
		"GET /metrics",
		"GET /api/v1/threats",
		"POST /api/v1/threats",
		"PATCH /api/v1/threats/:id",
		"PUT /api/v1/threats/:id",
		"DELETE /api/v1/threats/:id",
		"GET /api/v1/dashboard",
		"GET /api/v1/feeds",
		"GET /api/threats",
		"GET /api/threats/stats",
		"POST /api/threats/ingest",
		"GET /api/patterns",
		"POST /api/subscribe",
		"POST /api/assessments/submit",
	} {
		assert.True(t, paths[want], "missing route %s", want)
	}
}

func TestRoutes_OpenWithoutSecret(t *testing.T) {
	router, _ := setupRouter(t, config.Config{})

	w := serve(router, http.MethodPost, "/api/v1/threats", "", `{"title":"Open write"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(router, http.MethodGet, "/api/threats", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Open write")
}

func TestRoutes_WritesRequireRole(t *testing.T) {
	const secret = "test-secret"
	router, _ := setupRouter(t, config.Config{JWTSecret: secret})

	w := serve(router, http.MethodGet, "/api/v1/threats", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/threats", "", `{"title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	viewer, err := middleware.IssueToken(secret, "vic", middleware.RoleViewer, time.Hour)
	require.NoError(t, err)
	w = serve(router, http.MethodPost, "/api/v1/threats", viewer, `{"title":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, http.MethodPost, "/api/threats/ingest?source=none", viewer, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	analyst, err := middleware.IssueToken(secret, "ana", middleware.RoleAnalyst, time.Hour)
	require.NoError(t, err)
	w = serve(router, http.MethodPost, "/api/v1/threats", analyst, `{"title":"x"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(router, http.MethodPost, "/api/threats/ingest?source=none", analyst, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"added": 0}`, w.Body.String())
}

func TestRoutes_Metrics(t *testing.T) {
	router, _ := setupRouter(t, config.Config{})

	serve(router, http.MethodPost, "/api/v1/threats", "", `{"title":"counted"}`)

	w := serve(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cybershield_threat_mutations_total")
}
