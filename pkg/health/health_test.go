package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/coursetrack-server-go/internal/testsupport"
	"github.com/mo-amir99/coursetrack-server-go/pkg/cache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
)

type downCache struct{ *cache.MemoryCache }

func (downCache) Ping(context.Context) error { return errors.New("connection refused") }

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/debug/db-stats", h.DBStats)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body HealthResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestReady(t *testing.T) {
	db := testsupport.OpenDB(t)

	rec, body := serve(t, NewHandler(db, cache.NewMemoryCache(), logger.Discard()), "/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, map[string]string{"database": "ok", "cache": "ok"}, body.Checks)

	rec, body = serve(t, NewHandler(db, downCache{cache.NewMemoryCache()}, logger.Discard()), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "unhealthy", body.Checks["cache"])

	rec, body = serve(t, NewHandler(db, nil, logger.Discard()), "/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body.Checks, "cache")
}

func TestHealthAndDBStats(t *testing.T) {
	h := NewHandler(testsupport.OpenDB(t), nil, logger.Discard())

	rec, body := serve(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, Version, body.Version)

	rec, _ = serve(t, h, "/debug/db-stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "open_connections")
}
