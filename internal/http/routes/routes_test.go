package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mo-amir99/coursetrack-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursetrack-server-go/internal/testsupport"
	"github.com/mo-amir99/coursetrack-server-go/pkg/cache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/config"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
)

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testsupport.OpenDB(t, bootstrap.Models()...)

	tests := []struct {
		env    string
		method string
		path   string
		want   int
	}{
		{env: "development", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{env: "development", method: http.MethodGet, path: "/ready", want: http.StatusOK},
		{env: "development", method: http.MethodGet, path: "/version", want: http.StatusOK},
		{env: "development", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{env: "development", method: http.MethodGet, path: "/debug/db-stats", want: http.StatusOK},
		{env: "production", method: http.MethodGet, path: "/debug/db-stats", want: http.StatusNotFound},
		{env: "development", method: http.MethodGet, path: "/api/lesson", want: http.StatusUnauthorized},
		{env: "development", method: http.MethodPost, path: "/api/lesson", want: http.StatusUnauthorized},
		{env: "development", method: http.MethodPatch, path: "/api/lesson/x", want: http.StatusUnauthorized},
		{env: "development", method: http.MethodGet, path: "/api/product", want: http.StatusUnauthorized},
		{env: "development", method: http.MethodGet, path: "/api/product/statisticks", want: http.StatusUnauthorized},
		{env: "development", method: http.MethodGet, path: "/api/product/statistics", want: http.StatusUnauthorized},
		{env: "development", method: http.MethodDelete, path: "/api/product/x", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.env+" "+tt.method+" "+tt.path, func(t *testing.T) {
			engine := gin.New()
			cfg := &config.Config{Env: tt.env, JWTSecret: "routes-secret", StatsCacheTTL: time.Second}
			Register(engine, cfg, db, cache.NewMemoryCache(), logger.Discard())

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
