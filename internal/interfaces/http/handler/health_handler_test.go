package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	serve := func(h *HealthHandler, path string) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/health", h.Health)
		r.GET("/ping", h.Ping)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler("1.2.3", map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		})
		w := serve(h, "/health")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeData[HealthResponse](t, w)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Equal(t, "healthy", resp.Services["database"])
	})

	t.Run("a failing dependency is 503", func(t *testing.T) {
		h := NewHealthHandler("1.2.3", map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		w := serve(h, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
		assert.Contains(t, string(env.Data), "connection refused")
	})

	t.Run("ping", func(t *testing.T) {
		w := serve(NewHealthHandler("dev", nil), "/ping")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", decodeData[PingResponse](t, w).Message)
	})
}
