package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	return r
}

func decodeHealth(t *testing.T, body []byte) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestHealthHandler_Healthy(t *testing.T) {
	h := NewHealthHandler("1.2.0").
		AddCheck("database", func(context.Context) error { return nil }).
		AddCheck("redis", func(context.Context) error { return nil })

	w := performRequest(healthRouter(h), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeHealth(t, w.Body.Bytes())
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.0", resp.Version)
	assert.NotEmpty(t, resp.GoVersion)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, resp.Checks)
	_, err := time.Parse(time.RFC3339, resp.Time)
	assert.NoError(t, err)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	h := NewHealthHandler("1.2.0").
		AddCheck("database", func(context.Context) error { return nil }).
		AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })

	w := performRequest(healthRouter(h), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeHealth(t, w.Body.Bytes())
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "error", resp.Checks["redis"])
}

func TestHealthHandler_CheckHasDeadline(t *testing.T) {
	var hasDeadline bool
	h := NewHealthHandler("dev").AddCheck("database", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	performRequest(healthRouter(h), http.MethodGet, "/health", nil)

	assert.True(t, hasDeadline)
}

func TestHealthHandler_AddCheckReplaces(t *testing.T) {
	h := NewHealthHandler("dev").
		AddCheck("database", func(context.Context) error { return errors.New("down") }).
		AddCheck("database", func(context.Context) error { return nil })

	w := performRequest(healthRouter(h), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeHealth(t, w.Body.Bytes()).Checks, 1)
}
