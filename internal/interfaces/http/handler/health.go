package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scg/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// PingFunc reports whether a dependency is reachable
type PingFunc func(ctx context.Context) error

// HealthHandler answers liveness probes with the state of every dependency
type HealthHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	names     []string
	checks    map[string]PingFunc
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]PingFunc),
	}
}

// AddCheck registers a dependency under name. Checks run in registration order.
func (h *HealthHandler) AddCheck(name string, ping PingFunc) *HealthHandler {
	if _, ok := h.checks[name]; !ok {
		h.names = append(h.names, name)
	}
	h.checks[name] = ping
	return h
}

// HealthResponse is the body of GET /health
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Time      string            `json:"time" example:"2026-01-23T12:00:00Z"`
	Version   string            `json:"version" example:"1.0.0"`
	GoVersion string            `json:"go_version" example:"go1.25.5"`
	Uptime    string            `json:"uptime" example:"1h30m45s"`
	Checks    map[string]string `json:"checks"`
}

// Health godoc
// @ID           health
// @Summary      Service health
// @Description  Pings the database and Redis. Answers 503 when any of them is unreachable.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Time:      time.Now().Format(time.RFC3339),
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    make(map[string]string, len(h.names)),
	}
	status := http.StatusOK
	for _, name := range h.names {
		if err := h.checks[name](ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "error"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	c.JSON(status, resp)
}
