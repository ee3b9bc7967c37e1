package handler

import (
	"net/http"
	"time"

	"casahogar-storefront-api/pkg/response"
)

// Handler serves liveness and status endpoints.
type Handler struct {
	startTime time.Time
	version   string
	env       string
}

// New creates a health handler.
func New(version, env string) *Handler {
	return &Handler{
		startTime: time.Now(),
		version:   version,
		env:       env,
	}
}

// Status handles GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"status":      "running",
		"version":     h.version,
		"environment": h.env,
		"uptime":      time.Since(h.startTime).String(),
	})
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{"status": "healthy"})
}

// Ready handles GET /api/v1/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{"status": "ready"})
}
