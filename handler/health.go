package handler

import (
	"net/http"
	"time"

	"github.com/flawlesshq/payssion-gateway/infra/response"
)

// HealthHandler reports service health
type HealthHandler struct {
	auditEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(auditEnabled bool) *HealthHandler {
	return &HealthHandler{auditEnabled: auditEnabled}
}

// Health handles health check requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":        "ok",
		"timestamp":     time.Now().UTC(),
		"version":       "1.0.0",
		"audit_enabled": h.auditEnabled,
	}
	response.Success(w, http.StatusOK, "Service is healthy", health)
}
