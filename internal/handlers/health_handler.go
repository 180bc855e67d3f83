package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health checks
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		db:          db,
	}
}

// Health handles GET /health
// @Summary Health check
// @Description Reports whether the service and its database are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string "Database unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.Logger.Warn("health check failed", zap.Error(err))
		h.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
