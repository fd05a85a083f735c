package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
)

const readyTimeout = 2 * time.Second

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the body of both health checks
type HealthStatus struct {
	Status    string          `json:"status"`
	Database  string          `json:"database,omitempty"`
	LatencyMs int64           `json:"latency_ms,omitempty"`
	Uptime    string          `json:"uptime,omitempty"`
	Features  map[string]bool `json:"features,omitempty"`
}

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	db       Pinger
	features map[string]bool
	started  time.Time
	logger   *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		started: time.Now(),
		logger:  log,
	}
}

// WithFeatures reports which optional integrations are configured on readiness
func (h *HealthHandler) WithFeatures(features map[string]bool) *HealthHandler {
	h.features = features
	return h
}

// Healthz handles liveness check
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthStatus "Application is alive"
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, HealthStatus{
		Status: "ok",
		Uptime: time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Readyz reports ready only while the document store answers a ping.
// Unconfigured generation or billing does not make the service unready.
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthStatus "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database connection failed")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, HealthStatus{
		Status:    "ready",
		Database:  "connected",
		LatencyMs: time.Since(start).Milliseconds(),
		Features:  h.features,
	})
}
