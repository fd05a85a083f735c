package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
)

// UsageHandler reports quota usage to the signed-in user
type UsageHandler struct {
	quota  quota.Service
	logger *logger.Logger
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(quotaService quota.Service, log *logger.Logger) *UsageHandler {
	return &UsageHandler{quota: quotaService, logger: log}
}

// Summary returns storage, credits and recent AI usage
// @Summary Usage summary
// @Tags Usage
// @Produce json
// @Success 200 {object} quota.Summary
// @Failure 503 {object} utils.ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /usage [get]
func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.quota.Summary(r.Context(), userID)
	if err != nil {
		utils.WriteErr(w, err, "Failed to load usage")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, summary)
}
