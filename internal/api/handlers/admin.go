package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/lessonplanner/internal/api/dto"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/validator"
)

// AdminHandler exposes role and subscription management. The service
// re-checks the caller's admin role on every call.
type AdminHandler struct {
	users     user.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(users user.Service, log *logger.Logger, val *validator.Validator) *AdminHandler {
	return &AdminHandler{
		users:     users,
		logger:    log,
		validator: val,
	}
}

// ListUsers returns a page of users
// @Summary List users
// @Tags Admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	params := utils.ParsePaginationParams(r)
	users, total, err := h.users.List(r.Context(), email, params.PageSize, params.Offset)
	if err != nil {
		utils.WriteErr(w, err, "Failed to list users")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dto.FromUsers(users), params.Page, params.PageSize, total))
}

// SetRole changes a user's role
// @Summary Set user role
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} dto.UserDTO
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.users.SetRole(r.Context(), email, chi.URLParam(r, "id"), user.Role(req.Role))
	if err != nil {
		utils.WriteErr(w, err, "Failed to update role")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.FromUser(u))
}

// SetSubscription changes the supplied subscription fields of a user
// @Summary Set user subscription
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateSubscriptionRequest true "Fields to change"
// @Success 200 {object} dto.UserDTO
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/subscription [put]
func (h *AdminHandler) SetSubscription(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req dto.UpdateSubscriptionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.users.SetSubscription(r.Context(), email, chi.URLParam(r, "id"), req.ToUpdate())
	if err != nil {
		utils.WriteErr(w, err, "Failed to update subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.FromUser(u))
}
