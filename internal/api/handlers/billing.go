package handlers

import (
	"io"
	"net/http"

	"github.com/pratik-mahalle/lessonplanner/internal/api/dto"
	"github.com/pratik-mahalle/lessonplanner/internal/api/middleware"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/billing"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/validator"
)

// maxWebhookBytes matches the payload ceiling Stripe documents for webhooks
const maxWebhookBytes = int64(65536)

// BillingHandler handles plan listing, checkout and billing webhooks
type BillingHandler struct {
	service   billing.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(service billing.Service, log *logger.Logger, val *validator.Validator) *BillingHandler {
	return &BillingHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// ListPlans returns the subscription tiers, marking the caller's current one
// @Summary List subscription plans
// @Tags Billing
// @Produce json
// @Success 200 {array} billing.Plan
// @Router /billing/plans [get]
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	plans, err := h.service.Plans(r.Context(), userID)
	if err != nil {
		utils.WriteErr(w, err, "Failed to list plans")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, plans)
}

// CreateCheckoutSession starts a hosted checkout for a paid tier
// @Summary Create checkout session
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.CheckoutRequest true "Tier to buy"
// @Success 200 {object} billing.CheckoutSession
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse "Billing provider error"
// @Failure 503 {object} utils.ErrorResponse "Billing not configured"
// @Security BearerAuth
// @Router /billing/checkout [post]
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	session, err := h.service.CreateCheckout(r.Context(), userID, subscription.Tier(req.Tier))
	if err != nil {
		utils.WriteErr(w, err, "Failed to create checkout session")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, session)
}

// VerifyCheckout applies a completed checkout session to the caller
// @Summary Verify checkout
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.VerifyCheckoutRequest true "Session to confirm"
// @Success 200 {object} dto.UserDTO
// @Failure 400 {object} utils.ErrorResponse "Session not paid"
// @Failure 403 {object} utils.ErrorResponse "Session belongs to another user"
// @Security BearerAuth
// @Router /billing/verify [post]
func (h *BillingHandler) VerifyCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.VerifyCheckoutRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.service.ConfirmCheckout(r.Context(), userID, req.SessionID)
	if err != nil {
		utils.WriteErr(w, err, "Failed to verify checkout")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Subscription activated", dto.FromUser(u))
}

// CreatePortalSession returns a self-service billing portal URL
// @Summary Billing portal
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.RedirectResponse
// @Failure 400 {object} utils.ErrorResponse "No billing account"
// @Security BearerAuth
// @Router /billing/portal [post]
func (h *BillingHandler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, err := h.service.CreatePortal(r.Context(), userID)
	if err != nil {
		utils.WriteErr(w, err, "Failed to create portal session")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.RedirectResponse{URL: url})
}

// Webhook receives signed billing provider events
// @Summary Billing webhook
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid signature"
// @Router /billing/webhook [post]
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid payload"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), body, r.Header.Get("Stripe-Signature")); err != nil {
		utils.WriteErr(w, err, "Failed to process webhook")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
