package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/billing"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
)

// BillingOptions carries the configured prices and redirect URLs
type BillingOptions struct {
	Prices          []billing.Price
	Currency        string
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

// BillingService implements billing.Service
type BillingService struct {
	users   user.Repository
	gateway billing.Gateway
	policy  *subscription.Policy
	opts    BillingOptions
	byTier  map[subscription.Tier]billing.Price
	byPrice map[string]subscription.Tier
	logger  *logger.Logger
}

// NewBillingService creates a new billing service. A nil gateway disables
// checkout and the portal but still lists plans.
func NewBillingService(users user.Repository, gateway billing.Gateway, policy *subscription.Policy, opts BillingOptions, log *logger.Logger) billing.Service {
	s := &BillingService{
		users:   users,
		gateway: gateway,
		policy:  policy,
		opts:    opts,
		byTier:  make(map[subscription.Tier]billing.Price),
		byPrice: make(map[string]subscription.Tier),
		logger:  log,
	}
	if s.opts.Currency == "" {
		s.opts.Currency = "usd"
	}
	for _, p := range opts.Prices {
		if p.Tier == subscription.TierFree {
			continue
		}
		s.byTier[p.Tier] = p
		if p.PriceID != "" {
			s.byPrice[p.PriceID] = p.Tier
		}
	}
	return s
}

var planNames = map[subscription.Tier]string{
	subscription.TierFree:    "Free",
	subscription.TierBasic:   "Basic",
	subscription.TierPremium: "Premium",
}

// Plans lists every tier with its limits and marks the caller's current one
func (s *BillingService) Plans(ctx context.Context, userID string) ([]billing.Plan, error) {
	current := subscription.TierFree
	if userID != "" {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		if u != nil {
			current = subscription.NormalizeTier(string(u.Subscription.Tier))
		}
	}

	plans := make([]billing.Plan, 0, len(subscription.Tiers))
	for _, t := range subscription.Tiers {
		limits := s.policy.Limits(t)
		p := billing.Plan{
			ID:        t,
			Name:      planNames[t],
			Currency:  s.opts.Currency,
			Interval:  "month",
			Storage:   limits.Storage,
			Credits:   limits.Credits,
			Features:  append([]string(nil), limits.Features...),
			IsPopular: t == subscription.TierBasic,
			IsCurrent: t == current,
		}
		if price, ok := s.byTier[t]; ok {
			p.PriceID = price.PriceID
			p.Price = price.Amount
			p.Description = price.Description
		}
		if p.Description == "" {
			p.Description = fmt.Sprintf("%s lesson plans and %s AI generations per month", limits.Storage, limits.Credits)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// CreateCheckout starts a hosted checkout for a paid tier
func (s *BillingService) CreateCheckout(ctx context.Context, userID string, tier subscription.Tier) (*billing.CheckoutSession, error) {
	if s.gateway == nil {
		return nil, errors.ServiceUnavailable("Billing is not configured")
	}
	t, ok := subscription.ParseTier(string(tier))
	if !ok || t == subscription.TierFree {
		return nil, errors.InvalidArgument("tier must be basic or premium")
	}
	price, ok := s.byTier[t]
	if !ok || price.PriceID == "" {
		return nil, errors.InvalidArgument(fmt.Sprintf("no price is configured for the %s tier", t))
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.gateway.EnsureCustomer(ctx, u.Subscription.StripeCustomerID, u.ID, u.Email)
	if err != nil {
		logger.FromContext(ctx, s.logger).ErrorWithErr(err, "Failed to create billing customer")
		return nil, errors.ProviderAPIError("stripe", err)
	}
	if customerID != u.Subscription.StripeCustomerID {
		if _, err := s.users.UpdateSubscription(ctx, u.ID, user.SubscriptionUpdate{StripeCustomerID: &customerID}); err != nil {
			return nil, err
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		UserID:     u.ID,
		CustomerID: customerID,
		Tier:       t,
		PriceID:    price.PriceID,
		SuccessURL: s.opts.SuccessURL,
		CancelURL:  s.opts.CancelURL,
	})
	if err != nil {
		logger.FromContext(ctx, s.logger).ErrorWithErr(err, "Failed to create checkout session")
		return nil, errors.ProviderAPIError("stripe", err)
	}

	logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
		"user_id":    u.ID,
		"tier":       t,
		"session_id": session.ID,
	}).Info("Checkout session created")

	return session, nil
}

// ConfirmCheckout applies a paid session to its owner. Confirming the same
// session twice leaves the user unchanged.
func (s *BillingService) ConfirmCheckout(ctx context.Context, userID, sessionID string) (*user.User, error) {
	if s.gateway == nil {
		return nil, errors.ServiceUnavailable("Billing is not configured")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.InvalidArgument("sessionId is required")
	}

	checkout, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.ProviderAPIError("stripe", err)
	}
	if checkout.UserID != userID {
		logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
		}).Warn("Checkout session belongs to another user")
		return nil, errors.Forbidden("Checkout session does not belong to this user")
	}
	if !checkout.Paid() {
		return nil, errors.BadRequest("Checkout session is not paid")
	}

	return s.applyCheckout(ctx, userID, checkout, "checkout")
}

// CreatePortal returns a billing portal URL for a user with a billing customer
func (s *BillingService) CreatePortal(ctx context.Context, userID string) (string, error) {
	if s.gateway == nil {
		return "", errors.ServiceUnavailable("Billing is not configured")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.Subscription.StripeCustomerID == "" {
		return "", errors.BadRequest("No billing account found")
	}

	url, err := s.gateway.CreatePortalSession(ctx, u.Subscription.StripeCustomerID, s.opts.PortalReturnURL)
	if err != nil {
		logger.FromContext(ctx, s.logger).ErrorWithErr(err, "Failed to create portal session")
		return "", errors.ProviderAPIError("stripe", err)
	}
	return url, nil
}

// HandleWebhook applies a verified provider event. Unknown event types are ignored.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return errors.ServiceUnavailable("Billing is not configured")
	}
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Warn("Rejected webhook")
		if appErr, ok := errors.As(err); ok {
			return appErr
		}
		return errors.BadRequest("Invalid webhook signature")
	}

	log := logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	switch event.Type {
	case billing.EventCheckoutCompleted:
		if event.Checkout == nil || !event.Checkout.Paid() {
			log.Info("Ignoring unpaid checkout event")
			return nil
		}
		u, err := s.findCheckoutUser(ctx, event.Checkout)
		if err != nil {
			if errors.IsNotFound(err) {
				log.Warn("Checkout event for unknown user")
				return nil
			}
			return err
		}
		_, err = s.applyCheckout(ctx, u.ID, event.Checkout, "webhook")
		return err

	case billing.EventSubscriptionDeleted:
		u, err := s.users.GetByStripeCustomer(ctx, event.CustomerID)
		if err != nil {
			if errors.IsNotFound(err) {
				log.Warn("Subscription event for unknown customer")
				return nil
			}
			return err
		}
		if event.SubscriptionID != "" && u.Subscription.StripeSubscriptionID != "" &&
			event.SubscriptionID != u.Subscription.StripeSubscriptionID {
			log.Info("Ignoring deletion of a superseded subscription")
			return nil
		}
		upd := user.TierUpdate(s.policy, subscription.TierFree)
		upd.ClearExpiry = true
		empty := ""
		upd.StripeSubscriptionID = &empty
		if _, err := s.users.UpdateSubscription(ctx, u.ID, upd); err != nil {
			return err
		}
		metrics.RecordSubscriptionChange(string(subscription.TierFree), "webhook")
		log.WithFields(map[string]interface{}{"user_id": u.ID}).Info("Subscription cancelled, downgraded to free")
		return nil

	default:
		log.Debug("Ignoring webhook event")
		return nil
	}
}

func (s *BillingService) findCheckoutUser(ctx context.Context, c *billing.CompletedCheckout) (*user.User, error) {
	if c.UserID != "" {
		u, err := s.users.GetByID(ctx, c.UserID)
		if err == nil || !errors.IsNotFound(err) || c.CustomerID == "" {
			return u, err
		}
	}
	return s.users.GetByStripeCustomer(ctx, c.CustomerID)
}

// checkoutTier picks the purchased tier: product metadata, then session
// metadata, then the configured price table. It never yields free.
func (s *BillingService) checkoutTier(c *billing.CompletedCheckout) (subscription.Tier, bool) {
	for _, raw := range []string{c.ProductTier, c.MetadataTier} {
		if t, ok := subscription.ParseTier(raw); ok && t != subscription.TierFree {
			return t, true
		}
	}
	if t, ok := s.byPrice[c.PriceID]; ok {
		return t, true
	}
	return "", false
}

func (s *BillingService) applyCheckout(ctx context.Context, userID string, c *billing.CompletedCheckout, source string) (*user.User, error) {
	t, ok := s.checkoutTier(c)
	if !ok {
		logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
			"session_id": c.SessionID,
			"price_id":   c.PriceID,
		}).Error("Cannot determine tier for checkout")
		return nil, errors.BadRequest("Checkout session has no recognizable plan")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.SubscriptionID != "" && u.Subscription.StripeSubscriptionID == c.SubscriptionID && u.Subscription.Tier == t {
		return u, nil
	}

	upd := user.TierUpdate(s.policy, t)
	if c.CustomerID != "" {
		upd.StripeCustomerID = &c.CustomerID
	}
	if c.SubscriptionID != "" {
		upd.StripeSubscriptionID = &c.SubscriptionID
	}
	if c.PeriodEnd != nil {
		upd.ExpiresAt = c.PeriodEnd
	} else {
		upd.ClearExpiry = true
	}

	updated, err := s.users.UpdateSubscription(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionChange(string(t), source)
	logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
		"user_id":    userID,
		"tier":       t,
		"session_id": c.SessionID,
		"source":     source,
	}).Info("Subscription activated")

	return updated, nil
}
