package providers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/pratik-mahalle/lessonplanner/internal/config"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/billing"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

// Metadata keys written on customers, sessions and subscriptions
const (
	metadataUserID = "user_id"
	metadataTier   = "tier"
)

// StripeGateway implements billing.Gateway with the Stripe API
type StripeGateway struct {
	sc            *client.API
	webhookSecret string
}

// NewStripeGateway builds a gateway from cfg. A nil backends uses Stripe's defaults.
func NewStripeGateway(cfg config.BillingConfig, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		sc:            client.New(cfg.StripeSecretKey, backends),
		webhookSecret: cfg.StripeWebhookSecret,
	}
}

// EnsureCustomer returns existingID or creates a customer tagged with the user id
func (g *StripeGateway) EnsureCustomer(ctx context.Context, existingID, userID, email string) (string, error) {
	if existingID != "" {
		return existingID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, userID)

	cust, err := g.sc.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a hosted subscription checkout
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(req.CustomerID),
		ClientReferenceID: stripe.String(req.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				metadataUserID: req.UserID,
				metadataTier:   string(req.Tier),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, req.UserID)
	params.AddMetadata(metadataTier, string(req.Tier))

	sess, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &billing.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// GetCheckoutSession retrieves a session with its line items and subscription expanded
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*billing.CompletedCheckout, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items.data.price.product")
	params.AddExpand("subscription")

	sess, err := g.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		if isStripeNotFound(err) {
			return nil, errors.NotFound("Checkout session")
		}
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return completedCheckout(sess), nil
}

// CreatePortalSession returns a customer portal URL
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := g.sc.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the events we act on
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	// An empty secret would accept payloads signed with an empty key
	if g.webhookSecret == "" {
		return nil, errors.ServiceUnavailable("Webhook signing secret is not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	out := &billing.Event{ID: event.ID, Type: string(event.Type)}
	switch out.Type {
	case billing.EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Checkout = completedCheckout(&sess)
		out.CustomerID = out.Checkout.CustomerID
		out.SubscriptionID = out.Checkout.SubscriptionID
	case billing.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		out.SubscriptionID = sub.ID
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	}
	return out, nil
}

func completedCheckout(sess *stripe.CheckoutSession) *billing.CompletedCheckout {
	c := &billing.CompletedCheckout{
		SessionID:     sess.ID,
		UserID:        sess.ClientReferenceID,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		MetadataTier:  sess.Metadata[metadataTier],
	}
	if c.UserID == "" {
		c.UserID = sess.Metadata[metadataUserID]
	}
	if sess.Customer != nil {
		c.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		c.SubscriptionID = sess.Subscription.ID
		if sess.Subscription.CurrentPeriodEnd > 0 {
			end := time.Unix(sess.Subscription.CurrentPeriodEnd, 0).UTC()
			c.PeriodEnd = &end
		}
	}
	if sess.LineItems != nil && len(sess.LineItems.Data) > 0 {
		if price := sess.LineItems.Data[0].Price; price != nil {
			c.PriceID = price.ID
			if price.Product != nil {
				c.ProductTier = price.Product.Metadata[metadataTier]
			}
		}
	}
	return c
}

var _ billing.Gateway = (*StripeGateway)(nil)

// isStripeNotFound reports a Stripe 404 such as an unknown session id
func isStripeNotFound(err error) bool {
	var se *stripe.Error
	if !stderrors.As(err, &se) {
		return false
	}
	return se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing
}
