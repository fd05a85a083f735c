package billing

import (
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

// Plan is a purchasable tier as shown to users
type Plan struct {
	ID          subscription.Tier  `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	PriceID     string             `json:"priceId,omitempty"`
	Price       float64            `json:"price"`
	Currency    string             `json:"currency"`
	Interval    string             `json:"interval"`
	Storage     subscription.Limit `json:"storageLimit"`
	Credits     subscription.Limit `json:"aiCredits"`
	Features    []string           `json:"features"`
	IsPopular   bool               `json:"isPopular"`
	IsCurrent   bool               `json:"isCurrent"`
}

// Purchasable reports whether the plan can be bought through checkout
func (p Plan) Purchasable() bool {
	return p.PriceID != ""
}

// Price describes a configured price for a paid tier
type Price struct {
	Tier        subscription.Tier
	PriceID     string
	Amount      float64
	Description string
}

// CheckoutRequest is the input for a hosted checkout session
type CheckoutRequest struct {
	UserID     string
	CustomerID string
	Tier       subscription.Tier
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a created hosted checkout session
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// Checkout session states that grant a subscription
const (
	SessionStatusComplete = "complete"
	PaymentStatusPaid     = "paid"
	PaymentStatusNoCharge = "no_payment_required"
)

// CompletedCheckout is what the billing provider reports about a checkout session
type CompletedCheckout struct {
	SessionID      string
	UserID         string
	CustomerID     string
	SubscriptionID string
	Status         string
	PaymentStatus  string
	PriceID        string
	ProductTier    string
	MetadataTier   string
	PeriodEnd      *time.Time
}

// Paid reports whether the session completed with payment settled
func (c *CompletedCheckout) Paid() bool {
	if c.Status != SessionStatusComplete {
		return false
	}
	return c.PaymentStatus == PaymentStatusPaid || c.PaymentStatus == PaymentStatusNoCharge
}

// Webhook event types handled
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is a verified webhook notification
type Event struct {
	ID             string
	Type           string
	Checkout       *CompletedCheckout
	CustomerID     string
	SubscriptionID string
}
