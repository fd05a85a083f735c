package billing

import "context"

// Gateway is the billing provider boundary
type Gateway interface {
	// EnsureCustomer returns existingID or creates a customer for the user
	EnsureCustomer(ctx context.Context, existingID, userID, email string) (string, error)

	// CreateCheckoutSession starts a subscription checkout
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// GetCheckoutSession looks a session up server side
	GetCheckoutSession(ctx context.Context, sessionID string) (*CompletedCheckout, error)

	// CreatePortalSession returns a self-service billing portal URL
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	// ParseWebhook verifies the signature and decodes the payload
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
