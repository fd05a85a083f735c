package billing

import (
	"context"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
)

// Service defines the interface for subscription purchases
type Service interface {
	// Plans lists the tiers, marking the caller's current one
	Plans(ctx context.Context, userID string) ([]Plan, error)

	// CreateCheckout starts a checkout for tier and returns the redirect
	CreateCheckout(ctx context.Context, userID string, tier subscription.Tier) (*CheckoutSession, error)

	// ConfirmCheckout verifies a finished session belongs to the caller and applies its tier
	ConfirmCheckout(ctx context.Context, userID, sessionID string) (*user.User, error)

	// CreatePortal returns a billing portal URL for a paying user
	CreatePortal(ctx context.Context, userID string) (string, error)

	// HandleWebhook applies a signed provider notification
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
