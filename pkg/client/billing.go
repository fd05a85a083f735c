package client

import "context"

// BillingService handles plan and checkout API calls
type BillingService struct {
	client *Client
}

// Plans lists the subscription tiers
func (s *BillingService) Plans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := s.client.doRequest(ctx, "GET", "/api/v1/billing/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Checkout starts a hosted checkout for tier (basic or premium)
func (s *BillingService) Checkout(ctx context.Context, tier string) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := s.client.doRequest(ctx, "POST", "/api/v1/billing/checkout", map[string]string{"tier": tier}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Verify applies a completed checkout session to the caller
func (s *BillingService) Verify(ctx context.Context, sessionID string) (*User, error) {
	var u User
	if err := s.client.doRequest(ctx, "POST", "/api/v1/billing/verify", map[string]string{"sessionId": sessionID}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Portal returns the self-service billing portal URL
func (s *BillingService) Portal(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := s.client.doRequest(ctx, "POST", "/api/v1/billing/portal", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
