package dto

// CheckoutRequest starts a checkout for a paid tier
type CheckoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=basic premium"`
}

// VerifyCheckoutRequest confirms a finished checkout session
type VerifyCheckoutRequest struct {
	SessionID string `json:"sessionId" validate:"required,max=255"`
}

// RedirectResponse carries a hosted page URL
type RedirectResponse struct {
	URL string `json:"url"`
}
