package quota

import "context"

// Service defines the interface for storage and credit accounting
type Service interface {
	// CheckAndReserveStorage fails with QUOTA_EXCEEDED when the user already
	// holds as many plans as their tier allows. Nothing is reserved: the
	// following insert raises the count, so concurrent creates may overshoot.
	CheckAndReserveStorage(ctx context.Context, userID string) (*StorageUsage, error)

	// SpendCredit takes one credit for feature and appends a usage record.
	// Unbounded balances are left alone and exhaustion is not an error.
	SpendCredit(ctx context.Context, userID, feature string, metadata map[string]interface{}) (*SpendResult, error)

	// HasCredits fails with QUOTA_EXCEEDED when no credits remain
	HasCredits(ctx context.Context, userID string) error

	// Summary reports storage, credits and recent usage for a user
	Summary(ctx context.Context, userID string) (*Summary, error)
}
