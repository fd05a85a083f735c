package user

import "context"

// Resolver maps an authenticated email to its effective role and entitlements
type Resolver interface {
	// Resolve never falls back to a default identity when the store is unreachable
	Resolve(ctx context.Context, email string) (*Identity, error)
}

// Service defines the interface for user business logic
type Service interface {
	Resolver

	// SignIn upserts the user behind an OAuth profile
	SignIn(ctx context.Context, profile Profile) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// SetRole changes a user's role; callerEmail must resolve to admin
	SetRole(ctx context.Context, callerEmail, userID string, role Role) (*User, error)

	// SetSubscription applies a partial subscription change; callerEmail must resolve to admin
	SetSubscription(ctx context.Context, callerEmail, userID string, upd SubscriptionUpdate) (*User, error)

	// List returns users for the admin surface; callerEmail must resolve to admin
	List(ctx context.Context, callerEmail string, limit, offset int) ([]*User, int64, error)
}
