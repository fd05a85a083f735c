package user

import (
	"context"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

// Repository defines the interface for user data access.
// Lookups of absent records return a NOT_FOUND AppError; an unreachable
// store returns PERSISTENCE_UNAVAILABLE.
type Repository interface {
	// Create inserts a new user and sets its ID
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByStripeCustomer retrieves the user linked to a billing customer
	GetByStripeCustomer(ctx context.Context, customerID string) (*User, error)

	// UpdateProfile refreshes the display name and avatar
	UpdateProfile(ctx context.Context, id, name, image string) error

	// SetRole persists a role
	SetRole(ctx context.Context, id string, role Role) (*User, error)

	// UpdateSubscription applies only the set fields of upd
	UpdateSubscription(ctx context.Context, id string, upd SubscriptionUpdate) (*User, error)

	// DecrementCredit atomically lowers a finite, positive credit balance by one.
	// It reports the balance afterwards and whether a credit was taken.
	DecrementCredit(ctx context.Context, id string) (subscription.Limit, bool, error)

	// ListExpired returns non-free users whose subscription expired before now
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*User, error)

	// DowngradeIfExpired applies upd only while the subscription is still
	// paid and expired before now. It reports false when the user renewed
	// or was removed in the meantime.
	DowngradeIfExpired(ctx context.Context, id string, now time.Time, upd SubscriptionUpdate) (*User, bool, error)

	// List retrieves users with pagination
	List(ctx context.Context, limit, offset int) ([]*User, int64, error)

	// LinkAccount records an OAuth identity for a user, ignoring duplicates
	LinkAccount(ctx context.Context, account *Account) error
}
