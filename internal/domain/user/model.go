package user

import (
	"strings"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

// Role is a user's permission level
type Role string

// User roles
const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// ParseRole validates s as a known role
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RolePremium, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// Subscription is the billing state persisted on a user
type Subscription struct {
	Tier                 subscription.Tier  `json:"tier"`
	AICredits            subscription.Limit `json:"aiCreditsRemaining"`
	Features             []string           `json:"features"`
	ExpiresAt            *time.Time         `json:"expiresAt,omitempty"`
	StripeCustomerID     string             `json:"-"`
	StripeSubscriptionID string             `json:"-"`
}

// User represents a signed-in account
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name,omitempty"`
	Image        string       `json:"image,omitempty"`
	Role         Role         `json:"role"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Account links an OAuth identity to a user
type Account struct {
	UserID            string    `json:"userId"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"providerAccountId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Profile is the identity returned by an OAuth provider
type Profile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	Image             string
}

// SubscriptionUpdate changes only the fields that are set.
// A nil Features with a non-nil Tier resets features to the tier's canonical list.
type SubscriptionUpdate struct {
	Tier                 *subscription.Tier
	ExpiresAt            *time.Time
	ClearExpiry          bool
	AICredits            *subscription.Limit
	Features             *[]string
	StripeCustomerID     *string
	StripeSubscriptionID *string
}

// IsEmpty reports whether no field is set
func (u SubscriptionUpdate) IsEmpty() bool {
	return u.Tier == nil && u.ExpiresAt == nil && !u.ClearExpiry && u.AICredits == nil &&
		u.Features == nil && u.StripeCustomerID == nil && u.StripeSubscriptionID == nil
}

// Apply mutates s field by field
func (u SubscriptionUpdate) Apply(s *Subscription) {
	if u.Tier != nil {
		s.Tier = *u.Tier
	}
	if u.ClearExpiry {
		s.ExpiresAt = nil
	}
	if u.ExpiresAt != nil {
		t := *u.ExpiresAt
		s.ExpiresAt = &t
	}
	if u.AICredits != nil {
		s.AICredits = *u.AICredits
	}
	if u.Features != nil {
		s.Features = append([]string(nil), (*u.Features)...)
	}
	if u.StripeCustomerID != nil {
		s.StripeCustomerID = *u.StripeCustomerID
	}
	if u.StripeSubscriptionID != nil {
		s.StripeSubscriptionID = *u.StripeSubscriptionID
	}
}

// TierUpdate moves a user onto tier t with its canonical features and a full credit allotment
func TierUpdate(p *subscription.Policy, t subscription.Tier) SubscriptionUpdate {
	features := p.Features(t, false)
	credits := p.CreditLimit(t, false)
	return SubscriptionUpdate{
		Tier:      &t,
		AICredits: &credits,
		Features:  &features,
	}
}

// NewSubscription returns the subscription a user starts with on tier t
func NewSubscription(p *subscription.Policy, t subscription.Tier) Subscription {
	return Subscription{
		Tier:      t,
		AICredits: p.CreditLimit(t, false),
		Features:  p.Features(t, false),
	}
}
