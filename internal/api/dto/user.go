package dto

import (
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
)

// SubscriptionDTO is the client-visible part of a subscription
type SubscriptionDTO struct {
	Tier      subscription.Tier  `json:"tier"`
	AICredits subscription.Limit `json:"aiCreditsRemaining"`
	Features  []string           `json:"features"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name,omitempty"`
	Image        string          `json:"image,omitempty"`
	Role         string          `json:"role"`
	Subscription SubscriptionDTO `json:"subscription"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// FromUser converts a domain user, returning nil for nil
func FromUser(u *user.User) *UserDTO {
	if u == nil {
		return nil
	}
	features := u.Subscription.Features
	if features == nil {
		features = []string{}
	}
	return &UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Image: u.Image,
		Role:  string(u.Role),
		Subscription: SubscriptionDTO{
			Tier:      u.Subscription.Tier,
			AICredits: u.Subscription.AICredits,
			Features:  features,
			ExpiresAt: u.Subscription.ExpiresAt,
		},
		CreatedAt: u.CreatedAt,
	}
}

// FromUsers converts a slice of domain users
func FromUsers(users []*user.User) []*UserDTO {
	out := make([]*UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}

// UpdateRoleRequest sets a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user premium admin"`
}

// UpdateSubscriptionRequest changes only the supplied subscription fields
type UpdateSubscriptionRequest struct {
	Tier        *string             `json:"tier,omitempty" validate:"omitempty,oneof=free basic premium"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	ClearExpiry bool                `json:"clearExpiry,omitempty"`
	AICredits   *subscription.Limit `json:"aiCreditsRemaining,omitempty"`
	Features    *[]string           `json:"features,omitempty"`
}

// ToUpdate converts the request into a domain update
func (r UpdateSubscriptionRequest) ToUpdate() user.SubscriptionUpdate {
	upd := user.SubscriptionUpdate{
		ExpiresAt:   r.ExpiresAt,
		ClearExpiry: r.ClearExpiry,
		AICredits:   r.AICredits,
		Features:    r.Features,
	}
	if r.Tier != nil {
		t := subscription.Tier(*r.Tier)
		upd.Tier = &t
	}
	return upd
}
