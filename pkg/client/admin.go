package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// AdminService handles user management API calls. Every call requires an admin caller.
type AdminService struct {
	client *Client
}

// SubscriptionUpdate changes only the non-nil fields
type SubscriptionUpdate struct {
	Tier        *string    `json:"tier,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ClearExpiry bool       `json:"clearExpiry,omitempty"`
	AICredits   *Limit     `json:"aiCreditsRemaining,omitempty"`
	Features    *[]string  `json:"features,omitempty"`
}

// ListUsers retrieves a page of users
func (s *AdminService) ListUsers(ctx context.Context, opts *ListOptions) (*PaginatedUsers, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := "/api/v1/admin/users"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page PaginatedUsers
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SetRole changes a user's role (user, premium or admin)
func (s *AdminService) SetRole(ctx context.Context, userID, role string) (*User, error) {
	var u User
	path := "/api/v1/admin/users/" + url.PathEscape(userID) + "/role"
	if err := s.client.doRequest(ctx, "PUT", path, map[string]string{"role": role}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetSubscription changes a user's subscription fields
func (s *AdminService) SetSubscription(ctx context.Context, userID string, upd SubscriptionUpdate) (*User, error) {
	var u User
	path := "/api/v1/admin/users/" + url.PathEscape(userID) + "/subscription"
	if err := s.client.doRequest(ctx, "PUT", path, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
