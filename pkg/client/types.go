package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Limit is a quota value that is either a count or unlimited
type Limit struct {
	Unlimited bool
	Value     int64
}

// String renders the limit the way the API does
func (l Limit) String() string {
	if l.Unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(l.Value, 10)
}

// MarshalJSON encodes a count or "unlimited"
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.Unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(l.Value)
}

// UnmarshalJSON accepts a count, "unlimited" or a numeric string
func (l *Limit) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*l = Limit{Value: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("limit must be a number or string: %w", err)
	}
	if s == "unlimited" {
		*l = Limit{Unlimited: true}
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid limit %q", s)
	}
	*l = Limit{Value: n}
	return nil
}

// Share grants another user access to a plan
type Share struct {
	UserID string `json:"userId"`
	Access string `json:"access"` // read or edit
}

// LessonPlan is a stored lesson plan
type LessonPlan struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	Audience   string    `json:"audience"`
	Time       string    `json:"time"`
	Topic      string    `json:"topic"`
	Objectives string    `json:"objectives"`
	Content    string    `json:"content"`
	IsPublic   bool      `json:"isPublic"`
	Tags       []string  `json:"tags"`
	SharedWith []Share   `json:"sharedWith"`
	Generated  bool      `json:"generated"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LessonPlanPage is one page of a user's plans, newest first
type LessonPlanPage struct {
	Items      []LessonPlan `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"totalPages"`
}

// Subscription is a user's tier and entitlements
type Subscription struct {
	Tier      string     `json:"tier"`
	AICredits Limit      `json:"aiCreditsRemaining"`
	Features  []string   `json:"features"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// User represents a user in the system
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name,omitempty"`
	Image        string       `json:"image,omitempty"`
	Role         string       `json:"role"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Identity is the effective role and entitlements of a signed-in user
type Identity struct {
	UserID    string   `json:"userId,omitempty"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	Tier      string   `json:"tier"`
	Features  []string `json:"features"`
	Credits   Limit    `json:"aiCreditsRemaining"`
	Storage   Limit    `json:"storageLimit"`
	Persisted bool     `json:"persisted"`
}

// UsageRecord is one credit spend
type UsageRecord struct {
	ID          string                 `json:"id"`
	Feature     string                 `json:"feature"`
	CreditsUsed int64                  `json:"creditsUsed"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// StorageUsage is a plan count against the storage ceiling
type StorageUsage struct {
	Used  int64  `json:"used"`
	Limit Limit  `json:"limit"`
	Tier  string `json:"tier"`
}

// UsageSummary is the caller's quota state
type UsageSummary struct {
	UserID      string        `json:"userId"`
	Role        string        `json:"role"`
	Tier        string        `json:"tier"`
	Storage     StorageUsage  `json:"storage"`
	Credits     Limit         `json:"aiCreditsRemaining"`
	CreditLimit Limit         `json:"aiCreditLimit"`
	Features    []string      `json:"features"`
	RecentUsage []UsageRecord `json:"recentUsage"`
}

// Plan is a purchasable subscription tier
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceID     string   `json:"priceId,omitempty"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval"`
	Storage     Limit    `json:"storageLimit"`
	Credits     Limit    `json:"aiCredits"`
	Features    []string `json:"features"`
	IsPopular   bool     `json:"isPopular"`
	IsCurrent   bool     `json:"isCurrent"`
}

// CheckoutSession is a hosted checkout to redirect the user to
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Database  string          `json:"database,omitempty"`
	LatencyMs int64           `json:"latency_ms,omitempty"`
	Uptime    string          `json:"uptime,omitempty"`
	Features  map[string]bool `json:"features,omitempty"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int
	PageSize int
}

// PaginatedUsers is a page of users from the admin listing
type PaginatedUsers struct {
	Data       []User `json:"data"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalItems int64  `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}
