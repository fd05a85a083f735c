package quota

import (
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

// Feature kinds recorded against AI usage
const (
	FeatureLessonPlan = "lesson_plan"
	FeatureGenerate   = "generate"
)

// Resources reported in quota errors
const (
	ResourceStorage = "storage"
	ResourceCredits = "credits"
)

// UsageRecord is one append-only entry in the AI usage log
type UsageRecord struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"userId"`
	Feature     string                 `json:"feature"`
	CreditsUsed int64                  `json:"creditsUsed"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// StorageUsage is a user's plan count against their storage ceiling
type StorageUsage struct {
	Used  int64              `json:"used"`
	Limit subscription.Limit `json:"limit"`
	Tier  subscription.Tier  `json:"tier"`
}

// Remaining returns how many more plans fit, or -1 when unbounded
func (s StorageUsage) Remaining() int64 {
	if s.Limit.IsUnbounded() {
		return -1
	}
	if r := s.Limit.Value() - s.Used; r > 0 {
		return r
	}
	return 0
}

// SpendResult reports the outcome of one credit spend
type SpendResult struct {
	Remaining subscription.Limit `json:"aiCreditsRemaining"`
	Spent     bool               `json:"spent"`
	Record    *UsageRecord       `json:"record"`
}

// Summary is the usage view shown to a signed-in user
type Summary struct {
	UserID      string             `json:"userId"`
	Role        string             `json:"role"`
	Tier        subscription.Tier  `json:"tier"`
	Storage     StorageUsage       `json:"storage"`
	Credits     subscription.Limit `json:"aiCreditsRemaining"`
	CreditLimit subscription.Limit `json:"aiCreditLimit"`
	Features    []string           `json:"features"`
	RecentUsage []*UsageRecord     `json:"recentUsage"`
}
