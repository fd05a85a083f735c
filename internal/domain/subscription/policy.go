package subscription

import (
	"fmt"
	"strings"
)

// Tier is a subscription level
type Tier string

// Subscription tiers, lowest first
const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// Tiers lists the purchasable tiers in ascending order
var Tiers = []Tier{TierFree, TierBasic, TierPremium}

// ParseTier validates s as a known tier
func ParseTier(s string) (Tier, bool) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierFree, TierBasic, TierPremium:
		return t, true
	default:
		return "", false
	}
}

// NormalizeTier returns s as a tier, treating missing or unknown values as free
func NormalizeTier(s string) Tier {
	if t, ok := ParseTier(s); ok {
		return t
	}
	return TierFree
}

// Capability strings granted by tiers
const (
	FeatureLessonPlans      = "lesson_plans"
	FeatureAIGeneration     = "ai_generation"
	FeatureExport           = "export"
	FeatureSharing          = "sharing"
	FeatureCustomStandards  = "custom_standards"
	FeatureAdvancedPrompts  = "advanced_prompts"
	FeaturePrioritySupport  = "priority_support"
	FeatureUserManagement   = "user_management"
	FeatureBillingOverrides = "billing_overrides"
)

// TierLimits holds the ceilings for one tier
type TierLimits struct {
	Storage  Limit
	Credits  Limit
	Features []string
}

// Config is the raw material for a Policy
type Config struct {
	Tiers       map[Tier]TierLimits
	AdminEmails []string
}

// DefaultTierLimits returns the canonical tier table
func DefaultTierLimits() map[Tier]TierLimits {
	return map[Tier]TierLimits{
		TierFree: {
			Storage:  Finite(25),
			Credits:  Finite(5),
			Features: []string{FeatureLessonPlans, FeatureAIGeneration},
		},
		TierBasic: {
			Storage:  Finite(100),
			Credits:  Finite(30),
			Features: []string{FeatureLessonPlans, FeatureAIGeneration, FeatureExport, FeatureSharing},
		},
		TierPremium: {
			Storage: Finite(500),
			Credits: Finite(150),
			Features: []string{
				FeatureLessonPlans, FeatureAIGeneration, FeatureExport, FeatureSharing,
				FeatureCustomStandards, FeatureAdvancedPrompts, FeaturePrioritySupport,
			},
		},
	}
}

// AdminFeatures is the full capability list granted to admins
func AdminFeatures() []string {
	return []string{
		FeatureLessonPlans, FeatureAIGeneration, FeatureExport, FeatureSharing,
		FeatureCustomStandards, FeatureAdvancedPrompts, FeaturePrioritySupport,
		FeatureUserManagement, FeatureBillingOverrides,
	}
}

// Policy is the immutable tier table and admin allowlist.
// It is built once at startup and shared by reference.
type Policy struct {
	tiers       map[Tier]TierLimits
	adminEmails map[string]struct{}
}

// NewPolicy validates cfg and freezes it into a Policy
func NewPolicy(cfg Config) (*Policy, error) {
	tiers := make(map[Tier]TierLimits, len(Tiers))
	for _, t := range Tiers {
		limits, ok := cfg.Tiers[t]
		if !ok {
			return nil, fmt.Errorf("missing limits for tier %q", t)
		}
		limits.Features = append([]string(nil), limits.Features...)
		tiers[t] = limits
	}

	for i := 1; i < len(Tiers); i++ {
		lower, upper := tiers[Tiers[i-1]], tiers[Tiers[i]]
		if upper.Storage.Less(lower.Storage) {
			return nil, fmt.Errorf("storage limit for %q is below %q", Tiers[i], Tiers[i-1])
		}
		if upper.Credits.Less(lower.Credits) {
			return nil, fmt.Errorf("credit limit for %q is below %q", Tiers[i], Tiers[i-1])
		}
	}

	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if e := normalizeEmail(email); e != "" {
			admins[e] = struct{}{}
		}
	}

	return &Policy{tiers: tiers, adminEmails: admins}, nil
}

// DefaultPolicy returns the canonical tier table with the given admin allowlist
func DefaultPolicy(adminEmails ...string) *Policy {
	p, err := NewPolicy(Config{Tiers: DefaultTierLimits(), AdminEmails: adminEmails})
	if err != nil {
		panic(err)
	}
	return p
}

// IsAdminEmail reports whether email is on the admin allowlist
func (p *Policy) IsAdminEmail(email string) bool {
	_, ok := p.adminEmails[normalizeEmail(email)]
	return ok
}

// Limits returns the limits for t, defaulting to free for unknown tiers
func (p *Policy) Limits(t Tier) TierLimits {
	if limits, ok := p.tiers[t]; ok {
		return limits
	}
	return p.tiers[TierFree]
}

// StorageLimit returns the lesson plan ceiling for t; admins are unbounded
func (p *Policy) StorageLimit(t Tier, admin bool) Limit {
	if admin {
		return Unbounded()
	}
	return p.Limits(t).Storage
}

// CreditLimit returns the AI credit allotment for t; admins are unbounded
func (p *Policy) CreditLimit(t Tier, admin bool) Limit {
	if admin {
		return Unbounded()
	}
	return p.Limits(t).Credits
}

// Features returns a copy of the canonical feature list for t
func (p *Policy) Features(t Tier, admin bool) []string {
	if admin {
		return AdminFeatures()
	}
	return append([]string(nil), p.Limits(t).Features...)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
