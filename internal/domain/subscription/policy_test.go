package subscription

import (
	"reflect"
	"testing"
)

func TestPolicy_StorageLimitsAreMonotone(t *testing.T) {
	p := DefaultPolicy()

	chain := []Limit{
		p.StorageLimit(TierFree, false),
		p.StorageLimit(TierBasic, false),
		p.StorageLimit(TierPremium, false),
		p.StorageLimit(TierPremium, true),
	}
	for i := 1; i < len(chain); i++ {
		if chain[i].Less(chain[i-1]) {
			t.Errorf("storage limit %d (%v) is below limit %d (%v)", i, chain[i], i-1, chain[i-1])
		}
	}
	if !chain[len(chain)-1].IsUnbounded() {
		t.Error("admin storage limit should be unbounded")
	}
}

func TestPolicy_DefaultTables(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		tier        Tier
		wantStorage int64
		wantCredits int64
	}{
		{TierFree, 25, 5},
		{TierBasic, 100, 30},
		{TierPremium, 500, 150},
		{Tier("gold"), 25, 5},
		{Tier(""), 25, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := p.StorageLimit(tt.tier, false).Value(); got != tt.wantStorage {
				t.Errorf("StorageLimit(%q) = %d, want %d", tt.tier, got, tt.wantStorage)
			}
			if got := p.CreditLimit(tt.tier, false).Value(); got != tt.wantCredits {
				t.Errorf("CreditLimit(%q) = %d, want %d", tt.tier, got, tt.wantCredits)
			}
		})
	}
}

func TestPolicy_AdminAllowlist(t *testing.T) {
	p := DefaultPolicy("Admin@Example.com ", "ops@example.com")

	tests := []struct {
		email string
		want  bool
	}{
		{"admin@example.com", true},
		{"ADMIN@EXAMPLE.COM", true},
		{"ops@example.com", true},
		{"teacher@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := p.IsAdminEmail(tt.email); got != tt.want {
			t.Errorf("IsAdminEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestPolicy_FeaturesAreCopies(t *testing.T) {
	p := DefaultPolicy()

	features := p.Features(TierPremium, false)
	features[0] = "tampered"

	if p.Features(TierPremium, false)[0] == "tampered" {
		t.Error("Features() exposed the policy's internal slice")
	}
	if !reflect.DeepEqual(p.Features(TierFree, true), AdminFeatures()) {
		t.Error("admin features should be the full capability list")
	}
}

func TestNewPolicy_RejectsInvertedTiers(t *testing.T) {
	tiers := DefaultTierLimits()
	basic := tiers[TierBasic]
	basic.Storage = Finite(10)
	tiers[TierBasic] = basic

	if _, err := NewPolicy(Config{Tiers: tiers}); err == nil {
		t.Error("NewPolicy() accepted basic storage below free storage")
	}

	delete(tiers, TierPremium)
	if _, err := NewPolicy(Config{Tiers: tiers}); err == nil {
		t.Error("NewPolicy() accepted a table without premium")
	}
}

func TestNormalizeTier(t *testing.T) {
	tests := map[string]Tier{
		"premium":  TierPremium,
		" Basic ":  TierBasic,
		"":         TierFree,
		"platinum": TierFree,
	}
	for in, want := range tests {
		if got := NormalizeTier(in); got != want {
			t.Errorf("NormalizeTier(%q) = %q, want %q", in, got, want)
		}
	}
}
