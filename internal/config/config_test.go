package config

import (
	"testing"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Name != "lessonplanner" {
		t.Errorf("Database.Name = %q, want lessonplanner", cfg.Database.Name)
	}
	if cfg.Database.MaxPoolSize != 10 || cfg.Database.MinPoolSize != 1 {
		t.Errorf("pool = %d/%d, want 10/1", cfg.Database.MaxPoolSize, cfg.Database.MinPoolSize)
	}
	if cfg.Database.MaxConnIdleTime != 30*time.Second {
		t.Errorf("MaxConnIdleTime = %v, want 30s", cfg.Database.MaxConnIdleTime)
	}
	if cfg.Worker.ExpirySchedule != "@every 1h" {
		t.Errorf("ExpirySchedule = %q", cfg.Worker.ExpirySchedule)
	}
	if cfg.Billing.Enabled() {
		t.Error("billing should be disabled without a Stripe key")
	}
}

func TestLoad_AdminEmailsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_EMAILS", " admin@example.com, ,Ops@Example.com ")
	t.Setenv("QUOTA_STORAGE_PREMIUM", "unlimited")
	t.Setenv("QUOTA_CREDITS_FREE", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Auth.AdminEmails) != 2 {
		t.Fatalf("AdminEmails = %v, want 2 entries", cfg.Auth.AdminEmails)
	}

	p, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if !p.IsAdminEmail("ops@example.com") {
		t.Error("allowlist should match case-insensitively")
	}
	if !p.StorageLimit(subscription.TierPremium, false).IsUnbounded() {
		t.Error("premium storage override not applied")
	}
	if got := p.CreditLimit(subscription.TierFree, false); !got.Equal(subscription.Finite(3)) {
		t.Errorf("free credits = %v, want 3", got)
	}
	if got := p.StorageLimit(subscription.TierBasic, false); !got.Equal(subscription.Finite(100)) {
		t.Errorf("basic storage = %v, want default 100", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{Port: 8080, Environment: "development"},
			Database:   DatabaseConfig{URI: "mongodb://localhost:27017", Name: "lp", MaxPoolSize: 10, MinPoolSize: 1},
			Auth:       AuthConfig{JWTSecret: "secret"},
			Generation: GenerationConfig{Temperature: 0.7},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Auth.JWTSecret = "supersecretkey"
		}, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing mongo uri", func(c *Config) { c.Database.URI = "" }, true},
		{"min pool above max", func(c *Config) { c.Database.MinPoolSize = 20 }, true},
		{"temperature out of range", func(c *Config) { c.Generation.Temperature = 3 }, true},
		{"inverted quota override", func(c *Config) { c.Quota.StorageBasic = "10" }, true},
		{"unparseable quota", func(c *Config) { c.Quota.CreditsBasic = "lots" }, true},
		{"gemini provider", func(c *Config) { c.Generation.Provider = "Gemini" }, false},
		{"unknown provider", func(c *Config) { c.Generation.Provider = "llama" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerationConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  GenerationConfig
		want bool
	}{
		{"openai with key", GenerationConfig{Provider: "openai", APIKey: "sk"}, true},
		{"openai without key", GenerationConfig{Provider: "openai", GeminiAPIKey: "g"}, false},
		{"gemini with key", GenerationConfig{Provider: "gemini", GeminiAPIKey: "g"}, true},
		{"gemini ignores openai key", GenerationConfig{Provider: "gemini", APIKey: "sk"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}
