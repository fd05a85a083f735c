package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	OAuth      OAuthConfig
	Logging    LoggingConfig
	Quota      QuotaConfig
	Generation GenerationConfig
	Billing    BillingConfig
	Worker     WorkerConfig
	RateLimit  RateLimitConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	APIBaseURL      string
	FrontendURL     string
	AllowedOrigins  []string
	Environment     string
}

// IsProduction reports whether the server runs in production
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// DatabaseConfig contains MongoDB configuration
type DatabaseConfig struct {
	URI                    string
	Name                   string
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	QueryTimeout           time.Duration
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	AdminEmails        []string
}

// OAuthConfig contains OAuth provider configuration
type OAuthConfig struct {
	Google GoogleOAuthConfig
	GitHub GitHubOAuthConfig
}

// GoogleOAuthConfig contains Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GitHubOAuthConfig contains GitHub OAuth configuration
type GitHubOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// QuotaConfig overrides the default tier tables. Empty values keep the default;
// "unlimited" lifts a ceiling.
type QuotaConfig struct {
	StorageFree    string
	StorageBasic   string
	StoragePremium string
	CreditsFree    string
	CreditsBasic   string
	CreditsPremium string
}

// GenerationConfig contains text generation API configuration
type GenerationConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
}

// Gemini reports whether generation goes through the Gemini API
func (g GenerationConfig) Gemini() bool {
	return strings.EqualFold(g.Provider, "gemini")
}

// Configured reports whether the selected provider has credentials
func (g GenerationConfig) Configured() bool {
	if g.Gemini() {
		return g.GeminiAPIKey != ""
	}
	return g.APIKey != ""
}

// BillingConfig contains Stripe configuration
type BillingConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	PriceBasic          string
	PricePremium        string
	AmountBasic         float64
	AmountPremium       float64
	Currency            string
	SuccessURL          string
	CancelURL           string
	PortalReturnURL     string
}

// Enabled reports whether checkout can be offered
func (b BillingConfig) Enabled() bool {
	return b.StripeSecretKey != ""
}

// WorkerConfig contains background job configuration
type WorkerConfig struct {
	Enabled        bool
	ExpirySchedule string
	ExpiryBatch    int
}

// RateLimitConfig contains per-IP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	frontend := getEnv("FRONTEND_URL", "http://localhost:3000")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8080"),
			FrontendURL:     frontend,
			AllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URI:                    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Name:                   getEnv("MONGODB_DATABASE", "lessonplanner"),
			MaxPoolSize:            uint64(getEnvAsInt("MONGODB_MAX_POOL_SIZE", 10)),
			MinPoolSize:            uint64(getEnvAsInt("MONGODB_MIN_POOL_SIZE", 1)),
			MaxConnIdleTime:        getEnvAsDuration("MONGODB_MAX_IDLE_TIME", 30*time.Second),
			ConnectTimeout:         getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			ServerSelectionTimeout: getEnvAsDuration("MONGODB_SERVER_SELECTION_TIMEOUT", 5*time.Second),
			QueryTimeout:           getEnvAsDuration("MONGODB_QUERY_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "supersecretkey"),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),
			AdminEmails:        getEnvAsSlice("ADMIN_EMAILS", nil),
		},
		OAuth: OAuthConfig{
			Google: GoogleOAuthConfig{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
			},
			GitHub: GitHubOAuthConfig{
				ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
				ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GITHUB_REDIRECT_URL", "http://localhost:8080/api/v1/auth/github/callback"),
			},
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Quota: QuotaConfig{
			StorageFree:    getEnv("QUOTA_STORAGE_FREE", ""),
			StorageBasic:   getEnv("QUOTA_STORAGE_BASIC", ""),
			StoragePremium: getEnv("QUOTA_STORAGE_PREMIUM", ""),
			CreditsFree:    getEnv("QUOTA_CREDITS_FREE", ""),
			CreditsBasic:   getEnv("QUOTA_CREDITS_BASIC", ""),
			CreditsPremium: getEnv("QUOTA_CREDITS_PREMIUM", ""),
		},
		Generation: GenerationConfig{
			Provider:      getEnv("GENERATION_PROVIDER", "openai"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", ""),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:   getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
			MaxTokens:     getEnvAsInt("OPENAI_MAX_TOKENS", 2000),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Billing: BillingConfig{
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceBasic:          getEnv("STRIPE_PRICE_BASIC", ""),
			PricePremium:        getEnv("STRIPE_PRICE_PREMIUM", ""),
			AmountBasic:         getEnvAsFloat("PLAN_PRICE_BASIC", 9.99),
			AmountPremium:       getEnvAsFloat("PLAN_PRICE_PREMIUM", 19.99),
			Currency:            getEnv("PLAN_CURRENCY", "USD"),
			SuccessURL:          getEnv("STRIPE_SUCCESS_URL", frontend+"/billing/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:           getEnv("STRIPE_CANCEL_URL", frontend+"/pricing"),
			PortalReturnURL:     getEnv("STRIPE_PORTAL_RETURN_URL", frontend+"/account"),
		},
		Worker: WorkerConfig{
			Enabled:        getEnvAsBool("WORKER_ENABLED", true),
			ExpirySchedule: getEnv("WORKER_EXPIRY_SCHEDULE", "@every 1h"),
			ExpiryBatch:    getEnvAsInt("WORKER_EXPIRY_BATCH", 100),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 100),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 200),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" || (c.Server.IsProduction() && c.Auth.JWTSecret == "supersecretkey") {
		return fmt.Errorf("JWT_SECRET must be set and should not use default value in production")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.URI == "" || c.Database.Name == "" {
		return fmt.Errorf("MONGODB_URI and MONGODB_DATABASE must be set")
	}

	if c.Database.MinPoolSize > c.Database.MaxPoolSize {
		return fmt.Errorf("MONGODB_MIN_POOL_SIZE (%d) exceeds MONGODB_MAX_POOL_SIZE (%d)",
			c.Database.MinPoolSize, c.Database.MaxPoolSize)
	}

	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2, got %v", c.Generation.Temperature)
	}

	switch strings.ToLower(c.Generation.Provider) {
	case "", "openai", "gemini":
	default:
		return fmt.Errorf("GENERATION_PROVIDER must be openai or gemini, got %q", c.Generation.Provider)
	}

	if c.Billing.Enabled() && c.Billing.StripeWebhookSecret == "" && c.Server.IsProduction() {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set when billing is enabled")
	}

	if _, err := c.Policy(); err != nil {
		return err
	}

	return nil
}

// Policy builds the immutable tier and admin policy from the quota overrides
func (c *Config) Policy() (*subscription.Policy, error) {
	tiers := subscription.DefaultTierLimits()

	overrides := []struct {
		tier    subscription.Tier
		storage string
		credits string
	}{
		{subscription.TierFree, c.Quota.StorageFree, c.Quota.CreditsFree},
		{subscription.TierBasic, c.Quota.StorageBasic, c.Quota.CreditsBasic},
		{subscription.TierPremium, c.Quota.StoragePremium, c.Quota.CreditsPremium},
	}

	for _, o := range overrides {
		limits := tiers[o.tier]
		if o.storage != "" {
			l, err := subscription.ParseLimit(o.storage)
			if err != nil {
				return nil, fmt.Errorf("storage quota for %s: %w", o.tier, err)
			}
			limits.Storage = l
		}
		if o.credits != "" {
			l, err := subscription.ParseLimit(o.credits)
			if err != nil {
				return nil, fmt.Errorf("credit quota for %s: %w", o.tier, err)
			}
			limits.Credits = l
		}
		tiers[o.tier] = limits
	}

	return subscription.NewPolicy(subscription.Config{
		Tiers:       tiers,
		AdminEmails: c.Auth.AdminEmails,
	})
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice splits a comma separated value, dropping blanks
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
