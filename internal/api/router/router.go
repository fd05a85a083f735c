package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pratik-mahalle/lessonplanner/internal/api/handlers"
	"github.com/pratik-mahalle/lessonplanner/internal/api/middleware"
	"github.com/pratik-mahalle/lessonplanner/internal/config"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	LessonPlan *handlers.LessonPlanHandler
	Usage      *handlers.UsageHandler
	Billing    *handlers.BillingHandler
	Admin      *handlers.AdminHandler
}

func New(cfg *config.Config, log *logger.Logger, resolver user.Resolver, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.AllowedOrigins(cfg.Server.FrontendURL, cfg.Server.AllowedOrigins)))
	r.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	r.Use(metrics.Middleware)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		// Health checks
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Get("/providers", h.Auth.Providers)
			r.Get("/{provider}/login", h.Auth.Login)
			r.Get("/{provider}/callback", h.Auth.Callback)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
		})

		// Signature-verified instead of authenticated
		r.Post("/api/v1/billing/webhook", h.Billing.Webhook)
	})

	// Plan listing marks the current tier when a session is present
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthMiddleware(cfg.Auth.JWTSecret))
		r.Get("/api/v1/billing/plans", h.Billing.ListPlans)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.Get("/api/v1/auth/me", h.Auth.Me)
		r.Get("/api/v1/usage", h.Usage.Summary)

		r.Route("/api/v1/lessonplans", func(r chi.Router) {
			r.Get("/", h.LessonPlan.List)
			r.Post("/", h.LessonPlan.Create)
			// Generation calls a paid upstream per request
			r.With(middleware.UserRateLimit(1, 5)).Post("/generate", h.LessonPlan.Generate)
			r.Get("/{id}", h.LessonPlan.Get)
			r.Put("/{id}", h.LessonPlan.Update)
			r.Delete("/{id}", h.LessonPlan.Delete)
		})

		r.Route("/api/v1/billing", func(r chi.Router) {
			r.Post("/checkout", h.Billing.CreateCheckoutSession)
			r.Post("/verify", h.Billing.VerifyCheckout)
			r.Post("/portal", h.Billing.CreatePortalSession)
		})

		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(resolver))
			r.Get("/users", h.Admin.ListUsers)
			r.Put("/users/{id}/role", h.Admin.SetRole)
			r.Put("/users/{id}/subscription", h.Admin.SetSubscription)
		})
	})

	return r
}
