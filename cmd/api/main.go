package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratik-mahalle/lessonplanner/internal/api/handlers"
	"github.com/pratik-mahalle/lessonplanner/internal/api/router"
	"github.com/pratik-mahalle/lessonplanner/internal/auth"
	"github.com/pratik-mahalle/lessonplanner/internal/config"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/billing"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/generation"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/validator"
	"github.com/pratik-mahalle/lessonplanner/internal/providers"
	"github.com/pratik-mahalle/lessonplanner/internal/repository/mongodb"
	"github.com/pratik-mahalle/lessonplanner/internal/services"
	"github.com/pratik-mahalle/lessonplanner/internal/worker"
)

// @title Lesson Planner API
// @version 1.0
// @description Lesson plan storage, AI generation, quotas and subscriptions.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})

	policy, err := cfg.Policy()
	if err != nil {
		log.Fatal("Invalid quota configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	db, err := mongodb.Connect(connectCtx, cfg.Database)
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to database: " + err.Error())
	}
	defer db.Close(context.Background())

	if n, err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.ErrorWithErr(err, "Failed to ensure indexes")
	} else {
		log.WithFields(map[string]interface{}{"indexes": n}).Info("Indexes ensured")
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(db)
	planRepo := mongodb.NewLessonPlanRepository(db)
	usageRepo := mongodb.NewUsageRepository(db)

	// External providers; absent credentials leave the feature disabled
	var generator generation.Generator
	switch {
	case !cfg.Generation.Configured():
		log.Warn("No generation API key set; lesson plan generation is disabled")
	case cfg.Generation.Gemini():
		generator = providers.NewGeminiGenerator(cfg.Generation)
	default:
		generator = providers.NewOpenAIGenerator(cfg.Generation)
	}

	var gateway billing.Gateway
	if cfg.Billing.Enabled() {
		gateway = providers.NewStripeGateway(cfg.Billing, nil)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set; checkout is disabled")
	}

	var oauthProviders []auth.Provider
	if pc := auth.ProviderConfig(cfg.OAuth.Google); pc.Configured() {
		oauthProviders = append(oauthProviders, auth.NewGoogleProvider(pc))
	}
	if pc := auth.ProviderConfig(cfg.OAuth.GitHub); pc.Configured() {
		oauthProviders = append(oauthProviders, auth.NewGitHubProvider(pc))
	}
	registry := auth.NewRegistry(oauthProviders...)

	// Services
	userService := services.NewUserService(userRepo, policy, log)
	quotaService := services.NewQuotaService(userRepo, planRepo, usageRepo, policy, log)
	planService := services.NewLessonPlanService(planRepo, quotaService, log)
	generationService := services.NewGenerationService(generator, log)
	billingService := services.NewBillingService(userRepo, gateway, policy, services.BillingOptions{
		Prices:          prices(cfg.Billing),
		Currency:        cfg.Billing.Currency,
		SuccessURL:      cfg.Billing.SuccessURL,
		CancelURL:       cfg.Billing.CancelURL,
		PortalReturnURL: cfg.Billing.PortalReturnURL,
	}, log)

	// Background jobs
	if cfg.Worker.Enabled {
		sweeper := worker.NewExpirySweeper(userRepo, policy, cfg.Worker.ExpirySchedule, cfg.Worker.ExpiryBatch, log)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start expiry sweeper: " + err.Error())
		}
		defer sweeper.Stop()
	}

	val := validator.New()
	handler := router.New(cfg, log, userService, &router.Handlers{
		Health:     handlers.NewHealthHandler(db, log).WithFeatures(map[string]bool{
			"generation": generator != nil,
			"billing":    gateway != nil,
		}),
		Auth:       handlers.NewAuthHandler(userService, registry, cfg, log, val),
		LessonPlan: handlers.NewLessonPlanHandler(planService, quotaService, generationService, log, val),
		Usage:      handlers.NewUsageHandler(quotaService, log),
		Billing:    handlers.NewBillingHandler(billingService, log, val),
		Admin:      handlers.NewAdminHandler(userService, log, val),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
			"providers":   registry.Names(),
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorWithErr(err, "Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Server shutdown error")
	}

	log.Info("Server stopped")
}

func prices(cfg config.BillingConfig) []billing.Price {
	return []billing.Price{
		{Tier: subscription.TierBasic, PriceID: cfg.PriceBasic, Amount: cfg.AmountBasic},
		{Tier: subscription.TierPremium, PriceID: cfg.PricePremium, Amount: cfg.AmountPremium},
	}
}
