package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitlens/backend/internal/config"
	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/internal/handler"
	appMiddleware "github.com/fitlens/backend/internal/middleware"
	"github.com/fitlens/backend/internal/repository"
	"github.com/fitlens/backend/internal/service"
	"github.com/fitlens/backend/pkg/geo"
	"github.com/fitlens/backend/pkg/payment"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Info("database connected & migrated")

	// Repositories
	planRepo := repository.NewPlanRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	trialRepo := repository.NewTrialRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Seed the plan catalog on first startup
	if err := planRepo.Seed(ctx, domain.DefaultPlans()); err != nil {
		log.Fatalf("plan seed error: %v", err)
	}

	// Payment gateway
	var gateway payment.Gateway
	if cfg.GatewayKeyID != "" {
		gateway = payment.NewClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewaySecret)
	} else {
		log.Warn("GATEWAY_KEY_ID not set, using mock payment gateway")
		gateway = payment.NewMockGateway(cfg.GatewaySecret)
	}

	geoClient := geo.NewClient(cfg.GeoBaseURL, cfg.GeoINRRate)

	// Services
	trialSvc := service.NewTrialService(trialRepo)
	quotaSvc := service.NewQuotaService(subRepo)
	subSvc := service.NewSubscriptionService(subRepo, planRepo, txRepo, gateway, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(db)
	plansHandler := handler.NewPlansHandler(planRepo)
	geoHandler := handler.NewGeoHandler(geoClient)
	trialHandler := handler.NewTrialHandler(trialSvc)
	quotaHandler := handler.NewQuotaHandler(quotaSvc)
	subHandler := handler.NewSubscriptionHandler(subSvc)
	adminHandler := handler.NewAdminHandler(planRepo, userRepo)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	// Public routes (no auth)
	r.Get("/health", healthHandler.Check)
	r.Get("/api/plans", plansHandler.List)
	r.Get("/api/geo", geoHandler.Lookup)

	// Payment confirmation: public (gateway redirect carries no session),
	// guarded by the HMAC signature plus a strict rate limit.
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.StrictRateLimiter())
		r.Post("/api/payment-success", subHandler.PaymentSuccess)
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(cfg.JWTSecret, userRepo))

		r.Post("/api/check-free-trial", trialHandler.Check)
		r.Post("/api/update-free-trial", trialHandler.Consume)
		r.Post("/api/check-quota", quotaHandler.CheckAndConsume)

		r.Post("/api/create-order", subHandler.CreateCheckout)
		r.Post("/api/subscription", subHandler.GetCurrent)
		r.Post("/api/cancel-subscription", subHandler.Cancel)
		r.Post("/api/pause-subscription", subHandler.Pause)
		r.Post("/api/resume-subscription", subHandler.Resume)
		r.Post("/api/reactivate-subscription", subHandler.Reactivate)
		r.Post("/api/update-subscription", subHandler.UpdatePlan)
	})

	// Admin routes (X-Admin-Key)
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.AdminKey(cfg.AdminKey))
		r.Put("/api/admin/plans/{id}", adminHandler.UpdatePlan)
		r.Get("/api/admin/users", adminHandler.ListUsers)
	})

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("FitLens backend listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
