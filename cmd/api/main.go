package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/docs"
	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/config"
	"github.com/gaiheki-navi/broker-api/internal/database"
	"github.com/gaiheki-navi/broker-api/internal/http/handler"
	"github.com/gaiheki-navi/broker-api/internal/http/middleware"
	"github.com/gaiheki-navi/broker-api/internal/http/router"
	"github.com/gaiheki-navi/broker-api/internal/jobs"
	"github.com/gaiheki-navi/broker-api/internal/logger"
	"github.com/gaiheki-navi/broker-api/internal/repository"
	"github.com/gaiheki-navi/broker-api/internal/service"
	"github.com/gaiheki-navi/broker-api/internal/storage"
)

// @title Gaiheki Navi Broker API
// @version 1.0
// @description Referral platform API connecting homeowners with exterior painting companies

// @contact.name API Support
// @contact.email support@gaiheki-navi.jp

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch cfg.App.Environment {
	case "production":
		docs.SwaggerInfo.Host = "api.gaiheki-navi.jp"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	sequenceRepo := repository.NewSequenceRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	diagnosisRepo := repository.NewDiagnosisRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	feePlanRepo := repository.NewFeePlanRepository(db)
	companyInvoiceRepo := repository.NewCompanyInvoiceRepository(db)
	customerInvoiceRepo := repository.NewCustomerInvoiceRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize services
	numberService := service.NewNumberService(sequenceRepo, log)
	diagnosisService := service.NewDiagnosisService(db, diagnosisRepo, quotationRepo, customerRepo, settingsRepo, numberService, log)
	quotationService := service.NewQuotationService(quotationRepo, diagnosisRepo, partnerRepo, log)
	billingService := service.NewBillingService(db, companyInvoiceRepo, customerInvoiceRepo, orderRepo, partnerRepo, settingsRepo, numberService, log)
	feePlanService := service.NewFeePlanService(feePlanRepo, partnerRepo, log)
	articleService := service.NewArticleService(articleRepo, log)
	depositService := service.NewDepositService(db, depositRepo, partnerRepo, log)
	referralService := service.NewReferralService(db, referralRepo, diagnosisRepo, partnerRepo, depositRepo, log)
	orderService := service.NewOrderService(orderRepo, fileStorage, log)
	partnerService := service.NewPartnerService(db, partnerRepo, applicationRepo, feePlanRepo, log)
	authService := service.NewAuthService(partnerRepo, adminRepo, authMiddleware.Issuer(), log)
	settingsService := service.NewSettingsService(settingsRepo, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	diagnosisHandler := handler.NewDiagnosisHandler(diagnosisService, quotationService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	invoiceHandler := handler.NewInvoiceHandler(billingService, log)
	feePlanHandler := handler.NewFeePlanHandler(feePlanService, log)
	articleHandler := handler.NewArticleHandler(articleService, log)
	depositHandler := handler.NewDepositHandler(depositService, log)
	referralHandler := handler.NewReferralHandler(referralService, log)
	partnerHandler := handler.NewPartnerHandler(partnerService, log)
	applicationHandler := handler.NewApplicationHandler(partnerService, log)
	settingsHandler := handler.NewSettingsHandler(settingsService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		diagnosisHandler,
		quotationHandler,
		orderHandler,
		invoiceHandler,
		feePlanHandler,
		articleHandler,
		depositHandler,
		referralHandler,
		partnerHandler,
		applicationHandler,
		settingsHandler,
	)

	// Initialize and start scheduler for background billing jobs
	var scheduler *jobs.Scheduler
	if cfg.Billing.JobsEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterBillingJobs(
			scheduler,
			billingService,
			log,
			cfg.Billing.GenerateCron,
			cfg.Billing.OverdueCron,
		); err != nil {
			log.Error("Failed to register billing jobs", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with billing jobs",
				zap.String("generate_cron", cfg.Billing.GenerateCron),
				zap.String("overdue_cron", cfg.Billing.OverdueCron),
			)
		}
	} else {
		log.Info("Billing jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
