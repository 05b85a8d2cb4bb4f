package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/config"
	"github.com/gaiheki-navi/broker-api/internal/database"
	"github.com/gaiheki-navi/broker-api/internal/http/handler"
	"github.com/gaiheki-navi/broker-api/internal/http/middleware"

	_ "github.com/gaiheki-navi/broker-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	authHandler        *handler.AuthHandler
	diagnosisHandler   *handler.DiagnosisHandler
	quotationHandler   *handler.QuotationHandler
	orderHandler       *handler.OrderHandler
	invoiceHandler     *handler.InvoiceHandler
	feePlanHandler     *handler.FeePlanHandler
	articleHandler     *handler.ArticleHandler
	depositHandler     *handler.DepositHandler
	referralHandler    *handler.ReferralHandler
	partnerHandler     *handler.PartnerHandler
	applicationHandler *handler.ApplicationHandler
	settingsHandler    *handler.SettingsHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	diagnosisHandler *handler.DiagnosisHandler,
	quotationHandler *handler.QuotationHandler,
	orderHandler *handler.OrderHandler,
	invoiceHandler *handler.InvoiceHandler,
	feePlanHandler *handler.FeePlanHandler,
	articleHandler *handler.ArticleHandler,
	depositHandler *handler.DepositHandler,
	referralHandler *handler.ReferralHandler,
	partnerHandler *handler.PartnerHandler,
	applicationHandler *handler.ApplicationHandler,
	settingsHandler *handler.SettingsHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		authHandler:        authHandler,
		diagnosisHandler:   diagnosisHandler,
		quotationHandler:   quotationHandler,
		orderHandler:       orderHandler,
		invoiceHandler:     invoiceHandler,
		feePlanHandler:     feePlanHandler,
		articleHandler:     articleHandler,
		depositHandler:     depositHandler,
		referralHandler:    referralHandler,
		partnerHandler:     partnerHandler,
		applicationHandler: applicationHandler,
		settingsHandler:    settingsHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/partner/login", rt.authHandler.PartnerLogin)
		r.Post("/auth/admin/login", rt.authHandler.AdminLogin)
		r.Post("/applications", rt.applicationHandler.Submit)
		r.Get("/articles", rt.articleHandler.ListPublished)

		// Partner routes
		r.Route("/partner", func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.authMiddleware.RequirePartner)
			r.Use(rt.rateLimiter.Limit)

			r.Get("/profile", rt.partnerHandler.Me)
			r.Put("/profile", rt.partnerHandler.UpdateProfile)

			r.Get("/diagnoses/eligible", rt.diagnosisHandler.ListEligible)

			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.ListMine)
				r.Post("/", rt.quotationHandler.Submit)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.ListMine)
				r.Get("/{id}", rt.orderHandler.GetByID)
				r.Put("/{id}", rt.orderHandler.Update)
				r.Post("/{id}/photos", rt.orderHandler.UploadPhoto)
				r.Post("/{orderId}/invoice", rt.invoiceHandler.CreateCustomerInvoice)
			})

			r.Route("/customer-invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.ListCustomerInvoices)
				r.Get("/{id}", rt.invoiceHandler.GetCustomerInvoice)
				r.Post("/{id}/issue", rt.invoiceHandler.IssueCustomerInvoice)
				r.Put("/{id}/status", rt.invoiceHandler.SetCustomerInvoiceStatus)
			})

			r.Route("/deposits", func(r chi.Router) {
				r.Get("/", rt.depositHandler.Summary)
				r.Post("/requests", rt.depositHandler.CreateRequest)
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.authMiddleware.RequireAdmin)
			r.Use(rt.rateLimiter.Limit)

			r.Route("/diagnoses", func(r chi.Router) {
				r.Get("/", rt.diagnosisHandler.List)
				r.Post("/", rt.diagnosisHandler.Create)
				r.Get("/{id}", rt.diagnosisHandler.GetByID)
				r.Put("/{id}", rt.diagnosisHandler.Update)
				r.Post("/{id}/cancel", rt.diagnosisHandler.Cancel)
				r.Post("/{id}/decide", rt.diagnosisHandler.Decide)
				r.Get("/{id}/quotations", rt.diagnosisHandler.ListQuotations)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.List)
				r.Get("/{id}", rt.orderHandler.GetByID)
			})

			r.Route("/company-invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.ListCompanyInvoices)
				r.Post("/generate", rt.invoiceHandler.GenerateCompanyInvoices)
				r.Post("/issue", rt.invoiceHandler.IssueCompanyInvoices)
				r.Get("/{id}", rt.invoiceHandler.GetCompanyInvoice)
				r.Post("/{id}/issue", rt.invoiceHandler.IssueCompanyInvoice)
				r.Put("/{id}/status", rt.invoiceHandler.SetCompanyInvoiceStatus)
			})

			r.Put("/customer-invoices/{id}/status", rt.invoiceHandler.SetCustomerInvoiceStatus)

			r.Route("/fee-plans", func(r chi.Router) {
				r.Get("/", rt.feePlanHandler.List)
				r.Post("/", rt.feePlanHandler.Create)
				r.Get("/{id}", rt.feePlanHandler.GetByID)
				r.Put("/{id}", rt.feePlanHandler.Update)
				r.Delete("/{id}", rt.feePlanHandler.Delete)
			})

			r.Route("/partners", func(r chi.Router) {
				r.Get("/", rt.partnerHandler.List)
				r.Get("/{id}", rt.partnerHandler.GetByID)
				r.Put("/{id}/active", rt.partnerHandler.SetActive)
				r.Put("/{id}/fee-plan", rt.feePlanHandler.AssignToPartner)
			})

			r.Route("/applications", func(r chi.Router) {
				r.Get("/", rt.applicationHandler.List)
				r.Post("/{id}/review", rt.applicationHandler.Review)
			})

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", rt.articleHandler.List)
				r.Post("/", rt.articleHandler.Create)
				r.Get("/{id}", rt.articleHandler.GetByID)
				r.Put("/{id}", rt.articleHandler.Update)
				r.Delete("/{id}", rt.articleHandler.Delete)
				r.Post("/{id}/move", rt.articleHandler.Move)
			})

			r.Route("/deposits", func(r chi.Router) {
				r.Get("/requests", rt.depositHandler.ListRequests)
				r.Post("/requests/{id}/review", rt.depositHandler.Review)
			})

			r.Route("/referrals", func(r chi.Router) {
				r.Get("/", rt.referralHandler.List)
				r.Post("/", rt.referralHandler.Create)
			})

			r.Get("/settings", rt.settingsHandler.Get)
			r.Put("/settings", rt.settingsHandler.Update)
		})
	})

	return r
}
