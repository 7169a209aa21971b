package api

import (
	"log/slog"
	"net/http"
	"time"

	"credit-engine/internal/api/handler"
	mw "credit-engine/internal/api/middleware"
	"credit-engine/internal/config"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"

	_ "credit-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/redis/go-redis/v9"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Customer  customer.Service
	Credit    credit.Service
	Loan      loan.Service
	Ingestion handler.IngestionStarter
	Redis     *redis.Client
}

func SetupRouter(svcs Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupCreditRoutes(router, svcs, cfg, logger)
	setupLoanRoutes(router, svcs, cfg, logger)
	setupAdminRoutes(router, svcs, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupCreditRoutes(router *chi.Mux, svcs Services, cfg *config.Config, logger *slog.Logger) {
	creditHandler := handler.NewCreditHandler(svcs.Customer, svcs.Credit, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/register", creditHandler.RegisterCustomer)
		r.Post("/check-eligibility", creditHandler.CheckEligibility)

		r.Group(func(r chi.Router) {
			if svcs.Redis != nil {
				r.Use(mw.Idempotency(svcs.Redis, cfg.Redis.IdempotencyTTL, logger))
			}
			r.Post("/create-loan", creditHandler.CreateLoan)
		})
	})
}

func setupLoanRoutes(router *chi.Mux, svcs Services, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(svcs.Loan, logger)

	router.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/view-loan/{loanID}", loanHandler.ViewLoan)
		r.Get("/view-loans/{customerID}", loanHandler.ViewCustomerLoans)
	})
}

func setupAdminRoutes(router *chi.Mux, svcs Services, cfg *config.Config, logger *slog.Logger) {
	if svcs.Ingestion == nil {
		return
	}
	ingestionHandler := handler.NewIngestionHandler(svcs.Ingestion, cfg.Ingestion.Timeout, logger)

	router.Route("/admin", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/ingest", ingestionHandler.TriggerIngestion)
	})
}
