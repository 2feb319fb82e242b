package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kamtrack/lead-api/internal/auth"
	"github.com/kamtrack/lead-api/internal/config"
	"github.com/kamtrack/lead-api/internal/database"
	"github.com/kamtrack/lead-api/internal/http/handler"
	"github.com/kamtrack/lead-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	leadHandler        *handler.LeadHandler
	interactionHandler *handler.InteractionHandler
	contactHandler     *handler.ContactHandler
	userHandler        *handler.UserHandler
	dashboardHandler   *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	leadHandler *handler.LeadHandler,
	interactionHandler *handler.InteractionHandler,
	contactHandler *handler.ContactHandler,
	userHandler *handler.UserHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		leadHandler:        leadHandler,
		interactionHandler: interactionHandler,
		contactHandler:     contactHandler,
		userHandler:        userHandler,
		dashboardHandler:   dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
		})
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
		r.Post("/auth/login", rt.userHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Post("/", rt.leadHandler.Create)
				r.Get("/today-calls", rt.leadHandler.TodayCalls)
				r.Get("/{id}", rt.leadHandler.Get)
				r.Patch("/{id}", rt.leadHandler.Update)
				r.Delete("/{id}", rt.leadHandler.Delete)
				r.Put("/{id}/status", rt.leadHandler.UpdateStatus)
				r.Post("/{id}/reassign", rt.leadHandler.Reassign)
				r.Get("/{id}/transfers", rt.leadHandler.TransferHistory)
				r.Get("/{id}/performance", rt.dashboardHandler.LeadPerformance)

				// Interactions
				r.Get("/{id}/interactions", rt.interactionHandler.List)
				r.Post("/{id}/interactions", rt.interactionHandler.Record)

				// Contacts
				r.Get("/{id}/contacts", rt.contactHandler.List)
				r.Post("/{id}/contacts", rt.contactHandler.Add)
				r.Put("/{id}/contacts/{contactId}/primary", rt.contactHandler.SetPrimary)
				r.Delete("/{id}/contacts/{contactId}", rt.contactHandler.Delete)
			})

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Get("/", rt.userHandler.List)
				r.Get("/{id}", rt.userHandler.Get)
				r.Patch("/{id}", rt.userHandler.Update)
				r.Get("/{id}/stats", rt.userHandler.Stats)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Post("/", rt.userHandler.Create)
					r.Delete("/{id}", rt.userHandler.Deactivate)
					r.Post("/{id}/transfer-leads", rt.userHandler.TransferLeads)
				})
			})

			// Dashboard
			r.Get("/dashboard/kam/{kamId}", rt.dashboardHandler.KamDashboard)
		})
	})

	return r
}
