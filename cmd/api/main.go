package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamtrack/lead-api/internal/auth"
	"github.com/kamtrack/lead-api/internal/config"
	"github.com/kamtrack/lead-api/internal/database"
	"github.com/kamtrack/lead-api/internal/http/handler"
	"github.com/kamtrack/lead-api/internal/http/middleware"
	"github.com/kamtrack/lead-api/internal/http/router"
	"github.com/kamtrack/lead-api/internal/jobs"
	"github.com/kamtrack/lead-api/internal/logger"
	"github.com/kamtrack/lead-api/internal/repository"
	"github.com/kamtrack/lead-api/internal/service"
	"go.uber.org/zap"
)

// @title KAM Lead API
// @version 1.0
// @description Lead management API for key account managers: call scheduling, interaction tracking, and performance dashboards
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@kamtrack.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
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

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// In development the schema is kept in sync automatically; deployed
	// environments run the goose migrations instead.
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	transferRepo := repository.NewTransferRepository(db)

	// Initialize services
	tokens := auth.NewTokenManager(&cfg.Auth)
	leadService := service.NewLeadService(db, leadRepo, userRepo, log)
	interactionService := service.NewInteractionService(db, leadRepo, userRepo, interactionRepo, contactRepo, log)
	transferService := service.NewTransferService(db, leadRepo, userRepo, transferRepo, log)
	contactService := service.NewContactService(db, contactRepo, leadRepo, log)
	userService := service.NewUserService(userRepo, leadRepo, tokens, log)
	dashboardService := service.NewDashboardService(leadRepo, userRepo, interactionRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	leadHandler := handler.NewLeadHandler(leadService, transferService, log)
	interactionHandler := handler.NewInteractionHandler(interactionService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	userHandler := handler.NewUserHandler(userService, transferService, dashboardService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Initialize router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		leadHandler,
		interactionHandler,
		contactHandler,
		userHandler,
		dashboardHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		reminderJob := jobs.NewCallReminderJob(leadRepo, userRepo, log)
		if err := scheduler.AddJob("call-reminder", cfg.Jobs.CallReminderCron, func() {
			reminderJob.Run(context.Background())
		}); err != nil {
			log.Error("Failed to register call reminder job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with call reminder job",
				zap.String("cron_expr", cfg.Jobs.CallReminderCron),
			)
		}
	} else {
		log.Info("Background jobs disabled")
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
