package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/hibiken/asynq"
	_ "github.com/japanesestudent/content-service/docs"
	authMiddleware "github.com/japanesestudent/content-service/internal/auth/middleware"
	authService "github.com/japanesestudent/content-service/internal/auth/service"
	"github.com/japanesestudent/content-service/internal/config"
	"github.com/japanesestudent/content-service/internal/database"
	"github.com/japanesestudent/content-service/internal/handlers"
	"github.com/japanesestudent/content-service/internal/logger"
	loggerMiddleware "github.com/japanesestudent/content-service/internal/logger/middleware"
	"github.com/japanesestudent/content-service/internal/middlewares"
	"github.com/japanesestudent/content-service/internal/repositories"
	"github.com/japanesestudent/content-service/internal/services"
	"github.com/japanesestudent/content-service/internal/storage/provider"
	"github.com/japanesestudent/content-service/internal/tasks"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title JapaneseStudent Course Content API
// @version 1.0
// @description API for adding video content to courses

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token issued by the auth service, as "Bearer <token>"
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting JapaneseStudent Course Content Service",
		zap.String("blob_provider", cfg.Blob.Provider),
	)

	// Connect to database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db, database.MigrationsSource()); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize blob store
	store, err := provider.New(context.Background(), cfg.Blob)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize blob store", zap.Error(err))
	}

	// Orphan reports go to the worker queue when enabled, otherwise to the log
	var orphanReporter services.OrphanReporter = tasks.NewLogReporter(logger.Logger)
	if cfg.Orphans.QueueEnabled {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
		orphanReporter = tasks.NewQueueReporter(asynqClient, logger.Logger)
	}

	// Initialize JWT token validator (for auth middleware)
	tokenValidator := authService.NewTokenValidator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	courseRepo := repositories.NewCourseRepository(db, cfg.Content.MaxAppendAttempts)
	contentRepo := repositories.NewCourseContentRepository(db)

	// Initialize services
	contentService := services.NewContentService(
		courseRepo,
		contentRepo,
		store,
		services.NewUploadValidator(cfg.Content.MaxFileSize, cfg.Content.AllowedExtensions),
		orphanReporter,
		logger.Logger,
		services.ContentServiceConfig{
			UploadWorkers: cfg.Content.UploadWorkers,
			UploadTimeout: cfg.Content.UploadTimeout,
		},
	)

	// Initialize handlers
	authMw := authMiddleware.AuthMiddleware(tokenValidator)
	contentHandler := handlers.NewCourseContentHandler(contentService, logger.Logger, authMw)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middlewares.MetricsMiddleware)
	r.Use(httprate.LimitByIP(100, time.Minute))

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("%s/swagger/doc.json", cfg.Server.BaseURL)),
	))

	// Files of the local provider are served by the service itself
	if mediaStore, ok := store.(interface{ Handler() http.Handler }); ok {
		r.Handle("/media/*", mediaStore.Handler())
	}

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewares.RequestSizeLimitMiddleware(cfg.Content.MaxRequestSize))
		contentHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
		// uploads of whole batches can take minutes
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
