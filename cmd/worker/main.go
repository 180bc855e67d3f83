package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/japanesestudent/content-service/internal/config"
	"github.com/japanesestudent/content-service/internal/database"
	"github.com/japanesestudent/content-service/internal/logger"
	"github.com/japanesestudent/content-service/internal/repositories"
	"github.com/japanesestudent/content-service/internal/services"
	"github.com/japanesestudent/content-service/internal/storage/provider"
	"github.com/japanesestudent/content-service/internal/tasks"
	"go.uber.org/zap"
)

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

	logger.Logger.Info("Starting Course Content Worker")

	// Connect to database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	store, err := provider.New(ctx, cfg.Blob)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize blob store", zap.Error(err))
	}

	contentRepo := repositories.NewCourseContentRepository(db)
	orphanService := services.NewOrphanService(contentRepo, logger.Logger, cfg.Orphans.SweepMinAge, store)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				tasks.QueueOrphans: 1,
			},
		},
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	tasks.NewOrphanHandler(orphanService, logger.Logger).Register(mux)

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	// Start orphan sweep
	sweeper, err := NewSweeper(rdb, orphanService, logger.Logger, cfg.Orphans.SweepSchedule)
	if err != nil {
		logger.Logger.Fatal("Failed to create sweeper", zap.Error(err))
	}
	sweeper.Start()

	logger.Logger.Info("Worker started", zap.String("sweep_schedule", cfg.Orphans.SweepSchedule))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	sweeper.Stop()
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}
