package main

import (
	"context"
	"log"
	"time"

	"stitchlink/config"
	"stitchlink/internal/handler"
	"stitchlink/internal/reconcile"
	redisx "stitchlink/internal/redis"
	"stitchlink/internal/repository"
	"stitchlink/internal/server"
	"stitchlink/internal/services"
	"stitchlink/internal/storage"
	"stitchlink/pkg/database"
	"stitchlink/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; without it the tailor directory reads straight
	// from the table.
	var cache *redisx.SnapshotCache
	redisClient := redisx.NewClient(redisx.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		l.Warnf("Redis unavailable, tailor snapshot cache disabled: %v", err)
	} else {
		cache = redisx.NewSnapshotCache(redisClient, redisx.DefaultCacheConfig())
	}
	pingCancel()

	// Same story for object storage: no bucket configured means the
	// attachment upload endpoint reports unavailable.
	var store *storage.Client
	if cfg.S3Bucket != "" {
		store, err = storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicURL,
		})
		if err != nil {
			l.Warnf("Object storage unavailable, attachments disabled: %v", err)
			store = nil
		}
	}

	orderRepo := repository.NewOrderRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	tailorRepo := repository.NewTailorRepository(db)

	directory := services.NewTailorDirectory(tailorRepo, cache)

	reconciler := reconcile.NewReconciler(orderRepo, reviewRepo, conversationRepo, l)
	sweeper := reconcile.NewSweeper(
		conversationRepo,
		reconciler,
		l,
		cfg.ReconcileBatchSize,
		time.Duration(cfg.ReconcileIntervalSec)*time.Second,
	)
	reconcile.NewRunner(sweeper).Start(ctx)

	orderService := services.NewOrderService(orderRepo, directory, l)
	chatService := services.NewChatService(conversationRepo, messageRepo, orderRepo, directory, l)
	reviewService := services.NewReviewService(reviewRepo, orderRepo, reconciler, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Orders:  handler.NewOrderHandler(orderService),
		Chat:    handler.NewChatHandler(chatService, store),
		Reviews: handler.NewReviewHandler(reviewService),
	}, db)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
