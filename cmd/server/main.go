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

	"catalog-service/config"
	"catalog-service/internal/api"
	"catalog-service/internal/blob"
	"catalog-service/internal/broker"
	"catalog-service/internal/redisclient"
	"catalog-service/internal/service"
	"catalog-service/internal/store"
	"catalog-service/internal/util"
	"catalog-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting catalog service")

	tp, err := util.InitTracer("catalog-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	var uploader blob.Uploader
	if cfg.Storage.S3Bucket != "" {
		s3Uploader, err := blob.NewS3Uploader(cfg.Storage.S3Bucket, cfg.Storage.S3Region, cfg.Storage.S3Endpoint)
		if err != nil {
			log.Fatalf("Failed to initialize blob storage: %v", err)
		}
		uploader = s3Uploader
		log.Println("Blob storage initialized")
	}

	cacheTTL := time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second
	catalogCache := service.NewCatalogCache(db, redisClient, cacheTTL)
	catalogService := service.NewCatalogService(db, catalogCache, eventPublisher, cfg.Catalog.SearchLimit)
	moderationService := service.NewModerationService(db, redisClient, catalogCache, eventPublisher)

	ctx := context.Background()
	if err := catalogCache.SyncActiveCatalog(ctx); err != nil {
		log.Printf("Failed to warm catalog cache: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	moderationConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicModeration, cfg.Kafka.ConsumerGroup)
	moderationWorker := worker.NewModerationWorker(moderationConsumer, moderationService)
	go func() {
		if err := moderationWorker.Start(workerCtx); err != nil {
			log.Printf("Moderation worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(catalogService, moderationService, uploader, cfg.Storage.MaxImageBytes)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	moderationWorker.Stop()

	log.Println("Server exited")
}
