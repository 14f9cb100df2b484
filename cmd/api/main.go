package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/cache"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/config"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/events"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/handlers"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/repository"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/service"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/logger"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("Starting Parts Inventory Service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	appLogger.Info("SQLite Configuration",
		zap.String("path", cfg.SQLitePath),
		zap.String("note", "WAL journal, foreign keys enforced"),
	)

	// Initialize repository (single writer over the SQLite file)
	repo, err := repository.NewSQLiteRepository(cfg.SQLitePath, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Initialize event publisher (optional Kafka, in-memory fallback)
	var eventBus events.EventPublisher
	if cfg.UseKafka {
		kafkaBus, err := events.NewKafkaEventPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Failed to initialize Kafka publisher, using in-memory fallback", zap.Error(err))
			eventBus = events.NewEventPublisher(appLogger)
		} else {
			defer kafkaBus.Close()
			eventBus = kafkaBus
			appLogger.Info("Kafka publisher initialized",
				zap.Strings("brokers", cfg.KafkaBrokers),
				zap.String("topic", cfg.KafkaTopic),
			)
		}
	} else {
		appLogger.Info("Kafka is disabled (USE_KAFKA=false)")
		eventBus = events.NewEventPublisher(appLogger)
	}

	// Initialize the resolution engine
	svc := service.New(repo, eventBus, appLogger)

	// Initialize cache (optional)
	var cacheClient cache.Cache
	if cfg.UseCache {
		cacheClient = cache.New(cfg, appLogger)
	} else {
		appLogger.Info("Cache is disabled (USE_CACHE=false)")
	}
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router and middleware chain
	router := gin.New()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware(appLogger))

	requestIDStore := middleware.NewInMemoryRequestIDStore()
	router.Use(middleware.IdempotencyMiddleware(requestIDStore, appLogger, 5*time.Minute))
	router.Use(middleware.ErrorHandler(appLogger))
	router.Use(middleware.StoreResponseMiddleware(requestIDStore, appLogger, 5*time.Minute))

	// Initialize handlers
	locationHandler := handlers.NewLocationHandler(appLogger, svc, cacheClient, cacheTTL)
	partHandler := handlers.NewPartHandler(appLogger, svc, cacheClient, cacheTTL)
	boxHandler := handlers.NewBoxHandler(appLogger, svc, cacheClient)
	inventoryHandler := handlers.NewInventoryHandler(appLogger, svc, cacheClient, cacheTTL)

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		locations := v1.Group("/locations")
		{
			locations.POST("", locationHandler.AddLocation)
			locations.GET("", locationHandler.ListLocations)
			locations.GET("/search", locationHandler.SearchLocation)
			locations.GET("/:id", locationHandler.GetLocation)
			locations.DELETE("/:id", locationHandler.DeleteLocation)
		}

		parts := v1.Group("/parts")
		{
			parts.POST("", partHandler.AddPart)
			parts.GET("", partHandler.ListParts)
			parts.GET("/search", partHandler.SearchPart)
			parts.GET("/:id", partHandler.GetPart)
			parts.DELETE("/:id", partHandler.DeletePart)
		}

		boxes := v1.Group("/boxes")
		{
			boxes.POST("", boxHandler.AddBox)
			boxes.GET("", boxHandler.ListBoxes)
			boxes.GET("/search", boxHandler.SearchBox)
			boxes.GET("/:id", boxHandler.GetBox)
			boxes.DELETE("/:id", boxHandler.DeleteBox)
		}

		inventory := v1.Group("/inventory")
		{
			inventory.POST("", inventoryHandler.AddInventory)
			inventory.GET("/search", inventoryHandler.SearchInventory)
			inventory.GET("/by_box/:code", inventoryHandler.ListByBox)
			inventory.GET("/:id", inventoryHandler.GetInventoryItem)
			inventory.PUT("/:id", inventoryHandler.UpdateInventory)
			inventory.DELETE("/:id", inventoryHandler.DeleteInventory)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", ":"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "parts-inventory",
	})
}
