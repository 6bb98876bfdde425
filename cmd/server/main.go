package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fittrack/backend/config"
	httpDelivery "github.com/fittrack/backend/internal/delivery/http"
	"github.com/fittrack/backend/internal/domain"
	"github.com/fittrack/backend/internal/infrastructure/cache"
	"github.com/fittrack/backend/internal/infrastructure/objstore"
	"github.com/fittrack/backend/internal/infrastructure/planner"
	"github.com/fittrack/backend/internal/infrastructure/recognition"
	"github.com/fittrack/backend/internal/infrastructure/storage"
	"github.com/fittrack/backend/internal/resilience"
	"github.com/fittrack/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting FitTrack Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize infrastructure dependencies
	store, err := storage.NewSQLiteStorage(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()
	log.Printf("Storage: %s", cfg.Storage.SQLitePath)

	var appCache domain.CacheRepository
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		appCache = redisCache
	} else {
		appCache = cache.NewMemoryCache()
	}

	images, err := objstore.NewDiskStore(cfg.Storage.ImageDir, cfg.Storage.CDNBaseURL)
	if err != nil {
		log.Fatalf("Failed to create image store: %v", err)
	}

	breakerConfig := resilience.BreakerConfig{
		FailureRatio: cfg.Recognition.FailureRatio,
		WindowSize:   cfg.Recognition.WindowSize,
		MinRequests:  cfg.Recognition.MinRequests,
		CoolDown:     cfg.Recognition.CoolDown,
	}

	recognizer := recognition.NewClient(recognition.ClientConfig{
		BaseURL:     cfg.Recognition.BaseURL,
		APIKey:      cfg.Recognition.APIKey,
		Timeout:     cfg.Recognition.Timeout,
		MaxAttempts: cfg.Recognition.MaxAttempts,
		BaseDelay:   cfg.Recognition.BaseDelay,
		Breaker:     breakerConfig,
	})
	log.Printf("Recognition API: %s (retries=%d, cooldown=%s)",
		cfg.Recognition.BaseURL, cfg.Recognition.MaxAttempts, cfg.Recognition.CoolDown)

	plannerClient := planner.NewClient(planner.ClientConfig{
		BaseURL:     cfg.Planner.BaseURL,
		APIKey:      cfg.Planner.APIKey,
		Timeout:     cfg.Planner.Timeout,
		MaxAttempts: cfg.Planner.MaxAttempts,
		BaseDelay:   cfg.Planner.BaseDelay,
		Breaker:     breakerConfig,
	})

	// Initialize usecase layer
	mealService := usecase.NewMealService(recognizer, store, images, usecase.MealServiceConfig{
		MaxImageSizeKB: cfg.Imaging.MaxImageSizeKB,
	})
	planService := usecase.NewPlanService(plannerClient, store, store, appCache, usecase.PlanServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})
	userService := usecase.NewUserService(store)

	// Create HTTP handler with dependencies
	tokens := httpDelivery.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := httpDelivery.NewHandler(mealService, planService, userService, tokens)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, tokens)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
