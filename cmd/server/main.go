package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/api"
	"github.com/du-phan/resilio-app-sub001/internal/config"
	"github.com/du-phan/resilio-app-sub001/internal/engine/adapt"
	"github.com/du-phan/resilio-app-sub001/internal/engine/metrics"
	"github.com/du-phan/resilio-app-sub001/internal/repository/mongo"
	"github.com/du-phan/resilio-app-sub001/internal/service"
	"github.com/du-phan/resilio-app-sub001/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Resilio Training API
// @version 1.0
// @description API for activity ingest, fitness/fatigue metrics, adaptive training plans and suggestions.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Resilio Training Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureActivityIndexes(ctx, appDB.Collection("activities"))
		mongo.EnsureDailyMetricsIndexes(ctx, appDB.Collection("daily_metrics"))
		mongo.EnsureTrainingPlanIndexes(ctx, appDB.Collection("training_plans"))
		mongo.EnsureSuggestionIndexes(ctx, appDB.Collection("suggestions"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	activityRepo := mongo.NewMongoActivityRepository(appDB)
	metricsRepo := mongo.NewMongoDailyMetricsRepository(appDB)
	planRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	suggestionRepo := mongo.NewMongoSuggestionRepository(appDB)

	// --- Initialize Engines ---
	metricsEngine := metrics.NewEngine(metrics.Params{
		CTLDays:              cfg.Engine.CTLDays,
		ATLDays:              cfg.Engine.ATLDays,
		ACWRAcuteDays:        cfg.Engine.ACWRAcuteDays,
		ACWRChronicDays:      cfg.Engine.ACWRChronicDays,
		ACWRMinHistoryDays:   cfg.Engine.ACWRMinHistoryDays,
		ReadinessTSBWeight:   cfg.Engine.ReadinessTSBWeight,
		ReadinessTrendWeight: cfg.Engine.ReadinessTrendWeight,
	})
	adaptParams := adapt.DefaultParams()
	adaptParams.ReadinessLow = cfg.Engine.ReadinessLowThreshold
	adaptParams.ReadinessVeryLow = cfg.Engine.ReadinessVeryLowThreshold
	adaptParams.LowerBodyLimitAU = cfg.Engine.LowerBodyDailyLimitAU
	adaptEngine := adapt.NewEngine(adaptParams)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	profileService := service.NewProfileService(userRepo)
	activityService := service.NewActivityService(activityRepo, fileStorage)
	syncService := service.NewSyncService(userRepo, activityRepo, metricsRepo, planRepo, suggestionRepo, metricsEngine, adaptEngine)
	planService := service.NewPlanService(userRepo, activityRepo, metricsRepo, planRepo, suggestionRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, profileService, activityService, syncService, planService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
