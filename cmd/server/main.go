package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/api"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/cache"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/config"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository/mongo"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/service"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title Fitness Coach Portal API
// @version 1.0
// @description API for coaches managing exercise libraries, workout templates, nutrition programs, scheduling and client agreements.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting Coach Portal Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("Could not load config", zap.Error(err))
	}
	logger.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established.")

	// --- Ensure Indexes ---
	logger.Info("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureTemplateIndexes(ctx, appDB.Collection("workout_templates"))
		mongo.EnsureTemplateItemIndexes(ctx, appDB.Collection("template_items"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("nutrition_programs"))
		mongo.EnsureMealIndexes(ctx, appDB.Collection("meals"))
		mongo.EnsureMealItemIndexes(ctx, appDB.Collection("meal_items"))
		mongo.EnsureFoodIndexes(ctx, appDB.Collection("foods"))
		mongo.EnsureSlotIndexes(ctx, appDB.Collection("schedule_slots"))
		mongo.EnsureBookingIndexes(ctx, appDB.Collection("bookings"))
		mongo.EnsureAgreementIndexes(ctx, appDB.Collection("agreements"))
		mongo.EnsureSignatureIndexes(ctx, appDB.Collection("agreement_signatures"))
		mongo.EnsureWorkoutLogIndexes(ctx, appDB.Collection("workout_logs"))
		logger.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	logger.Info("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Cache Invalidator ---
	var invalidator cache.Invalidator = cache.NoopInvalidator{}
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		invalidator = cache.NewRedisInvalidator(redisClient, cfg.Redis.KeyPrefix, logger)
		logger.Info("Redis cache invalidation enabled.", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Info("Redis not configured, cache invalidation disabled.")
	}

	// --- Initialize Repositories ---
	logger.Info("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	templateItemRepo := mongo.NewMongoTemplateItemRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	mealRepo := mongo.NewMongoMealRepository(appDB)
	mealItemRepo := mongo.NewMongoMealItemRepository(appDB)
	foodRepo := mongo.NewMongoFoodRepository(appDB)
	slotRepo := mongo.NewMongoSlotRepository(appDB)
	bookingRepo := mongo.NewMongoBookingRepository(appDB)
	agreementRepo := mongo.NewMongoAgreementRepository(appDB)
	signatureRepo := mongo.NewMongoSignatureRepository(appDB)
	workoutLogRepo := mongo.NewMongoWorkoutLogRepository(appDB)

	// --- Initialize Services ---
	logger.Info("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	coachService := service.NewCoachService(userRepo)
	clientService := service.NewClientService(workoutLogRepo, userRepo, templateRepo, exerciseRepo)
	exerciseService := service.NewExerciseService(exerciseRepo)
	templateService := service.NewTemplateService(templateRepo, templateItemRepo, exerciseRepo, invalidator)
	nutritionService := service.NewNutritionService(programRepo, mealRepo, mealItemRepo, foodRepo, invalidator)
	foodService := service.NewFoodService(foodRepo)
	scheduleService := service.NewScheduleService(slotRepo, bookingRepo)
	agreementService := service.NewAgreementService(agreementRepo, signatureRepo, userRepo, fileStorage)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	logger.Info("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, api.Services{
		Auth:      authService,
		Coach:     coachService,
		Client:    clientService,
		Exercise:  exerciseService,
		Template:  templateService,
		Nutrition: nutritionService,
		Food:      foodService,
		Schedule:  scheduleService,
		Agreement: agreementService,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Server starting", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context gives in-flight requests 5 seconds to finish
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting.")
}
