package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/workout-tracker/internal/api" // Import API package
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/events"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Workout Tracker API
// @version 1.0
// @description API for coaches and athletes: exercises, workouts and assignments.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
	zlog.Info("Server exiting.")
}

func run(cfg config.Config, zlog *zap.Logger) error {
	ctx := context.Background()
	zlog.Info("Starting Workout Tracker Server...")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		return err
	}
	defer func() {
		zlog.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			zlog.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	zlog.Info("Database connection established.", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	indexCtx, cancelIndex := context.WithTimeout(ctx, 1*time.Minute)
	err = mongo.EnsureIndexes(indexCtx, appDB)
	cancelIndex()
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	// --- Initialize Storage ---
	// Left as a nil interface when disabled; the media operations report it.
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, zlog)
		if err != nil {
			return fmt.Errorf("init s3 storage: %w", err)
		}
		zlog.Info("File storage ready.", zap.String("bucket", cfg.S3.BucketName))
	} else {
		zlog.Warn("No S3 bucket configured, exercise media is disabled")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	lineRepo := mongo.NewMongoWorkoutExerciseRepository(appDB)

	// --- Initialize Services ---
	bus := events.NewBus(zlog)
	events.RegisterLoggers(bus, zlog)
	v := validation.New()

	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	svc := api.Services{
		Auth:      service.NewAuthService(userRepo, tokens, bus, v),
		Users:     service.NewUserService(userRepo, workoutRepo, bus, v),
		Exercises: service.NewExerciseService(exerciseRepo, fileStorage, v, zlog),
		Workouts:  service.NewWorkoutService(userRepo, exerciseRepo, workoutRepo, lineRepo, bus, v),
		Tokens:    tokens,
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(cfg.Server, svc, zlog)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("Server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		zlog.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
