package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rmsalud/salud-api/internal/auth"
	"github.com/rmsalud/salud-api/internal/config"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/handler"
	"github.com/rmsalud/salud-api/internal/logger"
	"github.com/rmsalud/salud-api/internal/provider/ticketmaster"
	"github.com/rmsalud/salud-api/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Starting RM Salud API")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Database connection established and migrations completed")

	userService := services.NewUserService(db)
	activityService := services.NewActivityService(db)
	mealService := services.NewMealService(db)
	goalService := services.NewGoalService(db)
	progressService := services.NewProgressService(db, goalService)
	eventService := services.NewEventService(db, services.LogNotifier{})
	recommendationService := services.NewRecommendationService(goalService)
	tmClient := &ticketmaster.Client{
		APIKey:  cfg.Ticketmaster.APIKey,
		BaseURL: cfg.Ticketmaster.BaseURL,
	}
	mapService := services.NewMapService(tmClient, eventService, recommendationService, cfg.Events)
	logger.Info("Services initialized successfully")

	tokens := auth.NewManager(cfg.Auth)
	h := handler.New(handler.Services{
		Users:      userService,
		Activities: activityService,
		Meals:      mealService,
		Goals:      goalService,
		Progress:   progressService,
		Events:     eventService,
		Recs:       recommendationService,
		Maps:       mapService,
	}, tokens, cfg.Events)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
