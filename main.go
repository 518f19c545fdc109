package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/api"
	"github.com/taskhive/taskhive-be/internal/auth"
	"github.com/taskhive/taskhive-be/internal/config"
	"github.com/taskhive/taskhive-be/internal/database"
	"github.com/taskhive/taskhive-be/internal/logger"
	"github.com/taskhive/taskhive-be/internal/monitoring"
	"github.com/taskhive/taskhive-be/internal/services"
	"github.com/taskhive/taskhive-be/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)
	if cfg.JWTSecret == "dev-secret-change-in-production" {
		log.Warn().Msg("JWT_SECRET is unset, using the development default")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	if cfg.SeedDemoData {
		if err := database.Seed(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(db)
	taskService := services.NewTaskService(db)
	eventService := services.NewEventService(db, hub)

	// Set up and run the background due-date sweeper
	sweeper, err := monitoring.NewDueSweeper(taskService, eventService, cfg.DueSweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure due-date sweeper")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(hub, tokens, userService, taskService, eventService, cfg.AllowedOrigins)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
