// Package main provides the API server entry point for the investment tracker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/invest-tracker/internal/api"
	"github.com/invest-tracker/internal/auth"
	"github.com/invest-tracker/internal/config"
	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/mail"
	"github.com/invest-tracker/internal/quotes"
	"github.com/invest-tracker/internal/service"
	"github.com/invest-tracker/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.NewLogger(logging.LevelError, logging.FormatText).WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Connect to Postgres
	logger.Info("Connecting to database...")
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	userRepo := storage.NewUserRepository(postgres)
	operationRepo := storage.NewOperationRepository(postgres)

	// Initialize collaborators
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.ResetTokenTTL)
	mailer := mail.NewSMTPMailer(&cfg.SMTP)
	quoteProvider := quotes.NewYahooProvider(&cfg.Quotes)

	// Initialize services
	logger.Info("Initializing services...")
	quoteService := quotes.NewService(quoteProvider, &cfg.Cache, logger)
	authService := service.NewAuthService(userRepo, tokens, mailer, cfg.SMTP.ResetURLBase, logger)
	operationService := service.NewOperationService(operationRepo, cfg.Operations.BlockShortSelling, logger)
	positionService := service.NewPositionService(operationRepo)
	portfolioService := service.NewPortfolioService(positionService, quoteService, logger)
	reportService := service.NewReportService(operationRepo)
	logger.Info("Services initialized")

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AuthRPS:         cfg.RateLimit.AuthRPS,
		AuthBurst:       cfg.RateLimit.AuthBurst,
	}

	server := api.NewServer(
		serverConfig,
		authService,
		operationService,
		portfolioService,
		quoteService,
		reportService,
		tokens,
		logger,
	)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("API server listening")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
