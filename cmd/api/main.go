package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"cityevents/config"
	"cityevents/internal/adapters/auth"
	"cityevents/internal/adapters/email"
	"cityevents/internal/adapters/stats"
	delivery "cityevents/internal/delivery/http"
	"cityevents/internal/delivery/http/controllers"
	"cityevents/internal/delivery/http/middleware"
	"cityevents/internal/repository/postgres"
	"cityevents/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title City Events API
// @version 1.0
// @description Event listing and participation platform.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	tx := postgres.NewTransactor(db)

	// Adapters
	statsClient := stats.NewHTTPClient(cfg.StatsURL, cfg.StatsTimeout)
	mailer, err := email.NewMailer(cfg.Mailer)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	hasher := auth.NewBcryptHasher(12)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())
	eventSvc := services.NewEventService(eventRepo, userRepo, categoryRepo, statsClient, cfg.AppName, logger, serviceTimeout)
	requestSvc := services.NewRequestService(requestRepo, eventRepo, userRepo, tx, emailSvc, logger, serviceTimeout)
	categorySvc := services.NewCategoryService(categoryRepo, eventRepo, serviceTimeout)
	userSvc := services.NewUserService(userRepo, serviceTimeout)

	router := delivery.NewRouter(delivery.Controllers{
		Events:     controllers.NewEventController(logger, eventSvc),
		Requests:   controllers.NewRequestController(logger, requestSvc),
		Categories: controllers.NewCategoryController(logger, categorySvc),
		Users:      controllers.NewUserController(logger, userSvc),
		Auth: controllers.NewAuthController(logger, controllers.AdminCredentials{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			PasswordSalt: cfg.AdminPasswordSalt,
		}, hasher, issuer),
	}, verifier, logger)

	var handler http.Handler = router
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		handler = middleware.CORS(strings.Split(origins, ","), handler)
	}
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
