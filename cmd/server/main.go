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

	"github.com/CSCORE-2025/cscore-web/internal/auth"
	"github.com/CSCORE-2025/cscore-web/internal/cache"
	"github.com/CSCORE-2025/cscore-web/internal/config"
	"github.com/CSCORE-2025/cscore-web/internal/gateway"
	"github.com/CSCORE-2025/cscore-web/internal/handlers"
	"github.com/CSCORE-2025/cscore-web/internal/services"
	"github.com/CSCORE-2025/cscore-web/internal/session"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
	"github.com/CSCORE-2025/cscore-web/internal/validator"
	"github.com/CSCORE-2025/cscore-web/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	logger.Info("starting cscore-web",
		"environment", cfg.Environment,
		"backend_url", cfg.BackendURL,
		"port", cfg.Port)

	// Redis is optional: without it display metadata is simply fetched
	// from the backend on every read.
	cacheService := cache.NewNoopCache()
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
		logger.Info("redis cache enabled")
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	client := gateway.NewClient(cfg.BackendURL, cfg.GatewayTimeout, slogger)
	assignmentGateway := gateway.NewAssignmentGateway(client)
	courseGateway := gateway.NewCourseGateway(client)

	sessions := session.NewManager(time.Second, slogger)

	attemptService := services.NewAttemptService(
		assignmentGateway,
		courseGateway,
		sessions,
		publisher,
		slogger,
		validator.New(),
		cfg.SubmitTimeout,
	)
	courseService := services.NewCourseService(courseGateway, cacheService, slogger)
	assignmentService := services.NewAssignmentService(assignmentGateway, slogger)
	exportService := services.NewExportService(assignmentService, slogger)

	verifier := auth.NewCasdoorVerifier(auth.CasdoorConfig{
		Endpoint:     cfg.Casdoor.Endpoint,
		ClientID:     cfg.Casdoor.ClientID,
		ClientSecret: cfg.Casdoor.ClientSecret,
		Certificate:  cfg.Casdoor.Certificate,
		Organization: cfg.Casdoor.Organization,
		Application:  cfg.Casdoor.Application,
	})

	router := handlers.SetupRouter(handlers.RouterConfig{
		Environment: cfg.Environment,
		Verifier:    verifier,
		Logger:      logger,
		Attempts:    attemptService,
		Courses:     courseService,
		Assignments: assignmentService,
		Exports:     exportService,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	// Live attempts are abandoned, the same as a page navigation away.
	sessions.Shutdown()

	logger.Info("server stopped")
}
