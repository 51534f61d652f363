package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coyotecrew/camporee-collator/config"
	"github.com/coyotecrew/camporee-collator/db"
	"github.com/coyotecrew/camporee-collator/handlers"
	"github.com/coyotecrew/camporee-collator/live"
	"github.com/coyotecrew/camporee-collator/repositories"
	"github.com/coyotecrew/camporee-collator/routes"
	"github.com/coyotecrew/camporee-collator/services"
	"github.com/coyotecrew/camporee-collator/storage"
	"github.com/coyotecrew/camporee-collator/utils"

	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 10*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbConn.Close()

	ctx := context.Background()
	if err := repositories.EnsureSchema(ctx, dbConn); err != nil {
		logger.Error("failed to ensure database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready")

	// Bundle exports need object storage; everything else runs without it.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage initialized")
	} else {
		logger.Warn("object storage not configured, bundle export disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	scoreRepo := repositories.NewSQLScoreRepository(dbConn)
	entityRepo := repositories.NewSQLEntityRepository(dbConn)

	ids := utils.UUIDGenerator{}
	catalogService, err := services.NewCatalogService(cfg.GamesDir)
	if err != nil {
		logger.Error("failed to load game catalog", slog.Any("error", err), slog.String("dir", cfg.GamesDir))
		os.Exit(1)
	}
	scoreService := services.NewScoreService(scoreRepo, hub, logger)
	entityService := services.NewEntityService(entityRepo, ids, utils.SystemClock)
	adminService := services.NewAdminService(scoreRepo, entityRepo, cfg.AdminPassphraseHash, cfg.JWTSecretKey, logger)
	exportService := services.NewExportService(cfg.GamesDir, uploader, utils.SystemClock, logger)
	logger.Info("services initialized")

	h := routes.Handlers{
		Score:     handlers.NewScoreHandler(scoreService),
		Entity:    handlers.NewEntityHandler(entityService),
		Catalog:   handlers.NewCatalogHandler(catalogService),
		Admin:     handlers.NewAdminHandler(adminService, exportService),
		WebSocket: handlers.NewWebSocketHandler(hub, logger),
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, h, cfg.JWTSecretKey, cfg.CORSAllowedOrigins)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
