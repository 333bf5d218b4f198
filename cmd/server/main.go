package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeshare-backend/internal/api"
	"codeshare-backend/internal/auth"
	"codeshare-backend/internal/blob"
	"codeshare-backend/internal/config"
	"codeshare-backend/internal/logging"
	"codeshare-backend/internal/repository"
	"codeshare-backend/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; in containers the variables come from the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	store, err := openStore(initCtx, &cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("store ready", "driver", cfg.StoreDriver)

	blobs, err := openBlobStore(initCtx, &cfg)
	if err != nil {
		logger.Error("failed to open blob store", "driver", cfg.BlobDriver, "err", err)
		os.Exit(1)
	}
	logger.Info("blob store ready", "driver", cfg.BlobDriver)

	tokenService, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		logger.Error("failed to init token service", "err", err)
		os.Exit(1)
	}

	userService := service.NewUserService(store, tokenService)
	fileService := service.NewFileService(store, blobs)

	handler := api.NewHandler(userService, fileService, tokenService, store, api.Options{
		CookieName:     cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		// uploads and downloads stream whole files
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		return
	}
	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return repository.NewInMemoryStore(), nil
	case "mongo":
		return repository.NewMongoStore(ctx, cfg.MongoURL, cfg.MongoDatabase)
	case "postgres":
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return repository.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "disk":
		return blob.NewDiskStore(cfg.UploadDir)
	case "s3":
		return blob.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucketName, cfg.AWSEndpointURL)
	case "minio":
		return blob.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}
