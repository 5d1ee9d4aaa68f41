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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/routes"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/media"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/notifications"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/places"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/slugs"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/db"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/instance"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/metrics"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/migrate"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/outbox"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/redis"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage/backend"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	store, err := backend.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}

	placeMetrics := metrics.NewPlaceMetrics(prometheus.DefaultRegisterer)
	placeRepo := places.NewRepository(dbClient.DB())

	allocator, err := slugs.NewAllocator(placeRepo, cfg.Places.MaxSlugAttempts)
	if err != nil {
		logg.Error(ctx, "failed to create slug allocator", err)
		os.Exit(1)
	}
	relocator, err := media.NewRelocator(store, logg, placeMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create asset relocator", err)
		os.Exit(1)
	}
	notifier, err := notifications.NewNotifier(dbClient, outbox.NewService(outbox.NewRepository(dbClient.DB()), logg))
	if err != nil {
		logg.Error(ctx, "failed to create review notifier", err)
		os.Exit(1)
	}

	placeService, err := places.NewService(places.ServiceParams{
		Config:     cfg.Places,
		Logger:     logg,
		DB:         dbClient,
		Repository: placeRepo,
		Slugs:      allocator,
		Relocator:  relocator,
		Store:      store,
		Notifier:   notifier,
		Metrics:    placeMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create place service", err)
		os.Exit(1)
	}

	uploader, err := media.NewUploader(store, placeService, cfg.Media.MaxUploadBytes(), logg)
	if err != nil {
		logg.Error(ctx, "failed to create uploader", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"storage_driver": cfg.Storage.Driver,
		"instance":       instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, store, placeService, uploader),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
