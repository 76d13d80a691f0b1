package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleetops/internal/cache"
	"fleetops/internal/catalog"
	"fleetops/internal/config"
	"fleetops/internal/controllers"
	"fleetops/internal/feed"
	"fleetops/internal/logger"
	"fleetops/internal/maintenance"
	"fleetops/internal/middleware"
	"fleetops/internal/operations"
	"fleetops/internal/registry"
	"fleetops/internal/rental"
	"fleetops/internal/reports"
	"fleetops/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	// Initialize structured logging to file
	accessLog := logger.Setup(cfg.LogFile, cfg.LogLevel)

	// Connect to the database
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	logrus.Info("Database connected and migrated")

	store := cacheStore(cfg)
	c := cache.New(store, cfg.CacheTTL, cfg.CacheTimeout)

	registryClient := registry.NewClient(registry.Config{
		DriverURL:    cfg.DriverRegistryURL,
		ConductorURL: cfg.ConductorRegistryURL,
		BusURL:       cfg.BusRegistryURL,
		Timeout:      cfg.RegistryTimeout,
	}, &http.Client{Timeout: cfg.RegistryTimeout}, c)
	directory := registry.NewDirectory(registryClient)

	hub := feed.NewHub(256)
	defer hub.Close()

	h := &controllers.Handler{
		DB:          db,
		Cache:       c,
		Verifier:    middleware.NewVerifier(cfg.JWTSecret, cfg.TokenTTL),
		Hub:         hub,
		Operations:  operations.NewService(db, c, hub, directory),
		Maintenance: maintenance.NewService(db, c),
		Rentals: rental.NewService(db, c, hub, rental.Config{
			Vicinity: rental.Vicinity{
				RadiusKM:   cfg.RentalVicinityKM,
				WaterBoxes: cfg.WaterBoxes,
			},
			ImageBaseURL: cfg.ImageBaseURL,
		}),
		Catalog: catalog.NewService(db, c),
		Reports: reports.NewService(db, c, directory),
	}

	gin.SetMode(getGinMode())
	r := routes.SetupRouter(h, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   accessLog,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logrus.WithError(err).Warn("cache close failed")
		}
	}
	logrus.Info("Server stopped")
}

// cacheStore picks Redis when REDIS_URL is set and falls back to the
// in-process store otherwise, or when Redis cannot be configured.
func cacheStore(cfg config.Config) cache.Store {
	if cfg.RedisURL != "" {
		rs, err := cache.NewRedisStore(cfg.RedisURL, "fleetops")
		if err == nil {
			logrus.Info("Cache: using Redis")
			return rs
		}
		logrus.WithError(err).Warn("Cache: invalid REDIS_URL, using in-process cache")
	}
	return cache.NewMemoryStore(10 * time.Minute)
}

func getGinMode() string {
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		return mode
	}
	return gin.ReleaseMode
}
