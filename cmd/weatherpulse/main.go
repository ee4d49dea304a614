package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/swelljoe/weatherpulse/internal/auth"
	"github.com/swelljoe/weatherpulse/internal/cache"
	"github.com/swelljoe/weatherpulse/internal/config"
	"github.com/swelljoe/weatherpulse/internal/db"
	"github.com/swelljoe/weatherpulse/internal/handlers"
	"github.com/swelljoe/weatherpulse/internal/logging"
	"github.com/swelljoe/weatherpulse/internal/metrics"
	"github.com/swelljoe/weatherpulse/internal/weather"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer database.Close()
	log.Info("Database connected successfully")

	store, closeStore, err := openStore(cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client := weather.NewClient(cfg.UserAgent, cfg.UpstreamRPS, cfg.UpstreamBurst)
	client.Metrics = m
	weatherSvc := weather.NewService(client, store, log.Named("weather"), m)

	authSvc := auth.NewService(database, store, auth.Config{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, log.Named("auth"))

	h := handlers.New(database, weatherSvc, authSvc, handlers.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log.Named("http"),
		Metrics:        m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", "http://localhost"+srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore uses Redis when a URL is configured and an in-process cache
// otherwise
func openStore(redisURL string, log hclog.Logger) (cache.Store, func(), error) {
	if redisURL == "" {
		mem := cache.NewMemory(cache.WithLogger(log.Named("cache")))
		mem.StartJanitor(janitorInterval)
		log.Info("Using in-memory cache")
		return mem, mem.Stop, nil
	}

	pool, err := cache.NewPool(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure redis: %w", err)
	}
	store := cache.NewRedis(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	log.Info("Using redis cache")
	return store, func() { pool.Close() }, nil
}
