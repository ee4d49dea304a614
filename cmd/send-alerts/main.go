package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swelljoe/weatherpulse/internal/config"
	"github.com/swelljoe/weatherpulse/internal/db"
	"github.com/swelljoe/weatherpulse/internal/logging"
	"github.com/swelljoe/weatherpulse/internal/notify"
	"github.com/swelljoe/weatherpulse/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	interval := flag.Duration("interval", 0, "repeat the dispatch at this interval until interrupted (0 runs once)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.MailEnabled() {
		fmt.Println("Missing SENDGRID_API_KEY or ALERTS_FROM_EMAIL. Skipping.")
		return nil
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON}).Named("notify")

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer database.Close()

	client := weather.NewClient(cfg.UserAgent, cfg.UpstreamRPS, cfg.UpstreamBurst)

	dispatcher := notify.NewDispatcher(database, client,
		notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.AlertsFromEmail),
		notify.Options{
			MinInterval: cfg.AlertsMinInterval,
			Logger:      log,
		})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatch := func() error {
		summary, err := dispatcher.Run(ctx)
		if err != nil {
			return fmt.Errorf("dispatch failed: %w", err)
		}
		log.Info("Dispatch finished",
			"checked", summary.Checked,
			"sent", summary.Sent,
			"skipped", summary.Skipped,
			"failed", summary.Failed)
		return nil
	}

	if *interval <= 0 {
		return dispatch()
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		if err := dispatch(); err != nil {
			log.Error("Dispatch run failed", "error", err)
		}
		select {
		case <-ctx.Done():
			log.Info("Stopping")
			return nil
		case <-ticker.C:
		}
	}
}
