package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/enrollment"
	server "github.com/mauv0809/courtside/internal/http"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/notifier/slack"
	"github.com/mauv0809/courtside/internal/playtomic"
	"github.com/mauv0809/courtside/internal/publisher"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scheduling"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, keeping default", "level", cfg.LogLevel)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	ctx := context.Background()
	clock := clockwork.NewRealClock()
	loc := cfg.Location()

	events := pubsub.NewNop()
	if cfg.ProjectID != "" {
		events, err = pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
	} else {
		log.Warn("GCP_PROJECT not set, domain events are disabled")
	}
	defer events.Close()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	notif := notifier.NewNop()
	if cfg.SlackEnabled() {
		notif = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, loc, metricsSvc)
	} else {
		log.Warn("Slack is not configured, notifications are only logged")
	}

	var bookings playtomic.PlaytomicClient
	if cfg.Playtomic.TenantID != "" {
		bookings = playtomic.NewClient(cfg.Playtomic.TenantID)
	}

	clubStore := club.New(db)
	registry := enrollment.New(db, clock, events, metricsSvc)
	engine := scheduling.New(db, clock, loc, bookings, events, metricsSvc)
	pub := publisher.New(clubStore, engine, notif, events, clock)

	s := server.NewServer(db, registry, engine, pub, metricsHandler, clock, events)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "timezone", loc.String())
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
