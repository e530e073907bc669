package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/config"
	"github.com/mauv0809/scorekeeper/internal/database"
	server "github.com/mauv0809/scorekeeper/internal/http"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/notifier/slack"
	"github.com/mauv0809/scorekeeper/internal/player"
	"github.com/mauv0809/scorekeeper/internal/processor"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/round"
	"github.com/mauv0809/scorekeeper/internal/session"
	"github.com/mauv0809/scorekeeper/internal/total"
	"github.com/mauv0809/scorekeeper/internal/undo"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dbTeardown, err := database.InitDB(cfg.DB.Driver, cfg.DB.Name, cfg.DB.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	broker := pubsub.NewBroker()
	defer broker.Close()

	services := server.Services{
		Sessions: session.New(db, broker, metricsSvc),
		Players:  player.New(db, broker, metricsSvc),
		Rounds:   round.New(db, broker, metricsSvc),
		Undo:     undo.New(db, broker, metricsSvc),
		Totals:   total.New(db),
	}

	if cfg.PubSub.Enabled() {
		gcp, err := pubsub.NewGCP(ctx, cfg.PubSub.ProjectID, cfg.PubSub.Topic)
		if err != nil {
			log.Fatalf("Failed to initialize Pub/Sub: %s", err)
		}
		defer gcp.Close()
		msgs, cancel := broker.Subscribe(256)
		defer cancel()
		go pubsub.Forward(ctx, msgs, gcp)
		log.Info("Forwarding changes to Pub/Sub", "project", cfg.PubSub.ProjectID, "topic", cfg.PubSub.Topic)
	}

	var notif notifier.Notifier
	if cfg.Slack.Enabled() {
		slackNotifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
		notif = slackNotifier
		proc := processor.New(services.Sessions, services.Totals, slackNotifier, broker, cfg.Slack.DryRun)
		msgs, cancel := broker.Subscribe(64)
		defer cancel()
		go proc.Run(ctx, msgs)
	} else {
		log.Info("Slack not configured, standings notifications disabled")
	}

	s := server.NewServer(services, metricsHandler, cfg, notif, broker)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Closing the broker ends open change streams, which the server does
		// not track once they are hijacked.
		broker.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
