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
	"github.com/mauv0809/matchdesk/internal/config"
	"github.com/mauv0809/matchdesk/internal/controller"
	"github.com/mauv0809/matchdesk/internal/database"
	server "github.com/mauv0809/matchdesk/internal/http"
	"github.com/mauv0809/matchdesk/internal/metrics"
	"github.com/mauv0809/matchdesk/internal/notifier"
	"github.com/mauv0809/matchdesk/internal/notifier/slack"
	"github.com/mauv0809/matchdesk/internal/pubsub"
	"github.com/mauv0809/matchdesk/internal/scheduler"
	"github.com/mauv0809/matchdesk/internal/store"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := pubsub.Open(ctx, cfg.PubSubOptions())
	if err != nil {
		log.Fatalf("Failed to open replication bus: %s", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Error("Failed to close replication bus", "error", err)
		}
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	counters := metrics.New(db)

	var resultNotifier notifier.Notifier = notifier.Noop{}
	if cfg.Slack.Enabled() {
		resultNotifier = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Info("Slack not configured, match results will not be posted")
	}

	realClock := clockwork.NewRealClock()
	ctrl := controller.New(controller.Options{
		ObserverID: cfg.ObserverID,
		Rules:      cfg.Rules,
		Store:      store.NewMatchStore(store.New(db), cfg.Rules),
		Bus:        bus,
		Scheduler:  scheduler.New(realClock, cfg.TickInterval),
		Clock:      realClock,
		Metrics:    metricsSvc,
		Counters:   counters,
		Notifier:   resultNotifier,
	})
	if err := ctrl.Load(ctx); err != nil {
		log.Fatalf("Failed to load match state: %s", err)
	}
	defer ctrl.Close()

	s := server.NewServer(ctrl, metricsSvc, metricsHandler, counters, cfg)
	go s.Hub.Run(ctx)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds(), "observer", cfg.ObserverID)

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

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	// Websocket clients are closed before the controller stops publishing.
	cancel()
	log.Info("Server process shutting down")
}
