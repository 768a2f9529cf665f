package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/config"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/console"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/health"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/metrics"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/session"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("backend_url", cfg.BackendURL).
		Str("listen_addr", cfg.ListenAddr).
		Dur("poll_interval", cfg.PollInterval).
		Bool("slack_enabled", cfg.SlackEnabled()).
		Msg("starting retrivis console daemon")

	// Context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Metrics registry
	collector := metrics.New()

	// Backend API client
	client := backend.NewClient(cfg.BackendURL, cfg.TokenSource(), logger)
	client.SetMetrics(collector)

	// Notifications: always log; add Slack when configured
	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.SlackEnabled() {
		notifier = notify.Multi{
			notifier,
			notify.NewSlackNotifier(cfg.SlackToken, cfg.SlackChannel, logger),
		}
		logger.Info().Str("channel", cfg.SlackChannel).Msg("slack notifications enabled")
	}

	// Session layer
	sessions := session.NewManager(client, notifier, cfg.PollInterval, logger)
	sessions.SetMetrics(collector)
	projects := session.NewProjectList(client, notifier, logger)
	projects.SetMetrics(collector)

	// Health checker
	checker := health.NewChecker(logger)
	checker.Register("backend", health.BackendCheck(client))

	// Console facade
	srv := console.NewServer(console.ServerConfig{
		ListenAddr:  cfg.ListenAddr,
		CORSOrigins: os.Getenv("RETRIVIS_CORS_ORIGINS"),
	}, sessions, projects, checker, logger)

	go func() {
		if err := srv.Listen(); err != nil {
			logger.Error().Err(err).Msg("console facade stopped")
			cancel()
		}
	}()

	// Metrics + probe endpoints on a separate listener
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", collector.Handler())
	metricsMux.HandleFunc("/health", health.LivenessHandler())
	metricsMux.HandleFunc("/ready", checker.ReadinessHandler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	// Wait for shutdown signal
	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	sessions.CloseAll()
	if err := srv.Shutdown(); err != nil {
		logger.Warn().Err(err).Msg("console facade shutdown error")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("metrics server shutdown error")
	}

	logger.Info().Msg("retrivis console daemon stopped")
}
