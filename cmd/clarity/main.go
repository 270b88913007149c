package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/superthinking/clarity/internal/analysis"
	"github.com/superthinking/clarity/internal/api"
	"github.com/superthinking/clarity/internal/audio"
	"github.com/superthinking/clarity/internal/config"
	"github.com/superthinking/clarity/internal/events"
	"github.com/superthinking/clarity/internal/notify"
	"github.com/superthinking/clarity/internal/openai"
	"github.com/superthinking/clarity/internal/pipeline"
	"github.com/superthinking/clarity/internal/slack"
	"github.com/superthinking/clarity/internal/store"
	"github.com/superthinking/clarity/internal/suggest"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("clarity starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// OpenAI client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	llm := openai.NewClient(cfg.OpenAIAPIKey)
	slog.Info("openai client ready", "analysis_model", cfg.AnalysisModel, "detection_model", cfg.DetectionModel)

	analyzer := analysis.New(llm, cfg.AnalysisModel, cfg.DetectionModel, slog.Default())
	fetcher := audio.NewFetcher()
	suggester := suggest.New(llm, cfg.DetectionModel, slog.Default())

	// NATS event bus
	bus, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Processor — the main pipeline
	proc := pipeline.New(db, fetcher, llm, analyzer, cfg.TranscribeModel, slog.Default()).WithBus(bus)

	// Slack alerter (optional — clarity works without it, just no ops pings)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		proc.WithAlerter(slack.NewAlerter(cfg.SlackBotToken, cfg.SlackChannel))
		slog.Info("slack alerter ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured — running without failure alerts")
	}

	notifier := notify.New(db, bus, slog.Default())

	if cfg.APIToken == "" {
		slog.Warn("CLARITY_API_TOKEN not set — API auth disabled")
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, proc, suggester, notifier, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("clarity ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("clarity stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
