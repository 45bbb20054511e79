package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"saldo/internal/amqp"
	"saldo/internal/bankfeed"
	"saldo/internal/config"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting feed-poller")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.FeedConfigPath == "" {
		logger.Error("FEED_CONFIG_PATH is required for the feed poller")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the feed poller")
		os.Exit(1)
	}

	feedCfg, err := bankfeed.Load(cfg.FeedConfigPath)
	if err != nil {
		logger.Error("Failed to load feed configuration", "error", err, "path", cfg.FeedConfigPath)
		os.Exit(1)
	}
	if err := feedCfg.Validate(); err != nil {
		logger.Error("Feed configuration validation failed", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	fetchers := make([]bankfeed.Fetcher, 0, len(feedCfg.Feeds))
	for _, feed := range feedCfg.Feeds {
		fetchers = append(fetchers, bankfeed.NewHTTPFetcher(feed, feedCfg.Proxy, cfg.FeedTimeout))
		logger.Info("Registered bank feed", "feed", feed.Name, "cron", feed.Cron)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := bankfeed.NewPoller(ctx, feedCfg, amqpClient, fetchers)
	if err := poller.RegisterAll(); err != nil {
		logger.Error("Failed to register feed schedules", "error", err)
		os.Exit(1)
	}

	// One immediate pass is handy after deploys and in dev.
	if strings.EqualFold(os.Getenv("RUN_ON_START"), "true") {
		logger.Info("Running initial feed poll...")
		if err := poller.RunAllNow(ctx); err != nil {
			logger.Error("Initial feed poll failed", "error", err)
		}
	}

	poller.Start()
	logger.Info("Feed poller started", "feeds", len(fetchers), "lookback_days", feedCfg.LookbackDays)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	poller.Stop()
	logger.Info("Feed poller stopped gracefully")
}
