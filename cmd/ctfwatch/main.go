package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"ctfwatch/internal/bot"
	"ctfwatch/internal/config"
	"ctfwatch/internal/notifier"
	"ctfwatch/internal/publisher"
	"ctfwatch/internal/scheduler"
	"ctfwatch/internal/service"
	"ctfwatch/internal/source/alpacahack"
	"ctfwatch/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("sqlite3", cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	stateStore, err := sqlite.NewStateStore(db)
	if err != nil {
		logger.Error("failed to initialize state store", "error", err)
		os.Exit(1)
	}
	logger.Info("state database ready", "path", cfg.Database.Path)

	// Connect to Discord
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Error("failed to create discord session", "error", err)
		os.Exit(1)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	if err := session.Open(); err != nil {
		logger.Error("failed to connect to discord", "error", err)
		os.Exit(1)
	}
	defer session.Close()
	logger.Info("connected to discord", "channel_id", cfg.Discord.ChannelID)

	// Optional RabbitMQ publisher for downstream consumers
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	// Initialize AlpacaHack source
	source := alpacahack.New(alpacahack.Config{
		BaseURL: cfg.Source.BaseURL,
		Timeout: cfg.Tracker.FetchTimeout,
	}, logger)

	discordNotifier := notifier.NewDiscord(session, cfg.Discord.ChannelID, logger)

	tracker := service.NewTracker(source, stateStore, discordNotifier, pub, logger)

	sched := scheduler.New(tracker, scheduler.Config{
		Interval:    cfg.Tracker.PollInterval,
		BackoffBase: cfg.Tracker.BackoffBase,
		MaxBackoff:  cfg.Tracker.MaxBackoff,
	}, logger)

	// Prefix commands: manual check, ping
	bot.NewHandler(sched, cfg.Discord.CommandPrefix, logger).Register(session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting challenge tracker",
		"source", source.Name(),
		"interval", cfg.Tracker.PollInterval,
		"base_url", cfg.Source.BaseURL,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
