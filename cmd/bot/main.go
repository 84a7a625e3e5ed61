package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/okmeder/mailgate/internal/archive"
	"github.com/okmeder/mailgate/internal/binding"
	"github.com/okmeder/mailgate/internal/config"
	"github.com/okmeder/mailgate/internal/credential"
	"github.com/okmeder/mailgate/internal/deliver"
	"github.com/okmeder/mailgate/internal/i18n"
	"github.com/okmeder/mailgate/internal/ingest"
	"github.com/okmeder/mailgate/internal/kv"
	"github.com/okmeder/mailgate/internal/mailapi"
	"github.com/okmeder/mailgate/internal/mailparse"
	"github.com/okmeder/mailgate/internal/paginate"
	"github.com/okmeder/mailgate/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting mail gateway bot")

	// Connect to the key-value store
	kvs, err := kv.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer kvs.Close()

	// Open the mail archive
	arch, err := archive.New(cfg.ArchivePath)
	if err != nil {
		logger.Error("failed to open archive", "error", err)
		os.Exit(1)
	}
	defer arch.Close()

	ctx := context.Background()
	if err := arch.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("archive migrations completed")

	// Create components
	codec := credential.NewCodec(cfg.CredentialSecret)
	registry := credential.NewRegistry(kvs, codec, arch)
	bindings := binding.NewStore(kvs)
	locales := i18n.NewResolver(kvs, cfg.DefaultLang, cfg.AllowUserLang)
	parser := mailparse.NewParser()
	paginator := paginate.New(arch, parser)

	// Create mail admin API client (optional)
	var mailAPI *mailapi.Client
	if cfg.MailAPIEnabled() {
		mailAPI = mailapi.NewClient(mailapi.Config{
			BaseURL: cfg.MailAPIURL,
			APIKey:  cfg.MailAPIKey,
		})
		logger.Info("mail admin API enabled", "url", cfg.MailAPIURL)
	}

	// Create bot
	bot, err := telegram.NewBot(telegram.BotDeps{
		Config:    cfg,
		KV:        kvs,
		Registry:  registry,
		Bindings:  bindings,
		Locales:   locales,
		Paginator: paginator,
		Archive:   arch,
		MailAPI:   mailAPI,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if err := bot.SetupCommands(ctx); err != nil {
		logger.Warn("failed to publish command list", "error", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		logger.Info("shutting down...")
		cancel()
	}()

	// Start catch-all ingest (optional)
	if cfg.IngestEnabled() {
		router := deliver.NewRouter(bindings, locales, arch, parser, bot, logger)
		listener := ingest.New(ingest.Config{
			Server:       cfg.IMAPServer,
			User:         cfg.IMAPUser,
			Password:     cfg.IMAPPassword,
			DialTimeout:  cfg.IMAPDialTimeout,
			PollInterval: cfg.IMAPPollInterval,
		}, arch, router, kvs, logger)
		go listener.Run(ctx)
		logger.Info("catch-all ingest enabled", "server", cfg.IMAPServer)
	}

	// Start bot
	logger.Info("bot is running, press Ctrl+C to stop")
	bot.Start(ctx)

	logger.Info("bot stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
			NoColor:    false,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
