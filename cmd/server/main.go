package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/keyword-share-bot/internal/di"
	keepaliveService "github.com/reshetovitsme/keyword-share-bot/internal/modules/keepalive/service"
	"github.com/reshetovitsme/keyword-share-bot/internal/shared/config"
	httpServer "github.com/reshetovitsme/keyword-share-bot/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/keyword-share-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// Setup structured logging with multiple handlers using slog-multi
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	logger := slog.New(slogmulti.Fanout(textHandler, jsonHandler))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Setup dependency injection
	injector, err := di.Setup(ctx)
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Rotated JSON log file alongside the console output
	if cfg.Log.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			Compress:   true,
		}
		defer fileWriter.Close()
		fileHandler := slog.NewJSONHandler(fileWriter, &slog.HandlerOptions{Level: slog.LevelDebug})
		slog.SetDefault(slog.New(slogmulti.Fanout(textHandler, jsonHandler, fileHandler)))
	}

	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := di.Shutdown(shutdownCtx, injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	// Building the handler registers its routes on the bot
	if _, err := do.Invoke[*telegramHandler.Handler](injector); err != nil {
		slog.Error("Failed to initialize telegram handler", "error", err)
		return
	}
	b := do.MustInvoke[*bot.Bot](injector)
	server := do.MustInvoke[*httpServer.Server](injector)
	keepalive := do.MustInvoke[*keepaliveService.Service](injector)

	// Start HTTP server
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			cancel()
		}
	}()

	keepalive.Start(ctx)

	slog.Info("Application started", "port", cfg.HTTPPort, "bot", cfg.BotUsername, "env", cfg.AppEnv)
	slog.Info("Press Ctrl+C to stop")

	// Blocks until the context is cancelled
	b.Start(ctx)

	slog.Info("Shutting down...")
}
