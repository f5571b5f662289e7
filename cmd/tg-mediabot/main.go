package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/semaphore"

	"github.com/ytget/tg-mediabot/internal/bot"
	"github.com/ytget/tg-mediabot/internal/config"
	"github.com/ytget/tg-mediabot/internal/engine"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("tg-mediabot starting",
		slog.String("version", version),
		slog.String("tempdir", cfg.TempDir),
		slog.Bool("proxy", cfg.Proxy != ""),
		slog.Int64("log_channel", cfg.LogChannel),
	)

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		logger.Error("cannot create working directory", "path", cfg.TempDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.Install(ctx)

	eng := engine.New(engine.Options{
		Format:      cfg.Formats,
		Proxy:       cfg.Proxy,
		MaxFilesize: cfg.MaxFilesize,
	})

	tg, err := bot.NewTelegram(cfg.Token, cfg.Debug)
	if err != nil {
		logger.Error("failed to register the bot", "error", err)
		os.Exit(1)
	}

	orch := bot.NewOrchestrator(eng, cfg.Proxy, cfg.FallbackProxy, logger)
	disp := bot.NewDispatcher(tg, cfg.LogChannel, cfg.Debug, logger)
	handler := bot.NewHandler(orch, disp, tg, cfg.LinkPattern, cfg.TempDir, logger)

	// Distinct messages may run concurrently; links within one message
	// stay sequential inside the handler
	sem := semaphore.NewWeighted(int64(cfg.MaxParallel))
	updates := tg.Updates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("caught shutdown signal, exiting gracefully")
			tg.Stop()
			return

		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}

			in := bot.Incoming(msg)

			if msg.IsCommand() {
				if cmd := msg.Command(); cmd == "start" || cmd == "help" {
					handler.Welcome(in)
				}
				continue
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				continue
			}
			go func() {
				defer sem.Release(1)
				handler.HandleMessage(ctx, in)
			}()
		}
	}
}
