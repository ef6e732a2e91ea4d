package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rates_go/internal/app"
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config.yaml")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap(*configPath)
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := bootstrap.Close(); err != nil {
			slog.Error("Failed to close chat log", slog.Any("error", err))
		}
	}()

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Serve until interrupted
	addr := bootstrap.Config.Addr()
	slog.InfoContext(ctx, "✨ Rates chat server starting. Press Ctrl+C to exit.", slog.String("addr", addr))
	if err := bootstrap.Server.ListenAndServe(ctx, addr); err != nil {
		slog.Error("❌ Chat server stopped", slog.Any("error", err))
		stop()
		bootstrap.Close()
		os.Exit(1)
	}

	slog.Info("👋 Shut down gracefully")
}
