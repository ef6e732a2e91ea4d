package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rates_go/internal/app"
	"rates_go/internal/domain"
	"rates_go/internal/infra"
	"rates_go/internal/service"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config path] [days] [currency...]\n\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "Prints PrivatBank archive rates (EUR, USD and any extra currencies)\nfor the last days (1-%d, default %d), today first.\n\n", domain.MaxDays, domain.MaxDays)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config.yaml")
	flag.Usage = usage
	flag.Parse()

	bootstrap := app.NewBootstrap(*configPath)
	if err := bootstrap.LoadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	slog.SetDefault(infra.NewCLILogger(bootstrap.Config))
	bootstrap.InitRates()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// "exchange 3 usd" and "3 usd" are the same request
	args := flag.Args()
	if len(args) > 0 && domain.IsExchangeCommand(args[0]) {
		args = args[1:]
	}

	result := bootstrap.Aggregator.AggregateArgs(ctx, time.Now(), args)
	if err := service.RenderText(os.Stdout, result); err != nil {
		slog.Error("Failed to write report", slog.Any("error", err))
		os.Exit(1)
	}

	if ctx.Err() != nil {
		os.Exit(130)
	}
	if empty := result.EmptyDates(); len(empty) == len(result.Snapshots) {
		slog.Error("No rates could be fetched")
		os.Exit(1)
	}
}
