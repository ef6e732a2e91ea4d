package app

import (
	"errors"
	"fmt"
	"log/slog"

	"rates_go/internal/chat"
	"rates_go/internal/domain"
	"rates_go/internal/infra"
	"rates_go/internal/infra/privatbank"
	"rates_go/internal/infra/storage"
	"rates_go/internal/service"
)

// DefaultConfigPath is read relative to the working directory
const DefaultConfigPath = "configs/config.yaml"

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	ConfigPath string

	Config     *infra.Config
	Metrics    *infra.Metrics
	Aggregator *service.RateAggregator
	ChatLog    *infra.FileChatLog
	Storage    *storage.Storage
	Server     *chat.Server

	usingDefaults bool
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(configPath string) *Bootstrap {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return &Bootstrap{ConfigPath: configPath}
}

// LoadConfig loads the config file, falling back to defaults when it does not exist.
func (b *Bootstrap) LoadConfig() error {
	cfg, err := infra.LoadConfig(b.ConfigPath)
	if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
		return err
	}
	b.Config = cfg
	b.usingDefaults = err != nil
	return nil
}

// InitRates builds the PrivatBank client and the multi-day aggregator.
func (b *Bootstrap) InitRates() {
	pb := b.Config.API.PrivatBank
	client := privatbank.NewClientWithConfig(pb.URL, pb.MaxRetries)
	b.Aggregator = service.NewRateAggregator(client, b.Config.FetchTimeout(), pb.MaxParallel, b.Metrics)
}

// Initialize performs the full chat server initialization.
func (b *Bootstrap) Initialize() error {
	// 1. Load Config
	if b.Config == nil {
		if err := b.LoadConfig(); err != nil {
			return err
		}
	}
	cfg := b.Config

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("🚀 Bootstrapping rates chat server...", slog.String("version", cfg.App.Version))
	if b.usingDefaults {
		slog.Warn("Config file not found, using defaults", slog.String("path", b.ConfigPath))
	}

	// 3. Metrics
	if cfg.Metrics.Enabled {
		b.Metrics = infra.NewMetrics()
	}

	// 4. Rates
	b.InitRates()
	slog.Info("✅ Rate aggregator ready", slog.String("url", cfg.API.PrivatBank.URL))

	// 5. Chat log sinks
	chatLog, err := infra.NewFileChatLog(cfg.ChatLog.Path, cfg.ChatLog.MaxSizeMB, cfg.ChatLog.MaxBackups)
	if err != nil {
		return err
	}
	b.ChatLog = chatLog
	sink := infra.TeeSink{chatLog}

	if cfg.ChatLog.Archive {
		store, err := storage.NewStorage(cfg.Storage.Path)
		if err != nil {
			b.Close()
			return err
		}
		b.Storage = store
		sink = append(sink, store)
		slog.Info("✅ Chat archive initialized")
	}

	// 6. Chat server
	names, err := infra.NewPeerNames()
	if err != nil {
		b.Close()
		return fmt.Errorf("failed to create name generator: %w", err)
	}
	metricsPath := ""
	if b.Metrics != nil {
		metricsPath = cfg.Metrics.Path
	}
	b.Server = chat.NewServer(chat.NewRegistry(names, b.Metrics), b.Aggregator, sink, b.Metrics, chat.Options{
		Path:         cfg.Server.Path,
		MetricsPath:  metricsPath,
		ReadLimit:    cfg.Server.ReadLimitBytes,
		WriteTimeout: cfg.WriteTimeout(),
	})
	slog.Info("✅ Chat server ready", slog.String("chat_log", cfg.ChatLog.Path))

	return nil
}

// Close flushes and closes the chat log sinks
func (b *Bootstrap) Close() error {
	var errs []error
	if b.ChatLog != nil {
		errs = append(errs, b.ChatLog.Close())
	}
	if b.Storage != nil {
		errs = append(errs, b.Storage.Close())
	}
	return errors.Join(errs...)
}
