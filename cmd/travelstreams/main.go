// Package main implements the entry point for the TravelStreams service.
// TravelStreams serves a synthetic flight catalog over NATS through four
// interaction shapes: unary queries, streamed flight monitoring,
// client-streamed checkouts, and bidirectional support chat.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/travelstreams/catalog"
	"github.com/c360/travelstreams/config"
	"github.com/c360/travelstreams/engine"
	"github.com/c360/travelstreams/gateway"
	"github.com/c360/travelstreams/metric"
	"github.com/c360/travelstreams/natsclient"
	"github.com/c360/travelstreams/pkg/delay"
	"github.com/c360/travelstreams/service"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "travelstreams"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()
	metricsRegistry := metric.NewMetricsRegistry()

	store, err := buildCatalog(cfg, logger)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	eng := engine.NewEngine(store, logger, metricsRegistry, engineOptions(cfg)...)

	natsClient, err := buildNATSClient(cfg, metricsRegistry)
	if err != nil {
		return fmt.Errorf("create NATS client: %w", err)
	}
	if err := connectToNATS(ctx, natsClient); err != nil {
		return err
	}
	defer func() { _ = natsClient.Close(ctx) }()

	manager := service.NewManager(logger)
	if err := registerServices(cfg, manager, eng, natsClient, logger, metricsRegistry); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		metricsServer := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry)
		go func() {
			slog.Info("Metrics server listening", "address", metricsServer.Address())
			if serveErr := metricsServer.Start(); serveErr != nil {
				slog.Error("Metrics server failed", "error", serveErr)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
	}

	return runWithSignalHandling(ctx, manager, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting TravelStreams",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// buildCatalog generates the immutable flight dataset
func buildCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Store, error) {
	generator := catalog.Generator{
		Seed:         cfg.Catalog.Seed,
		Total:        cfg.Catalog.Total,
		NearTermDays: cfg.Catalog.NearTermDays,
	}

	store, err := catalog.NewStore(generator)
	if err != nil {
		return nil, err
	}

	logger.Info("Catalog populated",
		"flights", store.Len(),
		"seed", cfg.Catalog.Seed,
		"near_term_days", cfg.Catalog.NearTermDays)
	return store, nil
}

// engineOptions maps pacing configuration onto engine delay policies.
// Unset values keep the engine defaults.
func engineOptions(cfg *config.Config) []engine.Option {
	if cfg.Engine.DisableDelays {
		return []engine.Option{
			engine.WithQueryDelay(delay.None()),
			engine.WithMonitorDelay(delay.None()),
			engine.WithCheckoutDelay(delay.None()),
			engine.WithChatDelay(delay.None()),
		}
	}

	var opts []engine.Option
	if cfg.Engine.QueryDelayMin > 0 && cfg.Engine.QueryDelayMax > 0 {
		opts = append(opts, engine.WithQueryDelay(
			delay.Random(cfg.Engine.QueryDelayMin.Std(), cfg.Engine.QueryDelayMax.Std())))
	}
	if cfg.Engine.MonitorInterval > 0 {
		opts = append(opts, engine.WithMonitorDelay(delay.Fixed(cfg.Engine.MonitorInterval.Std())))
	}
	if cfg.Engine.CheckoutDelay > 0 {
		opts = append(opts, engine.WithCheckoutDelay(delay.Fixed(cfg.Engine.CheckoutDelay.Std())))
	}
	if cfg.Engine.ChatDelay > 0 {
		opts = append(opts, engine.WithChatDelay(delay.Fixed(cfg.Engine.ChatDelay.Std())))
	}
	return opts
}

// buildNATSClient creates the connection manager from configuration
func buildNATSClient(cfg *config.Config, registry *metric.MetricsRegistry) (*natsclient.Client, error) {
	url := "nats://localhost:4222"
	if len(cfg.NATS.URLs) > 0 {
		url = cfg.NATS.URLs[0]
	}

	opts := []natsclient.ClientOption{
		natsclient.WithName(cfg.Platform.Org + "-" + cfg.Platform.ID),
		natsclient.WithMetrics(registry),
	}
	if cfg.NATS.MaxReconnects != 0 {
		opts = append(opts, natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects))
	}
	if cfg.NATS.ReconnectWait > 0 {
		opts = append(opts, natsclient.WithReconnectWait(cfg.NATS.ReconnectWait.Std()))
	}
	if cfg.NATS.Username != "" && cfg.NATS.Password != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}

	return natsclient.NewClient(url, opts...)
}

// connectToNATS establishes the connection and waits for it to be ready
func connectToNATS(ctx context.Context, client *natsclient.Client) error {
	slog.Info("Connecting to NATS", "url", client.URL())
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return fmt.Errorf("NATS connection timeout: %w", err)
	}

	return nil
}

// registerServices wires the transport services into the manager.
// Registration order is startup order; the bridge depends on nothing
// the gateway provides, but both need the engine.
func registerServices(
	cfg *config.Config,
	manager *service.Manager,
	eng *engine.Engine,
	natsClient *natsclient.Client,
	logger *slog.Logger,
	registry *metric.MetricsRegistry,
) error {
	gw, err := gateway.NewNATSGateway(cfg, eng, natsClient, logger, registry)
	if err != nil {
		return fmt.Errorf("create NATS gateway: %w", err)
	}
	if err := manager.Register(gw); err != nil {
		return fmt.Errorf("register NATS gateway: %w", err)
	}

	bridge, err := gateway.NewChatBridge(cfg, eng, logger, registry)
	if err != nil {
		return fmt.Errorf("create chat bridge: %w", err)
	}
	if err := manager.Register(bridge); err != nil {
		return fmt.Errorf("register chat bridge: %w", err)
	}

	return nil
}

// runWithSignalHandling starts services and blocks until shutdown
func runWithSignalHandling(ctx context.Context, manager *service.Manager, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := manager.StartAll(signalCtx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	slog.Info("TravelStreams started, catalog service ready")

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := manager.StopAll(shutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("TravelStreams shutdown complete")
	return nil
}
