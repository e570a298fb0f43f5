// Package main implements the ringwindow service: a bounded sliding window of
// samples, fed from NATS and served over HTTP together with Prometheus
// metrics and health.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/ringwindow/config"
	"github.com/c360/ringwindow/health"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/natsclient"
	"github.com/c360/ringwindow/pkg/window"
	"github.com/c360/ringwindow/pkg/worker"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ringwindow"
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
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(
		firstNonEmpty(cliCfg.LogLevel, cfg.Log.Level),
		firstNonEmpty(cliCfg.LogFormat, cfg.Log.Format))
	slog.SetDefault(logger)

	if cliCfg.Validate {
		slog.Info("Configuration is valid", "config", cfg.String())
		return nil
	}

	slog.Info("Starting ringwindow",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"window", cfg.Buffer.Name,
		"capacity", cfg.Buffer.Capacity)

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	registry := metric.NewMetricsRegistry()
	monitor := health.NewMonitor(registry.CoreMetrics())

	win, err := window.New(window.Config{
		Name:                 cfg.Buffer.Name,
		Capacity:             cfg.Buffer.Capacity,
		AllowOverwrite:       cfg.Buffer.AllowOverwrite,
		ValidateSchema:       cfg.Buffer.ValidateSchema,
		DegradedEvictionRate: cfg.Buffer.DegradedEvictionRate,
		Registry:             registry,
		Logger:               logger,
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	monitor.Register("window", win.Health)

	var (
		natsClient *natsclient.Client
		ingestPool *worker.Pool[[]byte]
	)
	if cfg.NATS.URL != "" {
		natsClient, err = connectNATS(signalCtx, cfg.NATS, registry, monitor, logger)
		if err != nil {
			return err
		}
		ingestPool, err = attachWindow(signalCtx, win, natsClient, cfg, registry)
		if err != nil {
			_ = natsClient.Close(context.Background())
			return fmt.Errorf("attach window: %w", err)
		}
	} else {
		slog.Info("NATS URL not configured, ingestion disabled")
	}

	var server *metric.Server
	serverErr := make(chan error, 1)
	if cfg.Metrics.Enabled {
		server = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		server.Handle("/window", win.Handler())
		server.Handle("/health", monitor.Handler(appName))
		go func() {
			serverErr <- server.Start()
		}()
		slog.Info("HTTP server started", "metrics", server.Address())
	}

	go refreshHealth(signalCtx, monitor, cliCfg.HealthInterval)

	var runErr error
	select {
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := shutdown(shutdownCtx, server, natsClient, ingestPool); err != nil {
		runErr = stderrors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}

	summary := win.Summary()
	slog.Info("ringwindow shutdown complete",
		"count", summary.Count,
		"ingested", summary.Ingested,
		"rejected", summary.Rejected,
		"evicted", summary.Evicted)
	return runErr
}

// loadConfig reads path, or starts from the defaults when path is empty.
// Environment overrides apply in both cases.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connectNATS creates the client, reports its connection state to the
// monitor and connects.
func connectNATS(
	ctx context.Context,
	cfg config.NATSConfig,
	registry *metric.MetricsRegistry,
	monitor *health.Monitor,
	logger *slog.Logger,
) (*natsclient.Client, error) {
	client, err := natsclient.NewClient(cfg.URL,
		natsclient.WithLogger(logger),
		natsclient.WithName(cfg.Name),
		natsclient.WithTimeout(cfg.Timeout.Std()),
		natsclient.WithReconnect(cfg.MaxReconnects, cfg.ReconnectWait.Std()),
		natsclient.WithMetrics(registry),
		natsclient.WithHealthChangeCallback(func(healthy bool) {
			if healthy {
				monitor.UpdateHealthy("nats", "connected")
			} else {
				monitor.UpdateUnhealthy("nats", "connection lost")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	monitor.UpdateUnhealthy("nats", "connecting")
	slog.Info("Connecting to NATS", "url", cfg.URL)
	if err := client.Connect(ctx); err != nil {
		monitor.Update("nats", health.FromError("nats", err))
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return client, nil
}

func refreshHealth(ctx context.Context, monitor *health.Monitor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			monitor.Refresh()
			if status := monitor.AggregateHealth(appName); !status.IsHealthy() {
				slog.Warn("System not healthy", "status", status.Status, "message", status.Message)
			}
		}
	}
}

// attachWindow feeds the window from NATS, through an ingest pool when
// buffer.ingest_workers is set. The returned pool is nil otherwise.
func attachWindow(
	ctx context.Context,
	win *window.Window,
	client *natsclient.Client,
	cfg *config.Config,
	registry *metric.MetricsRegistry,
) (*worker.Pool[[]byte], error) {
	if cfg.Buffer.IngestWorkers == 0 {
		return nil, win.Attach(ctx, client, cfg.NATS.Subject)
	}

	pool, err := win.NewIngestPool(cfg.Buffer.IngestWorkers, cfg.Buffer.IngestQueue, registry)
	if err != nil {
		return nil, err
	}
	if err := startIngest(ctx, pool); err != nil {
		return nil, err
	}
	if err := win.AttachQueued(ctx, client, cfg.NATS.Subject, pool); err != nil {
		_ = pool.Stop(time.Second)
		return nil, err
	}

	slog.Info("Ingest pool started", "workers", cfg.Buffer.IngestWorkers, "queue", cfg.Buffer.IngestQueue)
	return pool, nil
}

// startIngest starts pool workers that keep running after ctx is cancelled.
// They exit only through pool.Stop, which processes what is still queued.
func startIngest(ctx context.Context, pool *worker.Pool[[]byte]) error {
	return pool.Start(context.WithoutCancel(ctx))
}

// shutdown stops the HTTP server first so no request observes a closed
// client, then drains NATS and finally the ingest pool.
func shutdown(ctx context.Context, server *metric.Server, natsClient *natsclient.Client, pool *worker.Pool[[]byte]) error {
	var errs []error
	if server != nil {
		if err := server.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if natsClient != nil {
		if err := natsClient.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if pool != nil {
		timeout := time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = max(time.Until(deadline), 0)
		}
		if err := pool.Stop(timeout); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
