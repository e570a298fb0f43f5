// Package main implements ringsoak, a stress driver that runs concurrent
// producers and consumers against a ring and checks its invariants.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/soak"
)

const appName = "ringsoak"

type options struct {
	soak        soak.Config
	metricsPort int
	jsonReport  bool
	logLevel    string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)

	fs.IntVar(&o.soak.Capacity, "capacity", 64, "Ring capacity")
	fs.IntVar(&o.soak.Producers, "producers", 4, "Number of producer goroutines")
	fs.IntVar(&o.soak.Consumers, "consumers", 2, "Number of consumer goroutines")
	fs.IntVar(&o.soak.ItemsPerProducer, "items", 10000, "Items per producer, 0 to run for --duration")
	fs.DurationVar(&o.soak.Duration, "duration", 0, "Upper bound on run time, 0 for none")
	fs.Float64Var(&o.soak.RatePerProducer, "rate", 0, "Items per second per producer, 0 for unpaced")
	fs.BoolVar(&o.soak.AllowOverwrite, "overwrite", true, "Overwrite the oldest item when full")
	fs.DurationVar(&o.soak.ObserveInterval, "observe-interval", time.Millisecond, "Interval between snapshot checks")
	fs.IntVar(&o.metricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port during the run, 0 to disable")
	fs.BoolVar(&o.jsonReport, "json", false, "Print the report as JSON on stdout")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, o.soak.Validate()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})).With("service", appName)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}

	logger := newLogger(opts.logLevel)
	slog.SetDefault(logger)
	opts.soak.Logger = logger

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.metricsPort > 0 {
		registry := metric.NewMetricsRegistry()
		opts.soak.Registry = registry
		server := metric.NewServer(opts.metricsPort, "/metrics", registry)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			_ = server.Stop(stopCtx)
		}()
	}

	report, err := soak.Run(ctx, opts.soak)
	if err != nil {
		logger.Error("soak run failed", "error", err)
		return 1
	}

	if opts.jsonReport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error("encode report", "error", err)
			return 1
		}
	}

	logger.Info("soak run finished",
		"run_id", report.RunID,
		"capacity", report.Capacity,
		"overwrite", report.AllowOverwrite,
		"enqueued", report.Enqueued,
		"rejected", report.Rejected,
		"dequeued", report.Dequeued,
		"evicted", report.Evicted,
		"final_count", report.FinalCount,
		"observations", report.Observations,
		"elapsed", report.Elapsed)

	if !report.OK() {
		for _, v := range report.Violations {
			logger.Error("invariant violated", "detail", v)
		}
		return 1
	}
	return 0
}
