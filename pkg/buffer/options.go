package buffer

import (
	"log/slog"

	"github.com/c360/ringwindow/metric"
)

// Option configures ring behavior using the functional options pattern.
type Option[T any] func(*ringOptions[T])

// ringOptions holds construction-time configuration.
// Stats are ALWAYS collected - they are not optional.
type ringOptions[T any] struct {
	allowOverwrite bool
	name           string
	logger         *slog.Logger

	onEvicting []EvictionHandler[T]
	onEvicted  []EvictionHandler[T]

	// metricsReg is optional - if provided, ring stats are also exposed as Prometheus metrics
	metricsReg *metric.MetricsRegistry

	// metricsPrefix is used as the component label for Prometheus metrics
	metricsPrefix string
}

// WithOverwrite sets whether a full ring evicts its oldest element to accept a new one.
// Defaults to true.
func WithOverwrite[T any](allow bool) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.allowOverwrite = allow
	}
}

// WithName sets the name used in log records. Defaults to the metrics prefix, or "ring".
func WithName[T any](name string) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.name = name
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(opts *ringOptions[T]) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithMetrics enables Prometheus metrics export for ring statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(opts *ringOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithEvictingHandler subscribes handler to pre-eviction notifications at construction.
func WithEvictingHandler[T any](handler EvictionHandler[T]) Option[T] {
	return func(opts *ringOptions[T]) {
		if handler != nil {
			opts.onEvicting = append(opts.onEvicting, handler)
		}
	}
}

// WithEvictedHandler subscribes handler to post-eviction notifications at construction.
func WithEvictedHandler[T any](handler EvictionHandler[T]) Option[T] {
	return func(opts *ringOptions[T]) {
		if handler != nil {
			opts.onEvicted = append(opts.onEvicted, handler)
		}
	}
}

func applyOptions[T any](options ...Option[T]) *ringOptions[T] {
	opts := &ringOptions[T]{
		allowOverwrite: true,
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.name == "" {
		opts.name = opts.metricsPrefix
	}
	if opts.name == "" {
		opts.name = "ring"
	}

	return opts
}
