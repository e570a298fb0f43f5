package window

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/buffer"
)

// Sample is a single telemetry reading
type Sample struct {
	ID        string            `json:"id"`
	Subject   string            `json:"subject"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Config configures a Window
type Config struct {
	Name           string
	Capacity       int
	AllowOverwrite bool

	// ValidateSchema checks Ingest payloads against the sample JSON schema
	// before decoding.
	ValidateSchema bool

	// DegradedEvictionRate is the evicted/ingested ratio above which Health
	// reports degraded. Zero disables the check.
	DegradedEvictionRate float64

	// Registry is optional. When set, ring and ingest metrics are exported.
	Registry *metric.MetricsRegistry
	Logger   *slog.Logger
}

// DefaultConfig returns a config for a window that overwrites its oldest
// sample when full.
func DefaultConfig(name string, capacity int) Config {
	return Config{
		Name:                 name,
		Capacity:             capacity,
		AllowOverwrite:       true,
		DegradedEvictionRate: 0.5,
	}
}

// Validate checks the config
func (c Config) Validate() error {
	switch {
	case c.Name == "":
		return errors.WrapInvalid(fmt.Errorf("%w: name is required", errors.ErrInvalidConfig),
			"Config", "Validate", "check name")
	case c.Capacity < 1:
		return errors.WrapInvalid(fmt.Errorf("%w: capacity must be at least 1, got %d", errors.ErrInvalidConfig, c.Capacity),
			"Config", "Validate", "check capacity")
	case c.DegradedEvictionRate < 0 || c.DegradedEvictionRate > 1:
		return errors.WrapInvalid(fmt.Errorf("%w: degraded eviction rate must be within [0, 1], got %v",
			errors.ErrInvalidConfig, c.DegradedEvictionRate),
			"Config", "Validate", "check degraded eviction rate")
	}
	return nil
}

// Window keeps the most recent samples in a lock-free ring and summarizes them.
// All methods are safe for concurrent use.
type Window struct {
	name           string
	ring           *buffer.Ring[Sample]
	logger         *slog.Logger
	metrics        *metric.Metrics // nil without a registry
	validateSchema bool
	degradedRate   float64
	startTime      time.Time

	ingested     atomic.Uint64
	rejected     atomic.Uint64
	evicted      atomic.Uint64
	lastEvicted  atomic.Pointer[Sample]
	lastActivity atomic.Int64 // unix nanoseconds
}

// New creates a window from cfg
func New(cfg Config) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Window{
		name:           cfg.Name,
		logger:         logger.With("component", "window", "window", cfg.Name),
		validateSchema: cfg.ValidateSchema,
		degradedRate:   cfg.DegradedEvictionRate,
		startTime:      time.Now(),
	}

	opts := []buffer.Option[Sample]{
		buffer.WithOverwrite[Sample](cfg.AllowOverwrite),
		buffer.WithName[Sample](cfg.Name),
		buffer.WithLogger[Sample](w.logger),
		buffer.WithEvictedHandler[Sample](w.recordEviction),
	}
	if cfg.Registry != nil {
		opts = append(opts, buffer.WithMetrics[Sample](cfg.Registry, "window_"+cfg.Name))
		w.metrics = cfg.Registry.CoreMetrics()
	}

	ring, err := buffer.NewRing[Sample](cfg.Capacity, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "Window", "New", "create ring")
	}
	w.ring = ring

	w.logger.Info("window created",
		"capacity", cfg.Capacity,
		"allow_overwrite", cfg.AllowOverwrite,
		"validate_schema", cfg.ValidateSchema)

	return w, nil
}

// recordEviction runs on the enqueuing goroutine after an overwrite
func (w *Window) recordEviction(old Sample) error {
	w.evicted.Add(1)
	w.lastEvicted.Store(&old)
	return nil
}

// Name returns the window name
func (w *Window) Name() string {
	return w.name
}

// Len returns the number of samples held
func (w *Window) Len() int {
	return w.ring.Count()
}

// Capacity returns the maximum number of samples held
func (w *Window) Capacity() int {
	return w.ring.Capacity()
}

// Add stores s, assigning an ID and timestamp when they are missing. When the
// window is full it evicts the oldest sample, or fails with ErrBufferFull if
// overwrite is disabled.
func (w *Window) Add(s Sample) error {
	if s.Subject == "" {
		return w.reject("invalid", errors.WrapInvalid(
			fmt.Errorf("%w: subject is required", errors.ErrInvalidData), "Window", "Add", "validate sample"))
	}
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return w.reject("invalid", errors.WrapInvalid(
			fmt.Errorf("%w: value must be finite, got %v", errors.ErrInvalidData, s.Value), "Window", "Add", "validate sample"))
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}

	if err := w.ring.Enqueue(s); err != nil {
		if stderrors.Is(err, buffer.ErrBufferFull) {
			return w.reject("full", err)
		}
		// Eviction handler failures do not prevent the store
		w.logger.Warn("eviction handler failed", "error", err)
	}

	w.ingested.Add(1)
	w.lastActivity.Store(time.Now().UnixNano())
	if w.metrics != nil {
		w.metrics.RecordIngested(w.name)
	}
	return nil
}

func (w *Window) reject(reason string, err error) error {
	w.rejected.Add(1)
	if w.metrics != nil {
		w.metrics.RecordRejected(w.name, reason)
	}
	return err
}

// Samples returns a consistent copy of the window, oldest first
func (w *Window) Samples() []Sample {
	return w.ring.ToSlice()
}

// Latest returns up to n of the newest samples, oldest first
func (w *Window) Latest(n int) []Sample {
	if n <= 0 {
		return []Sample{}
	}
	samples := w.ring.ToSlice()
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	return samples
}

// Drain removes and returns up to n of the oldest samples
func (w *Window) Drain(n int) []Sample {
	return w.ring.DequeueBatch(n)
}

// Compact shrinks the window's storage to its current contents. The window
// keeps the reduced capacity afterwards.
func (w *Window) Compact() {
	before := w.ring.Capacity()
	w.ring.TrimExcess()
	w.logger.Info("window compacted", "old_capacity", before, "new_capacity", w.ring.Capacity())
}

// Stats returns the underlying ring statistics
func (w *Window) Stats() buffer.StatsSummary {
	return w.ring.Stats().Summary()
}
