package worker

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/buffer"
)

// Pool is a generic worker pool that processes work of type T from a bounded
// lock-free queue.
type Pool[T any] struct {
	// Configuration
	workers    int
	queueSize  int
	processor  func(context.Context, T) error
	shedOldest bool
	logger     *slog.Logger

	// Runtime state
	queue   *buffer.Ring[T]
	wake    chan struct{}
	quit    chan struct{}
	metrics *Metrics
	wg      sync.WaitGroup

	// Lifecycle management
	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	// Statistics
	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	// Metrics configuration
	metricsRegistry *metric.MetricsRegistry
	metricsPrefix   string
}

// Metrics holds Prometheus metrics for worker pool monitoring
type Metrics struct {
	queueDepth     prometheus.Gauge
	utilization    prometheus.Gauge
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

// Option represents a configuration option for the worker pool
type Option[T any] func(*Pool[T])

// WithMetricsRegistry configures the pool to register metrics with the framework's registry
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		p.metricsRegistry = registry
		p.metricsPrefix = prefix
	}
}

// WithShedOldest makes Submit on a full queue drop the oldest queued item
// instead of rejecting the new one. Shed items count as dropped.
func WithShedOldest[T any]() Option[T] {
	return func(p *Pool[T]) {
		p.shedOldest = true
	}
}

// WithLogger sets the logger used for metric registration problems
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(p *Pool[T]) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPool creates a new generic worker pool with optional configuration.
// Non-positive workers and queueSize fall back to 10 and 1000.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) (*Pool[T], error) {
	if workers <= 0 {
		workers = 10
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	if processor == nil {
		return nil, errors.WrapInvalid(ErrNilProcessor, "Pool", "NewPool", "validate processor")
	}

	pool := &Pool[T]{
		workers:   workers,
		queueSize: queueSize,
		processor: processor,
		logger:    slog.Default(),
		wake:      make(chan struct{}, workers),
		quit:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(pool)
	}

	queue, err := buffer.NewRing[T](queueSize,
		buffer.WithName[T]("worker_queue"),
		buffer.WithLogger[T](pool.logger),
		buffer.WithOverwrite[T](pool.shedOldest),
		buffer.WithEvictedHandler[T](pool.recordShed),
	)
	if err != nil {
		return nil, errors.Wrap(err, "Pool", "NewPool", "create queue")
	}
	pool.queue = queue

	if pool.metricsRegistry != nil && pool.metricsPrefix != "" {
		pool.initializeMetrics()
	}

	return pool, nil
}

// initializeMetrics creates and registers metrics with the framework's registry
func (p *Pool[T]) initializeMetrics() {
	prefix := p.metricsPrefix

	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ringwindow",
		Name:      prefix + "_queue_depth",
		Help:      "Current worker pool queue depth",
	})
	utilization := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ringwindow",
		Name:      prefix + "_utilization",
		Help:      "Worker pool queue utilization (0-1)",
	})
	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ringwindow",
		Name:      prefix + "_submitted_total",
		Help:      "Total work items submitted",
	})
	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ringwindow",
		Name:      prefix + "_processed_total",
		Help:      "Total work items processed",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ringwindow",
		Name:      prefix + "_failed_total",
		Help:      "Total work items that failed processing",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ringwindow",
		Name:      prefix + "_dropped_total",
		Help:      "Total work items dropped because the queue was full",
	})
	processingTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ringwindow",
		Name:      prefix + "_processing_duration_seconds",
		Help:      "Time spent processing work items",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"status"})

	serviceName := "worker_pool_" + prefix
	errs := []error{
		p.metricsRegistry.RegisterGauge(serviceName, "queue_depth", queueDepth),
		p.metricsRegistry.RegisterGauge(serviceName, "utilization", utilization),
		p.metricsRegistry.RegisterCounter(serviceName, "submitted_total", submitted),
		p.metricsRegistry.RegisterCounter(serviceName, "processed_total", processed),
		p.metricsRegistry.RegisterCounter(serviceName, "failed_total", failed),
		p.metricsRegistry.RegisterCounter(serviceName, "dropped_total", dropped),
		p.metricsRegistry.RegisterHistogramVec(serviceName, "processing_duration_seconds", processingTime),
	}
	if err := stderrors.Join(errs...); err != nil {
		p.logger.Warn("worker pool metrics registration failed", "prefix", prefix, "error", err)
	}

	p.metrics = &Metrics{
		queueDepth:     queueDepth,
		utilization:    utilization,
		submitted:      submitted,
		processed:      processed,
		failed:         failed,
		dropped:        dropped,
		processingTime: processingTime,
	}
}

func (p *Pool[T]) recordShed(T) error {
	p.dropped.Add(1)
	if p.metrics != nil {
		p.metrics.dropped.Inc()
	}
	return nil
}

// Submit queues work without blocking. It returns ErrQueueFull when the queue
// is full, unless the pool sheds its oldest item instead.
func (p *Pool[T]) Submit(work T) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	if !p.queue.TryEnqueue(work) {
		p.dropped.Add(1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return ErrQueueFull
	}

	p.submitted.Add(1)
	if p.metrics != nil {
		p.metrics.submitted.Inc()
		p.metrics.queueDepth.Set(float64(p.queue.Count()))
	}

	select {
	case p.wake <- struct{}{}:
	default:
		// every worker already has a pending wakeup
	}
	return nil
}

// Start starts the worker pool
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}

	for i := range p.workers {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	if p.metrics != nil {
		p.wg.Add(1)
		go p.metricsUpdater(ctx)
	}

	p.started = true
	return nil
}

// Stop refuses new work, lets workers finish what is queued and waits up to
// timeout for them to exit.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started || p.stopped {
		return nil
	}

	p.stopped = true
	close(p.quit)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats returns current pool statistics
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: p.queue.Count(),
		Submitted:  p.submitted.Load(),
		Processed:  p.processed.Load(),
		Failed:     p.failed.Load(),
		Dropped:    p.dropped.Load(),
	}
}

// PoolStats represents worker pool statistics
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// worker drains the queue, sleeping on the wake channel while it is empty.
// After Stop it finishes the remaining items and exits.
func (p *Pool[T]) worker(ctx context.Context, _ int) {
	defer p.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}
		if work, ok := p.queue.TryDequeue(); ok {
			p.process(ctx, work)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		case <-p.quit:
			for {
				work, ok := p.queue.TryDequeue()
				if !ok || ctx.Err() != nil {
					return
				}
				p.process(ctx, work)
			}
		}
	}
}

func (p *Pool[T]) process(ctx context.Context, work T) {
	start := time.Now()
	err := p.processor(ctx, work)
	duration := time.Since(start)

	p.processed.Add(1)
	if err != nil {
		p.failed.Add(1)
	}

	if p.metrics != nil {
		p.metrics.processed.Inc()
		status := "success"
		if err != nil {
			p.metrics.failed.Inc()
			status = "error"
		}
		p.metrics.processingTime.WithLabelValues(status).Observe(duration.Seconds())
	}
}

// metricsUpdater periodically updates utilization and queue depth metrics
func (p *Pool[T]) metricsUpdater(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case <-ticker.C:
			queueDepth := float64(p.queue.Count())
			p.metrics.queueDepth.Set(queueDepth)
			p.metrics.utilization.Set(queueDepth / float64(p.queueSize))
		}
	}
}
