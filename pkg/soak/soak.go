package soak

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/buffer"
)

// Config describes a soak run. A run ends when every producer has produced
// ItemsPerProducer items or Duration elapses, whichever comes first; at least
// one of the two must be set.
type Config struct {
	Capacity         int
	Producers        int
	Consumers        int
	ItemsPerProducer int
	Duration         time.Duration
	RatePerProducer  float64 // items per second, 0 for unpaced
	AllowOverwrite   bool

	// ObserveInterval spaces observer samples; 0 samples continuously.
	ObserveInterval time.Duration

	Registry *metric.MetricsRegistry // optional
	Logger   *slog.Logger
}

// Validate checks the config
func (c Config) Validate() error {
	var problem string
	switch {
	case c.Capacity < 1:
		problem = fmt.Sprintf("capacity must be at least 1, got %d", c.Capacity)
	case c.Producers < 1:
		problem = fmt.Sprintf("producers must be at least 1, got %d", c.Producers)
	case c.Consumers < 0:
		problem = fmt.Sprintf("consumers cannot be negative, got %d", c.Consumers)
	case c.ItemsPerProducer < 0 || c.Duration < 0 || c.RatePerProducer < 0 || c.ObserveInterval < 0:
		problem = "items, duration, rate and observe interval cannot be negative"
	case c.ItemsPerProducer == 0 && c.Duration == 0:
		problem = "either items per producer or duration must be set"
	default:
		return nil
	}
	return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, problem), "Config", "Validate", "check soak config")
}

// Report summarizes a soak run
type Report struct {
	RunID          string        `json:"run_id"`
	Capacity       int           `json:"capacity"`
	AllowOverwrite bool          `json:"allow_overwrite"`
	Enqueued       int64         `json:"enqueued"`
	Rejected       int64         `json:"rejected"`
	Dequeued       int64         `json:"dequeued"`
	Evicted        int64         `json:"evicted"`
	FinalCount     int           `json:"final_count"`
	Observations   int64         `json:"observations"`
	Violations     []string      `json:"violations"`
	Elapsed        time.Duration `json:"elapsed"`
}

// OK reports whether the run found no violations
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

// item identifies one produced value
type item struct {
	producer int
	seq      uint64
}

type run struct {
	cfg  Config
	ring *buffer.Ring[item]

	enqueued     atomic.Int64
	rejected     atomic.Int64
	dequeued     atomic.Int64
	evicted      atomic.Int64
	observations atomic.Int64

	mu         sync.Mutex
	violations []string
}

func (r *run) violation(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
}

// Run drives producers, consumers and an observer against one ring and checks
// the ring's invariants: observed counts and snapshots never exceed capacity,
// snapshots and consumers see each producer's items in order, and the final
// accounting balances.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.NewString()
	logger = logger.With("component", "soak", "run_id", runID)

	r := &run{cfg: cfg}
	opts := []buffer.Option[item]{
		buffer.WithOverwrite[item](cfg.AllowOverwrite),
		buffer.WithName[item]("soak"),
		buffer.WithLogger[item](logger),
		buffer.WithEvictedHandler[item](func(item) error {
			r.evicted.Add(1)
			return nil
		}),
	}
	if cfg.Registry != nil {
		opts = append(opts, buffer.WithMetrics[item](cfg.Registry, "soak"))
	}
	ring, err := buffer.NewRing[item](cfg.Capacity, opts...)
	if err != nil {
		return Report{}, errors.Wrap(err, "soak", "Run", "create ring")
	}
	r.ring = ring

	runCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	logger.Info("soak run starting",
		"capacity", cfg.Capacity,
		"producers", cfg.Producers,
		"consumers", cfg.Consumers,
		"items_per_producer", cfg.ItemsPerProducer,
		"duration", cfg.Duration,
		"allow_overwrite", cfg.AllowOverwrite)

	start := time.Now()
	producersDone := make(chan struct{})

	var producers errgroup.Group
	for p := range cfg.Producers {
		producers.Go(func() error {
			return r.produce(runCtx, p)
		})
	}

	var workers errgroup.Group
	for range cfg.Consumers {
		workers.Go(func() error {
			return r.consume(producersDone)
		})
	}
	workers.Go(func() error {
		return r.observe(producersDone)
	})

	prodErr := producers.Wait()
	close(producersDone)
	workErr := workers.Wait()

	report := r.report(runID, time.Since(start))

	if err := stderrors.Join(prodErr, workErr); err != nil {
		return report, errors.Wrap(err, "soak", "Run", "run workers")
	}
	if err := ctx.Err(); err != nil {
		return report, errors.WrapTransient(err, "soak", "Run", "complete run")
	}

	logger.Info("soak run finished",
		"enqueued", report.Enqueued,
		"rejected", report.Rejected,
		"dequeued", report.Dequeued,
		"evicted", report.Evicted,
		"final_count", report.FinalCount,
		"observations", report.Observations,
		"violations", len(report.Violations),
		"elapsed", report.Elapsed)

	return report, nil
}

func (r *run) produce(ctx context.Context, producer int) error {
	var limiter *rate.Limiter
	if r.cfg.RatePerProducer > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.RatePerProducer), 1)
	}

	for seq := uint64(0); r.cfg.ItemsPerProducer == 0 || seq < uint64(r.cfg.ItemsPerProducer); seq++ {
		if ctx.Err() != nil {
			return nil
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				// The run deadline ends pacing
				return nil
			}
		}

		err := r.ring.Enqueue(item{producer: producer, seq: seq})
		switch {
		case err == nil:
			r.enqueued.Add(1)
		case stderrors.Is(err, buffer.ErrBufferFull):
			r.rejected.Add(1)
		default:
			return errors.Wrap(err, "soak", "produce", "enqueue item")
		}
	}
	return nil
}

// consume dequeues until producers finish and checks that each producer's
// items arrive in order.
func (r *run) consume(producersDone <-chan struct{}) error {
	last := make(map[int]uint64)
	seen := make(map[int]bool)

	for {
		it, ok := r.ring.TryDequeue()
		if !ok {
			select {
			case <-producersDone:
				return nil
			default:
				runtime.Gosched()
				continue
			}
		}

		r.dequeued.Add(1)
		if seen[it.producer] && it.seq <= last[it.producer] {
			r.violation("consumer saw producer %d item %d after item %d", it.producer, it.seq, last[it.producer])
		}
		seen[it.producer] = true
		last[it.producer] = it.seq
	}
}

// observe samples Count and ToSlice until producers finish
func (r *run) observe(producersDone <-chan struct{}) error {
	capacity := r.ring.Capacity()

	var ticker *time.Ticker
	if r.cfg.ObserveInterval > 0 {
		ticker = time.NewTicker(r.cfg.ObserveInterval)
		defer ticker.Stop()
	}

	for {
		select {
		case <-producersDone:
			return nil
		default:
		}

		r.observations.Add(1)
		if n := r.ring.Count(); n < 0 || n > capacity {
			r.violation("count %d outside [0, %d]", n, capacity)
		}

		snapshot := r.ring.ToSlice()
		if len(snapshot) > capacity {
			r.violation("snapshot length %d exceeds capacity %d", len(snapshot), capacity)
		}
		last := make(map[int]uint64)
		for i, it := range snapshot {
			if prev, ok := last[it.producer]; ok && it.seq <= prev {
				r.violation("snapshot position %d holds producer %d item %d after item %d", i, it.producer, it.seq, prev)
				break
			}
			last[it.producer] = it.seq
		}

		if ticker != nil {
			select {
			case <-producersDone:
				return nil
			case <-ticker.C:
			}
		}
	}
}

func (r *run) report(runID string, elapsed time.Duration) Report {
	rep := Report{
		RunID:          runID,
		Capacity:       r.cfg.Capacity,
		AllowOverwrite: r.cfg.AllowOverwrite,
		Enqueued:       r.enqueued.Load(),
		Rejected:       r.rejected.Load(),
		Dequeued:       r.dequeued.Load(),
		Evicted:        r.evicted.Load(),
		FinalCount:     r.ring.Count(),
		Observations:   r.observations.Load(),
		Elapsed:        elapsed,
	}

	r.mu.Lock()
	rep.Violations = append([]string{}, r.violations...)
	r.mu.Unlock()

	if rep.FinalCount > rep.Capacity {
		rep.Violations = append(rep.Violations,
			fmt.Sprintf("final count %d exceeds capacity %d", rep.FinalCount, rep.Capacity))
	}
	if rep.Dequeued > rep.Enqueued {
		rep.Violations = append(rep.Violations,
			fmt.Sprintf("dequeued %d exceeds enqueued %d", rep.Dequeued, rep.Enqueued))
	}

	accounted := rep.Dequeued + rep.Evicted + int64(rep.FinalCount)
	if accounted != rep.Enqueued {
		rep.Violations = append(rep.Violations,
			fmt.Sprintf("enqueued %d != dequeued %d + evicted %d + final %d",
				rep.Enqueued, rep.Dequeued, rep.Evicted, rep.FinalCount))
	}
	if !rep.AllowOverwrite && rep.Evicted != 0 {
		rep.Violations = append(rep.Violations,
			fmt.Sprintf("%d evictions with overwrite disabled", rep.Evicted))
	}

	return rep
}
