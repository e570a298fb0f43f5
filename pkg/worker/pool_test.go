package worker

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
)

// Test data structure for worker pool tests
type testWork struct {
	id   int
	fail bool
}

func noop(context.Context, testWork) error { return nil }

// blockingProcessor records processed ids and holds each call until release is closed.
func blockingProcessor(release <-chan struct{}, seen *sync.Map) func(context.Context, testWork) error {
	return func(_ context.Context, w testWork) error {
		<-release
		seen.Store(w.id, true)
		return nil
	}
}

func mustPool(t *testing.T, workers, queueSize int, processor func(context.Context, testWork) error, opts ...Option[testWork]) *Pool[testWork] {
	t.Helper()
	pool, err := NewPool(workers, queueSize, processor, opts...)
	require.NoError(t, err)
	return pool
}

func TestNewPool(t *testing.T) {
	pool := mustPool(t, 5, 100, noop)
	assert.Equal(t, 5, pool.workers)
	assert.Equal(t, 100, pool.queueSize)

	pool = mustPool(t, 0, 100, noop)
	assert.Equal(t, 10, pool.workers, "zero workers should default")

	pool = mustPool(t, 5, 0, noop)
	assert.Equal(t, 1000, pool.queueSize, "zero queue size should default")
}

func TestNewPool_NilProcessor(t *testing.T) {
	pool, err := NewPool[testWork](5, 100, nil)
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.ErrorIs(t, err, ErrNilProcessor)
	assert.True(t, errors.IsInvalid(err))
}

func TestPool_StartStop(t *testing.T) {
	var processed atomic.Int64
	pool := mustPool(t, 2, 10, func(context.Context, testWork) error {
		processed.Add(1)
		return nil
	})

	require.NoError(t, pool.Start(t.Context()))
	assert.ErrorIs(t, pool.Start(t.Context()), ErrPoolAlreadyStarted)

	for i := range 5 {
		require.NoError(t, pool.Submit(testWork{id: i}))
	}

	// Stop finishes queued work before returning
	require.NoError(t, pool.Stop(5*time.Second))
	assert.Equal(t, int64(5), processed.Load())

	assert.ErrorIs(t, pool.Submit(testWork{id: 999}), ErrPoolStopped)
	assert.NoError(t, pool.Stop(time.Second), "second stop is a no-op")
}

func TestPool_SubmitBeforeStart(t *testing.T) {
	pool := mustPool(t, 2, 10, noop)

	err := pool.Submit(testWork{id: 1})
	assert.Equal(t, ErrPoolNotStarted, err, "lifecycle errors are returned unwrapped")
	assert.ErrorIs(t, err, errors.ErrNotStarted)
}

func TestPool_QueueFull(t *testing.T) {
	release := make(chan struct{})
	var seen sync.Map
	pool := mustPool(t, 1, 2, blockingProcessor(release, &seen))

	require.NoError(t, pool.Start(t.Context()))
	defer pool.Stop(5 * time.Second)
	defer close(release)

	var full error
	for i := range 10 {
		if err := pool.Submit(testWork{id: i}); err != nil {
			full = err
			break
		}
	}

	require.ErrorIs(t, full, ErrQueueFull)
	assert.True(t, stderrors.Is(full, errors.ErrResourceExhausted))
	assert.Positive(t, pool.Stats().Dropped)
}

func TestPool_ShedOldest(t *testing.T) {
	release := make(chan struct{})
	var seen sync.Map
	pool := mustPool(t, 1, 3, blockingProcessor(release, &seen), WithShedOldest[testWork]())

	// Fill before starting workers so nothing is in flight
	pool.started = true
	for i := range 8 {
		require.NoError(t, pool.Submit(testWork{id: i}), "shedding pools never reject")
	}
	pool.started = false

	stats := pool.Stats()
	assert.Equal(t, int64(8), stats.Submitted)
	assert.Equal(t, int64(5), stats.Dropped)
	assert.Equal(t, 3, stats.QueueDepth)

	require.NoError(t, pool.Start(t.Context()))
	close(release)
	require.NoError(t, pool.Stop(5*time.Second))

	for id := range 8 {
		_, ok := seen.Load(id)
		assert.Equal(t, id >= 5, ok, "item %d", id)
	}
}

func TestPool_ProcessingErrors(t *testing.T) {
	var successCount, errorCount atomic.Int64
	pool := mustPool(t, 2, 10, func(_ context.Context, work testWork) error {
		if work.fail {
			errorCount.Add(1)
			return stderrors.New("simulated error")
		}
		successCount.Add(1)
		return nil
	})

	require.NoError(t, pool.Start(t.Context()))

	for i := range 10 {
		require.NoError(t, pool.Submit(testWork{id: i, fail: i%2 == 0}))
	}
	require.NoError(t, pool.Stop(5*time.Second))

	assert.Equal(t, int64(5), successCount.Load())
	assert.Equal(t, int64(5), errorCount.Load())

	stats := pool.Stats()
	assert.Equal(t, int64(10), stats.Processed)
	assert.Equal(t, int64(5), stats.Failed)
}

func TestPool_ContextCancellation(t *testing.T) {
	var processed atomic.Int64
	pool := mustPool(t, 2, 10, func(ctx context.Context, _ testWork) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			processed.Add(1)
			return nil
		}
	})

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, pool.Start(ctx))

	for i := range 5 {
		require.NoError(t, pool.Submit(testWork{id: i}))
	}

	time.Sleep(10 * time.Millisecond)
	cancel()

	require.NoError(t, pool.Stop(5*time.Second))
	assert.Less(t, processed.Load(), int64(5), "cancellation should stop workers before the queue drains")
}

func TestPool_StopTimeout(t *testing.T) {
	release := make(chan struct{})
	var seen sync.Map
	pool := mustPool(t, 1, 10, blockingProcessor(release, &seen))
	defer close(release)

	require.NoError(t, pool.Start(t.Context()))
	require.NoError(t, pool.Submit(testWork{id: 1}))

	assert.ErrorIs(t, pool.Stop(50*time.Millisecond), ErrStopTimeout)
}

func TestPool_ConcurrentSubmissions(t *testing.T) {
	var processed atomic.Int64
	pool := mustPool(t, 5, 100, func(context.Context, testWork) error {
		processed.Add(1)
		return nil
	})

	require.NoError(t, pool.Start(t.Context()))

	const submitters, perSubmitter = 10, 10
	var wg sync.WaitGroup
	for s := range submitters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range perSubmitter {
				assert.NoError(t, pool.Submit(testWork{id: s*perSubmitter + j}))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, pool.Stop(5*time.Second))
	assert.Equal(t, int64(submitters*perSubmitter), processed.Load())
}

func TestPool_Stats(t *testing.T) {
	pool := mustPool(t, 3, 50, noop)

	stats := pool.Stats()
	assert.Equal(t, 3, stats.Workers)
	assert.Equal(t, 50, stats.QueueSize)
	assert.Zero(t, stats.Submitted)

	require.NoError(t, pool.Start(t.Context()))
	for i := range 10 {
		require.NoError(t, pool.Submit(testWork{id: i}))
	}

	assert.Eventually(t, func() bool {
		return pool.Stats().Processed == 10
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, pool.Stop(5*time.Second))

	stats = pool.Stats()
	assert.Equal(t, int64(10), stats.Submitted)
	assert.Zero(t, stats.QueueDepth)
}

func TestPool_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	pool := mustPool(t, 2, 4, noop, WithMetricsRegistry[testWork](registry, "ingest"))

	require.NoError(t, pool.Start(t.Context()))
	for i := range 3 {
		require.NoError(t, pool.Submit(testWork{id: i}))
	}
	require.NoError(t, pool.Stop(5*time.Second))

	assert.Equal(t, float64(3), testutil.ToFloat64(pool.metrics.submitted))
	assert.Equal(t, float64(3), testutil.ToFloat64(pool.metrics.processed))
	assert.Zero(t, testutil.ToFloat64(pool.metrics.dropped))

	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(), "ringwindow_ingest_submitted_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
