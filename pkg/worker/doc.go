// Package worker provides a generic, thread-safe worker pool for concurrent task processing.
//
// # Overview
//
// Pool runs a fixed number of goroutines that take work items from a bounded queue.
// The queue is a buffer.Ring, so Submit never blocks and never takes a lock on the
// hot path. Idle workers sleep on a wake channel that Submit signals.
//
//	pool, err := worker.NewPool[[]byte](
//	    4,    // workers
//	    4096, // queue size
//	    win.Ingest,
//	    worker.WithMetricsRegistry[[]byte](registry, "ingest"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := pool.Start(ctx); err != nil {
//	    return err
//	}
//	defer pool.Stop(5 * time.Second)
//
// # Full Queues
//
// By default Submit on a full queue returns ErrQueueFull and the item is counted as
// dropped. WithShedOldest switches the queue to overwrite mode: the oldest queued
// item is evicted to make room, counted as dropped, and Submit succeeds. Shedding
// suits telemetry where the newest data matters most.
//
// # Lifecycle
//
// Submit before Start returns ErrPoolNotStarted, after Stop ErrPoolStopped. Stop
// refuses new work, lets workers finish the queued items and waits up to the given
// timeout (ErrStopTimeout). Cancelling the context passed to Start makes workers
// exit without draining.
//
// # Observability
//
// Stats is always available. WithMetricsRegistry registers, under the given prefix:
//
//	ringwindow_<prefix>_queue_depth
//	ringwindow_<prefix>_utilization
//	ringwindow_<prefix>_submitted_total
//	ringwindow_<prefix>_processed_total
//	ringwindow_<prefix>_failed_total
//	ringwindow_<prefix>_dropped_total
//	ringwindow_<prefix>_processing_duration_seconds{status="success|error"}
package worker
