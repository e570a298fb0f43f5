// Package buffer provides a bounded, lock-free, multi-producer multi-consumer ring
// buffer with an optional overwrite-on-full policy, synchronous eviction
// notification, built-in statistics and optional Prometheus metrics.
//
// # Overview
//
// Ring is a generic FIFO queue over a fixed backing array. Any number of goroutines
// may enqueue and dequeue concurrently. Enqueue and Dequeue are CAS loops that never
// take a lock; bulk reads work from a version-checked snapshot and never block
// writers. TrimExcess is the single operation that takes an exclusive lock.
//
// # Quick Start
//
// Basic ring creation:
//
//	ring, err := buffer.NewRing[int](1000)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Append data
//	err = ring.Enqueue(42)
//
//	// Remove data
//	value, ok := ring.TryDequeue()
//
// Rejecting instead of overwriting, with metrics:
//
//	ring, err := buffer.NewRing[[]byte](5000,
//		buffer.WithOverwrite[[]byte](false),
//		buffer.WithMetrics[[]byte](registry, "network_input"),
//	)
//
// # Overwrite and Eviction
//
// With overwrite enabled (the default) an Enqueue on a full ring evicts the oldest
// element in the same atomic step as the insertion, so Count never exceeds Capacity.
// Subscribers are told about the displaced element twice:
//
//	ring.OnEvicting(func(old Event) error {
//		// runs before the slot is reused; old is still counted and visible
//		return nil
//	})
//	ring.OnEvicted(func(old Event) error {
//		// runs after the new element is stored
//		return archive(old)
//	})
//
// Handlers run synchronously on the enqueuing goroutine, in subscription order.
// Errors from all handlers are joined and returned from Enqueue wrapped with
// ErrEvictionHandler; the new element is stored regardless. A panicking handler
// propagates out of Enqueue after the new element has been committed.
//
// Handlers must not block and must not call mutating methods (Enqueue, TryEnqueue,
// Dequeue, TryDequeue, DequeueBatch, Clear, TrimExcess) on the ring that invoked
// them. Read-only methods are safe.
//
// With overwrite disabled, Enqueue on a full ring returns ErrBufferFull and
// TryEnqueue returns false. Neither changes the ring.
//
// # Consistent Reads
//
// ToSlice, CopyTo, All, Values, ContainsFunc, At, Peek and Count read the version
// counter, the ring state, head and tail, then re-read the version and retry if
// anything moved. Each element is then read only if its slot is still published
// for the expected position; otherwise the whole read retries. A reader never
// observes a torn or half-written element and never sees more than Capacity
// elements. Under sustained write contention a reader may retry many times.
//
// Segments returns at most two views over the backing array without copying.
// Segment reads are live and reflect later dequeues and overwrites.
//
// # Resizing
//
// TrimExcess shrinks the backing array to the current count (minimum 1). It holds
// an exclusive lock that mutating calls share, so enqueues and dequeues wait for it
// briefly. Readers keep working against the previous array, which is never
// modified after it is replaced.
//
// # Observability
//
// Statistics are always collected with atomic counters and are available through
// Stats. WithMetrics additionally registers Prometheus counters and scrape-time
// gauges for size, capacity and utilization:
//
//	ringwindow_ring_enqueued_total{component="..."}
//	ringwindow_ring_dequeued_total{component="..."}
//	ringwindow_ring_evicted_total{component="..."}
//	ringwindow_ring_rejected_total{component="..."}
//	ringwindow_ring_handler_errors_total{component="..."}
//	ringwindow_ring_peeks_total{component="..."}
//	ringwindow_ring_trims_total{component="..."}
//	ringwindow_ring_size{component="..."}
//	ringwindow_ring_capacity{component="..."}
//	ringwindow_ring_utilization{component="..."}
//
// # Errors
//
// Argument errors (ErrInvalidCapacity, ErrIndexOutOfRange, ErrDestinationTooSmall)
// match errors.ErrInvalidArgument and are classified invalid. State errors
// (ErrBufferFull, ErrBufferEmpty) match errors.ErrInvalidOperation and are
// classified transient since a later call can succeed. ErrSourceTooLarge matches
// errors.ErrInvalidOperation and is classified invalid.
//
// # Testing
//
// The package includes tests with race detection:
//
//	go test -race ./pkg/buffer
//
// Benchmarks are available to validate performance:
//
//	go test -bench=. ./pkg/buffer
package buffer
