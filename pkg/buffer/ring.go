package buffer

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/c360/ringwindow/errors"
)

// yieldEvery bounds how long a CAS loop spins before yielding the processor.
const yieldEvery = 64

// slot is one cell of the backing array.
//
// seq encodes which logical position may touch the slot next:
// freeSeq(p) means a producer at position p may claim it, readySeq(p) means
// the element for position p is published and a consumer may take it.
// val is nil while the slot is vacant, so a stored zero value of T is never
// mistaken for an empty slot.
type slot[T any] struct {
	seq atomic.Uint64
	val atomic.Pointer[T]
}

func freeSeq(pos uint64) uint64  { return pos << 1 }
func readySeq(pos uint64) uint64 { return pos<<1 | 1 }

// ringState is the backing array plus its monotonic head and tail positions.
// head is the logical position of the oldest element and tail the position the
// next element will take; count is tail-head. A state is replaced wholesale by
// TrimExcess and is never mutated after being replaced.
//
// evicting is non-zero while an overwriting producer owns the oldest slot. It
// holds the head value the producer moved to, so the evicted element at
// evicting-1 stays part of snapshots until the new element is committed.
type ringState[T any] struct {
	slots    []slot[T]
	capacity uint64
	_        cpu.CacheLinePad
	head     atomic.Uint64
	evicting atomic.Uint64
	_        cpu.CacheLinePad
	tail     atomic.Uint64
	_        cpu.CacheLinePad
}

func newRingState[T any](capacity int) *ringState[T] {
	s := &ringState[T]{
		slots:    make([]slot[T], capacity),
		capacity: uint64(capacity),
	}
	for i := range s.slots {
		s.slots[i].seq.Store(freeSeq(uint64(i)))
	}
	return s
}

func (s *ringState[T]) slotAt(pos uint64) *slot[T] {
	return &s.slots[pos%s.capacity]
}

// size is a best-effort element count for statistics, clamped to [0, capacity].
func (s *ringState[T]) size() int64 {
	tail := s.tail.Load()
	head := s.head.Load()
	if head >= tail {
		return 0
	}
	return int64(min(tail-head, s.capacity))
}

// load reads the element at logical position pos if it is still published for
// that position. ok is false when the slot was consumed, overwritten or not yet
// written.
func (s *ringState[T]) load(pos uint64) (v T, ok bool) {
	sl := s.slotAt(pos)
	want := readySeq(pos)
	if sl.seq.Load() != want {
		return v, false
	}
	p := sl.val.Load()
	if p == nil || sl.seq.Load() != want {
		return v, false
	}
	return *p, true
}

// Ring is a bounded FIFO ring buffer safe for concurrent use by any number of
// producers and consumers.
//
// Enqueue, Dequeue and their Try variants are lock-free CAS loops. Read-only
// methods never block. TrimExcess takes an exclusive lock and mutating calls
// wait for it to finish.
type Ring[T any] struct {
	state     atomic.Pointer[ringState[T]]
	version   atomic.Uint64
	overwrite atomic.Bool

	// gate is held shared by mutating calls and exclusively by TrimExcess
	gate sync.RWMutex

	evicting handlerList[T]
	evicted  handlerList[T]

	name    string
	logger  *slog.Logger
	stats   *Statistics // ALWAYS initialized for observability
	metrics *ringMetrics
}

// NewRing creates an empty ring with the given capacity.
// Overwrite is enabled unless WithOverwrite(false) is passed.
func NewRing[T any](capacity int, options ...Option[T]) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity),
			"Ring", "NewRing", "validate capacity")
	}

	r, err := newRing(newRingState[T](capacity), applyOptions(options...))
	if err != nil {
		return nil, err
	}

	r.logger.Debug("ring created",
		"ring", r.name,
		"capacity", capacity,
		"allow_overwrite", r.AllowOverwrite())

	return r, nil
}

// NewRingFrom creates a ring pre-populated with items, oldest first.
// A capacity of 0 sizes the ring to len(items), with a minimum of 1.
// When items does not fit, overwrite keeps the newest capacity items; without
// overwrite construction fails with ErrSourceTooLarge. Eviction handlers are
// not called for items dropped here.
func NewRingFrom[T any](items []T, capacity int, options ...Option[T]) (*Ring[T], error) {
	if capacity < 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity),
			"Ring", "NewRingFrom", "validate capacity")
	}
	if capacity == 0 {
		capacity = max(len(items), 1)
	}

	opts := applyOptions(options...)
	if len(items) > capacity {
		if !opts.allowOverwrite {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %d items, capacity %d", ErrSourceTooLarge, len(items), capacity),
				"Ring", "NewRingFrom", "populate ring")
		}
		items = items[len(items)-capacity:]
	}

	state := newRingState[T](capacity)
	for i := range items {
		v := items[i]
		state.slots[i].val.Store(&v)
		state.slots[i].seq.Store(readySeq(uint64(i)))
	}
	state.tail.Store(uint64(len(items)))

	r, err := newRing(state, opts)
	if err != nil {
		return nil, err
	}
	r.stats.observeSize(int64(len(items)))

	r.logger.Debug("ring created from items",
		"ring", r.name,
		"capacity", capacity,
		"count", len(items),
		"allow_overwrite", r.AllowOverwrite())

	return r, nil
}

func newRing[T any](state *ringState[T], opts *ringOptions[T]) (*Ring[T], error) {
	r := &Ring[T]{
		name:   opts.name,
		logger: opts.logger,
		stats:  NewStatistics(),
	}
	r.state.Store(state)
	r.overwrite.Store(opts.allowOverwrite)

	for _, h := range opts.onEvicting {
		r.evicting.add(h)
	}
	for _, h := range opts.onEvicted {
		r.evicted.add(h)
	}

	if opts.metricsReg != nil {
		m, err := newRingMetrics(opts.metricsReg, opts.metricsPrefix, r)
		if err != nil {
			return nil, errors.WrapTransient(err, "Ring", "newRing", "metrics registration")
		}
		r.metrics = m
	}

	return r, nil
}

// Name returns the name used in log records and metric labels.
func (r *Ring[T]) Name() string {
	return r.name
}

// Capacity returns the maximum number of elements the ring can hold.
func (r *Ring[T]) Capacity() int {
	return int(r.state.Load().capacity)
}

// Count returns the number of elements currently stored.
func (r *Ring[T]) Count() int {
	return r.snapshot().count
}

// IsEmpty returns true if the ring holds no elements.
func (r *Ring[T]) IsEmpty() bool {
	return r.Count() == 0
}

// IsFull returns true if Count equals Capacity.
func (r *Ring[T]) IsFull() bool {
	snap := r.snapshot()
	return snap.count == int(snap.state.capacity)
}

// AllowOverwrite reports whether a full ring evicts its oldest element on Enqueue.
func (r *Ring[T]) AllowOverwrite() bool {
	return r.overwrite.Load()
}

// SetAllowOverwrite changes the overwrite policy. Safe to call at any time.
func (r *Ring[T]) SetAllowOverwrite(allow bool) {
	r.overwrite.Store(allow)
}

// Version returns the mutation counter. It increases on every successful
// enqueue, dequeue, clear and resize.
func (r *Ring[T]) Version() uint64 {
	return r.version.Load()
}

// Stats returns ring statistics (always available for observability).
func (r *Ring[T]) Stats() *Statistics {
	return r.stats
}

// OnEvicting subscribes handler to pre-eviction notifications. Handlers run in
// subscription order before the evicted slot is overwritten. The returned
// function unsubscribes.
func (r *Ring[T]) OnEvicting(handler EvictionHandler[T]) (unsubscribe func()) {
	return r.evicting.add(handler)
}

// OnEvicted subscribes handler to post-eviction notifications. Handlers run in
// subscription order after the new element has been stored. The returned
// function unsubscribes.
func (r *Ring[T]) OnEvicted(handler EvictionHandler[T]) (unsubscribe func()) {
	return r.evicted.add(handler)
}

func backoff(spins int) {
	if spins%yieldEvery == yieldEvery-1 {
		runtime.Gosched()
	}
}
