package buffer

import (
	"fmt"
	"iter"
	"slices"

	"github.com/c360/ringwindow/errors"
)

// snapshot is a consistent (state, head, count) triple. Elements are read
// from it with ringState.load, which fails once a position is consumed or
// overwritten, so callers retry the whole read on failure.
type snapshot[T any] struct {
	state *ringState[T]
	head  uint64
	count int
}

// snapshot reads version, state, head and tail, and retries if the version
// moved or the positions are not a valid window. While an overwrite is in
// flight the element being evicted is still counted, so a full ring reads as
// full for the whole eviction.
func (r *Ring[T]) snapshot() snapshot[T] {
	for spins := 0; ; spins++ {
		v := r.version.Load()
		s := r.state.Load()
		head := s.head.Load()
		tail := s.tail.Load()
		evicting := s.evicting.Load()
		if r.version.Load() != v || head > tail || tail-head > s.capacity {
			backoff(spins)
			continue
		}
		if evicting != 0 && evicting == head && tail-head < s.capacity &&
			s.slotAt(head-1).seq.Load() == readySeq(head-1) {
			head--
		}
		return snapshot[T]{state: s, head: head, count: int(tail - head)}
	}
}

// copyInto fills dst[:snap.count] and reports whether every element was still
// published at its position.
func (snap snapshot[T]) copyInto(dst []T) bool {
	for i := range snap.count {
		v, ok := snap.state.load(snap.head + uint64(i))
		if !ok {
			return false
		}
		dst[i] = v
	}
	return true
}

// ToSlice returns a copy of the contents, oldest first. The result is never nil.
func (r *Ring[T]) ToSlice() []T {
	var items []T
	for spins := 0; ; spins++ {
		snap := r.snapshot()
		items = slices.Grow(items[:0], snap.count)[:snap.count]
		if snap.copyInto(items) {
			return items
		}
		backoff(spins)
	}
}

// CopyTo copies the contents, oldest first, into dst starting at index.
// It fails with ErrIndexOutOfRange if index is outside [0, len(dst)] and with
// ErrDestinationTooSmall if the contents do not fit.
func (r *Ring[T]) CopyTo(dst []T, index int) error {
	if index < 0 || index > len(dst) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: index %d, destination length %d", ErrIndexOutOfRange, index, len(dst)),
			"Ring", "CopyTo", "validate index")
	}

	for spins := 0; ; spins++ {
		snap := r.snapshot()
		if snap.count > len(dst)-index {
			return errors.WrapInvalid(
				fmt.Errorf("%w: need %d, have %d", ErrDestinationTooSmall, snap.count, len(dst)-index),
				"Ring", "CopyTo", "validate destination")
		}
		if snap.copyInto(dst[index:]) {
			return nil
		}
		backoff(spins)
	}
}

// At returns the element at logical index, where 0 is the oldest.
// The index is checked against the count at the time of the call.
func (r *Ring[T]) At(index int) (T, error) {
	for spins := 0; ; spins++ {
		snap := r.snapshot()
		if index < 0 || index >= snap.count {
			var zero T
			return zero, errors.WrapInvalid(
				fmt.Errorf("%w: index %d, count %d", ErrIndexOutOfRange, index, snap.count),
				"Ring", "At", "validate index")
		}
		if v, ok := snap.state.load(snap.head + uint64(index)); ok {
			return v, nil
		}
		backoff(spins)
	}
}

// Peek returns the oldest element without removing it, or ErrBufferEmpty.
func (r *Ring[T]) Peek() (T, error) {
	item, ok := r.TryPeek()
	if !ok {
		return item, errors.WrapTransient(ErrBufferEmpty, "Ring", "Peek", "read oldest item")
	}
	return item, nil
}

// TryPeek returns the oldest element without removing it if there is one.
func (r *Ring[T]) TryPeek() (T, bool) {
	for spins := 0; ; spins++ {
		snap := r.snapshot()
		if snap.count == 0 {
			var zero T
			return zero, false
		}
		if v, ok := snap.state.load(snap.head); ok {
			r.stats.recordPeek()
			if r.metrics != nil {
				r.metrics.recordPeek()
			}
			return v, true
		}
		backoff(spins)
	}
}

// ContainsFunc reports whether any element satisfies match. match runs over a
// copy of the contents and may call methods on the ring.
func (r *Ring[T]) ContainsFunc(match func(T) bool) bool {
	return slices.ContainsFunc(r.ToSlice(), match)
}

// All iterates over a point-in-time copy of the contents, yielding logical
// index and element, oldest first.
func (r *Ring[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range r.ToSlice() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values iterates over a point-in-time copy of the contents, oldest first.
func (r *Ring[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range r.ToSlice() {
			if !yield(v) {
				return
			}
		}
	}
}
