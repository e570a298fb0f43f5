package buffer

import (
	"github.com/c360/ringwindow/errors"
)

// Dequeue removes and returns the oldest element, or ErrBufferEmpty.
func (r *Ring[T]) Dequeue() (T, error) {
	item, ok := r.TryDequeue()
	if !ok {
		return item, errors.WrapTransient(ErrBufferEmpty, "Ring", "Dequeue", "remove oldest item")
	}
	return item, nil
}

// TryDequeue removes and returns the oldest element if there is one.
func (r *Ring[T]) TryDequeue() (T, bool) {
	r.gate.RLock()
	defer r.gate.RUnlock()

	return r.dequeue(r.state.Load())
}

// DequeueBatch removes up to max elements, oldest first. It returns an empty
// slice when the ring is empty or max is not positive.
func (r *Ring[T]) DequeueBatch(max int) []T {
	if max <= 0 {
		return []T{}
	}

	r.gate.RLock()
	defer r.gate.RUnlock()

	s := r.state.Load()
	items := make([]T, 0, min(max, int(s.capacity)))
	for len(items) < max {
		item, ok := r.dequeue(s)
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items
}

func (r *Ring[T]) dequeue(s *ringState[T]) (item T, ok bool) {
	for spins := 0; ; spins++ {
		pos := s.head.Load()
		sl := s.slotAt(pos)
		seq := sl.seq.Load()
		ready := readySeq(pos)

		switch {
		case seq == ready:
			if s.head.CompareAndSwap(pos, pos+1) {
				p := sl.val.Swap(nil)
				sl.seq.Store(freeSeq(pos + s.capacity))
				r.version.Add(1)
				r.stats.recordDequeue(s.size())
				if r.metrics != nil {
					r.metrics.recordDequeue()
				}
				return *p, true
			}

		case seq < ready:
			if s.tail.Load() <= pos {
				return item, false
			}
			// A producer has claimed pos and not yet published it.
		}

		backoff(spins)
	}
}
