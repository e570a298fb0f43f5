package buffer

import (
	"fmt"

	"github.com/c360/ringwindow/errors"
)

// Enqueue appends item at the tail.
//
// When the ring is full and overwrite is allowed, the oldest element is evicted
// in the same step: OnEvicting handlers see it before the slot is reused and
// OnEvicted handlers after item is stored. Handler errors are joined and
// returned wrapped with ErrEvictionHandler; item is stored regardless.
// When the ring is full and overwrite is disabled, Enqueue returns ErrBufferFull
// and the ring is unchanged.
func (r *Ring[T]) Enqueue(item T) error {
	r.gate.RLock()
	defer r.gate.RUnlock()

	stored, err := r.enqueue(r.state.Load(), item)
	if !stored {
		return errors.WrapTransient(
			fmt.Errorf("%w: capacity %d", ErrBufferFull, r.Capacity()),
			"Ring", "Enqueue", "append item")
	}
	return err
}

// TryEnqueue appends item and reports whether it was stored. It returns false
// only when the ring is full and overwrite is disabled. Eviction handler errors
// are logged and otherwise ignored.
func (r *Ring[T]) TryEnqueue(item T) bool {
	r.gate.RLock()
	defer r.gate.RUnlock()

	stored, err := r.enqueue(r.state.Load(), item)
	if err != nil {
		r.logger.Warn("eviction handler error ignored",
			"ring", r.name,
			"error", err)
	}
	return stored
}

func (r *Ring[T]) enqueue(s *ringState[T], item T) (bool, error) {
	v := &item

	for spins := 0; ; spins++ {
		pos := s.tail.Load()
		sl := s.slotAt(pos)
		seq := sl.seq.Load()
		free := freeSeq(pos)

		switch {
		case seq == free:
			if s.tail.CompareAndSwap(pos, pos+1) {
				sl.val.Store(v)
				sl.seq.Store(readySeq(pos))
				r.version.Add(1)
				r.recordEnqueue(s)
				return true, nil
			}

		case seq < free:
			// The slot still belongs to position pos-capacity. Only a ring
			// observed full at this tail can reject or evict.
			head := s.head.Load()
			if head > pos || pos-head < s.capacity {
				break
			}
			if !r.overwrite.Load() {
				r.stats.recordRejected()
				if r.metrics != nil {
					r.metrics.recordRejected()
				}
				return false, nil
			}
			oldest := pos - s.capacity
			if head == oldest && seq == readySeq(oldest) && s.evicting.CompareAndSwap(0, oldest+1) {
				if s.head.CompareAndSwap(oldest, oldest+1) {
					return true, r.overwriteOldest(s, pos, v)
				}
				s.evicting.Store(0)
			}
		}

		backoff(spins)
	}
}

// overwriteOldest replaces the element at pos-capacity with v. The caller has
// set the evicting marker and advanced head past the oldest position, which
// pins tail at pos until the new element is committed. The old element stays
// published for its position while OnEvicting handlers run.
func (r *Ring[T]) overwriteOldest(s *ringState[T], pos uint64, v *T) error {
	evicted := *s.slotAt(pos).val.Load()

	errs := r.notifyEvicting(s, pos, v, evicted)
	errs = append(errs, r.evicted.notify(evicted)...)

	if len(errs) == 0 {
		return nil
	}

	r.stats.recordHandlerErrors(int64(len(errs)))
	if r.metrics != nil {
		r.metrics.recordHandlerErrors(len(errs))
	}
	err := handlerError("Enqueue", errs...)
	r.logger.Debug("eviction handler failed",
		"ring", r.name,
		"handler_errors", len(errs),
		"error", err)
	return err
}

// notifyEvicting runs the OnEvicting handlers and then commits v at pos, even
// if a handler panics.
func (r *Ring[T]) notifyEvicting(s *ringState[T], pos uint64, v *T, evicted T) []error {
	sl := s.slotAt(pos)
	defer func() {
		// tail moves first so no snapshot counts fewer than capacity elements;
		// readers of pos retry until its sequence is published.
		s.tail.Store(pos + 1)
		sl.seq.Store(freeSeq(pos - s.capacity))
		sl.val.Store(v)
		sl.seq.Store(readySeq(pos))
		s.evicting.Store(0)
		r.version.Add(1)
		r.stats.recordEviction()
		if r.metrics != nil {
			r.metrics.recordEviction()
		}
		r.recordEnqueue(s)
	}()

	return r.evicting.notify(evicted)
}

func (r *Ring[T]) recordEnqueue(s *ringState[T]) {
	r.stats.recordEnqueue(s.size())
	if r.metrics != nil {
		r.metrics.recordEnqueue()
	}
}
