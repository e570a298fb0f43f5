package buffer

// Clear removes every element present when it starts. Elements enqueued
// concurrently may survive. Eviction handlers are not called.
func (r *Ring[T]) Clear() {
	r.gate.RLock()
	defer r.gate.RUnlock()

	s := r.state.Load()
	n := r.snapshot().count
	removed := 0
	for ; removed < n; removed++ {
		if _, ok := r.dequeue(s); !ok {
			break
		}
	}

	r.stats.recordClear()
	r.logger.Debug("ring cleared", "ring", r.name, "removed", removed)
}

// TrimExcess shrinks the backing array to the current count, with a minimum
// capacity of 1, preserving order. It blocks other mutating calls while it
// runs; readers continue against the previous array. Calling it again without
// intervening mutations is a no-op.
func (r *Ring[T]) TrimExcess() {
	r.gate.Lock()
	defer r.gate.Unlock()

	snap := r.snapshot()
	old, count := snap.state, snap.count
	newCap := max(count, 1)
	if uint64(newCap) == old.capacity {
		return
	}

	next := newRingState[T](newCap)
	for i := range count {
		p := old.slotAt(snap.head + uint64(i)).val.Load()
		next.slots[i].val.Store(p)
		next.slots[i].seq.Store(readySeq(uint64(i)))
	}
	next.tail.Store(uint64(count))

	r.state.Store(next)
	r.version.Add(1)
	r.stats.recordTrim()
	if r.metrics != nil {
		r.metrics.recordTrim()
	}

	r.logger.Debug("ring trimmed",
		"ring", r.name,
		"old_capacity", old.capacity,
		"new_capacity", newCap)
}
