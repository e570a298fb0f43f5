package buffer

import "iter"

// Segment is a view over a contiguous run of slots in the ring's backing array.
// It does not copy: each read sees the slot as it is at that moment, so an
// element dequeued after Segments returned reads as vacant and an overwritten
// element reads as its replacement.
type Segment[T any] struct {
	slots  []slot[T]
	offset int
}

// Segments returns the stored elements as at most two runs of the backing
// array, oldest first. The second segment is empty unless the contents wrap
// around the end of the array.
func (r *Ring[T]) Segments() (first, second Segment[T]) {
	snap := r.snapshot()
	if snap.count == 0 {
		return Segment[T]{}, Segment[T]{}
	}

	s := snap.state
	start := int(snap.head % s.capacity)
	end := start + snap.count
	if end <= int(s.capacity) {
		return Segment[T]{slots: s.slots[start:end]}, Segment[T]{offset: snap.count}
	}

	firstLen := int(s.capacity) - start
	return Segment[T]{slots: s.slots[start:]},
		Segment[T]{slots: s.slots[:snap.count-firstLen], offset: firstLen}
}

// Len returns the number of slots in the segment.
func (g Segment[T]) Len() int {
	return len(g.slots)
}

// Offset returns the logical index of the segment's first element.
func (g Segment[T]) Offset() int {
	return g.offset
}

// At returns the element in slot i of the segment. ok is false if i is out of
// range or the slot is vacant.
func (g Segment[T]) At(i int) (v T, ok bool) {
	if i < 0 || i >= len(g.slots) {
		return v, false
	}
	p := g.slots[i].val.Load()
	if p == nil {
		return v, false
	}
	return *p, true
}

// All yields logical index and element for every occupied slot in the segment.
func (g Segment[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range g.slots {
			v, ok := g.At(i)
			if !ok {
				continue
			}
			if !yield(g.offset+i, v) {
				return
			}
		}
	}
}

// AppendTo appends the segment's occupied slots to dst and returns the result.
func (g Segment[T]) AppendTo(dst []T) []T {
	for _, v := range g.All() {
		dst = append(dst, v)
	}
	return dst
}
