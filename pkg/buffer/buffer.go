package buffer

import (
	"iter"
)

// Buffer is the queue surface implemented by Ring.
type Buffer[T any] interface {
	// Enqueue appends item, evicting the oldest element when the buffer is full
	// and overwrite is allowed.
	Enqueue(item T) error

	// TryEnqueue is Enqueue without the error; it reports whether item was stored.
	TryEnqueue(item T) bool

	// Dequeue removes and returns the oldest element.
	Dequeue() (T, error)

	// TryDequeue removes and returns the oldest element if there is one.
	TryDequeue() (T, bool)

	// DequeueBatch removes up to max elements, oldest first.
	DequeueBatch(max int) []T

	// Peek returns the oldest element without removing it.
	Peek() (T, error)

	// TryPeek is Peek without the error.
	TryPeek() (T, bool)

	// At returns the element at logical index (0 is the oldest).
	At(index int) (T, error)

	// ToSlice copies the current contents, oldest first.
	ToSlice() []T

	// CopyTo copies the current contents into dst starting at index.
	CopyTo(dst []T, index int) error

	// All iterates a point-in-time copy of the contents.
	All() iter.Seq2[int, T]

	// ContainsFunc reports whether any element satisfies match.
	ContainsFunc(match func(T) bool) bool

	// Count returns the number of elements currently stored.
	Count() int

	// Capacity returns the maximum number of elements the buffer can hold.
	Capacity() int

	// IsFull returns true if Count equals Capacity.
	IsFull() bool

	// IsEmpty returns true if the buffer holds no elements.
	IsEmpty() bool

	// Clear removes all elements.
	Clear()

	// Stats returns buffer statistics (always available for observability).
	Stats() *Statistics
}

var _ Buffer[int] = (*Ring[int])(nil)

// EvictionHandler is called with an element displaced by an overwriting enqueue.
// A non-nil error is returned to the caller of Enqueue after the new element
// has been stored.
//
// Handlers run synchronously on the enqueuing goroutine. They must not block
// and must not call Enqueue, TryEnqueue, Dequeue, TryDequeue, DequeueBatch,
// Clear or TrimExcess on the ring that invoked them: the evicting goroutine
// holds the ring's tail slot while handlers run and a mutating call from the
// handler can spin or deadlock. Read-only methods are safe.
type EvictionHandler[T any] func(item T) error

// Contains reports whether item is stored in r, using == for comparison.
func Contains[T comparable](r *Ring[T], item T) bool {
	return r.ContainsFunc(func(v T) bool { return v == item })
}
