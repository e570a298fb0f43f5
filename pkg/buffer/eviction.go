package buffer

import (
	"slices"
	"sync"
	"sync/atomic"
)

type handlerEntry[T any] struct {
	id uint64
	fn EvictionHandler[T]
}

// handlerList is a copy-on-write subscriber list. notify reads it without
// locking; add and remove serialize on mu and publish a fresh slice.
type handlerList[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries atomic.Pointer[[]handlerEntry[T]]
}

func (l *handlerList[T]) add(fn EvictionHandler[T]) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID

	var current []handlerEntry[T]
	if p := l.entries.Load(); p != nil {
		current = *p
	}
	next := append(slices.Clip(current), handlerEntry[T]{id: id, fn: fn})
	l.entries.Store(&next)

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *handlerList[T]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.entries.Load()
	if p == nil {
		return
	}
	next := slices.DeleteFunc(slices.Clone(*p), func(e handlerEntry[T]) bool {
		return e.id == id
	})
	l.entries.Store(&next)
}

// notify calls every handler in subscription order and collects their errors.
// A panicking handler stops the remaining handlers and propagates.
func (l *handlerList[T]) notify(item T) []error {
	p := l.entries.Load()
	if p == nil {
		return nil
	}

	var errs []error
	for _, e := range *p {
		if err := e.fn(item); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
