package buffer

import (
	"sync/atomic"
	"time"
)

// Statistics tracks ring activity. All fields are atomic; reads and updates
// never block.
type Statistics struct {
	enqueued      atomic.Int64
	dequeued      atomic.Int64
	evicted       atomic.Int64
	rejected      atomic.Int64
	handlerErrors atomic.Int64
	peeks         atomic.Int64
	clears        atomic.Int64
	trims         atomic.Int64

	currentSize atomic.Int64
	maxSize     atomic.Int64
	startTime   atomic.Int64 // unix nanoseconds
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	s := &Statistics{}
	s.startTime.Store(time.Now().UnixNano())
	return s
}

func (s *Statistics) recordEnqueue(size int64) {
	s.enqueued.Add(1)
	s.observeSize(size)
}

func (s *Statistics) recordDequeue(size int64) {
	s.dequeued.Add(1)
	s.currentSize.Store(size)
}

func (s *Statistics) recordEviction() { s.evicted.Add(1) }
func (s *Statistics) recordRejected() { s.rejected.Add(1) }
func (s *Statistics) recordHandlerErrors(n int64) { s.handlerErrors.Add(n) }
func (s *Statistics) recordPeek() { s.peeks.Add(1) }
func (s *Statistics) recordClear() { s.clears.Add(1) }
func (s *Statistics) recordTrim() { s.trims.Add(1) }

// observeSize stores the current size and raises the high-water mark.
func (s *Statistics) observeSize(size int64) {
	s.currentSize.Store(size)
	for {
		peak := s.maxSize.Load()
		if size <= peak || s.maxSize.CompareAndSwap(peak, size) {
			return
		}
	}
}

// Enqueued returns the number of elements stored, including overwriting enqueues.
func (s *Statistics) Enqueued() int64 { return s.enqueued.Load() }

// Dequeued returns the number of elements removed by Dequeue, DequeueBatch and Clear.
func (s *Statistics) Dequeued() int64 { return s.dequeued.Load() }

// Evicted returns the number of elements displaced by overwriting enqueues.
func (s *Statistics) Evicted() int64 { return s.evicted.Load() }

// Rejected returns the number of enqueues refused because the ring was full.
func (s *Statistics) Rejected() int64 { return s.rejected.Load() }

// HandlerErrors returns the number of errors returned by eviction handlers.
func (s *Statistics) HandlerErrors() int64 { return s.handlerErrors.Load() }

// Peeks returns the number of successful Peek and TryPeek calls.
func (s *Statistics) Peeks() int64 { return s.peeks.Load() }

// Clears returns the number of Clear calls.
func (s *Statistics) Clears() int64 { return s.clears.Load() }

// Trims returns the number of TrimExcess calls that changed capacity.
func (s *Statistics) Trims() int64 { return s.trims.Load() }

// CurrentSize returns the element count observed by the last enqueue or dequeue.
func (s *Statistics) CurrentSize() int64 { return s.currentSize.Load() }

// MaxSize returns the highest element count observed.
func (s *Statistics) MaxSize() int64 { return s.maxSize.Load() }

// Uptime returns how long the ring has been running.
func (s *Statistics) Uptime() time.Duration {
	return time.Since(time.Unix(0, s.startTime.Load()))
}

// Throughput returns the average number of enqueues per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed <= 0 {
		return 0.0
	}
	return float64(s.Enqueued()) / elapsed.Seconds()
}

// EvictionRate returns the fraction of enqueues that displaced an element (0.0 to 1.0).
func (s *Statistics) EvictionRate() float64 {
	enqueued := s.Enqueued()
	if enqueued == 0 {
		return 0.0
	}
	return float64(s.Evicted()) / float64(enqueued)
}

// RejectionRate returns the fraction of enqueue attempts that were refused (0.0 to 1.0).
func (s *Statistics) RejectionRate() float64 {
	rejected := s.Rejected()
	attempts := s.Enqueued() + rejected
	if attempts == 0 {
		return 0.0
	}
	return float64(rejected) / float64(attempts)
}

// Utilization returns CurrentSize as a fraction of capacity (0.0 to 1.0).
func (s *Statistics) Utilization(capacity int64) float64 {
	if capacity == 0 {
		return 0.0
	}
	return float64(s.CurrentSize()) / float64(capacity)
}

// Reset resets all statistics to zero.
func (s *Statistics) Reset() {
	s.enqueued.Store(0)
	s.dequeued.Store(0)
	s.evicted.Store(0)
	s.rejected.Store(0)
	s.handlerErrors.Store(0)
	s.peeks.Store(0)
	s.clears.Store(0)
	s.trims.Store(0)
	s.currentSize.Store(0)
	s.maxSize.Store(0)
	s.startTime.Store(time.Now().UnixNano())
}

// StatsSummary is a point-in-time copy of all statistics.
type StatsSummary struct {
	Enqueued      int64         `json:"enqueued"`
	Dequeued      int64         `json:"dequeued"`
	Evicted       int64         `json:"evicted"`
	Rejected      int64         `json:"rejected"`
	HandlerErrors int64         `json:"handler_errors"`
	Peeks         int64         `json:"peeks"`
	Clears        int64         `json:"clears"`
	Trims         int64         `json:"trims"`
	CurrentSize   int64         `json:"current_size"`
	MaxSize       int64         `json:"max_size"`
	Throughput    float64       `json:"throughput"`
	EvictionRate  float64       `json:"eviction_rate"`
	RejectionRate float64       `json:"rejection_rate"`
	Uptime        time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Enqueued:      s.Enqueued(),
		Dequeued:      s.Dequeued(),
		Evicted:       s.Evicted(),
		Rejected:      s.Rejected(),
		HandlerErrors: s.HandlerErrors(),
		Peeks:         s.Peeks(),
		Clears:        s.Clears(),
		Trims:         s.Trims(),
		CurrentSize:   s.CurrentSize(),
		MaxSize:       s.MaxSize(),
		Throughput:    s.Throughput(),
		EvictionRate:  s.EvictionRate(),
		RejectionRate: s.RejectionRate(),
		Uptime:        s.Uptime(),
	}
}
