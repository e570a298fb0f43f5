package window

import (
	"time"

	"github.com/c360/ringwindow/health"
)

// Summary describes the window contents at one point in time
type Summary struct {
	Name        string    `json:"name"`
	Count       int       `json:"count"`
	Capacity    int       `json:"capacity"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Mean        float64   `json:"mean"`
	Oldest      time.Time `json:"oldest,omitzero"`
	Newest      time.Time `json:"newest,omitzero"`
	Ingested    uint64    `json:"ingested"`
	Rejected    uint64    `json:"rejected"`
	Evicted     uint64    `json:"evicted"`
	LastEvicted *Sample   `json:"last_evicted,omitempty"`
}

// Summary computes statistics over a single consistent snapshot
func (w *Window) Summary() Summary {
	return w.summarize(w.ring.ToSlice())
}

func (w *Window) summarize(samples []Sample) Summary {
	s := Summary{
		Name:        w.name,
		Count:       len(samples),
		Capacity:    w.ring.Capacity(),
		Ingested:    w.ingested.Load(),
		Rejected:    w.rejected.Load(),
		Evicted:     w.evicted.Load(),
		LastEvicted: w.lastEvicted.Load(),
	}
	if len(samples) == 0 {
		return s
	}

	s.Oldest = samples[0].Timestamp
	s.Newest = samples[len(samples)-1].Timestamp
	s.Min, s.Max = samples[0].Value, samples[0].Value
	sum := 0.0
	for _, sample := range samples {
		s.Min = min(s.Min, sample.Value)
		s.Max = max(s.Max, sample.Value)
		sum += sample.Value
	}
	s.Mean = sum / float64(len(samples))
	return s
}

// EvictionRate returns evicted samples per ingested sample
func (w *Window) EvictionRate() float64 {
	ingested := w.ingested.Load()
	if ingested == 0 {
		return 0
	}
	return float64(w.evicted.Load()) / float64(ingested)
}

// Health reports degraded when the eviction rate exceeds the configured
// threshold, meaning consumers are not keeping up with producers.
func (w *Window) Health() health.Status {
	rate := w.EvictionRate()

	var status health.Status
	if w.degradedRate > 0 && rate > w.degradedRate {
		status = health.NewDegraded(w.name, "eviction rate above threshold")
	} else {
		status = health.NewHealthy(w.name, "ok")
	}

	metrics := &health.Metrics{
		Uptime:       time.Since(w.startTime),
		Count:        w.ring.Count(),
		Capacity:     w.ring.Capacity(),
		Ingested:     w.ingested.Load(),
		Rejected:     w.rejected.Load(),
		Evicted:      w.evicted.Load(),
		EvictionRate: rate,
	}
	if last := w.lastActivity.Load(); last != 0 {
		metrics.LastActivity = time.Unix(0, last)
	}
	return status.WithMetrics(metrics)
}
