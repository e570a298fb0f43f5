package buffer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ringwindow/metric"
)

// ringMetrics holds Prometheus metrics for ring operations.
type ringMetrics struct {
	// Counter metrics - directly incremented without stats duplication
	enqueued      prometheus.Counter
	dequeued      prometheus.Counter
	evicted       prometheus.Counter
	rejected      prometheus.Counter
	handlerErrors prometheus.Counter
	peeks         prometheus.Counter
	trims         prometheus.Counter
}

// sizer is the part of Ring read by the gauge functions at scrape time.
type sizer interface {
	Count() int
	Capacity() int
}

// newRingMetrics creates and registers ring metrics with the provided registry.
// Size, capacity and utilization are GaugeFuncs evaluated against ring on scrape.
func newRingMetrics(registry *metric.MetricsRegistry, prefix string, ring sizer) (*ringMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringwindow",
			Subsystem:   "ring",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        help,
		})
	}
	gaugeFunc := func(name, help string, fn func() float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "ringwindow",
			Subsystem:   "ring",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        help,
		}, fn)
	}

	m := &ringMetrics{
		enqueued:      counter("enqueued_total", "Total number of elements stored"),
		dequeued:      counter("dequeued_total", "Total number of elements removed"),
		evicted:       counter("evicted_total", "Total number of elements displaced by overwrite"),
		rejected:      counter("rejected_total", "Total number of enqueues refused because the ring was full"),
		handlerErrors: counter("handler_errors_total", "Total number of errors returned by eviction handlers"),
		peeks:         counter("peeks_total", "Total number of successful peeks"),
		trims:         counter("trims_total", "Total number of TrimExcess calls that changed capacity"),
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"ring_enqueued", m.enqueued},
		{"ring_dequeued", m.dequeued},
		{"ring_evicted", m.evicted},
		{"ring_rejected", m.rejected},
		{"ring_handler_errors", m.handlerErrors},
		{"ring_peeks", m.peeks},
		{"ring_trims", m.trims},
	}
	for _, c := range counters {
		if err := registry.RegisterCounter(prefix, c.name, c.c); err != nil {
			return nil, err
		}
	}

	gauges := []struct {
		name string
		g    prometheus.GaugeFunc
	}{
		{"ring_size", gaugeFunc("size", "Current number of elements in the ring",
			func() float64 { return float64(ring.Count()) })},
		{"ring_capacity", gaugeFunc("capacity", "Current capacity of the ring",
			func() float64 { return float64(ring.Capacity()) })},
		{"ring_utilization", gaugeFunc("utilization", "Ring utilization as a fraction (0.0 to 1.0)",
			func() float64 { return float64(ring.Count()) / float64(ring.Capacity()) })},
	}
	for _, g := range gauges {
		if err := registry.RegisterGaugeFunc(prefix, g.name, g.g); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *ringMetrics) recordEnqueue() { m.enqueued.Inc() }
func (m *ringMetrics) recordDequeue() { m.dequeued.Inc() }
func (m *ringMetrics) recordEviction() { m.evicted.Inc() }
func (m *ringMetrics) recordRejected() { m.rejected.Inc() }
func (m *ringMetrics) recordHandlerErrors(n int) { m.handlerErrors.Add(float64(n)) }
func (m *ringMetrics) recordPeek() { m.peeks.Inc() }
func (m *ringMetrics) recordTrim() { m.trims.Inc() }
