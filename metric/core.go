package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains module-level metrics shared by every window and client
type Metrics struct {
	// Ingest metrics
	SamplesIngested *prometheus.CounterVec
	SamplesRejected *prometheus.CounterVec
	IngestDuration  *prometheus.HistogramVec

	// Health
	HealthStatus *prometheus.GaugeVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
	NATSMessages   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		SamplesIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ringwindow",
				Subsystem: "window",
				Name:      "samples_ingested_total",
				Help:      "Total number of samples accepted into a window",
			},
			[]string{"window"},
		),

		SamplesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ringwindow",
				Subsystem: "window",
				Name:      "samples_rejected_total",
				Help:      "Total number of samples rejected by a window",
			},
			[]string{"window", "reason"},
		),

		IngestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ringwindow",
				Subsystem: "window",
				Name:      "ingest_duration_seconds",
				Help:      "Time spent decoding and storing one sample",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"window"},
		),

		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ringwindow",
				Subsystem: "health",
				Name:      "status",
				Help:      "Component health (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"component"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ringwindow",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ringwindow",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),

		NATSMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ringwindow",
				Subsystem: "nats",
				Name:      "messages_received_total",
				Help:      "Total number of NATS messages delivered to subscribers",
			},
			[]string{"subject"},
		),
	}
}

func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.SamplesIngested,
		c.SamplesRejected,
		c.IngestDuration,
		c.HealthStatus,
		c.NATSConnected,
		c.NATSReconnects,
		c.NATSMessages,
	}
}

// RecordIngested increments the accepted sample counter
func (c *Metrics) RecordIngested(window string) {
	c.SamplesIngested.WithLabelValues(window).Inc()
}

// RecordRejected increments the rejected sample counter
func (c *Metrics) RecordRejected(window, reason string) {
	c.SamplesRejected.WithLabelValues(window, reason).Inc()
}

// RecordIngestDuration records the time taken to ingest one sample
func (c *Metrics) RecordIngestDuration(window string, duration time.Duration) {
	c.IngestDuration.WithLabelValues(window).Observe(duration.Seconds())
}

// RecordHealth updates the health gauge for a component
func (c *Metrics) RecordHealth(component string, level int) {
	c.HealthStatus.WithLabelValues(component).Set(float64(level))
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}

// RecordNATSMessage increments the delivered message counter for subject
func (c *Metrics) RecordNATSMessage(subject string) {
	c.NATSMessages.WithLabelValues(subject).Inc()
}
