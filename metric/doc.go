// Package metric provides Prometheus metrics registration and exposure for ringwindow.
//
// # Overview
//
// MetricsRegistry wraps a private prometheus.Registry. It carries the core
// module metrics (window ingest counters, health gauges, NATS connection
// metrics) plus Go runtime and process collectors, and lets components register
// their own collectors under a "service.metric" key:
//
//	registry := metric.NewMetricsRegistry()
//	err := registry.RegisterCounter("telemetry", "ring_enqueues", counter)
//
// Registering the same key twice, or a collector whose descriptor clashes with
// one already known to Prometheus, returns an error classified as invalid.
//
// # Serving
//
// Server exposes the registry over HTTP using promhttp:
//
//	srv := metric.NewServer(9090, "/metrics", registry)
//	srv.Handle("/window", win.Handler())
//	go srv.Start()
//	defer srv.Stop(ctx)
//
// A plain "/health" endpoint answers OK unless a handler is mounted for it.
package metric
