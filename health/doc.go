// Package health tracks the health of sample windows and the NATS connection and
// aggregates them into a single system status.
//
// # Health States
//
// A Status is healthy, degraded or unhealthy. A window reports degraded when it
// evicts samples faster than a configured rate, and the NATS client reports
// unhealthy while disconnected. Level maps each state to the value exported by
// the ringwindow_health_status gauge (0 healthy, 1 degraded, 2 unhealthy).
//
// # Basic Usage
//
//	monitor := health.NewMonitor(registry.CoreMetrics())
//
//	// Pull-style checks evaluated on every request
//	monitor.Register("window.cpu", win.Health)
//
//	// Push-style updates
//	monitor.UpdateUnhealthy("nats", "connection lost")
//
//	http.Handle("/health", monitor.Handler("ringwindow"))
//
// # Aggregation
//
// AggregateHealth combines every component: any unhealthy component makes the
// system unhealthy, otherwise any degraded component makes it degraded. The HTTP
// handler answers 503 for an unhealthy system.
//
// # Error Messages
//
// FromError builds an unhealthy status from an error with URLs, paths, addresses,
// ports and credentials replaced by placeholders, so health output can be exposed
// without leaking connection details.
package health
