// Package ringwindow is a bounded, lock-free FIFO ring buffer and the
// telemetry service built on it.
//
// # Layout
//
// The core is pkg/buffer: a generic multi-producer multi-consumer Ring with
// CAS enqueue and dequeue, an overwrite-on-full policy, synchronous eviction
// notification, version-checked snapshots and TrimExcess. Everything else uses
// it:
//
//   - pkg/window keeps a rolling window of samples in a Ring and serves it
//     over HTTP
//   - pkg/worker is a worker pool whose queue is a Ring
//   - pkg/soak drives concurrent producers and consumers against a Ring and
//     checks its counting invariants
//   - natsclient feeds windows from NATS subjects
//   - config, health, metric, errors and pkg/retry are the shared
//     infrastructure
//
// # Binaries
//
//	./bin/ringwindow --config config.yaml   # window service
//	./bin/ringsoak --producers=8 --items=100000 --capacity=64
//
// # Testing
//
//	go test -race ./...
//	go test -tags=integration ./natsclient   # needs Docker
package ringwindow
