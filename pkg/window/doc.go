// Package window keeps a rolling window of telemetry samples on top of a
// lock-free buffer.Ring.
//
// A Window holds the most recent Capacity samples. With overwrite enabled (the
// default from DefaultConfig) a full window evicts its oldest sample for every
// new one; the window counts evictions and remembers the last evicted sample.
// With overwrite disabled a full window rejects new samples until Drain makes
// room.
//
// # Feeding a Window
//
//	win, err := window.New(window.DefaultConfig("cpu", 1024))
//	if err != nil {
//		return err
//	}
//
//	// Directly
//	err = win.Add(window.Sample{Subject: "samples.cpu", Value: 0.42})
//
//	// From raw JSON
//	err = win.Ingest(ctx, []byte(`{"subject": "samples.cpu", "value": 0.42}`))
//
//	// From NATS
//	err = win.Attach(ctx, natsClient, "samples.>")
//
//	// From NATS, ingesting on a worker pool instead of the delivery goroutine
//	pool, err := win.NewIngestPool(4, 4096, registry)
//	err = pool.Start(ctx)
//	err = win.AttachQueued(ctx, natsClient, "samples.>", pool)
//
// Ingest rejects malformed payloads with errors.ErrInvalidData. With
// ValidateSchema set, payloads are first checked against a JSON schema, which
// also rejects unknown value types in labels and malformed timestamps.
//
// # Reading a Window
//
// Samples, Latest and Summary each work from one consistent snapshot of the
// ring, so a summary never mixes samples from before and after a concurrent
// write. Handler serves the summary and samples over HTTP:
//
//	GET /window?latest=10
//
// # Health
//
// Health reports degraded when the ratio of evicted to ingested samples rises
// above DegradedEvictionRate, which means producers outpace the consumers
// draining the window.
//
// # Metrics
//
// With a Registry, the ring exports ringwindow_ring_* series labelled
// component="window_<name>" and the window records
// ringwindow_window_samples_ingested_total, samples_rejected_total (by reason)
// and ingest_duration_seconds.
package window
