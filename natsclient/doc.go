// Package natsclient provides the NATS connection used to feed sample windows,
// with retried connects, automatic reconnection and Prometheus connection metrics.
//
// The client wraps the standard NATS Go client. Connect retries the initial dial
// with exponential backoff from pkg/retry; once connected, reconnection is handled
// by the NATS library using the configured limits. Status transitions are:
// Disconnected → Connecting → Connected → Reconnecting → Connected.
//
// # Basic Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("ringwindow"),
//	    natsclient.WithLogger(logger),
//	    natsclient.WithMetrics(registry),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	err = client.Subscribe(ctx, "samples.>", func(msgCtx context.Context, data []byte) {
//	    // msgCtx carries the per-message timeout (30s by default)
//	})
//
// # Errors
//
// Subscribe, Publish, Flush and RTT return an error matching errors.ErrNotConnected
// before Connect succeeds. Connection failures are classified transient. Invalid
// options fail NewClient with an error classified invalid.
//
// # Shutdown
//
// Close unsubscribes everything, drains the connection and closes it. The drain
// is bounded by the drain timeout and by the deadline of the context passed to
// Close. Close may be called more than once.
//
// # Testing
//
// Integration tests start a NATS server with testcontainers:
//
//	go test -tags integration ./natsclient
package natsclient
