package window

import (
	"context"
	"slices"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/worker"
)

// Queue accepts payloads for asynchronous ingestion.
// worker.Pool[[]byte] satisfies it.
type Queue interface {
	Submit(data []byte) error
}

// NewIngestPool returns a stopped worker pool whose workers call Ingest.
// When the window overwrites, the pool sheds its oldest payload instead of
// rejecting new ones. registry may be nil.
func (w *Window) NewIngestPool(workers, queueSize int, registry *metric.MetricsRegistry) (*worker.Pool[[]byte], error) {
	opts := []worker.Option[[]byte]{worker.WithLogger[[]byte](w.logger)}
	if w.ring.AllowOverwrite() {
		opts = append(opts, worker.WithShedOldest[[]byte]())
	}
	if registry != nil {
		opts = append(opts, worker.WithMetricsRegistry[[]byte](registry, "ingest_"+w.name))
	}

	pool, err := worker.NewPool(workers, queueSize, w.Ingest, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "Window", "NewIngestPool", "create pool")
	}
	return pool, nil
}

// AttachQueued subscribes like Attach but hands each payload to q instead of
// ingesting it on the delivery goroutine. Payloads q refuses count as
// rejected with reason "queue".
func (w *Window) AttachQueued(ctx context.Context, sub Subscriber, subject string, q Queue) error {
	err := sub.Subscribe(ctx, subject, func(_ context.Context, data []byte) {
		if err := q.Submit(slices.Clone(data)); err != nil {
			_ = w.reject("queue", err)
			w.logger.Debug("payload not queued", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, "Window", "AttachQueued", "subscribe to "+subject)
	}

	w.logger.Info("window attached", "subject", subject, "queued", true)
	return nil
}
