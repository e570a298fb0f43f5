package window

import (
	"context"

	"github.com/c360/ringwindow/errors"
)

// Subscriber delivers raw messages for a subject.
// natsclient.Client and testutil.MockNATSClient satisfy it.
type Subscriber interface {
	Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error
}

// Attach feeds every message on subject into Ingest. Invalid payloads are
// logged and counted; they do not stop the subscription.
func (w *Window) Attach(ctx context.Context, sub Subscriber, subject string) error {
	err := sub.Subscribe(ctx, subject, func(msgCtx context.Context, data []byte) {
		if err := w.Ingest(msgCtx, data); err != nil {
			w.logger.Debug("sample rejected", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, "Window", "Attach", "subscribe to "+subject)
	}

	w.logger.Info("window attached", "subject", subject)
	return nil
}
