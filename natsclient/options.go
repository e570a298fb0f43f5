package natsclient

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/retry"
)

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client) error

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithName sets the client name for identification
func WithName(name string) ClientOption {
	return func(c *Client) error {
		c.clientName = name
		return nil
	}
}

// WithTimeout sets the timeout for a single connection attempt
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("%w: timeout must be positive, got %v", errors.ErrInvalidConfig, d)
		}
		c.timeout = d
		return nil
	}
}

// WithRetry sets the backoff used by Connect. Defaults to retry.Quick().
func WithRetry(cfg retry.Config) ClientOption {
	return func(c *Client) error {
		c.retry = cfg
		return nil
	}
}

// WithReconnect sets the maximum number of reconnection attempts (-1 for
// infinite) and the wait between them.
func WithReconnect(maxReconnects int, wait time.Duration) ClientOption {
	return func(c *Client) error {
		if wait < 0 {
			return fmt.Errorf("%w: reconnect wait cannot be negative", errors.ErrInvalidConfig)
		}
		c.maxReconnects = maxReconnects
		c.reconnectWait = wait
		return nil
	}
}

// WithPingInterval sets the ping interval for connection health checks
func WithPingInterval(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.pingInterval = d
		return nil
	}
}

// WithDrainTimeout sets the upper bound on draining during Close
func WithDrainTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.drainTimeout = d
		return nil
	}
}

// WithMessageTimeout sets the deadline of the context passed to message handlers
func WithMessageTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("%w: message timeout must be positive, got %v", errors.ErrInvalidConfig, d)
		}
		c.messageTimeout = d
		return nil
	}
}

// WithHealthChangeCallback sets a callback for health status changes
func WithHealthChangeCallback(fn func(healthy bool)) ClientOption {
	return func(c *Client) error {
		c.onHealthChange = fn
		return nil
	}
}

// WithMetrics records connection state, reconnects and received messages in
// the registry's core metrics.
func WithMetrics(registry *metric.MetricsRegistry) ClientOption {
	return func(c *Client) error {
		if registry != nil {
			c.metrics = registry.CoreMetrics()
		}
		return nil
	}
}
