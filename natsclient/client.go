package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/retry"
)

// ConnectionStatus represents the state of the NATS connection
type ConnectionStatus int32

// Possible connection statuses
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Status holds runtime status information for the client
type Status struct {
	Status        ConnectionStatus
	Reconnects    int32
	Subscriptions int
	RTT           time.Duration
}

// Client manages a NATS connection and the subscriptions that feed windows.
type Client struct {
	url        string
	status     atomic.Int32 // ConnectionStatus
	reconnects atomic.Int32
	logger     *slog.Logger
	metrics    *metric.Metrics

	// Connection options
	clientName     string
	timeout        time.Duration
	maxReconnects  int
	reconnectWait  time.Duration
	pingInterval   time.Duration
	drainTimeout   time.Duration
	messageTimeout time.Duration
	retry          retry.Config

	onHealthChange func(bool)

	mu   sync.RWMutex
	conn *nats.Conn
	subs []*nats.Subscription

	closeMu sync.Mutex
	closed  atomic.Bool
}

// NewClient creates a new NATS client with optional configuration.
// No connection is made until Connect.
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	if url == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Client", "NewClient", "validate url")
	}

	c := &Client{
		url:            url,
		logger:         slog.Default(),
		maxReconnects:  -1, // infinite by default
		reconnectWait:  2 * time.Second,
		pingInterval:   30 * time.Second,
		timeout:        5 * time.Second,
		drainTimeout:   30 * time.Second,
		messageTimeout: 30 * time.Second,
		retry:          retry.Quick(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}

	c.status.Store(int32(StatusDisconnected))
	c.logger = c.logger.With("component", "natsclient", "url", url)
	c.logger.Debug("created NATS client")

	return c, nil
}

// URL returns the NATS server URL
func (c *Client) URL() string {
	return c.url
}

// Status returns the current connection status
func (c *Client) Status() ConnectionStatus {
	return ConnectionStatus(c.status.Load())
}

func (c *Client) setStatus(status ConnectionStatus) {
	c.status.Store(int32(status))
	if c.metrics != nil {
		c.metrics.RecordNATSStatus(status == StatusConnected)
	}
}

// IsHealthy returns true if the client is connected
func (c *Client) IsHealthy() bool {
	return c.Status() == StatusConnected
}

// GetStatus returns current status information
func (c *Client) GetStatus() Status {
	c.mu.RLock()
	conn := c.conn
	subs := len(c.subs)
	c.mu.RUnlock()

	status := Status{
		Status:        c.Status(),
		Reconnects:    c.reconnects.Load(),
		Subscriptions: subs,
	}
	if conn != nil && conn.IsConnected() {
		if rtt, err := conn.RTT(); err == nil {
			status.RTT = rtt
		}
	}
	return status
}

func (c *Client) connectionOptions() []nats.Option {
	opts := []nats.Option{
		nats.MaxReconnects(c.maxReconnects),
		nats.ReconnectWait(c.reconnectWait),
		nats.PingInterval(c.pingInterval),
		nats.Timeout(c.timeout),
		nats.DrainTimeout(c.drainTimeout),
		nats.DisconnectErrHandler(c.handleDisconnect),
		nats.ReconnectHandler(c.handleReconnect),
		nats.ClosedHandler(c.handleClosed),
		nats.ErrorHandler(c.handleError),
	}
	if c.clientName != "" {
		opts = append(opts, nats.Name(c.clientName))
	}
	return opts
}

// Connect establishes the connection, retrying with backoff per the client's
// retry configuration. Connecting an already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return errors.WrapInvalid(errors.ErrShuttingDown, "Client", "Connect", "check client state")
	}
	if c.IsHealthy() {
		return nil
	}

	c.setStatus(StatusConnecting)
	c.logger.Info("connecting to NATS")

	cfg := c.retry
	cfg.Logger = c.logger
	err := retry.Do(ctx, cfg, func() error {
		return c.connectOnce(ctx)
	})
	if err != nil {
		c.setStatus(StatusDisconnected)
		return errors.WrapTransient(err, "Client", "Connect", "establish connection")
	}

	c.setStatus(StatusConnected)
	c.logger.Info("connected to NATS")
	if c.onHealthChange != nil {
		c.onHealthChange(true)
	}
	return nil
}

func (c *Client) connectOnce(ctx context.Context) error {
	type result struct {
		conn *nats.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(c.url, c.connectionOptions()...)
		done <- result{conn, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		c.mu.Lock()
		c.conn = res.conn
		c.mu.Unlock()
		return nil
	case <-ctx.Done():
		// Close a connection that completes after the caller gave up.
		go func() {
			if res := <-done; res.conn != nil {
				res.conn.Close()
			}
		}()
		return ctx.Err()
	}
}

// RTT returns the round-trip time to the NATS server
func (c *Client) RTT() (time.Duration, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return 0, errors.WrapTransient(errors.ErrNotConnected, "Client", "RTT", "check connection")
	}
	return conn.RTT()
}

// Subscribe subscribes handler to subject. Each message handler receives a
// context derived from ctx with the client's per-message timeout.
func (c *Client) Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || !c.conn.IsConnected() {
		return errors.WrapTransient(errors.ErrNotConnected, "Client", "Subscribe", "check connection")
	}

	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		if c.metrics != nil {
			c.metrics.RecordNATSMessage(msg.Subject)
		}

		msgCtx, cancel := context.WithTimeout(ctx, c.messageTimeout)
		defer cancel()

		handler(msgCtx, msg.Data)
	})
	if err != nil {
		return errors.WrapTransient(
			fmt.Errorf("%w: %w", errors.ErrSubscriptionFailed, err),
			"Client", "Subscribe", "subscribe to "+subject)
	}

	c.subs = append(c.subs, sub)
	c.logger.Debug("subscribed", "subject", subject)
	return nil
}

// Publish publishes a message to a NATS subject
func (c *Client) Publish(_ context.Context, subject string, data []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return errors.WrapTransient(errors.ErrNotConnected, "Client", "Publish", "check connection")
	}
	return conn.Publish(subject, data)
}

// Flush waits until the server has processed everything published so far.
func (c *Client) Flush(ctx context.Context) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.WrapTransient(errors.ErrNotConnected, "Client", "Flush", "check connection")
	}
	return conn.FlushWithContext(ctx)
}

// Close unsubscribes, drains and closes the connection. It is safe to call
// more than once; only the first call does any work.
func (c *Client) Close(ctx context.Context) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Swap(true) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil && !stderrors.Is(err, nats.ErrConnectionClosed) {
			errs = append(errs, errors.Wrap(err, "Client", "Close", "unsubscribe "+sub.Subject))
		}
	}
	c.subs = nil

	if c.conn != nil {
		drainTimeout := c.drainTimeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining > 0 && remaining < drainTimeout {
				drainTimeout = remaining
			}
		}

		conn := c.conn
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- conn.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil && !stderrors.Is(err, nats.ErrConnectionClosed) {
				errs = append(errs, errors.Wrap(err, "Client", "Close", "drain connection"))
			}
		case <-time.After(drainTimeout):
			errs = append(errs, errors.WrapTransient(
				fmt.Errorf("%w: drain exceeded %v", errors.ErrConnectionTimeout, drainTimeout),
				"Client", "Close", "drain connection"))
		case <-ctx.Done():
			errs = append(errs, errors.Wrap(ctx.Err(), "Client", "Close", "drain connection"))
		}

		conn.Close()
		c.conn = nil
	}

	c.setStatus(StatusDisconnected)
	c.logger.Info("NATS client closed")

	return stderrors.Join(errs...)
}

func (c *Client) handleDisconnect(_ *nats.Conn, err error) {
	if c.closed.Load() {
		return
	}
	c.setStatus(StatusReconnecting)
	c.logger.Warn("disconnected from NATS", "error", err)
	if c.onHealthChange != nil {
		go c.onHealthChange(false)
	}
}

func (c *Client) handleReconnect(_ *nats.Conn) {
	c.setStatus(StatusConnected)
	c.reconnects.Add(1)
	if c.metrics != nil {
		c.metrics.RecordNATSReconnect()
	}
	c.logger.Info("reconnected to NATS")
	if c.onHealthChange != nil {
		go c.onHealthChange(true)
	}
}

func (c *Client) handleClosed(_ *nats.Conn) {
	c.setStatus(StatusDisconnected)
	if c.onHealthChange != nil && !c.closed.Load() {
		go c.onHealthChange(false)
	}
}

func (c *Client) handleError(_ *nats.Conn, sub *nats.Subscription, err error) {
	subject := ""
	if sub != nil {
		subject = sub.Subject
	}
	c.logger.Error("NATS error", "subject", subject, "error", err)
}
