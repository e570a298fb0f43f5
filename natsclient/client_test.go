package natsclient

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	"github.com/c360/ringwindow/pkg/retry"
)

// unreachableURL refuses connections immediately
const unreachableURL = "nats://127.0.0.1:1"

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  2,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", client.URL())
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.False(t, client.IsHealthy())

	status := client.GetStatus()
	assert.Equal(t, StatusDisconnected, status.Status)
	assert.Zero(t, status.Reconnects)
	assert.Zero(t, status.Subscriptions)
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, -1, client.maxReconnects)
	assert.Equal(t, 2*time.Second, client.reconnectWait)
	assert.Equal(t, 5*time.Second, client.timeout)
	assert.Equal(t, 30*time.Second, client.drainTimeout)
	assert.Equal(t, 30*time.Second, client.messageTimeout)
	assert.Equal(t, retry.Quick(), client.retry)
	assert.Nil(t, client.metrics)
}

func TestNewClient_EmptyURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrMissingConfig)
}

func TestNewClient_Options(t *testing.T) {
	var healthy []bool
	client, err := NewClient("nats://localhost:4222",
		WithName("window-ingest"),
		WithTimeout(time.Second),
		WithReconnect(5, 100*time.Millisecond),
		WithPingInterval(10*time.Second),
		WithDrainTimeout(3*time.Second),
		WithMessageTimeout(2*time.Second),
		WithRetry(fastRetry()),
		WithLogger(nil),
		WithHealthChangeCallback(func(h bool) { healthy = append(healthy, h) }),
	)
	require.NoError(t, err)

	assert.Equal(t, "window-ingest", client.clientName)
	assert.Equal(t, time.Second, client.timeout)
	assert.Equal(t, 5, client.maxReconnects)
	assert.Equal(t, 100*time.Millisecond, client.reconnectWait)
	assert.Equal(t, 10*time.Second, client.pingInterval)
	assert.Equal(t, 3*time.Second, client.drainTimeout)
	assert.Equal(t, 2*time.Second, client.messageTimeout)
	assert.Equal(t, fastRetry(), client.retry)
	assert.NotNil(t, client.logger)
	require.NotNil(t, client.onHealthChange)

	client.onHealthChange(true)
	assert.Equal(t, []bool{true}, healthy)
}

func TestNewClient_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  ClientOption
	}{
		{"zero timeout", WithTimeout(0)},
		{"negative timeout", WithTimeout(-time.Second)},
		{"negative reconnect wait", WithReconnect(3, -time.Second)},
		{"zero message timeout", WithMessageTimeout(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient("nats://localhost:4222", tt.opt)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestConnectionStatus_String(t *testing.T) {
	tests := []struct {
		status ConnectionStatus
		want   string
	}{
		{StatusDisconnected, "disconnected"},
		{StatusConnecting, "connecting"},
		{StatusConnected, "connected"},
		{StatusReconnecting, "reconnecting"},
		{ConnectionStatus(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestClient_NotConnected(t *testing.T) {
	client, err := NewClient(unreachableURL)
	require.NoError(t, err)
	ctx := t.Context()

	err = client.Subscribe(ctx, "samples.>", func(context.Context, []byte) {})
	assert.ErrorIs(t, err, errors.ErrNotConnected)
	assert.True(t, errors.IsTransient(err))

	err = client.Publish(ctx, "samples.cpu", []byte("{}"))
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	err = client.Flush(ctx)
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	_, err = client.RTT()
	assert.ErrorIs(t, err, errors.ErrNotConnected)
}

func TestClient_ConnectFailure(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	client, err := NewClient(unreachableURL,
		WithRetry(fastRetry()),
		WithTimeout(200*time.Millisecond),
		WithMetrics(registry),
	)
	require.NoError(t, err)

	err = client.Connect(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Contains(t, err.Error(), "retry failed after 2 attempts")

	assert.Equal(t, StatusDisconnected, client.Status())
	assert.False(t, client.IsHealthy())
	assert.Equal(t, 0.0, testutil.ToFloat64(registry.CoreMetrics().NATSConnected))
}

func TestClient_ConnectCancelled(t *testing.T) {
	client, err := NewClient(unreachableURL, WithRetry(retry.Persistent()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err = client.Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusDisconnected, client.Status())
}

func TestClient_CloseIdempotent(t *testing.T) {
	client, err := NewClient(unreachableURL)
	require.NoError(t, err)

	assert.NoError(t, client.Close(t.Context()))
	assert.NoError(t, client.Close(t.Context()))
	assert.Equal(t, StatusDisconnected, client.Status())

	err = client.Connect(t.Context())
	assert.ErrorIs(t, err, errors.ErrShuttingDown)
}
