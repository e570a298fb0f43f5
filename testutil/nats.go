package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// ErrClientClosed is returned by MockNATSClient after Close
var ErrClientClosed = errors.New("mock client is closed")

type mockSubscription struct {
	pattern string
	handler func(context.Context, []byte)
}

// MockNATSClient is an in-memory NATS client for testing.
// It matches the Subscribe/Publish signatures of natsclient.Client, including
// '*' and '>' wildcards, and delivers synchronously on the publishing goroutine.
type MockNATSClient struct {
	mu            sync.RWMutex
	messages      map[string][][]byte
	subscriptions []mockSubscription
	closed        bool
}

// NewMockNATSClient creates a new mock NATS client.
func NewMockNATSClient() *MockNATSClient {
	return &MockNATSClient{
		messages: make(map[string][][]byte),
	}
}

// Publish records data under subject and calls every matching handler.
func (c *MockNATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	c.messages[subject] = append(c.messages[subject], data)

	var handlers []func(context.Context, []byte)
	for _, sub := range c.subscriptions {
		if SubjectMatches(sub.pattern, subject) {
			handlers = append(handlers, sub.handler)
		}
	}
	c.mu.Unlock()

	// Per-message timeout matches the real client default
	for _, handler := range handlers {
		msgCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		handler(msgCtx, data)
		cancel()
	}
	return nil
}

// Subscribe registers handler for subject, which may contain wildcards.
func (c *MockNATSClient) Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	c.subscriptions = append(c.subscriptions, mockSubscription{pattern: subject, handler: handler})
	return nil
}

// GetMessages returns a copy of all messages published on subject.
func (c *MockNATSClient) GetMessages(subject string) [][]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msgs := c.messages[subject]
	if msgs == nil {
		return nil
	}
	result := make([][]byte, len(msgs))
	copy(result, msgs)
	return result
}

// GetMessageCount returns the number of messages on a subject.
func (c *MockNATSClient) GetMessageCount(subject string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages[subject])
}

// SubscriptionCount returns the number of active subscriptions.
func (c *MockNATSClient) SubscriptionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscriptions)
}

// Close drops all subscriptions. Later calls to Publish and Subscribe fail.
func (c *MockNATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.subscriptions = nil
	return nil
}

// IsClosed reports whether Close was called.
func (c *MockNATSClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// SubjectMatches reports whether subject matches pattern using NATS wildcard
// rules: '*' matches one token and a trailing '>' matches one or more.
func SubjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, tok := range pt {
		if tok == ">" {
			return i == len(pt)-1 && len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if tok != "*" && tok != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}

// WaitForMessageCount waits until subject has at least count messages.
func WaitForMessageCount(t *testing.T, client *MockNATSClient, subject string, count int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if client.GetMessageCount(subject) >= count {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d messages on %s, got %d", count, subject, client.GetMessageCount(subject))
}
