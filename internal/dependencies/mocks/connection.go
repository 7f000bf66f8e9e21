package mocks

import (
	"errors"
	"sync"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// ErrConnClosed is returned when sending on a closed MockConnection
var ErrConnClosed = errors.New("connection closed")

// MockConnection is an in-memory Connection for testing. It records
// every payload sent to it and can be closed to make sends fail.
type MockConnection struct {
	ConnID   string
	Owner    model.Identity
	mu       sync.Mutex
	payloads [][]byte
	closed   bool
}

// Ensure MockConnection implements Connection
var _ model.Connection = (*MockConnection)(nil)

// NewMockConnection creates a MockConnection with the given id and
// owning identity
func NewMockConnection(id string, owner model.Identity) *MockConnection {
	return &MockConnection{ConnID: id, Owner: owner}
}

// ID returns the connection id
func (c *MockConnection) ID() string {
	return c.ConnID
}

// Identity returns the owning identity
func (c *MockConnection) Identity() model.Identity {
	return c.Owner
}

// Send records the payload, or fails if the connection is closed
func (c *MockConnection) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	c.payloads = append(c.payloads, buf)
	return nil
}

// Close marks the connection closed
func (c *MockConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close has been called
func (c *MockConnection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Payloads returns a snapshot of everything sent on this connection
func (c *MockConnection) Payloads() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.payloads))
	copy(out, c.payloads)
	return out
}

// LastPayload returns the most recent payload, or nil if none
func (c *MockConnection) LastPayload() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.payloads) == 0 {
		return nil
	}
	return c.payloads[len(c.payloads)-1]
}

// Reset clears recorded payloads
func (c *MockConnection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = nil
}
