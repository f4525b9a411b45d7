package testutil

import (
	"errors"
	"sync"
)

// ErrClose is the error FailingCloser returns.
var ErrClose = errors.New("testutil: close failed")

// CountingCloser is an io.Closer that records how often it was closed and
// what else had happened by then.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CountingCloser struct {
	mu     sync.Mutex
	closes int
	err    error
	events []string
}

// NewCountingCloser creates a closer whose Close returns nil.
func NewCountingCloser() *CountingCloser {
	return &CountingCloser{}
}

// FailingCloser creates a CountingCloser whose Close returns ErrClose.
func FailingCloser() *CountingCloser {
	return &CountingCloser{err: ErrClose}
}

// Close records the call and appends a "close" event.
func (c *CountingCloser) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	c.events = append(c.events, "close")
	return c.err
}

// Record appends a named event, so tests can assert ordering against Close.
func (c *CountingCloser) Record(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Closes returns how many times Close was called.
func (c *CountingCloser) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// Events returns the recorded events in order.
func (c *CountingCloser) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	copy(out, c.events)
	return out
}
