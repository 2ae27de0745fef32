// Package mocks provides shared test doubles for harness packages.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Reply is a scripted (status, output) pair.
type Reply struct {
	Status int
	Output string
}

// Target implements remote.Target for testing.
// Use NewTarget() to create instances with a fluent builder API.
type Target struct {
	replies  map[string]Reply
	fallback Reply

	// RunFunc is called by Run for commands without a scripted reply.
	// If nil, Run returns the fallback reply.
	RunFunc func(ctx context.Context, command string, timeout time.Duration) (int, string)

	// Call tracking (thread-safe)
	runCount int32
	mu       sync.Mutex
	commands []string
	timeouts []time.Duration
}

// NewTarget creates a mock target that answers every command with status 0
// and no output until scripted otherwise.
func NewTarget() *Target {
	return &Target{replies: make(map[string]Reply)}
}

// WithReply scripts the reply for an exact command string.
func (m *Target) WithReply(command string, status int, output string) *Target {
	m.replies[command] = Reply{Status: status, Output: output}
	return m
}

// WithFallback sets the reply for commands that are not scripted.
func (m *Target) WithFallback(status int, output string) *Target {
	m.fallback = Reply{Status: status, Output: output}
	return m
}

// WithRunFunc sets the function called for commands that are not scripted.
func (m *Target) WithRunFunc(fn func(ctx context.Context, command string, timeout time.Duration) (int, string)) *Target {
	m.RunFunc = fn
	return m
}

// Run implements remote.Target.
func (m *Target) Run(ctx context.Context, command string, timeout time.Duration) (int, string) {
	atomic.AddInt32(&m.runCount, 1)
	m.mu.Lock()
	m.commands = append(m.commands, command)
	m.timeouts = append(m.timeouts, timeout)
	m.mu.Unlock()

	if r, ok := m.replies[command]; ok {
		return r.Status, r.Output
	}
	if m.RunFunc != nil {
		return m.RunFunc(ctx, command, timeout)
	}
	return m.fallback.Status, m.fallback.Output
}

// Test inspection methods

// RunCount returns the number of times Run was called.
func (m *Target) RunCount() int32 {
	return atomic.LoadInt32(&m.runCount)
}

// Commands returns the commands passed to Run, in call order.
func (m *Target) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.commands))
	copy(out, m.commands)
	return out
}

// Timeouts returns the timeouts passed to Run, in call order.
func (m *Target) Timeouts() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.timeouts))
	copy(out, m.timeouts)
	return out
}

// Reset clears call tracking state.
func (m *Target) Reset() {
	atomic.StoreInt32(&m.runCount, 0)
	m.mu.Lock()
	m.commands = nil
	m.timeouts = nil
	m.mu.Unlock()
}
