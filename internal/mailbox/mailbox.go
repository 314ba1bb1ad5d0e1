// Package mailbox provides a single-slot hand-off between triggers and the worker.
package mailbox

import (
	"context"
	"sync"
)

// Mailbox is a single-slot buffer where the latest job always wins.
// It is NOT a queue. It holds at most one pending job, so a burst of
// triggers collapses into one pending run.
type Mailbox[T any] struct {
	mu     sync.Mutex
	job    *T
	notify chan struct{}
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Put stores a job, replacing any pending one. It never blocks.
// It reports whether a pending job was replaced.
func (m *Mailbox[T]) Put(j T) bool {
	m.mu.Lock()
	replaced := m.job != nil
	m.job = &j
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return replaced
}

// Take blocks until a job is available or ctx is done.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	for {
		if j := m.TryTake(); j != nil {
			return *j, true
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, false
		case <-m.notify:
		}
	}
}

// TryTake returns the pending job, or nil if the slot is empty.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	j := m.job
	m.job = nil
	return j
}

// HasJob reports whether a job is currently waiting.
func (m *Mailbox[T]) HasJob() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.job != nil
}
