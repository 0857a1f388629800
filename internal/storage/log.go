package storage

import (
	"slices"
	"sync"
)

// Log is a thread-safe append-only sequence. The zero value is ready to use.
type Log[T any] struct {
	mu    sync.RWMutex
	items []T
}

// Append adds v and returns its position.
func (l *Log[T]) Append(v T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, v)
	return len(l.items) - 1
}

// Len returns the number of items.
func (l *Log[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Snapshot returns a copy of all items in append order.
func (l *Log[T]) Snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Clear removes all items.
func (l *Log[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}
