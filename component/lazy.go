package component

import (
	"context"
	"fmt"
	"sync"
)

// Lazy defers an expensive load, such as reading and compiling an operator
// script, until first use. A failed load is retried on the next call.
type Lazy[T any] struct {
	name   string
	mu     sync.RWMutex
	loaded bool
	value  T
	load   func(ctx context.Context) (T, error)
	closer func(T) error
}

// NewLazy creates a Lazy with the given loader.
func NewLazy[T any](name string, load func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{name: name, load: load}
}

// Name returns the name used in errors.
func (l *Lazy[T]) Name() string {
	return l.name
}

// Get returns the loaded value, loading it on first use.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.RLock()
	if l.loaded {
		v := l.value
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if l.loaded {
		return l.value, nil
	}
	if l.load == nil {
		var zero T
		return zero, fmt.Errorf("no loader for %s", l.name)
	}

	v, err := l.load(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to load %s: %w", l.name, err)
	}
	l.value, l.loaded = v, true
	return v, nil
}

// Loaded reports whether a value is held.
func (l *Lazy[T]) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Health reports unhealthy until the value has been loaded.
func (l *Lazy[T]) Health() Health {
	if !l.Loaded() {
		return Health{Name: l.name, Status: StatusDegraded, Message: "not loaded"}
	}
	return Health{Name: l.name, Status: StatusHealthy}
}

// Reset drops the held value, running the closer if one is set. The next Get
// loads again.
func (l *Lazy[T]) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.loaded && l.closer != nil {
		err = l.closer(l.value)
	}
	var zero T
	l.value, l.loaded = zero, false
	return err
}

// WithCloser sets a function run by Reset on the held value.
func (l *Lazy[T]) WithCloser(fn func(T) error) *Lazy[T] {
	l.closer = fn
	return l
}
