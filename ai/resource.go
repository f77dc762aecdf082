package ai

import (
	"sync"
	"sync/atomic"
)

// Factory builds a Provider. It is called at most once per Resource.
type Factory func() (Provider, error)

// Resource is the process-wide holder of the model Provider. The factory
// runs on the first Get; every later call returns the same provider, or the
// same initialization error.
type Resource struct {
	factory  Factory
	once     sync.Once
	provider Provider
	err      error
	closed   atomic.Bool
}

// NewResource creates a lazily initialized Resource.
func NewResource(factory Factory) *Resource {
	return &Resource{factory: factory}
}

// Get returns the shared provider, initializing it on first use.
func (r *Resource) Get() (Provider, error) {
	if r.closed.Load() {
		return nil, ErrResourceClosed
	}
	r.once.Do(func() {
		r.provider, r.err = r.factory()
	})
	return r.provider, r.err
}

// Close releases the provider if it was initialized. Later calls to Get fail
// with ErrResourceClosed.
func (r *Resource) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	// Waits for an in-flight initialization and prevents a later one.
	r.once.Do(func() {})
	if r.provider == nil {
		return nil
	}
	return r.provider.Close()
}
