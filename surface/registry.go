// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"sort"
	"sync"
)

// Options configures surface creation through the registry.
type Options struct {
	// Width is the surface width in pixels.
	Width int

	// Height is the surface height in pixels.
	Height int
}

// Factory creates a new Surface with the given options.
type Factory func(opts Options) (Surface, error)

// backend is a registered surface factory.
type backend struct {
	name      string
	priority  int
	factory   Factory
	available func() bool
}

// Registry manages named surface backends.
//
// Intermediate surfaces allocated while normalizing sources or rendering
// pipes come from a registry, so callers can substitute their own raster
// backend without changes to the core library.
//
// Example registration:
//
//	func init() {
//	    surface.Register("tracking", 20, trackingFactory, nil)
//	}
//
// Example usage:
//
//	s, err := surface.Allocate("tracking", 800, 600)
//	// or auto-select best available:
//	s, err := surface.Allocate("", 800, 600)
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*backend
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and Allocate.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]*backend)}
}

// globalRegistry is the default registry.
var globalRegistry = NewRegistry()

// Register adds a backend to the global registry.
//
// Parameters:
//   - name: unique identifier (e.g., "image")
//   - priority: selection priority (higher = preferred)
//   - factory: function to create surface instances
//   - available: function to check if backend is available
//
// If available is nil, the backend is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// Available returns names of all available backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Allocate creates a surface from the global registry. An empty name
// selects the best available backend.
func Allocate(name string, width, height int) (Surface, error) {
	return globalRegistry.Allocate(name, width, height)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends[name] = &backend{
		name:      name,
		priority:  priority,
		factory:   factory,
		available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.backends, name)
}

// Available returns names of all available backends, highest priority
// first. Ties are ordered by name.
func (r *Registry) Available() []string {
	r.mu.RLock()
	list := make([]*backend, 0, len(r.backends))
	for _, b := range r.backends {
		list = append(list, b)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority > list[j].priority
		}
		return list[i].name < list[j].name
	})

	names := make([]string, 0, len(list))
	for _, b := range list {
		if b.available() {
			names = append(names, b.name)
		}
	}
	return names
}

// Allocate creates a width x height surface. An empty name tries every
// available backend in priority order and returns the first success.
func (r *Registry) Allocate(name string, width, height int) (Surface, error) {
	opts := Options{Width: width, Height: height}
	if name != "" {
		return r.NewSurfaceByName(name, opts)
	}

	names := r.Available()
	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var lastErr error
	for _, n := range names {
		s, err := r.NewSurfaceByName(n, opts)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// NewSurfaceByName creates a surface using a specific backend.
func (r *Registry) NewSurfaceByName(name string, opts Options) (Surface, error) {
	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !b.available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return b.factory(opts)
}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no surface backends are registered
	// or available on the current system.
	ErrNoBackendAvailable = errors.New("surface: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}

// init registers the built-in ImageSurface backend.
func init() {
	Register("image", 10, func(opts Options) (Surface, error) {
		return NewImageSurface(opts.Width, opts.Height), nil
	}, nil)
}
