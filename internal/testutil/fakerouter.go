package testutil

import "sync"

// FakeRouter records navigations without moving the current path unless
// told to, mirroring front ends where navigation lands asynchronously.
type FakeRouter struct {
	mu     sync.Mutex
	path   string
	auto   bool
	Visits []string
}

// NewFakeRouter creates a router positioned at path. When auto is true,
// NavigateTo also moves the current path immediately.
func NewFakeRouter(path string, auto bool) *FakeRouter {
	return &FakeRouter{path: path, auto: auto}
}

// NavigateTo records the navigation.
func (r *FakeRouter) NavigateTo(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Visits = append(r.Visits, path)
	if r.auto {
		r.path = path
	}
}

// CurrentPath returns the current path.
func (r *FakeRouter) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// SetPath moves the current path directly, as a completed navigation.
func (r *FakeRouter) SetPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}
