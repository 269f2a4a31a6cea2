package cli

import (
	"sync"

	"taskdeck/internal/session"
)

// Router is the CLI's navigation surface. The process has no real pages,
// so navigation just moves a virtual path between the two logical routes
// the session guard cares about.
type Router struct {
	mu   sync.Mutex
	path string
}

// NewRouter creates a router positioned at the application root.
func NewRouter() *Router {
	return &Router{path: session.RootRoute}
}

// NavigateTo implements session.Router.
func (r *Router) NavigateTo(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

// CurrentPath implements session.Router.
func (r *Router) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}
