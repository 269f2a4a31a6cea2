// Package session implements the authentication state machine that gates
// access to the task views.
package session

import (
	"context"
	"log/slog"
	"sync"

	"taskdeck/internal/remote"
)

// Logical routes. Only two matter to the guard.
const (
	LoginRoute = "/login"
	RootRoute  = "/"
)

// Router is the consumed navigation surface.
type Router interface {
	NavigateTo(path string)
	CurrentPath() string
}

// State is the guard's authentication state.
type State int

const (
	// Unresolved means the initial session fetch has not completed.
	// Dependent views show a neutral loading state, never a redirect.
	Unresolved State = iota

	Authenticated
	Unauthenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Guard tracks authentication state and drives redirects between the
// login route and the application root.
type Guard struct {
	store  remote.Store
	router Router
	log    *slog.Logger

	mu          sync.Mutex
	state       State
	session     *remote.Session
	unsubscribe func()
	closed      bool

	// pending redirect request; spent once the route is seen to move, so
	// only duplicates fired before the navigation lands are suppressed
	lastFrom   string
	lastTarget string
}

// New creates a guard in the Unresolved state.
func New(store remote.Store, router Router, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, router: router, log: logger, state: Unresolved}
}

// Start performs the initial session fetch and subscribes to session
// changes for the guard's lifetime. A failed fetch resolves to
// Unauthenticated; the failure is logged, not surfaced.
func (g *Guard) Start(ctx context.Context) {
	session, err := g.store.GetSession(ctx)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		g.log.Warn("session fetch failed", "err", err)
		g.state = Unauthenticated
	case session != nil:
		g.state = Authenticated
		g.session = session
	default:
		g.state = Unauthenticated
	}
	g.unsubscribe = g.store.OnSessionChange(g.handleEvent)
	g.mu.Unlock()

	g.Enforce()
}

// Close tears down the subscription. Events and pending results arriving
// after Close are discarded.
func (g *Guard) Close() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.closed = true
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Resolved reports whether the initial session fetch has completed.
func (g *Guard) Resolved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state != Unresolved
}

// State returns the current authentication state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the current session identity, or nil until resolved or
// when unauthenticated.
func (g *Guard) Session() *remote.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// handleEvent reacts to session-change notifications from the store.
func (g *Guard) handleEvent(event remote.AuthEvent, session *remote.Session) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	switch event {
	case remote.SignedIn:
		g.state = Authenticated
		g.session = session
		g.mu.Unlock()
		if g.router.CurrentPath() == LoginRoute {
			g.redirect(RootRoute)
		}
	case remote.SignedOut:
		g.state = Unauthenticated
		g.session = nil
		g.mu.Unlock()
		if g.router.CurrentPath() != LoginRoute {
			g.redirect(LoginRoute)
		}
	default:
		g.mu.Unlock()
	}
}

// Enforce applies the continuous rule: unauthenticated access to a
// non-login route redirects to login. While unresolved it does nothing.
func (g *Guard) Enforce() {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	if state == Unauthenticated && g.router.CurrentPath() != LoginRoute {
		g.redirect(LoginRoute)
	}
}

// redirect navigates to target unless the same request is still pending:
// a repeat for the same target while the route has not moved is dropped.
// Once the route moves the request is spent, so returning to the same
// position later redirects again.
func (g *Guard) redirect(target string) {
	path := g.router.CurrentPath()

	g.mu.Lock()
	if g.lastTarget != "" && path != g.lastFrom {
		g.lastFrom, g.lastTarget = "", ""
	}
	if g.lastTarget == target && g.lastFrom == path {
		g.mu.Unlock()
		return
	}
	g.lastFrom = path
	g.lastTarget = target
	g.mu.Unlock()

	g.router.NavigateTo(target)

	// a navigation that lands synchronously spends the request right away
	if g.router.CurrentPath() != path {
		g.mu.Lock()
		if g.lastFrom == path && g.lastTarget == target {
			g.lastFrom, g.lastTarget = "", ""
		}
		g.mu.Unlock()
	}
}
