// Package app wires the engine together: remote store, session guard,
// caches, view engine and notification channel. Everything is constructed
// explicitly and injected; nothing lives at package scope.
package app

import (
	"context"
	"log/slog"

	"taskdeck/internal/config"
	"taskdeck/internal/lists"
	"taskdeck/internal/notify"
	"taskdeck/internal/remote"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
	"taskdeck/internal/view"
)

// App is the assembled sync engine for one session.
type App struct {
	Cfg      *config.Config
	Remote   remote.Store
	Router   session.Router
	Notifier *notify.Notifier
	Guard    *session.Guard
	Tasks    *store.TaskStore
	Lists    *lists.Registry
	View     *view.Engine
	Log      *slog.Logger
}

// New assembles an app around the given remote store and router. The
// caches are created on Start once the owner is known.
func New(cfg *config.Config, rs remote.Store, router session.Router, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Cfg:      cfg,
		Remote:   rs,
		Router:   router,
		Notifier: notify.New(0),
		Guard:    session.New(rs, router, logger),
		View:     &view.Engine{},
		Log:      logger,
	}
}

// Start resolves the session and, when authenticated, builds and loads
// the task store and list registry for the session owner. Load failures
// leave the caches empty and retryable; Start only fails on teardown.
func (a *App) Start(ctx context.Context) {
	a.Guard.Start(ctx)

	s := a.Guard.Session()
	if s == nil {
		return
	}
	owner := s.User.ID
	a.Tasks = store.New(a.Remote, owner, a.Notifier, a.Log)
	a.Lists = lists.New(a.Remote, a.Tasks, owner, a.Notifier, a.Log)

	// Retryable: commands re-check LoadErr before reading the caches.
	_ = a.Tasks.Load(ctx)
	_ = a.Lists.Load(ctx)
}

// Authenticated reports whether the guard resolved to an active session.
func (a *App) Authenticated() bool {
	return a.Guard.State() == session.Authenticated
}

// Close tears down subscriptions and discards the session-scoped caches.
func (a *App) Close() {
	a.Guard.Close()
	if a.Tasks != nil {
		a.Tasks.Close()
	}
	if a.Lists != nil {
		a.Lists.Close()
	}
}
