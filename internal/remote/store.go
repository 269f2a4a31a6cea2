package remote

import (
	"context"
	"errors"
)

// Sentinel errors for the consumed store contract. Implementations wrap
// these so callers can branch with errors.Is.
var (
	// ErrAuth indicates bad credentials or an expired/revoked session.
	ErrAuth = errors.New("auth error")

	// ErrNotFound indicates the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation (duplicate list name).
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indicates a network or backend failure; the
	// triggering action is safe to retry.
	ErrUnavailable = errors.New("store unavailable")
)

// AuthEvent is a session-change notification kind.
type AuthEvent int

const (
	// SignedIn fires after a successful sign-in or session refresh.
	SignedIn AuthEvent = iota

	// SignedOut fires after sign-out or session invalidation.
	SignedOut
)

// String returns the event name.
func (e AuthEvent) String() string {
	switch e {
	case SignedIn:
		return "SIGNED_IN"
	case SignedOut:
		return "SIGNED_OUT"
	default:
		return "UNKNOWN"
	}
}

// SessionFunc receives session-change events. The session is non-nil only
// for SignedIn.
type SessionFunc func(event AuthEvent, session *Session)

// Store is the consumed contract of the remote persistence/auth service.
// All calls are blocking and honor ctx; callers update local caches only
// after a call returns.
type Store interface {
	// GetSession returns the current session, or nil when there is none.
	GetSession(ctx context.Context) (*Session, error)

	// OnSessionChange subscribes fn to session-change events and returns
	// an unsubscribe function. Events delivered after unsubscribe are
	// dropped.
	OnSessionChange(fn SessionFunc) (unsubscribe func())

	// SignIn authenticates with email and password.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp registers a new account. redirectTo is the confirmation
	// redirect target forwarded to the auth service.
	SignUp(ctx context.Context, email, password, redirectTo string) error

	// SignOut invalidates the current session.
	SignOut(ctx context.Context) error

	// ListTasks returns all tasks for owner, newest first.
	ListTasks(ctx context.Context, owner string) ([]Task, error)

	// InsertTask creates a task and returns the server row with the
	// assigned id and creation timestamp.
	InsertTask(ctx context.Context, t Task) (Task, error)

	// UpdateTask patches the given fields of one task.
	UpdateTask(ctx context.Context, id string, fields TaskFields) error

	// ReassignTasks moves every task of owner whose list equals from to
	// the list named to, in one remote operation.
	ReassignTasks(ctx context.Context, owner, from, to string) error

	// DeleteTask removes one task.
	DeleteTask(ctx context.Context, id string) error

	// ListLists returns all persisted lists for owner.
	ListLists(ctx context.Context, owner string) ([]List, error)

	// InsertList creates a list and returns the server row.
	InsertList(ctx context.Context, l List) (List, error)

	// DeleteList removes one list row. It does not touch tasks; callers
	// run the reassignment cascade first.
	DeleteList(ctx context.Context, id string) error
}
