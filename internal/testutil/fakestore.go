// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/remote"
)

// Owner is the user id of the fake store's signed-in user.
const Owner = "user-1"

// FakeStore is an in-memory implementation of remote.Store for testing.
type FakeStore struct {
	mu      sync.RWMutex
	session *remote.Session
	tasks   []remote.Task
	lists   []remote.List
	subs    map[int]remote.SessionFunc
	nextSub int
	clock   time.Time

	// Error injection for testing
	GetSessionErr    error
	SignInErr        error
	SignUpErr        error
	SignOutErr       error
	ListTasksErr     error
	InsertTaskErr    error
	UpdateTaskErr    error
	ReassignTasksErr error
	DeleteTaskErr    error
	ListListsErr     error
	InsertListErr    error
	DeleteListErr    error
}

// NewFakeStore creates an empty fake store with no session.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		subs:  make(map[int]remote.SessionFunc),
		clock: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// SignInAs establishes a session without going through SignIn.
func (f *FakeStore) SignInAs(owner, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = &remote.Session{
		User:      remote.User{ID: owner, Email: email},
		ExpiresAt: f.clock.Add(time.Hour),
	}
}

// AddTask seeds a task and returns its id. Tasks are stored newest first,
// matching the remote ordering contract.
func (f *FakeStore) AddTask(t remote.Task) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Owner == "" {
		t.Owner = Owner
	}
	if t.CreatedAt.IsZero() {
		f.clock = f.clock.Add(time.Minute)
		t.CreatedAt = f.clock
	}
	f.tasks = append([]remote.Task{t}, f.tasks...)
	return t.ID
}

// AddList seeds a persisted list and returns its id.
func (f *FakeStore) AddList(l remote.List) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Owner == "" {
		l.Owner = Owner
	}
	f.lists = append(f.lists, l)
	return l.ID
}

// TaskByID returns a stored task for assertions.
func (f *FakeStore) TaskByID(id string) (remote.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return remote.Task{}, false
}

// GetSession implements remote.Store.
func (f *FakeStore) GetSession(ctx context.Context) (*remote.Session, error) {
	if f.GetSessionErr != nil {
		return nil, f.GetSessionErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.session == nil {
		return nil, nil
	}
	s := *f.session
	return &s, nil
}

// OnSessionChange implements remote.Store.
func (f *FakeStore) OnSessionChange(fn remote.SessionFunc) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Emit delivers a session-change event to subscribers.
func (f *FakeStore) Emit(event remote.AuthEvent, session *remote.Session) {
	f.mu.RLock()
	fns := make([]remote.SessionFunc, 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()
	for _, fn := range fns {
		fn(event, session)
	}
}

// SignIn implements remote.Store. Any credentials succeed unless an error
// is injected.
func (f *FakeStore) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	f.mu.Lock()
	f.session = &remote.Session{
		User:      remote.User{ID: Owner, Email: email},
		ExpiresAt: f.clock.Add(time.Hour),
	}
	s := *f.session
	f.mu.Unlock()
	f.Emit(remote.SignedIn, &s)
	return &s, nil
}

// SignUp implements remote.Store.
func (f *FakeStore) SignUp(ctx context.Context, email, password, redirectTo string) error {
	return f.SignUpErr
}

// SignOut implements remote.Store.
func (f *FakeStore) SignOut(ctx context.Context) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.mu.Lock()
	f.session = nil
	f.mu.Unlock()
	f.Emit(remote.SignedOut, nil)
	return nil
}

// ListTasks implements remote.Store.
func (f *FakeStore) ListTasks(ctx context.Context, owner string) ([]remote.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []remote.Task
	for _, t := range f.tasks {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

// InsertTask implements remote.Store.
func (f *FakeStore) InsertTask(ctx context.Context, t remote.Task) (remote.Task, error) {
	if f.InsertTaskErr != nil {
		return remote.Task{}, f.InsertTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.NewString()
	f.clock = f.clock.Add(time.Minute)
	t.CreatedAt = f.clock
	f.tasks = append([]remote.Task{t}, f.tasks...)
	return t, nil
}

// UpdateTask implements remote.Store.
func (f *FakeStore) UpdateTask(ctx context.Context, id string, fields remote.TaskFields) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if fields.Title != nil {
			f.tasks[i].Title = *fields.Title
		}
		if fields.List != nil {
			f.tasks[i].List = *fields.List
		}
		if fields.Completed != nil {
			f.tasks[i].Completed = *fields.Completed
		}
		if fields.Due != nil {
			f.tasks[i].Due = *fields.Due
		}
		if fields.Tags != nil {
			f.tasks[i].Tags = *fields.Tags
		}
		return nil
	}
	return remote.ErrNotFound
}

// ReassignTasks implements remote.Store.
func (f *FakeStore) ReassignTasks(ctx context.Context, owner, from, to string) error {
	if f.ReassignTasksErr != nil {
		return f.ReassignTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].Owner == owner && f.tasks[i].ListName() == from {
			f.tasks[i].List = to
		}
	}
	return nil
}

// DeleteTask implements remote.Store.
func (f *FakeStore) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

// ListLists implements remote.Store.
func (f *FakeStore) ListLists(ctx context.Context, owner string) ([]remote.List, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []remote.List
	for _, l := range f.lists {
		if l.Owner == owner {
			out = append(out, l)
		}
	}
	return out, nil
}

// InsertList implements remote.Store.
func (f *FakeStore) InsertList(ctx context.Context, l remote.List) (remote.List, error) {
	if f.InsertListErr != nil {
		return remote.List{}, f.InsertListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.lists {
		if existing.Owner == l.Owner && existing.Name == l.Name {
			return remote.List{}, remote.ErrConflict
		}
	}
	l.ID = uuid.NewString()
	f.lists = append(f.lists, l)
	return l, nil
}

// DeleteList implements remote.Store.
func (f *FakeStore) DeleteList(ctx context.Context, id string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}
