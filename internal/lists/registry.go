// Package lists maintains the cache of user-defined lists and the derived
// display set that includes implicit lists inferred from task data.
package lists

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"taskdeck/internal/notify"
	"taskdeck/internal/remote"
	"taskdeck/internal/store"
)

// Palette is the fixed color set lists draw from at creation.
var Palette = []string{
	"red", "orange", "amber", "green", "teal", "blue", "indigo", "purple", "pink",
}

// FallbackColor is assigned to implicit lists that have no persisted row.
const FallbackColor = "gray"

// Validation errors, rejected before any remote call.
var (
	// ErrEmptyName is returned when a list name is empty after trimming.
	ErrEmptyName = errors.New("list name required")

	// ErrDuplicateName is returned when the name is already present in
	// the derived display set (case-sensitive, implicit names included).
	ErrDuplicateName = errors.New("list already exists")

	// ErrUnknownList is returned for ids not present in the cache.
	ErrUnknownList = errors.New("list not found")
)

// Entry is one row of the derived display set.
type Entry struct {
	ID    string
	Name  string
	Color string
}

// implicitID builds the synthetic id for a list that has no persisted row.
func implicitID(name string) string {
	return "implicit:" + name
}

// Derive computes the display set: the union of persisted list names and
// every distinct list name found on the tasks (absent values resolve to
// the default list). Persisted rows win for color; purely-implicit names
// get FallbackColor. Pure function, no I/O.
func Derive(tasks []remote.Task, persisted []remote.List) []Entry {
	entries := make([]Entry, 0, len(persisted))
	seen := make(map[string]bool, len(persisted))
	for _, l := range persisted {
		entries = append(entries, Entry{ID: l.ID, Name: l.Name, Color: l.Color})
		seen[l.Name] = true
	}
	for _, t := range tasks {
		name := t.ListName()
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, Entry{ID: implicitID(name), Name: name, Color: FallbackColor})
	}
	return entries
}

// Registry caches the owner's persisted lists and tracks the active
// filter selection.
type Registry struct {
	remote   remote.Store
	tasks    *store.TaskStore
	owner    string
	notifier *notify.Notifier
	log      *slog.Logger

	// pick chooses a palette index; replaceable in tests
	pick func(n int) int

	mu      sync.Mutex
	lists   []remote.List
	loaded  bool
	loadErr error
	active  string // selected list id, empty when none
	closed  bool
}

// New creates an empty registry for owner. The task store is consulted
// for implicit lists and mirrors the deletion cascade.
func New(rs remote.Store, tasks *store.TaskStore, owner string, notifier *notify.Notifier, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		remote:   rs,
		tasks:    tasks,
		owner:    owner,
		notifier: notifier,
		log:      logger,
		pick:     rand.Intn,
	}
}

// Load populates the cache from the remote store. On failure the cache
// stays empty with a retryable load error, logged but not shown.
func (r *Registry) Load(ctx context.Context) error {
	lists, err := r.remote.ListLists(ctx, r.owner)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	if err != nil {
		r.log.Warn("list load failed", "err", err)
		r.lists = nil
		r.loaded = false
		r.loadErr = err
		return err
	}
	r.lists = lists
	r.loaded = true
	r.loadErr = nil
	return nil
}

// Lists returns a copy of the persisted lists.
func (r *Registry) Lists() []remote.List {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]remote.List, len(r.lists))
	copy(out, r.lists)
	return out
}

// LoadErr returns the retryable load error, if any.
func (r *Registry) LoadErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

// Derived returns the current display set.
func (r *Registry) Derived() []Entry {
	return Derive(r.tasks.Tasks(), r.Lists())
}

// Create validates the name against the derived display set, assigns a
// palette color and appends the server-confirmed row to the cache.
func (r *Registry) Create(ctx context.Context, name string) (remote.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return remote.List{}, ErrEmptyName
	}
	for _, e := range r.Derived() {
		if e.Name == name {
			return remote.List{}, ErrDuplicateName
		}
	}

	draft := remote.List{
		Owner: r.owner,
		Name:  name,
		Color: Palette[r.pick(len(Palette))],
	}
	created, err := r.remote.InsertList(ctx, draft)
	if err != nil {
		r.notifier.Errorf("could not create list: %v", err)
		return remote.List{}, err
	}

	r.mu.Lock()
	if !r.closed {
		r.lists = append(r.lists, created)
	}
	r.mu.Unlock()

	r.notifier.Successf("list created")
	return created, nil
}

// Delete runs the deletion cascade: reassign referencing tasks to the
// default list remotely, mirror that into the task cache, then delete the
// row, remove it locally and clear the selection if it pointed at the
// deleted list. The whole operation aborts on the first error so no task
// is left referencing a deleted list.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	var target *remote.List
	for i := range r.lists {
		if r.lists[i].ID == id {
			target = &r.lists[i]
			break
		}
	}
	if target == nil {
		r.mu.Unlock()
		r.notifier.Errorf("list not found")
		return ErrUnknownList
	}
	name := target.Name
	r.mu.Unlock()

	if err := r.remote.ReassignTasks(ctx, r.owner, name, remote.DefaultList); err != nil {
		r.notifier.Errorf("could not move tasks out of %s: %v", name, err)
		return err
	}
	r.tasks.ReassignLocal(name, remote.DefaultList)

	if err := r.remote.DeleteList(ctx, id); err != nil {
		r.notifier.Errorf("could not delete list: %v", err)
		return err
	}

	r.mu.Lock()
	if !r.closed {
		for i, l := range r.lists {
			if l.ID == id {
				r.lists = append(r.lists[:i], r.lists[i+1:]...)
				break
			}
		}
		if r.active == id {
			r.active = ""
		}
	}
	r.mu.Unlock()

	r.notifier.Successf("list deleted")
	return nil
}

// Select marks a list entry as the active filter selection.
func (r *Registry) Select(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = id
}

// Active returns the active filter selection, empty when none.
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// ResolveName finds the derived entry with the given name.
func (r *Registry) ResolveName(name string) (Entry, bool) {
	for _, e := range r.Derived() {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Close marks the registry dead; the cache is dropped with the session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.lists = nil
	r.active = ""
	r.loaded = false
}
