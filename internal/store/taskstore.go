// Package store maintains the in-memory task cache for the authenticated
// owner, synchronized against the remote store.
package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"taskdeck/internal/notify"
	"taskdeck/internal/remote"
)

// Validation errors, rejected before any remote call.
var (
	// ErrEmptyTitle is returned when a title is empty after trimming.
	ErrEmptyTitle = errors.New("title required")

	// ErrUnknownTask is returned for ids not present in the cache.
	ErrUnknownTask = errors.New("task not found")
)

// TaskStore caches the owner's tasks, newest first. Mutations go through
// the remote store; the cache reflects server-confirmed values except for
// the completion toggle, which applies optimistically and serializes per
// task id.
type TaskStore struct {
	remote   remote.Store
	owner    string
	notifier *notify.Notifier
	log      *slog.Logger

	mu       sync.Mutex
	tasks    []remote.Task
	loaded   bool
	loadErr  error
	selected string
	closed   bool

	inflight map[string]*sync.Mutex // one queue per task id
}

// New creates an empty store for owner.
func New(rs remote.Store, owner string, notifier *notify.Notifier, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		remote:   rs,
		owner:    owner,
		notifier: notifier,
		log:      logger,
		inflight: make(map[string]*sync.Mutex),
	}
}

// Load populates the cache from the remote store. On failure the cache
// stays empty and the store records a retryable load error; the failure
// is logged, not shown to the user.
func (s *TaskStore) Load(ctx context.Context) error {
	tasks, err := s.remote.ListTasks(ctx, s.owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if err != nil {
		s.log.Warn("task load failed", "err", err)
		s.tasks = nil
		s.loaded = false
		s.loadErr = err
		return err
	}
	s.tasks = tasks
	s.loaded = true
	s.loadErr = nil
	return nil
}

// Loaded reports whether the cache holds a successful load.
func (s *TaskStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LoadErr returns the retryable load error, if any.
func (s *TaskStore) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Tasks returns a copy of the cached tasks, newest first.
func (s *TaskStore) Tasks() []remote.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]remote.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the cached task with the given id.
func (s *TaskStore) Get(id string) (remote.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return remote.Task{}, false
}

// Create validates the title, submits the task and prepends the
// server-confirmed row to the cache. The cache takes the remote values,
// not the locally guessed ones.
func (s *TaskStore) Create(ctx context.Context, title, list string, due remote.Date, tags []string) (remote.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return remote.Task{}, ErrEmptyTitle
	}

	draft := remote.Task{
		Owner:     s.owner,
		Title:     title,
		List:      list,
		Due:       due,
		Tags:      tags,
		Completed: false,
	}
	created, err := s.remote.InsertTask(ctx, draft)
	if err != nil {
		s.notifier.Errorf("could not create task: %v", err)
		return remote.Task{}, err
	}

	s.mu.Lock()
	if !s.closed {
		s.tasks = append([]remote.Task{created}, s.tasks...)
	}
	s.mu.Unlock()

	s.notifier.Successf("task created")
	return created, nil
}

// SetCompletion toggles a task's completed flag. The local value applies
// optimistically; concurrent toggles for the same id queue behind each
// other so cache and remote never interleave. On remote failure the
// optimistic value stays and a failure notification fires.
func (s *TaskStore) SetCompletion(ctx context.Context, id string, completed bool) error {
	lock := s.entityLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	idx := -1
	for i, t := range s.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.notifier.Errorf("task not found")
		return ErrUnknownTask
	}
	s.tasks[idx].Completed = completed
	s.mu.Unlock()

	if err := s.remote.UpdateTask(ctx, id, remote.TaskFields{Completed: &completed}); err != nil {
		s.notifier.Errorf("could not update task: %v", err)
		return err
	}

	if completed {
		s.notifier.Successf("task completed")
	} else {
		s.notifier.Successf("task reopened")
	}
	return nil
}

// Update sends the edited subset of fields and, on success, replaces the
// cached entry wholesale with the edited task. Remote columns outside the
// subset are never touched.
func (s *TaskStore) Update(ctx context.Context, task remote.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	idx := -1
	for i, t := range s.tasks {
		if t.ID == task.ID {
			idx = i
			break
		}
	}
	s.mu.Unlock()
	if idx < 0 {
		s.notifier.Errorf("task not found")
		return ErrUnknownTask
	}

	fields := remote.TaskFields{
		Title:     &task.Title,
		List:      &task.List,
		Completed: &task.Completed,
	}
	if task.HasDue() {
		fields.Due = &task.Due
	}
	if task.Tags != nil {
		fields.Tags = &task.Tags
	}

	if err := s.remote.UpdateTask(ctx, task.ID, fields); err != nil {
		s.notifier.Errorf("could not update task: %v", err)
		return err
	}

	s.mu.Lock()
	if !s.closed {
		for i, t := range s.tasks {
			if t.ID == task.ID {
				s.tasks[i] = task
				break
			}
		}
	}
	s.mu.Unlock()

	s.notifier.Successf("task updated")
	return nil
}

// Delete removes the task remotely first; only on success does it leave
// the cache and the current selection.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for _, t := range s.tasks {
		if t.ID == id {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		s.notifier.Errorf("task not found")
		return ErrUnknownTask
	}

	if err := s.remote.DeleteTask(ctx, id); err != nil {
		s.notifier.Errorf("could not delete task: %v", err)
		return err
	}

	s.mu.Lock()
	if !s.closed {
		for i, t := range s.tasks {
			if t.ID == id {
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				break
			}
		}
		if s.selected == id {
			s.selected = ""
		}
	}
	s.mu.Unlock()

	s.notifier.Successf("task deleted")
	return nil
}

// ReassignLocal mirrors a remote list reassignment into the cache. Used
// by the list-deletion cascade after the remote reassignment succeeded.
func (s *TaskStore) ReassignLocal(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i := range s.tasks {
		if s.tasks[i].ListName() == from {
			s.tasks[i].List = to
		}
	}
}

// Select marks a task as the current selection.
func (s *TaskStore) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// Selected returns the currently selected task, if any.
func (s *TaskStore) Selected() (remote.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return remote.Task{}, false
	}
	for _, t := range s.tasks {
		if t.ID == s.selected {
			return t, true
		}
	}
	return remote.Task{}, false
}

// Close marks the store dead. Results of in-flight operations arriving
// after Close are discarded; the cache is dropped with the session.
func (s *TaskStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tasks = nil
	s.selected = ""
	s.loaded = false
}

// entityLock returns the per-id mutex, creating it on first use.
func (s *TaskStore) entityLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.inflight[id]
	if !ok {
		lock = &sync.Mutex{}
		s.inflight[id] = lock
	}
	return lock
}
