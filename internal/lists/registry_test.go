package lists_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/lists"
	"taskdeck/internal/notify"
	"taskdeck/internal/remote"
	"taskdeck/internal/store"
	"taskdeck/internal/testutil"
)

func newRegistry(t *testing.T, fake *testutil.FakeStore) (*lists.Registry, *store.TaskStore, *notify.Notifier) {
	t.Helper()
	n := notify.New(0)
	ts := store.New(fake, testutil.Owner, n, nil)
	require.NoError(t, ts.Load(context.Background()))
	r := lists.New(fake, ts, testutil.Owner, n, nil)
	require.NoError(t, r.Load(context.Background()))
	return r, ts, n
}

func TestDeriveUnionAndColors(t *testing.T) {
	tasks := []remote.Task{
		{ID: "1", Title: "a", List: "Work"},
		{ID: "2", Title: "b"}, // implicit default
		{ID: "3", Title: "c", List: "Work"},
		{ID: "4", Title: "d", List: "Errands"},
	}
	persisted := []remote.List{
		{ID: "l1", Name: "Work", Color: "blue"},
	}

	entries := lists.Derive(tasks, persisted)
	require.Len(t, entries, 3)

	assert.Equal(t, lists.Entry{ID: "l1", Name: "Work", Color: "blue"}, entries[0],
		"persisted row wins for color")
	assert.Equal(t, remote.DefaultList, entries[1].Name)
	assert.Equal(t, lists.FallbackColor, entries[1].Color)
	assert.Equal(t, "Errands", entries[2].Name)
	assert.Equal(t, lists.FallbackColor, entries[2].Color)
}

func TestDeriveIsPure(t *testing.T) {
	tasks := []remote.Task{{ID: "1", Title: "a", List: "Work"}}
	persisted := []remote.List{{ID: "l1", Name: "Home", Color: "teal"}}

	first := lists.Derive(tasks, persisted)
	second := lists.Derive(tasks, persisted)
	assert.Equal(t, first, second)
	assert.Equal(t, "Work", tasks[0].List, "inputs never mutated")
}

func TestCreateAssignsPaletteColor(t *testing.T) {
	fake := testutil.NewFakeStore()
	r, _, _ := newRegistry(t, fake)

	created, err := r.Create(context.Background(), "Groceries")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Contains(t, lists.Palette, created.Color)

	got := r.Lists()
	require.Len(t, got, 1)
	assert.Equal(t, created, got[0])
}

func TestCreateRejectsBlankAndDuplicate(t *testing.T) {
	fake := testutil.NewFakeStore()
	fake.AddList(remote.List{Name: "Work", Color: "blue"})
	r, _, _ := newRegistry(t, fake)

	_, err := r.Create(context.Background(), "  ")
	assert.ErrorIs(t, err, lists.ErrEmptyName)

	_, err = r.Create(context.Background(), "Work")
	assert.ErrorIs(t, err, lists.ErrDuplicateName)

	// Case-sensitive: a different casing is a different list.
	_, err = r.Create(context.Background(), "work")
	assert.NoError(t, err)
}

func TestCreateRejectsImplicitDuplicate(t *testing.T) {
	fake := testutil.NewFakeStore()
	fake.AddTask(remote.Task{Title: "a", List: remote.DefaultList})
	r, _, _ := newRegistry(t, fake)

	// No persisted "Personal" row exists, but a task references it.
	_, err := r.Create(context.Background(), remote.DefaultList)
	assert.ErrorIs(t, err, lists.ErrDuplicateName)
}

func TestDeleteCascadeReassignsTasks(t *testing.T) {
	fake := testutil.NewFakeStore()
	id := fake.AddList(remote.List{Name: "Work", Color: "blue"})
	fake.AddTask(remote.Task{Title: "a", List: "Work"})
	fake.AddTask(remote.Task{Title: "b", List: "Work"})
	fake.AddTask(remote.Task{Title: "c", List: "Home"})
	r, ts, _ := newRegistry(t, fake)
	r.Select(id)

	require.NoError(t, r.Delete(context.Background(), id))

	for _, task := range ts.Tasks() {
		assert.NotEqual(t, "Work", task.ListName(), "no task references the deleted list")
	}
	reassigned := 0
	for _, task := range ts.Tasks() {
		if task.ListName() == remote.DefaultList {
			reassigned++
		}
	}
	assert.Equal(t, 2, reassigned)
	assert.Empty(t, r.Lists())
	assert.Empty(t, r.Active(), "active selection cleared with the deleted list")

	// Remote side mirrors the reassignment.
	remoteTasks, err := fake.ListTasks(context.Background(), testutil.Owner)
	require.NoError(t, err)
	for _, task := range remoteTasks {
		assert.NotEqual(t, "Work", task.ListName())
	}
}

func TestDeleteAbortsWhenReassignFails(t *testing.T) {
	fake := testutil.NewFakeStore()
	id := fake.AddList(remote.List{Name: "Work", Color: "blue"})
	fake.AddTask(remote.Task{Title: "a", List: "Work"})
	r, ts, n := newRegistry(t, fake)

	fake.ReassignTasksErr = remote.ErrUnavailable
	require.Error(t, r.Delete(context.Background(), id))

	// Nothing moved, nothing deleted: reassignment runs first.
	require.Len(t, r.Lists(), 1)
	assert.Equal(t, "Work", ts.Tasks()[0].ListName())

	msg := n.Current()
	require.NotNil(t, msg)
	assert.Equal(t, notify.Error, msg.Kind)
}

func TestDeleteRowFailureKeepsReassignment(t *testing.T) {
	fake := testutil.NewFakeStore()
	id := fake.AddList(remote.List{Name: "Work", Color: "blue"})
	fake.AddTask(remote.Task{Title: "a", List: "Work"})
	r, ts, _ := newRegistry(t, fake)

	fake.DeleteListErr = remote.ErrUnavailable
	require.Error(t, r.Delete(context.Background(), id))

	// The row survives but the tasks already moved to the default list;
	// retrying the delete is safe and leaves no orphans either way.
	require.Len(t, r.Lists(), 1)
	assert.Equal(t, remote.DefaultList, ts.Tasks()[0].ListName())
}

func TestDeleteUnknownList(t *testing.T) {
	fake := testutil.NewFakeStore()
	r, _, n := newRegistry(t, fake)

	err := r.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, lists.ErrUnknownList)

	msg := n.Current()
	require.NotNil(t, msg)
	assert.Equal(t, notify.Error, msg.Kind)
}
