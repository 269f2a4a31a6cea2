// Package view derives the visible task slice from the task cache, the
// search query and the active filters. All derivations are pure.
package view

import (
	"fmt"
	"sort"
	"strings"

	"taskdeck/internal/lists"
	"taskdeck/internal/remote"
)

// Mode is the due-date filter mode.
type Mode int

const (
	// All applies no date constraint.
	All Mode = iota

	// Today keeps tasks due on the current calendar date.
	Today

	// Upcoming keeps tasks due strictly after the current calendar date.
	Upcoming
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "all", "":
		return All, nil
	case "today":
		return Today, nil
	case "upcoming":
		return Upcoming, nil
	default:
		return All, fmt.Errorf("invalid filter: %s", s)
	}
}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case All:
		return "all"
	case Today:
		return "today"
	case Upcoming:
		return "upcoming"
	default:
		return "unknown"
	}
}

// Query is the full filter input.
type Query struct {
	// Search is matched case-insensitively as a substring of the title;
	// empty matches all.
	Search string

	// Mode is the due-date constraint.
	Mode Mode

	// SelectedList is the derived-entry id of the selected list, empty
	// for no selection. An id absent from Lists applies no constraint.
	SelectedList string

	// Today is the current calendar date used by Today and Upcoming.
	Today remote.Date
}

// Filter applies the query to the tasks as a conjunction of search, list
// selection and date mode, preserving input order. Pure: identical inputs
// yield identical output and the inputs are never mutated.
func Filter(tasks []remote.Task, entries []lists.Entry, q Query) []remote.Task {
	search := strings.ToLower(q.Search)

	listName := ""
	if q.SelectedList != "" {
		for _, e := range entries {
			if e.ID == q.SelectedList {
				listName = e.Name
				break
			}
		}
	}

	out := make([]remote.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		if listName != "" && t.ListName() != listName {
			continue
		}
		switch q.Mode {
		case Today:
			if !t.HasDue() || t.Due != q.Today {
				continue
			}
		case Upcoming:
			if !t.HasDue() || !t.Due.After(q.Today) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// DayGroup is one calendar-view bucket.
type DayGroup struct {
	Date  remote.Date
	Tasks []remote.Task
}

// Calendar groups all dated tasks by due date, groups ascending by date
// string. Tasks without a due date are omitted.
func Calendar(tasks []remote.Task) []DayGroup {
	byDate := make(map[remote.Date][]remote.Task)
	for _, t := range tasks {
		if !t.HasDue() {
			continue
		}
		byDate[t.Due] = append(byDate[t.Due], t)
	}

	dates := make([]remote.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	groups := make([]DayGroup, len(dates))
	for i, d := range dates {
		groups[i] = DayGroup{Date: d, Tasks: byDate[d]}
	}
	return groups
}

// Engine memoizes Filter: the derivation reruns only when an input
// changed since the previous call.
type Engine struct {
	lastTasks   []remote.Task
	lastEntries []lists.Entry
	lastQuery   Query
	lastResult  []remote.Task
	valid       bool
}

// Filter returns the filtered slice, recomputing only on changed inputs.
func (e *Engine) Filter(tasks []remote.Task, entries []lists.Entry, q Query) []remote.Task {
	if e.valid && q == e.lastQuery && equalTasks(tasks, e.lastTasks) && equalEntries(entries, e.lastEntries) {
		return e.lastResult
	}
	e.lastTasks = tasks
	e.lastEntries = entries
	e.lastQuery = q
	e.lastResult = Filter(tasks, entries, q)
	e.valid = true
	return e.lastResult
}

func equalTasks(a, b []remote.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Title != y.Title || x.List != y.List ||
			x.Due != y.Due || x.Completed != y.Completed || len(x.Tags) != len(y.Tags) {
			return false
		}
		for j := range x.Tags {
			if x.Tags[j] != y.Tags[j] {
				return false
			}
		}
	}
	return true
}

func equalEntries(a, b []lists.Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
