// Package remote defines the backend-agnostic contract for the task store.
package remote

import (
	"fmt"
	"time"
)

// DefaultList is the list name assumed when a task carries none.
// It need not exist as a persisted row.
const DefaultList = "Personal"

// Date is a calendar date with no time component, formatted as
// "YYYY-MM-DD". Lexicographic order on the string is chronological order.
type Date string

// DateLayout is the wire and display format for Date values.
const DateLayout = "2006-01-02"

// ParseDate validates s as a calendar date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return string(d) > string(other)
}

// Task represents a single task item owned by a user.
type Task struct {
	ID        string
	Owner     string
	Title     string
	List      string // empty means DefaultList
	Due       Date   // empty means no due date
	Tags      []string
	Completed bool
	CreatedAt time.Time
}

// ListName returns the containing list name, resolving the default.
func (t Task) ListName() string {
	if t.List == "" {
		return DefaultList
	}
	return t.List
}

// HasDue reports whether the task carries a due date.
func (t Task) HasDue() bool {
	return t.Due != ""
}

// List represents a user-defined named list.
type List struct {
	ID    string
	Owner string
	Name  string
	Color string
}

// TaskFields is the partial column set sent on task updates.
// Nil fields are omitted from the request so remote columns outside the
// edited subset are never clobbered.
type TaskFields struct {
	Title     *string
	List      *string
	Completed *bool
	Due       *Date
	Tags      *[]string
}

// User identifies the authenticated owner.
type User struct {
	ID    string
	Email string
}

// Session is the authenticated identity and its validity window.
type Session struct {
	User      User
	ExpiresAt time.Time
}
