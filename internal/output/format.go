// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/lists"
	"taskdeck/internal/remote"
	"taskdeck/internal/view"
)

// FormatTask formats a numbered task line.
// Format: "{N:>4}  [{x| }] {TITLE}" plus due date and tags when present.
func FormatTask(w io.Writer, num int, task remote.Task) {
	box := " "
	if task.Completed {
		box = "x"
	}
	line := fmt.Sprintf("%4d  [%s] %s", num, box, normalizeTitle(task.Title))
	if task.HasDue() {
		line += fmt.Sprintf("  (due %s)", task.Due)
	}
	for _, tag := range task.Tags {
		line += "  #" + tag
	}
	fmt.Fprintln(w, line)
}

// FormatEntry formats one row of the derived list display set.
func FormatEntry(w io.Writer, e lists.Entry) {
	name := normalizeTitle(e.Name)
	if strings.HasPrefix(e.ID, "implicit:") {
		fmt.Fprintf(w, "%s (%s) [implicit]\n", name, e.Color)
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", name, e.Color)
}

// FormatCalendar formats day groups for the calendar view.
func FormatCalendar(w io.Writer, groups []view.DayGroup) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, g.Date)
		for j, t := range g.Tasks {
			FormatTask(w, j+1, t)
		}
	}
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
