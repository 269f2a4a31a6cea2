package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/remote"
	"taskdeck/internal/view"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskdeck` (no args) and `taskdeck list`.
type ListCmd struct {
	filter   string
	search   string
	listName string

	// now is replaceable in tests
	now func() time.Time
}

// SetNow sets the clock (for testing).
func (c *ListCmd) SetNow(now func() time.Time) {
	c.now = now
}

// SetFilter sets the filter mode (for testing).
func (c *ListCmd) SetFilter(filter string) {
	c.filter = filter
}

// SetSearch sets the search query (for testing).
func (c *ListCmd) SetSearch(search string) {
	c.search = search
}

// SetListName sets the list selection (for testing).
func (c *ListCmd) SetListName(name string) {
	c.listName = name
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskdeck list [--filter all|today|upcoming] [--search <query>] [--list <list-name>]"
}
func (c *ListCmd) NeedsBackend() bool { return true }
func (c *ListCmd) NeedsAuth() bool    { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "all", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	mode, err := view.ParseMode(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if code, loaded := requireLoaded(a, errOut); !loaded {
		return code
	}

	entries := a.Lists.Derived()

	selected := a.Lists.Active()
	if c.listName != "" {
		entry, found := a.Lists.ResolveName(c.listName)
		if !found {
			fmt.Fprintf(errOut, "error: list not found: %s\n", c.listName)
			return exitcode.UserError
		}
		a.Lists.Select(entry.ID)
		selected = entry.ID
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	all := a.Tasks.Tasks()
	tasks := a.View.Filter(all, entries, view.Query{
		Search:       c.search,
		Mode:         mode,
		SelectedList: selected,
		Today:        remote.DateOf(now()),
	})

	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	// Numbers are positions in the unfiltered newest-first cache, so a
	// number shown under any filter names the same task for done/rm/edit.
	position := make(map[string]int, len(all))
	for i, t := range all {
		position[t.ID] = i + 1
	}
	for _, t := range tasks {
		output.FormatTask(out, position[t.ID], t)
	}
	return exitcode.Success
}
