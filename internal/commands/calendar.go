package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/view"
)

func init() {
	Register(&CalendarCmd{})
}

// CalendarCmd implements the calendar command.
type CalendarCmd struct{}

func (c *CalendarCmd) Name() string       { return "calendar" }
func (c *CalendarCmd) Aliases() []string  { return []string{"cal"} }
func (c *CalendarCmd) Synopsis() string   { return "Show dated tasks grouped by day" }
func (c *CalendarCmd) Usage() string      { return "taskdeck calendar [common flags]" }
func (c *CalendarCmd) NeedsBackend() bool { return true }
func (c *CalendarCmd) NeedsAuth() bool    { return true }

func (c *CalendarCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CalendarCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if code, loaded := requireLoaded(a, errOut); !loaded {
		return code
	}

	groups := view.Calendar(a.Tasks.Tasks())
	if len(groups) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no dated tasks")
		}
		return exitcode.Success
	}
	output.FormatCalendar(out, groups)
	return exitcode.Success
}
