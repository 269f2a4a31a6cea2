package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command. Tasks in the deleted list are
// moved to the default list first, so nothing is orphaned if the removal
// fails halfway.
type RmListCmd struct{}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return nil }
func (c *RmListCmd) Synopsis() string   { return "Delete a list" }
func (c *RmListCmd) Usage() string      { return "taskdeck rmlist [common flags] <list-name>" }
func (c *RmListCmd) NeedsBackend() bool { return true }
func (c *RmListCmd) NeedsAuth() bool    { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	entry, found := a.Lists.ResolveName(name)
	if !found {
		fmt.Fprintf(errOut, "error: list not found: %s\n", name)
		return exitcode.UserError
	}
	if strings.HasPrefix(entry.ID, "implicit:") {
		fmt.Fprintf(errOut, "error: list has no persisted row: %s\n", name)
		return exitcode.UserError
	}

	if err := a.Lists.Delete(ctx, entry.ID); err != nil {
		return fail(errOut, err)
	}
	return ok(a, cfg, out)
}
