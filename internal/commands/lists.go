package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command. It prints the derived display
// set, so implicit lists inferred from task data show up too.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "Print all lists" }
func (c *ListsCmd) Usage() string      { return "taskdeck lists [common flags]" }
func (c *ListsCmd) NeedsBackend() bool { return true }
func (c *ListsCmd) NeedsAuth() bool    { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if err := a.Lists.LoadErr(); err != nil {
		return fail(errOut, err)
	}
	for _, e := range a.Lists.Derived() {
		output.FormatEntry(out, e)
	}
	return exitcode.Success
}
