package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "taskdeck done <num>" }
func (c *DoneCmd) NeedsBackend() bool { return true }
func (c *DoneCmd) NeedsAuth() bool    { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runSetCompletion(ctx, cfg, a, args, true, out, errOut)
}

// UndoneCmd implements the undone command.
type UndoneCmd struct{}

func (c *UndoneCmd) Name() string       { return "undone" }
func (c *UndoneCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string   { return "Mark a task not completed" }
func (c *UndoneCmd) Usage() string      { return "taskdeck undone <num>" }
func (c *UndoneCmd) NeedsBackend() bool { return true }
func (c *UndoneCmd) NeedsAuth() bool    { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runSetCompletion(ctx, cfg, a, args, false, out, errOut)
}

// runSetCompletion is the shared implementation for done and undone.
func runSetCompletion(ctx context.Context, cfg *config.Config, a *app.App, args []string, completed bool, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task number required")
		return exitcode.UserError
	}
	if code, loaded := requireLoaded(a, errOut); !loaded {
		return code
	}

	task, err := taskByNumber(a, args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := a.Tasks.SetCompletion(ctx, task.ID, completed); err != nil {
		return fail(errOut, err)
	}
	return ok(a, cfg, out)
}
