package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/remote"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the flags given are changed;
// everything else on the task is kept as cached.
type EditCmd struct {
	title    string
	listName string
	due      string
	tags     tagsFlag
	setTags  bool
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "taskdeck edit [--title <title>] [--list <list-name>] [--due <date>] [--tag <tag>]... <num>"
}
func (c *EditCmd) NeedsBackend() bool { return true }
func (c *EditCmd) NeedsAuth() bool    { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.Var(&c.tags, "tag", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
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

	if c.title != "" {
		task.Title = c.title
	}
	if c.listName != "" {
		task.List = c.listName
	}
	if c.due != "" {
		parsed, err := remote.ParseDate(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		task.Due = parsed
	}
	if len(c.tags) > 0 {
		task.Tags = c.tags
	}

	a.Tasks.Select(task.ID)
	if err := a.Tasks.Update(ctx, task); err != nil {
		return fail(errOut, err)
	}
	return ok(a, cfg, out)
}
