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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskdeck help" }
func (c *HelpCmd) NeedsBackend() bool { return false }
func (c *HelpCmd) NeedsAuth() bool    { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                           List all tasks
  taskdeck list [--filter all|today|upcoming] [--search <query>] [--list <list-name>]
  taskdeck add [--list <list-name>] [--due <date>] [--tag <tag>]... <title...>
  taskdeck edit [--title <t>] [--list <list-name>] [--due <date>] [--tag <tag>]... <num>
  taskdeck done <num>
  taskdeck undone <num>
  taskdeck rm <num>
  taskdeck calendar
  taskdeck lists
  taskdeck createlist <list-name>
  taskdeck rmlist <list-name>
  taskdeck login --email <email> --password <password>
  taskdeck signup --email <email> --password <password> [--redirect <url>]
  taskdeck logout
  taskdeck help
  taskdeck version

Task numbers refer to positions in the unfiltered listing, newest first.
Dates use the YYYY-MM-DD format.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKDECK_URL       Backend base URL (required)
  TASKDECK_ANON_KEY  Backend access key (required)
`
