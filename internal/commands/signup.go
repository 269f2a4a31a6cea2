package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/remote"
)

func init() {
	Register(&SignupCmd{})
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	email    string
	password string
	redirect string
}

// SetCredentials sets email and password (for testing).
func (c *SignupCmd) SetCredentials(email, password string) {
	c.email = email
	c.password = password
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return nil }
func (c *SignupCmd) Synopsis() string  { return "Create a new account" }
func (c *SignupCmd) Usage() string {
	return "taskdeck signup --email <email> --password <password> [--redirect <url>]"
}
func (c *SignupCmd) NeedsBackend() bool { return true }
func (c *SignupCmd) NeedsAuth() bool    { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.redirect, "redirect", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if c.email == "" || c.password == "" {
		fmt.Fprintln(errOut, "error: email and password required")
		return exitcode.UserError
	}

	if err := a.Remote.SignUp(ctx, c.email, c.password, c.redirect); err != nil {
		if errors.Is(err, remote.ErrAuth) {
			fmt.Fprintf(errOut, "error: sign up failed: %v\n", err)
			return exitcode.AuthError
		}
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "check your email for the confirmation link")
	}
	return exitcode.Success
}
