package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/lists"
	"taskdeck/internal/remote"
	"taskdeck/internal/store"
)

// fail prints err and maps it to an exit code. Validation errors are user
// errors; auth errors and backend errors get their own codes.
func fail(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, store.ErrEmptyTitle),
		errors.Is(err, store.ErrUnknownTask),
		errors.Is(err, lists.ErrEmptyName),
		errors.Is(err, lists.ErrDuplicateName),
		errors.Is(err, lists.ErrUnknownList),
		errors.Is(err, remote.ErrNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, remote.ErrAuth):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// ok prints the current success notification, or a bare "ok" when the
// channel is empty. Suppressed by --quiet.
func ok(a *app.App, cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		if m := a.Notifier.Current(); m != nil {
			fmt.Fprintln(out, m.Text)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}

// taskByNumber resolves a 1-based position in the cached listing (newest
// first) to a task.
func taskByNumber(a *app.App, arg string) (remote.Task, error) {
	num, err := strconv.Atoi(arg)
	if err != nil {
		return remote.Task{}, fmt.Errorf("invalid task number: %s", arg)
	}
	tasks := a.Tasks.Tasks()
	if num < 1 || num > len(tasks) {
		return remote.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return tasks[num-1], nil
}

// requireLoaded fails with the retryable load error when the initial task
// fetch did not succeed.
func requireLoaded(a *app.App, errOut io.Writer) (int, bool) {
	if err := a.Tasks.LoadErr(); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError, false
	}
	return exitcode.Success, true
}

// tagsFlag collects repeatable --tag values in order.
type tagsFlag []string

func (t *tagsFlag) String() string { return fmt.Sprint([]string(*t)) }

func (t *tagsFlag) Set(v string) error {
	*t = append(*t, v)
	return nil
}
