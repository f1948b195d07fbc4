package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&UpdateCmd{})
}

// UpdateCmd implements the update command.
// Only the flags that are given change the task.
type UpdateCmd struct {
	title       optString
	description optString
	done        bool
	pending     bool
}

func (c *UpdateCmd) Name() string      { return "update" }
func (c *UpdateCmd) Aliases() []string { return []string{"edit"} }
func (c *UpdateCmd) Synopsis() string  { return "Change a task" }
func (c *UpdateCmd) Usage() string {
	return "todo update [--title <text>] [--desc <text>] [--done|--pending] <n>"
}
func (c *UpdateCmd) NeedsStore() bool { return true }

func (c *UpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description = optString{}, optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.pending, "pending", false, "")
}

func (c *UpdateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	position, err := ParsePosition(args)
	if err != nil {
		return reportPositionError(errOut, err)
	}

	if c.done && c.pending {
		fmt.Fprintln(errOut, "error: cannot use both --done and --pending")
		return exitcode.UserError
	}

	upd := service.Update{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
	}
	switch {
	case c.done:
		upd.Completed = service.Bool(true)
	case c.pending:
		upd.Completed = service.Bool(false)
	}

	if _, err := svc.Update(ctx, position, upd); err != nil {
		return reportStoreError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Task %d updated successfully.\n", position)
	}
	return exitcode.Success
}
