package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command: it prints the Google Tasks lists
// that push can target.
type ListsCmd struct {
	remote service.Remote
}

// SetRemote implements RemoteCommand.
func (c *ListsCmd) SetRemote(remote service.Remote) { c.remote = remote }

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print Google Tasks lists" }
func (c *ListsCmd) Usage() string     { return "todo lists" }
func (c *ListsCmd) NeedsStore() bool  { return false }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.remote == nil {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return exitcode.AuthError
	}

	lists, err := c.remote.ListLists(ctx)
	if err != nil {
		return reportRemoteError(errOut, err)
	}

	for _, list := range lists {
		output.FormatRemoteList(out, list, list.Title == cfg.Settings.PushList)
	}
	return exitcode.Success
}
