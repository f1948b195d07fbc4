package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&PushCmd{})
}

// PushCmd implements the push command. It copies local tasks into a
// Google Tasks list, skipping titles the list already has.
type PushCmd struct {
	listName string
	all      bool
	remote   service.Remote
}

// SetRemote implements RemoteCommand.
func (c *PushCmd) SetRemote(remote service.Remote) { c.remote = remote }

func (c *PushCmd) Name() string      { return "push" }
func (c *PushCmd) Aliases() []string { return nil }
func (c *PushCmd) Synopsis() string  { return "Copy tasks to Google Tasks" }
func (c *PushCmd) Usage() string     { return "todo push [--list <list-name>] [--all]" }
func (c *PushCmd) NeedsStore() bool  { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.remote == nil {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return exitcode.AuthError
	}

	listing, err := svc.List(ctx)
	if err != nil {
		return reportStoreError(errOut, err)
	}

	listName := c.listName
	if listName == "" {
		listName = cfg.Settings.PushList
	}
	list, code := resolveRemoteList(ctx, c.remote, listName, errOut)
	if code != exitcode.Success {
		return code
	}

	titles, err := c.remote.TaskTitles(ctx, list.ID)
	if err != nil {
		return reportRemoteError(errOut, err)
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[normalizeRemoteTitle(t)] = true
	}

	pushed, skipped := 0, 0
	for e := range listing.All() {
		if !c.all && e.Task.Completed {
			continue
		}
		key := normalizeRemoteTitle(e.Task.Title)
		if existing[key] {
			skipped++
			continue
		}
		if err := c.remote.InsertTask(ctx, list.ID, e.Task); err != nil {
			fmt.Fprintf(errOut, "pushed %d, skipped %d\n", pushed, skipped)
			return reportRemoteError(errOut, err)
		}
		existing[key] = true
		pushed++
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "pushed %d, skipped %d\n", pushed, skipped)
	}
	return exitcode.Success
}

// resolveRemoteList finds the named list, or the default list when name is empty.
func resolveRemoteList(ctx context.Context, remote service.Remote, name string, errOut io.Writer) (service.RemoteList, int) {
	if name == "" {
		list, err := remote.DefaultList(ctx)
		if err != nil {
			return service.RemoteList{}, reportRemoteError(errOut, err)
		}
		return list, exitcode.Success
	}

	list, err := remote.ResolveList(ctx, name)
	switch {
	case err == nil:
		return list, exitcode.Success
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: list not found: %s\n", name)
		return service.RemoteList{}, exitcode.UserError
	case errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", name)
		return service.RemoteList{}, exitcode.UserError
	default:
		return service.RemoteList{}, reportRemoteError(errOut, err)
	}
}

// reportRemoteError prints a remote failure and maps it to an exit code.
func reportRemoteError(errOut io.Writer, err error) int {
	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

func normalizeRemoteTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
