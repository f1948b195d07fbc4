// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"todo/internal/backend/filestore"
	"todo/internal/backend/googletasks"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
)

// ServiceFactory opens the task store for a command.
// If the returned Service implements io.Closer it is closed after the command.
type ServiceFactory func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Service, error)

// RemoteFactory connects to the remote task service used by push and lists.
type RemoteFactory func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Remote, error)

// OpenFileStore is the ServiceFactory backed by the task file.
func OpenFileStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Service, error) {
	return filestore.Open(ctx, cfg.DataPath(), filestore.WithLogger(log))
}

// ConnectGoogleTasks is the RemoteFactory backed by the Google Tasks API.
func ConnectGoogleTasks(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Remote, error) {
	return googletasks.New(ctx, cfg, log)
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	stores   ServiceFactory
	remotes  RemoteFactory
	in       io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and factories.
// A nil remotes factory makes remote commands stop after the credential checks.
func NewDispatcher(registry *commands.Registry, stores ServiceFactory, remotes RemoteFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		stores:   stores,
		remotes:  remotes,
	}
}

// SetInput sets the reader interactive commands read answers from.
func (d *Dispatcher) SetInput(in io.Reader) { d.in = in }

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No command runs the menu; common flags may still be given.
	if len(args) == 0 {
		return d.dispatch(ctx, "menu", nil, out, errOut)
	}

	cmdName := args[0]
	switch cmdName {
	case "-h", "-help", "--help":
		return d.dispatch(ctx, "help", nil, out, errOut)
	case "-version", "--version":
		return d.dispatch(ctx, "version", nil, out, errOut)
	}
	if strings.HasPrefix(cmdName, "-") {
		return d.dispatch(ctx, "menu", args, out, errOut)
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir, file string
	var quiet, debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&file, "file", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return d.reportFlagError(cmd, err, out, errOut)
	}

	// A leading dash after the first positional argument is a misplaced flag.
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") && positionalArgs[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.File = file
	cfg.Quiet = quiet
	cfg.Debug = debug

	level := logging.ParseLevel(cfg.Settings.LogLevel)
	if debug {
		level = slog.LevelDebug
	}
	log := logging.New(errOut, level)
	log.Debug("dispatch", "command", cmd.Name(), "config", cfg.Dir)

	if rc, ok := cmd.(commands.RemoteCommand); ok {
		remote, code := d.connectRemote(ctx, cfg, log, errOut)
		if code != exitcode.Success {
			return code
		}
		rc.SetRemote(remote)
	}

	if ic, ok := cmd.(commands.InteractiveCommand); ok && d.in != nil {
		ic.SetInput(d.in)
	}

	var svc service.Service
	if cmd.NeedsStore() {
		if d.stores == nil {
			fmt.Fprintln(errOut, "error: no task store configured")
			return exitcode.StorageError
		}
		svc, err = d.stores(ctx, cfg, log)
		if err != nil {
			return reportOpenError(errOut, err)
		}
		if closer, ok := svc.(io.Closer); ok {
			defer func() {
				if err := closer.Close(); err != nil {
					log.Warn("failed to release task file", "error", err)
				}
			}()
		}
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// connectRemote checks credentials and connects the remote. Without a
// factory it only runs the credential checks and leaves the remote nil.
func (d *Dispatcher) connectRemote(ctx context.Context, cfg *config.Config, log *slog.Logger, errOut io.Writer) (service.Remote, int) {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n", config.OAuthClientFile, cfg.Dir)
		return nil, exitcode.AuthError
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return nil, exitcode.AuthError
	}
	if d.remotes == nil {
		return nil, exitcode.Success
	}

	remote, err := d.remotes(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %s\n", err)
		return nil, exitcode.AuthError
	}
	return remote, exitcode.Success
}

func (d *Dispatcher) reportFlagError(cmd commands.Command, err error, out, errOut io.Writer) int {
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
		return exitcode.Success
	}

	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "flag needs an argument:"):
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
	case strings.HasPrefix(errStr, "flag provided but not defined:"):
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
	default:
		fmt.Fprintf(errOut, "error: %s\n", errStr)
	}
	return exitcode.UserError
}

// reportOpenError maps a failure to open the task file to an exit code.
func reportOpenError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	default:
		// ErrCorruptData and ErrLocked already name the file.
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}
}
