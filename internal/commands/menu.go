package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&MenuCmd{})
}

const menuText = `
To-Do List Application
1. Add Task
2. List Tasks
3. Update Task
4. Delete Task
5. Clear Completed Tasks
6. Exit
`

// Menu messages.
const (
	msgInvalidInput    = "Invalid input."
	msgInvalidPosition = "Invalid task number."
	msgInvalidChoice   = "Invalid choice. Please try again."
	msgGoodbye         = "Exiting the application. Goodbye!"
)

// errQuit ends the menu loop: the user chose Exit or input ran out.
var errQuit = errors.New("quit")

// MenuCmd implements the interactive menu. It is what runs when todo
// is started without a command.
type MenuCmd struct {
	in io.Reader
}

// SetInput sets where answers are read from. Defaults to os.Stdin.
func (c *MenuCmd) SetInput(in io.Reader) { c.in = in }

func (c *MenuCmd) Name() string      { return "menu" }
func (c *MenuCmd) Aliases() []string { return nil }
func (c *MenuCmd) Synopsis() string  { return "Run the interactive menu" }
func (c *MenuCmd) Usage() string     { return "todo [menu]" }
func (c *MenuCmd) NeedsStore() bool  { return true }

func (c *MenuCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MenuCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}

	stop := make(chan struct{})
	defer close(stop)

	m := &menu{
		svc:    svc,
		lines:  readLines(in, stop),
		out:    out,
		errOut: errOut,
	}

	for {
		err := m.step(ctx)
		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			fmt.Fprintln(out, msgGoodbye)
			return exitcode.Success
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(errOut, "error: cancelled")
			return exitcode.UserError
		case errors.Is(err, errReadInput):
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		default:
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
}

// maxLineSize bounds one answer; longer lines end the menu with an error.
const maxLineSize = 1 << 20

// errReadInput wraps a failure to read the answer stream. The stream
// cannot be resumed after it, so the menu stops.
var errReadInput = errors.New("failed to read input")

type line struct {
	text string
	err  error
}

// readLines scans in on its own goroutine so a prompt can give up on
// cancellation while the read is still blocked. The channel is closed at
// end of input or after a read error; the goroutine exits once stop is closed.
func readLines(in io.Reader, stop <-chan struct{}) <-chan line {
	ch := make(chan line)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case ch <- line{text: strings.TrimSuffix(scanner.Text(), "\r")}:
			case <-stop:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case ch <- line{err: err}:
			case <-stop:
			}
		}
	}()
	return ch
}

type menu struct {
	svc    service.Service
	lines  <-chan line
	out    io.Writer
	errOut io.Writer
}

// step shows the menu once and carries out one choice.
func (m *menu) step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprint(m.out, menuText)
	choice, err := m.ask(ctx, "Enter your choice (1-6): ")
	if err != nil {
		return err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		return m.add(ctx)
	case "2":
		return m.list(ctx)
	case "3":
		return m.update(ctx)
	case "4":
		return m.delete(ctx)
	case "5":
		if _, err := m.svc.ClearCompleted(ctx); err != nil {
			return err
		}
		fmt.Fprintln(m.out, "All completed tasks cleared.")
		return nil
	case "6":
		return errQuit
	default:
		fmt.Fprintln(m.out, msgInvalidChoice)
		return nil
	}
}

func (m *menu) add(ctx context.Context) error {
	title, err := m.ask(ctx, "Enter task title: ")
	if err != nil {
		return err
	}
	description, err := m.ask(ctx, "Enter task description: ")
	if err != nil {
		return err
	}

	task, err := m.svc.Add(ctx, title, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Task '%s' added successfully.\n", task.Title)
	return nil
}

func (m *menu) list(ctx context.Context) error {
	listing, err := m.svc.List(ctx)
	if err != nil {
		return err
	}
	if !listing.Empty() {
		fmt.Fprintln(m.out)
	}
	output.FormatListing(m.out, listing)
	return nil
}

func (m *menu) update(ctx context.Context) error {
	if err := m.list(ctx); err != nil {
		return err
	}

	position, ok, err := m.askPosition(ctx, "Enter task number to update: ")
	if err != nil || !ok {
		return err
	}

	var upd service.Update
	title, err := m.ask(ctx, "Enter new title (or press Enter to skip): ")
	if err != nil {
		return err
	}
	if title != "" {
		upd.Title = service.String(title)
	}
	description, err := m.ask(ctx, "Enter new description (or press Enter to skip): ")
	if err != nil {
		return err
	}
	if description != "" {
		upd.Description = service.String(description)
	}
	completed, err := m.ask(ctx, "Mark as completed? (yes/no): ")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(completed)) {
	case "yes":
		upd.Completed = service.Bool(true)
	case "no":
		upd.Completed = service.Bool(false)
	}

	if _, err := m.svc.Update(ctx, position, upd); err != nil {
		return m.positionError(err)
	}
	fmt.Fprintf(m.out, "Task %d updated successfully.\n", position)
	return nil
}

func (m *menu) delete(ctx context.Context) error {
	if err := m.list(ctx); err != nil {
		return err
	}

	position, ok, err := m.askPosition(ctx, "Enter task number to delete: ")
	if err != nil || !ok {
		return err
	}

	removed, err := m.svc.Delete(ctx, position)
	if err != nil {
		return m.positionError(err)
	}
	fmt.Fprintf(m.out, "Task '%s' deleted successfully.\n", removed.Title)
	return nil
}

// positionError reports an out of range position and swallows it.
func (m *menu) positionError(err error) error {
	if errors.Is(err, service.ErrInvalidPosition) {
		fmt.Fprintln(m.out, msgInvalidPosition)
		return nil
	}
	return err
}

// ask prints prompt and reads one line. End of input yields errQuit.
func (m *menu) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	select {
	case <-ctx.Done():
		fmt.Fprintln(m.out)
		return "", ctx.Err()
	case l, ok := <-m.lines:
		if !ok {
			fmt.Fprintln(m.out)
			return "", errQuit
		}
		if l.err != nil {
			fmt.Fprintln(m.out)
			return "", fmt.Errorf("%w: %w", errReadInput, l.err)
		}
		return l.text, nil
	}
}

// askPosition reads a task number. ok is false when the answer is not a
// number; the message has already been printed.
func (m *menu) askPosition(ctx context.Context, prompt string) (position int, ok bool, err error) {
	answer, err := m.ask(ctx, prompt)
	if err != nil {
		return 0, false, err
	}
	position, convErr := strconv.Atoi(strings.TrimSpace(answer))
	if convErr != nil {
		fmt.Fprintln(m.out, msgInvalidInput)
		return 0, false, nil
	}
	return position, true, nil
}
