// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

var (
	// ErrInvalidPosition is returned when a position is outside [1, length].
	ErrInvalidPosition = errors.New("invalid task number")

	// ErrCorruptData is returned when the task file exists but cannot be parsed.
	ErrCorruptData = errors.New("corrupt data file")

	// ErrLocked is returned when another process holds the task file.
	ErrLocked = errors.New("task file is in use")

	// ErrNotFound is returned by a Remote when a list does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned by a Remote when a list name matches several lists.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrUnauthorized is returned by a Remote when the stored token is no longer accepted.
	ErrUnauthorized = errors.New("token expired or revoked (run: todo login)")
)

// Service defines the interface for task store operations.
// Positions are 1-based and refer to the order at the time of the call.
// Every mutating method persists the whole list before it returns.
type Service interface {
	// Add appends a new pending task and returns it.
	Add(ctx context.Context, title, description string) (Task, error)

	// List returns a snapshot of all tasks in current order.
	List(ctx context.Context) (Listing, error)

	// Update changes the supplied fields of the task at position.
	// Returns ErrInvalidPosition if position is out of range.
	Update(ctx context.Context, position int, upd Update) (Task, error)

	// Delete removes the task at position and returns it.
	// Returns ErrInvalidPosition if position is out of range.
	Delete(ctx context.Context, position int) (Task, error)

	// ClearCompleted removes every completed task and returns how many were removed.
	ClearCompleted(ctx context.Context) (int, error)
}

// Remote defines the operations push needs from a remote task service.
// Commands never import a remote SDK directly.
type Remote interface {
	// DefaultList returns the user's default list.
	DefaultList(ctx context.Context) (RemoteList, error)

	// ListLists returns all lists in API order.
	ListLists(ctx context.Context) ([]RemoteList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns ErrNotFound or ErrAmbiguous.
	ResolveList(ctx context.Context, name string) (RemoteList, error)

	// TaskTitles returns the titles of every task in a list, completed included.
	TaskTitles(ctx context.Context, listID string) ([]string, error)

	// InsertTask creates a task in the list.
	InsertTask(ctx context.Context, listID string, task Task) error
}
