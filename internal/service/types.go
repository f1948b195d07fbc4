// Package service defines the backend-agnostic interface for task operations.
package service

import "iter"

// TimeLayout is the layout of Task.CreatedAt.
const TimeLayout = "2006-01-02 15:04:05"

// Status tags shown next to each task in a listing.
const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
)

// Task represents a single task item.
// Field names and tags match the persisted record.
type Task struct {
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description" yaml:"description" toml:"description"`
	CreatedAt   string `json:"created_at" yaml:"created_at" toml:"created_at"`
	Completed   bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// Entry is a task annotated with its 1-based position in the list.
type Entry struct {
	Position int
	Task     Task
}

// Status returns StatusCompleted or StatusPending.
func (e Entry) Status() string {
	if e.Task.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// Listing is an immutable snapshot of the task list in current order.
type Listing struct {
	tasks []Task
}

// NewListing copies tasks into a new Listing.
func NewListing(tasks []Task) Listing {
	cp := make([]Task, len(tasks))
	copy(cp, tasks)
	return Listing{tasks: cp}
}

// Len returns the number of tasks.
func (l Listing) Len() int { return len(l.tasks) }

// Empty reports whether there are no tasks.
func (l Listing) Empty() bool { return len(l.tasks) == 0 }

// Tasks returns a copy of the tasks in order.
func (l Listing) Tasks() []Task {
	cp := make([]Task, len(l.tasks))
	copy(cp, l.tasks)
	return cp
}

// All yields every task with its 1-based position.
// The sequence may be ranged over any number of times.
func (l Listing) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i, t := range l.tasks {
			if !yield(Entry{Position: i + 1, Task: t}) {
				return
			}
		}
	}
}

// Update lists the fields to change on a task. Nil fields are left as they are.
// A non-nil pointer to an empty string sets the field to empty.
type Update struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Apply returns t with the supplied fields replaced.
func (u Update) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	return t
}

// String returns a pointer to s, for building an Update.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building an Update.
func Bool(b bool) *bool { return &b }

// RemoteList identifies a list on a remote task service.
type RemoteList struct {
	ID        string
	Title     string
	IsDefault bool
}
