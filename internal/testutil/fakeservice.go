// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"todo/internal/service"
)

// FixedCreatedAt is the created_at stamp given to tasks added through fakes.
const FixedCreatedAt = "2024-03-01 09:30:00"

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	tasks []service.Task

	// Saves counts successful mutations, each of which would rewrite the file.
	Saves int

	// Error injection for testing
	AddErr    error
	ListErr   error
	UpdateErr error
	DeleteErr error
	ClearErr  error
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates a new FakeService holding tasks.
func NewFakeService(tasks ...service.Task) *FakeService {
	return &FakeService{tasks: slices.Clone(tasks)}
}

// Tasks returns a copy of the current tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// Add implements service.Service.
func (f *FakeService) Add(ctx context.Context, title, description string) (service.Task, error) {
	if f.AddErr != nil {
		return service.Task{}, f.AddErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	task := service.Task{Title: title, Description: description, CreatedAt: FixedCreatedAt}
	f.tasks = append(f.tasks, task)
	f.Saves++
	return task, nil
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context) (service.Listing, error) {
	if f.ListErr != nil {
		return service.Listing{}, f.ListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return service.NewListing(f.tasks), nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, position int, upd service.Update) (service.Task, error) {
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if position < 1 || position > len(f.tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", service.ErrInvalidPosition, position)
	}
	f.tasks[position-1] = upd.Apply(f.tasks[position-1])
	f.Saves++
	return f.tasks[position-1], nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, position int) (service.Task, error) {
	if f.DeleteErr != nil {
		return service.Task{}, f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if position < 1 || position > len(f.tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", service.ErrInvalidPosition, position)
	}
	removed := f.tasks[position-1]
	f.tasks = slices.Delete(f.tasks, position-1, position)
	f.Saves++
	return removed, nil
}

// ClearCompleted implements service.Service.
func (f *FakeService) ClearCompleted(ctx context.Context) (int, error) {
	if f.ClearErr != nil {
		return 0, f.ClearErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	before := len(f.tasks)
	f.tasks = slices.DeleteFunc(f.tasks, func(t service.Task) bool { return t.Completed })
	f.Saves++
	return before - len(f.tasks), nil
}

// FakeRemote is an in-memory implementation of service.Remote for testing.
type FakeRemote struct {
	mu    sync.Mutex
	lists []service.RemoteList
	tasks map[string][]service.Task // listID -> tasks

	// Error injection for testing
	TaskTitlesErr error
	InsertErr     error
}

var _ service.Remote = (*FakeRemote)(nil)

// NewFakeRemote creates a FakeRemote with a default list.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		lists: []service.RemoteList{{ID: "@default", Title: "My Tasks", IsDefault: true}},
		tasks: make(map[string][]service.Task),
	}
}

// AddList adds a named list.
func (f *FakeRemote) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.RemoteList{ID: id, Title: title})
}

// AddTask seeds a task into a list.
func (f *FakeRemote) AddTask(listID string, task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], task)
}

// ListTasks returns the tasks in a list.
func (f *FakeRemote) ListTasks(listID string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks[listID])
}

// DefaultList implements service.Remote.
func (f *FakeRemote) DefaultList(ctx context.Context) (service.RemoteList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[0], nil
}

// ListLists implements service.Remote.
func (f *FakeRemote) ListLists(ctx context.Context) ([]service.RemoteList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.lists), nil
}

// ResolveList implements service.Remote.
func (f *FakeRemote) ResolveList(ctx context.Context, name string) (service.RemoteList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	nameLower := strings.ToLower(strings.TrimSpace(name))
	var matches []service.RemoteList
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.RemoteList{}, service.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return service.RemoteList{}, service.ErrAmbiguous
	}
}

// TaskTitles implements service.Remote.
func (f *FakeRemote) TaskTitles(ctx context.Context, listID string) ([]string, error) {
	if f.TaskTitlesErr != nil {
		return nil, f.TaskTitlesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var titles []string
	for _, t := range f.tasks[listID] {
		titles = append(titles, t.Title)
	}
	return titles, nil
}

// InsertTask implements service.Remote.
func (f *FakeRemote) InsertTask(ctx context.Context, listID string, task service.Task) error {
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], task)
	return nil
}
