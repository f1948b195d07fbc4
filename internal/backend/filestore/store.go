// Package filestore implements service.Service over a single local file.
//
// The whole task list is held in memory and the file is rewritten in full
// after every mutation. A TaskStore is owned by one goroutine; an advisory
// lock file keeps a second process from opening the same task file.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"

	"todo/internal/codec"
	"todo/internal/logging"
	"todo/internal/service"
)

const lockSuffix = ".lock"

var _ service.Service = (*TaskStore)(nil)

// TaskStore is the file-backed task list.
type TaskStore struct {
	path   string
	format codec.Format
	tasks  []service.Task
	lock   *flock.Flock
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *TaskStore) { s.log = logging.Named(l, "filestore") }
}

// WithClock overrides the time source for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.now = now }
}

// WithFormat overrides the format inferred from the file extension.
func WithFormat(f codec.Format) Option {
	return func(s *TaskStore) { s.format = f }
}

// Open locks path and loads the task list from it.
// A missing file yields an empty list; the file is created on the first save.
// Returns service.ErrLocked if another process holds the file and
// service.ErrCorruptData if the file cannot be parsed.
func Open(ctx context.Context, path string, opts ...Option) (*TaskStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &TaskStore{
		path:   path,
		format: codec.FormatFromPath(path),
		log:    logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	s.lock = flock.New(path + lockSuffix)
	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", service.ErrLocked, path)
	}

	tasks, err := Load(path, s.format)
	if err != nil {
		_ = s.lock.Unlock()
		return nil, err
	}
	s.tasks = tasks

	s.log.Debug("loaded tasks", "path", path, "format", s.format, "count", len(tasks))
	return s, nil
}

// Load reads the task sequence at path without taking the lock.
// A missing file yields an empty sequence.
func Load(path string, format codec.Format) ([]service.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []service.Task{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	tasks, err := codec.Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", service.ErrCorruptData, path, err)
	}
	return tasks, nil
}

// Close releases the lock. The store must not be used afterwards.
func (s *TaskStore) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Add implements service.Service.
func (s *TaskStore) Add(ctx context.Context, title, description string) (service.Task, error) {
	if err := ctx.Err(); err != nil {
		return service.Task{}, err
	}

	task := service.Task{
		Title:       title,
		Description: description,
		CreatedAt:   s.now().Format(service.TimeLayout),
	}

	next := append(slices.Clone(s.tasks), task)
	if err := s.commit(next); err != nil {
		return service.Task{}, err
	}

	s.log.Debug("added task", "position", len(next), "title", title)
	return task, nil
}

// List implements service.Service.
func (s *TaskStore) List(ctx context.Context) (service.Listing, error) {
	if err := ctx.Err(); err != nil {
		return service.Listing{}, err
	}
	return service.NewListing(s.tasks), nil
}

// Update implements service.Service.
func (s *TaskStore) Update(ctx context.Context, position int, upd service.Update) (service.Task, error) {
	if err := ctx.Err(); err != nil {
		return service.Task{}, err
	}

	i, err := s.index(position)
	if err != nil {
		return service.Task{}, err
	}

	next := slices.Clone(s.tasks)
	next[i] = upd.Apply(next[i])
	if err := s.commit(next); err != nil {
		return service.Task{}, err
	}

	s.log.Debug("updated task", "position", position)
	return next[i], nil
}

// Delete implements service.Service.
func (s *TaskStore) Delete(ctx context.Context, position int) (service.Task, error) {
	if err := ctx.Err(); err != nil {
		return service.Task{}, err
	}

	i, err := s.index(position)
	if err != nil {
		return service.Task{}, err
	}

	removed := s.tasks[i]
	next := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.commit(next); err != nil {
		return service.Task{}, err
	}

	s.log.Debug("deleted task", "position", position, "title", removed.Title)
	return removed, nil
}

// ClearCompleted implements service.Service.
func (s *TaskStore) ClearCompleted(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	next := slices.DeleteFunc(slices.Clone(s.tasks), func(t service.Task) bool {
		return t.Completed
	})
	removed := len(s.tasks) - len(next)
	if err := s.commit(next); err != nil {
		return 0, err
	}

	s.log.Debug("cleared completed tasks", "removed", removed)
	return removed, nil
}

// index converts a 1-based position to a slice index.
func (s *TaskStore) index(position int) (int, error) {
	if position < 1 || position > len(s.tasks) {
		return 0, fmt.Errorf("%w: %d", service.ErrInvalidPosition, position)
	}
	return position - 1, nil
}

// commit persists next and only then makes it the in-memory list.
func (s *TaskStore) commit(next []service.Task) error {
	if err := s.write(next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

func (s *TaskStore) write(tasks []service.Task) error {
	data, err := codec.Encode(s.format, tasks)
	if err != nil {
		return err
	}
	if err := atomicWrite(s.path, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}
	s.log.Debug("saved tasks", "path", s.path, "count", len(tasks))
	return nil
}
