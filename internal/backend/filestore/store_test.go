package filestore_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"todo/internal/backend/filestore"
	"todo/internal/codec"
	"todo/internal/service"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

// openStore opens a store in a temp dir and closes it at test end.
func openStore(t *testing.T, name string) (*filestore.TaskStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	s, err := filestore.Open(context.Background(), path, filestore.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func titles(t *testing.T, s *filestore.TaskStore) []string {
	t.Helper()
	listing, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var out []string
	for e := range listing.All() {
		out = append(out, e.Task.Title)
	}
	return out
}

func mustAdd(t *testing.T, s *filestore.TaskStore, title, desc string) {
	t.Helper()
	if _, err := s.Add(context.Background(), title, desc); err != nil {
		t.Fatalf("add %q: %v", title, err)
	}
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, path := openStore(t, "tasks.json")

	listing, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !listing.Empty() {
		t.Errorf("expected empty listing, got %d tasks", listing.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("open should not create the data file, stat err = %v", err)
	}
}

func TestAdd_AppendsInOrderAndPersists(t *testing.T) {
	s, path := openStore(t, "tasks.json")

	want := []string{"one", "two", "three", "four"}
	for _, title := range want {
		mustAdd(t, s, title, "")
	}

	if got := titles(t, s); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	persisted, err := filestore.Load(path, codec.JSON)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(persisted) != len(want) {
		t.Fatalf("expected %d persisted tasks, got %d", len(want), len(persisted))
	}
	first := persisted[0]
	if first.CreatedAt != "2024-03-01 09:30:00" {
		t.Errorf("unexpected created_at %q", first.CreatedAt)
	}
	if first.Completed {
		t.Error("new task should be pending")
	}
}

func TestAdd_ReturnsTask(t *testing.T) {
	s, _ := openStore(t, "tasks.json")

	task, err := s.Add(context.Background(), "Buy milk", "2%")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	want := service.Task{Title: "Buy milk", Description: "2%", CreatedAt: "2024-03-01 09:30:00"}
	if task != want {
		t.Errorf("expected %+v, got %+v", want, task)
	}
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t, "tasks.json")

	mustAdd(t, s, "Buy milk", "2%")
	mustAdd(t, s, "Pay rent", "")
	if _, err := s.Update(ctx, 2, service.Update{Completed: service.Bool(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	listing, _ := s.List(ctx)
	if listing.Len() != 1 {
		t.Fatalf("expected 1 task, got %d", listing.Len())
	}
	for e := range listing.All() {
		if e.Position != 1 || e.Task.Title != "Pay rent" || !e.Task.Completed {
			t.Errorf("unexpected entry %+v", e)
		}
		if e.Status() != service.StatusCompleted {
			t.Errorf("expected Completed status, got %s", e.Status())
		}
	}

	persisted, err := filestore.Load(path, codec.JSON)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(persisted, listing.Tasks()) {
		t.Errorf("file and memory differ\nfile: %+v\nmem:  %+v", persisted, listing.Tasks())
	}
}

func TestUpdate_InvalidPositionLeavesFileUnchanged(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t, "tasks.json")
	mustAdd(t, s, "a", "")
	mustAdd(t, s, "b", "")

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	for _, pos := range []int{0, -1, 3, 100} {
		_, err := s.Update(ctx, pos, service.Update{Title: service.String("x")})
		if !errors.Is(err, service.ErrInvalidPosition) {
			t.Errorf("position %d: expected ErrInvalidPosition, got %v", pos, err)
		}
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Errorf("file changed after invalid update\nbefore:\n%s\nafter:\n%s", before, after)
	}
	if got := titles(t, s); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("memory changed after invalid update: %v", got)
	}
}

func TestUpdate_OnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "tasks.json")
	mustAdd(t, s, "title", "desc")

	got, err := s.Update(ctx, 1, service.Update{Title: service.String("new title")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "new title" || got.Description != "desc" || got.Completed {
		t.Errorf("unexpected task after title update: %+v", got)
	}

	got, err = s.Update(ctx, 1, service.Update{Description: service.String("")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Description != "" || got.Title != "new title" {
		t.Errorf("explicit empty description should clear it: %+v", got)
	}

	got, err = s.Update(ctx, 1, service.Update{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if got.CreatedAt != "2024-03-01 09:30:00" {
		t.Errorf("created_at must not change: %+v", got)
	}
}

func TestDelete_ShiftsLaterPositions(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "tasks.json")
	for _, title := range []string{"a", "b", "c", "d"} {
		mustAdd(t, s, title, "")
	}

	removed, err := s.Delete(ctx, 2)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.Title != "b" {
		t.Errorf("expected removed 'b', got %q", removed.Title)
	}

	listing, _ := s.List(ctx)
	want := map[int]string{1: "a", 2: "c", 3: "d"}
	if listing.Len() != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), listing.Len())
	}
	for e := range listing.All() {
		if want[e.Position] != e.Task.Title {
			t.Errorf("position %d: expected %q, got %q", e.Position, want[e.Position], e.Task.Title)
		}
	}

	if _, err := s.Delete(ctx, 4); !errors.Is(err, service.ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestClearCompleted_KeepsPendingInOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "tasks.json")
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		mustAdd(t, s, title, "")
	}
	for _, pos := range []int{1, 3, 4} {
		if _, err := s.Update(ctx, pos, service.Update{Completed: service.Bool(true)}); err != nil {
			t.Fatalf("update %d: %v", pos, err)
		}
	}

	removed, err := s.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
	if got := titles(t, s); !reflect.DeepEqual(got, []string{"b", "e"}) {
		t.Errorf("expected [b e], got %v", got)
	}

	removed, err = s.ClearCompleted(ctx)
	if err != nil || removed != 0 {
		t.Errorf("second clear: removed=%d err=%v", removed, err)
	}
}

func TestReopen_RoundTrip(t *testing.T) {
	for _, name := range []string{"tasks.json", "tasks.yaml", "tasks.toml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), name)

			s, err := filestore.Open(ctx, path, filestore.WithClock(fixedClock))
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			mustAdd(t, s, "Buy milk", "2%")
			mustAdd(t, s, "Pay rent", "")
			if _, err := s.Update(ctx, 2, service.Update{Completed: service.Bool(true)}); err != nil {
				t.Fatalf("update: %v", err)
			}
			want, _ := s.List(ctx)
			if err := s.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			reopened, err := filestore.Open(ctx, path)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer reopened.Close()

			got, _ := reopened.List(ctx)
			if !reflect.DeepEqual(got.Tasks(), want.Tasks()) {
				t.Errorf("round trip mismatch\nwant %+v\ngot  %+v", want.Tasks(), got.Tasks())
			}
		})
	}
}

func TestList_IsRestartableAndStable(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t, "tasks.json")
	mustAdd(t, s, "a", "")
	mustAdd(t, s, "b", "")

	listing, _ := s.List(ctx)
	var first, second []service.Entry
	for e := range listing.All() {
		first = append(first, e)
	}
	for e := range listing.All() {
		second = append(second, e)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ranging twice differs: %v vs %v", first, second)
	}

	again, _ := s.List(ctx)
	if !reflect.DeepEqual(listing.Tasks(), again.Tasks()) {
		t.Error("two List calls without mutation differ")
	}

	l1, err1 := filestore.Load(path, codec.JSON)
	l2, err2 := filestore.Load(path, codec.JSON)
	if err1 != nil || err2 != nil || !reflect.DeepEqual(l1, l2) {
		t.Errorf("two loads differ: %v %v", err1, err2)
	}

	// A snapshot is not affected by later mutations.
	mustAdd(t, s, "c", "")
	if listing.Len() != 2 {
		t.Errorf("snapshot changed after add: %d", listing.Len())
	}
}

func TestOpen_CorruptData(t *testing.T) {
	tests := map[string]string{
		"tasks.json": "{\"title\": ",
		"tasks.yaml": "- title: [oops",
		"tasks.toml": "[[task]\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}

			_, err := filestore.Open(context.Background(), path)
			if !errors.Is(err, service.ErrCorruptData) {
				t.Fatalf("expected ErrCorruptData, got %v", err)
			}

			data, _ := os.ReadFile(path)
			if string(data) != content {
				t.Error("corrupt file must not be rewritten")
			}

			// The lock must be released after a failed open.
			if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			s, err := filestore.Open(context.Background(), path, filestore.WithFormat(codec.JSON))
			if err != nil {
				t.Fatalf("open after fix: %v", err)
			}
			s.Close()
		})
	}
}

func TestOpen_SecondOpenIsLocked(t *testing.T) {
	s, path := openStore(t, "tasks.json")

	_, err := filestore.Open(context.Background(), path)
	if !errors.Is(err, service.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	other, err := filestore.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open after close: %v", err)
	}
	other.Close()
}

func TestSaveFailure_LeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t, "tasks.json")
	mustAdd(t, s, "kept", "")

	// Replace the data file with a directory so the final rename fails.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := s.Add(ctx, "lost", ""); err == nil {
		t.Fatal("expected save error")
	}
	if _, err := s.Delete(ctx, 1); err == nil {
		t.Fatal("expected save error")
	}
	if got := titles(t, s); !reflect.DeepEqual(got, []string{"kept"}) {
		t.Errorf("memory ran ahead of disk: %v", got)
	}
}

func TestCanceledContext(t *testing.T) {
	s, _ := openStore(t, "tasks.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Add(ctx, "x", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("add: expected context.Canceled, got %v", err)
	}
	if _, err := filestore.Open(ctx, filepath.Join(t.TempDir(), "t.json")); !errors.Is(err, context.Canceled) {
		t.Errorf("open: expected context.Canceled, got %v", err)
	}
	if got := titles(t, s); len(got) != 0 {
		t.Errorf("expected no tasks, got %v", got)
	}
}
