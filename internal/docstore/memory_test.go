package docstore

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestMemory_GetNotFound(t *testing.T) {
	s := NewMemory()
	_, err := s.Get(context.Background(), "apps/a")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_CommitCreateAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	batch := new(Batch).Create("apps/a", map[string]any{"org": "acme"})
	if err := s.Commit(ctx, batch); err != nil {
		t.Fatalf("commit: %v", err)
	}

	doc, err := s.Get(ctx, "apps/a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Fields["org"] != "acme" {
		t.Errorf("org = %v, want acme", doc.Fields["org"])
	}
}

func TestMemory_CreateExistingFails(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Commit(ctx, new(Batch).Create("apps/a", nil)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := s.Commit(ctx, new(Batch).Create("apps/a", nil))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemory_MergeCreatesIfAbsent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Commit(ctx, new(Batch).Merge("apps/a", map[string]any{"org": "acme"})); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := s.Commit(ctx, new(Batch).Merge("apps/a", map[string]any{"tier": "gold"})); err != nil {
		t.Fatalf("second merge: %v", err)
	}

	doc, err := s.Get(ctx, "apps/a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Fields["org"] != "acme" || doc.Fields["tier"] != "gold" {
		t.Errorf("merge lost fields: %v", doc.Fields)
	}
}

func TestMemory_UpdateMissingFails(t *testing.T) {
	s := NewMemory()
	err := s.Commit(context.Background(), new(Batch).Update("apps/a", map[string]any{"x": 1}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_DottedPathsAndFieldDelete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Commit(ctx, new(Batch).Create("d/1", map[string]any{
		"state": map[string]any{"city": "NYC", "step": 1},
	})); err != nil {
		t.Fatalf("create: %v", err)
	}

	batch := new(Batch).Update("d/1", map[string]any{
		"state.city": "SF",
		"state.step": FieldDelete,
	})
	if err := s.Commit(ctx, batch); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, err := s.Get(ctx, "d/1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	stateMap, ok := doc.Fields["state"].(map[string]any)
	if !ok {
		t.Fatalf("state is %T, want map", doc.Fields["state"])
	}
	if stateMap["city"] != "SF" {
		t.Errorf("city = %v, want SF", stateMap["city"])
	}
	if _, exists := stateMap["step"]; exists {
		t.Error("step should have been deleted")
	}
}

// A batch that fails mid-validation must leave all documents byte-identical
// to the pre-commit state.
func TestMemory_FailedBatchLeavesNoTrace(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Commit(ctx, new(Batch).
		Create("apps/a", map[string]any{"org": "acme"}).
		Create("apps/a/users/u", map[string]any{"plan": "pro"})); err != nil {
		t.Fatalf("seed: %v", err)
	}

	before := snapshotBody(t, s, "apps/a")
	beforeUser := snapshotBody(t, s, "apps/a/users/u")

	// Merge ops would apply; the trailing Update on a missing session doc
	// rejects the whole batch.
	batch := new(Batch).
		Merge("apps/a", map[string]any{"org": "evil"}).
		Merge("apps/a/users/u", map[string]any{"plan": "enterprise"}).
		Update("apps/a/users/u/sessions/missing", map[string]any{"x": 1})
	if err := s.Commit(ctx, batch); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if got := snapshotBody(t, s, "apps/a"); !bytes.Equal(before, got) {
		t.Errorf("app doc mutated by failed batch:\n before %s\n after  %s", before, got)
	}
	if got := snapshotBody(t, s, "apps/a/users/u"); !bytes.Equal(beforeUser, got) {
		t.Errorf("user doc mutated by failed batch:\n before %s\n after  %s", beforeUser, got)
	}
	if s.Len() != 2 {
		t.Errorf("document count = %d, want 2", s.Len())
	}
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Commit(ctx, new(Batch).Create("d/1", nil)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Commit(ctx, new(Batch).Delete("d/1").Delete("d/2")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "d/1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Commit(ctx, new(Batch).Create("d/1", map[string]any{
		"nested": map[string]any{"k": "v"},
	})); err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, _ := s.Get(ctx, "d/1")
	doc.Fields["nested"].(map[string]any)["k"] = "mutated"

	fresh, _ := s.Get(ctx, "d/1")
	if fresh.Fields["nested"].(map[string]any)["k"] != "v" {
		t.Error("mutating a returned document leaked into the store")
	}
}

func TestMemory_ListOrderingAndCursor(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	batch := new(Batch).
		Create("c/e3", map[string]any{"ts": 3.0}).
		Create("c/e1", map[string]any{"ts": 1.0}).
		Create("c/e2", map[string]any{"ts": 2.0}).
		Create("c/e2/sub/x", map[string]any{"ts": 0.0}) // nested, not a direct child
	if err := s.Commit(ctx, batch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	page, err := s.List(ctx, "c", ListOptions{OrderBy: "ts", Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Documents) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Documents))
	}
	if page.Documents[0].Path != "c/e1" || page.Documents[1].Path != "c/e2" {
		t.Errorf("order = %s, %s", page.Documents[0].Path, page.Documents[1].Path)
	}
	if page.NextCursor != "c/e2" {
		t.Fatalf("cursor = %q, want c/e2", page.NextCursor)
	}

	rest, err := s.List(ctx, "c", ListOptions{OrderBy: "ts", Limit: 2, StartAfter: page.NextCursor})
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Documents) != 1 || rest.Documents[0].Path != "c/e3" {
		t.Fatalf("rest = %+v", rest.Documents)
	}
	if rest.NextCursor != "" {
		t.Errorf("cursor = %q, want empty at end", rest.NextCursor)
	}
}

func TestMemory_ListInvalidCursor(t *testing.T) {
	s := NewMemory()
	_, err := s.List(context.Background(), "c", ListOptions{StartAfter: "c/ghost"})
	if !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestMemory_ContextCancellation(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Commit(ctx, new(Batch).Create("d/1", nil)); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if _, err := s.Get(context.Background(), "d/1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cancelled commit must not apply, got %v", err)
	}
}

func snapshotBody(t *testing.T, s Store, path string) []byte {
	t.Helper()
	doc, err := s.Get(context.Background(), path)
	if err != nil {
		t.Fatalf("snapshot %s: %v", path, err)
	}
	data, err := MarshalFields(doc.Fields)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	return data
}
