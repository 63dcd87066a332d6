package docstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store. It is the test workhorse and the
// adapter behind memory:// connection strings.
//
// Thread-safety: all methods are safe for concurrent use; a batch commits
// under one exclusive lock, so concurrent batches serialize and each one is
// observed in full or not at all.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

// Get returns a deep copy of the document at path.
func (s *MemoryStore) Get(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.docs[path]
	if !ok {
		return Document{}, fmt.Errorf("get %s: %w", path, ErrNotFound)
	}
	return Document{Path: path, Fields: copyFields(fields)}, nil
}

// Commit applies the batch atomically. Every op is validated and staged
// against copies first; the live map is touched only after the whole batch
// is known to apply cleanly, so a failed batch leaves no trace.
func (s *MemoryStore) Commit(ctx context.Context, batch *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]map[string]any, len(batch.ops))
	removed := make(map[string]bool)

	current := func(path string) (map[string]any, bool) {
		if removed[path] {
			return nil, false
		}
		if doc, ok := staged[path]; ok {
			return doc, true
		}
		doc, ok := s.docs[path]
		if !ok {
			return nil, false
		}
		return copyFields(doc), true
	}

	for _, op := range batch.ops {
		switch op.kind {
		case opCreate:
			if _, exists := current(op.path); exists {
				return fmt.Errorf("create %s: %w", op.path, ErrAlreadyExists)
			}
			doc := make(map[string]any)
			applyPatch(doc, op.fields)
			staged[op.path] = doc
			delete(removed, op.path)
		case opSet:
			doc := make(map[string]any)
			applyPatch(doc, op.fields)
			staged[op.path] = doc
			delete(removed, op.path)
		case opMerge:
			doc, ok := current(op.path)
			if !ok {
				doc = make(map[string]any)
			}
			applyPatch(doc, op.fields)
			staged[op.path] = doc
			delete(removed, op.path)
		case opUpdate:
			doc, ok := current(op.path)
			if !ok {
				return fmt.Errorf("update %s: %w", op.path, ErrNotFound)
			}
			applyPatch(doc, op.fields)
			staged[op.path] = doc
		case opDelete:
			delete(staged, op.path)
			removed[op.path] = true
		}
	}

	for path := range removed {
		delete(s.docs, path)
	}
	for path, doc := range staged {
		s.docs[path] = doc
	}
	return nil
}

// List returns one ordered page of the documents directly inside
// collection. An unknown collection lists as empty, not as an error.
func (s *MemoryStore) List(ctx context.Context, collection string, opts ListOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	s.mu.RLock()
	candidates := make([]Document, 0)
	for path, fields := range s.docs {
		if _, ok := childID(collection, path); !ok {
			continue
		}
		candidates = append(candidates, Document{Path: path, Fields: copyFields(fields)})
	}
	s.mu.RUnlock()

	return sortAndPage(candidates, opts)
}

// Close is a no-op for the in-memory adapter.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored documents. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
