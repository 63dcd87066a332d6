package docstore

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the addressed document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists indicates a create targeted an existing document.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrUnavailable indicates a transient store failure. The whole logical
	// operation may be retried; individual batch ops may not.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidCursor indicates a continuation cursor that does not match
	// any document in the listed collection.
	ErrInvalidCursor = errors.New("invalid list cursor")
)

// PartialCommitError reports a batch that the store applied partially. With
// a genuinely atomic batch primitive this must never happen; when a store
// reports it anyway, callers surface it as a consistency violation rather
// than repairing the damage.
type PartialCommitError struct {
	Applied int // ops the store reports as applied
	Total   int // ops submitted in the batch
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("batch applied partially: %d of %d ops", e.Applied, e.Total)
}

// fieldDelete backs the FieldDelete sentinel. An unexported type guarantees
// no decoded document value can ever compare equal to it.
type fieldDelete struct{}

// FieldDelete marks a field for removal when used as a patch value.
var FieldDelete any = fieldDelete{}

// IsFieldDelete reports whether a patch value is the field-removal sentinel.
func IsFieldDelete(v any) bool {
	_, ok := v.(fieldDelete)
	return ok
}

// Document is a stored document: its full path and its decoded fields.
type Document struct {
	Path   string
	Fields map[string]any
}

// ListOptions controls an ordered collection listing.
type ListOptions struct {
	// OrderBy names the top-level field to order by. Documents missing the
	// field sort first. Ties break on document path, so listings are
	// deterministic regardless of physical storage order.
	OrderBy string

	// Descending reverses the order-field comparison (path ties still
	// ascend).
	Descending bool

	// Limit bounds the page size; zero or negative means no bound.
	Limit int

	// StartAfter resumes a listing after the document with this path, as
	// returned in Page.NextCursor. Empty starts from the beginning.
	StartAfter string

	// After keeps only documents whose order field sorts strictly after
	// this value. Nil disables the filter.
	After any
}

// Page is one page of a collection listing.
type Page struct {
	Documents []Document

	// NextCursor is the path of the last returned document when more
	// remain, empty when the listing is exhausted.
	NextCursor string
}

// Store is the backing-store client boundary. Implementations must make
// Commit atomic: either every op in the batch is applied or none is.
// A Store handle is safe for concurrent use.
type Store interface {
	// Get returns the document at path, or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)

	// Commit applies a batch as a single all-or-nothing unit.
	Commit(ctx context.Context, batch *Batch) error

	// List returns one ordered page of the documents directly inside
	// collection.
	List(ctx context.Context, collection string, opts ListOptions) (Page, error)

	// Close releases the underlying client resources.
	Close() error
}

// opKind enumerates batch operation kinds.
type opKind int

const (
	opCreate opKind = iota // create, fail if the document exists
	opSet                  // full overwrite, create if absent
	opMerge                // patch, create if absent
	opUpdate               // patch, fail if absent
	opDelete               // remove, no-op if absent
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create"
	case opSet:
		return "set"
	case opMerge:
		return "merge"
	case opUpdate:
		return "update"
	case opDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one document mutation inside a batch.
type Op struct {
	kind   opKind
	path   string
	fields map[string]any
}

// Path returns the document path the op targets.
func (o Op) Path() string { return o.path }

// Batch accumulates document mutations for one atomic commit. The zero
// value is ready to use. A Batch is not safe for concurrent mutation.
type Batch struct {
	ops []Op
}

// Create adds a create op: the commit fails with ErrAlreadyExists if the
// document already exists.
func (b *Batch) Create(path string, fields map[string]any) *Batch {
	b.ops = append(b.ops, Op{kind: opCreate, path: path, fields: fields})
	return b
}

// Set adds a full-overwrite op, creating the document if absent.
func (b *Batch) Set(path string, fields map[string]any) *Batch {
	b.ops = append(b.ops, Op{kind: opSet, path: path, fields: fields})
	return b
}

// Merge adds a create-if-absent patch: listed fields are set (dotted paths
// address nested maps), FieldDelete values remove fields, and everything
// else in the document is left alone. This is the upsert primitive that
// makes implicit application/user document creation race-free.
func (b *Batch) Merge(path string, fields map[string]any) *Batch {
	b.ops = append(b.ops, Op{kind: opMerge, path: path, fields: fields})
	return b
}

// Update adds a patch that fails the commit with ErrNotFound if the
// document does not exist.
func (b *Batch) Update(path string, fields map[string]any) *Batch {
	b.ops = append(b.ops, Op{kind: opUpdate, path: path, fields: fields})
	return b
}

// Delete adds a document removal; deleting an absent document is a no-op.
func (b *Batch) Delete(path string) *Batch {
	b.ops = append(b.ops, Op{kind: opDelete, path: path})
	return b
}

// Len returns the number of ops in the batch.
func (b *Batch) Len() int { return len(b.ops) }
