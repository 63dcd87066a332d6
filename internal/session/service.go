package session

import (
	"context"
	"errors"
	"time"

	"github.com/driftware/sessiondoc/internal/docstore"
)

// Service is the session-service contract exposed to the host framework:
// six operations over plain data records. One concrete implementation
// exists (Manager); the interface keeps framework glue from depending on
// it.
type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)
	GetSession(ctx context.Context, app, user, id string, opts GetOptions) (*Session, error)
	ListSessions(ctx context.Context, app, user string) ([]*Session, error)
	DeleteSession(ctx context.Context, app, user, id string) error
	AppendEvent(ctx context.Context, app, user, id string, ev Event) (*Event, error)
	ListEvents(ctx context.Context, app, user, id string, opts ListEventsOptions) (*EventPage, error)
}

// Clock abstracts wall time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Defaults for tunable limits.
const (
	// DefaultDeleteBatchSize bounds one event-deletion batch during a
	// cascading session delete.
	DefaultDeleteBatchSize = 50

	// DefaultEventPageSize bounds one ListEvents page when the caller does
	// not ask for a specific size.
	DefaultEventPageSize = 100
)

// Manager implements Service on top of a docstore.Store handle.
//
// Manager holds no mutable state of its own: every read re-fetches current
// documents (read-your-writes over latency), every append is one atomic
// batch, and operations on different sessions proceed fully in parallel.
// The store handle is shared read-only across all concurrent operations.
type Manager struct {
	store           docstore.Store
	clock           Clock
	ids             IDGenerator
	deleteBatchSize int
	eventPageSize   int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithIDGenerator replaces the session/event id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Manager) { m.ids = g }
}

// WithDeleteBatchSize bounds the per-batch event count during cascading
// deletes. Values below one keep the default.
func WithDeleteBatchSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.deleteBatchSize = n
		}
	}
}

// WithEventPageSize sets the default ListEvents page size. Values below
// one keep the default.
func WithEventPageSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.eventPageSize = n
		}
	}
}

// NewManager creates a session manager on the given store handle.
func NewManager(store docstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:           store,
		clock:           systemClock{},
		ids:             UUIDv7Generator{},
		deleteBatchSize: DefaultDeleteBatchSize,
		eventPageSize:   DefaultEventPageSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// readScopeState fetches one scope document's state map. A document that
// does not exist yet reads as an empty map, not an error.
func (m *Manager) readScopeState(ctx context.Context, path string) (map[string]any, error) {
	doc, err := m.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapStoreErr("read "+path, err)
	}
	return doc.Fields, nil
}
