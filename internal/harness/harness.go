package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/driftware/sessiondoc/internal/docstore"
	"github.com/driftware/sessiondoc/internal/session"
	"github.com/driftware/sessiondoc/internal/state"
	"github.com/driftware/sessiondoc/internal/testutil"
)

// Error names usable in a step's expect_error.
const (
	errNotFound          = "not_found"
	errAlreadyExists     = "already_exists"
	errInvalidIdentifier = "invalid_identifier"
	errInvalidCursor     = "invalid_cursor"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: every step behaved as
	// declared and every assertion held.
	Pass bool `json:"pass"`

	// Trace records one entry per executed step, in order. Entries are
	// plain maps so they serialize deterministically for golden files.
	Trace []map[string]any `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// scenarioEpoch anchors the stepped clock so timestamps in traces are
// stable across runs.
var scenarioEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Run executes a scenario against a fresh in-memory store.
func Run(scenario *Scenario) (*Result, error) {
	store := docstore.NewMemory()
	mgr := session.NewManager(store,
		session.WithClock(testutil.NewSteppedClock(scenarioEpoch, time.Second)),
		session.WithIDGenerator(testutil.NewSequenceGenerator("ev")),
	)

	result := &Result{Pass: true, Trace: []map[string]any{}}
	ctx := context.Background()

	// Cursor carried between events steps for cursor: "previous".
	lastCursor := ""

	for i, step := range scenario.Steps {
		entry, err := runStep(ctx, mgr, step, &lastCursor)
		if err != nil {
			name := errorName(err)
			if step.ExpectError == "" {
				result.AddError("step %d (%s): unexpected error: %v", i, step.Op, err)
			} else if name != step.ExpectError {
				result.AddError("step %d (%s): expected %s, got %s: %v", i, step.Op, step.ExpectError, name, err)
			}
			entry = map[string]any{"op": step.Op, "error": name}
		} else if step.ExpectError != "" {
			result.AddError("step %d (%s): expected %s but step succeeded", i, step.Op, step.ExpectError)
		}
		result.Trace = append(result.Trace, entry)
	}

	for i, a := range scenario.Assertions {
		checkAssertion(ctx, mgr, store, a, i, result)
	}
	return result, nil
}

func runStep(ctx context.Context, mgr *session.Manager, step Step, lastCursor *string) (map[string]any, error) {
	switch step.Op {
	case OpCreate:
		sess, err := mgr.CreateSession(ctx, session.CreateSessionRequest{
			AppName:  step.App,
			UserID:   step.User,
			ID:       step.Session,
			State:    step.State,
			Metadata: step.Metadata,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"op": OpCreate, "session": sess.ID, "state": sess.State}, nil

	case OpAppend:
		ev, err := mgr.AppendEvent(ctx, step.App, step.User, step.Session, session.Event{
			Author:     step.Author,
			Content:    step.Content,
			StateDelta: tombstoneDelta(step.Delta),
			Partial:    step.Partial,
		})
		if err != nil {
			return nil, err
		}
		entry := map[string]any{"op": OpAppend, "event": ev.ID}
		if step.Partial {
			entry["partial"] = true
		}
		return entry, nil

	case OpGet:
		sess, err := mgr.GetSession(ctx, step.App, step.User, step.Session, session.GetOptions{
			NumRecentEvents: step.Last,
		})
		if err != nil {
			return nil, err
		}
		ids := make([]any, 0, len(sess.Events))
		for _, ev := range sess.Events {
			ids = append(ids, ev.ID)
		}
		return map[string]any{
			"op":      OpGet,
			"session": sess.ID,
			"state":   sess.State,
			"events":  ids,
		}, nil

	case OpList:
		sessions, err := mgr.ListSessions(ctx, step.App, step.User)
		if err != nil {
			return nil, err
		}
		ids := make([]any, 0, len(sessions))
		for _, sess := range sessions {
			ids = append(ids, sess.ID)
		}
		return map[string]any{"op": OpList, "sessions": ids}, nil

	case OpDelete:
		if err := mgr.DeleteSession(ctx, step.App, step.User, step.Session); err != nil {
			return nil, err
		}
		return map[string]any{"op": OpDelete, "session": step.Session}, nil

	case OpEvents:
		cursor := step.Cursor
		if cursor == "previous" {
			cursor = *lastCursor
		}
		page, err := mgr.ListEvents(ctx, step.App, step.User, step.Session, session.ListEventsOptions{
			PageSize: step.PageSize,
			Cursor:   cursor,
		})
		if err != nil {
			return nil, err
		}
		*lastCursor = page.NextCursor
		ids := make([]any, 0, len(page.Events))
		for _, ev := range page.Events {
			ids = append(ids, ev.ID)
		}
		entry := map[string]any{"op": OpEvents, "events": ids}
		if page.NextCursor != "" {
			entry["more"] = true
		}
		return entry, nil

	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

// tombstoneDelta translates the YAML convention (null deletes a key) into
// the service's tombstone sentinel.
func tombstoneDelta(delta map[string]any) map[string]any {
	if delta == nil {
		return nil
	}
	out := make(map[string]any, len(delta))
	for k, v := range delta {
		if v == nil {
			out[k] = state.Tombstone
		} else {
			out[k] = v
		}
	}
	return out
}

func checkAssertion(ctx context.Context, mgr *session.Manager, store *docstore.MemoryStore, a Assertion, i int, result *Result) {
	switch a.Type {
	case AssertSessionState:
		sess, err := mgr.GetSession(ctx, a.App, a.User, a.Session, session.GetOptions{})
		if err != nil {
			result.AddError("assertion %d (session_state): %v", i, err)
			return
		}
		for key, want := range a.Expect {
			got, ok := sess.State[key]
			if !ok {
				result.AddError("assertion %d (session_state): key %q missing", i, key)
				continue
			}
			if !reflect.DeepEqual(got, want) {
				result.AddError("assertion %d (session_state): key %q = %v, want %v", i, key, got, want)
			}
		}
		for _, key := range a.Absent {
			if _, ok := sess.State[key]; ok {
				result.AddError("assertion %d (session_state): key %q should be absent", i, key)
			}
		}

	case AssertEventCount:
		total := 0
		cursor := ""
		for {
			page, err := mgr.ListEvents(ctx, a.App, a.User, a.Session, session.ListEventsOptions{Cursor: cursor})
			if err != nil {
				result.AddError("assertion %d (event_count): %v", i, err)
				return
			}
			total += len(page.Events)
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}
		if total != a.Count {
			result.AddError("assertion %d (event_count): got %d events, want %d", i, total, a.Count)
		}

	case AssertStoreLen:
		if got := store.Len(); got != a.Count {
			result.AddError("assertion %d (store_len): got %d documents, want %d", i, got, a.Count)
		}
	}
}

// errorName maps a service error onto its scenario name.
func errorName(err error) string {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return errNotFound
	case errors.Is(err, session.ErrAlreadyExists):
		return errAlreadyExists
	case errors.Is(err, session.ErrInvalidIdentifier):
		return errInvalidIdentifier
	case errors.Is(err, session.ErrInvalidCursor):
		return errInvalidCursor
	default:
		return "error"
	}
}
