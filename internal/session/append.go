package session

import (
	"context"
	"log/slog"

	"github.com/driftware/sessiondoc/internal/docstore"
	"github.com/driftware/sessiondoc/internal/state"
)

// AppendEvent records one event against a session and folds its state
// delta into the application, user, and session scopes.
//
// All four document mutations ride in a single batch: either the event
// record, the session update, and both scope merges land together, or
// none of them do. A failed append must not be retried with the same
// event id; callers retry by submitting a fresh event.
//
// Partial events are returned with an id and timestamp assigned but are
// never persisted and never touch state.
func (m *Manager) AppendEvent(ctx context.Context, app, user, id string, ev Event) (*Event, error) {
	sessPath, err := sessionPath(app, user, id)
	if err != nil {
		return nil, err
	}

	if ev.ID == "" {
		ev.ID = m.ids.Generate()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = m.clock.Now()
	}

	if ev.Partial {
		slog.Debug("skipping partial event", "session", id, "event", ev.ID)
		return &ev, nil
	}

	evPath, err := eventPath(app, user, id, ev.ID)
	if err != nil {
		return nil, err
	}
	if _, err := m.store.Get(ctx, sessPath); err != nil {
		return nil, mapStoreErr("read "+sessPath, err)
	}

	delta := state.Split(ev.StateDelta)

	batch := new(docstore.Batch)
	if fields := scopeMergeFields(delta.App); fields != nil {
		path, err := appPath(app)
		if err != nil {
			return nil, err
		}
		batch.Merge(path, fields)
	}
	if fields := scopeMergeFields(delta.User); fields != nil {
		path, err := userPath(app, user)
		if err != nil {
			return nil, err
		}
		batch.Merge(path, fields)
	}

	update := map[string]any{
		fieldLastUpdateTime: encodeTime(ev.Timestamp),
	}
	for k, v := range delta.Session {
		if state.IsTombstone(v) {
			update[fieldState+"."+k] = docstore.FieldDelete
		} else {
			update[fieldState+"."+k] = v
		}
	}
	batch.Update(sessPath, update)
	batch.Create(evPath, encodeEvent(ev))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.store.Commit(ctx, batch); err != nil {
		return nil, mapStoreErr("append event "+ev.ID, err)
	}

	slog.Debug("appended event",
		"app", app, "user", user, "session", id,
		"event", ev.ID, "state_keys", len(ev.StateDelta))
	return &ev, nil
}

// scopeMergeFields turns one scope's split delta into merge fields,
// mapping tombstones onto field deletions. Returns nil when the scope
// has nothing to write.
func scopeMergeFields(delta map[string]any) map[string]any {
	if len(delta) == 0 {
		return nil
	}
	fields := make(map[string]any, len(delta))
	for k, v := range delta {
		if state.IsTombstone(v) {
			fields[k] = docstore.FieldDelete
		} else {
			fields[k] = v
		}
	}
	return fields
}
