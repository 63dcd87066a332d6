package session

import (
	"context"
	"log/slog"

	"github.com/driftware/sessiondoc/internal/docstore"
	"github.com/driftware/sessiondoc/internal/state"
)

// CreateSession creates a session document and folds any scoped initial
// state into the application and user documents in the same batch. An
// empty request id asks for a generated one; a caller-supplied id that
// already exists fails with ErrAlreadyExists.
func (m *Manager) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	id := req.ID
	if id == "" {
		id = m.ids.Generate()
	}
	sessPath, err := sessionPath(req.AppName, req.UserID, id)
	if err != nil {
		return nil, err
	}
	aPath, err := appPath(req.AppName)
	if err != nil {
		return nil, err
	}
	uPath, err := userPath(req.AppName, req.UserID)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	delta := state.Split(req.State)

	sessionState := map[string]any{}
	for k, v := range delta.Session {
		if state.IsTombstone(v) {
			continue
		}
		sessionState[k] = v
	}
	fields := map[string]any{
		fieldID:             id,
		fieldAppName:        req.AppName,
		fieldUserID:         req.UserID,
		fieldState:          sessionState,
		fieldCreateTime:     encodeTime(now),
		fieldLastUpdateTime: encodeTime(now),
	}
	if len(req.Metadata) > 0 {
		fields[fieldMetadata] = req.Metadata
	}

	batch := new(docstore.Batch)
	if scoped := scopeMergeFields(delta.App); scoped != nil {
		batch.Merge(aPath, scoped)
	}
	if scoped := scopeMergeFields(delta.User); scoped != nil {
		batch.Merge(uPath, scoped)
	}
	batch.Create(sessPath, fields)

	if err := m.store.Commit(ctx, batch); err != nil {
		return nil, mapStoreErr("create session "+id, err)
	}
	slog.Debug("created session", "app", req.AppName, "user", req.UserID, "session", id)

	appState, err := m.readScopeState(ctx, aPath)
	if err != nil {
		return nil, err
	}
	userState, err := m.readScopeState(ctx, uPath)
	if err != nil {
		return nil, err
	}
	return &Session{
		AppName:        req.AppName,
		UserID:         req.UserID,
		ID:             id,
		State:          state.Merge(appState, userState, sessionState),
		Metadata:       req.Metadata,
		CreateTime:     now,
		LastUpdateTime: now,
	}, nil
}

// GetSession reconstructs a session: its document, the merged three-scope
// state view, and its event log in append order. Options bound the log to
// the most recent N events or to events after an instant.
func (m *Manager) GetSession(ctx context.Context, app, user, id string, opts GetOptions) (*Session, error) {
	sessPath, err := sessionPath(app, user, id)
	if err != nil {
		return nil, err
	}

	doc, err := m.store.Get(ctx, sessPath)
	if err != nil {
		return nil, mapStoreErr("read session "+id, err)
	}
	sess := decodeSession(doc)

	aPath, err := appPath(app)
	if err != nil {
		return nil, err
	}
	uPath, err := userPath(app, user)
	if err != nil {
		return nil, err
	}
	appState, err := m.readScopeState(ctx, aPath)
	if err != nil {
		return nil, err
	}
	userState, err := m.readScopeState(ctx, uPath)
	if err != nil {
		return nil, err
	}
	sess.State = state.Merge(appState, userState, sess.State)

	events, err := eventsPath(app, user, id)
	if err != nil {
		return nil, err
	}
	listOpts := docstore.ListOptions{OrderBy: fieldTimestamp}
	switch {
	case opts.NumRecentEvents > 0:
		listOpts.Descending = true
		listOpts.Limit = opts.NumRecentEvents
	case !opts.AfterTime.IsZero():
		listOpts.After = encodeTime(opts.AfterTime)
	}
	page, err := m.store.List(ctx, events, listOpts)
	if err != nil {
		return nil, mapStoreErr("list events of "+id, err)
	}
	sess.Events = make([]Event, 0, len(page.Documents))
	for _, d := range page.Documents {
		sess.Events = append(sess.Events, decodeEvent(d))
	}
	if listOpts.Descending {
		// The recency window was fetched newest-first; callers always see
		// append order.
		for i, j := 0, len(sess.Events)-1; i < j; i, j = i+1, j-1 {
			sess.Events[i], sess.Events[j] = sess.Events[j], sess.Events[i]
		}
	}
	return sess, nil
}

// ListSessions returns summaries of every session under one app/user pair,
// ordered by creation time. Summaries carry merged state but no events.
func (m *Manager) ListSessions(ctx context.Context, app, user string) ([]*Session, error) {
	sessions, err := sessionsPath(app, user)
	if err != nil {
		return nil, err
	}
	aPath, err := appPath(app)
	if err != nil {
		return nil, err
	}
	uPath, err := userPath(app, user)
	if err != nil {
		return nil, err
	}

	appState, err := m.readScopeState(ctx, aPath)
	if err != nil {
		return nil, err
	}
	userState, err := m.readScopeState(ctx, uPath)
	if err != nil {
		return nil, err
	}

	page, err := m.store.List(ctx, sessions, docstore.ListOptions{
		OrderBy: fieldCreateTime,
	})
	if err != nil {
		return nil, mapStoreErr("list sessions of "+user, err)
	}

	out := make([]*Session, 0, len(page.Documents))
	for _, doc := range page.Documents {
		sess := decodeSession(doc)
		sess.State = state.Merge(appState, userState, sess.State)
		out = append(out, sess)
	}
	return out, nil
}

// DeleteSession removes a session and its entire event log. Events go in
// bounded batches so one huge log cannot produce one huge commit; the
// session document falls last, so a session observed mid-delete still
// resolves. Deleting a session that does not exist is not an error.
func (m *Manager) DeleteSession(ctx context.Context, app, user, id string) error {
	sessPath, err := sessionPath(app, user, id)
	if err != nil {
		return err
	}
	events, err := eventsPath(app, user, id)
	if err != nil {
		return err
	}

	for {
		page, err := m.store.List(ctx, events, docstore.ListOptions{
			OrderBy: fieldTimestamp,
			Limit:   m.deleteBatchSize,
		})
		if err != nil {
			return mapStoreErr("list events of "+id, err)
		}
		if len(page.Documents) == 0 {
			break
		}
		batch := new(docstore.Batch)
		for _, doc := range page.Documents {
			batch.Delete(doc.Path)
		}
		if err := m.store.Commit(ctx, batch); err != nil {
			return mapStoreErr("delete events of "+id, err)
		}
		if len(page.Documents) < m.deleteBatchSize {
			break
		}
	}

	batch := new(docstore.Batch)
	batch.Delete(sessPath)
	if err := m.store.Commit(ctx, batch); err != nil {
		return mapStoreErr("delete session "+id, err)
	}
	slog.Debug("deleted session", "app", app, "user", user, "session", id)
	return nil
}
