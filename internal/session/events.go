package session

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/driftware/sessiondoc/internal/docstore"
)

// ListEvents pages through a session's event log in append order. The
// returned cursor is opaque; feed it back unchanged to continue, and treat
// a cursor from one session as meaningless in any other.
func (m *Manager) ListEvents(ctx context.Context, app, user, id string, opts ListEventsOptions) (*EventPage, error) {
	sessPath, err := sessionPath(app, user, id)
	if err != nil {
		return nil, err
	}
	events, err := eventsPath(app, user, id)
	if err != nil {
		return nil, err
	}
	if _, err := m.store.Get(ctx, sessPath); err != nil {
		return nil, mapStoreErr("read session "+id, err)
	}

	size := opts.PageSize
	if size <= 0 {
		size = m.eventPageSize
	}
	listOpts := docstore.ListOptions{
		OrderBy: fieldTimestamp,
		Limit:   size,
	}
	if opts.Cursor != "" {
		after, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		listOpts.StartAfter = after
	}

	page, err := m.store.List(ctx, events, listOpts)
	if err != nil {
		return nil, mapStoreErr("list events of "+id, err)
	}

	out := &EventPage{Events: make([]Event, 0, len(page.Documents))}
	for _, doc := range page.Documents {
		out.Events = append(out.Events, decodeEvent(doc))
	}
	if page.NextCursor != "" {
		out.NextCursor = encodeCursor(page.NextCursor)
	}
	return out, nil
}

// Cursors are store paths wrapped in URL-safe base64 so they survive
// transport through query strings and CLI flags unescaped.

func encodeCursor(path string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(path))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("cursor %q: %w", cursor, ErrInvalidCursor)
	}
	return string(raw), nil
}
