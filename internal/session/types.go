package session

import (
	"time"

	"github.com/driftware/sessiondoc/internal/docstore"
	"github.com/driftware/sessiondoc/internal/state"
)

// Session is the reconstructed view of one conversation session. State is
// the merged application/user/session map; application and user keys carry
// their scope prefixes so a delta computed against this view re-splits to
// the correct documents.
type Session struct {
	AppName        string         `json:"app_name"`
	UserID         string         `json:"user_id"`
	ID             string         `json:"id"`
	State          map[string]any `json:"state"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreateTime     time.Time      `json:"create_time"`
	LastUpdateTime time.Time      `json:"last_update_time"`

	// Events is populated by GetSession only; summaries returned by
	// ListSessions leave it nil.
	Events []Event `json:"events,omitempty"`
}

// Event is one immutable entry in a session's event log.
type Event struct {
	ID        string         `json:"id"`
	Author    string         `json:"author,omitempty"`
	Content   map[string]any `json:"content,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	// StateDelta maps state keys (prefixed or not) to new values. A nil
	// value — or the state.Tombstone sentinel on write — deletes the key.
	// Temporary-scope keys influence only the caller's view of this one
	// append; they are stripped before the event record is persisted.
	StateDelta map[string]any `json:"state_delta,omitempty"`

	// Partial marks a streaming fragment. Partial events are returned to
	// the caller untouched and never persisted.
	Partial bool `json:"partial,omitempty"`
}

// CreateSessionRequest carries the inputs for a new session.
type CreateSessionRequest struct {
	AppName string
	UserID  string

	// ID names the session explicitly; empty requests a generated id.
	ID string

	// State seeds initial state. Prefixed keys are split to their scope
	// documents as part of the same creation batch; temporary-scope keys
	// are dropped.
	State map[string]any

	Metadata map[string]any
}

// GetOptions bounds the events loaded by GetSession. The zero value loads
// the full log.
type GetOptions struct {
	// NumRecentEvents keeps only the most recent N events (still returned
	// in append order). Zero means unbounded.
	NumRecentEvents int

	// AfterTime keeps only events strictly after this instant.
	AfterTime time.Time
}

// ListEventsOptions controls one page of an event listing.
type ListEventsOptions struct {
	// PageSize bounds the page; zero uses the manager's default.
	PageSize int

	// Cursor resumes a previous listing from its EventPage.NextCursor.
	Cursor string
}

// EventPage is one page of a session's event log in append order.
type EventPage struct {
	Events []Event `json:"events"`

	// NextCursor restarts the listing after the last returned event; empty
	// when the log is exhausted.
	NextCursor string `json:"next_cursor,omitempty"`
}

// Document field names shared by the encode/decode helpers below.
const (
	fieldID             = "id"
	fieldAppName        = "app_name"
	fieldUserID         = "user_id"
	fieldState          = "state"
	fieldMetadata       = "metadata"
	fieldCreateTime     = "create_time"
	fieldLastUpdateTime = "last_update_time"
	fieldAuthor         = "author"
	fieldContent        = "content"
	fieldTimestamp      = "timestamp"
	fieldStateDelta     = "state_delta"
)

// encodeTime stores instants as float64 unix seconds: JSON-native and
// totally ordered, which is all the listing layer needs.
func encodeTime(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func decodeTime(v any) time.Time {
	f, ok := v.(float64)
	if !ok {
		return time.Time{}
	}
	return time.UnixMicro(int64(f * 1e6)).UTC()
}

func decodeStringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func decodeMapField(fields map[string]any, key string) map[string]any {
	m, _ := fields[key].(map[string]any)
	return m
}

// decodeSession rebuilds a Session from its document. State at this point
// is session-scoped only; callers merge in application and user state.
func decodeSession(doc docstore.Document) *Session {
	sessionState := decodeMapField(doc.Fields, fieldState)
	if sessionState == nil {
		sessionState = map[string]any{}
	}
	return &Session{
		AppName:        decodeStringField(doc.Fields, fieldAppName),
		UserID:         decodeStringField(doc.Fields, fieldUserID),
		ID:             decodeStringField(doc.Fields, fieldID),
		State:          sessionState,
		Metadata:       decodeMapField(doc.Fields, fieldMetadata),
		CreateTime:     decodeTime(doc.Fields[fieldCreateTime]),
		LastUpdateTime: decodeTime(doc.Fields[fieldLastUpdateTime]),
	}
}

// encodeEvent produces the persisted form of an event. The state delta is
// stripped of temporary-scope keys, and tombstones flatten to JSON null.
func encodeEvent(ev Event) map[string]any {
	fields := map[string]any{
		fieldID:        ev.ID,
		fieldTimestamp: encodeTime(ev.Timestamp),
	}
	if ev.Author != "" {
		fields[fieldAuthor] = ev.Author
	}
	if len(ev.Content) > 0 {
		fields[fieldContent] = ev.Content
	}
	if delta := persistableDelta(ev.StateDelta); len(delta) > 0 {
		fields[fieldStateDelta] = delta
	}
	return fields
}

// persistableDelta filters a state delta down to what belongs in storage.
func persistableDelta(delta map[string]any) map[string]any {
	if len(delta) == 0 {
		return nil
	}
	out := make(map[string]any, len(delta))
	for key, value := range delta {
		scope, physical := state.Classify(key)
		if scope == state.ScopeTemporary || physical == "" {
			continue
		}
		if state.IsTombstone(value) {
			value = nil
		}
		out[key] = value
	}
	return out
}

func decodeEvent(doc docstore.Document) Event {
	return Event{
		ID:         decodeStringField(doc.Fields, fieldID),
		Author:     decodeStringField(doc.Fields, fieldAuthor),
		Content:    decodeMapField(doc.Fields, fieldContent),
		Timestamp:  decodeTime(doc.Fields[fieldTimestamp]),
		StateDelta: decodeMapField(doc.Fields, fieldStateDelta),
	}
}
