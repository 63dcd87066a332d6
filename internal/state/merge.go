package state

// deleted is the unexported type backing the Tombstone sentinel. A distinct
// type keeps it from colliding with any value a caller could produce from
// decoded JSON.
type deleted struct{}

// Tombstone marks a key for deletion when used as a delta value. The store
// layer translates it into a field delete on the target document.
var Tombstone any = deleted{}

// IsTombstone reports whether a delta value is the deletion marker.
func IsTombstone(v any) bool {
	_, ok := v.(deleted)
	return ok
}

// Delta holds a state delta partitioned by scope. Physical keys only: the
// application and user maps carry keys with their prefixes stripped.
// Temporary-scope keys are never represented here.
type Delta struct {
	App     map[string]any
	User    map[string]any
	Session map[string]any
}

// Empty reports whether the delta carries no persistent mutations.
func (d Delta) Empty() bool {
	return len(d.App) == 0 && len(d.User) == 0 && len(d.Session) == 0
}

// Split partitions a state delta into per-scope sub-deltas using Classify.
//
// Temporary-scope keys are dropped: they affect only the immediate caller,
// never storage. Keys that reduce to an empty physical key (a bare prefix
// such as "app:") are dropped as well. Tombstone values pass through so the
// store layer can turn them into field deletes.
//
// Split never mutates its input and returns maps that are nil when the
// corresponding scope received no keys.
func Split(delta map[string]any) Delta {
	var out Delta
	for key, value := range delta {
		scope, physical := Classify(key)
		if physical == "" || scope == ScopeTemporary {
			continue
		}
		switch scope {
		case ScopeApplication:
			if out.App == nil {
				out.App = make(map[string]any)
			}
			out.App[physical] = value
		case ScopeUser:
			if out.User == nil {
				out.User = make(map[string]any)
			}
			out.User[physical] = value
		default:
			if out.Session == nil {
				out.Session = make(map[string]any)
			}
			out.Session[physical] = value
		}
	}
	return out
}

// Merge reconstitutes one logical state map from the three persisted scope
// maps. Application and user keys are re-prefixed so scope information is
// preserved in the merged view; session keys are carried unchanged.
//
// Because the prefixes keep the three namespaces disjoint, the merge is an
// order-independent union: no key from one document can shadow a key from
// another. A nil map stands for a scope document that does not exist yet.
// Merge is pure and deterministic; the inputs are never mutated.
func Merge(app, user, session map[string]any) map[string]any {
	merged := make(map[string]any, len(app)+len(user)+len(session))
	for key, value := range session {
		merged[key] = value
	}
	for key, value := range app {
		merged[AppPrefix+key] = value
	}
	for key, value := range user {
		merged[UserPrefix+key] = value
	}
	return merged
}
