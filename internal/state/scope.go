package state

import "strings"

// Scope identifies which document a state key is stored in.
type Scope string

const (
	// ScopeApplication keys live in the application document and are visible
	// to every user and session under that application.
	ScopeApplication Scope = "application"

	// ScopeUser keys live in the user document and are visible to every
	// session of that user.
	ScopeUser Scope = "user"

	// ScopeTemporary keys are never written to storage. They exist only for
	// the duration of a single append call.
	ScopeTemporary Scope = "temporary"

	// ScopeSession keys live in the session document. Unprefixed keys
	// default to this scope.
	ScopeSession Scope = "session"
)

// Key prefixes for the non-session scopes. A key without any of these
// prefixes is session-scoped.
const (
	AppPrefix  = "app:"
	UserPrefix = "user:"
	TempPrefix = "temp:"
)

// Classify maps a state key to its scope and physical key.
//
// The physical key is the key as stored inside the scope's document: the
// prefix is stripped for application, user, and temporary keys, and kept
// unchanged for session keys.
//
// Classify is total: every string maps to exactly one scope, and unprefixed
// keys are session-scoped rather than an error. It is a pure function and
// safe for concurrent use.
func Classify(key string) (Scope, string) {
	switch {
	case strings.HasPrefix(key, AppPrefix):
		return ScopeApplication, strings.TrimPrefix(key, AppPrefix)
	case strings.HasPrefix(key, UserPrefix):
		return ScopeUser, strings.TrimPrefix(key, UserPrefix)
	case strings.HasPrefix(key, TempPrefix):
		return ScopeTemporary, strings.TrimPrefix(key, TempPrefix)
	default:
		return ScopeSession, key
	}
}

// Prefixed re-attaches the scope prefix to a physical key, producing the
// logical key as seen in a merged state view. It is the inverse of Classify
// for non-empty physical keys.
func Prefixed(scope Scope, physical string) string {
	switch scope {
	case ScopeApplication:
		return AppPrefix + physical
	case ScopeUser:
		return UserPrefix + physical
	case ScopeTemporary:
		return TempPrefix + physical
	default:
		return physical
	}
}
