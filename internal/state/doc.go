// Package state implements scope classification and merging for session state.
//
// Every state key belongs to exactly one scope, determined by its prefix:
//
//   - "app:"  — application scope, shared by all users of an application
//   - "user:" — user scope, shared by all sessions of a user
//   - "temp:" — temporary scope, never persisted
//   - anything else — session scope, private to one session
//
// The classification is used symmetrically on both sides of storage: writes
// split a state delta into per-scope sub-deltas, and reads merge the three
// persisted scope documents back into one logical map. Because the merged
// view re-applies the scope prefixes, a delta computed against a merged view
// re-splits losslessly to the documents it came from.
package state
