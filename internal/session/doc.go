// Package session persists agent-conversation sessions into a hierarchical
// document store.
//
// One logical session is spread across four document kinds:
//
//	apps/{app}                                    application state
//	apps/{app}/users/{user}                       user state
//	apps/{app}/users/{user}/sessions/{id}         session state + metadata
//	apps/{app}/users/{user}/sessions/{id}/events  append-only event log
//
// State keys are partitioned across the first three documents by their
// scope prefix (package state) and reconstituted into one merged map on
// read. Appending an event splits its state delta by scope and commits the
// application patch, user patch, session patch, and new event record as one
// atomic batched write: either all four mutations become visible or none.
//
// Application and user documents are created implicitly by the first delta
// that touches them; sessions are created explicitly and deleted with their
// whole event subcollection. Events are immutable and totally ordered
// within a session.
package session
