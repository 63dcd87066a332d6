// Package harness provides scenario-based conformance testing for the
// session service.
//
// Scenarios are YAML files describing a sequence of session operations and
// assertions over the resulting state. The harness executes them against
// an in-memory store with a deterministic clock and id generator, so the
// same scenario always produces a byte-identical trace.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - op: create
//	    app: shop
//	    user: alice
//	    session: s1
//	    state: { "user:lang": "de" }
//	  - op: append
//	    app: shop
//	    user: alice
//	    session: s1
//	    author: agent
//	    delta: { step: "checkout" }
//	  - op: get
//	    app: shop
//	    user: alice
//	    session: s1
//	assertions:
//	  - type: session_state
//	    app: shop
//	    user: alice
//	    session: s1
//	    expect: { step: "checkout" }
//
// A null delta value deletes the key, matching the CLI's JSON convention.
// Steps that should fail declare the expected error by name:
//
//	  - op: get
//	    app: shop
//	    user: alice
//	    session: ghost
//	    expect_error: not_found
//
// # Assertion Types
//
//   - session_state: fetches a session and subset-matches its merged state
//   - event_count: counts a session's persisted events
//   - store_len: checks the total number of stored documents
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store, a stepped clock, and sequential
// event ids, so traces are reproducible and suitable for golden file
// comparison via RunWithGolden.
package harness
