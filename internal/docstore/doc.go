// Package docstore defines the hierarchical document-store boundary consumed
// by the session service, together with two adapters: an in-memory store and
// a SQLite-backed store.
//
// Documents are addressed by slash-separated paths and grouped into
// collections (a collection is the path one level above its documents).
// The store exposes exactly the capabilities the session layer needs:
//
//   - point reads by path
//   - atomic batched writes (create / set / merge / update / delete)
//   - ordered, paginated collection listing
//
// A batch commits as a single all-or-nothing unit. Within a patch, field
// keys may use dotted paths ("state.city") to address nested maps, and the
// FieldDelete sentinel removes a field. Durability is entirely the backing
// engine's concern; the adapters add none of their own.
package docstore
