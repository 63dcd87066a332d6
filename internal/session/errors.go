package session

import (
	"errors"
	"fmt"

	"github.com/driftware/sessiondoc/internal/docstore"
)

var (
	// ErrInvalidIdentifier indicates a malformed app/user/session/event
	// identifier. Raised locally, before any store call; never retryable.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNotFound indicates the referenced session (or event) is absent.
	ErrNotFound = errors.New("session not found")

	// ErrAlreadyExists indicates a create collided with an existing
	// session, or an append reused an event identifier.
	ErrAlreadyExists = errors.New("already exists")

	// ErrTransient indicates a store-side availability failure. The whole
	// logical operation may be retried; an append retry must regenerate the
	// event identifier.
	ErrTransient = errors.New("transient store error")

	// ErrConsistency indicates the store reported a partially applied
	// batch. With an atomic batch primitive this must never happen; it is
	// surfaced as fatal, never repaired in place.
	ErrConsistency = errors.New("consistency violation")

	// ErrInvalidCursor indicates an event-listing continuation cursor that
	// is malformed or no longer matches the collection.
	ErrInvalidCursor = errors.New("invalid event cursor")
)

// mapStoreErr translates a docstore error into the service taxonomy,
// keeping the operation context in the message. Store errors are always
// wrapped, never swallowed.
func mapStoreErr(op string, err error) error {
	var partial *docstore.PartialCommitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &partial):
		return fmt.Errorf("%s: %w: %v", op, ErrConsistency, partial)
	case errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, docstore.ErrAlreadyExists):
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	case errors.Is(err, docstore.ErrUnavailable):
		return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
	case errors.Is(err, docstore.ErrInvalidCursor):
		return fmt.Errorf("%s: %w", op, ErrInvalidCursor)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
