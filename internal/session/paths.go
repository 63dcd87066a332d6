package session

import (
	"fmt"
	"strings"
)

// Collection segment names in the document hierarchy.
const (
	appsCollection     = "apps"
	usersCollection    = "users"
	sessionsCollection = "sessions"
	eventsCollection   = "events"
)

// validateID rejects identifiers that cannot address a document: empty
// strings and strings containing the path separator. Validation happens
// before any store call.
func validateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s: empty: %w", kind, ErrInvalidIdentifier)
	}
	if strings.Contains(id, "/") {
		return fmt.Errorf("%s %q: contains '/': %w", kind, id, ErrInvalidIdentifier)
	}
	return nil
}

// appPath returns the application document path.
func appPath(app string) (string, error) {
	if err := validateID("app name", app); err != nil {
		return "", err
	}
	return appsCollection + "/" + app, nil
}

// userPath returns the user document path.
func userPath(app, user string) (string, error) {
	base, err := appPath(app)
	if err != nil {
		return "", err
	}
	if err := validateID("user id", user); err != nil {
		return "", err
	}
	return base + "/" + usersCollection + "/" + user, nil
}

// sessionsPath returns the path of a user's sessions collection.
func sessionsPath(app, user string) (string, error) {
	base, err := userPath(app, user)
	if err != nil {
		return "", err
	}
	return base + "/" + sessionsCollection, nil
}

// sessionPath returns the session document path.
func sessionPath(app, user, id string) (string, error) {
	base, err := sessionsPath(app, user)
	if err != nil {
		return "", err
	}
	if err := validateID("session id", id); err != nil {
		return "", err
	}
	return base + "/" + id, nil
}

// eventsPath returns the path of a session's events collection.
func eventsPath(app, user, id string) (string, error) {
	base, err := sessionPath(app, user, id)
	if err != nil {
		return "", err
	}
	return base + "/" + eventsCollection, nil
}

// eventPath returns the event document path.
func eventPath(app, user, id, eventID string) (string, error) {
	base, err := eventsPath(app, user, id)
	if err != nil {
		return "", err
	}
	if err := validateID("event id", eventID); err != nil {
		return "", err
	}
	return base + "/" + eventID, nil
}
