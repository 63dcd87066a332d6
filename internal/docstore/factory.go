package docstore

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Driver identifies a document-store backend.
type Driver string

const (
	// DriverMemory is the in-process test driver.
	DriverMemory Driver = "memory"
	// DriverSQLite is the SQLite-file driver.
	DriverSQLite Driver = "sqlite"
)

// Open selects and opens a Store from a connection string of the form
// scheme://instance/partition:
//
//	memory://                   in-memory store (identifiers ignored)
//	sqlite://data/sessions      SQLite file data/sessions.db
//	sqlite:///var/lib/s/prod    SQLite file /var/lib/s/prod.db
//
// For SQLite the instance is the directory and the partition the database
// name; ".db" is appended unless the partition already carries it.
func Open(uri string) (Store, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse store uri: %w", err)
	}

	switch Driver(parsed.Scheme) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		file := sqliteFile(parsed)
		if file == "" {
			return nil, fmt.Errorf("sqlite uri %q: missing database path", uri)
		}
		return OpenSQLite(file)
	default:
		return nil, fmt.Errorf("unknown store driver %q", parsed.Scheme)
	}
}

func sqliteFile(u *url.URL) string {
	instance := u.Host
	partition := strings.Trim(u.Path, "/")

	var file string
	switch {
	case instance == "" && partition == "":
		return ""
	case instance == "":
		// sqlite:///abs/path/name keeps the absolute path.
		file = u.Path
	case partition == "":
		file = instance
	default:
		file = filepath.Join(instance, partition)
	}

	if !strings.HasSuffix(file, ".db") {
		file += ".db"
	}
	return file
}
