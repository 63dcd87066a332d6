package docstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is a durable Store backed by a single SQLite database.
// Batch commits map to SQL transactions, which is where the all-or-nothing
// guarantee comes from; durability is entirely SQLite's.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite-backed store at the given file path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// OpenSQLite is idempotent: reopening an existing database is safe.
func OpenSQLite(file string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY on concurrent batch commits.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the document at docPath, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, docPath string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE path = ?`, docPath,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("get %s: %w", docPath, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w: %v", docPath, ErrUnavailable, err)
	}

	fields, err := UnmarshalFields([]byte(body))
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", docPath, err)
	}
	return Document{Path: docPath, Fields: fields}, nil
}

// Commit applies the batch inside one SQL transaction.
func (s *SQLiteStore) Commit(ctx context.Context, batch *Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit batch: begin tx: %w: %v", ErrUnavailable, err)
	}
	defer tx.Rollback() // No-op if committed.

	for _, op := range batch.ops {
		if err := s.applyOp(ctx, tx, op); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) applyOp(ctx context.Context, tx *sql.Tx, op Op) error {
	var doc map[string]any
	exists := true

	var body string
	err := tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE path = ?`, op.path,
	).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
	case err != nil:
		return fmt.Errorf("%s %s: %w: %v", op.kind, op.path, ErrUnavailable, err)
	default:
		if doc, err = UnmarshalFields([]byte(body)); err != nil {
			return fmt.Errorf("%s %s: %w", op.kind, op.path, err)
		}
	}

	switch op.kind {
	case opCreate:
		if exists {
			return fmt.Errorf("create %s: %w", op.path, ErrAlreadyExists)
		}
		doc = make(map[string]any)
		applyPatch(doc, op.fields)
	case opSet:
		doc = make(map[string]any)
		applyPatch(doc, op.fields)
	case opMerge:
		if !exists {
			doc = make(map[string]any)
		}
		applyPatch(doc, op.fields)
	case opUpdate:
		if !exists {
			return fmt.Errorf("update %s: %w", op.path, ErrNotFound)
		}
		applyPatch(doc, op.fields)
	case opDelete:
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM documents WHERE path = ?`, op.path,
		); err != nil {
			return fmt.Errorf("delete %s: %w: %v", op.path, ErrUnavailable, err)
		}
		return nil
	}

	encoded, err := MarshalFields(doc)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op.kind, op.path, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (path, collection, body)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET body = excluded.body
	`, op.path, path.Dir(op.path), string(encoded)); err != nil {
		return fmt.Errorf("%s %s: %w: %v", op.kind, op.path, ErrUnavailable, err)
	}
	return nil
}

// List loads the collection's documents and orders them in process via the
// shared helper, so cursor and ordering semantics match the memory adapter
// exactly. Collections here are session-sized; no server-side ordering is
// needed.
func (s *SQLiteStore) List(ctx context.Context, collection string, opts ListOptions) (Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, body FROM documents WHERE collection = ?`, collection,
	)
	if err != nil {
		return Page{}, fmt.Errorf("list %s: %w: %v", collection, ErrUnavailable, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var docPath, body string
		if err := rows.Scan(&docPath, &body); err != nil {
			return Page{}, fmt.Errorf("list %s: %w", collection, err)
		}
		fields, err := UnmarshalFields([]byte(body))
		if err != nil {
			return Page{}, fmt.Errorf("list %s: %w", collection, err)
		}
		docs = append(docs, Document{Path: docPath, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("list %s: %w: %v", collection, ErrUnavailable, err)
	}

	return sortAndPage(docs, opts)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
