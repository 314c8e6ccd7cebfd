// Package staging provides the per-batch embedded store that holds one
// input file's normalized citation relations between normalization and
// export. A store never outlives its batch and is never shared.
package staging

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Mode selects how a store is backed.
type Mode int

const (
	// ModeMemory keeps the store entirely in memory. Fastest, no durability.
	ModeMemory Mode = iota
	// ModeFile backs the store with a uniquely-named database file so many
	// batches can stage concurrently without sharing state.
	ModeFile
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeMemory {
		return "memory"
	}
	return "disk"
}

var (
	// ErrSchemaDefined is returned when DefineSchema is called twice.
	ErrSchemaDefined = errors.New("schema already defined")
	// ErrNoTransaction is returned when a write is attempted before Begin.
	ErrNoTransaction = errors.New("no open transaction")
)

// Store is one batch's staging database.
type Store struct {
	db         *sql.DB
	tx         *sql.Tx
	hasSchema  bool
	closed     bool
	savepoints int
}

// Open creates a fresh staging store. For ModeFile the path names the
// backing database file; for ModeMemory the path is ignored.
func Open(mode Mode, path string) (*Store, error) {
	dsn := path
	if mode == ModeMemory {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening staging database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// DefineSchema creates the four staged relations. Calling it a second time
// on the same store is an error.
func (s *Store) DefineSchema() error {
	if s.hasSchema {
		return ErrSchemaDefined
	}

	schema := `
		CREATE TABLE pm_ext_articles_revised_journals (
			pmid INTEGER PRIMARY KEY,
			article_title TEXT,
			date_created TEXT,
			date_revised TEXT,
			issn TEXT,
			issn_type TEXT,
			cited_medium TEXT,
			volume TEXT,
			issue TEXT,
			year TEXT,
			month TEXT,
			title TEXT,
			iso_abbreviation TEXT,
			nlm_uid TEXT
		);

		CREATE TABLE pm_ext_mesh_headings (
			pmid INTEGER NOT NULL,
			descriptor_uid TEXT NOT NULL,
			major_descriptor INTEGER NOT NULL,
			PRIMARY KEY (pmid, descriptor_uid)
		);

		CREATE TABLE pm_ext_publication_types (
			pmid INTEGER NOT NULL,
			publication_type TEXT,
			publication_type_ui TEXT,
			publication_type_ordinality INTEGER NOT NULL,
			PRIMARY KEY (pmid, publication_type_ordinality)
		);

		CREATE TABLE pm_ext_authors_affiliations (
			pmid INTEGER NOT NULL,
			author_ordinality INTEGER NOT NULL,
			initials TEXT,
			fore_name TEXT,
			last_name TEXT,
			affiliation_ordinality INTEGER NOT NULL,
			affiliation TEXT,
			PRIMARY KEY (pmid, author_ordinality, affiliation_ordinality)
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating staging schema: %w", err)
	}

	s.hasSchema = true
	return nil
}

// Begin opens the batch transaction. All inserts for a batch run inside one
// transaction and are committed together by Commit.
func (s *Store) Begin() error {
	if s.tx != nil {
		return errors.New("transaction already open")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Commit finalizes the batch's writes.
func (s *Store) Commit() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Record runs fn inside a savepoint. If fn fails, every insert it issued is
// rolled back and the error is returned; the batch transaction stays usable,
// so one bad record never aborts its batch.
func (s *Store) Record(fn func() error) error {
	if s.tx == nil {
		return ErrNoTransaction
	}

	s.savepoints++
	name := fmt.Sprintf("record_%d", s.savepoints)

	if _, err := s.tx.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := s.tx.Exec("ROLLBACK TO " + name); rbErr != nil {
			return fmt.Errorf("rolling back record: %w", rbErr)
		}
		if _, relErr := s.tx.Exec("RELEASE " + name); relErr != nil {
			return fmt.Errorf("releasing savepoint: %w", relErr)
		}
		return err
	}

	if _, err := s.tx.Exec("RELEASE " + name); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}
	return nil
}

// Select runs a read query and materializes the full result, returning the
// column names and rows. The store is read single-threaded; callers hand the
// materialized rows to whatever concurrency comes next.
func (s *Store) Select(query string, args ...any) ([]string, [][]sql.NullString, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying staging store: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("reading columns: %w", err)
	}

	var out [][]sql.NullString
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return cols, out, nil
}

// Close releases the store. Safe to call multiple times; an uncommitted
// transaction is rolled back.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

// exec routes a write through the batch transaction.
func (s *Store) exec(query string, args ...any) error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	if _, err := s.tx.Exec(query, args...); err != nil {
		return err
	}
	return nil
}
