// Package storage provides a SQLite cache of parsed bibliography
// entries, so list and render commands can run without re-parsing the
// .bib source. The cache is disposable: it is rebuilt wholesale from
// the .bib file by the import command.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/bibble/internal/bibtex"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			entry_type TEXT NOT NULL,
			pub_year INTEGER NOT NULL,
			pub_month INTEGER,
			title TEXT NOT NULL,
			doi TEXT,
			authors_json TEXT NOT NULL,
			fields_json TEXT NOT NULL,
			seq INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_year ON entries(pub_year);
		CREATE INDEX IF NOT EXISTS idx_entries_doi ON entries(doi)
			WHERE doi IS NOT NULL AND doi != '';
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the cache and refills it from parsed entries. The seq
// column preserves the entries' source order for later retrieval.
func (d *DB) Rebuild(entries []bibtex.Entry) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clearing entries table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (
			key, entry_type, pub_year, pub_month, title, doi,
			authors_json, fields_json, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for i := range entries {
		e := &entries[i]

		year, _ := strconv.Atoi(strings.TrimSpace(e.Year()))
		authorsJSON, err := json.Marshal(e.Authors())
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", e.Key, err)
		}
		fieldsJSON, err := json.Marshal(e.Fields)
		if err != nil {
			return 0, fmt.Errorf("marshaling fields for %s: %w", e.Key, err)
		}

		_, err = stmt.Exec(
			e.Key, e.Type, year, bibtex.MonthNumber(e.Get("month")),
			e.Get("title"), bibtex.NormalizeDOI(e.Get("doi")),
			string(authorsJSON), string(fieldsJSON), i,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", e.Key, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return count, nil
}

// GetByKey returns the entry with the given citation key, or nil if
// none exists.
func (d *DB) GetByKey(key string) (*bibtex.Entry, error) {
	row := d.db.QueryRow(
		"SELECT key, entry_type, fields_json FROM entries WHERE key = ?", key)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListAll returns all cached entries in their stored (source) order.
func (d *DB) ListAll() ([]bibtex.Entry, error) {
	return d.list("SELECT key, entry_type, fields_json FROM entries ORDER BY seq")
}

// ListByYear returns cached entries for a single year, in stored order.
func (d *DB) ListByYear(year int) ([]bibtex.Entry, error) {
	return d.list(
		"SELECT key, entry_type, fields_json FROM entries WHERE pub_year = ? ORDER BY seq",
		year)
}

// GetByDOI returns the entry with the given DOI (normalized for
// comparison), or nil if none exists.
func (d *DB) GetByDOI(doi string) (*bibtex.Entry, error) {
	row := d.db.QueryRow(
		"SELECT key, entry_type, fields_json FROM entries WHERE doi = ?",
		bibtex.NormalizeDOI(doi))

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Count returns the number of cached entries.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n)
	return n, err
}

func (d *DB) list(query string, args ...interface{}) ([]bibtex.Entry, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []bibtex.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanEntry.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEntry reconstructs an Entry from a key/type/fields_json row. The
// fields JSON preserves source field order, so reconstructed entries
// render identically to freshly parsed ones.
func scanEntry(s scanner) (*bibtex.Entry, error) {
	var key, entryType, fieldsJSON string
	if err := s.Scan(&key, &entryType, &fieldsJSON); err != nil {
		return nil, err
	}

	var entryFields []bibtex.Field
	if err := json.Unmarshal([]byte(fieldsJSON), &entryFields); err != nil {
		return nil, fmt.Errorf("unmarshaling fields for %s: %w", key, err)
	}

	return &bibtex.Entry{Key: key, Type: entryType, Fields: entryFields}, nil
}
