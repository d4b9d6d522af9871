// Package index maintains the derived summary projection over all known
// invoices: one row per invoice id, last-writer-wins.
//
// The table lives in an in-memory SQLite database - it is rebuilt from
// the drive walk at startup, so nothing here needs to survive a restart.
// SQLite gives us idempotent upserts and a deterministic listing order
// for free.
package index

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/billfold/billfold/internal/invoice"
)

//go:embed schema.sql
var schemaSQL string

// Index is the summary store keyed by invoice id.
// It is exclusively owned by a single engine instance; only the engine
// mutates it.
type Index struct {
	db *sql.DB
}

// Open creates an empty in-memory index.
func Open() (*Index, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	// A single connection keeps the :memory: database alive and matches
	// the single-writer model - SQLite would serialize writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close releases the database.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Upsert inserts or replaces the entry for s.ID. Last-writer-wins, no
// merge.
func (ix *Index) Upsert(s invoice.Summary) error {
	_, err := ix.db.Exec(`
		INSERT INTO summaries (id, number, name, date, total, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			name   = excluded.name,
			date   = excluded.date,
			total  = excluded.total,
			status = excluded.status
	`, s.ID, s.Number, s.Name, s.Date, s.Total, string(s.Status))
	if err != nil {
		return fmt.Errorf("upsert summary %s: %w", s.ID, err)
	}
	return nil
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (ix *Index) Remove(id string) error {
	if _, err := ix.db.Exec(`DELETE FROM summaries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove summary %s: %w", id, err)
	}
	return nil
}

// Get returns the entry for id, if present.
func (ix *Index) Get(id string) (invoice.Summary, bool, error) {
	row := ix.db.QueryRow(`
		SELECT id, number, name, date, total, status
		FROM summaries WHERE id = ?
	`, id)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return invoice.Summary{}, false, nil
	}
	if err != nil {
		return invoice.Summary{}, false, fmt.Errorf("get summary %s: %w", id, err)
	}
	return s, true, nil
}

// List returns all entries ordered by id. Ids are time-prefixed, so the
// order is stable creation order - deterministic across repeated calls.
func (ix *Index) List() ([]invoice.Summary, error) {
	rows, err := ix.db.Query(`
		SELECT id, number, name, date, total, status
		FROM summaries ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []invoice.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("list summaries: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return out, nil
}

// Len returns the number of indexed invoices.
func (ix *Index) Len() (int, error) {
	var n int
	if err := ix.db.QueryRow(`SELECT COUNT(*) FROM summaries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}
	return n, nil
}

// Rebuild clears the index and repopulates it from a batch of full
// documents, computing each total. Used to seed the index from the
// startup drive walk.
func (ix *Index) Rebuild(docs []*invoice.Invoice) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM summaries`); err != nil {
		return fmt.Errorf("rebuild index: clear: %w", err)
	}
	for _, doc := range docs {
		s := invoice.Summarize(doc)
		_, err := tx.Exec(`
			INSERT INTO summaries (id, number, name, date, total, status)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				number = excluded.number,
				name   = excluded.name,
				date   = excluded.date,
				total  = excluded.total,
				status = excluded.status
		`, s.ID, s.Number, s.Name, s.Date, s.Total, string(s.Status))
		if err != nil {
			return fmt.Errorf("rebuild index: insert %s: %w", s.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rebuild index: commit: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (invoice.Summary, error) {
	var s invoice.Summary
	var status string
	if err := row.Scan(&s.ID, &s.Number, &s.Name, &s.Date, &s.Total, &status); err != nil {
		return invoice.Summary{}, err
	}
	s.Status = invoice.Status(status)
	return s, nil
}
