// Package index keeps a SQLite mirror of the DOI cache for ad-hoc queries.
// The JSON cache is the source of truth; the index is rebuilt from it.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matsen/doibadge/internal/badge"
	"github.com/matsen/doibadge/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

const selectEntryFields = `doi, title, pdf_url, authors_json, journal, pub_year,
	label, confidence, processed_at`

// Open opens or creates a SQLite index at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

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

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			doi TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			pdf_url TEXT,
			authors_json TEXT NOT NULL,
			journal TEXT,
			pub_year INTEGER,
			label TEXT,
			confidence REAL,
			badge TEXT,
			processed_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_label ON entries(label) WHERE label IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_entries_badge ON entries(badge) WHERE badge IS NOT NULL;
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and reloads it from cache entries.
func (d *DB) Rebuild(entries []paper.Entry) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clearing entries table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (
			doi, title, pdf_url, authors_json, journal, pub_year,
			label, confidence, badge, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		authors := e.Metadata.Authors
		if authors == nil {
			authors = []string{}
		}
		authorsJSON, err := json.Marshal(authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", e.DOI, err)
		}

		var label, badgeID sql.NullString
		var confidence sql.NullFloat64
		if e.Classification != nil {
			label = sql.NullString{String: e.Classification.Label, Valid: true}
			if id, ok := badge.ForLabel(e.Classification.Label); ok {
				badgeID = sql.NullString{String: id, Valid: true}
			}
			if e.Classification.Confidence != nil {
				confidence = sql.NullFloat64{Float64: *e.Classification.Confidence, Valid: true}
			}
		}

		_, err = stmt.Exec(
			e.DOI, e.Metadata.Title, nullableString(e.Metadata.PDFURL), string(authorsJSON),
			nullableString(e.Metadata.Journal), nullableInt(e.Metadata.Year),
			label, confidence, badgeID, e.ProcessedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", e.DOI, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(entries), nil
}

// ByLabel returns entries classified with the given label, ordered by DOI.
func (d *DB) ByLabel(label string) ([]paper.Entry, error) {
	return d.query(`SELECT `+selectEntryFields+` FROM entries WHERE label = ? ORDER BY doi`, label)
}

// ByBadge returns entries whose label maps to the given badge, ordered by DOI.
func (d *DB) ByBadge(id string) ([]paper.Entry, error) {
	return d.query(`SELECT `+selectEntryFields+` FROM entries WHERE badge = ? ORDER BY doi`, id)
}

// Unclassified returns entries still waiting for a classification.
func (d *DB) Unclassified() ([]paper.Entry, error) {
	return d.query(`SELECT ` + selectEntryFields + ` FROM entries WHERE label IS NULL ORDER BY doi`)
}

// LabelCounts returns how many entries carry each label.
func (d *DB) LabelCounts() (map[string]int, error) {
	rows, err := d.db.Query(`SELECT label, COUNT(*) FROM entries WHERE label IS NOT NULL GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("counting labels: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scanning label count: %w", err)
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Count returns the number of indexed entries.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

func (d *DB) query(q string, args ...any) ([]paper.Entry, error) {
	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []paper.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(rows *sql.Rows) (paper.Entry, error) {
	var (
		e           paper.Entry
		pdfURL      sql.NullString
		journal     sql.NullString
		year        sql.NullInt64
		label       sql.NullString
		confidence  sql.NullFloat64
		authorsJSON string
		processedAt string
	)
	if err := rows.Scan(&e.DOI, &e.Metadata.Title, &pdfURL, &authorsJSON, &journal, &year,
		&label, &confidence, &processedAt); err != nil {
		return paper.Entry{}, fmt.Errorf("scanning entry: %w", err)
	}

	e.Metadata.PDFURL = pdfURL.String
	e.Metadata.Journal = journal.String
	e.Metadata.Year = int(year.Int64)
	if err := json.Unmarshal([]byte(authorsJSON), &e.Metadata.Authors); err != nil {
		return paper.Entry{}, fmt.Errorf("parsing authors for %s: %w", e.DOI, err)
	}
	if len(e.Metadata.Authors) == 0 {
		e.Metadata.Authors = nil
	}
	if label.Valid {
		e.Classification = &paper.Classification{Label: label.String}
		if confidence.Valid {
			c := confidence.Float64
			e.Classification.Confidence = &c
		}
	}
	t, err := time.Parse(time.RFC3339Nano, processedAt)
	if err != nil {
		return paper.Entry{}, fmt.Errorf("parsing processed_at for %s: %w", e.DOI, err)
	}
	e.ProcessedAt = t

	return e, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
