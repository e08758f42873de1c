// Package store keeps a history of validation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/store/migrations"
)

// ErrNotFound is returned when no run matches a lookup
var ErrNotFound = errors.New("run not found")

// Run is one stored validation run. Report is only populated by Get and Latest.
type Run struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Source     string        `json:"source,omitempty"`
	Profile    string        `json:"profile"`
	Valid      bool          `json:"valid"`
	Fatal      int           `json:"fatal"`
	Errors     int           `json:"errors"`
	Warnings   int           `json:"warnings"`
	Facts      int           `json:"facts"`
	CreatedAt  time.Time     `json:"created_at"`
	Report     *model.Report `json:"report,omitempty"`
}

// Store is the SQLite-backed run history
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// DefaultPath returns ~/.ixbrlcheck/history.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ixbrlcheck", "history.db"), nil
}

// Open opens (creating if needed) the history database at path.
// An empty path selects DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL lets batch workers write while the CLI reads
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// migrate applies every embedded NNN_name.up.sql newer than the recorded version
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save records a report as a new run
func (s *Store) Save(ctx context.Context, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, document_id, source, profile, valid, fatal, errors, warnings, facts, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, report.DocumentID, report.Source, report.Profile, report.Valid,
		report.Summary.Fatal, report.Summary.Errors, report.Summary.Warnings, report.Stats.Facts,
		string(data), s.now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("saving run %s: %w", id, err)
	}
	return nil
}

const runColumns = `id, document_id, source, profile, valid, fatal, errors, warnings, facts, created_at`

// List returns the most recent runs first, without their reports.
// A non-positive limit returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns a run with its report
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+`, report FROM runs WHERE id = ?`, id)
	return scanRun(row, true)
}

// Latest returns the most recent run of a document with its report
func (s *Store) Latest(ctx context.Context, documentID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+`, report FROM runs WHERE document_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		documentID)
	return scanRun(row, true)
}

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner, withReport bool) (*Run, error) {
	var (
		run     Run
		created int64
		report  string
	)
	dest := []any{&run.ID, &run.DocumentID, &run.Source, &run.Profile, &run.Valid,
		&run.Fatal, &run.Errors, &run.Warnings, &run.Facts, &created}
	if withReport {
		dest = append(dest, &report)
	}

	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()

	if withReport {
		run.Report = &model.Report{}
		if err := json.Unmarshal([]byte(report), run.Report); err != nil {
			return nil, fmt.Errorf("decoding report of run %s: %w", run.ID, err)
		}
	}

	return &run, nil
}
