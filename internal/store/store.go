// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/survey"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoImport is returned when the database holds no imported dataset.
var ErrNoImport = errors.New("no dataset imported")

// Store wraps SQLite access for imported survey data.
type Store struct {
	db *sql.DB
}

// Import describes one stored dataset.
type Import struct {
	ID         int64
	Source     string
	ImportedAt time.Time
	RowsRead   int
	RowsKept   int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			rows_read INTEGER NOT NULL,
			rows_kept INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS responses (
			id INTEGER PRIMARY KEY,
			import_id INTEGER NOT NULL,
			company TEXT NOT NULL,
			hours TEXT NOT NULL,
			sex TEXT NOT NULL,
			experience TEXT NOT NULL,
			salary REAL NOT NULL,
			location TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_responses_import ON responses(import_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDataset stores ds as the current dataset, removing earlier responses.
func (s *Store) ReplaceDataset(ctx context.Context, ds *survey.Dataset, at time.Time) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM responses`); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, imported_at, rows_read, rows_kept) VALUES (?, ?, ?, ?)`,
		ds.Source(), at.UTC().Format(time.RFC3339Nano), ds.RowsRead(), ds.Len(),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO responses (import_id, company, hours, sex, experience, salary, location)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, r := range ds.Records() {
		if _, err = stmt.ExecContext(ctx, id, r.Company, r.Hours, r.Sex, r.Experience, r.Salary, r.Location); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// LatestImport returns metadata of the most recent import.
func (s *Store) LatestImport(ctx context.Context) (Import, error) {
	var imp Import
	var at string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, imported_at, rows_read, rows_kept FROM imports ORDER BY id DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &at, &imp.RowsRead, &imp.RowsKept)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, ErrNoImport
	}
	if err != nil {
		return Import{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Import{}, err
	}
	imp.ImportedAt = parsed
	return imp, nil
}

// LoadDataset restores the most recently imported dataset.
func (s *Store) LoadDataset(ctx context.Context) (*survey.Dataset, error) {
	imp, err := s.LatestImport(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT company, hours, sex, experience, salary, location
		FROM responses WHERE import_id = ? ORDER BY id ASC`, imp.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.Company, &r.Hours, &r.Sex, &r.Experience, &r.Salary, &r.Location); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return survey.RestoreDataset(imp.Source, records, imp.RowsRead), nil
}

var fieldColumns = map[model.Field]string{
	model.FieldSex:        "sex",
	model.FieldCompany:    "company",
	model.FieldLocation:   "location",
	model.FieldExperience: "experience",
}

// GroupSummaries aggregates salaries per value of field in first-appearance order.
func (s *Store) GroupSummaries(ctx context.Context, field model.Field) ([]model.GroupSummary, error) {
	column, ok := fieldColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	imp, err := s.LatestImport(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s, COUNT(*), AVG(salary), MIN(salary), MAX(salary)
		FROM responses
		WHERE import_id = ?
		GROUP BY %s
		ORDER BY MIN(id) ASC`, column, column)
	rows, err := s.db.QueryContext(ctx, query, imp.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.GroupSummary
	for rows.Next() {
		var g model.GroupSummary
		if err := rows.Scan(&g.Value, &g.Count, &g.Mean, &g.Min, &g.Max); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
