package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/store"
)

// timeLayout keeps created_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	concept1 TEXT NOT NULL,
	concept2 TEXT NOT NULL,
	degree TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_records (
	run_id TEXT NOT NULL,
	level INTEGER NOT NULL,
	node1 INTEGER NOT NULL,
	node2 INTEGER NOT NULL,
	degree TEXT NOT NULL,
	primitives TEXT NOT NULL,
	existentials TEXT NOT NULL,
	PRIMARY KEY(run_id, level, node1, node2),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run together with its records
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: %w: empty run ID", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, concept1, concept2, degree, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	concept1=excluded.concept1,
	concept2=excluded.concept2,
	degree=excluded.degree,
	created_at=excluded.created_at;
`, r.ID, r.Concept1, r.Concept2, r.Degree, r.CreatedAt.UTC().Format(timeLayout)); err != nil {
		return err
	}

	if err := replaceRunRecords(ctx, tx, r.ID, r.Records); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceRunRecords(ctx context.Context, tx *sql.Tx, runID string, records []store.RunRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_records WHERE run_id=?`, runID); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_records (run_id, level, node1, node2, degree, primitives, existentials)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, rec := range records {
		primitivesJSON, err := json.Marshal(nonNil(rec.Primitives))
		if err != nil {
			return err
		}
		existentialsJSON, err := json.Marshal(nonNil(rec.Existentials))
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, rec.Level, rec.Node1, rec.Node2, rec.Degree,
			string(primitivesJSON), string(existentialsJSON)); err != nil {
			return err
		}
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	run, err := s.loadRun(ctx, s.db.QueryRowContext(ctx, `
SELECT id, concept1, concept2, degree, created_at
FROM runs
WHERE id = ?;
`, id))
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns the most recent runs first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	runs := make([]store.Run, 0, len(ids))
	for _, id := range ids {
		run, ok, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (s *sqliteStore) loadRun(ctx context.Context, row *sql.Row) (store.Run, error) {
	var (
		run     store.Run
		created string
	)
	if err := row.Scan(&run.ID, &run.Concept1, &run.Concept2, &run.Degree, &created); err != nil {
		return store.Run{}, err
	}
	if parsed, err := time.Parse(timeLayout, created); err == nil {
		run.CreatedAt = parsed
	}

	records, err := s.loadRecords(ctx, run.ID)
	if err != nil {
		return store.Run{}, err
	}
	run.Records = records
	return run, nil
}

func (s *sqliteStore) loadRecords(ctx context.Context, runID string) ([]store.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT level, node1, node2, degree, primitives, existentials
FROM run_records
WHERE run_id = ?
ORDER BY level, node1, node2;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.RunRecord
	for rows.Next() {
		var rec store.RunRecord
		var primitivesJSON, existentialsJSON string
		if err := rows.Scan(&rec.Level, &rec.Node1, &rec.Node2, &rec.Degree, &primitivesJSON, &existentialsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(primitivesJSON), &rec.Primitives); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(existentialsJSON), &rec.Existentials); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
