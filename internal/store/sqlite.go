package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mapforge/cartograph/internal/climate"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	resolution INTEGER NOT NULL,
	projection TEXT NOT NULL,
	summary    TEXT NOT NULL,
	grid       TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_resolution ON runs(resolution);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run Run) (*Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	projJSON, summaryJSON, gridJSON, err := marshalRun(run)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal run")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, resolution, projection, summary, grid, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.VerticalResolution, string(projJSON), string(summaryJSON), nullString(gridJSON), run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, resolution, projection, summary, grid, created_at FROM runs WHERE id = ?`,
		runID,
	)

	var r Run
	var projJSON, summaryJSON string
	var gridJSON sql.NullString

	err := row.Scan(&r.ID, &r.VerticalResolution, &projJSON, &summaryJSON, &gridJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := unmarshalRun(&r, []byte(projJSON), []byte(summaryJSON)); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal run")
	}
	if gridJSON.Valid {
		r.Grid = &climate.Grid{}
		if err := json.Unmarshal([]byte(gridJSON.String), r.Grid); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal grid")
		}
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, resolution, projection, summary, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Resolution > 0 {
		query += ` AND resolution = ?`
		args = append(args, filter.Resolution)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var projJSON, summaryJSON string
		if err := rows.Scan(&r.ID, &r.VerticalResolution, &projJSON, &summaryJSON, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := unmarshalRun(&r, []byte(projJSON), []byte(summaryJSON)); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	return nil
}

// helpers

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func marshalRun(run Run) (proj, summary, grid []byte, err error) {
	if proj, err = json.Marshal(run.Projection); err != nil {
		return nil, nil, nil, eris.Wrap(err, "projection")
	}
	if summary, err = json.Marshal(run.Summary); err != nil {
		return nil, nil, nil, eris.Wrap(err, "summary")
	}
	if run.Grid != nil {
		if grid, err = json.Marshal(run.Grid); err != nil {
			return nil, nil, nil, eris.Wrap(err, "grid")
		}
	}
	return proj, summary, grid, nil
}

func unmarshalRun(r *Run, proj, summary []byte) error {
	if err := json.Unmarshal(proj, &r.Projection); err != nil {
		return eris.Wrap(err, "projection")
	}
	if err := json.Unmarshal(summary, &r.Summary); err != nil {
		return eris.Wrap(err, "summary")
	}
	return nil
}
