package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/mapforge/cartograph/internal/climate"
	"github.com/mapforge/cartograph/internal/db"
)

// PostgresStore implements Store using a pgx connection pool. Alongside the
// run record it mirrors every classified cell into run_cells so results can
// be queried with plain SQL.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	resolution INTEGER NOT NULL,
	projection JSONB NOT NULL,
	summary    JSONB NOT NULL,
	grid       JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_cells (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	x         INTEGER NOT NULL,
	y         INTEGER NOT NULL,
	climate   TEXT NOT NULL,
	humidity  TEXT NOT NULL,
	biome     TEXT NOT NULL,
	ice_start DOUBLE PRECISION NOT NULL,
	ice_end   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, x, y)
);

CREATE INDEX IF NOT EXISTS idx_runs_resolution ON runs(resolution);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_cells_biome ON run_cells(run_id, biome);
`

var runCellColumns = []string{"run_id", "x", "y", "climate", "humidity", "biome", "ice_start", "ice_end"}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run Run) (*Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	projJSON, summaryJSON, gridJSON, err := marshalRun(run)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal run")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, resolution, projection, summary, grid, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.VerticalResolution, projJSON, summaryJSON, gridJSON, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	if run.Grid != nil {
		if _, err := db.BulkInsert(ctx, s.pool, "run_cells", runCellColumns, cellRows(run.ID, run.Grid)); err != nil {
			return nil, eris.Wrapf(err, "postgres: insert cells for run %s", run.ID)
		}
	}
	return &run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, resolution, projection, summary, grid, created_at FROM runs WHERE id = $1`,
		runID,
	)

	var r Run
	var projJSON, summaryJSON []byte
	var gridJSON []byte

	err := row.Scan(&r.ID, &r.VerticalResolution, &projJSON, &summaryJSON, &gridJSON, &r.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	if err := unmarshalRun(&r, projJSON, summaryJSON); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal run")
	}
	if len(gridJSON) > 0 {
		r.Grid = &climate.Grid{}
		if err := json.Unmarshal(gridJSON, r.Grid); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal grid")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, resolution, projection, summary, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Resolution > 0 {
		args = append(args, filter.Resolution)
		query += ` AND resolution = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var projJSON, summaryJSON []byte
		if err := rows.Scan(&r.ID, &r.VerticalResolution, &projJSON, &summaryJSON, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := unmarshalRun(&r, projJSON, summaryJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) DeleteRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, runID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	return nil
}

// cellRows flattens a classification grid into run_cells rows, row-major.
func cellRows(runID string, g *climate.Grid) [][]any {
	rows := make([][]any, 0, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			rows = append(rows, []any{
				runID, x, y,
				g.Climate[x][y].String(),
				g.Humidity[x][y].String(),
				g.Biome[x][y].String(),
				g.SeaIce[x][y].Start,
				g.SeaIce[x][y].End,
			})
		}
	}
	return rows
}
