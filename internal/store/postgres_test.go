package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapforge/cartograph/internal/projection"
	"github.com/mapforge/cartograph/internal/taxonomy"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgres_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	run := testRun(t, 2)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), 2, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"run_cells"}, runCellColumns).
		WillReturnResult(int64(run.Grid.Width * run.Grid.Height))

	created, err := s.CreateRun(context.Background(), run)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateRun_NilGridSkipsCells(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	run := testRun(t, 2)
	run.Grid = nil

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), 2, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := s.CreateRun(context.Background(), run)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	run := testRun(t, 2)

	projJSON, err := json.Marshal(run.Projection)
	require.NoError(t, err)
	summaryJSON, err := json.Marshal(run.Summary)
	require.NoError(t, err)
	gridJSON, err := json.Marshal(run.Grid)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, resolution, projection, summary, grid, created_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "resolution", "projection", "summary", "grid", "created_at"},
		).AddRow("run-1", 2, projJSON, summaryJSON, gridJSON, now))

	got, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, taxonomy.TemperateForest, got.Summary.Biome)
	require.NotNil(t, got.Grid)
	assert.Equal(t, taxonomy.Tundra, got.Grid.Biome[0][0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, resolution, projection, summary, grid, created_at FROM runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRunNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	projJSON, err := json.Marshal(projection.NewConfig(0, 0))
	require.NoError(t, err)
	summaryJSON, err := json.Marshal(testRun(t, 2).Summary)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, resolution, projection, summary, created_at FROM runs`).
		WithArgs(8, 100).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "resolution", "projection", "summary", "created_at"},
		).AddRow("run-1", 8, projJSON, summaryJSON, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Resolution: 8})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 8, runs[0].VerticalResolution)
	assert.Nil(t, runs[0].Grid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteRun(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrRunNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCellRows(t *testing.T) {
	run := testRun(t, 2)
	rows := cellRows("run-1", run.Grid)

	require.Len(t, rows, run.Grid.Width*run.Grid.Height)
	first := rows[0]
	assert.Equal(t, "run-1", first[0])
	assert.Equal(t, 0, first[1])
	assert.Equal(t, 0, first[2])
	assert.Equal(t, "tundra", first[5])
}
