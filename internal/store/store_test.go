package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/placescore/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testRecords() []model.ScoredRecord {
	return []model.ScoredRecord{
		{
			Index:  0,
			Record: model.PlaceRecord{Name: "Luigi's"},
			Score: model.Score{Value: 91, Raw: 91, Status: model.StatusValid, Signals: []model.Signal{
				{Type: model.SignalCompleteness, Severity: model.SeverityInfo, Contribution: 47},
			}},
		},
		{
			Index:  1,
			Record: model.PlaceRecord{Name: "McDonald's"},
			Score:  model.Score{Value: 16, Raw: 16, Status: model.StatusReview, Override: true},
		},
		{
			Index: 2,
			Score: model.Score{Value: 0, Raw: -35, Status: model.StatusLikelyInvalid},
		},
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), model.StoreConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)

	_, err = Open(context.Background(), model.StoreConfig{})
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), model.StoreConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	id, err := st.SaveRun(ctx, &Run{InputPath: "in.csv", Algorithm: "ratio"}, testRecords())
	require.NoError(t, err)

	run, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Counts.Total)
}

func TestSQLite_SaveRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := &Run{InputPath: "places.csv", Algorithm: "ratio"}
	id, err := st.SaveRun(ctx, run, testRecords())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, run.ID)

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "places.csv", got.InputPath)
	assert.Equal(t, "ratio", got.Algorithm)
	assert.Equal(t, model.StatusCounts{Total: 3, Valid: 1, Review: 1, LikelyInvalid: 1}, got.Counts)

	var count, overrides int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(override) FROM scored_places WHERE run_id = ?`, id).Scan(&count, &overrides))
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, overrides)

	var status, signals string
	var score float64
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT status, score, signals FROM scored_places WHERE run_id = ? AND row_index = 0`, id).Scan(&status, &score, &signals))
	assert.Equal(t, "Valid", status)
	assert.Equal(t, 91.0, score)
	assert.Contains(t, signals, `"completeness"`)
}

func TestSQLite_SaveRun_SeparateRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.SaveRun(ctx, &Run{InputPath: "a.csv"}, testRecords())
	require.NoError(t, err)
	second, err := st.SaveRun(ctx, &Run{InputPath: "a.csv"}, testRecords())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSQLite_SaveRun_DuplicateRollsBack(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	records := testRecords()
	records[2].Index = 1

	run := &Run{InputPath: "dup.csv"}
	_, err := st.SaveRun(ctx, run, records)
	require.Error(t, err)

	_, err = st.GetRun(ctx, run.ID)
	assert.Error(t, err, "run row must not survive a failed transaction")
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS scoring_runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	run := &Run{ID: "run-1", InputPath: "places.xlsx", Algorithm: "jarowinkler"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO scoring_runs`).
		WithArgs("run-1", "places.xlsx", "jarowinkler", 3, 1, 1, 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"scored_places"}, placeColumns).WillReturnResult(3)
	mock.ExpectCommit()

	id, err := s.SaveRun(context.Background(), run, testRecords())
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveRun_RollsBackOnCopyError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO scoring_runs`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"scored_places"}, placeColumns).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := s.SaveRun(context.Background(), &Run{ID: "run-2"}, testRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy scored places")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, input_path, algorithm, total, valid, review, likely_invalid, created_at FROM scoring_runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
