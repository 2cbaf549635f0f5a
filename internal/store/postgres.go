package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ppiankov/placescore/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS scoring_runs (
	id             TEXT PRIMARY KEY,
	input_path     TEXT NOT NULL,
	algorithm      TEXT NOT NULL,
	total          INTEGER NOT NULL,
	valid          INTEGER NOT NULL,
	review         INTEGER NOT NULL,
	likely_invalid INTEGER NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scored_places (
	run_id    TEXT NOT NULL REFERENCES scoring_runs(id),
	row_index INTEGER NOT NULL,
	name      TEXT NOT NULL,
	score     DOUBLE PRECISION NOT NULL,
	raw_score DOUBLE PRECISION NOT NULL,
	status    TEXT NOT NULL,
	override  BOOLEAN NOT NULL DEFAULT false,
	signals   JSONB,
	PRIMARY KEY (run_id, row_index)
);

CREATE INDEX IF NOT EXISTS idx_scored_places_status ON scored_places(run_id, status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *Run, records []model.ScoredRecord) (id string, err error) {
	prepareRun(run, records)

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		values, err := placeValues(run.ID, rec)
		if err != nil {
			return "", err
		}
		rows = append(rows, values)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "postgres: begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO scoring_runs (id, input_path, algorithm, total, valid, review, likely_invalid, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.InputPath, run.Algorithm,
		run.Counts.Total, run.Counts.Valid, run.Counts.Review, run.Counts.LikelyInvalid,
		run.CreatedAt,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert run")
	}

	if len(rows) > 0 {
		n, copyErr := tx.CopyFrom(ctx, pgx.Identifier{"scored_places"}, placeColumns, pgx.CopyFromRows(rows))
		if copyErr != nil {
			err = eris.Wrap(copyErr, "postgres: copy scored places")
			return "", err
		}
		if n != int64(len(rows)) {
			err = eris.Errorf("postgres: copied %d of %d scored places", n, len(rows))
			return "", err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return "", eris.Wrap(err, "postgres: commit")
	}
	return run.ID, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, input_path, algorithm, total, valid, review, likely_invalid, created_at FROM scoring_runs WHERE id = $1`,
		runID,
	)

	var run Run
	err := row.Scan(&run.ID, &run.InputPath, &run.Algorithm,
		&run.Counts.Total, &run.Counts.Valid, &run.Counts.Review, &run.Counts.LikelyInvalid,
		&run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return &run, nil
}
