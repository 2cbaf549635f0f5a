package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/placescore/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: empty dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Each connection to :memory: is a separate database
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scoring_runs (
	id             TEXT PRIMARY KEY,
	input_path     TEXT NOT NULL,
	algorithm      TEXT NOT NULL,
	total          INTEGER NOT NULL,
	valid          INTEGER NOT NULL,
	review         INTEGER NOT NULL,
	likely_invalid INTEGER NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scored_places (
	run_id    TEXT NOT NULL REFERENCES scoring_runs(id),
	row_index INTEGER NOT NULL,
	name      TEXT NOT NULL,
	score     REAL NOT NULL,
	raw_score REAL NOT NULL,
	status    TEXT NOT NULL,
	override  INTEGER NOT NULL DEFAULT 0,
	signals   TEXT,
	PRIMARY KEY (run_id, row_index)
);

CREATE INDEX IF NOT EXISTS idx_scored_places_status ON scored_places(run_id, status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, records []model.ScoredRecord) (id string, err error) {
	prepareRun(run, records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scoring_runs (id, input_path, algorithm, total, valid, review, likely_invalid, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.Algorithm,
		run.Counts.Total, run.Counts.Valid, run.Counts.Review, run.Counts.LikelyInvalid,
		run.CreatedAt,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scored_places (`+strings.Join(placeColumns, ", ")+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: prepare place insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		values, err := placeValues(run.ID, rec)
		if err != nil {
			return "", err
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return "", eris.Wrapf(err, "sqlite: insert place %d", rec.Index)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit")
	}
	return run.ID, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_path, algorithm, total, valid, review, likely_invalid, created_at FROM scoring_runs WHERE id = ?`,
		runID,
	)

	var run Run
	err := row.Scan(&run.ID, &run.InputPath, &run.Algorithm,
		&run.Counts.Total, &run.Counts.Valid, &run.Counts.Review, &run.Counts.LikelyInvalid,
		&run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return &run, nil
}
