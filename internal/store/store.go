// Package store persists scoring runs to a relational database.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/ppiankov/placescore/internal/model"
)

// Store defines the persistence interface for scoring runs.
type Store interface {
	// SaveRun writes the run and all of its scored records in one
	// transaction and returns the run id.
	SaveRun(ctx context.Context, run *Run, records []model.ScoredRecord) (string, error)
	GetRun(ctx context.Context, runID string) (*Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Run describes one invocation of the scorer over an input table
type Run struct {
	ID        string             `json:"id"`
	InputPath string             `json:"input_path"`
	Algorithm string             `json:"algorithm"`
	Counts    model.StatusCounts `json:"counts"`
	CreatedAt time.Time          `json:"created_at"`
}

// Open connects to the configured driver: "sqlite" or "postgres"
func Open(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "sqlite3":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql", "pgx":
		return NewPostgres(ctx, cfg.DSN)
	case "":
		return nil, eris.New("store: no driver configured")
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// placeColumns are the scored_places columns in insert order
var placeColumns = []string{"run_id", "row_index", "name", "score", "raw_score", "status", "override", "signals"}

// prepareRun fills the id, timestamp and counts of a run
func prepareRun(run *Run, records []model.ScoredRecord) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Counts = model.CountStatuses(records)
}

// placeValues flattens a scored record into placeColumns order
func placeValues(runID string, rec model.ScoredRecord) ([]any, error) {
	signals, err := json.Marshal(rec.Score.Signals)
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal signals of row %d", rec.Index)
	}
	return []any{
		runID,
		rec.Index,
		rec.Record.Name,
		rec.Score.Value,
		rec.Score.Raw,
		string(rec.Score.Status),
		rec.Score.Override,
		string(signals),
	}, nil
}
