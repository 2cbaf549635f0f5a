package worker

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/ppiankov/placescore/internal/model"
)

// RowScorer scores one raw table row
type RowScorer interface {
	ScoreRow(index int, row model.Row) model.ScoredRecord
}

// ChunkJob scores a contiguous run of rows starting at Start
type ChunkJob struct {
	Start  int
	Rows   []model.Row
	Scorer RowScorer
}

// Execute scores every row of the chunk. Cancellation is checked between rows.
func (j *ChunkJob) Execute(ctx context.Context) Result {
	records := make([]model.ScoredRecord, 0, len(j.Rows))
	for i, row := range j.Rows {
		if err := ctx.Err(); err != nil {
			return &ChunkResult{Start: j.Start, Error: err}
		}
		records = append(records, j.Scorer.ScoreRow(j.Start+i, row))
	}
	return &ChunkResult{Start: j.Start, Records: records}
}

// ChunkResult holds the scored records of one chunk
type ChunkResult struct {
	Start   int
	Records []model.ScoredRecord
	Error   error
}

// GetError returns the error from the chunk result
func (r *ChunkResult) GetError() error {
	return r.Error
}

// BatchProcessor scores rows concurrently in chunks and returns them in
// input order
type BatchProcessor struct {
	scorer      RowScorer
	concurrency int
	chunkSize   int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(scorer RowScorer, concurrency, chunkSize int) *BatchProcessor {
	if chunkSize <= 0 {
		chunkSize = 256
	}
	return &BatchProcessor{
		scorer:      scorer,
		concurrency: concurrency,
		chunkSize:   chunkSize,
	}
}

// ProcessRows scores all rows. Output position i always holds the record of
// input row i regardless of which worker scored it.
func (b *BatchProcessor) ProcessRows(ctx context.Context, rows []model.Row) ([]model.ScoredRecord, error) {
	if len(rows) == 0 {
		return []model.ScoredRecord{}, nil
	}

	// Small inputs are not worth the goroutines
	if b.concurrency <= 1 || len(rows) <= b.chunkSize {
		res := (&ChunkJob{Rows: rows, Scorer: b.scorer}).Execute(ctx).(*ChunkResult)
		if res.Error != nil {
			return nil, eris.Wrap(res.Error, "score rows")
		}
		return res.Records, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for start := 0; start < len(rows); start += b.chunkSize {
			end := start + b.chunkSize
			if end > len(rows) {
				end = len(rows)
			}
			if !pool.Submit(&ChunkJob{Start: start, Rows: rows[start:end], Scorer: b.scorer}) {
				return
			}
		}
	}()

	var chunks []*ChunkResult
	var firstErr error
	for result := range pool.Results() {
		chunk := result.(*ChunkResult)
		if chunk.Error != nil && firstErr == nil {
			firstErr = chunk.Error
		}
		chunks = append(chunks, chunk)
	}

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		return nil, eris.Wrap(firstErr, "score rows")
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Start < chunks[j].Start })

	records := make([]model.ScoredRecord, 0, len(rows))
	for _, chunk := range chunks {
		records = append(records, chunk.Records...)
	}
	if len(records) != len(rows) {
		return nil, eris.Errorf("scored %d of %d rows", len(records), len(rows))
	}

	return records, nil
}
