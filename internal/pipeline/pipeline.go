package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/placescore/internal/cache"
	"github.com/ppiankov/placescore/internal/feature"
	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/normalize"
	"github.com/ppiankov/placescore/internal/score"
	"github.com/ppiankov/placescore/internal/similarity"
	"github.com/ppiankov/placescore/internal/table"
	"github.com/ppiankov/placescore/internal/worker"
)

// Pipeline orchestrates normalization, feature derivation, scoring and
// classification of place records
type Pipeline struct {
	normalizer *normalize.Normalizer
	deriver    *feature.Deriver
	scorer     *score.Scorer
	classifier *score.Classifier
	matcher    similarity.Matcher
	cache      cache.Cache
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	var ratioCache cache.Cache
	if cfg.Fuzzy.Cache {
		ratioCache = cache.NewMemoryCache(0, 0)
	}

	matcher, err := similarity.New(cfg.Fuzzy.Algorithm, ratioCache)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build matcher")
	}

	return &Pipeline{
		normalizer: normalize.NewNormalizer(cfg.Normalize),
		deriver:    feature.NewDeriver(cfg.Features, cfg.Fuzzy, matcher),
		scorer:     score.NewScorer(cfg.Scoring),
		classifier: score.NewClassifier(cfg.Thresholds),
		matcher:    matcher,
		cache:      ratioCache,
		config:     cfg,
	}, nil
}

// Algorithm returns the name of the fuzzy matcher in use
func (p *Pipeline) Algorithm() string {
	return p.matcher.Name()
}

// ScoreRecord derives features from a normalized record, scores and classifies it
func (p *Pipeline) ScoreRecord(rec model.PlaceRecord) (model.Features, model.Score) {
	f := p.deriver.Derive(rec)
	sc := p.scorer.Calculate(rec, f)
	return f, p.classifier.Classify(rec, f, sc)
}

// ScoreRow runs one raw row through the whole pipeline. It never fails:
// malformed cells resolve to defaults during normalization.
func (p *Pipeline) ScoreRow(index int, row model.Row) model.ScoredRecord {
	rec := p.normalizer.Normalize(row)
	f, sc := p.ScoreRecord(rec)
	return model.ScoredRecord{
		Index:    index,
		Row:      row,
		Record:   rec,
		Features: f,
		Score:    sc,
	}
}

// Result contains the outcome of scoring a table
type Result struct {
	Scored   *table.Table         // Input table with Score and Status set
	Records  []model.ScoredRecord // Aligned 1:1 with the input rows
	Counts   model.StatusCounts
	Duration time.Duration
}

// ReviewIndices returns the positions of rows that need a manual look
func (r *Result) ReviewIndices() []int {
	var indices []int
	for i, rec := range r.Records {
		if rec.Score.Status.NeedsReview() {
			indices = append(indices, i)
		}
	}
	return indices
}

// Review returns the scored rows whose status is Review or LikelyInvalid
func (r *Result) Review() *table.Table {
	return r.Scored.Subset(r.ReviewIndices())
}

// Run scores every row of the table using the configured worker pool
func (p *Pipeline) Run(ctx context.Context, t *table.Table) (*Result, error) {
	start := time.Now()

	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers, p.config.Concurrency.ChunkSize)
	records, err := processor.ProcessRows(ctx, t.Rows())
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: score table")
	}

	scored, err := t.WithScores(records)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: augment table")
	}

	result := &Result{
		Scored:   scored,
		Records:  records,
		Counts:   model.CountStatuses(records),
		Duration: time.Since(start),
	}

	fields := []zap.Field{
		zap.Int("rows", result.Counts.Total),
		zap.Int("valid", result.Counts.Valid),
		zap.Int("review", result.Counts.Review),
		zap.Int("likely_invalid", result.Counts.LikelyInvalid),
		zap.String("algorithm", p.Algorithm()),
		zap.Duration("duration", result.Duration),
	}
	if p.cache != nil {
		fields = append(fields, zap.Int("cached_ratios", p.cache.Len()))
	}
	zap.L().Info("pipeline: scored table", fields...)

	return result, nil
}
