package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/pipeline"
	"github.com/ppiankov/placescore/internal/store"
	"github.com/ppiankov/placescore/internal/table"
)

var (
	scoreOut       string
	scoreReview    string
	scoreNoReview  bool
	scoreSignals   string
	scoreSheet     string
	scoreWorkers   int
	scoreAlgorithm string
	scoreDBDriver  string
	scoreDBDSN     string
	scoreTimeout   time.Duration
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <input>",
	Short: "Score every place record of a CSV or XLSX table",
	Long: `Score reads a table of place records and writes:
- the scored table: every input column plus Score and Status
- the review list: only rows whose status is Review or LikelyInvalid
- optionally, the per-row signal breakdown as JSON
- optionally, the run and its scores to SQLite or Postgres

Output formats follow the file extension (.csv or .xlsx).

Example:
  placescore score places.csv
  placescore score places.xlsx --sheet Stores --out scored.xlsx
  placescore score places.csv --signals signals.json --workers 8
  placescore score places.csv --db-driver sqlite --db-dsn runs.db`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreOut, "out", "o", "", "scored table path (default: <input>_scored.<ext>)")
	scoreCmd.Flags().StringVar(&scoreReview, "review", "", "review list path (default: <input>_review.<ext>)")
	scoreCmd.Flags().BoolVar(&scoreNoReview, "no-review", false, "do not write the review list")
	scoreCmd.Flags().StringVar(&scoreSignals, "signals", "", "write per-row signals as JSON to this path")
	scoreCmd.Flags().StringVar(&scoreSheet, "sheet", "", "XLSX sheet to read (default: first sheet)")
	scoreCmd.Flags().IntVar(&scoreWorkers, "workers", 0, "number of scoring workers (default: concurrency.workers)")
	scoreCmd.Flags().StringVar(&scoreAlgorithm, "algorithm", "", "address similarity: ratio, jarowinkler, levenshtein (default: fuzzy.algorithm)")
	scoreCmd.Flags().StringVar(&scoreDBDriver, "db-driver", "", "persist the run: sqlite or postgres (default: store.driver)")
	scoreCmd.Flags().StringVar(&scoreDBDSN, "db-dsn", "", "database DSN or SQLite path (default: store.dsn)")
	scoreCmd.Flags().DurationVar(&scoreTimeout, "timeout", 30*time.Minute, "total timeout for scoring and writing outputs")
}

func runScore(cmd *cobra.Command, args []string) error {
	input := args[0]

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, scoreTimeout)
	defer cancel()

	runCfg := *cfg
	if scoreWorkers > 0 {
		runCfg.Concurrency.Workers = scoreWorkers
	}
	if scoreAlgorithm != "" {
		runCfg.Fuzzy.Algorithm = scoreAlgorithm
	}
	if scoreDBDriver != "" {
		runCfg.Store.Driver = scoreDBDriver
	}
	if scoreDBDSN != "" {
		runCfg.Store.DSN = scoreDBDSN
	}

	outPath := scoreOut
	if outPath == "" {
		outPath = siblingPath(input, "scored")
	}
	reviewPath := scoreReview
	if reviewPath == "" && !scoreNoReview {
		reviewPath = siblingPath(input, "review")
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input:      %s\n", input)
	fmt.Fprintf(stderr, "  Output:     %s\n", outPath)
	if reviewPath != "" {
		fmt.Fprintf(stderr, "  Review:     %s\n", reviewPath)
	}
	fmt.Fprintf(stderr, "  Workers:    %d\n", runCfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Similarity: %s (>= %.2f)\n", runCfg.Fuzzy.Algorithm, runCfg.Fuzzy.Threshold)
	fmt.Fprintf(stderr, "\n")

	// Reject unsupported outputs before doing any work
	for _, path := range []string{outPath, reviewPath} {
		if path == "" {
			continue
		}
		if _, err := table.FormatOf(path); err != nil {
			return err
		}
	}

	t, err := table.Read(input, scoreSheet)
	if err != nil {
		return eris.Wrapf(err, "read %s", input)
	}
	zap.L().Debug("loaded table", zap.String("path", input), zap.Int("rows", t.Len()), zap.Int("columns", len(t.Columns)))

	p, err := pipeline.NewPipeline(&runCfg)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, t)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer()
	var runID string

	// Outputs are independent; write them concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eris.Wrapf(renderer.RenderTable(result, outPath), "write %s", outPath)
	})
	if reviewPath != "" {
		g.Go(func() error {
			return eris.Wrapf(renderer.RenderReview(result, reviewPath), "write %s", reviewPath)
		})
	}
	if scoreSignals != "" {
		g.Go(func() error {
			return eris.Wrapf(renderer.RenderSignalsJSON(result, scoreSignals), "write %s", scoreSignals)
		})
	}
	if runCfg.Store.Driver != "" {
		g.Go(func() error {
			id, err := persistRun(gctx, runCfg.Store, input, p.Algorithm(), result.Records)
			runID = id
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	renderer.RenderSummary(stderr, result)
	fmt.Fprintf(stderr, "  Saved scored data to: %s\n", outPath)
	if reviewPath != "" {
		fmt.Fprintf(stderr, "  Saved review list to: %s (%d rows)\n", reviewPath, len(result.ReviewIndices()))
	}
	if scoreSignals != "" {
		fmt.Fprintf(stderr, "  Saved signals to:     %s\n", scoreSignals)
	}
	if runID != "" {
		fmt.Fprintf(stderr, "  Saved run:            %s (%s)\n", runID, runCfg.Store.Driver)
	}
	fmt.Fprintf(stderr, "\n")

	return nil
}

// persistRun writes the run to the configured database
func persistRun(ctx context.Context, sc model.StoreConfig, input, algorithm string, records []model.ScoredRecord) (string, error) {
	st, err := store.Open(ctx, sc)
	if err != nil {
		return "", err
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(ctx); err != nil {
		return "", err
	}

	id, err := st.SaveRun(ctx, &store.Run{InputPath: input, Algorithm: algorithm}, records)
	if err != nil {
		return "", err
	}

	zap.L().Info("saved scoring run", zap.String("run_id", id), zap.String("driver", sc.Driver), zap.Int("rows", len(records)))
	return id, nil
}

// siblingPath derives "<dir>/<stem>_<suffix><ext>" from an input path
func siblingPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_" + suffix + ext
}
