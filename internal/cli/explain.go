package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/pipeline"
	"github.com/ppiankov/placescore/internal/table"
)

var (
	explainRow    int
	explainRecord string
	explainSheet  string
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain [input]",
	Short: "Show the full score breakdown of a single record",
	Long: `Explain scores one record and prints every block signal, the derived
features and the normalized record as YAML.

The record is either row N (0-based, header excluded) of a table, or a JSON
object given with --record ("-" reads it from stdin).

Example:
  placescore explain places.csv --row 42
  placescore explain --record '{"Name":"McDonald''s","HasCoordinates":1,"HasCity":1}'
  echo '{"Name":"Cafe"}' | placescore explain --record -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().IntVar(&explainRow, "row", 0, "row of the input table to explain (0-based)")
	explainCmd.Flags().StringVar(&explainRecord, "record", "", "JSON object to score instead of a table row (- for stdin)")
	explainCmd.Flags().StringVar(&explainSheet, "sheet", "", "XLSX sheet to read (default: first sheet)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	var scored model.ScoredRecord
	switch {
	case explainRecord != "":
		row, err := readRecordJSON(explainRecord, cmd.InOrStdin())
		if err != nil {
			return err
		}
		scored = p.ScoreRow(0, row)

	case len(args) == 1:
		t, err := table.Read(args[0], explainSheet)
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		if explainRow < 0 || explainRow >= t.Len() {
			return eris.Errorf("row %d out of range (table has %d rows)", explainRow, t.Len())
		}
		scored = p.ScoreRow(explainRow, t.Row(explainRow))

	default:
		return eris.New("explain needs an input table or --record")
	}

	return pipeline.NewRenderer().RenderExplanation(cmd.OutOrStdout(), scored)
}

// readRecordJSON decodes a JSON object into a row. Numbers keep their
// float64 form; the normalizer coerces them.
func readRecordJSON(value string, stdin io.Reader) (model.Row, error) {
	data := []byte(value)
	if value == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, eris.Wrap(err, "read record from stdin")
		}
		data = b
	}

	var row model.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, eris.Wrap(err, "decode record JSON")
	}
	if row == nil {
		return nil, eris.New("record must be a JSON object")
	}
	return row, nil
}
