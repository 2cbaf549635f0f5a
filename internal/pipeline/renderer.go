package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/table"
)

const rule = "═══════════════════════════════════════════════════════════"

// Renderer writes scoring results to files and terminals
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderTable writes the scored table; the format follows the extension
func (r *Renderer) RenderTable(result *Result, path string) error {
	return table.Write(path, result.Scored)
}

// RenderReview writes only the rows whose status needs a manual look
func (r *Renderer) RenderReview(result *Result, path string) error {
	return table.Write(path, result.Review())
}

// RenderSignalsJSON writes every scored record with its block signals
func (r *Renderer) RenderSignalsJSON(result *Result, path string) error {
	data, err := json.MarshalIndent(result.Records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "renderer: marshal signals")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "renderer: write signals")
	}
	return nil
}

// RenderExplanation prints the breakdown of one scored record as YAML.
// Field names follow the JSON tags of the model.
func (r *Renderer) RenderExplanation(w io.Writer, rec model.ScoredRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "renderer: marshal explanation")
	}

	var view map[string]interface{}
	if err := json.Unmarshal(data, &view); err != nil {
		return eris.Wrap(err, "renderer: decode explanation")
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return eris.Wrap(err, "renderer: encode explanation")
	}
	return eris.Wrap(enc.Close(), "renderer: flush explanation")
}

// RenderSummary prints the status distribution of a run
func (r *Renderer) RenderSummary(w io.Writer, result *Result) {
	c := result.Counts

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "  Scoring Complete\n")
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Total:          %d\n", c.Total)
	fmt.Fprintf(w, "  Valid:          %d (%.1f%%)\n", c.Valid, percent(c.Valid, c.Total))
	fmt.Fprintf(w, "  Review:         %d (%.1f%%)\n", c.Review, percent(c.Review, c.Total))
	fmt.Fprintf(w, "  LikelyInvalid:  %d (%.1f%%)\n", c.LikelyInvalid, percent(c.LikelyInvalid, c.Total))
	if overrides := countOverrides(result.Records); overrides > 0 {
		fmt.Fprintf(w, "  Chain rescues:  %d\n", overrides)
	}
	fmt.Fprintf(w, "  Duration:       %v\n", result.Duration.Round(1e6))
	fmt.Fprintf(w, "\n")
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

func countOverrides(records []model.ScoredRecord) int {
	n := 0
	for _, rec := range records {
		if rec.Score.Override {
			n++
		}
	}
	return n
}
