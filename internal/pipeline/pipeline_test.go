package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/table"
)

var testColumns = []string{
	"Name", "Amenity", "Cuisine", "City", "Street", "HouseNumber", "Postcode",
	"Geo_CityGeo", "Geo_StreetGeo", "Geo_HouseNumberGeo", "Geo_PostcodeGeo",
	"HasCity", "HasStreet", "HasHouseNumber", "HasPostcode", "HasWebsite", "HasPhone",
	"HasOpeningHours", "HasCuisine", "HasCoordinates", "DaysSinceUpdate", "RecentlyUpdated", "NameLength",
}

func testTable() *table.Table {
	return &table.Table{
		Columns: testColumns,
		Cells: [][]string{
			// Complete, consistent record
			{"Luigi's Pizzeria", "restaurant", "pizza;italian", "Akron", "Main Street", "12", "44308",
				"Akron", "Main Street", "12", "44308",
				"1", "1", "1", "1", "1", "1", "1", "1", "1", "10", "1", "16"},
			// Nothing at all
			{"", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
			// Chain with coordinates and a city, rescued to Review
			{"McDonald's", "", "", "", "", "", "", "", "", "", "", "1", "0", "0", "0", "0", "0", "0", "0", "1", "N/A", "0", "10"},
			// Short row: trailing columns absent
			{"Joe"},
		},
	}
}

func newTestPipeline(t *testing.T, workers, chunk int) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = workers
	cfg.Concurrency.ChunkSize = chunk
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	return p
}

func TestNewPipeline_UnknownAlgorithm(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Fuzzy.Algorithm = "soundex"
	_, err := NewPipeline(cfg)
	assert.Error(t, err)
}

func TestPipeline_Run(t *testing.T) {
	p := newTestPipeline(t, 1, 256)

	result, err := p.Run(context.Background(), testTable())
	require.NoError(t, err)
	require.Len(t, result.Records, 4)

	full := result.Records[0]
	assert.Equal(t, 91.0, full.Score.Value)
	assert.Equal(t, model.StatusValid, full.Score.Status)

	empty := result.Records[1]
	assert.Equal(t, 0.0, empty.Score.Value)
	assert.Equal(t, -35.0, empty.Score.Raw)
	assert.Equal(t, model.StatusLikelyInvalid, empty.Score.Status)

	chain := result.Records[2]
	assert.Equal(t, model.UnknownDaysSinceUpdate, chain.Record.DaysSinceUpdate)
	assert.Equal(t, 16.0, chain.Score.Value)
	assert.Equal(t, model.StatusReview, chain.Score.Status)
	assert.True(t, chain.Score.Override)

	assert.Equal(t, model.StatusCounts{Total: 4, Valid: 1, Review: 1, LikelyInvalid: 2}, result.Counts)

	// Scored table keeps every input column and appends the outputs
	assert.Equal(t, append(append([]string{}, testColumns...), "Score", "Status"), result.Scored.Columns)
	row := result.Scored.Row(0)
	assert.Equal(t, "91", row["Score"])
	assert.Equal(t, "Valid", row["Status"])
	assert.Equal(t, "Luigi's Pizzeria", row["Name"])
}

func TestPipeline_ReviewSubset(t *testing.T) {
	p := newTestPipeline(t, 1, 256)

	result, err := p.Run(context.Background(), testTable())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, result.ReviewIndices())

	review := result.Review()
	assert.Equal(t, result.Scored.Columns, review.Columns)
	require.Equal(t, 3, review.Len())
	for i, idx := range result.ReviewIndices() {
		assert.Equal(t, result.Scored.Cells[idx], review.Cells[i])
	}
}

func TestPipeline_IdempotentRescoring(t *testing.T) {
	p := newTestPipeline(t, 1, 256)

	first, err := p.Run(context.Background(), testTable())
	require.NoError(t, err)

	second, err := p.Run(context.Background(), first.Scored)
	require.NoError(t, err)

	assert.Equal(t, first.Scored.Columns, second.Scored.Columns)
	assert.Equal(t, first.Scored.Cells, second.Scored.Cells)
	for i := range first.Records {
		assert.Equal(t, first.Records[i].Score, second.Records[i].Score)
	}
}

func TestPipeline_ConcurrentRunMatchesSerial(t *testing.T) {
	big := &table.Table{Columns: testColumns}
	for i := 0; i < 500; i++ {
		src := testTable().Cells[i%4]
		cells := append([]string(nil), src...)
		cells[0] = fmt.Sprintf("%s %d", cells[0], i)
		big.Cells = append(big.Cells, cells)
	}

	serial, err := newTestPipeline(t, 1, 256).Run(context.Background(), big)
	require.NoError(t, err)

	parallel, err := newTestPipeline(t, 8, 7).Run(context.Background(), big)
	require.NoError(t, err)

	assert.Equal(t, serial.Scored.Cells, parallel.Scored.Cells)
	assert.Equal(t, serial.Counts, parallel.Counts)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(t, 1, 256).Run(ctx, testTable())
	assert.Error(t, err)
}

func TestPipeline_ScoreRow_HeterogeneousValues(t *testing.T) {
	p := newTestPipeline(t, 1, 256)

	rec := p.ScoreRow(7, model.Row{
		"name":            "Blue Plate",
		"amenity":         "restaurant",
		"has_coordinates": true,
		"has_city":        1.0,
		"HasStreet":       "true",
		"HasHouseNumber":  int64(1),
		"HasPostcode":     "1.0",
		"HasWebsite":      1,
		"HasPhone":        "True",
		"RecentlyUpdated": "1",
		"NameLength":      "10",
		"DaysSinceUpdate": nil,
	})

	assert.Equal(t, 7, rec.Index)
	assert.Equal(t, 60.0, rec.Score.Value)
	assert.Equal(t, model.StatusValid, rec.Score.Status)
}

func TestPipeline_AlternativeMatcher(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Fuzzy.Algorithm = "jarowinkler"
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	assert.Equal(t, "jarowinkler", p.Algorithm())

	rec := model.PlaceRecord{City: "main st", CityGeo: "main street", HasCoordinates: true}
	f, _ := p.ScoreRecord(rec)
	assert.True(t, f.Address.CityFuzzy)
}

func TestRenderer_Outputs(t *testing.T) {
	p := newTestPipeline(t, 1, 256)
	result, err := p.Run(context.Background(), testTable())
	require.NoError(t, err)

	dir := t.TempDir()
	r := NewRenderer()

	outPath := filepath.Join(dir, "scored.xlsx")
	require.NoError(t, r.RenderTable(result, outPath))
	scored, err := table.Read(outPath, "")
	require.NoError(t, err)
	assert.Equal(t, result.Scored.Columns, scored.Columns)
	assert.Equal(t, "91", scored.Row(0)["Score"])

	reviewPath := filepath.Join(dir, "review.csv")
	require.NoError(t, r.RenderReview(result, reviewPath))
	review, err := table.Read(reviewPath, "")
	require.NoError(t, err)
	assert.Equal(t, 3, review.Len())

	signalsPath := filepath.Join(dir, "signals.json")
	require.NoError(t, r.RenderSignalsJSON(result, signalsPath))
	data, err := os.ReadFile(signalsPath)
	require.NoError(t, err)

	var decoded []model.ScoredRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 4)
	assert.Equal(t, 2, decoded[2].Index)
	assert.Equal(t, model.SignalChainOverride, decoded[2].Score.Signals[5].Type)
}

func TestRenderer_ExplanationAndSummary(t *testing.T) {
	p := newTestPipeline(t, 1, 256)
	result, err := p.Run(context.Background(), testTable())
	require.NoError(t, err)

	r := NewRenderer()

	var explain bytes.Buffer
	require.NoError(t, r.RenderExplanation(&explain, result.Records[2]))
	assert.Contains(t, explain.String(), "chain_override")
	assert.Contains(t, explain.String(), "status: Review")

	var summary bytes.Buffer
	r.RenderSummary(&summary, result)
	out := summary.String()
	assert.Contains(t, out, "Total:          4")
	assert.Contains(t, out, "Valid:          1 (25.0%)")
	assert.Contains(t, out, "LikelyInvalid:  2 (50.0%)")
	assert.Contains(t, out, "Chain rescues:  1")
}
