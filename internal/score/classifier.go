package score

import (
	"fmt"

	"github.com/ppiankov/placescore/internal/model"
)

// Classifier maps scores to statuses
type Classifier struct {
	thresholds model.ThresholdConfig
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(thresholds model.ThresholdConfig) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Status maps a clamped score to its status by threshold alone
func (c *Classifier) Status(score float64) model.Status {
	switch {
	case score >= c.thresholds.Valid:
		return model.StatusValid
	case score >= c.thresholds.Review:
		return model.StatusReview
	default:
		return model.StatusLikelyInvalid
	}
}

// Classify sets the status of a calculated score, then applies the chain
// override: a recognized brand with coordinates and a city or street is
// moved from LikelyInvalid up to Review. The override never yields Valid.
func (c *Classifier) Classify(rec model.PlaceRecord, f model.Features, sc model.Score) model.Score {
	sc.Status = c.Status(sc.Value)

	if c.thresholds.ChainOverride && chainEligible(rec, f) && sc.Status == model.StatusLikelyInvalid {
		sc.Status = model.StatusReview
		sc.Override = true
		sc.Signals = append(sc.Signals, model.Signal{
			Type:        model.SignalChainOverride,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Known brand %q upgraded from %s to %s", f.ChainBrand, model.StatusLikelyInvalid, model.StatusReview),
			Data: map[string]interface{}{
				"brand": f.ChainBrand,
				"score": sc.Value,
			},
		})
	}

	return sc
}

func chainEligible(rec model.PlaceRecord, f model.Features) bool {
	return f.Chain && rec.HasCoordinates && (rec.HasCity || rec.HasStreet)
}
