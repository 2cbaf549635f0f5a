package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/placescore/internal/model"
)

// Scorer calculates the confidence score of a place record
type Scorer struct {
	weights model.ScoringConfig
}

// NewScorer creates a new scorer with the given block weights
func NewScorer(weights model.ScoringConfig) *Scorer {
	return &Scorer{weights: weights}
}

// Calculate sums the five scoring blocks and clamps the result. Status is
// left empty; the Classifier assigns it.
func (s *Scorer) Calculate(rec model.PlaceRecord, f model.Features) model.Score {
	// 1. Completeness (max 47)
	completeness, completenessSignal := s.calculateCompleteness(rec)

	// 2. Freshness (-4 to 10)
	freshness, freshnessSignal := s.calculateFreshness(rec)

	// 3. Address consistency (-5 to 23)
	address, addressSignal := s.calculateAddress(f.Address)

	// 4. Name and type quality (max 15)
	nameQuality, nameSignal := s.calculateNameQuality(rec, f)

	// 5. Penalties (min -31)
	penalties, penaltySignal := s.calculatePenalties(rec, f)

	raw := completeness + freshness + address + nameQuality + penalties

	return model.Score{
		Value: s.clamp(raw),
		Raw:   raw,
		Signals: []model.Signal{
			completenessSignal,
			freshnessSignal,
			addressSignal,
			nameSignal,
			penaltySignal,
		},
	}
}

// clamp pins the score into [MinScore, MaxScore]; it never rescales
func (s *Scorer) clamp(v float64) float64 {
	return math.Max(s.weights.MinScore, math.Min(s.weights.MaxScore, v))
}

// calculateCompleteness rewards the presence of core attributes
func (s *Scorer) calculateCompleteness(rec model.PlaceRecord) (float64, model.Signal) {
	w := s.weights.Completeness

	present := map[string]interface{}{}
	score := 0.0
	add := func(name string, has bool, weight float64) {
		if has {
			score += weight
		}
		present[name] = has
	}

	add("coordinates", rec.HasCoordinates, w.Coordinates)
	add("city", rec.HasCity, w.City)
	add("street", rec.HasStreet, w.Street)
	add("house_number", rec.HasHouseNumber, w.HouseNumber)
	add("postcode", rec.HasPostcode, w.Postcode)
	add("cuisine", rec.HasCuisine, w.Cuisine)
	add("website", rec.HasWebsite, w.Website)
	add("phone", rec.HasPhone, w.Phone)
	add("opening_hours", rec.HasOpeningHours, w.OpeningHours)

	maxScore := w.Coordinates + w.City + w.Street + w.HouseNumber + w.Postcode +
		w.Cuisine + w.Website + w.Phone + w.OpeningHours

	severity := model.SeverityInfo
	if maxScore > 0 && score < maxScore/2 {
		severity = model.SeverityWarning
	}
	if !rec.HasCoordinates {
		severity = model.SeverityCritical
	}

	present["score"] = score
	present["max"] = maxScore

	return score, model.Signal{
		Type:         model.SignalCompleteness,
		Severity:     severity,
		Description:  fmt.Sprintf("Completeness: %.0f/%.0f", score, maxScore),
		Contribution: score,
		Data:         present,
	}
}

// calculateFreshness rewards recent edits. The very-old penalty is independent
// of the positive branches.
func (s *Scorer) calculateFreshness(rec model.PlaceRecord) (float64, model.Signal) {
	w := s.weights.Freshness
	days := rec.DaysSinceUpdate

	score := 0.0
	branch := "stale"
	switch {
	case rec.RecentlyUpdated:
		score += w.Recent
		branch = "recent"
	case days <= w.YearDays:
		score += w.WithinYear
		branch = "within_year"
	case days <= w.AgedDays:
		score += w.WithinAged
		branch = "within_aged"
	}

	veryOld := days > w.VeryOldDays
	if veryOld {
		score += w.VeryOld
	}

	severity := model.SeverityInfo
	description := fmt.Sprintf("Last updated %d days ago", days)
	switch {
	case days == model.UnknownDaysSinceUpdate:
		severity = model.SeverityWarning
		description = "Update date unknown (assuming stale)"
	case veryOld:
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:         model.SignalFreshness,
		Severity:     severity,
		Description:  description,
		Contribution: score,
		Data: map[string]interface{}{
			"days_since_update": days,
			"recently_updated":  rec.RecentlyUpdated,
			"branch":            branch,
			"very_old":          veryOld,
			"score":             score,
		},
	}
}

// calculateAddress rewards agreement between the tagged and geocoded address
func (s *Scorer) calculateAddress(a model.AddressAgreement) (float64, model.Signal) {
	w := s.weights.Address

	score := 0.0
	switch {
	case a.CityExact:
		score += w.CityExact
	case a.CityFuzzy:
		score += w.CityFuzzy
	}
	switch {
	case a.StreetExact:
		score += w.StreetExact
	case a.StreetFuzzy:
		score += w.StreetFuzzy
	}
	if a.PostcodeExact {
		score += w.PostcodeExact
	}
	if a.HouseExact {
		score += w.HouseExact
	}
	if a.AllAligned {
		score += w.AllAligned
	}
	if a.NoMatches {
		score += w.NoMatches
	}

	severity := model.SeverityInfo
	description := "Tagged and geocoded address agree"
	switch {
	case !a.GeoPresent:
		description = "No geocoded address to compare against"
	case a.NoMatches:
		severity = model.SeverityCritical
		description = "Tagged and geocoded address disagree on every field"
	case !a.AllAligned:
		severity = model.SeverityWarning
		description = "Tagged and geocoded address partially agree"
	}

	return score, model.Signal{
		Type:         model.SignalAddress,
		Severity:     severity,
		Description:  description,
		Contribution: score,
		Data: map[string]interface{}{
			"city_exact":     a.CityExact,
			"city_fuzzy":     a.CityFuzzy,
			"city_ratio":     a.CityRatio,
			"street_exact":   a.StreetExact,
			"street_fuzzy":   a.StreetFuzzy,
			"street_ratio":   a.StreetRatio,
			"postcode_exact": a.PostcodeExact,
			"house_exact":    a.HouseExact,
			"all_aligned":    a.AllAligned,
			"no_matches":     a.NoMatches,
			"geo_present":    a.GeoPresent,
			"score":          score,
		},
	}
}

// calculateNameQuality rewards plausible names, food types and cuisine tags
func (s *Scorer) calculateNameQuality(rec model.PlaceRecord, f model.Features) (float64, model.Signal) {
	w := s.weights.NameQuality

	score := 0.0
	plausibleLength := rec.NameLength >= w.NameLengthMin && rec.NameLength <= w.NameLengthMax
	if plausibleLength {
		score += w.NameLength
	}
	if f.FoodType {
		score += w.FoodType
	}
	switch {
	case f.CuisineCount >= 2:
		score += w.MultiCuisine
	case rec.Cuisine != "" && f.CuisineCount == 1:
		score += w.SingleCuisine
	}
	if f.Chain {
		score += w.Chain
	}

	severity := model.SeverityInfo
	if !plausibleLength || !f.FoodType {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:         model.SignalNameQuality,
		Severity:     severity,
		Description:  fmt.Sprintf("Name length %d, %d cuisine tag(s)", rec.NameLength, f.CuisineCount),
		Contribution: score,
		Data: map[string]interface{}{
			"name_length":   rec.NameLength,
			"food_type":     f.FoodType,
			"cuisine_count": f.CuisineCount,
			"chain":         f.Chain,
			"chain_brand":   f.ChainBrand,
			"score":         score,
		},
	}
}

// calculatePenalties applies the red flags
func (s *Scorer) calculatePenalties(rec model.PlaceRecord, f model.Features) (float64, model.Signal) {
	w := s.weights.Penalties

	score := 0.0
	var flags []string
	if !rec.HasCoordinates {
		score += w.NoCoordinates
		flags = append(flags, "no_coordinates")
	}
	if !rec.HasCity && !rec.HasStreet {
		score += w.NoLocality
		flags = append(flags, "no_locality")
	}
	if !rec.HasWebsite && !rec.HasPhone && !rec.HasOpeningHours {
		score += w.NoContact
		flags = append(flags, "no_contact")
	}
	if f.GenericName {
		score += w.GenericName
		flags = append(flags, "generic_name")
	}

	severity := model.SeverityInfo
	description := "No red flags"
	if len(flags) > 0 {
		severity = model.SeverityWarning
		description = fmt.Sprintf("%d red flag(s)", len(flags))
	}
	if !rec.HasCoordinates {
		severity = model.SeverityCritical
	}

	return score, model.Signal{
		Type:         model.SignalPenalties,
		Severity:     severity,
		Description:  description,
		Contribution: score,
		Data: map[string]interface{}{
			"flags": flags,
			"score": score,
		},
	}
}
