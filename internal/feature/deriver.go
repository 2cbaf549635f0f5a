// Package feature derives the boolean and numeric signals the scorer consumes.
package feature

import (
	"strings"

	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/similarity"
)

// Deriver computes Features from a normalized PlaceRecord
type Deriver struct {
	foodAmenities map[string]bool
	foodShops     map[string]bool
	chainBrands   []string
	genericNames  map[string]bool
	minNameLength int
	matcher       similarity.Matcher
	threshold     float64
}

// NewDeriver creates a deriver from the feature vocabularies and a similarity matcher
func NewDeriver(cfg model.FeatureConfig, fuzzy model.FuzzyConfig, matcher similarity.Matcher) *Deriver {
	if matcher == nil {
		matcher = similarity.SequenceMatcher{}
	}

	d := &Deriver{
		foodAmenities: toSet(cfg.FoodAmenities),
		foodShops:     toSet(cfg.FoodShops),
		genericNames:  toSet(cfg.GenericNames),
		minNameLength: cfg.MinNameLength,
		matcher:       matcher,
		threshold:     fuzzy.Threshold,
	}

	for _, brand := range cfg.ChainBrands {
		brand = strings.ToLower(strings.TrimSpace(brand))
		if brand != "" {
			d.chainBrands = append(d.chainBrands, brand)
		}
	}

	return d
}

// Derive computes all features of a record
func (d *Deriver) Derive(rec model.PlaceRecord) model.Features {
	brand := d.ChainBrand(rec.NameLower)
	return model.Features{
		FoodType:     d.IsFoodType(rec.Amenity, rec.Shop),
		CuisineCount: CuisineCount(rec.Cuisine),
		Chain:        brand != "",
		ChainBrand:   brand,
		GenericName:  d.IsGenericName(rec.NameLower, rec.NameLength),
		Address:      d.CompareAddress(rec),
	}
}

// IsFoodType reports whether the amenity or shop tag names a food business
func (d *Deriver) IsFoodType(amenity, shop string) bool {
	return d.foodAmenities[amenity] || d.foodShops[shop]
}

// CuisineCount counts the non-empty tags of a semicolon-delimited cuisine list
func CuisineCount(cuisine string) int {
	cuisine = strings.TrimSpace(cuisine)
	if cuisine == "" {
		return 0
	}

	count := 0
	for _, tag := range strings.Split(cuisine, ";") {
		if strings.TrimSpace(tag) != "" {
			count++
		}
	}
	return count
}

// ChainBrand returns the first brand keyword contained in the lower-cased
// name, or "" when none matches. Containment is literal: "mcdonald" matches
// "mcdonald's".
func (d *Deriver) ChainBrand(nameLower string) string {
	if nameLower == "" {
		return ""
	}
	for _, brand := range d.chainBrands {
		if strings.Contains(nameLower, brand) {
			return brand
		}
	}
	return ""
}

// IsGenericName flags names too short to identify a place, or that only
// name a category ("store", "cafe").
func (d *Deriver) IsGenericName(nameLower string, nameLength int) bool {
	return nameLength < d.minNameLength || d.genericNames[nameLower]
}

// CompareAddress checks the tagged address against the geocoded one.
// City and street may match fuzzily; postcode and house number must match exactly.
func (d *Deriver) CompareAddress(rec model.PlaceRecord) model.AddressAgreement {
	var a model.AddressAgreement

	a.CityExact = exactMatch(rec.City, rec.CityGeo)
	if !a.CityExact && rec.City != "" && rec.CityGeo != "" {
		a.CityRatio = d.matcher.Ratio(rec.City, rec.CityGeo)
		a.CityFuzzy = a.CityRatio >= d.threshold
	}

	a.StreetExact = exactMatch(rec.Street, rec.StreetGeo)
	if !a.StreetExact && rec.Street != "" && rec.StreetGeo != "" {
		a.StreetRatio = d.matcher.Ratio(rec.Street, rec.StreetGeo)
		a.StreetFuzzy = a.StreetRatio >= d.threshold
	}

	a.PostcodeExact = exactMatch(rec.Postcode, rec.PostcodeGeo)
	a.HouseExact = exactMatch(rec.HouseNumber, rec.HouseNumberGeo)

	// An empty side cannot contradict the other, but it is not a match either
	postcodeOK := a.PostcodeExact || rec.Postcode == "" || rec.PostcodeGeo == ""
	houseOK := a.HouseExact || rec.HouseNumber == "" || rec.HouseNumberGeo == ""
	a.AllAligned = a.CityMatched() && a.StreetMatched() && postcodeOK && houseOK

	// Without geocoded data there is nothing to disagree with
	a.GeoPresent = rec.AnyGeo()
	anyMatch := a.CityMatched() || a.StreetMatched() || a.PostcodeExact || a.HouseExact
	a.NoMatches = a.GeoPresent && !anyMatch

	return a
}

func exactMatch(a, b string) bool {
	return a != "" && b != "" && a == b
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}
