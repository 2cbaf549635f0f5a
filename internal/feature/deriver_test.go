package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/similarity"
)

func newTestDeriver() *Deriver {
	cfg := model.DefaultConfig()
	return NewDeriver(cfg.Features, cfg.Fuzzy, similarity.SequenceMatcher{})
}

func TestIsFoodType(t *testing.T) {
	d := newTestDeriver()

	assert.True(t, d.IsFoodType("restaurant", ""))
	assert.True(t, d.IsFoodType("ice_cream", ""))
	assert.True(t, d.IsFoodType("", "bakery"))
	assert.True(t, d.IsFoodType("parking", "greengrocer"))
	assert.False(t, d.IsFoodType("parking", "hardware"))
	assert.False(t, d.IsFoodType("", ""))
	// Tags are matched against their normalized form only
	assert.False(t, d.IsFoodType("Restaurant", ""))
}

func TestCuisineCount(t *testing.T) {
	tests := []struct {
		cuisine string
		want    int
	}{
		{"", 0},
		{"   ", 0},
		{";", 0},
		{"pizza", 1},
		{"pizza;", 1},
		{"pizza;italian", 2},
		{" pizza ; ; italian ;burger", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CuisineCount(tt.cuisine), "cuisine %q", tt.cuisine)
	}
}

func TestChainBrand(t *testing.T) {
	d := newTestDeriver()

	assert.Equal(t, "mcdonald", d.ChainBrand("mcdonald's"))
	assert.Equal(t, "taco bell", d.ChainBrand("taco bell cantina #221"))
	assert.Equal(t, "domino", d.ChainBrand("domino's pizza"))
	// Substring containment, not token match
	assert.Equal(t, "sonic", d.ChainBrand("supersonic car wash"))
	assert.Equal(t, "", d.ChainBrand("luigi's pizzeria"))
	assert.Equal(t, "", d.ChainBrand(""))
}

func TestIsGenericName(t *testing.T) {
	d := newTestDeriver()

	assert.True(t, d.IsGenericName("", 0))
	assert.True(t, d.IsGenericName("ab", 2))
	assert.True(t, d.IsGenericName("cafe", 4))
	assert.True(t, d.IsGenericName("food", 4))
	assert.False(t, d.IsGenericName("joe", 3))
	assert.False(t, d.IsGenericName("cafe rio", 8))
	// Length comes from the input column, not from the name itself
	assert.True(t, d.IsGenericName("cafe rio", 0))
}

func TestCompareAddress(t *testing.T) {
	d := newTestDeriver()

	tests := []struct {
		name string
		rec  model.PlaceRecord
		want model.AddressAgreement
	}{
		{
			name: "all exact",
			rec: model.PlaceRecord{
				City: "akron", CityGeo: "akron",
				Street: "main street", StreetGeo: "main street",
				Postcode: "44308", PostcodeGeo: "44308",
				HouseNumber: "12", HouseNumberGeo: "12",
			},
			want: model.AddressAgreement{
				CityExact: true, StreetExact: true, PostcodeExact: true, HouseExact: true,
				GeoPresent: true, AllAligned: true,
			},
		},
		{
			name: "fuzzy city and street, empty postcode cannot contradict",
			rec: model.PlaceRecord{
				City: "springfield", CityGeo: "springfeld",
				Street: "main streets", StreetGeo: "main street",
				Postcode: "", PostcodeGeo: "62701",
			},
			want: model.AddressAgreement{
				CityFuzzy: true, CityRatio: 20.0 / 21.0,
				StreetFuzzy: true, StreetRatio: 22.0 / 23.0,
				GeoPresent: true, AllAligned: true,
			},
		},
		{
			name: "postcode conflict breaks alignment",
			rec: model.PlaceRecord{
				City: "akron", CityGeo: "akron",
				Street: "main street", StreetGeo: "main street",
				Postcode: "44308", PostcodeGeo: "44310",
			},
			want: model.AddressAgreement{
				CityExact: true, StreetExact: true,
				GeoPresent: true,
			},
		},
		{
			name: "postcode never matches fuzzily",
			rec:  model.PlaceRecord{Postcode: "44308", PostcodeGeo: "44309"},
			want: model.AddressAgreement{GeoPresent: true, NoMatches: true},
		},
		{
			name: "conflicting sources",
			rec:  model.PlaceRecord{City: "elm ave", CityGeo: "oak blvd"},
			want: model.AddressAgreement{
				CityRatio:  sequenceRatio("elm ave", "oak blvd"),
				GeoPresent: true, NoMatches: true,
			},
		},
		{
			name: "nothing to compare against",
			rec:  model.PlaceRecord{City: "akron", Street: "main street"},
			want: model.AddressAgreement{},
		},
		{
			name: "geocoder only",
			rec:  model.PlaceRecord{CityGeo: "akron"},
			want: model.AddressAgreement{GeoPresent: true, NoMatches: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.CompareAddress(tt.rec)
			assert.InDelta(t, tt.want.CityRatio, got.CityRatio, 1e-9)
			assert.InDelta(t, tt.want.StreetRatio, got.StreetRatio, 1e-9)
			tt.want.CityRatio, got.CityRatio = 0, 0
			tt.want.StreetRatio, got.StreetRatio = 0, 0
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareAddress_AbbreviationDependsOnAlgorithm(t *testing.T) {
	cfg := model.DefaultConfig()
	rec := model.PlaceRecord{City: "main st", CityGeo: "main street"}

	ratio := NewDeriver(cfg.Features, cfg.Fuzzy, similarity.SequenceMatcher{})
	assert.False(t, ratio.CompareAddress(rec).CityFuzzy, "14/18 stays below the threshold")

	jw := NewDeriver(cfg.Features, cfg.Fuzzy, similarity.JaroWinkler{BoostThreshold: 0.7, PrefixSize: 4})
	assert.True(t, jw.CompareAddress(rec).CityFuzzy)
}

func TestDerive(t *testing.T) {
	d := newTestDeriver()

	f := d.Derive(model.PlaceRecord{
		Name:       "McDonald's",
		NameLower:  "mcdonald's",
		NameLength: 10,
		Amenity:    "fast_food",
		Cuisine:    "burger;chicken",
	})

	assert.True(t, f.FoodType)
	assert.Equal(t, 2, f.CuisineCount)
	assert.True(t, f.Chain)
	assert.Equal(t, "mcdonald", f.ChainBrand)
	assert.False(t, f.GenericName)
	assert.False(t, f.Address.GeoPresent)
}

// sequenceRatio is a test helper for expected ratios
func sequenceRatio(a, b string) float64 {
	return similarity.SequenceMatcher{}.Ratio(a, b)
}
