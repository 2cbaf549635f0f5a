// Package normalize turns heterogeneous input rows into canonical place records.
//
// Normalization is total: a missing column, a null cell and an unparseable
// value all resolve to the same documented default, never to an error.
package normalize

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/placescore/internal/model"
)

// Column aliases, in lookup order. Keys are compared after CanonicalKey.
var (
	colName        = []string{"Name"}
	colAmenity     = []string{"Amenity"}
	colShop        = []string{"Shop"}
	colCuisine     = []string{"Cuisine"}
	colCity        = []string{"City"}
	colStreet      = []string{"Street"}
	colHouseNumber = []string{"HouseNumber"}
	colPostcode    = []string{"Postcode"}

	// The geocoding pass has shipped under several column prefixes
	colCityGeo        = []string{"CityGeo", "Geo_CityGeo", "Geo_City"}
	colStreetGeo      = []string{"StreetGeo", "Geo_StreetGeo", "Geo_Street"}
	colHouseNumberGeo = []string{"HouseNumberGeo", "Geo_HouseNumberGeo", "Geo_HouseNumber"}
	colPostcodeGeo    = []string{"PostcodeGeo", "Geo_PostcodeGeo", "Geo_Postcode"}

	colHasCity         = []string{"HasCity"}
	colHasStreet       = []string{"HasStreet"}
	colHasHouseNumber  = []string{"HasHouseNumber"}
	colHasPostcode     = []string{"HasPostcode"}
	colHasWebsite      = []string{"HasWebsite"}
	colHasPhone        = []string{"HasPhone"}
	colHasOpeningHours = []string{"HasOpeningHours"}
	colHasCuisine      = []string{"HasCuisine"}
	colHasCoordinates  = []string{"HasCoordinates"}

	colDaysSinceUpdate = []string{"DaysSinceUpdate"}
	colRecentlyUpdated = []string{"RecentlyUpdated"}
	colNameLength      = []string{"NameLength"}
)

// OutputColumns are appended by the scorer and never read back as inputs
var OutputColumns = []string{"Score", "Status"}

// Normalizer converts raw rows into PlaceRecords
type Normalizer struct {
	foldAccents bool
}

// NewNormalizer creates a normalizer
func NewNormalizer(cfg model.NormalizeConfig) *Normalizer {
	return &Normalizer{foldAccents: cfg.FoldAccents}
}

// Normalize extracts and canonicalizes every scored field of a row
func (n *Normalizer) Normalize(row model.Row) model.PlaceRecord {
	cells := index(row)

	name := toText(cells.get(colName))

	return model.PlaceRecord{
		Name:      name,
		NameLower: n.compareForm(name),

		Amenity: n.compareText(cells.get(colAmenity)),
		Shop:    n.compareText(cells.get(colShop)),
		Cuisine: n.compareText(cells.get(colCuisine)),

		City:        n.compareText(cells.get(colCity)),
		Street:      n.compareText(cells.get(colStreet)),
		HouseNumber: n.compareText(cells.get(colHouseNumber)),
		Postcode:    n.compareText(cells.get(colPostcode)),

		CityGeo:        n.compareText(cells.get(colCityGeo)),
		StreetGeo:      n.compareText(cells.get(colStreetGeo)),
		HouseNumberGeo: n.compareText(cells.get(colHouseNumberGeo)),
		PostcodeGeo:    n.compareText(cells.get(colPostcodeGeo)),

		HasCity:         toFlag(cells.get(colHasCity)),
		HasStreet:       toFlag(cells.get(colHasStreet)),
		HasHouseNumber:  toFlag(cells.get(colHasHouseNumber)),
		HasPostcode:     toFlag(cells.get(colHasPostcode)),
		HasWebsite:      toFlag(cells.get(colHasWebsite)),
		HasPhone:        toFlag(cells.get(colHasPhone)),
		HasOpeningHours: toFlag(cells.get(colHasOpeningHours)),
		HasCuisine:      toFlag(cells.get(colHasCuisine)),
		HasCoordinates:  toFlag(cells.get(colHasCoordinates)),

		DaysSinceUpdate: toInt(cells.get(colDaysSinceUpdate), model.UnknownDaysSinceUpdate),
		RecentlyUpdated: toFlag(cells.get(colRecentlyUpdated)),
		NameLength:      toInt(cells.get(colNameLength), 0),
	}
}

func (n *Normalizer) compareText(v any) string {
	return n.compareForm(toText(v))
}

// compareForm lower-cases already trimmed text and optionally strips accents
func (n *Normalizer) compareForm(s string) string {
	s = strings.ToLower(s)
	if n.foldAccents && s != "" {
		s = FoldAccents(s)
	}
	return s
}

// FoldAccents removes combining marks: "Café Müller" -> "Cafe Muller"
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// cellIndex maps canonical column keys to cell values
type cellIndex map[string]any

// index builds a lookup tolerant of column naming style. When two columns
// canonicalize to the same key the lexically smallest original name wins.
func index(row model.Row) cellIndex {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	idx := make(cellIndex, len(row))
	for _, k := range keys {
		ck := CanonicalKey(k)
		if _, exists := idx[ck]; !exists {
			idx[ck] = row[k]
		}
	}
	return idx
}

// get returns the first alias present in the row, or nil
func (c cellIndex) get(aliases []string) any {
	for _, alias := range aliases {
		if v, ok := c[CanonicalKey(alias)]; ok {
			return v
		}
	}
	return nil
}

// CanonicalKey folds "HasCity", "hasCity", "has_city" and "Has City" together
func CanonicalKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsOutputColumn reports whether a column is written by the scorer
func IsOutputColumn(name string) bool {
	ck := CanonicalKey(name)
	for _, c := range OutputColumns {
		if CanonicalKey(c) == ck {
			return true
		}
	}
	return false
}
