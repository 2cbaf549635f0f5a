package model

// UnknownDaysSinceUpdate stands in for a missing or unparseable update age.
// It is large on purpose: an unknown date scores as stale, never as fresh.
const UnknownDaysSinceUpdate = 9999

// Row is one raw input row keyed by column name. Values are heterogeneous:
// strings from CSV/XLSX cells, numbers or booleans from JSON, nil for nulls.
type Row map[string]any

// PlaceRecord is the canonical, normalized form of one input row.
// Comparison fields are trimmed and lower-cased; Name keeps its original case.
type PlaceRecord struct {
	Name      string `json:"name"`
	NameLower string `json:"name_lower"`

	Amenity string `json:"amenity"`
	Shop    string `json:"shop"`
	Cuisine string `json:"cuisine"`

	// Address as tagged in the source dataset
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	Postcode    string `json:"postcode"`

	// Address as returned by the reverse geocoder
	CityGeo        string `json:"city_geo"`
	StreetGeo      string `json:"street_geo"`
	HouseNumberGeo string `json:"house_number_geo"`
	PostcodeGeo    string `json:"postcode_geo"`

	HasCity         bool `json:"has_city"`
	HasStreet       bool `json:"has_street"`
	HasHouseNumber  bool `json:"has_house_number"`
	HasPostcode     bool `json:"has_postcode"`
	HasWebsite      bool `json:"has_website"`
	HasPhone        bool `json:"has_phone"`
	HasOpeningHours bool `json:"has_opening_hours"`
	HasCuisine      bool `json:"has_cuisine"`
	HasCoordinates  bool `json:"has_coordinates"`

	DaysSinceUpdate int  `json:"days_since_update"`
	RecentlyUpdated bool `json:"recently_updated"`
	NameLength      int  `json:"name_length"`
}

// AnyGeo reports whether the reverse geocoder returned any address component.
func (r PlaceRecord) AnyGeo() bool {
	return r.CityGeo != "" || r.StreetGeo != "" || r.PostcodeGeo != "" || r.HouseNumberGeo != ""
}

// Features are the signals derived from a PlaceRecord before scoring
type Features struct {
	FoodType     bool             `json:"food_type"`
	CuisineCount int              `json:"cuisine_count"`
	Chain        bool             `json:"chain"`
	ChainBrand   string           `json:"chain_brand,omitempty"` // First brand keyword found in the name
	GenericName  bool             `json:"generic_name"`
	Address      AddressAgreement `json:"address"`
}

// AddressAgreement compares the tagged address against the geocoded one.
type AddressAgreement struct {
	CityExact     bool    `json:"city_exact"`
	CityFuzzy     bool    `json:"city_fuzzy"`
	CityRatio     float64 `json:"city_ratio,omitempty"`
	StreetExact   bool    `json:"street_exact"`
	StreetFuzzy   bool    `json:"street_fuzzy"`
	StreetRatio   float64 `json:"street_ratio,omitempty"`
	PostcodeExact bool    `json:"postcode_exact"`
	HouseExact    bool    `json:"house_exact"`

	// GeoPresent is true when the geocoder had anything to compare against.
	GeoPresent bool `json:"geo_present"`
	AllAligned bool `json:"all_aligned"`
	NoMatches  bool `json:"no_matches"`
}

// CityMatched reports an exact or fuzzy city match
func (a AddressAgreement) CityMatched() bool { return a.CityExact || a.CityFuzzy }

// StreetMatched reports an exact or fuzzy street match
func (a AddressAgreement) StreetMatched() bool { return a.StreetExact || a.StreetFuzzy }
