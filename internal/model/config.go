package model

import "runtime"

// Config holds the full placescore configuration.
// Every list and weight used by the scoring engine lives here so it can be
// inspected with `placescore config show` and tuned without touching code.
type Config struct {
	Normalize   NormalizeConfig   `yaml:"normalize" mapstructure:"normalize"`
	Features    FeatureConfig     `yaml:"features" mapstructure:"features"`
	Fuzzy       FuzzyConfig       `yaml:"fuzzy" mapstructure:"fuzzy"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Thresholds  ThresholdConfig   `yaml:"thresholds" mapstructure:"thresholds"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// NormalizeConfig controls record normalization
type NormalizeConfig struct {
	// FoldAccents strips combining marks from comparison fields ("café" -> "cafe").
	// Off by default: reference scores compare lower-cased text only.
	FoldAccents bool `yaml:"fold_accents" mapstructure:"fold_accents"`
}

// FeatureConfig holds the fixed vocabularies used by the feature deriver
type FeatureConfig struct {
	FoodAmenities []string `yaml:"food_amenities" mapstructure:"food_amenities"`
	FoodShops     []string `yaml:"food_shops" mapstructure:"food_shops"`
	ChainBrands   []string `yaml:"chain_brands" mapstructure:"chain_brands"`
	GenericNames  []string `yaml:"generic_names" mapstructure:"generic_names"`
	// Names shorter than this are treated as generic
	MinNameLength int `yaml:"min_name_length" mapstructure:"min_name_length"`
}

// FuzzyConfig controls address similarity matching
type FuzzyConfig struct {
	Algorithm string  `yaml:"algorithm" mapstructure:"algorithm"` // ratio, jarowinkler, levenshtein
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	Cache     bool    `yaml:"cache" mapstructure:"cache"` // Memoize ratios of repeated pairs
}

// ScoringConfig holds the weights of the five scoring blocks
type ScoringConfig struct {
	Completeness CompletenessWeights `yaml:"completeness" mapstructure:"completeness"`
	Freshness    FreshnessWeights    `yaml:"freshness" mapstructure:"freshness"`
	Address      AddressWeights      `yaml:"address" mapstructure:"address"`
	NameQuality  NameQualityWeights  `yaml:"name_quality" mapstructure:"name_quality"`
	Penalties    PenaltyWeights      `yaml:"penalties" mapstructure:"penalties"`
	MinScore     float64             `yaml:"min_score" mapstructure:"min_score"`
	MaxScore     float64             `yaml:"max_score" mapstructure:"max_score"`
}

// CompletenessWeights rewards the presence of core attributes
type CompletenessWeights struct {
	Coordinates  float64 `yaml:"coordinates" mapstructure:"coordinates"`
	City         float64 `yaml:"city" mapstructure:"city"`
	Street       float64 `yaml:"street" mapstructure:"street"`
	HouseNumber  float64 `yaml:"house_number" mapstructure:"house_number"`
	Postcode     float64 `yaml:"postcode" mapstructure:"postcode"`
	Cuisine      float64 `yaml:"cuisine" mapstructure:"cuisine"`
	Website      float64 `yaml:"website" mapstructure:"website"`
	Phone        float64 `yaml:"phone" mapstructure:"phone"`
	OpeningHours float64 `yaml:"opening_hours" mapstructure:"opening_hours"`
}

// FreshnessWeights rewards recent edits and penalizes very old ones
type FreshnessWeights struct {
	Recent      float64 `yaml:"recent" mapstructure:"recent"`
	WithinYear  float64 `yaml:"within_year" mapstructure:"within_year"`
	YearDays    int     `yaml:"year_days" mapstructure:"year_days"`
	WithinAged  float64 `yaml:"within_aged" mapstructure:"within_aged"`
	AgedDays    int     `yaml:"aged_days" mapstructure:"aged_days"`
	VeryOld     float64 `yaml:"very_old" mapstructure:"very_old"`
	VeryOldDays int     `yaml:"very_old_days" mapstructure:"very_old_days"`
}

// AddressWeights rewards agreement between tagged and geocoded addresses
type AddressWeights struct {
	CityExact     float64 `yaml:"city_exact" mapstructure:"city_exact"`
	CityFuzzy     float64 `yaml:"city_fuzzy" mapstructure:"city_fuzzy"`
	StreetExact   float64 `yaml:"street_exact" mapstructure:"street_exact"`
	StreetFuzzy   float64 `yaml:"street_fuzzy" mapstructure:"street_fuzzy"`
	PostcodeExact float64 `yaml:"postcode_exact" mapstructure:"postcode_exact"`
	HouseExact    float64 `yaml:"house_exact" mapstructure:"house_exact"`
	AllAligned    float64 `yaml:"all_aligned" mapstructure:"all_aligned"`
	NoMatches     float64 `yaml:"no_matches" mapstructure:"no_matches"`
}

// NameQualityWeights rewards plausible names and place types
type NameQualityWeights struct {
	NameLength    float64 `yaml:"name_length" mapstructure:"name_length"`
	NameLengthMin int     `yaml:"name_length_min" mapstructure:"name_length_min"`
	NameLengthMax int     `yaml:"name_length_max" mapstructure:"name_length_max"`
	FoodType      float64 `yaml:"food_type" mapstructure:"food_type"`
	MultiCuisine  float64 `yaml:"multi_cuisine" mapstructure:"multi_cuisine"`
	SingleCuisine float64 `yaml:"single_cuisine" mapstructure:"single_cuisine"`
	Chain         float64 `yaml:"chain" mapstructure:"chain"`
}

// PenaltyWeights are the red flags. Values are negative.
type PenaltyWeights struct {
	NoCoordinates float64 `yaml:"no_coordinates" mapstructure:"no_coordinates"`
	NoLocality    float64 `yaml:"no_locality" mapstructure:"no_locality"`
	NoContact     float64 `yaml:"no_contact" mapstructure:"no_contact"`
	GenericName   float64 `yaml:"generic_name" mapstructure:"generic_name"`
}

// ThresholdConfig maps scores to statuses
type ThresholdConfig struct {
	Valid         float64 `yaml:"valid" mapstructure:"valid"`
	Review        float64 `yaml:"review" mapstructure:"review"`
	ChainOverride bool    `yaml:"chain_override" mapstructure:"chain_override"`
}

// ConcurrencyConfig controls the scoring worker pool
type ConcurrencyConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"` // Rows per job
}

// StoreConfig configures the optional relational sink
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite, postgres, or empty for none
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// DefaultConfig returns the reference heuristic configuration
func DefaultConfig() *Config {
	return &Config{
		Features: FeatureConfig{
			FoodAmenities: []string{"restaurant", "fast_food", "cafe", "bar", "pub", "ice_cream", "food_court"},
			FoodShops:     []string{"supermarket", "convenience", "bakery", "confectionery", "deli", "greengrocer"},
			ChainBrands: []string{
				"mcdonald", "starbucks", "subway", "kfc", "taco bell", "pizza hut", "domino",
				"chipotle", "burger king", "wendy", "dunkin", "cold stone", "giant eagle",
				"aldi", "walmart", "circle k", "panera", "five guys", "sonic", "papa john",
				"wingstreet", "arby", "jimmy john", "little caesars", "tim hortons",
				"tgi friday", "golden corral",
			},
			GenericNames:  []string{"store", "shop", "restaurant", "cafe", "bar", "food"},
			MinNameLength: 3,
		},
		Fuzzy: FuzzyConfig{
			Algorithm: "ratio",
			Threshold: 0.85,
			Cache:     true,
		},
		Scoring: ScoringConfig{
			Completeness: CompletenessWeights{
				Coordinates:  12,
				City:         7,
				Street:       7,
				HouseNumber:  5,
				Postcode:     5,
				Cuisine:      3,
				Website:      3,
				Phone:        3,
				OpeningHours: 2,
			},
			Freshness: FreshnessWeights{
				Recent:      10,
				WithinYear:  6,
				YearDays:    365,
				WithinAged:  3,
				AgedDays:    3 * 365,
				VeryOld:     -4,
				VeryOldDays: 5 * 365,
			},
			Address: AddressWeights{
				CityExact:     8,
				CityFuzzy:     5,
				StreetExact:   7,
				StreetFuzzy:   4,
				PostcodeExact: 4,
				HouseExact:    2,
				AllAligned:    2,
				NoMatches:     -5,
			},
			NameQuality: NameQualityWeights{
				NameLength:    4,
				NameLengthMin: 4,
				NameLengthMax: 40,
				FoodType:      4,
				MultiCuisine:  3,
				SingleCuisine: 2,
				Chain:         2,
			},
			Penalties: PenaltyWeights{
				NoCoordinates: -15,
				NoLocality:    -8,
				NoContact:     -5,
				GenericName:   -3,
			},
			MinScore: 0,
			MaxScore: 100,
		},
		Thresholds: ThresholdConfig{
			Valid:         60,
			Review:        35,
			ChainOverride: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers:   runtime.NumCPU(),
			ChunkSize: 256,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
