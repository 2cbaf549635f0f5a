// Package similarity scores how alike two address components are, in [0, 1].
package similarity

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rotisserie/eris"
	"github.com/xrash/smetrics"

	"github.com/ppiankov/placescore/internal/cache"
)

// Algorithm names accepted by New
const (
	AlgorithmRatio       = "ratio"
	AlgorithmJaroWinkler = "jarowinkler"
	AlgorithmLevenshtein = "levenshtein"
)

// Matcher computes a similarity ratio between two strings
type Matcher interface {
	Name() string
	Ratio(a, b string) float64
}

// New returns the matcher for the named algorithm. When c is non-nil, ratios
// are memoized in it.
func New(algorithm string, c cache.Cache) (Matcher, error) {
	var m Matcher
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmRatio:
		m = SequenceMatcher{}
	case AlgorithmJaroWinkler, "jaro-winkler":
		m = JaroWinkler{BoostThreshold: 0.7, PrefixSize: 4}
	case AlgorithmLevenshtein:
		m = Levenshtein{}
	default:
		return nil, eris.Errorf("similarity: unknown algorithm %q (want ratio, jarowinkler or levenshtein)", algorithm)
	}

	if c != nil {
		return &Cached{matcher: m, cache: c}, nil
	}
	return m, nil
}

// SequenceMatcher scores by longest matching blocks: 2*M/T where M is the
// number of matched runes and T the total rune count of both strings.
type SequenceMatcher struct{}

// Name returns the algorithm name
func (SequenceMatcher) Name() string { return AlgorithmRatio }

// Ratio returns the matching-blocks ratio
func (SequenceMatcher) Ratio(a, b string) float64 {
	return MatchRatio([]rune(a), []rune(b))
}

// JaroWinkler scores with the Jaro-Winkler distance, which favours shared prefixes
type JaroWinkler struct {
	BoostThreshold float64
	PrefixSize     int
}

// Name returns the algorithm name
func (JaroWinkler) Name() string { return AlgorithmJaroWinkler }

// Ratio returns the Jaro-Winkler similarity
func (j JaroWinkler) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return smetrics.JaroWinkler(a, b, j.BoostThreshold, j.PrefixSize)
}

// Levenshtein scores as 1 - distance/longest length
type Levenshtein struct{}

// Name returns the algorithm name
func (Levenshtein) Name() string { return AlgorithmLevenshtein }

// Ratio returns the normalized edit similarity
func (Levenshtein) Ratio(a, b string) float64 {
	maxLen := math.Max(float64(len([]rune(a))), float64(len([]rune(b))))
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/maxLen
}

// Cached memoizes another matcher's ratios
type Cached struct {
	matcher Matcher
	cache   cache.Cache
}

// NewCached wraps m with the given cache
func NewCached(m Matcher, c cache.Cache) *Cached {
	return &Cached{matcher: m, cache: c}
}

// Name returns the wrapped algorithm name
func (c *Cached) Name() string { return c.matcher.Name() }

// Ratio returns the cached ratio, computing it on a miss
func (c *Cached) Ratio(a, b string) float64 {
	key := cache.PairKey(c.matcher.Name(), a, b)
	if ratio, found := c.cache.Get(key); found {
		return ratio
	}
	ratio := c.matcher.Ratio(a, b)
	c.cache.Set(key, ratio)
	return ratio
}
