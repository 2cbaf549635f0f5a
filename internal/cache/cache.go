// Package cache memoizes similarity ratios between address components.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache defines the interface for ratio caching
type Cache interface {
	Get(key string) (float64, bool)
	Set(key string, ratio float64)
	Len() int
	Clear()
}

// PairKey generates a cache key for a pair of strings compared by an algorithm.
// Order matters: most ratios are not symmetric.
func PairKey(algorithm, a, b string) string {
	h := sha256.New()
	h.Write([]byte(a))
	h.Write([]byte{0})
	h.Write([]byte(b))
	return "placescore:v1:" + algorithm + ":" + hex.EncodeToString(h.Sum(nil))
}
