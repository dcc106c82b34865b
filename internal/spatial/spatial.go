// Package spatial assigns the hierarchical geocode key that downstream
// heatmap aggregation buckets reports by. Keys are computed exactly once
// at report creation; coordinate edits never trigger recomputation, since
// aggregation depends on key stability.
package spatial

import "github.com/mmcloughlin/geohash"

// DefaultPrecision is the geohash character length fixed at creation time.
const DefaultPrecision = 7

// Key derives the geohash cell for a coordinate pair at the given
// precision. Deterministic: the same inputs always yield the same key.
func Key(longitude, latitude float64, precision uint) string {
	if precision == 0 {
		precision = DefaultPrecision
	}
	return geohash.EncodeWithPrecision(latitude, longitude, precision)
}
