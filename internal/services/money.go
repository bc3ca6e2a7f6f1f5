package services

import "math"

// Round2 rounds to 2 decimal places, half away from zero. Every monetary
// value leaving the aggregation stages goes through this to keep importer,
// reconciliation and rollup numbers consistent with each other.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
