// Package indicator provides pure, stateless functions that compute technical
// indicator series from a price sequence.
//
// Every function returns a series aligned index-for-index with its input.
// Positions that lack a full lookback window hold NaN rather than zero, to
// distinguish "no signal yet" from "signal is zero". All functions are
// deterministic and tolerate a period larger than the available history by
// emitting NaN instead of failing.
package indicator

import "math"

// Valid reports whether an indicator value is defined (not in warm-up).
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// undefinedSeries returns a series of the given length filled with NaN.
func undefinedSeries(n int) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = math.NaN()
	}

	return series
}
