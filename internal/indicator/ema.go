package indicator

// EMA computes the exponential moving average with multiplier 2/(period+1),
// seeded with the first raw price. The series is defined from index 0; the
// seed makes early values track the raw price until the average settles.
func EMA(prices []float64, period int) []float64 {
	series := undefinedSeries(len(prices))
	if period < 1 || len(prices) == 0 {
		return series
	}

	multiplier := 2.0 / float64(period+1)
	series[0] = prices[0]

	for i := 1; i < len(prices); i++ {
		series[i] = (prices[i]-series[i-1])*multiplier + series[i-1]
	}

	return series
}
