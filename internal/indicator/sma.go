package indicator

// SMA computes the simple moving average over a trailing window of the given
// period. Positions before the first full window are NaN.
func SMA(prices []float64, period int) []float64 {
	series := undefinedSeries(len(prices))
	if period < 1 || period > len(prices) {
		return series
	}

	sum := 0.0

	for i, price := range prices {
		sum += price

		if i >= period {
			sum -= prices[i-period]
		}

		if i >= period-1 {
			series[i] = sum / float64(period)
		}
	}

	return series
}
