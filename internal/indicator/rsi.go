package indicator

// RSI computes the Wilder relative strength index from trailing average gains
// and losses over the given period. Positions before index `period` are NaN.
// When the average loss is zero the index saturates at 100 rather than
// dividing by zero.
func RSI(prices []float64, period int) []float64 {
	series := undefinedSeries(len(prices))
	if period < 1 || len(prices) < period+1 {
		return series
	}

	avgGain := 0.0
	avgLoss := 0.0

	// First average over the initial window
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	series[period] = rsiFromAverages(avgGain, avgLoss)

	// Subsequent averages using Wilder's smoothing method
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]

		gain := 0.0
		loss := 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		series[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return series
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
