package indicator

// MACDSeries holds the three index-aligned series produced by MACD.
type MACDSeries struct {
	// MACD is the difference of the fast and slow EMAs.
	MACD []float64
	// Signal is the EMA of the MACD line.
	Signal []float64
	// Histogram is MACD minus Signal.
	Histogram []float64
}

// MACD computes the moving average convergence/divergence from two EMAs and
// an EMA of their difference.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) MACDSeries {
	fast := EMA(prices, fastPeriod)
	slow := EMA(prices, slowPeriod)

	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = fast[i] - slow[i]
	}

	signalLine := EMA(macdLine, signalPeriod)

	histogram := make([]float64, len(prices))
	for i := range prices {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return MACDSeries{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: histogram,
	}
}
