package indicator

import "math"

// BollingerSeries holds the three index-aligned bands produced by Bollinger.
type BollingerSeries struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes Bollinger Bands: an SMA middle band flanked by
// +/- stdDevMultiplier population standard deviations over the same trailing
// window. Positions before the first full window are NaN in all three bands.
func Bollinger(prices []float64, period int, stdDevMultiplier float64) BollingerSeries {
	middle := SMA(prices, period)
	upper := undefinedSeries(len(prices))
	lower := undefinedSeries(len(prices))

	for i := period - 1; i < len(prices); i++ {
		if i < 0 || !Valid(middle[i]) {
			continue
		}

		squaredDiffSum := 0.0
		for j := i - period + 1; j <= i; j++ {
			diff := prices[j] - middle[i]
			squaredDiffSum += diff * diff
		}

		stdDev := math.Sqrt(squaredDiffSum / float64(period))
		upper[i] = middle[i] + stdDevMultiplier*stdDev
		lower[i] = middle[i] - stdDevMultiplier*stdDev
	}

	return BollingerSeries{
		Upper:  upper,
		Middle: middle,
		Lower:  lower,
	}
}
