package types

import "time"

// MarketBar is a single OHLCV observation for a symbol at a timestamp.
// Bars are produced by an external data source, are immutable, and are
// consumed in ascending-timestamp order.
type MarketBar struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// Closes extracts the close price series from a bar slice, index-aligned with
// the input.
func Closes(bars []MarketBar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return closes
}
