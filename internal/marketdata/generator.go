// Package marketdata generates synthetic bar series with a seeded random
// walk. The engine has no dependency on how bars are produced; this is a
// collaborator used by the CLI and tests when no data file is supplied.
package marketdata

import (
	"math"
	"math/rand"
	"time"

	"github.com/quantpulse-lab/quantpulse/internal/types"
)

const (
	// minimumPrice floors the walk to keep prices positive.
	minimumPrice = 0.01
	// baseVolume is the center of the generated per-bar volume.
	baseVolume = 1000000.0
)

// GeneratorConfig configures a synthetic bar series.
type GeneratorConfig struct {
	// Symbol is the ticker symbol for the generated bars.
	Symbol string `yaml:"symbol"`
	// StartTime is the timestamp of the first bar.
	StartTime time.Time `yaml:"start_time"`
	// EndTime bounds the series; no bar is generated past it.
	EndTime time.Time `yaml:"end_time"`
	// Interval is the time between bars. Defaults to 24h when zero.
	Interval time.Duration `yaml:"interval"`
	// StartPrice is the first close of the walk.
	StartPrice float64 `yaml:"start_price"`
	// DriftPercent is the per-bar expected move in percent.
	DriftPercent float64 `yaml:"drift_percent"`
	// VolatilityPercent is the per-bar random move scale in percent.
	VolatilityPercent float64 `yaml:"volatility_percent"`
	// Seed makes the walk reproducible. A zero seed uses the current time.
	Seed int64 `yaml:"seed"`
}

// Generate produces a sorted, well-formed bar series from a seeded random
// walk. The same config (with a non-zero seed) always yields the same series.
func Generate(config GeneratorConfig) []types.MarketBar {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))

	interval := config.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	var bars []types.MarketBar

	prevClose := config.StartPrice

	for t := config.StartTime; !t.After(config.EndTime); t = t.Add(interval) {
		movePercent := config.DriftPercent + config.VolatilityPercent*rng.NormFloat64()

		open := prevClose
		close := math.Max(minimumPrice, open*(1+movePercent/100))

		// Intrabar extremes stretch a little past the open/close range.
		wiggle := math.Abs(close-open) * rng.Float64()
		high := math.Max(open, close) + wiggle
		low := math.Max(minimumPrice, math.Min(open, close)-wiggle)

		bars = append(bars, types.MarketBar{
			Symbol: config.Symbol,
			Time:   t,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: baseVolume * (0.5 + rng.Float64()),
		})

		prevClose = close
	}

	return bars
}
