package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type GeneratorTestSuite struct {
	suite.Suite
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorTestSuite))
}

func testConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:            "TEST",
		StartTime:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Interval:          24 * time.Hour,
		StartPrice:        100,
		DriftPercent:      0.05,
		VolatilityPercent: 2,
		Seed:              42,
	}
}

func (suite *GeneratorTestSuite) TestSameSeedSameSeries() {
	first := Generate(testConfig())
	second := Generate(testConfig())

	suite.Equal(first, second)
}

func (suite *GeneratorTestSuite) TestDifferentSeedDifferentSeries() {
	config := testConfig()
	first := Generate(config)

	config.Seed = 43
	second := Generate(config)

	suite.Require().Len(second, len(first))
	suite.NotEqual(first, second)
}

func (suite *GeneratorTestSuite) TestBarsAreWellFormed() {
	bars := Generate(testConfig())

	suite.Require().NotEmpty(bars)

	for i, bar := range bars {
		suite.Equal("TEST", bar.Symbol)
		suite.GreaterOrEqual(bar.High, bar.Open)
		suite.GreaterOrEqual(bar.High, bar.Close)
		suite.LessOrEqual(bar.Low, bar.Open)
		suite.LessOrEqual(bar.Low, bar.Close)
		suite.Greater(bar.Low, 0.0)
		suite.Greater(bar.Volume, 0.0)

		if i > 0 {
			suite.Equal(24*time.Hour, bar.Time.Sub(bars[i-1].Time))
			suite.Equal(bars[i-1].Close, bar.Open, "each bar opens at the previous close")
		}
	}
}

func (suite *GeneratorTestSuite) TestSeriesCoversTheConfiguredRange() {
	config := testConfig()
	bars := Generate(config)

	suite.Equal(config.StartTime, bars[0].Time)
	suite.False(bars[len(bars)-1].Time.After(config.EndTime))

	// Inclusive daily range over 61 days: 61 bars.
	suite.Len(bars, 61)
}

func (suite *GeneratorTestSuite) TestPriceFloor() {
	config := testConfig()
	config.StartPrice = 0.02
	config.DriftPercent = -50
	config.VolatilityPercent = 0

	bars := Generate(config)

	for _, bar := range bars {
		suite.GreaterOrEqual(bar.Close, minimumPrice)
		suite.GreaterOrEqual(bar.Low, minimumPrice)
	}
}