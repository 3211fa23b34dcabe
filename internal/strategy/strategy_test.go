package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quantpulse-lab/quantpulse/internal/types"
	"github.com/quantpulse-lab/quantpulse/pkg/errors"
)

type StrategyTestSuite struct {
	suite.Suite
	registry *Registry
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.registry = NewRegistry()
}

func dailyBars(symbol string, closes []float64) []types.MarketBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.MarketBar, len(closes))

	for i, c := range closes {
		bars[i] = types.MarketBar{
			Symbol: symbol,
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *StrategyTestSuite) TestMACrossoverHoldsDuringWarmup() {
	def, ok := suite.registry.Get(StrategyIDMACrossover)
	suite.Require().True(ok)

	s := def.build(def.DefaultConfig())

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}

	bars := dailyBars("AAPL", closes)

	// Default slow period is 30: the slow SMA is undefined before bar 29,
	// so every bar up to there must be a hold.
	for i := 0; i < 29; i++ {
		signal := s.GenerateSignal(bars, i)
		suite.Equal(types.SignalTypeHold, signal.Type, "bar %d", i)
		suite.Equal(ReasonInsufficientData, signal.Reason, "bar %d", i)
	}
}

func (suite *StrategyTestSuite) TestMACrossoverGoldenCross() {
	config := types.StrategyConfig{
		ID:   StrategyIDMACrossover,
		Name: "crossover",
		Parameters: map[string]float64{
			"fast_period": 2,
			"slow_period": 4,
		},
		RiskManagement: types.DefaultRiskManagement(),
		Active:         true,
	}

	s := NewMACrossover(config)

	// Flat then sharply rising: the fast SMA overtakes the slow one.
	closes := []float64{100, 100, 100, 100, 100, 105, 110, 115}
	bars := dailyBars("AAPL", closes)

	var buys int

	for i := range bars {
		signal := s.GenerateSignal(bars, i)
		if signal.Type == types.SignalTypeBuy {
			buys++

			suite.InDelta(crossoverStrength, signal.Strength, 1e-9)
			suite.Equal(bars[i].Close, signal.Price)
			suite.Equal("AAPL", signal.Symbol)
		}
	}

	suite.Equal(1, buys, "a single clean crossover should emit exactly one buy")
}

func (suite *StrategyTestSuite) TestMACrossoverDeathCross() {
	config := types.StrategyConfig{
		ID:   StrategyIDMACrossover,
		Name: "crossover",
		Parameters: map[string]float64{
			"fast_period": 2,
			"slow_period": 4,
		},
	}

	s := NewMACrossover(config)

	closes := []float64{100, 100, 100, 100, 100, 95, 90, 85}
	bars := dailyBars("AAPL", closes)

	var sells int

	for i := range bars {
		if s.GenerateSignal(bars, i).Type == types.SignalTypeSell {
			sells++
		}
	}

	suite.Equal(1, sells)
}

func (suite *StrategyTestSuite) TestRSIReversionOversoldStrengthClearsEntryGate() {
	s := NewRSIReversion(types.StrategyConfig{
		ID:   StrategyIDRSIReversion,
		Name: "rsi",
		Parameters: map[string]float64{
			"period":     14,
			"oversold":   30,
			"overbought": 70,
		},
	})

	// Mild gains followed by a hard selloff drives RSI deep below 30.
	closes := make([]float64, 21)
	closes[0] = 100

	for i := 1; i <= 13; i++ {
		closes[i] = closes[i-1] + 0.1
	}

	for i := 14; i <= 20; i++ {
		closes[i] = closes[i-1] - 3
	}

	bars := dailyBars("AAPL", closes)

	signal := s.GenerateSignal(bars, 20)

	suite.Equal(types.SignalTypeBuy, signal.Type)
	suite.Greater(signal.Strength, 0.5, "oversold breach must clear the 0.5 entry gate")
	suite.LessOrEqual(signal.Strength, 1.0)
}

func (suite *StrategyTestSuite) TestRSIReversionOverboughtSell() {
	s := NewRSIReversion(types.StrategyConfig{
		ID:   StrategyIDRSIReversion,
		Name: "rsi",
		Parameters: map[string]float64{
			"period":     3,
			"oversold":   30,
			"overbought": 70,
		},
	})

	// Strictly rising prices saturate RSI at 100.
	closes := []float64{100, 101, 102, 103, 104, 105}
	bars := dailyBars("AAPL", closes)

	signal := s.GenerateSignal(bars, 5)

	suite.Equal(types.SignalTypeSell, signal.Type)
	suite.InDelta(1.0, signal.Strength, 1e-9)
}

func (suite *StrategyTestSuite) TestBollingerBandsLowerBandBuy() {
	s := NewBollingerBands(types.StrategyConfig{
		ID:   StrategyIDBollingerBands,
		Name: "bollinger",
		Parameters: map[string]float64{
			"period":  5,
			"std_dev": 1.5,
		},
	})

	// Window {100,100,100,100,60}: mean 92, population stddev 16, so the
	// lower band sits at 68 and the 60 close breaks through it.
	closes := []float64{100, 100, 100, 100, 100, 100, 60}
	bars := dailyBars("AAPL", closes)

	signal := s.GenerateSignal(bars, 6)

	suite.Equal(types.SignalTypeBuy, signal.Type)
	suite.Greater(signal.Strength, 0.5)
}

func (suite *StrategyTestSuite) TestDefaultConfigsValidate() {
	for _, def := range suite.registry.List() {
		config := def.DefaultConfig()
		suite.Empty(suite.registry.Validate(config), "defaults for %s must be valid", def.ID)
	}
}

func (suite *StrategyTestSuite) TestValidateReportsAllViolations() {
	config := types.StrategyConfig{
		ID:   StrategyIDMACrossover,
		Name: "bad",
		Parameters: map[string]float64{
			"fast_period": 1,  // below schema minimum
			"slow_period": 30, // fine on its own
		},
		RiskManagement: types.RiskManagement{
			StopLoss:        0, // must be > 0
			TakeProfit:      10,
			MaxPositionSize: 50,
			MaxDrawdown:     20,
		},
	}

	violations := suite.registry.Validate(config)

	suite.GreaterOrEqual(len(violations), 2, "both the risk and the parameter violation must be reported: %v", violations)
}

func (suite *StrategyTestSuite) TestValidateFastMustBeBelowSlow() {
	def, ok := suite.registry.Get(StrategyIDMACrossover)
	suite.Require().True(ok)

	config := def.DefaultConfig()
	config.Parameters["fast_period"] = 30
	config.Parameters["slow_period"] = 30

	violations := suite.registry.Validate(config)

	suite.NotEmpty(violations)
	suite.Contains(violations[len(violations)-1], "fast_period")
}

func (suite *StrategyTestSuite) TestValidateUnknownStrategy() {
	config := types.StrategyConfig{
		ID:             "momentum_surfer",
		Name:           "unknown",
		RiskManagement: types.DefaultRiskManagement(),
	}

	violations := suite.registry.Validate(config)

	suite.Len(violations, 1)
	suite.Contains(violations[0], "momentum_surfer")
}

func (suite *StrategyTestSuite) TestBuildRejectsInvalidConfig() {
	def, ok := suite.registry.Get(StrategyIDRSIReversion)
	suite.Require().True(ok)

	config := def.DefaultConfig()
	config.Parameters["oversold"] = 60

	s, err := suite.registry.Build(config)

	suite.Nil(s)
	suite.Require().Error(err)
	suite.True(errors.IsInvalidConfigError(err))

	var invalidErr *errors.InvalidConfigError
	suite.Require().True(errors.As(err, &invalidErr))
	suite.NotEmpty(invalidErr.Violations)
}

func (suite *StrategyTestSuite) TestBuildConstructsEachStrategy() {
	for _, def := range suite.registry.List() {
		s, err := suite.registry.Build(def.DefaultConfig())
		suite.Require().NoError(err, def.ID)
		suite.NotEmpty(s.Name())
	}
}
