package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestCloseTradeExactToTheCent() {
	entry := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	exit := entry.AddDate(0, 0, 10)

	position := Position{
		Symbol:     "AAPL",
		Quantity:   48,
		EntryPrice: 102.50,
		EntryTime:  entry,
	}

	trade := CloseTrade("trade-1", position, 109.50, exit, 1, ExitReasonEndOfTest)

	suite.Equal("trade-1", trade.ID)
	suite.Equal("AAPL", trade.Symbol)
	suite.Equal(48.0, trade.Quantity)
	// (109.50 - 102.50) * 48 - 2*1 commission.
	suite.Equal(334.0, trade.PnL)
	suite.InDelta(334.0/4920.0*100, trade.PnLPercent, 1e-9)
	suite.Equal(10, trade.DurationDays)
	suite.Equal(ExitReasonEndOfTest, trade.ExitReason)
}

func (suite *TradeTestSuite) TestCloseTradeFloatNoiseFree() {
	position := Position{
		Symbol:     "AAPL",
		Quantity:   3,
		EntryPrice: 0.1,
		EntryTime:  time.Now(),
	}

	trade := CloseTrade("t", position, 0.3, time.Now(), 0, ExitReasonSignal)

	// 0.2*3 in binary floats drifts; the decimal path must not.
	suite.Equal(0.6, trade.PnL)
}

func (suite *TradeTestSuite) TestMarketValue() {
	position := Position{Symbol: "AAPL", Quantity: 48, EntryPrice: 100}

	suite.Equal(5256.0, position.MarketValue(109.5))
}

func (suite *TradeTestSuite) TestWriteResultRoundTrip() {
	dir := suite.T().TempDir()
	path := filepath.Join(dir, "result.yaml")

	result := BacktestResult{
		RunID:          "run-1",
		Timestamp:      time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		Strategy:       StrategyInfo{ID: "ma_crossover", Name: "Moving Average Crossover"},
		InitialCapital: 10000,
		FinalCapital:   10334,
		TotalReturn:    334,
		Trades: []Trade{{
			ID:         "t1",
			Symbol:     "AAPL",
			PnL:        334,
			ExitReason: ExitReasonEndOfTest,
		}},
	}

	suite.Require().NoError(WriteResult(path, result))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var loaded BacktestResult

	suite.Require().NoError(yaml.Unmarshal(data, &loaded))
	suite.Equal(result.RunID, loaded.RunID)
	suite.Equal(result.FinalCapital, loaded.FinalCapital)
	suite.Require().Len(loaded.Trades, 1)
	suite.Equal(ExitReasonEndOfTest, loaded.Trades[0].ExitReason)
}
