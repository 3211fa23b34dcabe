package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantpulse-lab/quantpulse/internal/types"
)

type DataSourceTestSuite struct {
	suite.Suite
	csvPath string
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

func (suite *DataSourceTestSuite) SetupTest() {
	dir := suite.T().TempDir()
	suite.csvPath = filepath.Join(dir, "bars.csv")

	content := "symbol,time,open,high,low,close,volume\n"
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		price := 100.0 + float64(i)
		content += fmt.Sprintf("AAPL,%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			start.AddDate(0, 0, i).Format("2006-01-02 15:04:05"),
			price, price+1, price-1, price+0.5, 1000+i)
	}

	suite.Require().NoError(os.WriteFile(suite.csvPath, []byte(content), 0644))
}

func (suite *DataSourceTestSuite) TestLoadAndReadAll() {
	source, err := NewBarSource(nil)
	suite.Require().NoError(err)

	defer source.Close()

	suite.Require().NoError(source.Load(suite.csvPath))

	bars, err := source.ReadAll(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)

	suite.Require().Len(bars, 10)
	suite.Equal("AAPL", bars[0].Symbol)
	suite.InDelta(100.0, bars[0].Open, 1e-9)
	suite.InDelta(100.5, bars[0].Close, 1e-9)

	for i := 1; i < len(bars); i++ {
		suite.True(bars[i-1].Time.Before(bars[i].Time))
	}
}

func (suite *DataSourceTestSuite) TestCountWithBounds() {
	source, err := NewBarSource(nil)
	suite.Require().NoError(err)

	defer source.Close()

	suite.Require().NoError(source.Load(suite.csvPath))

	all, err := source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(10, all)

	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	bounded, err := source.Count(optional.Some(start), optional.Some(end))
	suite.Require().NoError(err)
	suite.Equal(4, bounded)

	tail, err := source.Count(optional.Some(start), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(8, tail)
}

func (suite *DataSourceTestSuite) TestLoadRejectsMissingFile() {
	source, err := NewBarSource(nil)
	suite.Require().NoError(err)

	defer source.Close()

	suite.Error(source.Load(filepath.Join(suite.T().TempDir(), "missing.csv")))
}

func (suite *DataSourceTestSuite) TestResultStoreRoundTrip() {
	store, err := NewResultStore(nil)
	suite.Require().NoError(err)

	defer store.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result := types.BacktestResult{
		RunID: "run-1",
		Trades: []types.Trade{
			{
				ID:           "t1",
				Symbol:       "AAPL",
				EntryTime:    start,
				ExitTime:     start.AddDate(0, 0, 5),
				EntryPrice:   100,
				ExitPrice:    105,
				Quantity:     10,
				PnL:          50,
				PnLPercent:   5,
				DurationDays: 5,
				ExitReason:   types.ExitReasonSignal,
			},
			{
				ID:         "t2",
				Symbol:     "MSFT",
				EntryTime:  start,
				ExitTime:   start.AddDate(0, 0, 8),
				PnL:        -20,
				ExitReason: types.ExitReasonStopLoss,
			},
		},
		EquityCurve: []types.EquityPoint{
			{Time: start, Equity: 10000, Drawdown: 0},
			{Time: start.AddDate(0, 0, 1), Equity: 10050, Drawdown: 0},
		},
	}

	suite.Require().NoError(store.Append(result))

	count, err := store.TradeCount()
	suite.Require().NoError(err)
	suite.Equal(2, count)

	outDir := filepath.Join(suite.T().TempDir(), "results")
	suite.Require().NoError(store.Write(outDir))

	for _, name := range []string{"trades.parquet", "equity_curve.parquet"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		suite.Require().NoError(err)
		suite.Greater(info.Size(), int64(0))
	}
}
