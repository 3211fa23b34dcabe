package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyInfo contains metadata about the strategy that produced a result.
type StrategyInfo struct {
	// ID is the registry identifier of the strategy (e.g. "ma_crossover")
	ID string `yaml:"id" json:"id"`
	// Name is the human-readable name of the strategy
	Name string `yaml:"name" json:"name"`
}

// PerformanceStats holds the aggregate statistics derived from the trade list
// and equity curve of a finished run.
type PerformanceStats struct {
	TotalTrades   int `yaml:"total_trades" json:"total_trades"`
	WinningTrades int `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int `yaml:"losing_trades" json:"losing_trades"`
	// WinRate is winning trades over total trades, in percent. Zero when no
	// trades were taken.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// ProfitFactor is gross profit over gross loss. +Inf when there are
	// profits but no losses; zero when there are neither.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	AvgWin       float64 `yaml:"avg_win" json:"avg_win"`
	AvgLoss      float64 `yaml:"avg_loss" json:"avg_loss"`
	LargestWin   float64 `yaml:"largest_win" json:"largest_win"`
	LargestLoss  float64 `yaml:"largest_loss" json:"largest_loss"`
	// SharpeRatio is computed from per-bar equity returns and annualized by
	// sqrt(252) regardless of bar granularity. Zero when return standard
	// deviation is zero.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// MaxDrawdownPercent is the maximum value of the per-bar drawdown series.
	MaxDrawdownPercent float64 `yaml:"max_drawdown_percent" json:"max_drawdown_percent"`
}

// BacktestResult is the final report of a run. It is produced once,
// atomically, at the end of a successful run; a failed run produces no
// partial result.
type BacktestResult struct {
	// RunID is the unique identifier for this backtest run.
	RunID string `yaml:"run_id" json:"run_id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Strategy contains metadata about the strategy that generated this result.
	Strategy StrategyInfo `yaml:"strategy" json:"strategy"`

	InitialCapital     float64 `yaml:"initial_capital" json:"initial_capital"`
	FinalCapital       float64 `yaml:"final_capital" json:"final_capital"`
	TotalReturn        float64 `yaml:"total_return" json:"total_return"`
	TotalReturnPercent float64 `yaml:"total_return_percent" json:"total_return_percent"`
	// BuyAndHoldPnL is the benchmark profit of deploying all initial capital
	// at the first bar's close and holding until the last.
	BuyAndHoldPnL float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`

	Performance PerformanceStats `yaml:"performance" json:"performance"`
	Trades      []Trade          `yaml:"trades" json:"trades"`
	EquityCurve []EquityPoint    `yaml:"equity_curve" json:"equity_curve"`
}

// WriteResult writes a backtest result to a YAML file.
func WriteResult(path string, result BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
