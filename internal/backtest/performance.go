package backtest

import (
	"math"

	"github.com/quantpulse-lab/quantpulse/internal/types"
)

// tradingDaysPerYear annualizes the Sharpe ratio. The factor is applied
// regardless of the bar's actual time granularity; this matches the
// historical behavior and is a documented simplification, not a bug.
const tradingDaysPerYear = 252

// Analyze derives the aggregate statistics from a finished run's trade list
// and equity curve. All numeric edge cases (no trades, zero volatility, zero
// gross loss) are guarded policies, not errors.
func Analyze(trades []types.Trade, curve []types.EquityPoint) types.PerformanceStats {
	stats := types.PerformanceStats{}
	stats.TotalTrades = len(trades)

	grossProfit := 0.0
	grossLoss := 0.0

	for _, trade := range trades {
		switch {
		case trade.PnL > 0:
			stats.WinningTrades++
			grossProfit += trade.PnL

			if trade.PnL > stats.LargestWin {
				stats.LargestWin = trade.PnL
			}
		case trade.PnL < 0:
			stats.LosingTrades++
			grossLoss += -trade.PnL

			if trade.PnL < stats.LargestLoss {
				stats.LargestLoss = trade.PnL
			}
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	}

	switch {
	case grossLoss > 0:
		stats.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		stats.ProfitFactor = math.Inf(1)
	default:
		stats.ProfitFactor = 0
	}

	if stats.WinningTrades > 0 {
		stats.AvgWin = grossProfit / float64(stats.WinningTrades)
	}

	if stats.LosingTrades > 0 {
		stats.AvgLoss = -grossLoss / float64(stats.LosingTrades)
	}

	stats.SharpeRatio = sharpeRatio(curve)

	for _, point := range curve {
		if point.Drawdown > stats.MaxDrawdownPercent {
			stats.MaxDrawdownPercent = point.Drawdown
		}
	}

	return stats
}

// sharpeRatio computes mean/stddev of per-bar equity returns, annualized by
// sqrt(252). Zero when the return standard deviation is zero.
func sharpeRatio(curve []types.EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)

	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}

		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0

	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}

	variance /= float64(len(returns))

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}

	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}
