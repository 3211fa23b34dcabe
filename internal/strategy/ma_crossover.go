package strategy

import (
	"fmt"

	"github.com/quantpulse-lab/quantpulse/internal/indicator"
	"github.com/quantpulse-lab/quantpulse/internal/types"
)

// crossoverStrength is the fixed conviction of a golden or death cross.
const crossoverStrength = 0.8

// MACrossover buys on a golden cross (fast SMA crosses from at-or-below to
// above the slow SMA) and sells on the symmetric death cross.
type MACrossover struct {
	fastPeriod int
	slowPeriod int

	// memoized indicator series; recomputed when the bar count changes.
	// SMA at index i depends only on bars at or before i, so computing the
	// whole series up front introduces no look-ahead.
	barsLen int
	fast    []float64
	slow    []float64
}

// NewMACrossover creates the crossover strategy from a validated config.
func NewMACrossover(config types.StrategyConfig) *MACrossover {
	return &MACrossover{
		fastPeriod: int(config.Param("fast_period", 10)),
		slowPeriod: int(config.Param("slow_period", 30)),
	}
}

// Name returns the name of the strategy.
func (s *MACrossover) Name() string {
	return fmt.Sprintf("ma_crossover_%d_%d", s.fastPeriod, s.slowPeriod)
}

// GenerateSignal implements Strategy.
func (s *MACrossover) GenerateSignal(bars []types.MarketBar, index int) types.Signal {
	s.prepare(bars)

	bar := bars[index]

	if index < 1 ||
		!indicator.Valid(s.fast[index]) || !indicator.Valid(s.slow[index]) ||
		!indicator.Valid(s.fast[index-1]) || !indicator.Valid(s.slow[index-1]) {
		return types.HoldSignal(bar, ReasonInsufficientData)
	}

	fast, slow := s.fast[index], s.slow[index]
	prevFast, prevSlow := s.fast[index-1], s.slow[index-1]

	if prevFast <= prevSlow && fast > slow {
		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeBuy,
			Strength: crossoverStrength,
			Reason:   fmt.Sprintf("golden cross (fast=%.2f slow=%.2f)", fast, slow),
			Price:    bar.Close,
			Symbol:   bar.Symbol,
		}
	}

	if prevFast >= prevSlow && fast < slow {
		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeSell,
			Strength: crossoverStrength,
			Reason:   fmt.Sprintf("death cross (fast=%.2f slow=%.2f)", fast, slow),
			Price:    bar.Close,
			Symbol:   bar.Symbol,
		}
	}

	return types.HoldSignal(bar, "no crossover")
}

func (s *MACrossover) prepare(bars []types.MarketBar) {
	if s.barsLen == len(bars) && s.fast != nil {
		return
	}

	closes := types.Closes(bars)
	s.fast = indicator.SMA(closes, s.fastPeriod)
	s.slow = indicator.SMA(closes, s.slowPeriod)
	s.barsLen = len(bars)
}
