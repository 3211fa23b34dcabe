package strategy

import (
	"fmt"
	"math"

	"github.com/quantpulse-lab/quantpulse/internal/indicator"
	"github.com/quantpulse-lab/quantpulse/internal/types"
)

// RSIReversion buys when the RSI drops to the oversold threshold and sells
// when it reaches the overbought threshold. Signal strength starts at 0.5 at
// the threshold and grows with the distance beyond it, capped at 1.0, so
// that any breach clears the engine's 0.5 entry gate.
type RSIReversion struct {
	period     int
	oversold   float64
	overbought float64

	barsLen int
	rsi     []float64
}

// NewRSIReversion creates the mean-reversion strategy from a validated config.
func NewRSIReversion(config types.StrategyConfig) *RSIReversion {
	return &RSIReversion{
		period:     int(config.Param("period", 14)),
		oversold:   config.Param("oversold", 30),
		overbought: config.Param("overbought", 70),
	}
}

// Name returns the name of the strategy.
func (s *RSIReversion) Name() string {
	return fmt.Sprintf("rsi_reversion_%d", s.period)
}

// GenerateSignal implements Strategy.
func (s *RSIReversion) GenerateSignal(bars []types.MarketBar, index int) types.Signal {
	s.prepare(bars)

	bar := bars[index]

	value := s.rsi[index]
	if !indicator.Valid(value) {
		return types.HoldSignal(bar, ReasonInsufficientData)
	}

	if value <= s.oversold {
		strength := math.Min(1.0, 0.5+(s.oversold-value)/s.oversold)

		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeBuy,
			Strength: strength,
			Reason:   fmt.Sprintf("RSI oversold (value=%.2f)", value),
			Price:    bar.Close,
			Symbol:   bar.Symbol,
		}
	}

	if value >= s.overbought {
		strength := math.Min(1.0, 0.5+(value-s.overbought)/(100-s.overbought))

		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeSell,
			Strength: strength,
			Reason:   fmt.Sprintf("RSI overbought (value=%.2f)", value),
			Price:    bar.Close,
			Symbol:   bar.Symbol,
		}
	}

	return types.HoldSignal(bar, "RSI in neutral range")
}

func (s *RSIReversion) prepare(bars []types.MarketBar) {
	if s.barsLen == len(bars) && s.rsi != nil {
		return
	}

	s.rsi = indicator.RSI(types.Closes(bars), s.period)
	s.barsLen = len(bars)
}
