package strategy

import (
	"fmt"
	"math"

	"github.com/quantpulse-lab/quantpulse/internal/indicator"
	"github.com/quantpulse-lab/quantpulse/internal/types"
)

// BollingerBands buys when the close touches the lower band and sells when it
// touches the upper band. Strength starts at 0.5 at the band and scales with
// the distance beyond it relative to the band-to-middle spread, capped at 1.0.
type BollingerBands struct {
	period int
	stdDev float64

	barsLen int
	bands   indicator.BollingerSeries
}

// NewBollingerBands creates the band strategy from a validated config.
func NewBollingerBands(config types.StrategyConfig) *BollingerBands {
	return &BollingerBands{
		period: int(config.Param("period", 20)),
		stdDev: config.Param("std_dev", 2.0),
	}
}

// Name returns the name of the strategy.
func (s *BollingerBands) Name() string {
	return fmt.Sprintf("bollinger_bands_%d_%.1f", s.period, s.stdDev)
}

// GenerateSignal implements Strategy.
func (s *BollingerBands) GenerateSignal(bars []types.MarketBar, index int) types.Signal {
	s.prepare(bars)

	bar := bars[index]

	lower := s.bands.Lower[index]
	middle := s.bands.Middle[index]
	upper := s.bands.Upper[index]

	if !indicator.Valid(lower) || !indicator.Valid(middle) || !indicator.Valid(upper) {
		return types.HoldSignal(bar, ReasonInsufficientData)
	}

	spread := middle - lower

	if bar.Close <= lower {
		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeBuy,
			Strength: bandStrength(lower-bar.Close, spread),
			Reason:   fmt.Sprintf("close below lower band (close=%.2f lower=%.2f)", bar.Close, lower),
			Price:    bar.Close,
			Symbol:   bar.Symbol,
		}
	}

	if bar.Close >= upper {
		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeSell,
			Strength: bandStrength(bar.Close-upper, spread),
			Reason:   fmt.Sprintf("close above upper band (close=%.2f upper=%.2f)", bar.Close, upper),
			Price:    bar.Close,
			Symbol:   bar.Symbol,
		}
	}

	return types.HoldSignal(bar, "close inside bands")
}

// bandStrength maps the distance past a band into (0.5, 1.0]. A collapsed
// band (zero spread, flat prices) yields the baseline 0.5.
func bandStrength(distance, spread float64) float64 {
	if spread <= 0 {
		return 0.5
	}

	return math.Min(1.0, 0.5+distance/spread)
}

func (s *BollingerBands) prepare(bars []types.MarketBar) {
	if s.barsLen == len(bars) && s.bands.Middle != nil {
		return
	}

	s.bands = indicator.Bollinger(types.Closes(bars), s.period, s.stdDev)
	s.barsLen = len(bars)
}
