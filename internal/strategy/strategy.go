// Package strategy contains the signal-generating strategies and the registry
// that declares and validates their parameter schemas.
package strategy

import (
	"github.com/quantpulse-lab/quantpulse/internal/types"
)

// ReasonInsufficientData is the HOLD reason emitted while indicator lookback
// windows are still unfilled. This is warm-up policy, not an error.
const ReasonInsufficientData = "insufficient data"

// Strategy derives a per-bar signal from an ordered bar series. Built-in
// strategies are pure functions of indicator output; they hold no state
// beyond memoized indicator series.
type Strategy interface {
	// Name returns the name of the strategy.
	Name() string
	// GenerateSignal computes the signal for the bar at the given index.
	// Implementations may only use bars at or before that index.
	GenerateSignal(bars []types.MarketBar, index int) types.Signal
}
