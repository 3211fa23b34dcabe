package types

import "time"

type SignalType string

const (
	// SignalTypeBuy tells the engine to open a long position
	SignalTypeBuy SignalType = "BUY"
	// SignalTypeSell tells the engine to close the open position
	SignalTypeSell SignalType = "SELL"
	// SignalTypeHold tells the engine to take no action
	SignalTypeHold SignalType = "HOLD"
)

// Signal is a recommendation at one bar. Both strategy-derived and externally
// supplied signals are normalized into this single shape at the boundary, so
// the engine loop never branches on signal provenance.
type Signal struct {
	// Time is the time of the signal
	Time time.Time `yaml:"time" json:"time"`
	// Type is the type of the signal
	Type SignalType `yaml:"type" json:"type"`
	// Strength is the conviction of the signal in [0, 1]
	Strength float64 `yaml:"strength" json:"strength"`
	// Reason is the reason for the signal
	Reason string `yaml:"reason" json:"reason"`
	// Price is the reference price at signal time
	Price float64 `yaml:"price" json:"price"`
	// Symbol is the symbol of the signal
	Symbol string `yaml:"symbol" json:"symbol"`
	// External marks signals that came from an outside feed rather than a
	// built-in strategy; trades closed by such signals record a distinct
	// exit reason.
	External bool `yaml:"external,omitempty" json:"external,omitempty"`
}

// HoldSignal returns a HOLD signal with strength zero for the given bar.
func HoldSignal(bar MarketBar, reason string) Signal {
	return Signal{
		Time:     bar.Time,
		Type:     SignalTypeHold,
		Strength: 0,
		Reason:   reason,
		Price:    bar.Close,
		Symbol:   bar.Symbol,
	}
}

// AISignal is one record of an externally generated signal feed. Records are
// filtered by confidence and normalized into Signal before the engine ever
// sees them.
type AISignal struct {
	Symbol       string     `yaml:"symbol" json:"symbol"`
	Action       SignalType `yaml:"action" json:"action"`
	Confidence   float64    `yaml:"confidence" json:"confidence"`
	TargetPrice  float64    `yaml:"target_price" json:"target_price"`
	CurrentPrice float64    `yaml:"current_price" json:"current_price"`
	Time         time.Time  `yaml:"time" json:"time"`
	Rationale    string     `yaml:"rationale" json:"rationale"`
}
