package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitReasonSignal     ExitReason = "SIGNAL"
	ExitReasonStopLoss   ExitReason = "STOP_LOSS"
	ExitReasonTakeProfit ExitReason = "TAKE_PROFIT"
	ExitReasonEndOfTest  ExitReason = "END_OF_TEST"
	ExitReasonAISignal   ExitReason = "AI_SIGNAL"
)

// Position represents engine-internal open exposure in one symbol. At most
// one position per symbol is open at any time.
type Position struct {
	Symbol     string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Quantity   float64   `yaml:"quantity" json:"quantity" csv:"quantity"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	EntryTime  time.Time `yaml:"entry_time" json:"entry_time" csv:"entry_time"`
}

// MarketValue returns the mark-to-market value of the position at the given
// price.
func (p *Position) MarketValue(price float64) float64 {
	value, _ := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(price)).Float64()

	return value
}

// Trade is a closed round-trip. It is appended exactly once when a position
// closes and never mutated afterward.
type Trade struct {
	ID           string     `yaml:"id" json:"id" csv:"id"`
	Symbol       string     `yaml:"symbol" json:"symbol" csv:"symbol"`
	EntryTime    time.Time  `yaml:"entry_time" json:"entry_time" csv:"entry_time"`
	ExitTime     time.Time  `yaml:"exit_time" json:"exit_time" csv:"exit_time"`
	EntryPrice   float64    `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice    float64    `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	Quantity     float64    `yaml:"quantity" json:"quantity" csv:"quantity"`
	PnL          float64    `yaml:"pnl" json:"pnl" csv:"pnl"`
	PnLPercent   float64    `yaml:"pnl_percent" json:"pnl_percent" csv:"pnl_percent"`
	DurationDays int        `yaml:"duration_days" json:"duration_days" csv:"duration_days"`
	ExitReason   ExitReason `yaml:"exit_reason" json:"exit_reason" csv:"exit_reason"`
}

// CloseTrade builds the immutable trade record for a closed position.
// PnL includes both per-side commissions:
//
//	pnl = (exitPrice - entryPrice) * quantity - 2*commission
//
// Decimal arithmetic keeps the round-trip math exact to the cent.
func CloseTrade(id string, position Position, exitPrice float64, exitTime time.Time, commission float64, reason ExitReason) Trade {
	qtyDec := decimal.NewFromFloat(position.Quantity)
	grossDec := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(position.EntryPrice)).Mul(qtyDec)
	pnlDec := grossDec.Sub(decimal.NewFromFloat(commission).Mul(decimal.NewFromInt(2)))
	pnl, _ := pnlDec.Float64()

	costDec := decimal.NewFromFloat(position.EntryPrice).Mul(qtyDec)

	pnlPercent := 0.0
	if !costDec.IsZero() {
		pnlPercent, _ = pnlDec.Div(costDec).Mul(decimal.NewFromInt(100)).Float64()
	}

	return Trade{
		ID:           id,
		Symbol:       position.Symbol,
		EntryTime:    position.EntryTime,
		ExitTime:     exitTime,
		EntryPrice:   position.EntryPrice,
		ExitPrice:    exitPrice,
		Quantity:     position.Quantity,
		PnL:          pnl,
		PnLPercent:   pnlPercent,
		DurationDays: int(exitTime.Sub(position.EntryTime).Hours() / 24),
		ExitReason:   reason,
	}
}

// EquityPoint is a portfolio value snapshot taken once per bar processed.
type EquityPoint struct {
	Time time.Time `yaml:"time" json:"time" csv:"time"`
	// Equity is cash plus the mark-to-market value of all open positions.
	Equity float64 `yaml:"equity" json:"equity" csv:"equity"`
	// Drawdown is the percentage decline from the running high-water mark.
	Drawdown float64 `yaml:"drawdown" json:"drawdown" csv:"drawdown"`
}
