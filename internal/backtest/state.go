package backtest

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantpulse-lab/quantpulse/internal/types"
)

// runState owns all mutable state of a single run. A run is a pure function
// of its inputs; nothing here is shared across runs, which makes concurrent
// execution of independent runs safe without locks.
type runState struct {
	cash      float64
	positions map[string]*types.Position
	// lastClose holds the most recent close per symbol for mark-to-market.
	lastClose map[string]float64
	maxEquity float64
	trades    []types.Trade
	equity    []types.EquityPoint
}

func newRunState(initialCapital float64) *runState {
	return &runState{
		cash:      initialCapital,
		positions: make(map[string]*types.Position),
		lastClose: make(map[string]float64),
		maxEquity: initialCapital,
		trades:    nil,
		equity:    nil,
	}
}

// position returns the open position for a symbol, or nil.
func (s *runState) position(symbol string) *types.Position {
	return s.positions[symbol]
}

// openPositions returns all open positions ordered by symbol, so forced
// liquidation produces a deterministic trade order.
func (s *runState) openPositions() []*types.Position {
	symbols := make([]string, 0, len(s.positions))
	for symbol := range s.positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	positions := make([]*types.Position, 0, len(symbols))
	for _, symbol := range symbols {
		positions = append(positions, s.positions[symbol])
	}

	return positions
}

// currentEquity is cash plus the mark-to-market value of all open positions.
func (s *runState) currentEquity() float64 {
	equity := decimal.NewFromFloat(s.cash)

	for symbol, pos := range s.positions {
		equity = equity.Add(decimal.NewFromFloat(pos.MarketValue(s.lastClose[symbol])))
	}

	value, _ := equity.Float64()

	return value
}

// markToMarket records the bar's close, appends an equity point, and advances
// the high-water mark. The mark never decreases, so the drawdown series is
// monotone against it.
func (s *runState) markToMarket(bar types.MarketBar) {
	s.lastClose[bar.Symbol] = bar.Close

	equity := s.currentEquity()
	if equity > s.maxEquity {
		s.maxEquity = equity
	}

	drawdown := 0.0
	if s.maxEquity > 0 {
		drawdown = (s.maxEquity - equity) / s.maxEquity * 100
	}

	s.equity = append(s.equity, types.EquityPoint{
		Time:     bar.Time,
		Equity:   equity,
		Drawdown: drawdown,
	})
}

// remark recomputes the last equity point in place. Used after forced
// liquidation, which settles at the final bar's timestamp and must be
// reflected in the final equity rather than appended as a new point.
func (s *runState) remark() {
	if len(s.equity) == 0 {
		return
	}

	equity := s.currentEquity()
	if equity > s.maxEquity {
		s.maxEquity = equity
	}

	drawdown := 0.0
	if s.maxEquity > 0 {
		drawdown = (s.maxEquity - equity) / s.maxEquity * 100
	}

	last := len(s.equity) - 1
	s.equity[last].Equity = equity
	s.equity[last].Drawdown = drawdown
}

// openPosition debits cash for quantity*fillPrice plus commission and records
// the new position.
func (s *runState) openPosition(symbol string, quantity, fillPrice, commission float64, at time.Time) {
	costDec := decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(fillPrice)).
		Add(decimal.NewFromFloat(commission))

	s.cash, _ = decimal.NewFromFloat(s.cash).Sub(costDec).Float64()
	s.positions[symbol] = &types.Position{
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: fillPrice,
		EntryTime:  at,
	}
}

// closePosition credits cash for quantity*fillPrice minus commission, removes
// the position, and appends the immutable trade record.
func (s *runState) closePosition(pos *types.Position, fillPrice float64, at time.Time, commission float64, reason types.ExitReason) {
	proceedsDec := decimal.NewFromFloat(pos.Quantity).
		Mul(decimal.NewFromFloat(fillPrice)).
		Sub(decimal.NewFromFloat(commission))

	s.cash, _ = decimal.NewFromFloat(s.cash).Add(proceedsDec).Float64()

	trade := types.CloseTrade(uuid.New().String(), *pos, fillPrice, at, commission, reason)
	s.trades = append(s.trades, trade)

	delete(s.positions, pos.Symbol)
}
