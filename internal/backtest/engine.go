// Package backtest drives the bar-by-bar simulation of a strategy or an
// external signal feed over a historical bar series and derives the
// performance report.
package backtest

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantpulse-lab/quantpulse/internal/logger"
	"github.com/quantpulse-lab/quantpulse/internal/strategy"
	"github.com/quantpulse-lab/quantpulse/internal/types"
	"github.com/quantpulse-lab/quantpulse/pkg/errors"
)

// minActionableStrength is the signal strength gate for entries and signal
// exits. Signals at or below it are recorded intent, not action.
const minActionableStrength = 0.5

// ProgressCallback reports true bars-processed progress. Returning an error
// aborts the run; the run then produces no result.
type ProgressCallback func(current, total int) error

// Engine replays a bar series through a strategy or signal feed, simulating
// capital and position accounting under the configured risk policy.
//
// An Engine performs no I/O and owns all of its mutable state per run, so
// independent engines may run concurrently without coordination.
type Engine struct {
	config   types.BacktestConfig
	risk     types.RiskManagement
	strategy strategy.Strategy // nil in signal-feed mode
	feed     *SignalFeed       // nil in strategy mode
	info     types.StrategyInfo
	bars     []types.MarketBar
	log      *logger.Logger
}

// NewEngine creates an engine that derives signals from the given strategy.
// The config and risk policy are validated up front; violations are returned
// as a single InvalidConfigError carrying the full list.
func NewEngine(strat strategy.Strategy, risk types.RiskManagement, config types.BacktestConfig, log *logger.Logger) (*Engine, error) {
	if err := validateRunInputs(config, risk); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		config:   config,
		risk:     risk,
		strategy: strat,
		feed:     nil,
		info:     types.StrategyInfo{ID: strat.Name(), Name: strat.Name()},
		bars:     nil,
		log:      log,
	}, nil
}

// NewSignalFeedEngine creates an engine driven by an externally generated
// signal feed instead of a strategy. Positions are keyed by symbol, so the
// feed may span multiple symbols.
func NewSignalFeedEngine(feed *SignalFeed, risk types.RiskManagement, config types.BacktestConfig, log *logger.Logger) (*Engine, error) {
	if err := validateRunInputs(config, risk); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		config:   config,
		risk:     risk,
		strategy: nil,
		feed:     feed,
		info:     types.StrategyInfo{ID: "signal_feed", Name: "External Signal Feed"},
		bars:     nil,
		log:      log,
	}, nil
}

func validateRunInputs(config types.BacktestConfig, risk types.RiskManagement) error {
	violations := config.Validate()
	violations = append(violations, risk.Validate()...)

	if len(violations) > 0 {
		return errors.NewInvalidConfigError(violations)
	}

	return nil
}

// SetData filters the bars to the configured [start, end] window (inclusive)
// and sorts them ascending by timestamp. An empty filtered set is not an
// error here; Run reports it, keeping configuration errors and data errors
// distinguishable.
func (e *Engine) SetData(bars []types.MarketBar) {
	filtered := make([]types.MarketBar, 0, len(bars))

	for _, bar := range bars {
		if e.config.StartTime.IsSome() && bar.Time.Before(e.config.StartTime.Unwrap()) {
			continue
		}

		if e.config.EndTime.IsSome() && bar.Time.After(e.config.EndTime.Unwrap()) {
			continue
		}

		filtered = append(filtered, bar)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Time.Before(filtered[j].Time)
	})

	e.bars = filtered
	e.log.Debug("Backtest data set",
		zap.Int("total_bars", len(bars)),
		zap.Int("filtered_bars", len(filtered)),
	)
}

// Run executes the simulation loop and returns the final report. The result
// is all-or-nothing: cancellation or a callback error discards all partial
// state and returns only the error.
func (e *Engine) Run(ctx context.Context, onProgress optional.Option[ProgressCallback]) (types.BacktestResult, error) {
	if len(e.bars) == 0 {
		var start, end time.Time

		if e.config.StartTime.IsSome() {
			start = e.config.StartTime.Unwrap()
		}

		if e.config.EndTime.IsSome() {
			end = e.config.EndTime.Unwrap()
		}

		return types.BacktestResult{}, errors.NewNoDataError(start, end,
			"no bars in the configured date range")
	}

	if e.feed != nil {
		e.feed.Reset()
	}

	state := newRunState(e.config.InitialCapital)
	total := len(e.bars)

	// Bar 0 only seeds initial state.
	state.markToMarket(e.bars[0])

	for i := 1; i < total; i++ {
		select {
		case <-ctx.Done():
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeRunCancelled, "backtest cancelled", ctx.Err())
		default:
		}

		bar := e.bars[i]

		signal := e.nextSignal(bar, i)
		state.markToMarket(bar)
		e.applySignal(state, bar, signal)
		e.applyRiskExits(state, bar)

		if onProgress.IsSome() {
			if err := onProgress.Unwrap()(i, total-1); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeRunCancelled, "progress callback aborted run", err)
			}
		}
	}

	e.forceCloseAll(state)

	return e.buildResult(state), nil
}

func (e *Engine) nextSignal(bar types.MarketBar, index int) types.Signal {
	if e.strategy != nil {
		return e.strategy.GenerateSignal(e.bars, index)
	}

	return e.feed.Next(bar)
}

// applySignal handles entry on BUY and exit on SELL, both gated on signal
// strength above the actionable threshold.
func (e *Engine) applySignal(state *runState, bar types.MarketBar, signal types.Signal) {
	if signal.Strength <= minActionableStrength {
		return
	}

	switch signal.Type {
	case types.SignalTypeBuy:
		if state.position(bar.Symbol) != nil {
			return
		}

		e.enterPosition(state, bar, signal)
	case types.SignalTypeSell:
		pos := state.position(bar.Symbol)
		if pos == nil {
			return
		}

		reason := types.ExitReasonSignal
		if signal.External {
			reason = types.ExitReasonAISignal
		}

		fill := e.sellFillPrice(bar.Close)
		state.closePosition(pos, fill, bar.Time, e.config.Commission, reason)
		e.log.Debug("Position closed on signal",
			zap.String("symbol", bar.Symbol),
			zap.Float64("fill", fill),
			zap.String("reason", signal.Reason),
		)
	case types.SignalTypeHold:
	}
}

// enterPosition sizes the entry from the max-position-size share of cash,
// applies buy-side slippage, floors to a whole share count after reserving
// the commission, and opens the position if anything remains. Flooring can
// leave small unspent cash; that matches the documented allocator policy.
func (e *Engine) enterPosition(state *runState, bar types.MarketBar, signal types.Signal) {
	budget := math.Min(state.cash, state.cash*e.risk.MaxPositionSize/100)
	fill := e.buyFillPrice(bar.Close)

	quantity := math.Floor((budget - e.config.Commission) / fill)
	if quantity <= 0 {
		e.log.Debug("Entry skipped, budget too small",
			zap.String("symbol", bar.Symbol),
			zap.Float64("budget", budget),
			zap.Float64("fill", fill),
		)

		return
	}

	state.openPosition(bar.Symbol, quantity, fill, e.config.Commission, bar.Time)
	e.log.Debug("Position opened",
		zap.String("symbol", bar.Symbol),
		zap.Float64("quantity", quantity),
		zap.Float64("fill", fill),
		zap.Float64("strength", signal.Strength),
		zap.String("reason", signal.Reason),
	)
}

// applyRiskExits checks stop-loss then take-profit against the bar's close.
// The order is load-bearing: when both thresholds are breached on the same
// bar, the position closes as a stop-loss.
func (e *Engine) applyRiskExits(state *runState, bar types.MarketBar) {
	pos := state.position(bar.Symbol)
	if pos == nil {
		return
	}

	stopPrice := pos.EntryPrice * (1 - e.risk.StopLoss/100)
	takePrice := pos.EntryPrice * (1 + e.risk.TakeProfit/100)

	switch {
	case bar.Close <= stopPrice:
		state.closePosition(pos, e.sellFillPrice(bar.Close), bar.Time, e.config.Commission, types.ExitReasonStopLoss)
		e.log.Debug("Stop loss hit",
			zap.String("symbol", bar.Symbol),
			zap.Float64("close", bar.Close),
			zap.Float64("stop_price", stopPrice),
		)
	case bar.Close >= takePrice:
		state.closePosition(pos, e.sellFillPrice(bar.Close), bar.Time, e.config.Commission, types.ExitReasonTakeProfit)
		e.log.Debug("Take profit hit",
			zap.String("symbol", bar.Symbol),
			zap.Float64("close", bar.Close),
			zap.Float64("take_price", takePrice),
		)
	}
}

// forceCloseAll liquidates every still-open position at its symbol's final
// observed close, so every deployed dollar is accounted for in the trade list.
func (e *Engine) forceCloseAll(state *runState) {
	lastBar := e.bars[len(e.bars)-1]
	open := state.openPositions()

	for _, pos := range open {
		close := state.lastClose[pos.Symbol]
		state.closePosition(pos, e.sellFillPrice(close), lastBar.Time, e.config.Commission, types.ExitReasonEndOfTest)
		e.log.Debug("Position force-closed at end of data",
			zap.String("symbol", pos.Symbol),
			zap.Float64("close", close),
		)
	}

	// Liquidation costs settle into the final equity point.
	if len(open) > 0 {
		state.remark()
	}
}

func (e *Engine) buyFillPrice(price float64) float64 {
	return price * (1 + e.config.SlippagePercent/100)
}

func (e *Engine) sellFillPrice(price float64) float64 {
	return price * (1 - e.config.SlippagePercent/100)
}

// buildResult assembles the final report. It is only called after the loop
// has completed in full; no partially populated result ever escapes Run.
func (e *Engine) buildResult(state *runState) types.BacktestResult {
	finalEquity := state.equity[len(state.equity)-1].Equity

	totalReturn := finalEquity - e.config.InitialCapital
	totalReturnPercent := totalReturn / e.config.InitialCapital * 100

	firstClose := e.bars[0].Close
	lastClose := e.bars[len(e.bars)-1].Close

	buyAndHold := 0.0
	if firstClose > 0 {
		buyAndHold = (lastClose - firstClose) / firstClose * e.config.InitialCapital
	}

	return types.BacktestResult{
		RunID:              uuid.New().String(),
		Timestamp:          time.Now(),
		Strategy:           e.info,
		InitialCapital:     e.config.InitialCapital,
		FinalCapital:       finalEquity,
		TotalReturn:        totalReturn,
		TotalReturnPercent: totalReturnPercent,
		BuyAndHoldPnL:      buyAndHold,
		Performance:        Analyze(state.trades, state.equity),
		Trades:             state.trades,
		EquityCurve:        state.equity,
	}
}
