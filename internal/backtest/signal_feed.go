package backtest

import (
	"sort"

	"github.com/quantpulse-lab/quantpulse/internal/types"
)

// SignalFeed adapts an externally generated list of signal records (e.g.
// AI-style signals keyed by symbol and timestamp) into the per-bar signal
// contract the engine consumes. Records are filtered by confidence and
// normalized into types.Signal once, at construction; the engine loop never
// sees the raw records.
type SignalFeed struct {
	signals []types.Signal
	// next is the lowest unconsidered index; signals before it are either
	// consumed or stale.
	next     int
	consumed []bool
}

// NewSignalFeed normalizes the records with confidence at or above the given
// threshold into a timestamp-ordered signal feed.
func NewSignalFeed(records []types.AISignal, confidenceThreshold float64) *SignalFeed {
	signals := make([]types.Signal, 0, len(records))

	for _, record := range records {
		if record.Confidence < confidenceThreshold {
			continue
		}

		signals = append(signals, types.Signal{
			Time:     record.Time,
			Type:     record.Action,
			Strength: record.Confidence,
			Reason:   record.Rationale,
			Price:    record.CurrentPrice,
			Symbol:   record.Symbol,
			External: true,
		})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Time.Before(signals[j].Time)
	})

	return &SignalFeed{
		signals:  signals,
		next:     0,
		consumed: make([]bool, len(signals)),
	}
}

// Len returns the number of signals that passed the confidence filter.
func (f *SignalFeed) Len() int {
	return len(f.signals)
}

// Reset rewinds the feed so the same feed can drive repeated runs.
func (f *SignalFeed) Reset() {
	f.next = 0
	f.consumed = make([]bool, len(f.signals))
}

// Next returns the pending signal whose timestamp and symbol match the given
// bar, consuming it, or a HOLD signal when none matches. Signals whose
// timestamp has already passed are dropped; the engine only ever acts on a
// signal at its own bar.
func (f *SignalFeed) Next(bar types.MarketBar) types.Signal {
	for f.next < len(f.signals) &&
		(f.consumed[f.next] || f.signals[f.next].Time.Before(bar.Time)) {
		f.next++
	}

	for i := f.next; i < len(f.signals) && !f.signals[i].Time.After(bar.Time); i++ {
		if f.consumed[i] || f.signals[i].Symbol != bar.Symbol {
			continue
		}

		f.consumed[i] = true

		return f.signals[i]
	}

	return types.HoldSignal(bar, "no pending signal")
}
