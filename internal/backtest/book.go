package backtest

import (
	"github.com/cockroachdb/errors"

	"universe-backtest/internal/model"
)

// Fill is one execution against the book. Quantity is signed: positive buys,
// negative sells.
type Fill struct {
	Index    int
	Symbol   model.Symbol
	Quantity float64
	Price    float64
	Reason   string
}

const (
	ReasonOpen      = "OPEN"
	ReasonClose     = "CLOSE"
	ReasonDelisting = "DELISTING"
)

// Book is a minimal stand-in for the execution boundary and portfolio. It
// fills at the latest close and liquidates delisted symbols the way the
// platform's own delisting handling would.
type Book struct {
	positions map[model.Symbol]float64
	last      map[model.Symbol]float64
	index     int
	fills     []Fill
}

func NewBook() *Book {
	return &Book{
		positions: map[model.Symbol]float64{},
		last:      map[model.Symbol]float64{},
	}
}

// Mark records the batch's closes as the latest known prices.
func (b *Book) Mark(batch model.DataBatch) {
	b.index = batch.Index
	for sym, bar := range batch.Bars {
		b.last[sym] = bar.Close
	}
}

func (b *Book) Execute(batch model.DataBatch, actions []model.LifecycleAction) error {
	for _, a := range actions {
		switch a.Direction {
		case model.DirectionOpen:
			bar, ok := batch.Bars[a.Symbol]
			if !ok {
				return errors.Newf("open %s without data", a.Symbol)
			}
			b.positions[a.Symbol] += a.Quantity
			b.fills = append(b.fills, Fill{Index: b.index, Symbol: a.Symbol, Quantity: a.Quantity, Price: bar.Close, Reason: ReasonOpen})
		case model.DirectionClose:
			b.flatten(a.Symbol, ReasonClose)
		default:
			return errors.Newf("unknown direction %q for %s", a.Direction, a.Symbol)
		}
	}
	return nil
}

// Liquidate zeroes a delisted position. It reports whether anything was held.
func (b *Book) Liquidate(sym model.Symbol) bool {
	return b.flatten(sym, ReasonDelisting)
}

func (b *Book) flatten(sym model.Symbol, reason string) bool {
	qty := b.positions[sym]
	delete(b.positions, sym)
	if qty == 0 {
		return false
	}
	b.fills = append(b.fills, Fill{Index: b.index, Symbol: sym, Quantity: -qty, Price: b.last[sym], Reason: reason})
	return true
}

func (b *Book) Position(sym model.Symbol) float64 { return b.positions[sym] }

func (b *Book) OpenPositions() int { return len(b.positions) }

func (b *Book) Holdings() map[model.Symbol]float64 {
	out := make(map[model.Symbol]float64, len(b.positions))
	for k, v := range b.positions {
		out[k] = v
	}
	return out
}

func (b *Book) Fills() []Fill {
	return append([]Fill(nil), b.fills...)
}
