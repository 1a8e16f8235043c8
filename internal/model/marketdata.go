package model

import "time"

// Bar is one observation for a symbol at a step.
type Bar struct {
	Symbol Symbol    `json:"symbol"`
	Time   time.Time `json:"time"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// DelistingKind distinguishes advance warnings from the terminal notice.
type DelistingKind string

const (
	DelistingWarning  DelistingKind = "WARNING"
	DelistingDelisted DelistingKind = "DELISTED"
)

type DelistingNotice struct {
	Symbol Symbol        `json:"symbol"`
	Time   time.Time     `json:"time"`
	Kind   DelistingKind `json:"kind"`
}

func (n DelistingNotice) Terminal() bool { return n.Kind == DelistingDelisted }

// DataBatch is everything the engine delivers for one step: fresh bars plus
// any delisting notices bundled with them.
type DataBatch struct {
	Index      int
	Time       time.Time
	Bars       map[Symbol]Bar
	Delistings []DelistingNotice
}

func NewDataBatch(index int, t time.Time, bars []Bar, delistings []DelistingNotice) DataBatch {
	b := DataBatch{
		Index:      index,
		Time:       t,
		Bars:       make(map[Symbol]Bar, len(bars)),
		Delistings: delistings,
	}
	for _, bar := range bars {
		b.Bars[bar.Symbol] = bar
	}
	return b
}

// HasData reports whether sym produced an observation in this batch.
func (b DataBatch) HasData(sym Symbol) bool {
	_, ok := b.Bars[sym]
	return ok
}

func (b DataBatch) Symbols() SymbolSet {
	out := make(SymbolSet, len(b.Bars))
	for sym := range b.Bars {
		out.Add(sym)
	}
	return out
}

// TerminalDelistings returns the symbols with a DELISTED notice in this batch.
func (b DataBatch) TerminalDelistings() SymbolSet {
	out := NewSymbolSet()
	for _, n := range b.Delistings {
		if n.Terminal() {
			out.Add(n.Symbol)
		}
	}
	return out
}
