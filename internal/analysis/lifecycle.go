package analysis

import (
	"sort"

	"universe-backtest/internal/backtest"
	"universe-backtest/internal/model"
)

// SymbolLifecycle traces one symbol through a run. Step fields are -1 when
// the event never happened.
type SymbolLifecycle struct {
	Symbol       model.Symbol
	AddedStep    int
	OpenedStep   int
	RemovedStep  int
	ClosedStep   int
	DelistedStep int
	// Suppressed is true if the symbol's close was skipped as delisted.
	Suppressed bool
	// WaitSteps is OpenedStep - AddedStep for symbols that opened.
	WaitSteps int
	Held      float64
}

// SymbolLifecycles builds one entry per symbol seen in the ledger, ranked by
// the step it was added (never-added last), then by symbol.
func SymbolLifecycles(res *backtest.Result) []SymbolLifecycle {
	if res == nil {
		return nil
	}
	by := map[model.Symbol]*SymbolLifecycle{}
	get := func(sym model.Symbol) *SymbolLifecycle {
		if l, ok := by[sym]; ok {
			return l
		}
		l := &SymbolLifecycle{Symbol: sym, AddedStep: -1, OpenedStep: -1, RemovedStep: -1, ClosedStep: -1, DelistedStep: -1}
		by[sym] = l
		return l
	}
	first := func(dst *int, step int) {
		if *dst < 0 {
			*dst = step
		}
	}

	for _, r := range res.Ledger {
		for _, s := range r.Added {
			first(&get(s).AddedStep, r.Index)
		}
		for _, s := range r.Removed {
			first(&get(s).RemovedStep, r.Index)
		}
		for _, s := range r.Opened {
			first(&get(s).OpenedStep, r.Index)
		}
		for _, s := range r.Closed {
			first(&get(s).ClosedStep, r.Index)
		}
		for _, s := range r.Delisted {
			first(&get(s).DelistedStep, r.Index)
		}
		for _, s := range r.Suppressed {
			get(s).Suppressed = true
		}
	}

	out := make([]SymbolLifecycle, 0, len(by))
	for sym, l := range by {
		if l.OpenedStep >= 0 && l.AddedStep >= 0 {
			l.WaitSteps = l.OpenedStep - l.AddedStep
		}
		l.Held = res.Holdings[sym]
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].AddedStep, out[j].AddedStep
		if (ai < 0) != (aj < 0) {
			return aj < 0
		}
		if ai != aj {
			return ai < aj
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
