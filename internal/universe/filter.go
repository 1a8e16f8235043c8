package universe

import (
	"time"

	"universe-backtest/internal/model"
)

// Context is what a filter sees at one evaluation point.
type Context struct {
	Index      int
	Time       time.Time
	Candidates []model.Candidate
}

// Filter maps a candidate snapshot to the symbols that should be active.
// Implementations must be pure: same input, same output, no side effects.
// A returned error is fatal to the evaluation.
type Filter interface {
	Name() string
	Select(ctx Context) ([]model.Symbol, error)
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(ctx Context) ([]model.Symbol, error)

func (f FilterFunc) Name() string { return "func" }

func (f FilterFunc) Select(ctx Context) ([]model.Symbol, error) { return f(ctx) }

// AllFilter keeps every candidate.
type AllFilter struct{}

func (AllFilter) Name() string { return "all" }

func (AllFilter) Select(ctx Context) ([]model.Symbol, error) {
	out := make([]model.Symbol, 0, len(ctx.Candidates))
	for _, c := range ctx.Candidates {
		out = append(out, c.Symbol)
	}
	return out, nil
}

// ListFilter keeps candidates that appear in a fixed allowlist.
type ListFilter struct {
	Symbols []model.Symbol
}

func (f *ListFilter) Name() string { return "list" }

func (f *ListFilter) Select(ctx Context) ([]model.Symbol, error) {
	allowed := model.NewSymbolSet(f.Symbols...)
	var out []model.Symbol
	for _, c := range ctx.Candidates {
		if allowed.Contains(c.Symbol) {
			out = append(out, c.Symbol)
		}
	}
	return out, nil
}
