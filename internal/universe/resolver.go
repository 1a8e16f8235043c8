package universe

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"universe-backtest/internal/model"
)

// Resolver owns the active set and recomputes it from a filter. It stands in
// for the platform's universe-resolution process.
type Resolver struct {
	filter Filter
	active model.SymbolSet
	log    zerolog.Logger
}

func NewResolver(f Filter, logger zerolog.Logger) *Resolver {
	return &Resolver{
		filter: f,
		active: model.NewSymbolSet(),
		log:    logger.With().Str("component", "resolver").Str("filter", f.Name()).Logger(),
	}
}

// Resolve runs the filter and replaces the active set with its output,
// returning the change. On error the active set is left untouched.
func (r *Resolver) Resolve(ctx Context) (model.MembershipDelta, error) {
	selected, err := r.filter.Select(ctx)
	if err != nil {
		return model.MembershipDelta{}, errors.Wrapf(err, "filter %s at step %d", r.filter.Name(), ctx.Index)
	}
	next := model.NewSymbolSet(selected...)
	delta := model.Diff(r.active, next)
	if !delta.IsEmpty() {
		r.log.Info().
			Int("step", ctx.Index).
			Strs("added", delta.Added.Strings()).
			Strs("removed", delta.Removed.Strings()).
			Int("active", next.Len()).
			Msg("universe changed")
	}
	r.active = next
	return delta, nil
}

func (r *Resolver) Contains(sym model.Symbol) bool { return r.active.Contains(sym) }

// Active returns a copy of the active set.
func (r *Resolver) Active() model.SymbolSet { return r.active.Clone() }
