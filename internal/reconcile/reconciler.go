package reconcile

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"universe-backtest/internal/model"
)

// DefaultQuantity is the Open size used when Options.DefaultQuantity is unset.
const DefaultQuantity = 100

// Recorder receives state-machine events. metrics.Registry implements it.
type Recorder interface {
	ActionEmitted(d model.Direction)
	CloseSuppressed(sym model.Symbol)
	BatchDeferred()
	DeltaReplaced()
	StateChanged(pending bool, delisted int)
}

type Options struct {
	DefaultQuantity float64
	Logger          zerolog.Logger
	Recorder        Recorder
}

// Outcome describes what one OnDataBatch call did.
type Outcome struct {
	// Applied is true when a pending delta was consumed by this batch.
	Applied bool
	// Deferred is true when a delta is pending but some added symbol has no data yet.
	Deferred bool
	Actions  []model.LifecycleAction
	// Suppressed lists removed symbols whose Close was skipped because they are delisted.
	Suppressed []model.Symbol
}

// Reconciler holds at most one pending membership delta and releases it once
// every added symbol has produced data. It is not safe for concurrent use; the
// engine drives it from a single goroutine.
type Reconciler struct {
	qty      float64
	log      zerolog.Logger
	recorder Recorder

	pending      *model.MembershipDelta
	pendingSteps int
	delisted     model.SymbolSet

	// opened holds symbols with an emitted Open and no Close since.
	opened model.SymbolSet
	// unopened holds symbols added by a discarded delta and never opened.
	unopened model.SymbolSet
}

func New(opts Options) *Reconciler {
	if opts.DefaultQuantity <= 0 {
		opts.DefaultQuantity = DefaultQuantity
	}
	return &Reconciler{
		qty:      opts.DefaultQuantity,
		log:      opts.Logger.With().Str("component", "reconciler").Logger(),
		recorder: opts.Recorder,
		delisted: model.NewSymbolSet(),
		opened:   model.NewSymbolSet(),
		unopened: model.NewSymbolSet(),
	}
}

// OnDelistingNotice records sym as permanently delisted. Idempotent.
func (r *Reconciler) OnDelistingNotice(sym model.Symbol) {
	if r.delisted.Contains(sym) {
		return
	}
	r.delisted.Add(sym)
	r.log.Info().Str("symbol", string(sym)).Msg("symbol delisted")
	r.stateChanged()
}

// OnMembershipDelta makes delta the pending delta, discarding any unapplied
// one. Symbols added by a discarded delta were never opened; later removals of
// them are dropped, however many deltas were replaced or applied in between.
func (r *Reconciler) OnMembershipDelta(delta model.MembershipDelta) error {
	if err := delta.Validate(); err != nil {
		return errors.Wrap(err, "reconcile: membership delta")
	}
	next := delta.Clone()
	if r.pending != nil {
		prev := r.pending
		for sym := range prev.Added {
			if !r.opened.Contains(sym) {
				r.unopened.Add(sym)
			}
		}
		r.log.Warn().
			Strs("discarded_added", prev.Added.Strings()).
			Strs("discarded_removed", prev.Removed.Strings()).
			Int("waited_batches", r.pendingSteps).
			Msg("replacing unapplied membership delta")
		if r.recorder != nil {
			r.recorder.DeltaReplaced()
		}
	}
	for _, sym := range next.Removed.Sorted() {
		if r.unopened.Contains(sym) {
			next.Removed.Remove(sym)
			r.unopened.Remove(sym)
			r.log.Debug().Str("symbol", string(sym)).Msg("dropping removal of never-opened symbol")
		}
	}
	r.pending = &next
	r.pendingSteps = 0
	r.log.Debug().
		Strs("added", next.Added.Strings()).
		Strs("removed", next.Removed.Strings()).
		Msg("membership delta pending")
	r.stateChanged()
	return nil
}

// OnDataBatch applies the batch's terminal delistings, then releases the
// pending delta if every added symbol has data in batch.
func (r *Reconciler) OnDataBatch(batch model.DataBatch) (Outcome, error) {
	for _, n := range batch.Delistings {
		if n.Terminal() {
			r.OnDelistingNotice(n.Symbol)
		} else {
			r.log.Info().Str("symbol", string(n.Symbol)).Time("time", n.Time).Msg("delisting warning")
		}
	}

	if r.pending == nil {
		return Outcome{}, nil
	}
	delta := r.pending

	for _, sym := range delta.Added.Sorted() {
		if !batch.HasData(sym) {
			r.pendingSteps++
			r.log.Debug().
				Str("waiting_on", string(sym)).
				Int("step", batch.Index).
				Int("waited_batches", r.pendingSteps).
				Msg("membership delta deferred")
			if r.recorder != nil {
				r.recorder.BatchDeferred()
			}
			return Outcome{Deferred: true}, nil
		}
	}

	out := Outcome{Applied: true}
	for _, sym := range delta.Added.Sorted() {
		out.Actions = append(out.Actions, model.OpenAction(sym, r.qty))
	}
	for _, sym := range delta.Removed.Sorted() {
		if r.delisted.Contains(sym) {
			out.Suppressed = append(out.Suppressed, sym)
			continue
		}
		out.Actions = append(out.Actions, model.CloseAction(sym))
	}
	if err := checkUnique(out.Actions); err != nil {
		return Outcome{}, err
	}

	r.pending = nil
	r.pendingSteps = 0

	for _, a := range out.Actions {
		if a.Direction == model.DirectionOpen {
			r.opened.Add(a.Symbol)
			r.unopened.Remove(a.Symbol)
		} else {
			r.opened.Remove(a.Symbol)
		}
		r.log.Info().
			Str("symbol", string(a.Symbol)).
			Str("direction", string(a.Direction)).
			Float64("quantity", a.Quantity).
			Int("step", batch.Index).
			Msg("lifecycle action")
		if r.recorder != nil {
			r.recorder.ActionEmitted(a.Direction)
		}
	}
	for _, sym := range out.Suppressed {
		r.opened.Remove(sym)
		r.log.Info().Str("symbol", string(sym)).Int("step", batch.Index).Msg("close suppressed for delisted symbol")
		if r.recorder != nil {
			r.recorder.CloseSuppressed(sym)
		}
	}
	r.stateChanged()
	return out, nil
}

func checkUnique(actions []model.LifecycleAction) error {
	seen := model.NewSymbolSet()
	for _, a := range actions {
		if seen.Contains(a.Symbol) {
			err := errors.Newf("reconcile: two actions for %s in one application", a.Symbol)
			return errors.Mark(err, model.ErrInvariantViolation)
		}
		seen.Add(a.Symbol)
	}
	return nil
}

func (r *Reconciler) stateChanged() {
	if r.recorder != nil {
		r.recorder.StateChanged(r.pending != nil, r.delisted.Len())
	}
}
