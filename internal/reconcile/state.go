package reconcile

import "universe-backtest/internal/model"

// State is a read-only view for logging and diagnostics.
type State struct {
	Pending      bool           `json:"pending"`
	PendingSteps int            `json:"pending_steps"`
	Added        []model.Symbol `json:"added,omitempty"`
	Removed      []model.Symbol `json:"removed,omitempty"`
	Delisted     []model.Symbol `json:"delisted"`
}

func (r *Reconciler) HasPending() bool { return r.pending != nil }

// Pending returns a copy of the pending delta.
func (r *Reconciler) Pending() (model.MembershipDelta, bool) {
	if r.pending == nil {
		return model.MembershipDelta{}, false
	}
	return r.pending.Clone(), true
}

// PendingSteps is the number of batches the pending delta has been deferred.
func (r *Reconciler) PendingSteps() int { return r.pendingSteps }

func (r *Reconciler) IsDelisted(sym model.Symbol) bool { return r.delisted.Contains(sym) }

// IsPendingRemoval reports whether sym is removed by the pending delta and is
// therefore still expected to produce data until the delta applies.
func (r *Reconciler) IsPendingRemoval(sym model.Symbol) bool {
	return r.pending != nil && r.pending.Removed.Contains(sym)
}

func (r *Reconciler) Delisted() []model.Symbol { return r.delisted.Sorted() }

func (r *Reconciler) Snapshot() State {
	s := State{
		Pending:      r.pending != nil,
		PendingSteps: r.pendingSteps,
		Delisted:     r.delisted.Sorted(),
	}
	if r.pending != nil {
		s.Added = r.pending.Added.Sorted()
		s.Removed = r.pending.Removed.Sorted()
	}
	return s
}
