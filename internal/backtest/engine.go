package backtest

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"universe-backtest/internal/model"
	"universe-backtest/internal/reconcile"
	"universe-backtest/internal/universe"
)

type Options struct {
	// ResolveEvery runs universe resolution on every Nth step (default 1).
	ResolveEvery int
	// AllowUnexpectedData downgrades the unexpected-data consistency error to a warning.
	AllowUnexpectedData bool
	Logger              zerolog.Logger
}

type Engine struct {
	opts Options
	log  zerolog.Logger
}

func New(opts Options) *Engine {
	if opts.ResolveEvery <= 0 {
		opts.ResolveEvery = 1
	}
	return &Engine{
		opts: opts,
		log:  opts.Logger.With().Str("component", "engine").Logger(),
	}
}

// Run drives the scenario step by step: resolve the universe, deliver any
// change to the reconciler, deliver the step's data batch, and hand the
// resulting actions to the book.
func (e *Engine) Run(ctx context.Context, sc *model.Scenario, filter universe.Filter, rec *reconcile.Reconciler) (*Result, error) {
	if sc == nil {
		return nil, errors.New("scenario is nil")
	}
	if filter == nil {
		return nil, errors.New("filter is nil")
	}
	if rec == nil {
		return nil, errors.New("reconciler is nil")
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("no steps")
	}

	runID := uuid.NewString()
	log := e.log.With().Str("run_id", runID).Str("scenario", sc.Name).Logger()
	resolver := universe.NewResolver(filter, log)
	book := NewBook()

	ledger := make([]LedgerRow, 0, len(sc.Steps))
	var actions []ActionRecord

	for idx, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "step %d", idx)
		}

		row := LedgerRow{Index: idx, Time: step.Time}
		removedNow := model.NewSymbolSet()

		if idx%e.opts.ResolveEvery == 0 {
			delta, err := resolver.Resolve(universe.Context{Index: idx, Time: step.Time, Candidates: step.Candidates})
			if err != nil {
				return nil, errors.Wrapf(err, "step %d resolve universe", idx)
			}
			if !delta.IsEmpty() {
				if err := rec.OnMembershipDelta(delta); err != nil {
					return nil, errors.Wrapf(err, "step %d deliver delta", idx)
				}
				row.Added = delta.Added.Sorted()
				row.Removed = delta.Removed.Sorted()
				removedNow = delta.Removed
			}
		}

		batch := model.NewDataBatch(idx, step.Time, step.Bars, step.Delistings)
		if err := e.checkConsistency(batch, resolver, rec, removedNow); err != nil {
			return nil, errors.Wrapf(err, "step %d", idx)
		}

		out, err := rec.OnDataBatch(batch)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d apply data batch", idx)
		}

		book.Mark(batch)
		row.Delisted = batch.TerminalDelistings().Sorted()
		for _, sym := range row.Delisted {
			if book.Liquidate(sym) {
				row.Liquidated = append(row.Liquidated, sym)
			}
		}
		if err := book.Execute(batch, out.Actions); err != nil {
			return nil, errors.Wrapf(err, "step %d execute", idx)
		}

		for _, a := range out.Actions {
			actions = append(actions, ActionRecord{Index: idx, Time: step.Time, Action: a})
			switch a.Direction {
			case model.DirectionOpen:
				row.Opened = append(row.Opened, a.Symbol)
			case model.DirectionClose:
				row.Closed = append(row.Closed, a.Symbol)
			}
		}
		row.Suppressed = out.Suppressed
		row.Applied = out.Applied
		row.Deferred = out.Deferred
		row.Pending = rec.HasPending()
		row.Active = resolver.Active().Len()
		row.DataCount = len(batch.Bars)
		row.DelistedTotal = len(rec.Delisted())
		row.Holdings = book.OpenPositions()
		ledger = append(ledger, row)
	}

	res := &Result{
		ID:       runID,
		Scenario: sc.Name,
		Ledger:   ledger,
		Actions:  actions,
		Fills:    book.Fills(),
		Holdings: book.Holdings(),
		Delisted: rec.Delisted(),
		Final:    rec.Snapshot(),
	}
	log.Info().
		Int("steps", len(ledger)).
		Int("actions", len(actions)).
		Int("open_positions", book.OpenPositions()).
		Bool("pending", res.Final.Pending).
		Msg("run complete")
	return res, nil
}

// checkConsistency rejects bars for symbols the engine should not be
// receiving data for: outside the active set, not awaiting a close, not
// removed by this step's resolution, and not delisted in this same step.
func (e *Engine) checkConsistency(batch model.DataBatch, resolver *universe.Resolver, rec *reconcile.Reconciler, removedNow model.SymbolSet) error {
	delistedNow := batch.TerminalDelistings()
	for _, sym := range batch.Symbols().Sorted() {
		if resolver.Contains(sym) || rec.IsPendingRemoval(sym) || removedNow.Contains(sym) || delistedNow.Contains(sym) {
			continue
		}
		if e.opts.AllowUnexpectedData {
			e.log.Warn().Str("symbol", string(sym)).Int("step", batch.Index).Msg("data for symbol outside universe")
			continue
		}
		err := errors.Newf("received data for %s which is not in the universe", sym)
		return errors.Mark(err, model.ErrUnexpectedData)
	}
	return nil
}
