package backtest

import (
	"time"

	"universe-backtest/internal/model"
	"universe-backtest/internal/reconcile"
)

// LedgerRow is one row of per-step output.
// This is the primary artifact for "what happened" in a run.
type LedgerRow struct {
	Index int
	Time  time.Time

	// Universe change delivered this step (empty when unchanged).
	Added   []model.Symbol
	Removed []model.Symbol

	// Terminal delisting notices bundled with this step's data.
	Delisted   []model.Symbol
	Liquidated []model.Symbol

	Opened     []model.Symbol
	Closed     []model.Symbol
	Suppressed []model.Symbol

	Applied  bool
	Deferred bool
	Pending  bool

	Active        int
	DataCount     int
	DelistedTotal int
	Holdings      int
}

// ActionRecord is a lifecycle action stamped with the step that emitted it.
type ActionRecord struct {
	Index  int
	Time   time.Time
	Action model.LifecycleAction
}

type Result struct {
	ID       string
	Scenario string
	Ledger   []LedgerRow
	Actions  []ActionRecord
	Fills    []Fill
	Holdings map[model.Symbol]float64
	Delisted []model.Symbol
	Final    reconcile.State
}
