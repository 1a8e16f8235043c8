package analysis

import (
	"time"

	"universe-backtest/internal/backtest"
	"universe-backtest/internal/model"
)

// Summary is a run-level roll-up of the ledger.
type Summary struct {
	Scenario string
	StartUTC time.Time
	EndUTC   time.Time
	Steps    int

	UniverseChanges int
	Opens           int
	Closes          int
	Suppressed      int
	Liquidations    int

	// DeferredSteps counts steps on which a pending delta waited for data.
	DeferredSteps int
	// LongestDeferral is the longest run of consecutive deferred steps.
	LongestDeferral int
	// StillPending is true if the run ended with an unapplied delta.
	StillPending bool

	Delisted      int
	OpenPositions int
}

func ComputeSummary(res *backtest.Result) Summary {
	s := Summary{}
	if res == nil || len(res.Ledger) == 0 {
		return s
	}
	s.Scenario = res.Scenario
	s.Steps = len(res.Ledger)
	s.StartUTC = res.Ledger[0].Time.UTC()
	s.EndUTC = res.Ledger[len(res.Ledger)-1].Time.UTC()

	run := 0
	for _, r := range res.Ledger {
		if len(r.Added) > 0 || len(r.Removed) > 0 {
			s.UniverseChanges++
		}
		s.Opens += len(r.Opened)
		s.Closes += len(r.Closed)
		s.Suppressed += len(r.Suppressed)
		s.Liquidations += len(r.Liquidated)
		if r.Deferred {
			s.DeferredSteps++
			run++
			if run > s.LongestDeferral {
				s.LongestDeferral = run
			}
		} else {
			run = 0
		}
	}
	s.StillPending = res.Final.Pending
	s.Delisted = len(res.Delisted)
	s.OpenPositions = len(res.Holdings)
	return s
}

// CountActions tallies emitted actions by direction.
func CountActions(res *backtest.Result) map[model.Direction]int {
	out := map[model.Direction]int{}
	if res == nil {
		return out
	}
	for _, a := range res.Actions {
		out[a.Action.Direction]++
	}
	return out
}
