package reconcile

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"universe-backtest/internal/model"
)

var day0 = time.Date(2014, 3, 24, 0, 0, 0, 0, time.UTC)

func newTestReconciler(rec Recorder) *Reconciler {
	return New(Options{DefaultQuantity: 100, Logger: zerolog.Nop(), Recorder: rec})
}

func batch(idx int, syms []model.Symbol, delisted ...model.Symbol) model.DataBatch {
	t := day0.AddDate(0, 0, idx)
	bars := make([]model.Bar, 0, len(syms))
	for _, s := range syms {
		bars = append(bars, model.Bar{Symbol: s, Time: t, Close: 10})
	}
	var notices []model.DelistingNotice
	for _, s := range delisted {
		notices = append(notices, model.DelistingNotice{Symbol: s, Time: t, Kind: model.DelistingDelisted})
	}
	return model.NewDataBatch(idx, t, bars, notices)
}

func syms(s ...model.Symbol) []model.Symbol { return s }

func countFor(actions []model.LifecycleAction, sym model.Symbol) int {
	n := 0
	for _, a := range actions {
		if a.Symbol == sym {
			n++
		}
	}
	return n
}

func TestOnDataBatch_NoPendingIsNoop(t *testing.T) {
	r := newTestReconciler(nil)
	out, err := r.OnDataBatch(batch(0, syms("A")))
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.False(t, out.Deferred)
	assert.Empty(t, out.Actions)
}

func TestOnDataBatch_AppliesWhenAllAddedHaveData(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("B", "C"), syms("Y"))))
	require.True(t, r.HasPending())

	out, err := r.OnDataBatch(batch(1, syms("B", "C", "Y")))
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, []model.LifecycleAction{
		model.OpenAction("B", 100),
		model.OpenAction("C", 100),
		model.CloseAction("Y"),
	}, out.Actions)
	assert.False(t, r.HasPending())
}

func TestOnDataBatch_AtomicReadiness(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("B", "C"), nil)))

	out, err := r.OnDataBatch(batch(1, syms("B")))
	require.NoError(t, err)
	assert.True(t, out.Deferred)
	assert.Empty(t, out.Actions, "partial application must not open B alone")
	assert.True(t, r.HasPending())
	assert.Equal(t, 1, r.PendingSteps())

	out, err = r.OnDataBatch(batch(2, syms("B", "C")))
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Len(t, out.Actions, 2)
	assert.Equal(t, 0, r.PendingSteps())
}

func TestOnDataBatch_EmptyAddedAppliesImmediately(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("Y"))))

	out, err := r.OnDataBatch(batch(1, nil))
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, []model.LifecycleAction{model.CloseAction("Y")}, out.Actions)
}

func TestOnDataBatch_SuppressesCloseForDelisted(t *testing.T) {
	r := newTestReconciler(nil)
	r.OnDelistingNotice("Y")
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("Y", "Z"))))

	out, err := r.OnDataBatch(batch(1, nil))
	require.NoError(t, err)
	assert.Equal(t, []model.LifecycleAction{model.CloseAction("Z")}, out.Actions)
	assert.Equal(t, []model.Symbol{"Y"}, out.Suppressed)
}

func TestOnDataBatch_SameStepDelistingSuppressesClose(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("Y"))))

	out, err := r.OnDataBatch(batch(1, syms("Y"), "Y"))
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Empty(t, out.Actions)
	assert.Equal(t, []model.Symbol{"Y"}, out.Suppressed)
	assert.True(t, r.IsDelisted("Y"))
}

func TestOnDataBatch_WarningDoesNotDelist(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("Y"))))

	b := batch(1, nil)
	b.Delistings = []model.DelistingNotice{{Symbol: "Y", Time: b.Time, Kind: model.DelistingWarning}}
	out, err := r.OnDataBatch(b)
	require.NoError(t, err)
	assert.False(t, r.IsDelisted("Y"))
	assert.Equal(t, []model.LifecycleAction{model.CloseAction("Y")}, out.Actions)
}

func TestOnDataBatch_DelistingAppliedEvenWhenDeferred(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("D"), syms("B"))))

	out, err := r.OnDataBatch(batch(1, nil, "B"))
	require.NoError(t, err)
	assert.True(t, out.Deferred)
	assert.True(t, r.IsDelisted("B"))
}

func TestOnMembershipDelta_RejectsOverlap(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("A"), nil)))

	err := r.OnMembershipDelta(model.NewMembershipDelta(syms("X"), syms("X")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvariantViolation))

	pending, ok := r.Pending()
	require.True(t, ok, "a rejected delta must leave the previous one pending")
	assert.True(t, pending.Added.Contains("A"))
}

func TestOnMembershipDelta_LastWriteWins(t *testing.T) {
	r := newTestReconciler(nil)
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("D1"), syms("R1"))))
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("D2"), syms("R2"))))

	out, err := r.OnDataBatch(batch(1, syms("D1", "D2")))
	require.NoError(t, err)
	assert.Equal(t, []model.LifecycleAction{
		model.OpenAction("D2", 100),
		model.CloseAction("R2"),
	}, out.Actions)

	// Nothing from the first delta ever surfaces later.
	out, err = r.OnDataBatch(batch(2, syms("D1", "D2")))
	require.NoError(t, err)
	assert.Empty(t, out.Actions)
}

func TestOnMembershipDelta_PendingIsCopied(t *testing.T) {
	r := newTestReconciler(nil)
	d := model.NewMembershipDelta(syms("A"), nil)
	require.NoError(t, r.OnMembershipDelta(d))
	d.Added.Add("B")

	pending, ok := r.Pending()
	require.True(t, ok)
	assert.False(t, pending.Added.Contains("B"))
}

func TestOnDelistingNotice_IdempotentAndMonotonic(t *testing.T) {
	r := newTestReconciler(nil)
	prev := 0
	for _, s := range syms("B", "B", "C", "A", "C") {
		r.OnDelistingNotice(s)
		got := len(r.Delisted())
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, []model.Symbol{"A", "B", "C"}, r.Delisted())

	// Applying deltas never shrinks the set.
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("A"))))
	_, err := r.OnDataBatch(batch(1, nil))
	require.NoError(t, err)
	assert.Len(t, r.Delisted(), 3)
}

func TestDefaultQuantity(t *testing.T) {
	r := New(Options{Logger: zerolog.Nop()})
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("A"), nil)))
	out, err := r.OnDataBatch(batch(0, syms("A")))
	require.NoError(t, err)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, float64(DefaultQuantity), out.Actions[0].Quantity)
}

func TestSnapshot(t *testing.T) {
	r := newTestReconciler(nil)
	r.OnDelistingNotice("Z")
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("B", "A"), syms("Y"))))
	_, err := r.OnDataBatch(batch(0, nil))
	require.NoError(t, err)

	s := r.Snapshot()
	assert.True(t, s.Pending)
	assert.Equal(t, 1, s.PendingSteps)
	assert.Equal(t, []model.Symbol{"A", "B"}, s.Added)
	assert.Equal(t, []model.Symbol{"Y"}, s.Removed)
	assert.Equal(t, []model.Symbol{"Z"}, s.Delisted)
	assert.True(t, r.IsPendingRemoval("Y"))
	assert.False(t, r.IsPendingRemoval("A"))
}

// A exists from the start; B and C list together; later B is delisted and C
// is renamed to D in the same step. D has no data until the step after.
func TestScenario_SplitDelistRename(t *testing.T) {
	r := newTestReconciler(nil)
	var all []model.LifecycleAction

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("A"), nil)))
	out, err := r.OnDataBatch(batch(0, syms("A")))
	require.NoError(t, err)
	all = append(all, out.Actions...)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("B", "C"), nil)))
	out, err = r.OnDataBatch(batch(1, syms("A", "B", "C")))
	require.NoError(t, err)
	assert.Equal(t, []model.LifecycleAction{model.OpenAction("B", 100), model.OpenAction("C", 100)}, out.Actions)
	all = append(all, out.Actions...)

	out, err = r.OnDataBatch(batch(2, syms("A", "B", "C")))
	require.NoError(t, err)
	assert.Empty(t, out.Actions)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("D"), syms("B", "C"))))
	out, err = r.OnDataBatch(batch(3, syms("A", "B"), "B"))
	require.NoError(t, err)
	assert.True(t, out.Deferred, "D has no data yet")
	assert.Empty(t, out.Actions)

	out, err = r.OnDataBatch(batch(4, syms("A", "D")))
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, []model.LifecycleAction{model.OpenAction("D", 100), model.CloseAction("C")}, out.Actions)
	assert.Equal(t, []model.Symbol{"B"}, out.Suppressed)
	all = append(all, out.Actions...)

	for _, a := range all {
		if a.Symbol == "B" {
			assert.NotEqual(t, model.DirectionClose, a.Direction, "B must never be closed explicitly")
		}
	}
	assert.False(t, r.HasPending())
}

// X is added but never trades; a later delta removes it again.
func TestScenario_AddedNeverTradesThenRemoved(t *testing.T) {
	r := newTestReconciler(nil)
	var all []model.LifecycleAction

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("X"), syms("Y"))))
	for i := 0; i < 3; i++ {
		out, err := r.OnDataBatch(batch(i, syms("Y")))
		require.NoError(t, err)
		assert.True(t, out.Deferred)
		all = append(all, out.Actions...)
	}
	assert.Equal(t, 3, r.PendingSteps())

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("X"))))
	for i := 3; i < 6; i++ {
		out, err := r.OnDataBatch(batch(i, nil))
		require.NoError(t, err)
		all = append(all, out.Actions...)
	}

	assert.Zero(t, countFor(all, "X"))
	assert.False(t, r.HasPending())
}

// X stalls, two later deltas replace it before X is removed.
func TestScenario_NeverOpenedAcrossReplacementChain(t *testing.T) {
	r := newTestReconciler(nil)
	var all []model.LifecycleAction

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("X"), nil)))
	out, err := r.OnDataBatch(batch(0, nil))
	require.NoError(t, err)
	require.True(t, out.Deferred)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("Z"), nil)))
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("X", "Z"))))
	out, err = r.OnDataBatch(batch(1, nil))
	require.NoError(t, err)
	all = append(all, out.Actions...)

	assert.True(t, out.Applied)
	assert.Zero(t, countFor(all, "X"))
	assert.Zero(t, countFor(all, "Z"))
}

// X stalls and is replaced by a delta that applies; X is removed afterwards.
func TestScenario_NeverOpenedAcrossAppliedDelta(t *testing.T) {
	r := newTestReconciler(nil)
	var all []model.LifecycleAction

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("X"), nil)))
	out, err := r.OnDataBatch(batch(0, nil))
	require.NoError(t, err)
	require.True(t, out.Deferred)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("Z"), nil)))
	out, err = r.OnDataBatch(batch(1, syms("Z")))
	require.NoError(t, err)
	require.True(t, out.Applied)
	all = append(all, out.Actions...)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("X"))))
	assert.False(t, r.IsPendingRemoval("X"))
	out, err = r.OnDataBatch(batch(2, syms("Z")))
	require.NoError(t, err)
	all = append(all, out.Actions...)

	assert.Equal(t, []model.LifecycleAction{model.OpenAction("Z", 100)}, all)
}

// A symbol that stalled once but opened on a later delta is closed normally.
func TestScenario_ReaddedSymbolIsClosed(t *testing.T) {
	r := newTestReconciler(nil)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("X"), nil)))
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("Z"), nil)))
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("X"), nil)))
	out, err := r.OnDataBatch(batch(0, syms("X")))
	require.NoError(t, err)
	require.Equal(t, []model.LifecycleAction{model.OpenAction("X", 100)}, out.Actions)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(nil, syms("X"))))
	out, err = r.OnDataBatch(batch(1, nil))
	require.NoError(t, err)
	assert.Equal(t, []model.LifecycleAction{model.CloseAction("X")}, out.Actions)
}

func TestNoDuplicateActionsPerApplication(t *testing.T) {
	r := newTestReconciler(nil)
	added := syms("A", "B", "C")
	removed := syms("X", "Y")
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(added, removed)))
	out, err := r.OnDataBatch(batch(0, added))
	require.NoError(t, err)
	for _, s := range append(added, removed...) {
		assert.LessOrEqual(t, countFor(out.Actions, s), 1, "symbol %s", s)
	}
}

type fakeRecorder struct {
	opens, closes, suppressed, deferred, replaced int
	pending                                      bool
	delisted                                     int
}

func (f *fakeRecorder) ActionEmitted(d model.Direction) {
	if d == model.DirectionOpen {
		f.opens++
	} else {
		f.closes++
	}
}
func (f *fakeRecorder) CloseSuppressed(model.Symbol) { f.suppressed++ }
func (f *fakeRecorder) BatchDeferred()               { f.deferred++ }
func (f *fakeRecorder) DeltaReplaced()               { f.replaced++ }
func (f *fakeRecorder) StateChanged(pending bool, delisted int) {
	f.pending = pending
	f.delisted = delisted
}

func TestRecorderReceivesEvents(t *testing.T) {
	rec := &fakeRecorder{}
	r := newTestReconciler(rec)

	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("A"), nil)))
	require.NoError(t, r.OnMembershipDelta(model.NewMembershipDelta(syms("B"), syms("Y", "Z"))))
	assert.True(t, rec.pending)

	_, err := r.OnDataBatch(batch(0, nil))
	require.NoError(t, err)
	_, err = r.OnDataBatch(batch(1, syms("B"), "Z"))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.replaced)
	assert.Equal(t, 1, rec.deferred)
	assert.Equal(t, 1, rec.opens)
	assert.Equal(t, 1, rec.closes)
	assert.Equal(t, 1, rec.suppressed)
	assert.False(t, rec.pending)
	assert.Equal(t, 1, rec.delisted)
}
