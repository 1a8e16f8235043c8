package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"universe-backtest/internal/model"
)

func TestBook_OpenCloseLiquidate(t *testing.T) {
	b := NewBook()
	t0 := time.Date(2014, 3, 25, 0, 0, 0, 0, time.UTC)
	batch := model.NewDataBatch(0, t0, []model.Bar{{Symbol: "A", Close: 10}, {Symbol: "B", Close: 20}}, nil)
	b.Mark(batch)
	require.NoError(t, b.Execute(batch, []model.LifecycleAction{
		model.OpenAction("A", 100),
		model.OpenAction("B", 50),
	}))
	assert.Equal(t, 2, b.OpenPositions())

	next := model.NewDataBatch(1, t0.AddDate(0, 0, 1), []model.Bar{{Symbol: "A", Close: 11}}, nil)
	b.Mark(next)
	require.NoError(t, b.Execute(next, []model.LifecycleAction{model.CloseAction("A")}))
	assert.True(t, b.Liquidate("B"))
	assert.False(t, b.Liquidate("B"), "nothing left to liquidate")
	assert.Zero(t, b.OpenPositions())

	fills := b.Fills()
	require.Len(t, fills, 4)
	assert.Equal(t, Fill{Index: 1, Symbol: "A", Quantity: -100, Price: 11, Reason: ReasonClose}, fills[2])
	assert.Equal(t, Fill{Index: 1, Symbol: "B", Quantity: -50, Price: 20, Reason: ReasonDelisting}, fills[3])
}

func TestBook_OpenWithoutDataFails(t *testing.T) {
	b := NewBook()
	batch := model.NewDataBatch(0, time.Time{}, nil, nil)
	assert.Error(t, b.Execute(batch, []model.LifecycleAction{model.OpenAction("A", 1)}))
}

func TestBook_CloseFlatIsNoop(t *testing.T) {
	b := NewBook()
	batch := model.NewDataBatch(0, time.Time{}, nil, nil)
	require.NoError(t, b.Execute(batch, []model.LifecycleAction{model.CloseAction("A")}))
	assert.Empty(t, b.Fills())
}
