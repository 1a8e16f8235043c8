package handlers

import (
	"universe-backtest/internal/analysis"
	"universe-backtest/internal/api/models"
	"universe-backtest/internal/backtest"
	"universe-backtest/internal/model"
)

func buildResponse(res *backtest.Result, includeLedger bool) models.RunResponse {
	resp := models.RunResponse{
		ID:      res.ID,
		Status:  "completed",
		Summary: buildSummary(analysis.ComputeSummary(res)),
		Actions: make([]models.ActionRow, 0, len(res.Actions)),
		Final: models.FinalState{
			Pending:  res.Final.Pending,
			Added:    symbolStrings(res.Final.Added),
			Removed:  symbolStrings(res.Final.Removed),
			Delisted: symbolStrings(res.Final.Delisted),
			Holdings: make(map[string]float64, len(res.Holdings)),
		},
	}
	if resp.Summary.StillPending {
		resp.Status = "completed_with_pending"
	}
	for _, a := range res.Actions {
		resp.Actions = append(resp.Actions, models.ActionRow{
			Index:     a.Index,
			Time:      a.Time,
			Symbol:    string(a.Action.Symbol),
			Direction: string(a.Action.Direction),
			Quantity:  a.Action.Quantity,
		})
	}
	for sym, qty := range res.Holdings {
		resp.Final.Holdings[string(sym)] = qty
	}
	if includeLedger {
		resp.Ledger = buildLedger(res.Ledger)
	}
	return resp
}

func buildSummary(s analysis.Summary) models.RunSummary {
	return models.RunSummary{
		Scenario:        s.Scenario,
		Window:          models.TimeWindow{Start: s.StartUTC, End: s.EndUTC},
		Steps:           s.Steps,
		UniverseChanges: s.UniverseChanges,
		Opens:           s.Opens,
		Closes:          s.Closes,
		Suppressed:      s.Suppressed,
		Liquidations:    s.Liquidations,
		DeferredSteps:   s.DeferredSteps,
		LongestDeferral: s.LongestDeferral,
		StillPending:    s.StillPending,
		Delisted:        s.Delisted,
		OpenPositions:   s.OpenPositions,
	}
}

func buildLedger(rows []backtest.LedgerRow) []models.LedgerRow {
	out := make([]models.LedgerRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.LedgerRow{
			Index:         r.Index,
			Time:          r.Time,
			Added:         symbolStrings(r.Added),
			Removed:       symbolStrings(r.Removed),
			Delisted:      symbolStrings(r.Delisted),
			Liquidated:    symbolStrings(r.Liquidated),
			Opened:        symbolStrings(r.Opened),
			Closed:        symbolStrings(r.Closed),
			Suppressed:    symbolStrings(r.Suppressed),
			Applied:       r.Applied,
			Deferred:      r.Deferred,
			Pending:       r.Pending,
			Active:        r.Active,
			DataCount:     r.DataCount,
			DelistedTotal: r.DelistedTotal,
			Holdings:      r.Holdings,
		})
	}
	return out
}

func symbolStrings(syms []model.Symbol) []string {
	if len(syms) == 0 {
		return nil
	}
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = string(s)
	}
	return out
}
