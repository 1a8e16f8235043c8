package backtest

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	"universe-backtest/internal/model"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"index",
		"time",
		"added",
		"removed",
		"delisted",
		"liquidated",
		"opened",
		"closed",
		"suppressed",
		"applied",
		"deferred",
		"pending",
		"active",
		"data_count",
		"delisted_total",
		"holdings",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			joinSymbols(r.Added),
			joinSymbols(r.Removed),
			joinSymbols(r.Delisted),
			joinSymbols(r.Liquidated),
			joinSymbols(r.Opened),
			joinSymbols(r.Closed),
			joinSymbols(r.Suppressed),
			strconv.FormatBool(r.Applied),
			strconv.FormatBool(r.Deferred),
			strconv.FormatBool(r.Pending),
			strconv.Itoa(r.Active),
			strconv.Itoa(r.DataCount),
			strconv.Itoa(r.DelistedTotal),
			strconv.Itoa(r.Holdings),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func joinSymbols(syms []model.Symbol) string {
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = string(s)
	}
	return strings.Join(parts, ";")
}
