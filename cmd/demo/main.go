package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"universe-backtest/internal/backtest"
	"universe-backtest/internal/config"
	"universe-backtest/internal/data"
	"universe-backtest/internal/model"
	"universe-backtest/internal/runner"
)

var (
	cfgPath string
	qty     float64
	outCSV  string
	debug   bool
)

// Demo:
// - Build the split / delist / rename scenario in memory
// - Run it through the universe filter and the change reconciler
// - Print what happened at each step
var rootCmd = &cobra.Command{
	Use:          "demo",
	Short:        "Run the built-in split / delist / rename scenario and print each step",
	SilenceUsage: true,
	RunE:         runDemo,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "Path to YAML config (optional; scenario_file is ignored)")
	rootCmd.Flags().Float64Var(&qty, "qty", 100, "Quantity for OPEN actions when no config is given")
	rootCmd.Flags().StringVar(&outCSV, "out", "", "Optional path to write ledger CSV")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Log reconciler decisions")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg := &config.Config{
		Reconciler: config.ReconcilerConfig{DefaultQuantity: qty},
		Filter:     config.FilterConfig{Name: "all"},
	}
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	sc := data.SplitRenameScenario()
	res, err := runner.Run(cmd.Context(), sc, cfg, log.Logger, nil)
	if err != nil {
		return err
	}

	fmt.Printf("scenario %s, filter %s, %d steps\n\n", sc.Name, cfg.Filter.Name, len(res.Ledger))
	byStep := map[int][]model.LifecycleAction{}
	for _, a := range res.Actions {
		byStep[a.Index] = append(byStep[a.Index], a.Action)
	}
	for _, row := range res.Ledger {
		fmt.Printf("%s  %s\n", row.Time.Format("2006-01-02"), describe(row))
		for _, a := range byStep[row.Index] {
			if a.Direction == model.DirectionOpen {
				fmt.Printf("    OPEN  %-6s qty=%g\n", a.Symbol, a.Quantity)
			} else {
				fmt.Printf("    CLOSE %-6s\n", a.Symbol)
			}
		}
		for _, sym := range row.Suppressed {
			fmt.Printf("    skip  %-6s close suppressed (delisted)\n", sym)
		}
	}

	fmt.Println("\nfinal holdings:")
	for _, sym := range model.NewSymbolSet(symbolsOf(res.Holdings)...).Sorted() {
		fmt.Printf("    %-6s %g\n", sym, res.Holdings[sym])
	}

	if outCSV != "" {
		if err := backtest.WriteLedgerCSV(outCSV, res.Ledger); err != nil {
			return err
		}
		fmt.Printf("\nwrote ledger to %s\n", outCSV)
	}
	return nil
}

func describe(row backtest.LedgerRow) string {
	var parts []string
	if len(row.Added) > 0 || len(row.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("delta +%v -%v", row.Added, row.Removed))
	}
	if len(row.Delisted) > 0 {
		parts = append(parts, fmt.Sprintf("delisted %v", row.Delisted))
	}
	switch {
	case row.Deferred:
		parts = append(parts, "deferred")
	case row.Applied:
		parts = append(parts, "applied")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func symbolsOf(m map[model.Symbol]float64) []model.Symbol {
	out := make([]model.Symbol, 0, len(m))
	for sym := range m {
		out = append(out, sym)
	}
	return out
}
