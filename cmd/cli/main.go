package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"universe-backtest/internal/analysis"
	"universe-backtest/internal/backtest"
	"universe-backtest/internal/config"
	"universe-backtest/internal/data"
	"universe-backtest/internal/model"
	"universe-backtest/internal/runner"
)

const builtinScenario = "builtin:split-rename"

var (
	cfgPath      string
	scenarioPath string
	outPath      string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Universe membership backtests",
	Long: `Runs a scenario through the universe filter and the change reconciler and
reports the lifecycle actions (OPEN/CLOSE) that were emitted at each step.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario and write the step ledger as CSV",
	Example: `  cli run --config examples/config.yaml --out results/ledger.csv
  cli run --config examples/config.yaml --scenario builtin:split-rename`,
	RunE: runRun,
}

var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Run a scenario and print one row per symbol",
	RunE:  runLifecycle,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Scenario file (overrides scenario_file), or "+builtinScenario)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	runCmd.Flags().StringVar(&outPath, "out", "results/ledger.csv", "Output CSV path")

	rootCmd.AddCommand(runCmd, lifecycleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, model.ErrInvariantViolation) || errors.Is(err, model.ErrUnexpectedData) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func execute(cmd *cobra.Command) (*backtest.Result, error) {
	if cfgPath == "" {
		return nil, errors.New("--config is required")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	src := cfg.ScenarioFile
	if scenarioPath != "" {
		src = scenarioPath
	}

	var sc *model.Scenario
	switch {
	case src == "":
		return nil, errors.New("no scenario: set scenario_file in the config or pass --scenario")
	case strings.EqualFold(src, builtinScenario):
		sc = data.SplitRenameScenario()
	default:
		if sc, err = data.LoadScenario(src); err != nil {
			return nil, err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.Info().Str("scenario", sc.Name).Int("steps", len(sc.Steps)).Str("filter", cfg.Filter.Name).Msg("running")
	return runner.Run(ctx, sc, cfg, log.Logger, nil)
}

func runRun(cmd *cobra.Command, args []string) error {
	res, err := execute(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	if err := backtest.WriteLedgerCSV(outPath, res.Ledger); err != nil {
		return err
	}

	s := analysis.ComputeSummary(res)
	fmt.Printf("Wrote %d rows to %s (run %s)\n", len(res.Ledger), outPath, res.ID)
	fmt.Printf("Opens=%d Closes=%d Suppressed=%d Liquidations=%d\n", s.Opens, s.Closes, s.Suppressed, s.Liquidations)
	fmt.Printf("Deferred steps=%d Longest deferral=%d Still pending=%v\n", s.DeferredSteps, s.LongestDeferral, s.StillPending)
	fmt.Printf("Delisted=%d Open positions=%d\n", s.Delisted, s.OpenPositions)
	return nil
}

func runLifecycle(cmd *cobra.Command, args []string) error {
	res, err := execute(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "symbol\tadded\topened\twait\tremoved\tclosed\tdelisted\tsuppressed\theld")
	for _, l := range analysis.SymbolLifecycles(res) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%v\t%g\n",
			l.Symbol,
			step(l.AddedStep),
			step(l.OpenedStep),
			l.WaitSteps,
			step(l.RemovedStep),
			step(l.ClosedStep),
			step(l.DelistedStep),
			l.Suppressed,
			l.Held,
		)
	}
	return w.Flush()
}

func step(i int) string {
	if i < 0 {
		return "-"
	}
	return fmt.Sprint(i)
}

