// Package runner wires a config, a scenario and the engine together. The
// CLI, the demo and the HTTP API all run scenarios through it.
package runner

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"universe-backtest/internal/backtest"
	"universe-backtest/internal/config"
	"universe-backtest/internal/model"
	"universe-backtest/internal/reconcile"
)

// Run validates cfg, builds its filter and reconciler, and runs sc. rec may
// be nil.
func Run(ctx context.Context, sc *model.Scenario, cfg *config.Config, logger zerolog.Logger, rec reconcile.Recorder) (*backtest.Result, error) {
	if cfg == nil {
		return nil, errors.Mark(errors.New("config is nil"), config.ErrInvalidConfig)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter, err := cfg.BuildFilter()
	if err != nil {
		return nil, err
	}
	r := reconcile.New(cfg.Reconciler.ToOptions(logger, rec))
	engine := backtest.New(cfg.Engine.ToOptions(logger))
	return engine.Run(ctx, sc, filter, r)
}
