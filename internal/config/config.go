package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"universe-backtest/internal/backtest"
	"universe-backtest/internal/reconcile"
	"universe-backtest/internal/universe"
)

// ErrInvalidConfig marks errors from Validate and BuildFilter.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: path to a scenario file. Relative paths are resolved against
	// the config file's directory first.
	ScenarioFile string           `yaml:"scenario_file"`
	Reconciler   ReconcilerConfig `yaml:"reconciler"`
	Engine       EngineConfig     `yaml:"engine"`
	Filter       FilterConfig     `yaml:"filter"`
}

type ReconcilerConfig struct {
	// DefaultQuantity is the unit count for every Open action.
	DefaultQuantity float64 `yaml:"default_quantity"`
}

type EngineConfig struct {
	ResolveEvery        int  `yaml:"resolve_every"`
	AllowUnexpectedData bool `yaml:"allow_unexpected_data"`
}

type FilterConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads config and resolves the scenario path, but does not
// validate. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if c.ScenarioFile != "" && !filepath.IsAbs(c.ScenarioFile) {
		// Prefer interpreting relative paths as relative to the config file directory,
		// but fall back to the provided path (relative to cwd) if that doesn't exist.
		cand := filepath.Join(filepath.Dir(path), c.ScenarioFile)
		if _, err := os.Stat(cand); err == nil {
			c.ScenarioFile = cand
		}
	}
	return &c, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Reconciler.DefaultQuantity == 0 {
		c.Reconciler.DefaultQuantity = reconcile.DefaultQuantity
	}
	if c.Engine.ResolveEvery == 0 {
		c.Engine.ResolveEvery = 1
	}
	if c.Filter.Name == "" {
		c.Filter.Name = "all"
	}
}

func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Reconciler.DefaultQuantity <= 0 {
		return errors.New("reconciler.default_quantity must be > 0")
	}
	if c.Engine.ResolveEvery <= 0 {
		return errors.New("engine.resolve_every must be > 0")
	}
	if c.Filter.Name == "" {
		return errors.New("filter.name is required")
	}
	if _, err := c.BuildFilter(); err != nil {
		return errors.Wrap(err, "filter config invalid")
	}
	return nil
}

func (c *Config) BuildFilter() (universe.Filter, error) {
	f, err := universe.Build(c.Filter.Name, c.Filter.Params)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidConfig)
	}
	return f, nil
}

func (r ReconcilerConfig) ToOptions(logger zerolog.Logger, rec reconcile.Recorder) reconcile.Options {
	return reconcile.Options{
		DefaultQuantity: r.DefaultQuantity,
		Logger:          logger,
		Recorder:        rec,
	}
}

func (e EngineConfig) ToOptions(logger zerolog.Logger) backtest.Options {
	return backtest.Options{
		ResolveEvery:        e.ResolveEvery,
		AllowUnexpectedData: e.AllowUnexpectedData,
		Logger:              logger,
	}
}

// MergeEngine overlays non-zero fields from override onto base.
// This is used when a request carries engine overrides on top of a base config.
func MergeEngine(base, override EngineConfig) EngineConfig {
	out := base
	if override.ResolveEvery != 0 {
		out.ResolveEvery = override.ResolveEvery
	}
	if override.AllowUnexpectedData {
		out.AllowUnexpectedData = true
	}
	return out
}
