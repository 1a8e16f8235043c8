package models

import "universe-backtest/internal/data"

// RunRequest represents the request body for running a scenario.
// Exactly one of ScenarioID (a preset under the scenario directory) or
// Scenario (inline) must be set.
type RunRequest struct {
	ScenarioID string             `json:"scenario_id,omitempty"`
	Scenario   *data.ScenarioFile `json:"scenario,omitempty"`
	Config     RunConfig          `json:"config"`
	Options    RunOptions         `json:"options,omitempty"`
}

// RunConfig mirrors config.Config without the scenario path.
type RunConfig struct {
	Reconciler ReconcilerConfig `json:"reconciler,omitempty"`
	Engine     EngineConfig     `json:"engine,omitempty"`
	Filter     FilterConfig     `json:"filter"`
}

type ReconcilerConfig struct {
	DefaultQuantity float64 `json:"default_quantity,omitempty"`
}

type EngineConfig struct {
	ResolveEvery        int  `json:"resolve_every,omitempty"`
	AllowUnexpectedData bool `json:"allow_unexpected_data,omitempty"`
}

type FilterConfig struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// RunOptions contains optional run parameters
type RunOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// CompareRunRequest runs one scenario under several configurations.
type CompareRunRequest struct {
	ScenarioID string             `json:"scenario_id,omitempty"`
	Scenario   *data.ScenarioFile `json:"scenario,omitempty"`
	Variations []RunVariation     `json:"variations" binding:"required,min=1"`
}

type RunVariation struct {
	Name   string    `json:"name" binding:"required"`
	Config RunConfig `json:"config"`
}
