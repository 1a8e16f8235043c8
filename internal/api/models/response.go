package models

import "time"

// RunResponse represents the response from a scenario run
type RunResponse struct {
	ID      string      `json:"id"`
	Status  string      `json:"status"`
	Summary RunSummary  `json:"summary"`
	Actions []ActionRow `json:"actions"`
	Final   FinalState  `json:"final"`
	Ledger  []LedgerRow `json:"ledger,omitempty"`
}

// RunSummary contains aggregated run results
type RunSummary struct {
	Scenario        string     `json:"scenario"`
	Window          TimeWindow `json:"window"`
	Steps           int        `json:"steps"`
	UniverseChanges int        `json:"universe_changes"`
	Opens           int        `json:"opens"`
	Closes          int        `json:"closes"`
	Suppressed      int        `json:"suppressed_closes"`
	Liquidations    int        `json:"delisting_liquidations"`
	DeferredSteps   int        `json:"deferred_steps"`
	LongestDeferral int        `json:"longest_deferral"`
	StillPending    bool       `json:"still_pending"`
	Delisted        int        `json:"delisted"`
	OpenPositions   int        `json:"open_positions"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ActionRow is one emitted lifecycle action.
type ActionRow struct {
	Index     int       `json:"index"`
	Time      time.Time `json:"time"`
	Symbol    string    `json:"symbol"`
	Direction string    `json:"direction"` // "OPEN", "CLOSE"
	Quantity  float64   `json:"quantity"`
}

// FinalState is the reconciler's state and the book at the end of a run.
type FinalState struct {
	Pending  bool               `json:"pending"`
	Added    []string           `json:"pending_added,omitempty"`
	Removed  []string           `json:"pending_removed,omitempty"`
	Delisted []string           `json:"delisted"`
	Holdings map[string]float64 `json:"holdings"`
}

// LedgerRow represents one step in the run ledger
type LedgerRow struct {
	Index         int       `json:"index"`
	Time          time.Time `json:"time"`
	Added         []string  `json:"added,omitempty"`
	Removed       []string  `json:"removed,omitempty"`
	Delisted      []string  `json:"delisted,omitempty"`
	Liquidated    []string  `json:"liquidated,omitempty"`
	Opened        []string  `json:"opened,omitempty"`
	Closed        []string  `json:"closed,omitempty"`
	Suppressed    []string  `json:"suppressed,omitempty"`
	Applied       bool      `json:"applied"`
	Deferred      bool      `json:"deferred"`
	Pending       bool      `json:"pending"`
	Active        int       `json:"active"`
	DataCount     int       `json:"data_count"`
	DelistedTotal int       `json:"delisted_total"`
	Holdings      int       `json:"holdings"`
}

// LedgerResponse is returned by the ledger lookup endpoint.
type LedgerResponse struct {
	ID     string      `json:"id"`
	Ledger []LedgerRow `json:"ledger"`
}

// CompareRunResponse represents the response from a comparison
type CompareRunResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string     `json:"name"`
	ID      string     `json:"id"`
	Summary RunSummary `json:"summary"`
}

// ScenarioInfo represents a scenario preset on disk
type ScenarioInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	File  string `json:"file"`
	Steps int    `json:"steps"`
}

// FilterInfo represents information about a membership filter
type FilterInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a filter parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "string", "list"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
