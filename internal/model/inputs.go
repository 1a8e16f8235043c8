package model

import "time"

// Candidate is one row of the coarse snapshot handed to a membership filter.
type Candidate struct {
	Symbol       Symbol  `json:"symbol"`
	Price        float64 `json:"price"`
	DollarVolume float64 `json:"dollar_volume"`
}

// Step is one discrete engine tick: the candidate snapshot used for universe
// resolution, the bars that arrive, and any delisting notices.
type Step struct {
	Time       time.Time
	Candidates []Candidate
	Bars       []Bar
	Delistings []DelistingNotice
}

// Scenario is the canonical input consumed by the backtest engine.
type Scenario struct {
	Name  string
	Steps []Step
}
