package data

import "universe-backtest/internal/model"

// SplitRenameScenarioFile models a share-class split followed by a delisting
// and a rename:
//   - SPY trades throughout.
//   - 2014-03-26: GOOCV and GOOAV list together.
//   - 2014-03-28: GOOCV is delisted and GOOAV is renamed GOOGL. GOOGL has
//     no bar until the next step.
func SplitRenameScenarioFile() ScenarioFile {
	spy := CandidateFile{Symbol: "SPY", Price: 186, DollarVolume: 2.1e10}
	goocv := CandidateFile{Symbol: "GOOCV", Price: 560, DollarVolume: 1.2e9}
	gooav := CandidateFile{Symbol: "GOOAV", Price: 567, DollarVolume: 9.8e8}
	googl := CandidateFile{Symbol: "GOOGL", Price: 563, DollarVolume: 1.1e9}

	return ScenarioFile{
		Name: "split-delist-rename",
		Steps: []StepFile{
			{
				Date:       "2014-03-25",
				Candidates: []CandidateFile{spy},
				Bars:       []BarFile{{Symbol: "SPY", Close: 186.1}},
			},
			{
				Date:       "2014-03-26",
				Candidates: []CandidateFile{spy, goocv, gooav},
				Bars: []BarFile{
					{Symbol: "SPY", Close: 185.2},
					{Symbol: "GOOCV", Close: 558.5},
					{Symbol: "GOOAV", Close: 565.0},
				},
			},
			{
				Date:       "2014-03-27",
				Candidates: []CandidateFile{spy, goocv, gooav},
				Bars: []BarFile{
					{Symbol: "SPY", Close: 184.9},
					{Symbol: "GOOCV", Close: 557.0},
					{Symbol: "GOOAV", Close: 566.3},
				},
			},
			{
				Date:       "2014-03-28",
				Candidates: []CandidateFile{spy, googl},
				Bars: []BarFile{
					{Symbol: "SPY", Close: 185.5},
					{Symbol: "GOOCV", Close: 556.0},
				},
				Delistings: []DelistingFile{{Symbol: "GOOCV"}},
			},
			{
				Date:       "2014-03-31",
				Candidates: []CandidateFile{spy, googl},
				Bars: []BarFile{
					{Symbol: "SPY", Close: 187.0},
					{Symbol: "GOOGL", Close: 567.9},
				},
			},
			{
				Date:       "2014-04-01",
				Candidates: []CandidateFile{spy, googl},
				Bars: []BarFile{
					{Symbol: "SPY", Close: 188.3},
					{Symbol: "GOOGL", Close: 573.0},
				},
			},
		},
	}
}

// SplitRenameScenario is SplitRenameScenarioFile in model form.
func SplitRenameScenario() *model.Scenario {
	sc, err := SplitRenameScenarioFile().ToModel()
	if err != nil {
		panic(err)
	}
	return sc
}
