package data

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"universe-backtest/internal/model"
)

// ScenarioFile is the on-disk scenario shape (YAML or JSON).
//
// Example:
//
//	name: split-and-rename
//	steps:
//	  - date: 2014-03-25
//	    candidates: [{symbol: SPY, price: 185, dollar_volume: 2.1e10}]
//	    bars: [{symbol: SPY, close: 185.1}]
//	    delistings: [{symbol: GOOCV, kind: delisted}]
type ScenarioFile struct {
	Name  string     `yaml:"name" json:"name"`
	Steps []StepFile `yaml:"steps" json:"steps"`
}

type StepFile struct {
	Date       string          `yaml:"date" json:"date"`
	Candidates []CandidateFile `yaml:"candidates" json:"candidates"`
	Bars       []BarFile       `yaml:"bars" json:"bars"`
	Delistings []DelistingFile `yaml:"delistings" json:"delistings"`
}

type CandidateFile struct {
	Symbol       string  `yaml:"symbol" json:"symbol"`
	Price        float64 `yaml:"price" json:"price"`
	DollarVolume float64 `yaml:"dollar_volume" json:"dollar_volume"`
}

type BarFile struct {
	Symbol string  `yaml:"symbol" json:"symbol"`
	Close  float64 `yaml:"close" json:"close"`
	Volume float64 `yaml:"volume" json:"volume"`
}

// DelistingFile.Kind is "warning" or "delisted" (default).
type DelistingFile struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Kind   string `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// LoadScenario reads a scenario file. Files ending in .json are decoded as
// JSON; everything else as YAML.
func LoadScenario(path string) (*model.Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f ScenarioFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &f)
	} else {
		err = yaml.Unmarshal(raw, &f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	sc, err := f.ToModel()
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}
	return sc, nil
}

// ToModel parses dates and validates the scenario.
func (f ScenarioFile) ToModel() (*model.Scenario, error) {
	if len(f.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	sc := &model.Scenario{Name: f.Name, Steps: make([]model.Step, 0, len(f.Steps))}
	var prev time.Time
	for i, sf := range f.Steps {
		t, err := parseTime(sf.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		if i > 0 && !t.After(prev) {
			return nil, errors.Newf("step %d: date %s is not after the previous step", i, sf.Date)
		}
		prev = t

		step := model.Step{Time: t}
		for _, c := range sf.Candidates {
			if strings.TrimSpace(c.Symbol) == "" {
				return nil, errors.Newf("step %d: candidate without symbol", i)
			}
			step.Candidates = append(step.Candidates, model.Candidate{
				Symbol:       model.Symbol(c.Symbol),
				Price:        c.Price,
				DollarVolume: c.DollarVolume,
			})
		}
		seen := model.NewSymbolSet()
		for _, b := range sf.Bars {
			sym := model.Symbol(strings.TrimSpace(b.Symbol))
			if sym == "" {
				return nil, errors.Newf("step %d: bar without symbol", i)
			}
			if seen.Contains(sym) {
				return nil, errors.Newf("step %d: duplicate bar for %s", i, sym)
			}
			seen.Add(sym)
			step.Bars = append(step.Bars, model.Bar{Symbol: sym, Time: t, Close: b.Close, Volume: b.Volume})
		}
		for _, d := range sf.Delistings {
			kind, err := parseDelistingKind(d.Kind)
			if err != nil {
				return nil, errors.Wrapf(err, "step %d: %s", i, d.Symbol)
			}
			step.Delistings = append(step.Delistings, model.DelistingNotice{
				Symbol: model.Symbol(d.Symbol),
				Time:   t,
				Kind:   kind,
			})
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Newf("invalid date %q, expected YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

func parseDelistingKind(s string) (model.DelistingKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "delisted":
		return model.DelistingDelisted, nil
	case "warning":
		return model.DelistingWarning, nil
	default:
		return "", errors.Newf("invalid delisting kind %q", s)
	}
}
