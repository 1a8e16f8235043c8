package universe

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"universe-backtest/internal/model"
)

// Names of the built-in filters, in listing order.
var Names = []string{"all", "list", "schedule", "coarse"}

type listParams struct {
	Symbols []string `yaml:"symbols"`
}

// Build constructs a named filter from loosely typed params (as decoded from
// YAML config or a JSON request body).
func Build(name string, params map[string]any) (Filter, error) {
	switch name {
	case "all":
		return AllFilter{}, nil
	case "list":
		var p listParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if len(p.Symbols) == 0 {
			return nil, errors.New("list filter: params.symbols is required")
		}
		f := &ListFilter{}
		for _, s := range p.Symbols {
			f.Symbols = append(f.Symbols, model.Symbol(s))
		}
		return f, nil
	case "schedule":
		var p ScheduleParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if len(p.Windows) == 0 {
			return nil, errors.New("schedule filter: params.windows is required")
		}
		return NewScheduleFilter(p)
	case "coarse":
		var p CoarseParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.TopN < 0 {
			return nil, errors.New("coarse filter: params.top_n must be >= 0")
		}
		return &CoarseFilter{Params: p}, nil
	default:
		return nil, errors.Newf("unsupported filter: %q", name)
	}
}

// decodeParams round-trips params through YAML into a typed struct.
func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	raw, err := yaml.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "encode filter params")
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode filter params")
	}
	return nil
}
