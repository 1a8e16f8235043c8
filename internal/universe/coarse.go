package universe

import (
	"sort"

	"universe-backtest/internal/model"
)

// CoarseParams configures CoarseFilter. Zero values disable a constraint.
type CoarseParams struct {
	MinPrice        float64 `yaml:"min_price" json:"min_price"`
	MinDollarVolume float64 `yaml:"min_dollar_volume" json:"min_dollar_volume"`
	TopN            int     `yaml:"top_n" json:"top_n"`
}

// CoarseFilter keeps liquid candidates, ranked by dollar volume.
type CoarseFilter struct {
	Params CoarseParams
}

func (f *CoarseFilter) Name() string { return "coarse" }

func (f *CoarseFilter) Select(ctx Context) ([]model.Symbol, error) {
	kept := make([]model.Candidate, 0, len(ctx.Candidates))
	for _, c := range ctx.Candidates {
		if c.Price < f.Params.MinPrice || c.DollarVolume < f.Params.MinDollarVolume {
			continue
		}
		kept = append(kept, c)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].DollarVolume != kept[j].DollarVolume {
			return kept[i].DollarVolume > kept[j].DollarVolume
		}
		return kept[i].Symbol < kept[j].Symbol
	})
	if f.Params.TopN > 0 && len(kept) > f.Params.TopN {
		kept = kept[:f.Params.TopN]
	}
	out := make([]model.Symbol, len(kept))
	for i, c := range kept {
		out[i] = c.Symbol
	}
	return out, nil
}
