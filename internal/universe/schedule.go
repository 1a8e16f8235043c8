package universe

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"universe-backtest/internal/model"
)

// Window keeps Symbol active during [Start, End). Dates are "YYYY-MM-DD".
// End is optional; an empty End means open-ended.
type Window struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Start  string `yaml:"start" json:"start"`
	End    string `yaml:"end,omitempty" json:"end,omitempty"`
}

type ScheduleParams struct {
	Windows []Window `yaml:"windows" json:"windows"`
}

// ScheduleFilter selects candidates whose evaluation date falls inside one of
// their configured windows. Dates are compared in the evaluation time's
// location.
type ScheduleFilter struct {
	windows []parsedWindow
}

type parsedWindow struct {
	symbol model.Symbol
	start  civilDate
	end    civilDate // zero = open-ended
}

// civilDate is a calendar date with no time zone.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func (d civilDate) isZero() bool { return d.year == 0 }

func (d civilDate) before(o civilDate) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

func NewScheduleFilter(p ScheduleParams) (*ScheduleFilter, error) {
	f := &ScheduleFilter{}
	for i, w := range p.Windows {
		if strings.TrimSpace(w.Symbol) == "" {
			return nil, errors.Newf("window %d: symbol is required", i)
		}
		start, err := parseDate(w.Start)
		if err != nil {
			return nil, errors.Wrapf(err, "window %d (%s) start", i, w.Symbol)
		}
		pw := parsedWindow{symbol: model.Symbol(strings.TrimSpace(w.Symbol)), start: start}
		if strings.TrimSpace(w.End) != "" {
			end, err := parseDate(w.End)
			if err != nil {
				return nil, errors.Wrapf(err, "window %d (%s) end", i, w.Symbol)
			}
			if !start.before(end) {
				return nil, errors.Newf("window %d (%s): end must be after start", i, w.Symbol)
			}
			pw.end = end
		}
		f.windows = append(f.windows, pw)
	}
	return f, nil
}

func (f *ScheduleFilter) Name() string { return "schedule" }

func (f *ScheduleFilter) Select(ctx Context) ([]model.Symbol, error) {
	today := dateOf(ctx.Time)
	var out []model.Symbol
	for _, c := range ctx.Candidates {
		for _, w := range f.windows {
			if w.symbol == c.Symbol && inWindow(today, w.start, w.end) {
				out = append(out, c.Symbol)
				break
			}
		}
	}
	return out, nil
}

func parseDate(s string) (civilDate, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return civilDate{}, errors.Newf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return dateOf(t), nil
}

// inWindow checks whether d is in [start, end). A zero end never closes.
func inWindow(d, start, end civilDate) bool {
	if d.before(start) {
		return false
	}
	if end.isZero() {
		return true
	}
	return d.before(end)
}
