package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"universe-backtest/internal/model"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_YAML(t *testing.T) {
	path := writeFile(t, "listing.yaml", `
steps:
  - date: 2014-03-25
    candidates:
      - {symbol: SPY, price: 186, dollar_volume: 2.1e10}
    bars:
      - {symbol: SPY, close: 186.1}
  - date: 2014-03-26
    bars:
      - {symbol: SPY, close: 185.2}
    delistings:
      - {symbol: XYZ, kind: warning}
      - {symbol: OLD}
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "listing", sc.Name, "name defaults to the file stem")
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, model.Symbol("SPY"), sc.Steps[0].Candidates[0].Symbol)
	assert.Equal(t, 2.1e10, sc.Steps[0].Candidates[0].DollarVolume)
	assert.Equal(t, 185.2, sc.Steps[1].Bars[0].Close)
	assert.Equal(t, sc.Steps[1].Time, sc.Steps[1].Bars[0].Time)
	require.Len(t, sc.Steps[1].Delistings, 2)
	assert.Equal(t, model.DelistingWarning, sc.Steps[1].Delistings[0].Kind)
	assert.Equal(t, model.DelistingDelisted, sc.Steps[1].Delistings[1].Kind)
}

func TestLoadScenario_JSON(t *testing.T) {
	path := writeFile(t, "s.json", `{"name":"j","steps":[{"date":"2014-03-25T00:00:00Z","bars":[{"symbol":"A","close":1}]}]}`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "j", sc.Name)
	assert.Equal(t, 2014, sc.Steps[0].Time.Year())
}

func TestLoadScenario_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         `name: x`,
		"bad date":      "steps:\n  - date: 25/03/2014\n",
		"not ascending": "steps:\n  - date: 2014-03-26\n  - date: 2014-03-25\n",
		"dup bar":       "steps:\n  - date: 2014-03-25\n    bars: [{symbol: A}, {symbol: A}]\n",
		"bad kind":      "steps:\n  - date: 2014-03-25\n    delistings: [{symbol: A, kind: maybe}]\n",
		"no symbol":     "steps:\n  - date: 2014-03-25\n    bars: [{close: 1}]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenario(writeFile(t, "s.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSplitRenameScenario(t *testing.T) {
	sc := SplitRenameScenario()
	require.Len(t, sc.Steps, 6)
	delistStep := sc.Steps[3]
	require.Len(t, delistStep.Delistings, 1)
	assert.Equal(t, model.Symbol("GOOCV"), delistStep.Delistings[0].Symbol)
	assert.True(t, delistStep.Delistings[0].Terminal())
	for _, b := range delistStep.Bars {
		assert.NotEqual(t, model.Symbol("GOOGL"), b.Symbol, "GOOGL must not trade on the rename day")
	}
}
