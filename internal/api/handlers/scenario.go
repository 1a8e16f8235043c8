package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"universe-backtest/internal/api/models"
	"universe-backtest/internal/data"
	"universe-backtest/internal/model"
)

var errScenarioNotFound = errors.New("scenario not found")

// ScenarioHandler serves scenario presets stored as files in a directory.
type ScenarioHandler struct {
	dir    string
	logger zerolog.Logger
}

// NewScenarioHandler creates a handler over dir. An empty dir falls back to
// SCENARIO_DIR, then ./examples/scenarios.
func NewScenarioHandler(dir string, logger zerolog.Logger) *ScenarioHandler {
	if dir == "" {
		dir = os.Getenv("SCENARIO_DIR")
	}
	if dir == "" {
		dir = filepath.Join(".", "examples", "scenarios")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	logger.Info().Str("dir", dir).Msg("scenario directory")
	return &ScenarioHandler{dir: dir, logger: logger}
}

// Dir returns the scenario directory path.
func (h *ScenarioHandler) Dir() string { return h.dir }

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	scenarios := []models.ScenarioInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.logger.Warn().Err(err).Str("dir", h.dir).Msg("cannot read scenario directory")
		c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isScenarioFile(entry.Name()) {
			continue
		}
		path := filepath.Join(h.dir, entry.Name())
		sc, err := data.LoadScenario(path)
		if err != nil {
			h.logger.Warn().Err(err).Str("file", path).Msg("skipping invalid scenario")
			continue
		}
		scenarios = append(scenarios, models.ScenarioInfo{
			ID:    strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Name:  sc.Name,
			File:  path,
			Steps: len(sc.Steps),
		})
	}

	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
}

// Load reads the preset with the given id (file name without extension).
func (h *ScenarioHandler) Load(id string) (*model.Scenario, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, errors.Newf("invalid scenario id %q", id)
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(h.dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return data.LoadScenario(path)
		}
	}
	return nil, errors.Wrapf(errScenarioNotFound, "%q", id)
}

func isScenarioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
