package handlers

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"universe-backtest/internal/analysis"
	"universe-backtest/internal/api/models"
	"universe-backtest/internal/backtest"
	"universe-backtest/internal/config"
	"universe-backtest/internal/data"
	"universe-backtest/internal/model"
	"universe-backtest/internal/reconcile"
	"universe-backtest/internal/runner"
)

// RunHandler handles run-related requests
type RunHandler struct {
	store     *backtest.ResultStore
	scenarios *ScenarioHandler
	recorder  reconcile.Recorder
	logger    zerolog.Logger
}

// NewRunHandler creates a new run handler. recorder may be nil.
func NewRunHandler(store *backtest.ResultStore, scenarios *ScenarioHandler, recorder reconcile.Recorder, logger zerolog.Logger) *RunHandler {
	return &RunHandler{
		store:     store,
		scenarios: scenarios,
		recorder:  recorder,
		logger:    logger,
	}
}

// RunScenario handles POST /api/v1/runs
func (h *RunHandler) RunScenario(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	sc, err := h.resolveScenario(req.ScenarioID, req.Scenario)
	if err != nil {
		writeScenarioError(c, err)
		return
	}

	res, err := runner.Run(c.Request.Context(), sc, buildConfig(req.Config), h.logger, h.recorder)
	if err != nil {
		h.writeRunError(c, err)
		return
	}
	h.store.Put(res)

	c.JSON(http.StatusOK, buildResponse(res, req.Options.IncludeLedger))
}

// GetLedger handles GET /api/v1/runs/:id/ledger
func (h *RunHandler) GetLedger(c *gin.Context) {
	id := c.Param("id")
	res, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: "no stored run with this id; results expire after the store TTL",
				Details: map[string]interface{}{"id": id},
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.LedgerResponse{ID: res.ID, Ledger: buildLedger(res.Ledger)})
}

// CompareRuns handles POST /api/v1/runs/compare
func (h *RunHandler) CompareRuns(c *gin.Context) {
	var req models.CompareRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	sc, err := h.resolveScenario(req.ScenarioID, req.Scenario)
	if err != nil {
		writeScenarioError(c, err)
		return
	}

	out := models.CompareRunResponse{Comparison: make([]models.ComparisonResult, 0, len(req.Variations))}
	for _, v := range req.Variations {
		res, err := runner.Run(c.Request.Context(), sc, buildConfig(v.Config), h.logger, h.recorder)
		if err != nil {
			h.writeRunError(c, errors.Wrapf(err, "variation %q", v.Name))
			return
		}
		h.store.Put(res)
		out.Comparison = append(out.Comparison, models.ComparisonResult{
			Name:    v.Name,
			ID:      res.ID,
			Summary: buildSummary(analysis.ComputeSummary(res)),
		})
	}
	c.JSON(http.StatusOK, out)
}

var errScenarioRequired = errors.New("exactly one of scenario_id or scenario is required")

func (h *RunHandler) resolveScenario(id string, inline *data.ScenarioFile) (*model.Scenario, error) {
	switch {
	case id != "" && inline != nil, id == "" && inline == nil:
		return nil, errScenarioRequired
	case inline != nil:
		if inline.Name == "" {
			inline.Name = "inline"
		}
		return inline.ToModel()
	default:
		return h.scenarios.Load(id)
	}
}

func buildConfig(rc models.RunConfig) *config.Config {
	return &config.Config{
		Reconciler: config.ReconcilerConfig{DefaultQuantity: rc.Reconciler.DefaultQuantity},
		Engine: config.EngineConfig{
			ResolveEvery:        rc.Engine.ResolveEvery,
			AllowUnexpectedData: rc.Engine.AllowUnexpectedData,
		},
		Filter: config.FilterConfig{Name: rc.Filter.Name, Params: rc.Filter.Params},
	}
}

func (h *RunHandler) writeRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvariantViolation):
		h.logger.Error().Err(err).Msg("run aborted: invariant violation")
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVARIANT_VIOLATION", Message: err.Error()},
		})
	case errors.Is(err, model.ErrUnexpectedData):
		h.logger.Error().Err(err).Msg("run aborted: unexpected data")
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "UNEXPECTED_DATA", Message: err.Error()},
		})
	case errors.Is(err, config.ErrInvalidConfig):
		badRequest(c, "INVALID_CONFIG", err)
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "CANCELED", Message: err.Error()},
		})
	default:
		h.logger.Error().Err(err).Msg("run failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "RUN_FAILED", Message: err.Error()},
		})
	}
}

func writeScenarioError(c *gin.Context, err error) {
	if errors.Is(err, errScenarioNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "SCENARIO_NOT_FOUND", Message: err.Error()},
		})
		return
	}
	badRequest(c, "INVALID_SCENARIO", err)
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
