package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"universe-backtest/internal/api/models"
	"universe-backtest/internal/universe"
)

// FilterHandler handles filter-related requests
type FilterHandler struct{}

// NewFilterHandler creates a new filter handler
func NewFilterHandler() *FilterHandler {
	return &FilterHandler{}
}

var filterInfo = map[string]models.FilterInfo{
	"all": {
		Name:        "all",
		Description: "Every candidate in the step's coarse snapshot is a member.",
		Parameters:  []models.ParameterInfo{},
	},
	"list": {
		Name:        "list",
		Description: "Static allowlist intersected with the step's candidates.",
		Parameters: []models.ParameterInfo{
			{
				Name:        "symbols",
				Type:        "list",
				Description: "Symbols allowed into the universe",
			},
		},
	},
	"schedule": {
		Name:        "schedule",
		Description: "Per-symbol date windows. A candidate is a member while the step date is in [start, end).",
		Parameters: []models.ParameterInfo{
			{
				Name:        "windows",
				Type:        "list",
				Description: "Entries of {symbol, start, end}; dates are YYYY-MM-DD and end is optional",
			},
		},
	},
	"coarse": {
		Name:        "coarse",
		Description: "Price and liquidity screen, keeping the top N candidates by dollar volume.",
		Parameters: []models.ParameterInfo{
			{
				Name:        "min_price",
				Type:        "float",
				Description: "Minimum candidate price",
				Default:     0.0,
			},
			{
				Name:        "min_dollar_volume",
				Type:        "float",
				Description: "Minimum candidate dollar volume",
				Default:     0.0,
			},
			{
				Name:        "top_n",
				Type:        "int",
				Description: "Keep at most N candidates by dollar volume (0 = no limit)",
				Default:     0,
			},
		},
	},
}

// ListFilters handles GET /api/v1/filters
func (h *FilterHandler) ListFilters(c *gin.Context) {
	filters := make([]models.FilterInfo, 0, len(universe.Names))
	for _, name := range universe.Names {
		if info, ok := filterInfo[name]; ok {
			filters = append(filters, info)
		}
	}
	c.JSON(http.StatusOK, gin.H{"filters": filters})
}
