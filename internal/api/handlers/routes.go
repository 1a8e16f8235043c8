package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the v1 API under r.
func RegisterRoutes(r gin.IRouter, runs *RunHandler, scenarios *ScenarioHandler, filters *FilterHandler) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/runs", runs.RunScenario)
		v1.POST("/runs/compare", runs.CompareRuns)
		v1.GET("/runs/:id/ledger", runs.GetLedger)
		v1.GET("/scenarios", scenarios.ListScenarios)
		v1.GET("/filters", filters.ListFilters)
	}
}
