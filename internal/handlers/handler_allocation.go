package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_mapping_app/internal/core/ports/services"
	"github.com/SscSPs/ledger_mapping_app/internal/dto"
	"github.com/SscSPs/ledger_mapping_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// allocationHandler handles HTTP requests for basis, source and allocation definitions.
type allocationHandler struct {
	workspaces portssvc.WorkspaceSvc
}

func newAllocationHandler(ws portssvc.WorkspaceSvc) *allocationHandler {
	return &allocationHandler{
		workspaces: ws,
	}
}

// registerAllocationRoutes registers the allocation routes of a workplace.
func registerAllocationRoutes(rg *gin.RouterGroup, workspaces portssvc.WorkspaceSvc) {
	h := newAllocationHandler(workspaces)

	allocations := rg.Group("/allocations")
	{
		allocations.GET("", h.listAllocations)
		allocations.PUT("", h.upsertAllocation)
		allocations.DELETE("/:allocation_id", h.removeAllocation)
		allocations.PUT("/basis-accounts", h.upsertBasisAccount)
		allocations.PUT("/groups", h.upsertBasisGroup)
		allocations.PUT("/sources", h.upsertSourceAccount)
		allocations.POST("/calculate", h.calculate)
		allocations.GET("/results", h.listResults)
	}
}

func (h *allocationHandler) allocationsFor(c *gin.Context, logger *slog.Logger) (portssvc.AllocationSvcFacade, bool) {
	ws, err := h.workspaces.Workspace(c.Request.Context(), c.Param("workplace_id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to open workspace")
		return nil, false
	}
	return ws.Allocations, true
}

func (h *allocationHandler) upsertBasisAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BasisAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertBasisAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}

	account := req.ToDomain()
	if err := allocations.UpsertBasisAccount(c.Request.Context(), account); err != nil {
		respondServiceError(c, logger, err, "Failed to save basis account")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *allocationHandler) upsertBasisGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BasisGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertBasisGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}

	group := req.ToDomain()
	if err := allocations.UpsertBasisGroup(c.Request.Context(), group); err != nil {
		respondServiceError(c, logger, err, "Failed to save basis group")
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *allocationHandler) upsertSourceAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SourceAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertSourceAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}

	source := req.ToDomain()
	if err := allocations.UpsertSourceAccount(c.Request.Context(), source); err != nil {
		respondServiceError(c, logger, err, "Failed to save source account")
		return
	}
	c.JSON(http.StatusOK, source)
}

// upsertAllocation godoc
// @Summary Create or replace an allocation
// @Description Every calculated period is recomputed after the change.
// @Tags allocations
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   allocation body dto.AllocationRequest true "Allocation definition"
// @Success 200 {object} domain.Allocation
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /workplaces/{workplace_id}/allocations [put]
func (h *allocationHandler) upsertAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertAllocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}

	if err := allocations.UpsertAllocation(c.Request.Context(), req.ToDomain()); err != nil {
		respondServiceError(c, logger, err, "Failed to save allocation")
		return
	}
	// datapoint ids may have been generated
	saved, _ := allocations.Allocation(req.ID)
	c.JSON(http.StatusOK, saved)
}

func (h *allocationHandler) listAllocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, allocations.Allocations())
}

func (h *allocationHandler) removeAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}
	allocationID := c.Param("allocation_id")
	if err := allocations.RemoveAllocation(c.Request.Context(), allocationID); err != nil {
		respondServiceError(c, logger.With(slog.String("allocation_id", allocationID)), err, "Failed to remove allocation")
		return
	}
	c.Status(http.StatusNoContent)
}

// calculate godoc
// @Summary Calculate allocations for a period
// @Tags allocations
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   period body dto.CalculateRequest true "GL month"
// @Success 200 {object} dto.ListAllocationResultsResponse
// @Router /workplaces/{workplace_id}/allocations/calculate [post]
func (h *allocationHandler) calculate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Calculate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}

	results := allocations.Calculate(c.Request.Context(), req.Period)
	c.JSON(http.StatusOK, dto.ListAllocationResultsResponse{Period: req.Period, Results: results})
}

func (h *allocationHandler) listResults(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ResultsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListResults", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	allocations, ok := h.allocationsFor(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ListAllocationResultsResponse{
		Period:  params.Period,
		Results: allocations.Results(params.Period),
	})
}
