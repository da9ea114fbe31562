package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_mapping_app/internal/core/ports/services"
	"github.com/SscSPs/ledger_mapping_app/internal/dto"
	"github.com/SscSPs/ledger_mapping_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// mappingHandler handles HTTP requests related to mapping rows.
type mappingHandler struct {
	workspaces portssvc.WorkspaceSvc
}

// newMappingHandler creates a new mappingHandler.
func newMappingHandler(ws portssvc.WorkspaceSvc) *mappingHandler {
	return &mappingHandler{
		workspaces: ws,
	}
}

// registerMappingRoutes registers the import, mapping and catalog routes of a workplace.
func registerMappingRoutes(rg *gin.RouterGroup, workspaces portssvc.WorkspaceSvc) {
	h := newMappingHandler(workspaces)

	rg.POST("/imports", h.importAccounts)
	rg.POST("/catalog/refresh", h.refreshCatalog)

	mappings := rg.Group("/mappings")
	{
		mappings.GET("", h.listMappings)
		mappings.DELETE("", h.clearWorkspace)
		mappings.GET("/summary", h.getSummary)
		mappings.GET("/states", h.getRowStates)
		mappings.GET("/export", h.exportMappings)
		mappings.POST("/batch", h.applyBatch)
		mappings.POST("/preset", h.applyPreset)
		mappings.POST("/accept", h.bulkAccept)
		mappings.POST("/finalize", h.finalizeMappings)
		mappings.POST("/save", h.saveMappings)

		mappings.GET("/:row_id", h.getMapping)
		mappings.PATCH("/:row_id", h.updateMapping)
		mappings.PUT("/:row_id/exclusion", h.updateExclusion)
		mappings.POST("/:row_id/splits", h.addSplit)
		mappings.PATCH("/:row_id/splits/:split_id", h.updateSplit)
		mappings.DELETE("/:row_id/splits/:split_id", h.removeSplit)
	}
}

// mappingsFor resolves the mapping engine of the workplace in the path.
func (h *mappingHandler) mappingsFor(c *gin.Context, logger *slog.Logger) (portssvc.MappingSvcFacade, bool) {
	ws, err := h.workspaces.Workspace(c.Request.Context(), c.Param("workplace_id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to open workspace")
		return nil, false
	}
	return ws.Mappings, true
}

// importAccounts godoc
// @Summary Load imported balances
// @Description Replaces the workspace rows with the imported GL lines. New rows are direct and unmapped.
// @Tags mappings
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   import body dto.ImportAccountsRequest true "Imported lines"
// @Success 201 {array} dto.MappingRowResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /workplaces/{workplace_id}/imports [post]
func (h *mappingHandler) importAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ImportAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	rows, err := mappings.LoadImportedAccounts(c.Request.Context(), req.ToDomain())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to load imported accounts")
		return
	}
	c.JSON(http.StatusCreated, dto.ToMappingRowResponses(rows))
}

func (h *mappingHandler) clearWorkspace(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}
	mappings.ClearWorkspace(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// listMappings godoc
// @Summary List mapping rows
// @Description Filters by entity, period (empty = all periods collapsed), search text and status, with totals.
// @Tags mappings
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   entity_id query []string false "Entity scope"
// @Param   period query string false "GL month (YYYY-MM)"
// @Param   search query string false "Free text"
// @Param   status query []string false "Statuses"
// @Success 200 {object} dto.ListMappingsResponse
// @Router /workplaces/{workplace_id}/mappings [get]
func (h *mappingHandler) listMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListMappingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListMappings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	filter := params.ToFilter()
	rows := mappings.Rows(filter)
	c.JSON(http.StatusOK, dto.ListMappingsResponse{
		Rows:    dto.ToMappingRowResponses(rows),
		Summary: mappings.Summary(filter),
	})
}

func (h *mappingHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListMappingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for Summary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mappings.Summary(params.ToFilter()))
}

func (h *mappingHandler) getRowStates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mappings.RowStates())
}

func (h *mappingHandler) getMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}
	row, err := mappings.Row(c.Param("row_id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve mapping row")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRowResponse(row))
}

// updateMapping godoc
// @Summary Edit a mapping row
// @Description Applies any of target, mapping type, polarity, notes and status. The row status is re-derived.
// @Tags mappings
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   row_id path string true "Row ID"
// @Param   patch body dto.UpdateMappingRequest true "Fields to change"
// @Success 200 {object} dto.MappingRowResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Row not found"
// @Router /workplaces/{workplace_id}/mappings/{row_id} [patch]
func (h *mappingHandler) updateMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rowID := c.Param("row_id")
	var req dto.UpdateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateMapping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	row, err := mappings.ApplyPatch(c.Request.Context(), rowID, req.ToPatch())
	if err != nil {
		respondServiceError(c, logger.With(slog.String("row_id", rowID)), err, "Failed to update mapping row")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRowResponse(row))
}

func (h *mappingHandler) updateExclusion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateExclusion", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	exclusion, err := req.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	row, err := mappings.UpdateExclusion(c.Request.Context(), c.Param("row_id"), exclusion)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update exclusion")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRowResponse(row))
}

func (h *mappingHandler) addSplit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddSplit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	row, err := mappings.AddSplit(c.Request.Context(), c.Param("row_id"), req.ToDomain())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to add split")
		return
	}
	c.JSON(http.StatusCreated, dto.ToMappingRowResponse(row))
}

// updateSplit godoc
// @Summary Edit a split line
// @Description A new percentage value is rebalanced across the other percentage splits of the row.
// @Tags mappings
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   row_id path string true "Row ID"
// @Param   split_id path string true "Split ID"
// @Param   split body dto.UpdateSplitRequest true "Fields to change"
// @Success 200 {object} dto.MappingRowResponse
// @Router /workplaces/{workplace_id}/mappings/{row_id}/splits/{split_id} [patch]
func (h *mappingHandler) updateSplit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSplit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	row, err := mappings.UpdateSplit(c.Request.Context(), c.Param("row_id"), c.Param("split_id"), req.ToPatch())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update split")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRowResponse(row))
}

func (h *mappingHandler) removeSplit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}
	row, err := mappings.RemoveSplit(c.Request.Context(), c.Param("row_id"), c.Param("split_id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to remove split")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRowResponse(row))
}

func (h *mappingHandler) applyBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BatchMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyBatchMapping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	rows, err := mappings.ApplyBatchMapping(c.Request.Context(), req.RowIDs, req.Patch.ToPatch())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply batch mapping")
		return
	}
	logger.Info("Batch mapping applied", slog.Int("rows", len(rows)))
	c.JSON(http.StatusOK, dto.ToMappingRowResponses(rows))
}

func (h *mappingHandler) applyPreset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyPreset", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	rows, err := mappings.ApplyPresetToAccounts(c.Request.Context(), req.RowIDs, req.ToDomain())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply preset")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRowResponses(rows))
}

func (h *mappingHandler) bulkAccept(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RowIDsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		logger.Warn("Failed to bind JSON for BulkAccept", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	rows, err := mappings.BulkAccept(c.Request.Context(), req.RowIDs)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to accept suggestions")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRowResponses(rows))
}

// finalizeMappings godoc
// @Summary Finalize mappings
// @Description Resolves the rows into target lines. Fails with the offending rows when a percentage row does not total 100%.
// @Tags mappings
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   rows body dto.RowIDsRequest false "Rows to finalize, all when empty"
// @Success 200 {object} dto.FinalizeResponse
// @Failure 400 {object} dto.FinalizeResponse
// @Router /workplaces/{workplace_id}/mappings/finalize [post]
func (h *mappingHandler) finalizeMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RowIDsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		logger.Warn("Failed to bind JSON for FinalizeMappings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	valid, resolved, issues := mappings.FinalizeMappings(c.Request.Context(), req.RowIDs)
	if !valid {
		c.JSON(http.StatusBadRequest, dto.FinalizeResponse{Valid: false, Issues: issues})
		return
	}
	c.JSON(http.StatusOK, dto.FinalizeResponse{Valid: true, Mappings: resolved})
}

// saveMappings godoc
// @Summary Save dirty rows
// @Description Writes the dirty rows in one batch. Nothing dirty returns saved=0.
// @Tags mappings
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   rows body dto.RowIDsRequest false "Rows to save, all dirty rows when empty"
// @Success 200 {object} domain.SaveOutcome
// @Failure 400 {object} map[string]interface{} "Invalid mappings"
// @Failure 409 {object} map[string]string "Save already in progress"
// @Router /workplaces/{workplace_id}/mappings/save [post]
func (h *mappingHandler) saveMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RowIDsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		logger.Warn("Failed to bind JSON for SaveMappings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	outcome, err := mappings.SaveMappings(c.Request.Context(), req.RowIDs)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to save mappings")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *mappingHandler) refreshCatalog(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	n, err := h.workspaces.RefreshCatalog(c.Request.Context(), c.Param("workplace_id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to refresh catalog")
		return
	}
	c.JSON(http.StatusOK, dto.CatalogRefreshResponse{Targets: n})
}

// bindOptionalJSON binds the body when there is one.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
