package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/SscSPs/ledger_mapping_app/internal/dto"
	"github.com/SscSPs/ledger_mapping_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	mappingsSheet = "Mappings"
	linesSheet    = "Lines"
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	mappingsHeadings = []any{"Row ID", "Entity", "Account", "Account Name", "GL Month", "Mapping Type", "Status", "Polarity", "Net Change", "Excluded", "Mapped"}
	linesHeadings    = []any{"Row ID", "Account", "GL Month", "Target", "Target Name", "Amount", "Exclusion"}
)

// exportMappings godoc
// @Summary Export finalized mappings
// @Description Finalizes every row and streams the result as an XLSX workbook with a Mappings and a Lines sheet.
// @Tags mappings
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   workplace_id path string true "Workplace ID"
// @Success 200 {file} file
// @Failure 400 {object} dto.FinalizeResponse
// @Router /workplaces/{workplace_id}/mappings/export [get]
func (h *mappingHandler) exportMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	mappings, ok := h.mappingsFor(c, logger)
	if !ok {
		return
	}

	valid, resolved, issues := mappings.FinalizeMappings(c.Request.Context(), nil)
	if !valid {
		c.JSON(http.StatusBadRequest, dto.FinalizeResponse{Valid: false, Issues: issues})
		return
	}

	f, err := buildMappingWorkbook(resolved)
	if err != nil {
		logger.Error("Failed to build mapping workbook", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export mappings"})
		return
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("mappings_%s.xlsx", c.Param("workplace_id"))
	c.Header("Content-Type", xlsxMIME)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("Failed to write mapping workbook", slog.String("error", err.Error()))
	}
}

// buildMappingWorkbook lays out one row per finalized mapping and one row per target line.
func buildMappingWorkbook(resolved []domain.ResolvedMapping) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", mappingsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(mappingsSheet, "A1", &mappingsHeadings); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(linesSheet, "A1", &linesHeadings); err != nil {
		return nil, err
	}

	lineRow := 2
	for i, m := range resolved {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			m.RowID, m.EntityID, m.AccountID, m.AccountName, m.GLMonth,
			string(m.MappingType), string(m.Status), string(m.Polarity),
			m.NetChange.InexactFloat64(), m.ExcludedAmount.InexactFloat64(), m.MappedAmount.InexactFloat64(),
		}
		if err := f.SetSheetRow(mappingsSheet, cell, &values); err != nil {
			return nil, err
		}

		for _, l := range m.Lines {
			cell, err := excelize.CoordinatesToCellName(1, lineRow)
			if err != nil {
				return nil, err
			}
			line := []any{m.RowID, m.AccountID, m.GLMonth, l.TargetID, l.TargetName, l.Amount.InexactFloat64(), l.IsExclusion}
			if err := f.SetSheetRow(linesSheet, cell, &line); err != nil {
				return nil, err
			}
			lineRow++
		}
	}
	return f, nil
}
