package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_mapping_app/internal/apperrors"
	"github.com/SscSPs/ledger_mapping_app/internal/core/services"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service error onto an HTTP status.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, failureMsg string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Mappings failed validation", slog.Int("invalid_rows", len(validationErr.Issues)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mappings", "issues": validationErr.Issues})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(failureMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": failureMsg})
	}
}
