package services

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_mapping_app/internal/apperrors"
	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
)

var (
	ErrRowNotFound        = fmt.Errorf("mapping row: %w", apperrors.ErrNotFound)
	ErrSplitNotFound      = fmt.Errorf("split definition: %w", apperrors.ErrNotFound)
	ErrAllocationNotFound = fmt.Errorf("allocation: %w", apperrors.ErrNotFound)
	ErrSaveInProgress     = fmt.Errorf("a save is already in progress: %w", apperrors.ErrConflict)
	ErrInvalidMappings    = fmt.Errorf("invalid mappings: %w", apperrors.ErrValidation)
)

// ValidationError lists the rows that block a save. It matches
// ErrInvalidMappings and apperrors.ErrValidation with errors.Is.
type ValidationError struct {
	Issues []domain.ValidationIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.RowID+": "+issue.Message)
	}
	return fmt.Sprintf("%d invalid mapping(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidMappings
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}
