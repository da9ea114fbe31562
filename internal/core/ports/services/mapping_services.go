package services

import (
	"context"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
)

// MappingReaderSvc exposes the row list, totals and per-row save state.
type MappingReaderSvc interface {
	// Rows returns the filtered rows, see domain.RowFilter.
	Rows(filter domain.RowFilter) []domain.MappingRow

	// Row returns a single row by id.
	Row(rowID string) (domain.MappingRow, error)

	// Summary aggregates the rows that pass the filter.
	Summary(filter domain.RowFilter) domain.SummaryMetrics

	// RowStates reports the dirty flag and save state of every row.
	RowStates() []domain.RowSaveStatus
}

// MappingEditorSvc holds the discrete edit operations. Each returns the
// fully re-derived row(s) and marks them dirty.
type MappingEditorSvc interface {
	LoadImportedAccounts(ctx context.Context, rows []domain.ImportRow) ([]domain.MappingRow, error)
	ClearWorkspace(ctx context.Context)
	UpdateTarget(ctx context.Context, rowID, targetID string) (domain.MappingRow, error)
	UpdateMappingType(ctx context.Context, rowID string, mappingType domain.MappingType) (domain.MappingRow, error)
	UpdateStatus(ctx context.Context, rowID string, status domain.MappingStatus) (domain.MappingRow, error)
	UpdatePolarity(ctx context.Context, rowID string, polarity domain.Polarity) (domain.MappingRow, error)
	UpdateNotes(ctx context.Context, rowID, notes string) (domain.MappingRow, error)
	AddSplit(ctx context.Context, rowID string, split domain.SplitDefinition) (domain.MappingRow, error)
	UpdateSplit(ctx context.Context, rowID, splitID string, patch domain.SplitPatch) (domain.MappingRow, error)
	RemoveSplit(ctx context.Context, rowID, splitID string) (domain.MappingRow, error)
	UpdateExclusion(ctx context.Context, rowID string, exclusion domain.Exclusion) (domain.MappingRow, error)
	ApplyPatch(ctx context.Context, rowID string, patch domain.MappingPatch) (domain.MappingRow, error)
	ApplyBatchMapping(ctx context.Context, rowIDs []string, patch domain.MappingPatch) ([]domain.MappingRow, error)
	ApplyPresetToAccounts(ctx context.Context, rowIDs []string, preset domain.MappingPreset) ([]domain.MappingRow, error)
	BulkAccept(ctx context.Context, rowIDs []string) ([]domain.MappingRow, error)
	RefreshCatalog(ctx context.Context, catalog domain.TargetCatalog)
}

// MappingPersistenceSvc finalizes and saves rows.
type MappingPersistenceSvc interface {
	// FinalizeMappings returns false and the offending rows when any selected
	// percentage row breaks the 100% invariant; only on true is the payload set.
	FinalizeMappings(ctx context.Context, rowIDs []string) (bool, []domain.ResolvedMapping, []domain.ValidationIssue)

	// SaveMappings writes the dirty rows among rowIDs (all rows when empty) in one batch.
	SaveMappings(ctx context.Context, rowIDs []string) (*domain.SaveOutcome, error)
}

// MappingSvcFacade combines all mapping-related service interfaces.
type MappingSvcFacade interface {
	MappingReaderSvc
	MappingEditorSvc
	MappingPersistenceSvc
}
