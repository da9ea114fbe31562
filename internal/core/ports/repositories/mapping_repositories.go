package repositories

import (
	"context"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
)

// MappingWriter persists mapping rows in batches.
type MappingWriter interface {
	// SaveMappingBatch writes all records in one round trip and reports a
	// result per record. A non-nil error means the whole batch was rejected.
	SaveMappingBatch(ctx context.Context, workplaceID string, records []domain.MappingRecord) ([]domain.SaveItemResult, error)
}

// MappingRepositoryFacade combines the mapping repository interfaces.
type MappingRepositoryFacade interface {
	MappingWriter
}

// CatalogReader loads the standard chart of accounts.
type CatalogReader interface {
	// ListStandardTargets returns every standard target visible to the workplace.
	ListStandardTargets(ctx context.Context, workplaceID string) ([]domain.StandardTarget, error)
}

// CatalogRepositoryFacade combines the catalog repository interfaces.
type CatalogRepositoryFacade interface {
	CatalogReader
}

// MappingRepositoryWithTx extends MappingRepositoryFacade with transaction capabilities
type MappingRepositoryWithTx interface {
	MappingRepositoryFacade
	TransactionManager
}
