package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_mapping_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	mappingRepo := newPgxMappingRepository(dbPool)
	catalogRepo := newPgxCatalogRepository(dbPool)

	return portsrepo.RepositoryProvider{
		MappingRepo: mappingRepo,
		CatalogRepo: catalogRepo,
	}
}
