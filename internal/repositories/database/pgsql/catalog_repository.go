package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_mapping_app/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_mapping_app/internal/models"
	"github.com/SscSPs/ledger_mapping_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCatalogRepository struct {
	BaseRepository
}

// newPgxCatalogRepository creates a new repository for the standard chart of accounts.
func newPgxCatalogRepository(pool *pgxpool.Pool) portsrepo.CatalogRepositoryFacade {
	return &PgxCatalogRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CatalogRepositoryFacade = (*PgxCatalogRepository)(nil)

// ListStandardTargets returns the shared chart plus the workplace's own targets.
func (r *PgxCatalogRepository) ListStandardTargets(ctx context.Context, workplaceID string) ([]domain.StandardTarget, error) {
	query := `
		SELECT target_id, workplace_id, value, label
		FROM standard_targets
		WHERE workplace_id IS NULL OR workplace_id = $1
		ORDER BY value, target_id;
	`
	rows, err := r.Pool.Query(ctx, query, workplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standard targets: %w", err)
	}
	defer rows.Close()

	targets := []models.StandardTarget{}
	for rows.Next() {
		var t models.StandardTarget
		if err := rows.Scan(&t.TargetID, &t.WorkplaceID, &t.Value, &t.Label); err != nil {
			return nil, fmt.Errorf("failed to scan standard target row: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standard target rows: %w", err)
	}

	return mapping.ToDomainStandardTargetSlice(targets), nil
}
