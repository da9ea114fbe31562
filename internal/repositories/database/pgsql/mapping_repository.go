package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_mapping_app/internal/apperrors"
	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_mapping_app/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_mapping_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upsertAccountMappingQuery = `
	INSERT INTO account_mappings (workplace_id, entity_id, account_id, gl_month, account_key, row_id, target_id,
		status, mapping_type, polarity, split_definitions, exclusion, notes, last_updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (workplace_id, entity_id, account_id, gl_month) DO UPDATE SET
		account_key = EXCLUDED.account_key,
		row_id = EXCLUDED.row_id,
		target_id = EXCLUDED.target_id,
		status = EXCLUDED.status,
		mapping_type = EXCLUDED.mapping_type,
		polarity = EXCLUDED.polarity,
		split_definitions = EXCLUDED.split_definitions,
		exclusion = EXCLUDED.exclusion,
		notes = EXCLUDED.notes,
		last_updated_at = EXCLUDED.last_updated_at;
`

type PgxMappingRepository struct {
	BaseRepository
	now func() time.Time
}

// newPgxMappingRepository creates a new repository for account mappings.
func newPgxMappingRepository(pool *pgxpool.Pool) portsrepo.MappingRepositoryWithTx {
	return &PgxMappingRepository{
		BaseRepository: BaseRepository{Pool: pool},
		now:            time.Now,
	}
}

// Ensure implementation matches interface
var _ portsrepo.MappingRepositoryWithTx = (*PgxMappingRepository)(nil)

// SaveMappingBatch upserts the records in a single transaction using one pgx.Batch.
// Records that cannot be encoded or lack their key columns are reported as
// failed and left out of the batch. If the batch itself fails nothing is
// written and the error is returned.
func (r *PgxMappingRepository) SaveMappingBatch(ctx context.Context, workplaceID string, records []domain.MappingRecord) ([]domain.SaveItemResult, error) {
	results := make([]domain.SaveItemResult, len(records))
	queued := make([]int, 0, len(records))
	batch := &pgx.Batch{}
	now := r.now().UTC()

	for i, rec := range records {
		results[i] = domain.SaveItemResult{RowID: rec.RowID}
		if rec.AccountID == "" || rec.GLMonth == "" {
			results[i].Message = "account id and gl month are required"
			continue
		}
		m, err := mapping.ToModelAccountMapping(workplaceID, rec, now)
		if err != nil {
			results[i].Message = err.Error()
			continue
		}
		batch.Queue(upsertAccountMappingQuery,
			m.WorkplaceID,
			m.EntityID,
			m.AccountID,
			m.GLMonth,
			m.AccountKey,
			m.RowID,
			m.TargetID,
			m.Status,
			m.MappingType,
			m.Polarity,
			m.SplitDefinitions,
			m.Exclusion,
			m.Notes,
			m.LastUpdatedAt,
		)
		queued = append(queued, i)
	}

	if len(queued) == 0 {
		return results, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	br := tx.SendBatch(ctx, batch)
	for _, idx := range queued {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return nil, apperrors.NewAppError(500, "failed to upsert account mapping for row "+records[idx].RowID, err)
		}
	}
	// Important: Close the batch results before the transaction is used again
	if err := br.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to execute account mapping batch", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	for _, idx := range queued {
		results[idx].Success = true
	}
	return results, nil
}
