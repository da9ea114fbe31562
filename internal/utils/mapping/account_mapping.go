package mapping

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/SscSPs/ledger_mapping_app/internal/models"
)

// ToModelAccountMapping converts a domain MappingRecord to a model AccountMapping.
// Splits and exclusion are encoded as JSON for the JSONB columns.
func ToModelAccountMapping(workplaceID string, d domain.MappingRecord, now time.Time) (models.AccountMapping, error) {
	splits := d.SplitDefinitions
	if splits == nil {
		splits = []domain.SplitDefinition{}
	}
	splitJSON, err := json.Marshal(splits)
	if err != nil {
		return models.AccountMapping{}, fmt.Errorf("encoding split definitions: %w", err)
	}
	exclusion := d.Exclusion
	if exclusion.Type == "" {
		exclusion.Type = domain.ExclusionNone
	}
	exclusionJSON, err := json.Marshal(exclusion)
	if err != nil {
		return models.AccountMapping{}, fmt.Errorf("encoding exclusion: %w", err)
	}

	var target *string
	if d.TargetID != "" {
		t := d.TargetID
		target = &t
	}

	return models.AccountMapping{
		WorkplaceID:      workplaceID,
		EntityID:         d.EntityID,
		AccountID:        d.AccountID,
		GLMonth:          d.GLMonth,
		AccountKey:       d.AccountKey,
		RowID:            d.RowID,
		TargetID:         target,
		Status:           string(d.Status),
		MappingType:      string(d.MappingType),
		Polarity:         string(d.Polarity),
		SplitDefinitions: splitJSON,
		Exclusion:        exclusionJSON,
		Notes:            d.Notes,
		LastUpdatedAt:    now,
	}, nil
}

// ToDomainStandardTarget converts a model StandardTarget to a domain StandardTarget
func ToDomainStandardTarget(m models.StandardTarget) domain.StandardTarget {
	return domain.StandardTarget{
		ID:    m.TargetID,
		Value: m.Value,
		Label: m.Label,
	}
}

// ToDomainStandardTargetSlice converts a slice of model StandardTargets to a slice of domain StandardTargets
func ToDomainStandardTargetSlice(ms []models.StandardTarget) []domain.StandardTarget {
	ds := make([]domain.StandardTarget, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStandardTarget(m)
	}
	return ds
}
