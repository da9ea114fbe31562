package models

import (
	"encoding/json"
	"time"
)

// AccountMapping is one row of the account_mappings table.
type AccountMapping struct {
	WorkplaceID      string          `db:"workplace_id"`
	EntityID         string          `db:"entity_id"`
	AccountID        string          `db:"account_id"`
	GLMonth          string          `db:"gl_month"`
	AccountKey       string          `db:"account_key"`
	RowID            string          `db:"row_id"`
	TargetID         *string         `db:"target_id"` // Nullable
	Status           string          `db:"status"`
	MappingType      string          `db:"mapping_type"`
	Polarity         string          `db:"polarity"`
	SplitDefinitions json.RawMessage `db:"split_definitions"` // JSONB array
	Exclusion        json.RawMessage `db:"exclusion"`         // JSONB object
	Notes            string          `db:"notes"`
	LastUpdatedAt    time.Time       `db:"last_updated_at"`
}

// StandardTarget is one row of the standard_targets table.
type StandardTarget struct {
	TargetID    string  `db:"target_id"`
	WorkplaceID *string `db:"workplace_id"` // NULL for the shared chart
	Value       string  `db:"value"`
	Label       string  `db:"label"`
}
