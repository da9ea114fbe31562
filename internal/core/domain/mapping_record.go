package domain

import "github.com/shopspring/decimal"

// SaveState is the per-row persistence status shown next to each row.
type SaveState string

const (
	SaveIdle   SaveState = "idle"
	SaveSaving SaveState = "saving"
	SaveError  SaveState = "error"
)

// RowSaveStatus is the dirty flag and save state of one row.
type RowSaveStatus struct {
	RowID   string    `json:"rowId"`
	Dirty   bool      `json:"dirty"`
	State   SaveState `json:"state"`
	Message string    `json:"message,omitempty"`
}

// MappingRecord is the serialized state of a row sent to the persistence collaborator.
type MappingRecord struct {
	RowID            string            `json:"rowId"`
	AccountKey       string            `json:"accountKey"`
	EntityID         string            `json:"entityId"`
	AccountID        string            `json:"accountId"`
	GLMonth          string            `json:"glMonth"`
	TargetID         string            `json:"targetId"`
	Status           MappingStatus     `json:"status"`
	MappingType      MappingType       `json:"mappingType"`
	Polarity         Polarity          `json:"polarity"`
	SplitDefinitions []SplitDefinition `json:"splitDefinitions"`
	Exclusion        ExclusionRecord   `json:"exclusion"`
	Notes            string            `json:"notes"`
}

// ToMappingRecord serializes the row. The target is the manual target,
// falling back to the suggestion.
func ToMappingRecord(row MappingRow) MappingRecord {
	target := row.ManualTargetID
	if target == "" {
		target = row.SuggestedTargetID
	}
	splits := make([]SplitDefinition, len(row.SplitDefinitions))
	copy(splits, row.SplitDefinitions)
	return MappingRecord{
		RowID:            row.ID,
		AccountKey:       row.AccountKey(),
		EntityID:         row.EntityID,
		AccountID:        row.AccountID,
		GLMonth:          row.GLMonth,
		TargetID:         target,
		Status:           row.Status,
		MappingType:      row.MappingType,
		Polarity:         row.Polarity,
		SplitDefinitions: splits,
		Exclusion:        ToExclusionRecord(row.Exclusion),
		Notes:            row.Notes,
	}
}

// SaveItemResult is the collaborator's verdict on one record of a batch.
type SaveItemResult struct {
	RowID   string `json:"rowId"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ResolvedLine is one target receiving part of a finalized row.
type ResolvedLine struct {
	TargetID    string          `json:"targetId"`
	TargetName  string          `json:"targetName"`
	Amount      decimal.Decimal `json:"amount"`
	IsExclusion bool            `json:"isExclusion"`
}

// ResolvedMapping is the downstream description of a finalized row.
type ResolvedMapping struct {
	RowID          string          `json:"rowId"`
	EntityID       string          `json:"entityId"`
	AccountID      string          `json:"accountId"`
	AccountName    string          `json:"accountName"`
	GLMonth        string          `json:"glMonth"`
	MappingType    MappingType     `json:"mappingType"`
	Status         MappingStatus   `json:"status"`
	Polarity       Polarity        `json:"polarity"`
	NetChange      decimal.Decimal `json:"netChange"`
	ExcludedAmount decimal.Decimal `json:"excludedAmount"`
	MappedAmount   decimal.Decimal `json:"mappedAmount"`
	Lines          []ResolvedLine  `json:"lines"`
}
