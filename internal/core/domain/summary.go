package domain

import "github.com/shopspring/decimal"

// RowFilter narrows the row list before aggregation. An empty ActivePeriod
// means the all-periods view; an empty Statuses set disables status filtering.
type RowFilter struct {
	EntityIDs    []string
	ActivePeriod string
	Search       string
	Statuses     []MappingStatus
}

// SummaryMetrics are the totals shown above the mapping grid.
type SummaryMetrics struct {
	TotalAccounts  int             `json:"totalAccounts"`
	MappedAccounts int             `json:"mappedAccounts"`
	GrossTotal     decimal.Decimal `json:"grossTotal"`
	ExcludedTotal  decimal.Decimal `json:"excludedTotal"`
	NetTotal       decimal.Decimal `json:"netTotal"`
}

// ValidationIssue ties a validation message to a row.
type ValidationIssue struct {
	RowID   string `json:"rowId"`
	Message string `json:"message"`
}

// SaveOutcome reports what a save did. Saved is 0 when nothing was dirty.
type SaveOutcome struct {
	Saved   int              `json:"saved"`
	Failed  int              `json:"failed"`
	Warning string           `json:"warning,omitempty"`
	Results []SaveItemResult `json:"results,omitempty"`
}

// MappingPatch is a partial edit applied to one or many rows. Nil fields are left alone.
type MappingPatch struct {
	TargetID    *string
	MappingType *MappingType
	Status      *MappingStatus
	Polarity    *Polarity
	Notes       *string
}

// SplitPatch is a partial edit of one split definition.
type SplitPatch struct {
	TargetID        *string
	TargetName      *string
	AllocationType  *AllocationType
	AllocationValue *decimal.Decimal
	IsExclusion     *bool
}

// MappingPreset is a reusable set of split lines applied to many accounts.
type MappingPreset struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Splits []SplitDefinition `json:"splits"`
}

// AllocationEventKind says which part of the allocation state changed.
type AllocationEventKind string

const (
	EventBasisChanged      AllocationEventKind = "basis_changed"
	EventGroupChanged      AllocationEventKind = "group_changed"
	EventSourceChanged     AllocationEventKind = "source_changed"
	EventAllocationChanged AllocationEventKind = "allocation_changed"
	EventAllocationRemoved AllocationEventKind = "allocation_removed"
	EventResultsChanged    AllocationEventKind = "results_changed"
)

// AllocationEvent is published by the allocation engine after every change.
type AllocationEvent struct {
	Kind         AllocationEventKind
	AllocationID string
	Period       string
}
