package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MappingType selects how a row's balance is resolved onto standard targets.
type MappingType string

const (
	MappingDirect     MappingType = "direct"
	MappingPercentage MappingType = "percentage"
	MappingDynamic    MappingType = "dynamic"
	MappingExclude    MappingType = "exclude"
)

// Valid reports whether t is one of the known mapping types.
func (t MappingType) Valid() bool {
	switch t {
	case MappingDirect, MappingPercentage, MappingDynamic, MappingExclude:
		return true
	}
	return false
}

// MappingStatus is the reconciliation state of a row. It is derived from the
// row configuration, see DeriveStatus.
type MappingStatus string

const (
	StatusNew      MappingStatus = "New"
	StatusUnmapped MappingStatus = "Unmapped"
	StatusMapped   MappingStatus = "Mapped"
	StatusExcluded MappingStatus = "Excluded"
)

// Valid reports whether s is one of the known statuses.
func (s MappingStatus) Valid() bool {
	switch s {
	case StatusNew, StatusUnmapped, StatusMapped, StatusExcluded:
		return true
	}
	return false
}

// Polarity tells downstream consumers how to sign the mapped balance.
type Polarity string

const (
	PolarityDebit    Polarity = "Debit"
	PolarityCredit   Polarity = "Credit"
	PolarityAbsolute Polarity = "Absolute"
)

// Valid reports whether p is one of the known polarities.
func (p Polarity) Valid() bool {
	switch p {
	case PolarityDebit, PolarityCredit, PolarityAbsolute:
		return true
	}
	return false
}

// MappingRow is one GL account / entity / month combination under reconciliation.
// Rows are values: every edit produces a new row via Clone, never a shared graph.
type MappingRow struct {
	ID                       string            `json:"id"`
	EntityID                 string            `json:"entityId"`
	EntityName               string            `json:"entityName"`
	CompanyName              string            `json:"companyName"`
	AccountID                string            `json:"accountId"`
	AccountName              string            `json:"accountName"`
	NetChange                decimal.Decimal   `json:"netChange"` // signed
	MappingType              MappingType       `json:"mappingType"`
	Status                   MappingStatus     `json:"status"`
	ManualTargetID           string            `json:"manualTargetId"`
	SuggestedTargetID        string            `json:"suggestedTargetId"`
	Polarity                 Polarity          `json:"polarity"`
	SplitDefinitions         []SplitDefinition `json:"splitDefinitions"`
	Exclusion                Exclusion         `json:"-"`
	GLMonth                  string            `json:"glMonth"` // YYYY-MM
	Notes                    string            `json:"notes"`
	RequiresEntityAssignment bool              `json:"requiresEntityAssignment"`
	LastUpdatedAt            time.Time         `json:"lastUpdatedAt"`
}

// AccountKey identifies the (entity, account) pair across periods.
func (r MappingRow) AccountKey() string {
	return r.EntityID + "|" + r.AccountID
}

// AbsNetChange is the magnitude of the row balance.
func (r MappingRow) AbsNetChange() decimal.Decimal {
	return r.NetChange.Abs()
}

// Clone returns a deep copy of the row. Splits and exclusion are never
// aliased between the original and the copy.
func (r MappingRow) Clone() MappingRow {
	out := r
	if r.SplitDefinitions != nil {
		out.SplitDefinitions = make([]SplitDefinition, len(r.SplitDefinitions))
		copy(out.SplitDefinitions, r.SplitDefinitions)
	}
	out.Exclusion = CloneExclusion(r.Exclusion)
	return out
}

// FindSplit returns the index of the split with the given id, or -1.
func (r MappingRow) FindSplit(splitID string) int {
	for i, s := range r.SplitDefinitions {
		if s.ID == splitID {
			return i
		}
	}
	return -1
}

// ImportRow is one raw balance line handed over by the import collaborator.
type ImportRow struct {
	EntityID          string          `json:"entityId"`
	EntityName        string          `json:"entityName"`
	CompanyName       string          `json:"companyName"`
	AccountID         string          `json:"accountId"`
	Description       string          `json:"description"`
	NetChange         decimal.Decimal `json:"netChange"`
	GLMonth           string          `json:"glMonth"`
	SuggestedTargetID string          `json:"suggestedTargetId"`
}
