package dto

import (
	"time"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ImportRowRequest is one raw balance line of an import.
type ImportRowRequest struct {
	EntityID          string          `json:"entityId"` // Optional, empty flags the row for entity assignment
	EntityName        string          `json:"entityName"`
	CompanyName       string          `json:"companyName"`
	AccountID         string          `json:"accountId" binding:"required"`
	Description       string          `json:"description"`
	NetChange         decimal.Decimal `json:"netChange"`
	GLMonth           string          `json:"glMonth" binding:"required,glmonth"`
	SuggestedTargetID string          `json:"suggestedTargetId"`
}

// ImportAccountsRequest replaces the workspace rows with the imported lines.
type ImportAccountsRequest struct {
	Rows []ImportRowRequest `json:"rows" binding:"required,min=1,dive"`
}

// ToDomain converts the request lines to domain import rows.
func (r ImportAccountsRequest) ToDomain() []domain.ImportRow {
	out := make([]domain.ImportRow, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = domain.ImportRow{
			EntityID:          row.EntityID,
			EntityName:        row.EntityName,
			CompanyName:       row.CompanyName,
			AccountID:         row.AccountID,
			Description:       row.Description,
			NetChange:         row.NetChange,
			GLMonth:           row.GLMonth,
			SuggestedTargetID: row.SuggestedTargetID,
		}
	}
	return out
}

// ListMappingsParams defines query parameters for listing rows and summaries.
type ListMappingsParams struct {
	EntityIDs []string `form:"entity_id"`
	Period    string   `form:"period" binding:"omitempty,glmonth"` // empty = all periods
	Search    string   `form:"search"`
	Statuses  []string `form:"status" binding:"omitempty,dive,oneof=New Unmapped Mapped Excluded"`
}

// ToFilter converts the query parameters to a domain.RowFilter.
func (p ListMappingsParams) ToFilter() domain.RowFilter {
	f := domain.RowFilter{
		EntityIDs:    p.EntityIDs,
		ActivePeriod: p.Period,
		Search:       p.Search,
	}
	for _, s := range p.Statuses {
		f.Statuses = append(f.Statuses, domain.MappingStatus(s))
	}
	return f
}

// UpdateMappingRequest defines the fields allowed for editing a row.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateMappingRequest struct {
	TargetID    *string `json:"targetId"`
	MappingType *string `json:"mappingType" binding:"omitempty,oneof=direct percentage dynamic exclude"`
	Status      *string `json:"status" binding:"omitempty,oneof=New Unmapped Mapped Excluded"`
	Polarity    *string `json:"polarity" binding:"omitempty,oneof=Debit Credit Absolute"`
	Notes       *string `json:"notes"`
}

// ToPatch converts the request to a domain.MappingPatch.
func (r UpdateMappingRequest) ToPatch() domain.MappingPatch {
	p := domain.MappingPatch{TargetID: r.TargetID, Notes: r.Notes}
	if r.MappingType != nil {
		t := domain.MappingType(*r.MappingType)
		p.MappingType = &t
	}
	if r.Status != nil {
		s := domain.MappingStatus(*r.Status)
		p.Status = &s
	}
	if r.Polarity != nil {
		pol := domain.Polarity(*r.Polarity)
		p.Polarity = &pol
	}
	return p
}

// SplitRequest defines a new split line.
type SplitRequest struct {
	ID              string          `json:"id"` // Optional, generated when empty
	TargetID        string          `json:"targetId"`
	TargetName      string          `json:"targetName"`
	AllocationType  string          `json:"allocationType" binding:"omitempty,oneof=percentage amount"`
	AllocationValue decimal.Decimal `json:"allocationValue"`
	IsExclusion     bool            `json:"isExclusion"`
}

// ToDomain converts the request to a domain.SplitDefinition.
func (r SplitRequest) ToDomain() domain.SplitDefinition {
	return domain.SplitDefinition{
		ID:              r.ID,
		TargetID:        r.TargetID,
		TargetName:      r.TargetName,
		AllocationType:  domain.AllocationType(r.AllocationType),
		AllocationValue: r.AllocationValue,
		IsExclusion:     r.IsExclusion,
	}
}

// UpdateSplitRequest defines the fields allowed for editing a split line.
type UpdateSplitRequest struct {
	TargetID        *string          `json:"targetId"`
	TargetName      *string          `json:"targetName"`
	AllocationType  *string          `json:"allocationType" binding:"omitempty,oneof=percentage amount"`
	AllocationValue *decimal.Decimal `json:"allocationValue"`
	IsExclusion     *bool            `json:"isExclusion"`
}

// ToPatch converts the request to a domain.SplitPatch.
func (r UpdateSplitRequest) ToPatch() domain.SplitPatch {
	p := domain.SplitPatch{
		TargetID:        r.TargetID,
		TargetName:      r.TargetName,
		AllocationValue: r.AllocationValue,
		IsExclusion:     r.IsExclusion,
	}
	if r.AllocationType != nil {
		t := domain.AllocationType(*r.AllocationType)
		p.AllocationType = &t
	}
	return p
}

// ExclusionRequest sets the excluded portion of a row.
type ExclusionRequest struct {
	Type        string           `json:"type" binding:"required,oneof=none amount percentage dynamic"`
	Value       *decimal.Decimal `json:"value"`       // amount or percentage
	DatapointID string           `json:"datapointId"` // dynamic only, optional
}

// ToDomain converts the request to a domain.Exclusion.
func (r ExclusionRequest) ToDomain() (domain.Exclusion, error) {
	return domain.FromExclusionRecord(domain.ExclusionRecord{
		Type:        domain.ExclusionType(r.Type),
		Value:       r.Value,
		DatapointID: r.DatapointID,
	})
}

// BatchMappingRequest applies one patch to many rows.
type BatchMappingRequest struct {
	RowIDs []string             `json:"rowIds" binding:"required,min=1"`
	Patch  UpdateMappingRequest `json:"patch"`
}

// PresetRequest applies a split preset to many rows.
type PresetRequest struct {
	RowIDs []string       `json:"rowIds" binding:"required,min=1"`
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Splits []SplitRequest `json:"splits" binding:"required,min=1,dive"`
}

// ToDomain converts the request to a domain.MappingPreset.
func (r PresetRequest) ToDomain() domain.MappingPreset {
	p := domain.MappingPreset{ID: r.ID, Name: r.Name}
	for _, s := range r.Splits {
		p.Splits = append(p.Splits, s.ToDomain())
	}
	return p
}

// RowIDsRequest scopes an operation to some rows. Empty means every row.
type RowIDsRequest struct {
	RowIDs []string `json:"rowIds"`
}

// MappingRowResponse defines the data returned for a mapping row.
// Mirrors domain.MappingRow with the exclusion flattened.
type MappingRowResponse struct {
	ID                       string                   `json:"id"`
	EntityID                 string                   `json:"entityId"`
	EntityName               string                   `json:"entityName"`
	CompanyName              string                   `json:"companyName"`
	AccountID                string                   `json:"accountId"`
	AccountName              string                   `json:"accountName"`
	NetChange                decimal.Decimal          `json:"netChange"`
	MappingType              domain.MappingType       `json:"mappingType"`
	Status                   domain.MappingStatus     `json:"status"`
	ManualTargetID           string                   `json:"manualTargetId"`
	SuggestedTargetID        string                   `json:"suggestedTargetId"`
	Polarity                 domain.Polarity          `json:"polarity"`
	SplitDefinitions         []domain.SplitDefinition `json:"splitDefinitions"`
	Exclusion                domain.ExclusionRecord   `json:"exclusion"`
	ExcludedAmount           decimal.Decimal          `json:"excludedAmount"`
	GLMonth                  string                   `json:"glMonth"`
	Notes                    string                   `json:"notes"`
	RequiresEntityAssignment bool                     `json:"requiresEntityAssignment"`
	LastUpdatedAt            time.Time                `json:"lastUpdatedAt"`
}

// ToMappingRowResponse converts a domain.MappingRow to MappingRowResponse DTO
func ToMappingRowResponse(r domain.MappingRow) MappingRowResponse {
	splits := r.SplitDefinitions
	if splits == nil {
		splits = []domain.SplitDefinition{}
	}
	return MappingRowResponse{
		ID:                       r.ID,
		EntityID:                 r.EntityID,
		EntityName:               r.EntityName,
		CompanyName:              r.CompanyName,
		AccountID:                r.AccountID,
		AccountName:              r.AccountName,
		NetChange:                r.NetChange,
		MappingType:              r.MappingType,
		Status:                   r.Status,
		ManualTargetID:           r.ManualTargetID,
		SuggestedTargetID:        r.SuggestedTargetID,
		Polarity:                 r.Polarity,
		SplitDefinitions:         splits,
		Exclusion:                domain.ToExclusionRecord(r.Exclusion),
		ExcludedAmount:           domain.ResolveExcludedAmount(r),
		GLMonth:                  r.GLMonth,
		Notes:                    r.Notes,
		RequiresEntityAssignment: r.RequiresEntityAssignment,
		LastUpdatedAt:            r.LastUpdatedAt,
	}
}

// ToMappingRowResponses converts a slice of domain.MappingRow to a slice of MappingRowResponse DTOs
func ToMappingRowResponses(rows []domain.MappingRow) []MappingRowResponse {
	res := make([]MappingRowResponse, len(rows))
	for i, r := range rows {
		res[i] = ToMappingRowResponse(r)
	}
	return res
}

// ListMappingsResponse is returned by the row list endpoint.
type ListMappingsResponse struct {
	Rows    []MappingRowResponse  `json:"rows"`
	Summary domain.SummaryMetrics `json:"summary"`
}

// FinalizeResponse reports whether the rows could be finalized and, if so, the payload.
type FinalizeResponse struct {
	Valid    bool                     `json:"valid"`
	Mappings []domain.ResolvedMapping `json:"mappings,omitempty"`
	Issues   []domain.ValidationIssue `json:"issues,omitempty"`
}

// CatalogRefreshResponse reports how many standard targets were loaded.
type CatalogRefreshResponse struct {
	Targets int `json:"targets"`
}
