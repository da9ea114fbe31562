package dto

import (
	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BasisAccountRequest creates or replaces a basis account.
type BasisAccountRequest struct {
	ID           string                     `json:"id" binding:"required"`
	Name         string                     `json:"name"`
	Value        decimal.Decimal            `json:"value"`
	PeriodValues map[string]decimal.Decimal `json:"periodValues" binding:"omitempty,dive,keys,glmonth,endkeys"`
}

func (r BasisAccountRequest) ToDomain() domain.BasisAccount {
	return domain.BasisAccount{ID: r.ID, Name: r.Name, Value: r.Value, PeriodValues: r.PeriodValues}
}

// BasisGroupRequest creates or replaces a named group of basis accounts.
type BasisGroupRequest struct {
	ID        string   `json:"id" binding:"required"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds" binding:"required,min=1"`
}

func (r BasisGroupRequest) ToDomain() domain.BasisGroup {
	return domain.BasisGroup{ID: r.ID, Name: r.Name, MemberIDs: r.MemberIDs}
}

// SourceAccountRequest creates or replaces the balance being allocated.
type SourceAccountRequest struct {
	ID           string                     `json:"id" binding:"required"`
	EntityID     string                     `json:"entityId"` // Optional, empty matches any entity
	AccountID    string                     `json:"accountId" binding:"required"`
	Name         string                     `json:"name"`
	Value        decimal.Decimal            `json:"value"`
	PeriodValues map[string]decimal.Decimal `json:"periodValues" binding:"omitempty,dive,keys,glmonth,endkeys"`
}

func (r SourceAccountRequest) ToDomain() domain.SourceAccount {
	return domain.SourceAccount{
		ID:           r.ID,
		EntityID:     r.EntityID,
		AccountID:    r.AccountID,
		Name:         r.Name,
		Value:        r.Value,
		PeriodValues: r.PeriodValues,
	}
}

// DatapointRequest is one receiver of an allocation.
type DatapointRequest struct {
	ID          string          `json:"id"`
	TargetID    string          `json:"targetId" binding:"required"`
	Name        string          `json:"name"`
	Ratio       decimal.Decimal `json:"ratio"`
	GroupID     string          `json:"groupId"`
	IsExclusion bool            `json:"isExclusion"`
}

// AllocationRequest creates or replaces an allocation.
type AllocationRequest struct {
	ID              string             `json:"id" binding:"required"`
	Name            string             `json:"name"`
	SourceAccountID string             `json:"sourceAccountId" binding:"required"`
	Targets         []DatapointRequest `json:"targets" binding:"required,min=1,dive"`
}

func (r AllocationRequest) ToDomain() domain.Allocation {
	a := domain.Allocation{ID: r.ID, Name: r.Name, SourceAccountID: r.SourceAccountID}
	for _, t := range r.Targets {
		a.Targets = append(a.Targets, domain.TargetDatapoint{
			ID:          t.ID,
			TargetID:    t.TargetID,
			Name:        t.Name,
			Ratio:       t.Ratio,
			GroupID:     t.GroupID,
			IsExclusion: t.IsExclusion,
		})
	}
	return a
}

// CalculateRequest triggers the computation of every allocation for a period.
type CalculateRequest struct {
	Period string `json:"period" binding:"required,glmonth"`
}

// ResultsParams selects the period whose results are listed.
type ResultsParams struct {
	Period string `form:"period" binding:"required,glmonth"`
}

// ListAllocationResultsResponse wraps the results of one period.
type ListAllocationResultsResponse struct {
	Period  string                    `json:"period"`
	Results []domain.AllocationResult `json:"results"`
}
