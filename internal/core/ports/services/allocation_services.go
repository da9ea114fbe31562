package services

import (
	"context"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationListener is notified after the allocation state changes.
type AllocationListener func(event domain.AllocationEvent)

// AllocationReaderSvc is what the mapping engine needs from the allocation engine.
type AllocationReaderSvc interface {
	// Allocation returns an allocation by id.
	Allocation(allocationID string) (domain.Allocation, bool)

	// FindAllocationForAccount returns the allocation whose source account matches the entity/account.
	FindAllocationForAccount(entityID, accountID string) (domain.Allocation, bool)

	// Result returns the computed result for the allocation and period, if any.
	Result(allocationID, period string) (domain.AllocationResult, bool)

	// Estimate computes, without storing, the allocation of amount for the period.
	Estimate(allocationID, period string, amount decimal.Decimal) (domain.AllocationResult, bool)

	// Subscribe registers a listener and returns a function removing it.
	Subscribe(listener AllocationListener) (unsubscribe func())
}

// AllocationWriterSvc mutates basis, source and allocation definitions.
type AllocationWriterSvc interface {
	UpsertBasisAccount(ctx context.Context, account domain.BasisAccount) error
	UpsertBasisGroup(ctx context.Context, group domain.BasisGroup) error
	UpsertSourceAccount(ctx context.Context, account domain.SourceAccount) error
	UpsertAllocation(ctx context.Context, allocation domain.Allocation) error
	RemoveAllocation(ctx context.Context, allocationID string) error

	// Calculate computes and stores a result for every allocation in the period.
	Calculate(ctx context.Context, period string) []domain.AllocationResult
}

// AllocationSvcFacade combines all allocation-related service interfaces.
type AllocationSvcFacade interface {
	AllocationReaderSvc
	AllocationWriterSvc

	// Allocations lists every allocation, ordered by id.
	Allocations() []domain.Allocation

	// Results lists the stored results for the period, ordered by allocation id.
	Results(period string) []domain.AllocationResult
}
