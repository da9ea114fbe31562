package services

import (
	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// onAllocationEvent refreshes the cached amount of every dynamic exclusion.
// The refresh only rewrites derived state, so rows do not become dirty.
func (e *MappingEngine) onAllocationEvent(event domain.AllocationEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var dynamic []*rowState
	for _, id := range e.order {
		st := e.rows[id]
		if _, ok := st.row.Exclusion.(domain.DynamicExclusion); ok {
			dynamic = append(dynamic, st)
		}
	}
	if len(dynamic) == 0 {
		return
	}

	for _, st := range dynamic {
		resolved := domain.NormalizeExclusion(e.resolveDynamic(st.row), st.row.NetChange)
		if sameDynamic(resolved, st.row.Exclusion) {
			continue
		}
		next := st.row.Clone()
		next.Exclusion = resolved
		st.row = next
	}
}

// resolveDynamic looks up the allocation behind a dynamic exclusion and
// returns the exclusion with its amount for the row's month. A computed
// result wins; without one the amount is estimated from the basis ratios.
// A missing allocation or a failed result resolves to zero.
func (e *MappingEngine) resolveDynamic(row domain.MappingRow) domain.Exclusion {
	d, ok := row.Exclusion.(domain.DynamicExclusion)
	if !ok {
		return row.Exclusion
	}
	d.ResolvedAmount = decimal.Zero
	d.Estimated = false
	if e.allocations == nil {
		return d
	}

	alloc, found := e.allocationFor(row, d.DatapointID)
	if !found {
		return d
	}
	if res, ok := e.allocations.Result(alloc.ID, row.GLMonth); ok {
		if !res.Failed {
			d.ResolvedAmount = res.ExclusionTotal()
		}
		return d
	}
	if est, ok := e.allocations.Estimate(alloc.ID, row.GLMonth, row.AbsNetChange()); ok && !est.Failed {
		d.ResolvedAmount = est.ExclusionTotal()
		d.Estimated = true
	}
	return d
}

func (e *MappingEngine) allocationFor(row domain.MappingRow, allocationID string) (domain.Allocation, bool) {
	if allocationID != "" {
		return e.allocations.Allocation(allocationID)
	}
	return e.allocations.FindAllocationForAccount(row.EntityID, row.AccountID)
}

func sameDynamic(a, b domain.Exclusion) bool {
	da, okA := a.(domain.DynamicExclusion)
	db, okB := b.(domain.DynamicExclusion)
	if !okA || !okB {
		return false
	}
	return da.DatapointID == db.DatapointID &&
		da.Estimated == db.Estimated &&
		da.ResolvedAmount.Equal(db.ResolvedAmount)
}
