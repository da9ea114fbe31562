package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_mapping_app/internal/core/ports/services"
	"github.com/SscSPs/ledger_mapping_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type resultKey struct {
	allocationID string
	period       string
}

// AllocationEngine holds basis accounts, groups, source accounts and
// allocations for one workplace, and the results computed from them.
// Listeners are notified after every change, outside the engine's locks.
type AllocationEngine struct {
	BaseService

	mu          sync.RWMutex
	basis       map[string]domain.BasisAccount
	groups      map[string]domain.BasisGroup
	sources     map[string]domain.SourceAccount
	allocations map[string]domain.Allocation
	results     map[resultKey]domain.AllocationResult
	periods     map[string]struct{}
	places      int32

	listenersMu  sync.Mutex
	listeners    map[int]portssvc.AllocationListener
	nextListener int
}

// AllocationOption is a functional option for configuring the allocation engine
type AllocationOption func(*AllocationEngine)

// WithRoundingPlaces sets the number of decimal places allocation values are rounded to.
func WithRoundingPlaces(places int32) AllocationOption {
	return func(e *AllocationEngine) {
		if places >= 0 {
			e.places = places
		}
	}
}

// NewAllocationEngine creates an empty allocation engine.
func NewAllocationEngine(options ...AllocationOption) *AllocationEngine {
	e := &AllocationEngine{
		basis:       make(map[string]domain.BasisAccount),
		groups:      make(map[string]domain.BasisGroup),
		sources:     make(map[string]domain.SourceAccount),
		allocations: make(map[string]domain.Allocation),
		results:     make(map[resultKey]domain.AllocationResult),
		periods:     make(map[string]struct{}),
		places:      accounting.DefaultRoundingPlaces,
		listeners:   make(map[int]portssvc.AllocationListener),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

var _ portssvc.AllocationSvcFacade = (*AllocationEngine)(nil)

// Subscribe registers listener. The returned function removes it and is safe to call twice.
func (e *AllocationEngine) Subscribe(listener portssvc.AllocationListener) func() {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = listener
	return func() {
		e.listenersMu.Lock()
		defer e.listenersMu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *AllocationEngine) publish(event domain.AllocationEvent) {
	e.listenersMu.Lock()
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]portssvc.AllocationListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, e.listeners[id])
	}
	e.listenersMu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

func (e *AllocationEngine) UpsertBasisAccount(ctx context.Context, account domain.BasisAccount) error {
	if account.ID == "" {
		return validationf("basis account id is required")
	}
	account.PeriodValues = copyPeriodValues(account.PeriodValues)

	e.mu.Lock()
	e.basis[account.ID] = account
	e.recalculateLocked()
	e.mu.Unlock()

	e.LogDebug(ctx, "Basis account upserted", slog.String("basis_account_id", account.ID))
	e.publish(domain.AllocationEvent{Kind: domain.EventBasisChanged})
	return nil
}

func (e *AllocationEngine) UpsertBasisGroup(ctx context.Context, group domain.BasisGroup) error {
	if group.ID == "" {
		return validationf("basis group id is required")
	}
	group.MemberIDs = append([]string(nil), group.MemberIDs...)

	e.mu.Lock()
	e.groups[group.ID] = group
	e.recalculateLocked()
	e.mu.Unlock()

	e.LogDebug(ctx, "Basis group upserted", slog.String("group_id", group.ID), slog.Int("members", len(group.MemberIDs)))
	e.publish(domain.AllocationEvent{Kind: domain.EventGroupChanged})
	return nil
}

func (e *AllocationEngine) UpsertSourceAccount(ctx context.Context, account domain.SourceAccount) error {
	if account.ID == "" {
		return validationf("source account id is required")
	}
	if account.AccountID == "" {
		return validationf("source account %s needs an account id", account.ID)
	}
	account.PeriodValues = copyPeriodValues(account.PeriodValues)

	e.mu.Lock()
	e.sources[account.ID] = account
	e.recalculateLocked()
	e.mu.Unlock()

	e.LogDebug(ctx, "Source account upserted", slog.String("source_account_id", account.ID))
	e.publish(domain.AllocationEvent{Kind: domain.EventSourceChanged})
	return nil
}

// UpsertAllocation stores the allocation. Datapoints without an id get one.
func (e *AllocationEngine) UpsertAllocation(ctx context.Context, allocation domain.Allocation) error {
	if allocation.ID == "" {
		return validationf("allocation id is required")
	}
	if allocation.SourceAccountID == "" {
		return validationf("allocation %s needs a source account", allocation.ID)
	}
	targets := make([]domain.TargetDatapoint, len(allocation.Targets))
	seen := make(map[string]struct{}, len(allocation.Targets))
	for i, t := range allocation.Targets {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, dup := seen[t.ID]; dup {
			return validationf("datapoint %s appears twice in allocation %s", t.ID, allocation.ID)
		}
		seen[t.ID] = struct{}{}
		if t.GroupID == "" && t.Ratio.IsNegative() {
			return validationf("datapoint %s has a negative ratio", t.ID)
		}
		targets[i] = t
	}
	allocation.Targets = targets

	e.mu.Lock()
	e.allocations[allocation.ID] = allocation
	e.recalculateLocked()
	e.mu.Unlock()

	e.LogInfo(ctx, "Allocation upserted", slog.String("allocation_id", allocation.ID), slog.Int("targets", len(targets)))
	e.publish(domain.AllocationEvent{Kind: domain.EventAllocationChanged, AllocationID: allocation.ID})
	return nil
}

func (e *AllocationEngine) RemoveAllocation(ctx context.Context, allocationID string) error {
	e.mu.Lock()
	if _, ok := e.allocations[allocationID]; !ok {
		e.mu.Unlock()
		return fmt.Errorf("allocation %s: %w", allocationID, ErrAllocationNotFound)
	}
	delete(e.allocations, allocationID)
	for key := range e.results {
		if key.allocationID == allocationID {
			delete(e.results, key)
		}
	}
	e.mu.Unlock()

	e.LogInfo(ctx, "Allocation removed", slog.String("allocation_id", allocationID))
	e.publish(domain.AllocationEvent{Kind: domain.EventAllocationRemoved, AllocationID: allocationID})
	return nil
}

// Calculate computes and stores the result of every allocation for period.
// Later definition changes recompute the period automatically.
func (e *AllocationEngine) Calculate(ctx context.Context, period string) []domain.AllocationResult {
	e.mu.Lock()
	e.periods[period] = struct{}{}
	out := make([]domain.AllocationResult, 0, len(e.allocations))
	for _, id := range e.sortedAllocationIDsLocked() {
		res := e.computeLocked(e.allocations[id], period, nil)
		e.results[resultKey{id, period}] = res
		out = append(out, cloneResult(res))
	}
	e.mu.Unlock()

	failed := 0
	for _, r := range out {
		if r.Failed {
			failed++
		}
	}
	e.LogInfo(ctx, "Allocations calculated",
		slog.String("period", period),
		slog.Int("allocations", len(out)),
		slog.Int("failed", failed))
	e.publish(domain.AllocationEvent{Kind: domain.EventResultsChanged, Period: period})
	return out
}

func (e *AllocationEngine) Allocation(allocationID string) (domain.Allocation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.allocations[allocationID]
	if !ok {
		return domain.Allocation{}, false
	}
	return cloneAllocation(a), true
}

// Allocations returns every allocation ordered by id.
func (e *AllocationEngine) Allocations() []domain.Allocation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := e.sortedAllocationIDsLocked()
	out := make([]domain.Allocation, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneAllocation(e.allocations[id]))
	}
	return out
}

// FindAllocationForAccount returns the first allocation, by id, whose source
// account matches the entity and account.
func (e *AllocationEngine) FindAllocationForAccount(entityID, accountID string) (domain.Allocation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, id := range e.sortedAllocationIDsLocked() {
		a := e.allocations[id]
		src, ok := e.sources[a.SourceAccountID]
		if ok && src.Matches(entityID, accountID) {
			return cloneAllocation(a), true
		}
	}
	return domain.Allocation{}, false
}

func (e *AllocationEngine) Result(allocationID, period string) (domain.AllocationResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.results[resultKey{allocationID, period}]
	if !ok {
		return domain.AllocationResult{}, false
	}
	return cloneResult(r), true
}

// Results returns the stored results for period ordered by allocation id.
func (e *AllocationEngine) Results(period string) []domain.AllocationResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []domain.AllocationResult
	for _, id := range e.sortedAllocationIDsLocked() {
		if r, ok := e.results[resultKey{id, period}]; ok {
			out = append(out, cloneResult(r))
		}
	}
	return out
}

// Estimate allocates amount with the period's basis ratios without storing anything.
func (e *AllocationEngine) Estimate(allocationID, period string, amount decimal.Decimal) (domain.AllocationResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.allocations[allocationID]
	if !ok {
		return domain.AllocationResult{}, false
	}
	return e.computeLocked(a, period, &amount), true
}

// recalculateLocked refreshes every stored result after a definition change.
func (e *AllocationEngine) recalculateLocked() {
	for period := range e.periods {
		for id, a := range e.allocations {
			e.results[resultKey{id, period}] = e.computeLocked(a, period, nil)
		}
	}
}

// computeLocked allocates the source account's period value, or amount when
// given, over the allocation's datapoints.
func (e *AllocationEngine) computeLocked(a domain.Allocation, period string, amount *decimal.Decimal) domain.AllocationResult {
	res := domain.AllocationResult{AllocationID: a.ID, Period: period}

	if amount != nil {
		res.SourceAmount = *amount
	} else {
		src, ok := e.sources[a.SourceAccountID]
		if !ok {
			res.Failed = true
			res.Message = "source account " + a.SourceAccountID + " not found"
			return res
		}
		res.SourceAmount = src.ValueFor(period)
	}

	weights := make([]decimal.Decimal, len(a.Targets))
	for i, t := range a.Targets {
		weights[i] = e.weightLocked(t, period)
	}

	alloc := accounting.AllocateByRatio(res.SourceAmount, weights, e.places)
	res.BasisTotal = alloc.BasisTotal
	res.Targets = make([]domain.AllocationTargetValue, len(a.Targets))
	for i, t := range a.Targets {
		res.Targets[i] = domain.AllocationTargetValue{
			DatapointID: t.ID,
			TargetID:    t.TargetID,
			BasisValue:  weights[i],
			Value:       alloc.Values[i],
			Ratio:       alloc.Ratios[i],
			Percentage:  accounting.Percentage(alloc.Ratios[i]),
			IsExclusion: t.IsExclusion,
		}
	}
	if alloc.Failed {
		res.Failed = true
		res.Message = "basis total is zero"
		return res
	}
	if alloc.AdjustmentIndex >= 0 {
		res.Adjustment = &domain.AllocationAdjustment{
			DatapointID: a.Targets[alloc.AdjustmentIndex].ID,
			Amount:      alloc.Adjustment,
		}
	}
	return res
}

func (e *AllocationEngine) weightLocked(t domain.TargetDatapoint, period string) decimal.Decimal {
	if t.GroupID == "" {
		return t.Ratio
	}
	group, ok := e.groups[t.GroupID]
	if !ok {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, id := range group.MemberIDs {
		if b, ok := e.basis[id]; ok {
			total = total.Add(b.ValueFor(period))
		}
	}
	return total
}

func (e *AllocationEngine) sortedAllocationIDsLocked() []string {
	ids := make([]string, 0, len(e.allocations))
	for id := range e.allocations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyPeriodValues(in map[string]decimal.Decimal) map[string]decimal.Decimal {
	if in == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneAllocation(a domain.Allocation) domain.Allocation {
	a.Targets = append([]domain.TargetDatapoint(nil), a.Targets...)
	return a
}

func cloneResult(r domain.AllocationResult) domain.AllocationResult {
	r.Targets = append([]domain.AllocationTargetValue(nil), r.Targets...)
	if r.Adjustment != nil {
		adj := *r.Adjustment
		r.Adjustment = &adj
	}
	return r
}
