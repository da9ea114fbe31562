package accounting

import (
	"sort"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Redistribute spreads budget over len(weights) slots proportionally to the
// weights using the largest-remainder method. Results are whole units and sum
// to the whole part of budget; a fractional residue of budget, if any, goes to
// the slot with the largest remainder so the total is always exact.
//
// With all-zero weights the budget is split evenly and leftover units go to
// the first slots in list order. Ties in the remainder keep list order.
func Redistribute(budget decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	n := len(weights)
	if n == 0 {
		return nil
	}
	if budget.IsNegative() {
		budget = decimal.Zero
	}
	units := budget.Floor()
	residue := budget.Sub(units)
	result := make([]decimal.Decimal, n)

	sumW := decimal.Zero
	for _, w := range weights {
		if w.IsPositive() {
			sumW = sumW.Add(w)
		}
	}

	if sumW.IsZero() {
		count := decimal.NewFromInt(int64(n))
		base := units.Div(count).Floor()
		leftover := units.Sub(base.Mul(count)).IntPart()
		for i := range result {
			result[i] = base
			if int64(i) < leftover {
				result[i] = result[i].Add(decimal.NewFromInt(1))
			}
		}
		result[0] = result[0].Add(residue)
		return result
	}

	fractional := make([]decimal.Decimal, n)
	allocated := decimal.Zero
	for i, w := range weights {
		if !w.IsPositive() {
			result[i] = decimal.Zero
			fractional[i] = decimal.Zero
			continue
		}
		raw := units.Mul(w).Div(sumW)
		base := raw.Floor()
		result[i] = base
		fractional[i] = raw.Sub(base)
		allocated = allocated.Add(base)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractional[order[a]].GreaterThan(fractional[order[b]])
	})

	shortfall := units.Sub(allocated).IntPart()
	for k := int64(0); k < shortfall && k < int64(n); k++ {
		idx := order[k]
		result[idx] = result[idx].Add(decimal.NewFromInt(1))
	}
	result[order[0]] = result[order[0]].Add(residue)
	return result
}

// RebalanceSplits sets the percentage of the split at index changed and
// redistributes what is left of 100% over the other percentage-type,
// non-exclusion splits in proportion to their previous values. Exclusion
// splits and amount splits keep their share. The input is not modified.
func RebalanceSplits(splits []domain.SplitDefinition, changed int, newPercent, netChange decimal.Decimal) []domain.SplitDefinition {
	out := make([]domain.SplitDefinition, len(splits))
	copy(out, splits)
	if changed < 0 || changed >= len(out) {
		return out
	}

	newPercent = domain.ClampPercent(newPercent)
	out[changed].AllocationType = domain.AllocationPercentage
	out[changed].AllocationValue = newPercent

	fixed := decimal.Zero
	var others []int
	var weights []decimal.Decimal
	for i, s := range out {
		if i == changed {
			continue
		}
		if s.IsExclusion || s.AllocationType == domain.AllocationAmount {
			fixed = fixed.Add(s.PercentEquivalent(netChange))
			continue
		}
		others = append(others, i)
		weights = append(weights, s.AllocationValue)
	}
	if len(others) == 0 {
		return out
	}

	budget := hundred.Sub(newPercent).Sub(fixed)
	if budget.IsNegative() {
		budget = decimal.Zero
	}
	shares := Redistribute(budget, weights)
	for k, idx := range others {
		out[idx].AllocationValue = shares[k]
	}
	return out
}
