package domain

import "github.com/shopspring/decimal"

// SplitSumTolerance is how far the split total may drift from 100 and still count as balanced.
var SplitSumTolerance = decimal.NewFromFloat(0.01)

// DeriveStatus computes the status a row's configuration implies. It has no
// side effects and DeriveStatus applied to a row carrying its own derived
// status returns the same value.
func DeriveStatus(row MappingRow, catalog TargetCatalog) MappingStatus {
	if row.MappingType == MappingExclude || row.Status == StatusExcluded {
		return StatusExcluded
	}

	switch row.MappingType {
	case MappingDynamic:
		// operator controlled
		if row.Status == "" {
			return StatusUnmapped
		}
		return row.Status
	case MappingPercentage:
		if SplitsBalanced(row, catalog) {
			return StatusMapped
		}
		return StatusUnmapped
	default:
		if row.ManualTargetID == "" {
			return StatusUnmapped
		}
		if catalog != nil && catalog.IsStandard(row.ManualTargetID) {
			return StatusMapped
		}
		return StatusNew
	}
}

// SplitsBalanced reports whether a percentage row has at least one split,
// every real split points at a standard target, and the splits sum to 100.
func SplitsBalanced(row MappingRow, catalog TargetCatalog) bool {
	return SplitIssue(row, catalog) == ""
}

// SplitIssue explains why a percentage row's splits are not balanced, or
// returns "" when they are.
func SplitIssue(row MappingRow, catalog TargetCatalog) string {
	if issue := SplitSumIssue(row); issue != "" {
		return issue
	}
	for _, s := range row.SplitDefinitions {
		if s.IsExclusion {
			continue
		}
		if catalog == nil || !catalog.IsStandard(s.TargetID) {
			return "split " + s.ID + " targets unknown account " + s.TargetID
		}
	}
	return ""
}

// SplitSumIssue checks the part of the split invariant that does not depend
// on the catalog: splits exist, every real split has a target and the total is 100.
// Save and finalize gate on this; a target outside the catalog is allowed there.
func SplitSumIssue(row MappingRow) string {
	if len(row.SplitDefinitions) == 0 {
		return "no split definitions"
	}
	for _, s := range row.SplitDefinitions {
		if !s.IsExclusion && s.TargetID == "" {
			return "split " + s.ID + " has no target selected"
		}
	}
	total := SplitPercentTotal(row.SplitDefinitions, row.NetChange)
	if total.Sub(hundred).Abs().GreaterThan(SplitSumTolerance) {
		return "splits total " + total.StringFixed(2) + "% instead of 100%"
	}
	return ""
}

// ResolveExcludedAmount is the signed portion of the row balance that is excluded.
func ResolveExcludedAmount(row MappingRow) decimal.Decimal {
	if row.MappingType == MappingExclude || row.Status == StatusExcluded {
		return row.NetChange
	}
	abs := row.AbsNetChange()
	if row.MappingType == MappingPercentage {
		total := decimal.Zero
		for _, s := range row.SplitDefinitions {
			if s.IsExclusion {
				total = total.Add(s.SignedAmount(row.NetChange))
			}
		}
		return total
	}
	switch v := row.Exclusion.(type) {
	case AmountExclusion:
		return signLike(ClampAmount(v.Amount, abs), row.NetChange)
	case PercentageExclusion:
		return signLike(ClampPercent(v.Percent).Mul(abs).Div(hundred), row.NetChange)
	case DynamicExclusion:
		return signLike(ClampAmount(v.ResolvedAmount.Abs(), abs), row.NetChange)
	}
	return decimal.Zero
}
