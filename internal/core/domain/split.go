package domain

import "github.com/shopspring/decimal"

// AllocationType says whether a split value is a percentage or a fixed amount.
type AllocationType string

const (
	AllocationPercentage AllocationType = "percentage"
	AllocationAmount     AllocationType = "amount"
)

var hundred = decimal.NewFromInt(100)

// SplitDefinition is one allocation line within a percentage-type mapping.
type SplitDefinition struct {
	ID              string          `json:"id"`
	TargetID        string          `json:"targetId"`
	TargetName      string          `json:"targetName"`
	AllocationType  AllocationType  `json:"allocationType"`
	AllocationValue decimal.Decimal `json:"allocationValue"`
	IsExclusion     bool            `json:"isExclusion"`
}

// PercentEquivalent expresses the split as a percentage of |netChange|.
// Amount splits against a zero balance count as 0%.
func (s SplitDefinition) PercentEquivalent(netChange decimal.Decimal) decimal.Decimal {
	if s.AllocationType == AllocationAmount {
		abs := netChange.Abs()
		if abs.IsZero() {
			return decimal.Zero
		}
		return ClampAmount(s.AllocationValue, abs).Mul(hundred).Div(abs)
	}
	return s.AllocationValue
}

// SignedAmount is the portion of netChange carried by the split, signed like netChange.
func (s SplitDefinition) SignedAmount(netChange decimal.Decimal) decimal.Decimal {
	abs := netChange.Abs()
	var amount decimal.Decimal
	if s.AllocationType == AllocationAmount {
		amount = ClampAmount(s.AllocationValue, abs)
	} else {
		amount = s.AllocationValue.Mul(abs).Div(hundred)
	}
	return signLike(amount, netChange)
}

// SplitPercentTotal sums the percentage equivalents of every split on the row.
func SplitPercentTotal(splits []SplitDefinition, netChange decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.PercentEquivalent(netChange))
	}
	return total
}

// ClampAmount limits v to [0, limit].
func ClampAmount(v, limit decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(limit) {
		return limit
	}
	return v
}

// ClampPercent limits v to [0, 100].
func ClampPercent(v decimal.Decimal) decimal.Decimal {
	return ClampAmount(v, hundred)
}

func signLike(amount, ref decimal.Decimal) decimal.Decimal {
	if ref.IsNegative() {
		return amount.Neg()
	}
	return amount
}
