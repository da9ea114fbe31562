package accounting

import (
	"github.com/shopspring/decimal"
)

// DefaultRoundingPlaces is the currency precision used when none is configured.
const DefaultRoundingPlaces int32 = 2

// RatioAllocation is the outcome of allocating one amount across basis weights.
type RatioAllocation struct {
	BasisTotal      decimal.Decimal
	Ratios          []decimal.Decimal
	RawValues       []decimal.Decimal
	Values          []decimal.Decimal
	AdjustmentIndex int // -1 when there is nothing to adjust
	Adjustment      decimal.Decimal
	Failed          bool
}

// AllocateByRatio splits source across weights proportionally. Each value is
// rounded to places; the rounding discrepancy is reported as Adjustment on
// the slot with the largest raw value so Σ Values + Adjustment == source.
// Negative weights count as zero. A non-positive basis total fails the
// allocation and every value is zero.
func AllocateByRatio(source decimal.Decimal, weights []decimal.Decimal, places int32) RatioAllocation {
	n := len(weights)
	res := RatioAllocation{
		BasisTotal:      decimal.Zero,
		Ratios:          make([]decimal.Decimal, n),
		RawValues:       make([]decimal.Decimal, n),
		Values:          make([]decimal.Decimal, n),
		AdjustmentIndex: -1,
		Adjustment:      decimal.Zero,
	}
	clean := make([]decimal.Decimal, n)
	for i, w := range weights {
		if w.IsPositive() {
			clean[i] = w
			res.BasisTotal = res.BasisTotal.Add(w)
		} else {
			clean[i] = decimal.Zero
		}
	}
	if !res.BasisTotal.IsPositive() {
		res.Failed = true
		return res
	}

	allocated := decimal.Zero
	largest := -1
	for i, w := range clean {
		res.Ratios[i] = w.Div(res.BasisTotal)
		raw := source.Mul(w).Div(res.BasisTotal)
		res.RawValues[i] = raw
		res.Values[i] = raw.Round(places)
		allocated = allocated.Add(res.Values[i])
		if largest < 0 || raw.Abs().GreaterThan(res.RawValues[largest].Abs()) {
			largest = i
		}
	}
	res.AdjustmentIndex = largest
	res.Adjustment = source.Sub(allocated)
	return res
}

// Percentage converts a ratio into a percentage.
func Percentage(ratio decimal.Decimal) decimal.Decimal {
	return ratio.Mul(hundred)
}
