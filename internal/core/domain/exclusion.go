package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExclusionType is the discriminant used when an exclusion is serialized.
type ExclusionType string

const (
	ExclusionNone       ExclusionType = "none"
	ExclusionAmount     ExclusionType = "amount"
	ExclusionPercentage ExclusionType = "percentage"
	ExclusionDynamic    ExclusionType = "dynamic"
)

// Exclusion describes the excluded portion of a row that is not itself of
// mapping type exclude. It is one of NoExclusion, AmountExclusion,
// PercentageExclusion or DynamicExclusion; a nil Exclusion means none.
type Exclusion interface {
	Type() ExclusionType
}

// NoExclusion excludes nothing.
type NoExclusion struct{}

// AmountExclusion removes a fixed, non-negative amount from the balance.
type AmountExclusion struct {
	Amount decimal.Decimal
}

// PercentageExclusion removes a share (0-100) of the balance.
type PercentageExclusion struct {
	Percent decimal.Decimal
}

// DynamicExclusion takes its amount from the allocation engine. ResolvedAmount
// is a cache refreshed on allocation changes; Estimated marks a value computed
// from basis ratios while no allocation result exists for the period.
type DynamicExclusion struct {
	DatapointID    string
	ResolvedAmount decimal.Decimal
	Estimated      bool
}

func (NoExclusion) Type() ExclusionType { return ExclusionNone }
func (AmountExclusion) Type() ExclusionType { return ExclusionAmount }
func (PercentageExclusion) Type() ExclusionType { return ExclusionPercentage }
func (DynamicExclusion) Type() ExclusionType { return ExclusionDynamic }

// ExclusionKind returns the type of e, treating nil as none.
func ExclusionKind(e Exclusion) ExclusionType {
	if e == nil {
		return ExclusionNone
	}
	return e.Type()
}

// CloneExclusion returns a copy of e. Variants are plain values so copying
// the interface value is enough; nil is normalized to NoExclusion.
func CloneExclusion(e Exclusion) Exclusion {
	switch v := e.(type) {
	case nil:
		return NoExclusion{}
	case AmountExclusion:
		return AmountExclusion{Amount: v.Amount}
	case PercentageExclusion:
		return PercentageExclusion{Percent: v.Percent}
	case DynamicExclusion:
		return DynamicExclusion{DatapointID: v.DatapointID, ResolvedAmount: v.ResolvedAmount, Estimated: v.Estimated}
	default:
		return v
	}
}

// NormalizeExclusion clamps the variant's values against the row balance:
// amounts to [0, |netChange|], percentages to [0, 100].
func NormalizeExclusion(e Exclusion, netChange decimal.Decimal) Exclusion {
	abs := netChange.Abs()
	switch v := e.(type) {
	case nil:
		return NoExclusion{}
	case AmountExclusion:
		return AmountExclusion{Amount: ClampAmount(v.Amount, abs)}
	case PercentageExclusion:
		return PercentageExclusion{Percent: ClampPercent(v.Percent)}
	case DynamicExclusion:
		v.ResolvedAmount = ClampAmount(v.ResolvedAmount.Abs(), abs)
		return v
	default:
		return v
	}
}

// ExclusionRecord is the flat, serializable form of an Exclusion.
type ExclusionRecord struct {
	Type           ExclusionType    `json:"type"`
	Value          *decimal.Decimal `json:"value,omitempty"`
	DatapointID    string           `json:"datapointId,omitempty"`
	ResolvedAmount *decimal.Decimal `json:"resolvedAmount,omitempty"`
	Estimated      bool             `json:"estimated,omitempty"`
}

// ToExclusionRecord flattens e.
func ToExclusionRecord(e Exclusion) ExclusionRecord {
	switch v := e.(type) {
	case AmountExclusion:
		return ExclusionRecord{Type: ExclusionAmount, Value: &v.Amount}
	case PercentageExclusion:
		return ExclusionRecord{Type: ExclusionPercentage, Value: &v.Percent}
	case DynamicExclusion:
		return ExclusionRecord{Type: ExclusionDynamic, DatapointID: v.DatapointID, ResolvedAmount: &v.ResolvedAmount, Estimated: v.Estimated}
	default:
		return ExclusionRecord{Type: ExclusionNone}
	}
}

// FromExclusionRecord rebuilds the variant, enforcing the fields each type requires.
func FromExclusionRecord(rec ExclusionRecord) (Exclusion, error) {
	switch rec.Type {
	case "", ExclusionNone:
		return NoExclusion{}, nil
	case ExclusionAmount:
		if rec.Value == nil {
			return nil, fmt.Errorf("amount exclusion requires a value")
		}
		return AmountExclusion{Amount: *rec.Value}, nil
	case ExclusionPercentage:
		if rec.Value == nil {
			return nil, fmt.Errorf("percentage exclusion requires a value")
		}
		return PercentageExclusion{Percent: *rec.Value}, nil
	case ExclusionDynamic:
		d := DynamicExclusion{DatapointID: rec.DatapointID, Estimated: rec.Estimated}
		if rec.ResolvedAmount != nil {
			d.ResolvedAmount = *rec.ResolvedAmount
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown exclusion type %q", rec.Type)
}
