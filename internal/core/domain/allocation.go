package domain

import "github.com/shopspring/decimal"

// BasisAccount carries the weight used as a ratio denominator. PeriodValues
// overrides Value for a specific GL month.
type BasisAccount struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Value        decimal.Decimal            `json:"value"`
	PeriodValues map[string]decimal.Decimal `json:"periodValues,omitempty"`
}

// ValueFor returns the basis weight for the period, falling back to Value.
func (b BasisAccount) ValueFor(period string) decimal.Decimal {
	if period != "" {
		if v, ok := b.PeriodValues[period]; ok {
			return v
		}
	}
	return b.Value
}

// BasisGroup is a named set of basis accounts whose period total acts as one weight.
type BasisGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// SourceAccount is the balance being allocated. EntityID may be empty to match any entity.
type SourceAccount struct {
	ID           string                     `json:"id"`
	EntityID     string                     `json:"entityId"`
	AccountID    string                     `json:"accountId"`
	Name         string                     `json:"name"`
	Value        decimal.Decimal            `json:"value"`
	PeriodValues map[string]decimal.Decimal `json:"periodValues,omitempty"`
}

// ValueFor returns the source balance for the period, falling back to Value.
func (s SourceAccount) ValueFor(period string) decimal.Decimal {
	if period != "" {
		if v, ok := s.PeriodValues[period]; ok {
			return v
		}
	}
	return s.Value
}

// Matches reports whether the source account describes the given entity/account.
func (s SourceAccount) Matches(entityID, accountID string) bool {
	if s.AccountID != accountID {
		return false
	}
	return s.EntityID == "" || s.EntityID == entityID
}

// TargetDatapoint is one receiver of an allocation. Exactly one of Ratio or
// GroupID supplies its weight; GroupID wins when both are set.
type TargetDatapoint struct {
	ID          string          `json:"id"`
	TargetID    string          `json:"targetId"`
	Name        string          `json:"name"`
	Ratio       decimal.Decimal `json:"ratio"`
	GroupID     string          `json:"groupId,omitempty"`
	IsExclusion bool            `json:"isExclusion"`
}

// Allocation distributes one source account over target datapoints.
type Allocation struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	SourceAccountID string            `json:"sourceAccountId"`
	Targets         []TargetDatapoint `json:"targets"`
}

// AllocationTargetValue is the computed share for one target datapoint.
type AllocationTargetValue struct {
	DatapointID string          `json:"datapointId"`
	TargetID    string          `json:"targetId"`
	BasisValue  decimal.Decimal `json:"basisValue"`
	Value       decimal.Decimal `json:"value"`
	Ratio       decimal.Decimal `json:"ratio"`
	Percentage  decimal.Decimal `json:"percentage"`
	IsExclusion bool            `json:"isExclusion"`
}

// AllocationAdjustment absorbs the rounding difference on one target.
type AllocationAdjustment struct {
	DatapointID string          `json:"datapointId"`
	Amount      decimal.Decimal `json:"amount"`
}

// AllocationResult is the output for one (allocation, period) pair.
type AllocationResult struct {
	AllocationID string                  `json:"allocationId"`
	Period       string                  `json:"period"`
	SourceAmount decimal.Decimal         `json:"sourceAmount"`
	BasisTotal   decimal.Decimal         `json:"basisTotal"`
	Targets      []AllocationTargetValue `json:"targets"`
	Adjustment   *AllocationAdjustment   `json:"adjustment,omitempty"`
	Failed       bool                    `json:"failed"`
	Message      string                  `json:"message,omitempty"`
}

// TargetTotal returns the value of a datapoint including the adjustment when it lands there.
func (r AllocationResult) TargetTotal(datapointID string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range r.Targets {
		if t.DatapointID == datapointID {
			total = total.Add(t.Value)
		}
	}
	if r.Adjustment != nil && r.Adjustment.DatapointID == datapointID {
		total = total.Add(r.Adjustment.Amount)
	}
	return total
}

// ExclusionTotal sums the values (plus adjustment) of datapoints flagged as exclusions.
func (r AllocationResult) ExclusionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range r.Targets {
		if t.IsExclusion {
			total = total.Add(r.TargetTotal(t.DatapointID))
		}
	}
	return total
}
