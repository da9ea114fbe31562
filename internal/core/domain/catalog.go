package domain

// StandardTarget is one entry of the standard chart of accounts.
type StandardTarget struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// TargetCatalog answers whether a target id belongs to the standard chart.
// Implementations are read-only once handed to the engine.
type TargetCatalog interface {
	IsStandard(targetID string) bool
	Lookup(targetID string) (StandardTarget, bool)
}

// StandardCatalog is an in-memory TargetCatalog keyed by target id and value.
type StandardCatalog struct {
	byID map[string]StandardTarget
}

// NewStandardCatalog indexes targets by both ID and Value, so either form
// chosen in the UI resolves.
func NewStandardCatalog(targets []StandardTarget) *StandardCatalog {
	c := &StandardCatalog{byID: make(map[string]StandardTarget, len(targets)*2)}
	for _, t := range targets {
		if t.ID != "" {
			c.byID[t.ID] = t
		}
		if t.Value != "" {
			if _, exists := c.byID[t.Value]; !exists {
				c.byID[t.Value] = t
			}
		}
	}
	return c
}

// IsStandard implements TargetCatalog.
func (c *StandardCatalog) IsStandard(targetID string) bool {
	if c == nil || targetID == "" {
		return false
	}
	_, ok := c.byID[targetID]
	return ok
}

// Lookup implements TargetCatalog.
func (c *StandardCatalog) Lookup(targetID string) (StandardTarget, bool) {
	if c == nil {
		return StandardTarget{}, false
	}
	t, ok := c.byID[targetID]
	return t, ok
}

// Len is the number of distinct keys indexed.
func (c *StandardCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}
