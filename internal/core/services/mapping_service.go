package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_mapping_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_mapping_app/internal/core/ports/services"
	"github.com/SscSPs/ledger_mapping_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultSaveWarnThreshold = 500
	defaultSaveHardLimit     = 2000
)

type rowState struct {
	row      domain.MappingRow
	dirty    bool
	revision uint64
	save     domain.SaveState
	message  string
}

// MappingEngine owns the mapping rows of one workplace. Every operation is
// atomic with respect to the others and returns fully re-derived rows.
type MappingEngine struct {
	BaseService

	mu      sync.Mutex
	rows    map[string]*rowState
	order   []string
	catalog domain.TargetCatalog
	saving  bool

	workplaceID   string
	repo          portsrepo.MappingWriter
	allocations   portssvc.AllocationReaderSvc
	unsubscribe   func()
	warnThreshold int
	hardLimit     int
	now           func() time.Time
}

// MappingOption is a functional option for configuring the mapping engine
type MappingOption func(*MappingEngine)

// WithCatalog sets the standard chart of accounts used for status derivation.
func WithCatalog(catalog domain.TargetCatalog) MappingOption {
	return func(e *MappingEngine) {
		e.catalog = catalog
	}
}

// WithAllocationReader connects the engine to the allocation engine that
// resolves dynamic exclusions.
func WithAllocationReader(reader portssvc.AllocationReaderSvc) MappingOption {
	return func(e *MappingEngine) {
		e.allocations = reader
	}
}

// WithSaveThresholds sets the batch sizes above which a save warns.
func WithSaveThresholds(warn, hard int) MappingOption {
	return func(e *MappingEngine) {
		if warn > 0 {
			e.warnThreshold = warn
		}
		if hard > 0 {
			e.hardLimit = hard
		}
	}
}

// WithClock overrides the time source stamped on edited rows.
func WithClock(now func() time.Time) MappingOption {
	return func(e *MappingEngine) {
		e.now = now
	}
}

// NewMappingEngine creates an empty engine persisting through repo.
func NewMappingEngine(workplaceID string, repo portsrepo.MappingWriter, options ...MappingOption) *MappingEngine {
	e := &MappingEngine{
		rows:          make(map[string]*rowState),
		workplaceID:   workplaceID,
		repo:          repo,
		warnThreshold: defaultSaveWarnThreshold,
		hardLimit:     defaultSaveHardLimit,
		now:           time.Now,
	}
	for _, option := range options {
		option(e)
	}
	if e.allocations != nil {
		e.unsubscribe = e.allocations.Subscribe(e.onAllocationEvent)
	}
	return e
}

var _ portssvc.MappingSvcFacade = (*MappingEngine)(nil)

// Close detaches the engine from the allocation engine.
func (e *MappingEngine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

// --- reads ---

func (e *MappingEngine) Rows(filter domain.RowFilter) []domain.MappingRow {
	e.mu.Lock()
	rows := e.snapshotLocked()
	e.mu.Unlock()
	return FilterMappingRows(rows, filter)
}

func (e *MappingEngine) Row(rowID string) (domain.MappingRow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.rows[rowID]
	if !ok {
		return domain.MappingRow{}, fmt.Errorf("%s: %w", rowID, ErrRowNotFound)
	}
	return st.row.Clone(), nil
}

func (e *MappingEngine) Summary(filter domain.RowFilter) domain.SummaryMetrics {
	return SummarizeMappingRows(e.Rows(filter))
}

func (e *MappingEngine) RowStates() []domain.RowSaveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.RowSaveStatus, 0, len(e.order))
	for _, id := range e.order {
		st := e.rows[id]
		out = append(out, domain.RowSaveStatus{RowID: id, Dirty: st.dirty, State: st.save, Message: st.message})
	}
	return out
}

func (e *MappingEngine) snapshotLocked() []domain.MappingRow {
	out := make([]domain.MappingRow, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.rows[id].row.Clone())
	}
	return out
}

// --- workspace lifecycle ---

// LoadImportedAccounts replaces every row with rows built from the import.
// The new rows are direct, unmapped and clean.
func (e *MappingEngine) LoadImportedAccounts(ctx context.Context, imports []domain.ImportRow) ([]domain.MappingRow, error) {
	rows := make(map[string]*rowState, len(imports))
	order := make([]string, 0, len(imports))
	now := e.now()

	e.mu.Lock()
	for _, in := range imports {
		if in.AccountID == "" {
			e.mu.Unlock()
			return nil, validationf("import row %d has no account id", len(order)+1)
		}
		row := domain.MappingRow{
			ID:                       uuid.NewString(),
			EntityID:                 in.EntityID,
			EntityName:               in.EntityName,
			CompanyName:              in.CompanyName,
			AccountID:                in.AccountID,
			AccountName:              in.Description,
			NetChange:                in.NetChange,
			MappingType:              domain.MappingDirect,
			SuggestedTargetID:        in.SuggestedTargetID,
			Polarity:                 polarityFor(in.NetChange),
			Exclusion:                domain.NoExclusion{},
			GLMonth:                  in.GLMonth,
			RequiresEntityAssignment: in.EntityID == "",
			LastUpdatedAt:            now,
		}
		row.Status = domain.DeriveStatus(row, e.catalog)
		rows[row.ID] = &rowState{row: row, save: domain.SaveIdle}
		order = append(order, row.ID)
	}
	e.rows = rows
	e.order = order
	out := e.snapshotLocked()
	e.mu.Unlock()

	e.LogInfo(ctx, "Imported accounts loaded",
		slog.String("workplace_id", e.workplaceID),
		slog.Int("rows", len(out)))
	return out, nil
}

// ClearWorkspace drops every row.
func (e *MappingEngine) ClearWorkspace(ctx context.Context) {
	e.mu.Lock()
	n := len(e.order)
	e.rows = make(map[string]*rowState)
	e.order = nil
	e.mu.Unlock()
	e.LogInfo(ctx, "Mapping workspace cleared", slog.String("workplace_id", e.workplaceID), slog.Int("rows", n))
}

// RefreshCatalog swaps the standard catalog and re-derives every row. Rows
// whose status changes become dirty.
func (e *MappingEngine) RefreshCatalog(ctx context.Context, catalog domain.TargetCatalog) {
	e.mu.Lock()
	e.catalog = catalog
	changed := 0
	for _, id := range e.order {
		st := e.rows[id]
		status := domain.DeriveStatus(st.row, catalog)
		if status == st.row.Status {
			continue
		}
		next := st.row.Clone()
		next.Status = status
		next.LastUpdatedAt = e.now()
		st.row = next
		st.dirty = true
		st.revision++
		changed++
	}
	e.mu.Unlock()
	e.LogInfo(ctx, "Catalog refreshed", slog.String("workplace_id", e.workplaceID), slog.Int("rows_changed", changed))
}

// --- single-row edits ---

func (e *MappingEngine) UpdateTarget(ctx context.Context, rowID, targetID string) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		setTarget(row, targetID)
		return nil
	})
}

func (e *MappingEngine) UpdateMappingType(ctx context.Context, rowID string, mappingType domain.MappingType) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		return e.setMappingType(row, mappingType)
	})
}

func (e *MappingEngine) UpdateStatus(ctx context.Context, rowID string, status domain.MappingStatus) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		return setStatus(row, status)
	})
}

func (e *MappingEngine) UpdatePolarity(ctx context.Context, rowID string, polarity domain.Polarity) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		return setPolarity(row, polarity)
	})
}

func (e *MappingEngine) UpdateNotes(ctx context.Context, rowID, notes string) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		row.Notes = notes
		return nil
	})
}

// AddSplit appends a split line to a percentage row.
func (e *MappingEngine) AddSplit(ctx context.Context, rowID string, split domain.SplitDefinition) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		if row.MappingType != domain.MappingPercentage {
			return validationf("row %s is a %s mapping, splits need a percentage mapping", row.ID, row.MappingType)
		}
		if split.ID == "" {
			split.ID = uuid.NewString()
		} else if row.FindSplit(split.ID) >= 0 {
			return validationf("split %s already exists on row %s", split.ID, row.ID)
		}
		if split.AllocationType == "" {
			split.AllocationType = domain.AllocationPercentage
		}
		if err := e.normalizeSplit(row, &split); err != nil {
			return err
		}
		row.SplitDefinitions = append(row.SplitDefinitions, split)
		return nil
	})
}

// UpdateSplit edits one split. A new percentage value is rebalanced against
// the row's other percentage splits so the total is kept.
func (e *MappingEngine) UpdateSplit(ctx context.Context, rowID, splitID string, patch domain.SplitPatch) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		idx := row.FindSplit(splitID)
		if idx < 0 {
			return fmt.Errorf("%s on row %s: %w", splitID, row.ID, ErrSplitNotFound)
		}
		split := row.SplitDefinitions[idx]
		if patch.TargetID != nil {
			split.TargetID = *patch.TargetID
			split.TargetName = ""
		}
		if patch.TargetName != nil {
			split.TargetName = *patch.TargetName
		}
		if patch.IsExclusion != nil {
			split.IsExclusion = *patch.IsExclusion
		}
		if patch.AllocationType != nil {
			split.AllocationType = *patch.AllocationType
		}
		if patch.AllocationValue != nil {
			split.AllocationValue = *patch.AllocationValue
		}
		if err := e.normalizeSplit(row, &split); err != nil {
			return err
		}
		row.SplitDefinitions[idx] = split

		if patch.AllocationValue != nil && split.AllocationType == domain.AllocationPercentage {
			row.SplitDefinitions = accounting.RebalanceSplits(row.SplitDefinitions, idx, split.AllocationValue, row.NetChange)
		}
		return nil
	})
}

func (e *MappingEngine) RemoveSplit(ctx context.Context, rowID, splitID string) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		idx := row.FindSplit(splitID)
		if idx < 0 {
			return fmt.Errorf("%s on row %s: %w", splitID, row.ID, ErrSplitNotFound)
		}
		row.SplitDefinitions = append(row.SplitDefinitions[:idx], row.SplitDefinitions[idx+1:]...)
		return nil
	})
}

// UpdateExclusion replaces the row's exclusion. A nil exclusion clears it.
func (e *MappingEngine) UpdateExclusion(ctx context.Context, rowID string, exclusion domain.Exclusion) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		switch v := exclusion.(type) {
		case nil:
			row.Exclusion = domain.NoExclusion{}
		case domain.NoExclusion, domain.AmountExclusion, domain.PercentageExclusion:
			row.Exclusion = v
		case domain.DynamicExclusion:
			// resolved on commit
			row.Exclusion = domain.DynamicExclusion{DatapointID: v.DatapointID}
		default:
			return validationf("unsupported exclusion %T", exclusion)
		}
		return nil
	})
}

func (e *MappingEngine) ApplyPatch(ctx context.Context, rowID string, patch domain.MappingPatch) (domain.MappingRow, error) {
	return e.mutate(ctx, rowID, func(row *domain.MappingRow) error {
		return e.applyPatch(row, patch)
	})
}

// --- multi-row edits ---

// ApplyBatchMapping applies patch to every row in rowIDs. Either every row is
// updated or none is.
func (e *MappingEngine) ApplyBatchMapping(ctx context.Context, rowIDs []string, patch domain.MappingPatch) ([]domain.MappingRow, error) {
	return e.mutateMany(ctx, rowIDs, func(row *domain.MappingRow) (bool, error) {
		return true, e.applyPatch(row, patch)
	})
}

// ApplyPresetToAccounts turns every row into a percentage mapping carrying
// fresh copies of the preset's split lines.
func (e *MappingEngine) ApplyPresetToAccounts(ctx context.Context, rowIDs []string, preset domain.MappingPreset) ([]domain.MappingRow, error) {
	if len(preset.Splits) == 0 {
		return nil, validationf("preset %s has no split lines", preset.ID)
	}
	return e.mutateMany(ctx, rowIDs, func(row *domain.MappingRow) (bool, error) {
		if row.MappingType != domain.MappingPercentage {
			row.MappingType = domain.MappingPercentage
			row.Status = ""
		}
		splits := make([]domain.SplitDefinition, 0, len(preset.Splits))
		for _, s := range preset.Splits {
			s.ID = uuid.NewString()
			if s.AllocationType == "" {
				s.AllocationType = domain.AllocationPercentage
			}
			if err := e.normalizeSplit(row, &s); err != nil {
				return false, err
			}
			splits = append(splits, s)
		}
		row.SplitDefinitions = splits
		return true, nil
	})
}

// BulkAccept copies the suggested target into the manual target of rows that
// have a suggestion and no manual target. Empty rowIDs means every row. Only
// rows that change become dirty.
func (e *MappingEngine) BulkAccept(ctx context.Context, rowIDs []string) ([]domain.MappingRow, error) {
	if len(rowIDs) == 0 {
		e.mu.Lock()
		rowIDs = append([]string(nil), e.order...)
		e.mu.Unlock()
	}
	return e.mutateMany(ctx, rowIDs, func(row *domain.MappingRow) (bool, error) {
		if row.SuggestedTargetID == "" || row.ManualTargetID != "" {
			return false, nil
		}
		row.ManualTargetID = row.SuggestedTargetID
		return true, nil
	})
}

// --- helpers ---

// mutate applies fn to a clone of the row and commits the clone when fn succeeds.
func (e *MappingEngine) mutate(ctx context.Context, rowID string, fn func(row *domain.MappingRow) error) (domain.MappingRow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.rows[rowID]
	if !ok {
		return domain.MappingRow{}, fmt.Errorf("%s: %w", rowID, ErrRowNotFound)
	}
	next := st.row.Clone()
	if err := fn(&next); err != nil {
		e.LogDebug(ctx, "Mapping edit rejected", slog.String("row_id", rowID), slog.String("error", err.Error()))
		return domain.MappingRow{}, err
	}
	e.commitLocked(st, next)
	return st.row.Clone(), nil
}

// mutateMany is mutate over several rows. Nothing is committed unless fn
// succeeds for every row; rows for which fn reports no change stay clean.
func (e *MappingEngine) mutateMany(ctx context.Context, rowIDs []string, fn func(row *domain.MappingRow) (bool, error)) ([]domain.MappingRow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	type pending struct {
		st      *rowState
		next    domain.MappingRow
		changed bool
	}
	seen := make(map[string]bool, len(rowIDs))
	work := make([]pending, 0, len(rowIDs))
	for _, id := range rowIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		st, ok := e.rows[id]
		if !ok {
			return nil, fmt.Errorf("%s: %w", id, ErrRowNotFound)
		}
		next := st.row.Clone()
		changed, err := fn(&next)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", id, err)
		}
		work = append(work, pending{st: st, next: next, changed: changed})
	}

	out := make([]domain.MappingRow, 0, len(work))
	updated := 0
	for _, w := range work {
		if w.changed {
			e.commitLocked(w.st, w.next)
			updated++
		}
		out = append(out, w.st.row.Clone())
	}
	e.LogDebug(ctx, "Batch mapping applied", slog.Int("rows", len(out)), slog.Int("updated", updated))
	return out, nil
}

// commitLocked stores next as the row's new state: the exclusion is resolved
// and clamped, the status re-derived, the row marked dirty.
func (e *MappingEngine) commitLocked(st *rowState, next domain.MappingRow) {
	if _, ok := next.Exclusion.(domain.DynamicExclusion); ok {
		next.Exclusion = e.resolveDynamic(next)
	}
	next.Exclusion = domain.NormalizeExclusion(next.Exclusion, next.NetChange)
	next.Status = domain.DeriveStatus(next, e.catalog)
	next.LastUpdatedAt = e.now()
	st.row = next
	st.dirty = true
	st.revision++
}

func (e *MappingEngine) applyPatch(row *domain.MappingRow, patch domain.MappingPatch) error {
	if patch.MappingType != nil {
		if err := e.setMappingType(row, *patch.MappingType); err != nil {
			return err
		}
	}
	if patch.TargetID != nil {
		setTarget(row, *patch.TargetID)
	}
	if patch.Polarity != nil {
		if err := setPolarity(row, *patch.Polarity); err != nil {
			return err
		}
	}
	if patch.Notes != nil {
		row.Notes = *patch.Notes
	}
	if patch.Status != nil {
		if err := setStatus(row, *patch.Status); err != nil {
			return err
		}
	}
	return nil
}

func setTarget(row *domain.MappingRow, targetID string) {
	row.ManualTargetID = targetID
}

// setMappingType switches the row's type. Leaving exclude clears the sticky
// Excluded status; a percentage row without splits starts with one 100% line
// on the manual target when there is one.
func (e *MappingEngine) setMappingType(row *domain.MappingRow, t domain.MappingType) error {
	if !t.Valid() {
		return validationf("unknown mapping type %q", t)
	}
	if row.MappingType == t {
		return nil
	}
	row.MappingType = t
	if t != domain.MappingExclude {
		row.Status = ""
	}
	if t == domain.MappingPercentage && len(row.SplitDefinitions) == 0 && row.ManualTargetID != "" {
		row.SplitDefinitions = []domain.SplitDefinition{{
			ID:              uuid.NewString(),
			TargetID:        row.ManualTargetID,
			TargetName:      e.targetName(row.ManualTargetID),
			AllocationType:  domain.AllocationPercentage,
			AllocationValue: decimal.NewFromInt(100),
		}}
	}
	return nil
}

// setStatus records an operator status. Excluded sticks on any row; other
// statuses only hold on dynamic rows and are otherwise re-derived.
func setStatus(row *domain.MappingRow, status domain.MappingStatus) error {
	if !status.Valid() {
		return validationf("unknown status %q", status)
	}
	if row.MappingType == domain.MappingExclude && status != domain.StatusExcluded {
		return validationf("row %s is an exclude mapping and is always Excluded", row.ID)
	}
	row.Status = status
	return nil
}

func setPolarity(row *domain.MappingRow, p domain.Polarity) error {
	if !p.Valid() {
		return validationf("unknown polarity %q", p)
	}
	row.Polarity = p
	return nil
}

// normalizeSplit validates the split type and clamps its value.
func (e *MappingEngine) normalizeSplit(row *domain.MappingRow, split *domain.SplitDefinition) error {
	switch split.AllocationType {
	case domain.AllocationPercentage:
		split.AllocationValue = domain.ClampPercent(split.AllocationValue)
	case domain.AllocationAmount:
		split.AllocationValue = domain.ClampAmount(split.AllocationValue, row.AbsNetChange())
	default:
		return validationf("unknown allocation type %q", split.AllocationType)
	}
	if split.TargetName == "" && split.TargetID != "" {
		split.TargetName = e.targetName(split.TargetID)
	}
	return nil
}

func (e *MappingEngine) targetName(targetID string) string {
	if e.catalog == nil {
		return ""
	}
	if t, ok := e.catalog.Lookup(targetID); ok {
		return t.Label
	}
	return ""
}

func polarityFor(netChange decimal.Decimal) domain.Polarity {
	if netChange.IsNegative() {
		return domain.PolarityCredit
	}
	return domain.PolarityDebit
}
