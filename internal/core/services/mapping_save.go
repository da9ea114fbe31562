package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_mapping_app/internal/apperrors"
	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
)

// SaveMappings writes the dirty rows among rowIDs, or every dirty row when
// rowIDs is empty, in a single batch.
//
// Nothing dirty is not an error: the outcome reports zero saved rows and the
// repository is not called. A percentage row whose splits do not total 100
// aborts the whole save with a *ValidationError. Only one save runs at a time.
// Rows edited while their save is in flight stay dirty for the next save.
func (e *MappingEngine) SaveMappings(ctx context.Context, rowIDs []string) (*domain.SaveOutcome, error) {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	if e.repo == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("no mapping repository configured: %w", apperrors.ErrInternal)
	}

	candidates := e.dirtyRowsLocked(rowIDs)
	if len(candidates) == 0 {
		e.mu.Unlock()
		e.LogDebug(ctx, "No changes to save", slog.String("workplace_id", e.workplaceID))
		return &domain.SaveOutcome{}, nil
	}

	var issues []domain.ValidationIssue
	for _, st := range candidates {
		if st.row.MappingType != domain.MappingPercentage {
			continue
		}
		if msg := domain.SplitSumIssue(st.row); msg != "" {
			issues = append(issues, domain.ValidationIssue{RowID: st.row.ID, Message: msg})
		}
	}
	if len(issues) > 0 {
		e.mu.Unlock()
		e.LogInfo(ctx, "Save blocked by invalid mappings", slog.Int("invalid_rows", len(issues)))
		return nil, &ValidationError{Issues: issues}
	}

	records := make([]domain.MappingRecord, 0, len(candidates))
	revisions := make(map[string]uint64, len(candidates))
	for _, st := range candidates {
		records = append(records, domain.ToMappingRecord(st.row))
		revisions[st.row.ID] = st.revision
		st.save = domain.SaveSaving
		st.message = ""
	}
	e.saving = true
	e.mu.Unlock()

	outcome := &domain.SaveOutcome{Warning: e.batchWarning(ctx, len(records))}
	results, err := e.repo.SaveMappingBatch(ctx, e.workplaceID, records)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false

	if err != nil {
		for id := range revisions {
			if st, ok := e.rows[id]; ok {
				st.save = domain.SaveError
				st.message = err.Error()
			}
		}
		e.LogError(ctx, err, "Mapping batch save failed",
			slog.String("workplace_id", e.workplaceID),
			slog.Int("rows", len(records)))
		return nil, fmt.Errorf("saving mapping batch: %w", err)
	}

	byRow := make(map[string]domain.SaveItemResult, len(results))
	for _, r := range results {
		byRow[r.RowID] = r
	}
	for _, rec := range records {
		res, ok := byRow[rec.RowID]
		if !ok {
			res = domain.SaveItemResult{RowID: rec.RowID, Message: "no result returned for row"}
		}
		outcome.Results = append(outcome.Results, res)
		if res.Success {
			outcome.Saved++
		} else {
			outcome.Failed++
		}

		st, ok := e.rows[rec.RowID]
		if !ok {
			// replaced by a new import while saving
			continue
		}
		if res.Success {
			st.save = domain.SaveIdle
			st.message = ""
			if st.revision == revisions[rec.RowID] {
				st.dirty = false
			}
		} else {
			st.save = domain.SaveError
			st.message = res.Message
		}
	}

	e.LogInfo(ctx, "Mapping batch saved",
		slog.String("workplace_id", e.workplaceID),
		slog.Int("saved", outcome.Saved),
		slog.Int("failed", outcome.Failed))
	return outcome, nil
}

func (e *MappingEngine) dirtyRowsLocked(rowIDs []string) []*rowState {
	var out []*rowState
	if len(rowIDs) == 0 {
		for _, id := range e.order {
			if st := e.rows[id]; st.dirty {
				out = append(out, st)
			}
		}
		return out
	}
	seen := make(map[string]bool, len(rowIDs))
	for _, id := range rowIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if st, ok := e.rows[id]; ok && st.dirty {
			out = append(out, st)
		}
	}
	return out
}

func (e *MappingEngine) batchWarning(ctx context.Context, size int) string {
	switch {
	case size > e.hardLimit:
		msg := fmt.Sprintf("batch of %d rows exceeds the limit of %d, split the save into smaller chunks", size, e.hardLimit)
		e.LogWarn(ctx, "Mapping batch above hard limit", slog.Int("rows", size), slog.Int("limit", e.hardLimit))
		return msg
	case size > e.warnThreshold:
		e.LogWarn(ctx, "Large mapping batch", slog.Int("rows", size), slog.Int("threshold", e.warnThreshold))
		return fmt.Sprintf("saving %d rows, this may take a while", size)
	}
	return ""
}

// FinalizeMappings resolves the selected rows, every row when rowIDs is
// empty, into their downstream target lines. It returns false with the
// offending rows when a percentage row breaks the 100% invariant; the
// payload is only built on true.
func (e *MappingEngine) FinalizeMappings(ctx context.Context, rowIDs []string) (bool, []domain.ResolvedMapping, []domain.ValidationIssue) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var rows []domain.MappingRow
	if len(rowIDs) == 0 {
		rows = e.snapshotLocked()
	} else {
		seen := make(map[string]bool, len(rowIDs))
		for _, id := range rowIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if st, ok := e.rows[id]; ok {
				rows = append(rows, st.row.Clone())
			} else {
				e.LogDebug(ctx, "Skipping unknown row in finalize", slog.String("row_id", id))
			}
		}
	}

	var issues []domain.ValidationIssue
	for _, r := range rows {
		if r.MappingType != domain.MappingPercentage {
			continue
		}
		if msg := domain.SplitSumIssue(r); msg != "" {
			issues = append(issues, domain.ValidationIssue{RowID: r.ID, Message: msg})
		}
	}
	if len(issues) > 0 {
		e.LogInfo(ctx, "Finalize blocked by invalid mappings", slog.Int("invalid_rows", len(issues)))
		return false, nil, issues
	}

	resolved := make([]domain.ResolvedMapping, 0, len(rows))
	for _, r := range rows {
		resolved = append(resolved, e.resolveRow(r))
	}
	e.LogInfo(ctx, "Mappings finalized", slog.String("workplace_id", e.workplaceID), slog.Int("rows", len(resolved)))
	return true, resolved, nil
}

func (e *MappingEngine) resolveRow(row domain.MappingRow) domain.ResolvedMapping {
	excluded := domain.ResolveExcludedAmount(row)
	out := domain.ResolvedMapping{
		RowID:          row.ID,
		EntityID:       row.EntityID,
		AccountID:      row.AccountID,
		AccountName:    row.AccountName,
		GLMonth:        row.GLMonth,
		MappingType:    row.MappingType,
		Status:         row.Status,
		Polarity:       row.Polarity,
		NetChange:      row.NetChange,
		ExcludedAmount: excluded,
		MappedAmount:   row.NetChange.Sub(excluded),
	}

	if row.MappingType == domain.MappingExclude || row.Status == domain.StatusExcluded {
		out.Lines = []domain.ResolvedLine{{Amount: row.NetChange, IsExclusion: true}}
		return out
	}

	switch row.MappingType {
	case domain.MappingPercentage:
		for _, s := range row.SplitDefinitions {
			out.Lines = append(out.Lines, domain.ResolvedLine{
				TargetID:    s.TargetID,
				TargetName:  s.TargetName,
				Amount:      s.SignedAmount(row.NetChange),
				IsExclusion: s.IsExclusion,
			})
		}
	case domain.MappingDynamic:
		out.Lines = e.dynamicLines(row)
	default:
		if target := row.ManualTargetID; target != "" {
			out.Lines = append(out.Lines, domain.ResolvedLine{
				TargetID:   target,
				TargetName: e.targetName(target),
				Amount:     out.MappedAmount,
			})
		}
		if !excluded.IsZero() {
			out.Lines = append(out.Lines, domain.ResolvedLine{Amount: excluded, IsExclusion: true})
		}
	}
	return out
}

// dynamicLines spreads the row balance over the datapoints of the allocation
// matching the row, using the ratios of the row's month. The stored result for
// the month spreads the source account balance, which need not equal the row
// balance, so the lines always come from an estimate over the row's own net
// change and add up to it.
func (e *MappingEngine) dynamicLines(row domain.MappingRow) []domain.ResolvedLine {
	if e.allocations == nil {
		return nil
	}
	alloc, ok := e.allocations.FindAllocationForAccount(row.EntityID, row.AccountID)
	if !ok {
		return nil
	}
	res, ok := e.allocations.Estimate(alloc.ID, row.GLMonth, row.NetChange)
	if !ok || res.Failed {
		return nil
	}
	names := make(map[string]string, len(alloc.Targets))
	for _, t := range alloc.Targets {
		names[t.ID] = t.Name
	}
	lines := make([]domain.ResolvedLine, 0, len(res.Targets))
	for _, t := range res.Targets {
		amount := res.TargetTotal(t.DatapointID)
		if amount.IsZero() {
			continue
		}
		lines = append(lines, domain.ResolvedLine{
			TargetID:    t.TargetID,
			TargetName:  names[t.DatapointID],
			Amount:      amount,
			IsExclusion: t.IsExclusion,
		})
	}
	return lines
}
