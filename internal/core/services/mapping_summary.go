package services

import (
	"strings"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FilterMappingRows narrows rows in four steps: entity scope, period (or the
// all-periods collapse), free-text search, then status. The input order is kept.
func FilterMappingRows(rows []domain.MappingRow, filter domain.RowFilter) []domain.MappingRow {
	out := filterByEntity(rows, filter.EntityIDs)
	if filter.ActivePeriod != "" {
		out = filterByPeriod(out, filter.ActivePeriod)
	} else {
		out = collapsePeriods(out)
	}
	out = filterBySearch(out, filter.Search)
	return filterByStatus(out, filter.Statuses)
}

// SummarizeMappingRows totals rows. Mapped counts rows with a manual or a
// suggested target, not rows whose status is Mapped.
func SummarizeMappingRows(rows []domain.MappingRow) domain.SummaryMetrics {
	m := domain.SummaryMetrics{
		TotalAccounts: len(rows),
		GrossTotal:    decimal.Zero,
		ExcludedTotal: decimal.Zero,
	}
	for _, r := range rows {
		if r.ManualTargetID != "" || r.SuggestedTargetID != "" {
			m.MappedAccounts++
		}
		m.GrossTotal = m.GrossTotal.Add(r.NetChange)
		m.ExcludedTotal = m.ExcludedTotal.Add(domain.ResolveExcludedAmount(r))
	}
	m.NetTotal = m.GrossTotal.Sub(m.ExcludedTotal)
	return m
}

func filterByEntity(rows []domain.MappingRow, entityIDs []string) []domain.MappingRow {
	if len(entityIDs) == 0 {
		return rows
	}
	allowed := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		allowed[id] = true
	}
	var out []domain.MappingRow
	for _, r := range rows {
		if allowed[r.EntityID] {
			out = append(out, r)
		}
	}
	return out
}

func filterByPeriod(rows []domain.MappingRow, period string) []domain.MappingRow {
	var out []domain.MappingRow
	for _, r := range rows {
		if r.GLMonth == period {
			out = append(out, r)
		}
	}
	return out
}

// collapsePeriods keeps one row per (entity, account): the latest month with
// a non-zero balance, or the latest month when every balance is zero. The
// representative sits where its key first appeared.
func collapsePeriods(rows []domain.MappingRow) []domain.MappingRow {
	type pick struct {
		latest        int
		latestNonZero int
	}
	picks := make(map[string]*pick)
	var keys []string
	for i, r := range rows {
		key := r.AccountKey()
		p, ok := picks[key]
		if !ok {
			p = &pick{latest: i, latestNonZero: -1}
			picks[key] = p
			keys = append(keys, key)
		} else if r.GLMonth > rows[p.latest].GLMonth {
			p.latest = i
		}
		if !r.NetChange.IsZero() && (p.latestNonZero < 0 || r.GLMonth > rows[p.latestNonZero].GLMonth) {
			p.latestNonZero = i
		}
	}

	out := make([]domain.MappingRow, 0, len(keys))
	for _, key := range keys {
		p := picks[key]
		if p.latestNonZero >= 0 {
			out = append(out, rows[p.latestNonZero])
		} else {
			out = append(out, rows[p.latest])
		}
	}
	return out
}

func filterBySearch(rows []domain.MappingRow, search string) []domain.MappingRow {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return rows
	}
	var out []domain.MappingRow
	for _, r := range rows {
		for _, field := range []string{r.AccountID, r.AccountName, r.EntityID, r.EntityName, r.CompanyName} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func filterByStatus(rows []domain.MappingRow, statuses []domain.MappingStatus) []domain.MappingRow {
	if len(statuses) == 0 {
		return rows
	}
	allowed := make(map[domain.MappingStatus]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	var out []domain.MappingRow
	for _, r := range rows {
		if allowed[r.Status] {
			out = append(out, r)
		}
	}
	return out
}
