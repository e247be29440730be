// Package dashboard implements the aggregation and filtering engine behind the
// case dashboard: grouping records into count tables, resolving a clinician
// selection into a filter, and recomputing the per-selection charts.
package dashboard

import (
	"sort"

	"github.com/case-dashboard/internal/domain"
)

// Aggregate groups view by column and counts each distinct non-null value.
// Entries are ordered by count descending; equal counts keep the order in which
// their category first appears in view. Null values are skipped entirely.
func Aggregate(view []domain.CaseRecord, column domain.Attribute) domain.CountTable {
	table := domain.CountTable{}
	position := make(map[string]int)

	for _, rec := range view {
		value, ok := rec.Value(column)
		if !ok {
			continue
		}
		if i, seen := position[value]; seen {
			table[i].Count++
			continue
		}
		position[value] = len(table)
		table = append(table, domain.CountEntry{Category: value, Count: 1})
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	return table
}
