package dashboard

import (
	"github.com/case-dashboard/internal/domain"
)

// Filter returns the records of ds matching p in their original order.
// AlwaysTrue returns the dataset's own rows without copying.
func Filter(ds domain.Dataset, p FilterPredicate) []domain.CaseRecord {
	if p.IsAlwaysTrue() {
		return ds.Records()
	}

	view := make([]domain.CaseRecord, 0)
	for _, rec := range ds.Records() {
		if p.Match(rec) {
			view = append(view, rec)
		}
	}
	return view
}
