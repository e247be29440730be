package dashboard

import (
	"sort"

	"github.com/case-dashboard/internal/domain"
)

// ClinicianRoster is the sorted list of distinct clinicians with the
// AllClinicians sentinel at index 0
type ClinicianRoster struct {
	entries []string
}

// NewClinicianRoster builds the roster from the clinician column of ds
func NewClinicianRoster(ds domain.Dataset) ClinicianRoster {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, rec := range ds.Records() {
		id, ok := rec.Value(domain.AttrClinicianID)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ClinicianRoster{entries: append([]string{domain.AllClinicians}, ids...)}
}

// Len returns the number of entries including the sentinel
func (r ClinicianRoster) Len() int {
	return len(r.entries)
}

// At returns the entry at index i
func (r ClinicianRoster) At(i int) (string, error) {
	if i < 0 || i >= len(r.entries) {
		return "", &domain.OutOfRangeError{Index: i, Len: len(r.entries)}
	}
	return r.entries[i], nil
}

// Entries returns a copy of the roster
func (r ClinicianRoster) Entries() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}
