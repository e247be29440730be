package dashboard

import (
	"github.com/case-dashboard/internal/domain"
)

// FilterPredicate tests a case record before aggregation. The zero value
// matches every record.
type FilterPredicate struct {
	clinician string
	filtered  bool
}

// AlwaysTrue is the predicate that applies no filtering
var AlwaysTrue = FilterPredicate{}

// ClinicianEquals matches records attended by id. Records without a
// clinician never match.
func ClinicianEquals(id string) FilterPredicate {
	return FilterPredicate{clinician: id, filtered: true}
}

// Match reports whether rec passes the predicate
func (p FilterPredicate) Match(rec domain.CaseRecord) bool {
	if !p.filtered {
		return true
	}
	id, ok := rec.Value(domain.AttrClinicianID)
	return ok && id == p.clinician
}

// IsAlwaysTrue reports whether the predicate filters nothing
func (p FilterPredicate) IsAlwaysTrue() bool {
	return !p.filtered
}

// Clinician returns the clinician filtered on, or AllClinicians
func (p FilterPredicate) Clinician() string {
	if !p.filtered {
		return domain.AllClinicians
	}
	return p.clinician
}

// Resolve maps a roster selection onto a filter predicate. NoSelection and
// index 0 both resolve to AlwaysTrue; an index outside the roster returns
// *domain.OutOfRangeError.
func Resolve(sel domain.Selection, roster ClinicianRoster) (FilterPredicate, error) {
	i, set := sel.Index()
	if !set {
		return AlwaysTrue, nil
	}
	id, err := roster.At(i)
	if err != nil {
		return AlwaysTrue, err
	}
	if i == 0 {
		return AlwaysTrue, nil
	}
	return ClinicianEquals(id), nil
}
