package domain

import (
	"database/sql"
	"encoding/json"
)

// Attribute names one of the categorical columns of a case record
type Attribute string

// Categorical attributes understood by the dashboard
const (
	AttrTreatmentType   Attribute = "treatment_type"
	AttrDiagnosis       Attribute = "diagnosis"
	AttrTreatmentStatus Attribute = "treatment_status"
	AttrClinicianID     Attribute = "clinician_id"
)

// Attributes lists every categorical attribute in source column order
var Attributes = []Attribute{AttrTreatmentType, AttrDiagnosis, AttrTreatmentStatus, AttrClinicianID}

// ParseAttribute converts a column name into an Attribute
func ParseAttribute(name string) (Attribute, bool) {
	for _, a := range Attributes {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

// CaseRecord represents one treatment case row.
// A value with Valid == false is a null cell.
type CaseRecord struct {
	TreatmentType   sql.NullString
	Diagnosis       sql.NullString
	TreatmentStatus sql.NullString
	ClinicianID     sql.NullString
	Extra           map[string]string
}

// caseRecordJSON is the wire form of a CaseRecord; null cells encode as null
type caseRecordJSON struct {
	TreatmentType   *string           `json:"treatment_type"`
	Diagnosis       *string           `json:"diagnosis"`
	TreatmentStatus *string           `json:"treatment_status"`
	ClinicianID     *string           `json:"clinician_id"`
	Extra           map[string]string `json:"extra,omitempty"`
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func fromNullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// MarshalJSON encodes each attribute as a string or null
func (r CaseRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(caseRecordJSON{
		TreatmentType:   nullable(r.TreatmentType),
		Diagnosis:       nullable(r.Diagnosis),
		TreatmentStatus: nullable(r.TreatmentStatus),
		ClinicianID:     nullable(r.ClinicianID),
		Extra:           r.Extra,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON
func (r *CaseRecord) UnmarshalJSON(data []byte) error {
	var w caseRecordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = CaseRecord{
		TreatmentType:   fromNullable(w.TreatmentType),
		Diagnosis:       fromNullable(w.Diagnosis),
		TreatmentStatus: fromNullable(w.TreatmentStatus),
		ClinicianID:     fromNullable(w.ClinicianID),
		Extra:           w.Extra,
	}
	return nil
}

// Value returns the attribute value and whether it is non-null
func (r CaseRecord) Value(attr Attribute) (string, bool) {
	var v sql.NullString
	switch attr {
	case AttrTreatmentType:
		v = r.TreatmentType
	case AttrDiagnosis:
		v = r.Diagnosis
	case AttrTreatmentStatus:
		v = r.TreatmentStatus
	case AttrClinicianID:
		v = r.ClinicianID
	default:
		return "", false
	}
	return v.String, v.Valid
}

// Set assigns an attribute value; ok == false stores a null
func (r *CaseRecord) Set(attr Attribute, value string, ok bool) {
	v := sql.NullString{String: value, Valid: ok}
	switch attr {
	case AttrTreatmentType:
		r.TreatmentType = v
	case AttrDiagnosis:
		r.Diagnosis = v
	case AttrTreatmentStatus:
		r.TreatmentStatus = v
	case AttrClinicianID:
		r.ClinicianID = v
	}
}

// Dataset is the ordered, read-only table of case records owned by a session.
// Callers must treat Records as immutable once the dataset is built.
type Dataset struct {
	records []CaseRecord
}

// NewDataset takes ownership of records
func NewDataset(records []CaseRecord) Dataset {
	return Dataset{records: records}
}

// Records returns the backing rows. The slice must not be modified.
func (d Dataset) Records() []CaseRecord {
	return d.records
}

// Len returns the number of records
func (d Dataset) Len() int {
	return len(d.records)
}

// CountEntry is one category of a grouping result
type CountEntry struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CountTable is an ordered grouping result, highest count first
type CountTable []CountEntry

// Total returns the sum of all counts
func (t CountTable) Total() int {
	total := 0
	for _, e := range t {
		total += e.Count
	}
	return total
}

// Categories returns the category labels in table order
func (t CountTable) Categories() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.Category
	}
	return out
}

// Counts returns the counts in table order
func (t CountTable) Counts() []int {
	out := make([]int, len(t))
	for i, e := range t {
		out[i] = e.Count
	}
	return out
}
