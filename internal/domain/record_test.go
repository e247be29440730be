package domain

import (
	"encoding/json"
	"testing"
)

func TestCaseRecord_SetAndValue(t *testing.T) {
	var r CaseRecord
	r.Set(AttrTreatmentType, "Renal", true)
	r.Set(AttrClinicianID, "", false)

	tests := []struct {
		attr      Attribute
		wantValue string
		wantOK    bool
	}{
		{AttrTreatmentType, "Renal", true},
		{AttrClinicianID, "", false},
		{AttrDiagnosis, "", false},
		{Attribute("unknown"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.attr), func(t *testing.T) {
			v, ok := r.Value(tt.attr)
			if v != tt.wantValue || ok != tt.wantOK {
				t.Errorf("Value(%s) = (%q, %v), want (%q, %v)", tt.attr, v, ok, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestCaseRecord_JSON(t *testing.T) {
	var r CaseRecord
	r.Set(AttrTreatmentType, "Quimioterapia", true)
	r.Set(AttrDiagnosis, "", true)
	r.Extra = map[string]string{"id": "7"}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"treatment_type":"Quimioterapia","diagnosis":"","treatment_status":null,"clinician_id":null,"extra":{"id":"7"}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back CaseRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v, ok := back.Value(AttrDiagnosis); !ok || v != "" {
		t.Errorf("diagnosis = (%q, %v), want empty non-null", v, ok)
	}
	if _, ok := back.Value(AttrClinicianID); ok {
		t.Error("clinician_id should stay null")
	}
	if back.Extra["id"] != "7" {
		t.Errorf("extra = %v", back.Extra)
	}
}

func TestParseAttribute(t *testing.T) {
	for _, a := range Attributes {
		got, ok := ParseAttribute(string(a))
		if !ok || got != a {
			t.Errorf("ParseAttribute(%s) = (%s, %v)", a, got, ok)
		}
	}
	if _, ok := ParseAttribute("tipo_tx"); ok {
		t.Errorf("source column aliases are not attributes")
	}
}

func TestCountTable_Helpers(t *testing.T) {
	table := CountTable{{Category: "A", Count: 3}, {Category: "B", Count: 1}}

	if table.Total() != 4 {
		t.Errorf("Expected total 4, got %d", table.Total())
	}
	if got := table.Categories(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("unexpected categories %v", got)
	}
	if got := table.Counts(); got[0] != 3 || got[1] != 1 {
		t.Errorf("unexpected counts %v", got)
	}
}

func TestSelection(t *testing.T) {
	if _, set := NoSelection.Index(); set {
		t.Errorf("NoSelection must not be set")
	}
	i, set := SelectIndex(2).Index()
	if !set || i != 2 {
		t.Errorf("SelectIndex(2).Index() = (%d, %v)", i, set)
	}
	if SelectionFromPtr(nil) != NoSelection {
		t.Errorf("nil pointer must map to NoSelection")
	}
	three := 3
	if SelectionFromPtr(&three) != SelectIndex(3) {
		t.Errorf("pointer must map to SelectIndex")
	}
	if NoSelection.String() != "none" || SelectIndex(5).String() != "5" {
		t.Errorf("unexpected String output")
	}
}
