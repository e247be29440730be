package dashboard

import (
	"math/rand"

	"github.com/case-dashboard/internal/domain"
)

// caseRecord builds a record; an empty argument is a null cell
func caseRecord(treatmentType, diagnosis, status, clinician string) domain.CaseRecord {
	var r domain.CaseRecord
	r.Set(domain.AttrTreatmentType, treatmentType, treatmentType != "")
	r.Set(domain.AttrDiagnosis, diagnosis, diagnosis != "")
	r.Set(domain.AttrTreatmentStatus, status, status != "")
	r.Set(domain.AttrClinicianID, clinician, clinician != "")
	return r
}

func treatmentTypes(values ...string) domain.Dataset {
	records := make([]domain.CaseRecord, len(values))
	for i, v := range values {
		records[i] = caseRecord(v, "", "", "")
	}
	return domain.NewDataset(records)
}

// randomDataset draws small category pools so groups and ties are common
func randomDataset(rng *rand.Rand, n int) domain.Dataset {
	pick := func(pool []string) string {
		return pool[rng.Intn(len(pool))]
	}
	types := []string{"Renal", "Hepatico", "Cardiaco", ""}
	diagnoses := []string{"IRC", "Cirrosis", "Miocardiopatia", "Hepatitis", ""}
	statuses := []string{"En lista", "Trasplantado", "Suspendido", ""}
	clinicians := []string{"dr.perez", "dra.gomez", "dr.ruiz", ""}

	records := make([]domain.CaseRecord, n)
	for i := range records {
		records[i] = caseRecord(pick(types), pick(diagnoses), pick(statuses), pick(clinicians))
	}
	return domain.NewDataset(records)
}

func sampleDataset() domain.Dataset {
	return domain.NewDataset([]domain.CaseRecord{
		caseRecord("Renal", "IRC", "Trasplantado", "dr.perez"),
		caseRecord("Hepatico", "Cirrosis", "En lista", "dra.gomez"),
		caseRecord("Renal", "IRC", "En lista", "dr.perez"),
		caseRecord("Cardiaco", "Miocardiopatia", "Trasplantado", "dr.ruiz"),
		caseRecord("Renal", "Hepatitis", "Suspendido", "dra.gomez"),
		caseRecord("Hepatico", "Cirrosis", "Trasplantado", ""),
	})
}
