package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/case-dashboard/internal/domain"
)

type stubSource struct {
	ds  domain.Dataset
	err error
}

func (s *stubSource) Load(ctx context.Context) (domain.Dataset, error) { return s.ds, s.err }
func (s *stubSource) Name() string                                     { return "stub" }

func newTestSession(t *testing.T, ds domain.Dataset) (*Session, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	session, err := NewSession(context.Background(), &stubSource{ds: ds}, domain.DefaultDashboardConfig(), logger)
	require.NoError(t, err)
	return session, hook
}

func TestNewSession_LoadFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cause := errors.New("503 Service Unavailable")

	session, err := NewSession(context.Background(), &stubSource{err: cause}, domain.DefaultDashboardConfig(), logger)

	assert.Nil(t, session)
	var dataErr *domain.DataUnavailableError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "stub", dataErr.Source)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestNewSession_KeepsSourceDataUnavailableError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	original := domain.NewDataUnavailableError("http", errors.New("timeout"))

	_, err := NewSession(context.Background(), &stubSource{err: original}, domain.DefaultDashboardConfig(), logger)

	assert.Same(t, original, err)
}

func TestSession_DiagnosisComputedOnceUnfiltered(t *testing.T) {
	session, _ := newTestSession(t, sampleDataset())

	expected := Aggregate(sampleDataset().Records(), domain.AttrDiagnosis)
	assert.Equal(t, expected, session.Diagnosis())
	assert.Equal(t, expected, session.Counts(domain.AttrDiagnosis, domain.SelectIndex(1)))
}

func TestSession_HandleSelectionChanged(t *testing.T) {
	session, hook := newTestSession(t, sampleDataset())

	result := session.HandleSelectionChanged(domain.SelectIndex(1))

	assert.Equal(t, "dr.perez", result.Clinician)
	assert.False(t, result.Recovered)
	assert.Equal(t, 2, result.Records)
	assert.Equal(t, domain.CountTable{{Category: "Renal", Count: 2}}, result.TreatmentType)
	assert.Equal(t, domain.CountTable{
		{Category: "Trasplantado", Count: 1},
		{Category: "En lista", Count: 1},
	}, result.TreatmentStatus)

	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, e.Level)
	}
}

func TestSession_OutOfRangeRecoversUnfiltered(t *testing.T) {
	ds := domain.NewDataset([]domain.CaseRecord{
		caseRecord("A", "", "X", "c1"),
		caseRecord("B", "", "Y", "c2"),
		caseRecord("A", "", "X", "c3"),
	})
	session, hook := newTestSession(t, ds)
	require.Equal(t, 4, session.Roster().Len())

	result := session.HandleSelectionChanged(domain.SelectIndex(7))

	unfiltered := session.HandleSelectionChanged(domain.NoSelection)
	assert.True(t, result.Recovered)
	assert.Equal(t, domain.AllClinicians, result.Clinician)
	assert.Equal(t, unfiltered.TreatmentType, result.TreatmentType)
	assert.Equal(t, unfiltered.TreatmentStatus, result.TreatmentStatus)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, "7", e.Data["selection"])
		}
	}
	assert.True(t, warned, "out of range selection must be logged")
}

func TestSession_EmptyDataset(t *testing.T) {
	session, _ := newTestSession(t, domain.NewDataset(nil))

	result := session.HandleSelectionChanged(domain.NoSelection)

	assert.Empty(t, result.TreatmentType)
	assert.Empty(t, result.TreatmentStatus)
	assert.Empty(t, session.Diagnosis())
	assert.Equal(t, []string{domain.AllClinicians}, session.Roster().Entries())
}

func TestSession_Charts(t *testing.T) {
	session, _ := newTestSession(t, sampleDataset())
	labels := domain.DefaultDashboardConfig()

	initial := session.InitialCharts()
	require.Len(t, initial, 3)
	assert.Equal(t, ChartTreatmentType, initial[0].ID)
	assert.Equal(t, domain.ChartBar, initial[0].Kind)
	assert.Equal(t, labels.TreatmentTypeTitle, initial[0].Title)
	assert.Equal(t, labels.TreatmentTypeLabel, initial[0].CategoryLabel)
	assert.Equal(t, labels.CountLabel, initial[0].CountLabel)
	assert.Equal(t, ChartDiagnosis, initial[1].ID)
	assert.Equal(t, domain.ChartPie, initial[1].Kind)
	assert.Equal(t, labels.DiagnosisTitle, initial[1].Title)
	assert.Equal(t, ChartTreatmentStatus, initial[2].ID)

	updated := session.SelectionCharts(session.HandleSelectionChanged(domain.SelectIndex(2)))
	require.Len(t, updated, 2)
	assert.Equal(t, ChartTreatmentType, updated[0].ID)
	assert.Equal(t, domain.CountTable{{Category: "Cardiaco", Count: 1}}, updated[0].Table)
	assert.Equal(t, ChartTreatmentStatus, updated[1].ID)
}

func TestSession_ConcurrentSelections(t *testing.T) {
	session, _ := newTestSession(t, sampleDataset())
	before := append([]domain.CaseRecord(nil), session.Dataset().Records()...)
	expected := make([]SelectionResult, session.Roster().Len())
	for i := range expected {
		expected[i] = session.HandleSelectionChanged(domain.SelectIndex(i))
	}

	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got := session.HandleSelectionChanged(domain.SelectIndex(i))
			assert.Equal(t, expected[i], got)
		}(n % session.Roster().Len())
	}
	wg.Wait()

	assert.Equal(t, before, session.Dataset().Records())
}
