package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/domain"
)

// Chart identifiers used by every front end
const (
	ChartTreatmentType   = "treatment_type"
	ChartDiagnosis       = "diagnosis"
	ChartTreatmentStatus = "treatment_status"
)

// Session holds one loaded dataset and its roster. All state is fixed at
// construction, so a Session may serve any number of concurrent selections.
type Session struct {
	id        string
	dataset   domain.Dataset
	roster    ClinicianRoster
	diagnosis domain.CountTable
	labels    domain.DashboardConfig
	loadedAt  time.Time
	logger    *logrus.Logger
}

// SelectionResult is the pair of count tables recomputed on a selection change
type SelectionResult struct {
	Selection       domain.Selection  `json:"-"`
	Clinician       string            `json:"clinician"`
	Recovered       bool              `json:"recovered"`
	Records         int               `json:"records"`
	TreatmentType   domain.CountTable `json:"treatment_type"`
	TreatmentStatus domain.CountTable `json:"treatment_status"`
}

// NewSession loads the dataset from src and prepares the roster and the
// diagnosis distribution. Any load failure is returned as
// *domain.DataUnavailableError and no session is built.
func NewSession(ctx context.Context, src domain.DataSource, labels domain.DashboardConfig, logger *logrus.Logger) (*Session, error) {
	start := time.Now()

	ds, err := src.Load(ctx)
	if err != nil {
		var dataErr *domain.DataUnavailableError
		if !errors.As(err, &dataErr) {
			err = domain.NewDataUnavailableError(src.Name(), err)
		}
		logger.WithError(err).WithField("source", src.Name()).Error("Failed to load case dataset")
		return nil, err
	}

	s := NewSessionFromDataset(ds, labels, logger)
	logger.WithFields(logrus.Fields{
		"session_id": s.id,
		"source":     src.Name(),
		"records":    ds.Len(),
		"clinicians": s.roster.Len() - 1,
		"duration":   time.Since(start),
	}).Info("Case dataset loaded")

	return s, nil
}

// NewSessionFromDataset builds a session around an already loaded dataset
func NewSessionFromDataset(ds domain.Dataset, labels domain.DashboardConfig, logger *logrus.Logger) *Session {
	return &Session{
		id:        uuid.New().String(),
		dataset:   ds,
		roster:    NewClinicianRoster(ds),
		diagnosis: Aggregate(ds.Records(), domain.AttrDiagnosis),
		labels:    labels,
		loadedAt:  time.Now().UTC(),
		logger:    logger,
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Dataset returns the session's dataset
func (s *Session) Dataset() domain.Dataset { return s.dataset }

// Roster returns the clinician roster
func (s *Session) Roster() ClinicianRoster { return s.roster }

// Diagnosis returns the unfiltered diagnosis distribution
func (s *Session) Diagnosis() domain.CountTable { return s.diagnosis }

// LoadedAt returns when the dataset was loaded
func (s *Session) LoadedAt() time.Time { return s.loadedAt }

// Labels returns the chart labels in use
func (s *Session) Labels() domain.DashboardConfig { return s.labels }

// predicate resolves sel, substituting AlwaysTrue for a stale or invalid index
func (s *Session) predicate(sel domain.Selection) (FilterPredicate, bool) {
	p, err := Resolve(sel, s.roster)
	if err == nil {
		return p, false
	}
	s.logger.WithFields(logrus.Fields{
		"session_id":  s.id,
		"selection":   sel.String(),
		"roster_size": s.roster.Len(),
	}).WithError(err).Warn("Selection outside clinician roster, showing all clinicians")
	return AlwaysTrue, true
}

// HandleSelectionChanged recomputes the treatment type and treatment status
// tables for sel. It never fails: an out-of-range selection falls back to the
// unfiltered view and sets Recovered.
func (s *Session) HandleSelectionChanged(sel domain.Selection) SelectionResult {
	p, recovered := s.predicate(sel)
	view := Filter(s.dataset, p)

	return SelectionResult{
		Selection:       sel,
		Clinician:       p.Clinician(),
		Recovered:       recovered,
		Records:         len(view),
		TreatmentType:   Aggregate(view, domain.AttrTreatmentType),
		TreatmentStatus: Aggregate(view, domain.AttrTreatmentStatus),
	}
}

// Counts returns the count table of attr under sel. The diagnosis table is
// always the unfiltered one computed at session start.
func (s *Session) Counts(attr domain.Attribute, sel domain.Selection) domain.CountTable {
	if attr == domain.AttrDiagnosis {
		return s.diagnosis
	}
	p, _ := s.predicate(sel)
	return Aggregate(Filter(s.dataset, p), attr)
}

// InitialCharts returns the three chart requests shown when the dashboard opens
func (s *Session) InitialCharts() []domain.ChartRequest {
	initial := s.HandleSelectionChanged(domain.NoSelection)
	return []domain.ChartRequest{
		s.treatmentTypeChart(initial.TreatmentType),
		s.diagnosisChart(),
		s.treatmentStatusChart(initial.TreatmentStatus),
	}
}

// SelectionCharts returns the two chart requests refreshed by a selection
func (s *Session) SelectionCharts(r SelectionResult) []domain.ChartRequest {
	return []domain.ChartRequest{
		s.treatmentTypeChart(r.TreatmentType),
		s.treatmentStatusChart(r.TreatmentStatus),
	}
}

func (s *Session) treatmentTypeChart(t domain.CountTable) domain.ChartRequest {
	return domain.ChartRequest{
		ID:            ChartTreatmentType,
		Kind:          domain.ChartBar,
		Title:         s.labels.TreatmentTypeTitle,
		CategoryLabel: s.labels.TreatmentTypeLabel,
		CountLabel:    s.labels.CountLabel,
		Attribute:     domain.AttrTreatmentType,
		Table:         t,
	}
}

func (s *Session) treatmentStatusChart(t domain.CountTable) domain.ChartRequest {
	return domain.ChartRequest{
		ID:            ChartTreatmentStatus,
		Kind:          domain.ChartBar,
		Title:         s.labels.TreatmentStatusTitle,
		CategoryLabel: s.labels.TreatmentStatusLabel,
		CountLabel:    s.labels.CountLabel,
		Attribute:     domain.AttrTreatmentStatus,
		Table:         t,
	}
}

func (s *Session) diagnosisChart() domain.ChartRequest {
	return domain.ChartRequest{
		ID:            ChartDiagnosis,
		Kind:          domain.ChartPie,
		Title:         s.labels.DiagnosisTitle,
		CategoryLabel: s.labels.DiagnosisLabel,
		CountLabel:    s.labels.CountLabel,
		Attribute:     domain.AttrDiagnosis,
		Table:         s.diagnosis,
	}
}
