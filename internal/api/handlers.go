package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/case-dashboard/internal/dashboard"
	"github.com/case-dashboard/internal/domain"
	"github.com/case-dashboard/internal/render"
)

// RosterEntry is one selectable row of the clinician table
type RosterEntry struct {
	Index     int    `json:"index"`
	Clinician string `json:"clinician"`
}

// Chart is a rendered chart with its identity
type Chart struct {
	ID        string           `json:"id"`
	Kind      domain.ChartKind `json:"kind"`
	Attribute domain.Attribute `json:"attribute"`
	Figure    render.Figure    `json:"figure"`
}

// ChartsResponse is returned for a selection change
type ChartsResponse struct {
	Selection *int    `json:"selection"`
	dashboard.SelectionResult
	Charts []Chart `json:"charts"`
}

// DashboardResponse is the initial page state
type DashboardResponse struct {
	Title         string        `json:"title"`
	SessionID     string        `json:"session_id"`
	SelectedIndex int           `json:"selected_index"`
	Roster        []RosterEntry `json:"roster"`
	Charts        []Chart       `json:"charts"`
}

// CountsResponse carries one raw count table
type CountsResponse struct {
	Attribute domain.Attribute  `json:"attribute"`
	Selection *int              `json:"selection"`
	Total     int               `json:"total"`
	Table     domain.CountTable `json:"table"`
}

// groupingAttributes are the attributes exposed by the counts endpoint
var groupingAttributes = map[domain.Attribute]bool{
	domain.AttrTreatmentType:   true,
	domain.AttrDiagnosis:       true,
	domain.AttrTreatmentStatus: true,
}

func (s *Server) handleRoster(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default_index": 0,
		"clinicians":    rosterEntries(s.session.Roster()),
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	charts, err := s.renderAll(s.session.InitialCharts())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Failed to render charts", err.Error())
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Title:         s.session.Labels().Title,
		SessionID:     s.session.ID(),
		SelectedIndex: 0,
		Roster:        rosterEntries(s.session.Roster()),
		Charts:        charts,
	})
}

func (s *Server) handleCharts(c *gin.Context) {
	sel, raw, ok := parseSelection(c)
	if !ok {
		return
	}

	result := s.session.HandleSelectionChanged(sel)
	charts, err := s.renderAll(s.session.SelectionCharts(result))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Failed to render charts", err.Error())
		return
	}

	c.JSON(http.StatusOK, ChartsResponse{
		Selection:       raw,
		SelectionResult: result,
		Charts:          charts,
	})
}

func (s *Server) handleCounts(c *gin.Context) {
	attr, known := domain.ParseAttribute(c.Param("attribute"))
	if !known || !groupingAttributes[attr] {
		abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput,
			"Unknown attribute",
			"expected one of treatment_type, diagnosis, treatment_status")
		return
	}

	sel, raw, ok := parseSelection(c)
	if !ok {
		return
	}

	table := s.session.Counts(attr, sel)
	c.JSON(http.StatusOK, CountsResponse{
		Attribute: attr,
		Selection: raw,
		Total:     table.Total(),
		Table:     table,
	})
}

// parseSelection reads the optional selection query parameter. On a
// malformed value it writes a 400 response and returns ok == false.
func parseSelection(c *gin.Context) (domain.Selection, *int, bool) {
	raw := strings.TrimSpace(c.Query("selection"))
	if raw == "" {
		return domain.NoSelection, nil, true
	}

	i, err := strconv.Atoi(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput,
			"Selection must be an integer roster index", err.Error())
		return domain.Selection{}, nil, false
	}
	return domain.SelectIndex(i), &i, true
}

func (s *Server) renderAll(reqs []domain.ChartRequest) ([]Chart, error) {
	charts := make([]Chart, 0, len(reqs))
	for _, req := range reqs {
		fig, err := s.renderer.Render(req)
		if err != nil {
			return nil, err
		}
		charts = append(charts, Chart{ID: req.ID, Kind: req.Kind, Attribute: req.Attribute, Figure: fig})
	}
	return charts, nil
}

func rosterEntries(r dashboard.ClinicianRoster) []RosterEntry {
	entries := r.Entries()
	out := make([]RosterEntry, len(entries))
	for i, name := range entries {
		out[i] = RosterEntry{Index: i, Clinician: name}
	}
	return out
}
