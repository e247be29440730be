package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/case-dashboard/internal/domain"
)

// ListCliniciansParams takes no arguments
type ListCliniciansParams struct{}

// RosterEntry is one selectable clinician
type RosterEntry struct {
	Index     int    `json:"index"`
	Clinician string `json:"clinician"`
}

// ListCliniciansResult defines the result structure for list_clinicians
type ListCliniciansResult struct {
	DefaultIndex int           `json:"default_index"`
	Clinicians   []RosterEntry `json:"clinicians"`
}

// CaseCountsParams defines parameters for case_counts
type CaseCountsParams struct {
	Selection *int `json:"selection,omitempty" jsonschema:"roster index from list_clinicians; 0 or omitted means all clinicians"`
}

// CaseCountsResult defines the result structure for case_counts
type CaseCountsResult struct {
	Selection       *int              `json:"selection,omitempty"`
	Clinician       string            `json:"clinician"`
	Recovered       bool              `json:"recovered"`
	Records         int               `json:"records"`
	TreatmentType   domain.CountTable `json:"treatment_type"`
	TreatmentStatus domain.CountTable `json:"treatment_status"`
}

// DiagnosisDistributionParams takes no arguments
type DiagnosisDistributionParams struct{}

// DiagnosisShare is one slice of the diagnosis distribution
type DiagnosisShare struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// DiagnosisDistributionResult defines the result structure for diagnosis_distribution
type DiagnosisDistributionResult struct {
	Title     string           `json:"title"`
	Total     int              `json:"total"`
	Diagnoses []DiagnosisShare `json:"diagnoses"`
}

func (s *Server) handleListClinicians(ctx context.Context, req *mcp.CallToolRequest, params ListCliniciansParams) (*mcp.CallToolResult, ListCliniciansResult, error) {
	s.logger.WithField("tool", "list_clinicians").Info("Tool invoked")

	result := ListCliniciansResult{DefaultIndex: 0, Clinicians: s.rosterEntries()}

	lines := make([]string, len(result.Clinicians))
	for i, e := range result.Clinicians {
		lines[i] = fmt.Sprintf("%d: %s", e.Index, e.Clinician)
	}
	return textResult(strings.Join(lines, "\n")), result, nil
}

func (s *Server) handleCaseCounts(ctx context.Context, req *mcp.CallToolRequest, params CaseCountsParams) (*mcp.CallToolResult, CaseCountsResult, error) {
	sel := domain.SelectionFromPtr(params.Selection)
	s.logger.WithField("tool", "case_counts").WithField("selection", sel.String()).Info("Tool invoked")

	r := s.session.HandleSelectionChanged(sel)
	result := CaseCountsResult{
		Selection:       params.Selection,
		Clinician:       r.Clinician,
		Recovered:       r.Recovered,
		Records:         r.Records,
		TreatmentType:   r.TreatmentType,
		TreatmentStatus: r.TreatmentStatus,
	}

	labels := s.session.Labels()
	var b strings.Builder
	if r.Recovered {
		fmt.Fprintf(&b, "Selection %s is outside the roster; showing all clinicians.\n", sel)
	}
	fmt.Fprintf(&b, "%s: %d cases\n", r.Clinician, r.Records)
	fmt.Fprintf(&b, "%s: %s\n", labels.TreatmentTypeLabel, formatTable(r.TreatmentType))
	fmt.Fprintf(&b, "%s: %s", labels.TreatmentStatusLabel, formatTable(r.TreatmentStatus))

	return textResult(b.String()), result, nil
}

func (s *Server) handleDiagnosisDistribution(ctx context.Context, req *mcp.CallToolRequest, params DiagnosisDistributionParams) (*mcp.CallToolResult, DiagnosisDistributionResult, error) {
	s.logger.WithField("tool", "diagnosis_distribution").Info("Tool invoked")

	table := s.session.Diagnosis()
	total := table.Total()
	result := DiagnosisDistributionResult{
		Title:     s.session.Labels().DiagnosisTitle,
		Total:     total,
		Diagnoses: make([]DiagnosisShare, len(table)),
	}
	for i, e := range table {
		result.Diagnoses[i] = DiagnosisShare{
			Category: e.Category,
			Count:    e.Count,
			Percent:  100 * float64(e.Count) / float64(total),
		}
	}

	lines := []string{fmt.Sprintf("%s (%d cases)", result.Title, total)}
	for _, d := range result.Diagnoses {
		lines = append(lines, fmt.Sprintf("%s: %d (%.1f%%)", d.Category, d.Count, d.Percent))
	}
	return textResult(strings.Join(lines, "\n")), result, nil
}

func (s *Server) readRoster(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(ListCliniciansResult{DefaultIndex: 0, Clinicians: s.rosterEntries()})
	if err != nil {
		return nil, fmt.Errorf("marshaling roster: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      RosterResourceURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) rosterEntries() []RosterEntry {
	entries := s.session.Roster().Entries()
	out := make([]RosterEntry, len(entries))
	for i, name := range entries {
		out[i] = RosterEntry{Index: i, Clinician: name}
	}
	return out
}

func formatTable(t domain.CountTable) string {
	if len(t) == 0 {
		return "none"
	}
	parts := make([]string, len(t))
	for i, e := range t {
		parts[i] = fmt.Sprintf("%s=%d", e.Category, e.Count)
	}
	return strings.Join(parts, ", ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
