// Package mcp exposes the case dashboard as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/dashboard"
	"github.com/case-dashboard/internal/domain"
)

// RosterResourceURI identifies the clinician roster resource
const RosterResourceURI = "case-dashboard://roster"

// Server serves dashboard tools over an MCP transport
type Server struct {
	config    domain.ConfigManager
	session   *dashboard.Session
	mcpServer *mcp.Server
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance
func NewServer(configManager domain.ConfigManager, session *dashboard.Session, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	serverInfo := &mcp.Implementation{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	}

	server := &Server{
		config:    configManager,
		session:   session,
		mcpServer: mcp.NewServer(serverInfo, nil),
		logger:    logger,
	}
	server.registerCapabilities()

	return server
}

// Start runs the server on stdio until ctx is cancelled or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves a single client over t
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.logger.WithField("session_id", s.session.ID()).Info("Starting case dashboard MCP server")

	if err := s.mcpServer.Run(ctx, t); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// registerCapabilities registers all MCP tools and resources
func (s *Server) registerCapabilities() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_clinicians",
		Description: "List the clinician roster. Index 0 is ALL (no filter); pass an index as the selection of other tools.",
	}, s.handleListClinicians)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "case_counts",
		Description: "Count cases by treatment type and by treatment status for one clinician. Omit selection to include every clinician.",
	}, s.handleCaseCounts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "diagnosis_distribution",
		Description: "Count cases by diagnosis over the whole dataset, with each diagnosis' share of the total.",
	}, s.handleDiagnosisDistribution)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         RosterResourceURI,
		Name:        "clinician-roster",
		Description: "Clinician roster as JSON",
		MIMEType:    "application/json",
	}, s.readRoster)

	s.logger.WithField("tool_count", 3).Debug("Registered MCP capabilities")
}
