// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Planvault tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkarlsen/planvault/internal/catalog"
	"github.com/mkarlsen/planvault/internal/docservice"
)

// Server wraps the MCP server with Planvault tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Planvault tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Planvault",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List project documents, ordered by category (sprints, docs, code refs, opinions, core)."),
		mcp.WithString("category", mcp.Description("Optional filter: all, sprint, doc, code, opinion")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("show_plan",
		mcp.WithDescription("Read the PLAN.md project plan document."),
	), s.showPlan)

	s.mcp.AddTool(mcp.NewTool("show_current",
		mcp.WithDescription("Read the CURRENT.md status document."),
	), s.showCurrent)

	s.mcp.AddTool(mcp.NewTool("record_document",
		mcp.WithDescription("Record a reference document under an automatically generated name. "+
			"Categories: doc (documentation reference), code (code reference), opinion "+
			"(design stance). Names follow the naming contract; read it first via the "+
			"planvault://naming resource. Omit content for a pre-filled template."),
		mcp.WithString("category", mcp.Required(), mcp.Description("One of: doc, code, opinion")),
		mcp.WithString("target", mcp.Required(), mcp.Description("What the document is about; becomes the name slug")),
		mcp.WithString("content", mcp.Description("Optional Markdown content; a template is used when omitted")),
	), s.recordDocument)

	s.mcp.AddTool(mcp.NewTool("init_project",
		mcp.WithDescription("Scaffold the core project documents (PLAN.md, CURRENT.md, first sprint). "+
			"Idempotent: calling it again replaces the scaffold documents with fresh templates."),
		mcp.WithString("project", mcp.Description("Project name used in the scaffold headers")),
		mcp.WithString("description", mcp.Description("Optional one-paragraph project description")),
	), s.initProject)

	s.mcp.AddTool(mcp.NewTool("query_sprint",
		mcp.WithDescription("Read a sprint document by its M##_S## identifier (e.g. M01_S02)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Sprint identifier matching M##_S##")),
	), s.querySprint)

	s.mcp.AddTool(mcp.NewTool("project_status",
		mcp.WithDescription("Summarize the managed directory: document counts per category and core document presence."),
	), s.projectStatus)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("right_now",
		mcp.WithDescription("Get the current time (UTC, local, and epoch renderings)."),
	), s.rightNow)

	// Resource: document naming contract.
	s.mcp.AddResource(
		mcp.NewResource("planvault://naming", "Document Naming Contract",
			mcp.WithResourceDescription("Canonical naming scheme that all project documents follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNamingResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.List(ctx, req.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	counts := make(map[string]int)
	for _, d := range docs {
		counts[string(d.Category)]++
	}
	out, _ := json.MarshalIndent(struct {
		Documents []catalog.DocumentRecord `json:"documents"`
		Counts    map[string]int           `json:"counts"`
		Total     int                      `json:"total"`
	}{docs, counts, len(docs)}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) showPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := s.svc.ShowPlan(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) showCurrent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := s.svc.ShowCurrent(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) recordDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Record(ctx, docservice.RecordParams{
		Category: category,
		Target:   target,
		Content:  req.GetString("content", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("recorded: %s", res.Name)), nil
}

func (s *Server) initProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.InitProject(ctx, docservice.InitParams{
		Project:     req.GetString("project", ""),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if len(res.Created) > 0 {
		fmt.Fprintf(&b, "created: %s\n", strings.Join(res.Created, ", "))
	}
	if len(res.Overwritten) > 0 {
		fmt.Fprintf(&b, "overwritten: %s\n", strings.Join(res.Overwritten, ", "))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) querySprint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.QuerySprint(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.Content), nil
}

func (s *Server) projectStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(st, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) rightNow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Now(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNamingResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "planvault://naming",
			MIMEType: "text/markdown",
			Text:     NamingContract,
		},
	}, nil
}
