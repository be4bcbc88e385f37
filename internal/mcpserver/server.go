// Package mcpserver exposes the previewed document to MCP clients (editor
// plugins, agents) over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/meow/internal/markup"
	"github.com/starford/meow/internal/preview"
)

// Server wraps the MCP server with the preview tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *preview.Service
	registry *markup.Registry
}

// New creates an MCP server bound to one document.
func New(svc *preview.Service, registry *markup.Registry, version string) *Server {
	s := &Server{svc: svc, registry: registry}

	s.mcp = server.NewMCPServer(
		"meow",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_document",
		mcp.WithDescription("Render the previewed document to HTML and return it."),
	), s.renderDocument)

	s.mcp.AddTool(mcp.NewTool("document_status",
		mcp.WithDescription("Check whether the document changed since the given timestamp. "+
			"Returns {title, timestamp, html_part}; html_part is null when unchanged. "+
			"Omit timestamp to always get the rendered HTML."),
		mcp.WithNumber("timestamp", mcp.Description("Modification time (unix seconds) last seen by the caller")),
	), s.documentStatus)

	s.mcp.AddTool(mcp.NewTool("supported_markups",
		mcp.WithDescription("List known markup kinds, their file extensions, backends, and whether each is available."),
	), s.supportedMarkups)

	doc := svc.Document()
	s.mcp.AddResource(
		mcp.NewResource("meow://document", doc.Base(),
			mcp.WithResourceDescription("Rendered HTML of "+doc.Path()),
			mcp.WithMIMEType("text/html"),
		),
		s.readDocumentResource,
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

func (s *Server) renderDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Page()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.HTML), nil
}

func (s *Server) documentStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ts int64 = -1
	if v, err := req.RequireFloat("timestamp"); err == nil {
		ts = int64(v)
	}
	u, err := s.svc.Check(ts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(u, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) supportedMarkups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type kindInfo struct {
		Kind       string   `json:"kind"`
		Extensions []string `json:"extensions"`
		Backend    string   `json:"backend"`
		Available  bool     `json:"available"`
	}
	var out []kindInfo
	for _, k := range s.registry.Known() {
		out = append(out, kindInfo{Kind: k.Kind, Extensions: k.Extensions, Backend: k.Backend, Available: k.Available})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	res, err := s.svc.Page()
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "meow://document",
			MIMEType: "text/html",
			Text:     res.HTML,
		},
	}, nil
}
