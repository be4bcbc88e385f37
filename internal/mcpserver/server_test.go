package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/meow/internal/markup"
	"github.com/starford/meow/internal/preview"
	"github.com/starford/meow/internal/testutil"
)

func testServer(t *testing.T, content string) (*Server, string) {
	t.Helper()

	path := testutil.WriteDoc(t, "notes.md", content)
	reg := testutil.Registry(t)
	doc, err := markup.Resolve(reg, path, "")
	if err != nil {
		t.Fatal(err)
	}
	svc := preview.NewService(doc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(svc, reg, "test"), path
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "render_document":
		result, err = srv.renderDocument(ctx, req)
	case "document_status":
		result, err = srv.documentStatus(ctx, req)
	case "supported_markups":
		result, err = srv.supportedMarkups(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRenderDocument(t *testing.T) {
	srv, _ := testServer(t, "# Hi")

	r := callTool(t, srv, "render_document", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if got := resultText(r); !strings.Contains(got, "<h1>Hi</h1>") {
		t.Errorf("render = %q", got)
	}
}

func TestDocumentStatus(t *testing.T) {
	srv, path := testServer(t, "# Hi")

	var first preview.Update
	r := callTool(t, srv, "document_status", map[string]interface{}{})
	if err := json.Unmarshal([]byte(resultText(r)), &first); err != nil {
		t.Fatal(err)
	}
	if first.HTMLPart == nil {
		t.Fatal("expected html without a timestamp")
	}

	var same preview.Update
	r = callTool(t, srv, "document_status", map[string]interface{}{"timestamp": float64(first.Timestamp)})
	if err := json.Unmarshal([]byte(resultText(r)), &same); err != nil {
		t.Fatal(err)
	}
	if same.HTMLPart != nil {
		t.Errorf("html_part = %q, want null", *same.HTMLPart)
	}
	if !strings.Contains(resultText(r), `"html_part": null`) {
		t.Errorf("result should carry an explicit null: %s", resultText(r))
	}

	testutil.Rewrite(t, path, "# Bye", 3*time.Second)

	var changed preview.Update
	r = callTool(t, srv, "document_status", map[string]interface{}{"timestamp": float64(first.Timestamp)})
	if err := json.Unmarshal([]byte(resultText(r)), &changed); err != nil {
		t.Fatal(err)
	}
	if changed.HTMLPart == nil || !strings.Contains(*changed.HTMLPart, "<h1>Bye</h1>") {
		t.Errorf("changed = %+v", changed)
	}
	if changed.Timestamp <= first.Timestamp {
		t.Errorf("timestamp = %d, want > %d", changed.Timestamp, first.Timestamp)
	}
}

func TestDocumentStatusDeleted(t *testing.T) {
	srv, path := testServer(t, "# Hi")
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "document_status", map[string]interface{}{"timestamp": float64(1)})
	if !r.IsError {
		t.Fatal("expected error for deleted document")
	}
	if !strings.Contains(resultText(r), "no such file or directory") {
		t.Errorf("error = %q", resultText(r))
	}
}

func TestSupportedMarkups(t *testing.T) {
	srv, _ := testServer(t, "# Hi")

	r := callTool(t, srv, "supported_markups", map[string]interface{}{})
	var kinds []struct {
		Kind       string   `json:"kind"`
		Extensions []string `json:"extensions"`
		Available  bool     `json:"available"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &kinds); err != nil {
		t.Fatal(err)
	}
	if len(kinds) != len(markup.Catalog) {
		t.Fatalf("got %d kinds, want %d", len(kinds), len(markup.Catalog))
	}
	if kinds[0].Kind != "markdown" || !kinds[0].Available {
		t.Errorf("first = %+v", kinds[0])
	}
}

func TestReadDocumentResource(t *testing.T) {
	srv, _ := testServer(t, "# Hi")

	contents, err := srv.readDocumentResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, "<h1>Hi</h1>") {
		t.Errorf("resource = %+v", contents[0])
	}
}
