package docimport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "blockdoc-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	imp := newImporter(t, Config{PDFEngine: "pdfcpu"})
	srv := mcp.NewServer(testMCPImpl, nil)
	imp.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCall(t *testing.T, session *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return result
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result := mcpCall(t, session, name, args)
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %+v", name, result.Content)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

// --- blockdoc_import ---

func TestMCP_Import(t *testing.T) {
	session := mcpSession(t)

	path := filepath.Join(t.TempDir(), "memo.pdf")
	if err := os.WriteFile(path, buildRealTextPDF("HELLO WORLD"), 0o644); err != nil {
		t.Fatal(err)
	}

	text := mcpCallTool(t, session, "blockdoc_import", map[string]any{"path": path})

	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Name != "memo" || res.Format != FormatPDF {
		t.Errorf("result: %+v", res)
	}
	if len(res.Document.Content) != 1 || res.Document.Content[0].Type() != "Heading" {
		t.Errorf("content: %+v", res.Document.Content)
	}
}

func TestMCP_Import_Unsupported(t *testing.T) {
	session := mcpSession(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := mcpCall(t, session, "blockdoc_import", map[string]any{"path": path})
	if !result.IsError {
		t.Fatal("expected tool error for .txt")
	}
}

// --- blockdoc_detect ---

func TestMCP_Detect(t *testing.T) {
	session := mcpSession(t)

	text := mcpCallTool(t, session, "blockdoc_detect", map[string]any{"path": "Plan.v2.docx"})
	var resp map[string]string
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["format"] != "docx" || resp["name"] != "Plan.v2" {
		t.Errorf("detect: %v", resp)
	}

	text = mcpCallTool(t, session, "blockdoc_detect", map[string]any{"path": "upload", "content_type": MIMEPDF})
	if !strings.Contains(text, `"pdf"`) {
		t.Errorf("content type fallback: %s", text)
	}

	if !mcpCall(t, session, "blockdoc_detect", map[string]any{"path": "a.odt"}).IsError {
		t.Error("expected tool error for .odt")
	}
}

// --- blockdoc_clean ---

func TestMCP_Clean(t *testing.T) {
	session := mcpSession(t)

	html := `<!--[if gte mso 9]><xml>junk</xml><![endif]--><p class="MsoNormal" style="margin:0">Hello <b>there</b></p>`
	text := mcpCallTool(t, session, "blockdoc_clean", map[string]any{"html": html, "markdown": true})

	var resp map[string]string
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(resp["html"], "Mso") || strings.Contains(resp["html"], "junk") {
		t.Errorf("html not cleaned: %q", resp["html"])
	}
	if resp["text"] != "Hello there" {
		t.Errorf("text: %q", resp["text"])
	}
	if !strings.Contains(resp["markdown"], "**there**") {
		t.Errorf("markdown: %q", resp["markdown"])
	}
}

func TestMCP_Import_Root(t *testing.T) {
	// WHAT: With a root configured, tool paths resolve inside it and cannot escape.
	// WHY: MCP clients are agents; they must not read arbitrary files.
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "memo.pdf"), buildRealTextPDF("HELLO WORLD"), 0o644); err != nil {
		t.Fatal(err)
	}

	imp := newImporter(t, Config{PDFEngine: "pdfcpu", Root: root})
	srv := mcp.NewServer(testMCPImpl, nil)
	imp.RegisterMCP(srv)
	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()
	session, err := mcp.NewClient(testMCPImpl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { session.Close() })

	text := mcpCallTool(t, session, "blockdoc_import", map[string]any{"path": "memo.pdf"})
	if !strings.Contains(text, `"name":"memo"`) {
		t.Errorf("import under root: %s", text)
	}
	if !mcpCall(t, session, "blockdoc_import", map[string]any{"path": "../memo.pdf"}).IsError {
		t.Error("expected tool error for path outside root")
	}
}
