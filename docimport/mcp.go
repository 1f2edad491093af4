package docimport

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/blockdoc/kit"
	"github.com/hazyhaar/blockdoc/sanitize"
)

// RegisterMCP registers the import tools on an MCP server.
func (imp *Importer) RegisterMCP(srv *mcp.Server) {
	imp.registerImportTool(srv)
	imp.registerDetectTool(srv)
	registerCleanTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- import ---

type importReq struct {
	Path string `json:"path"`
}

func (imp *Importer) registerImportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "blockdoc_import",
		Description: "Import a .docx or .pdf file into a block document. Returns the derived name and the document JSON.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to import"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*importReq)
		if r.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		path, err := ResolvePath(imp.cfg.Root, r.Path)
		if err != nil {
			return nil, err
		}
		return imp.ImportNamed(ctx, LocalFile(path))
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(kit.Logging(imp.logger, "blockdoc_import"))(endpoint), kit.DecodeArgs[importReq]())
}

// --- detect ---

type detectReq struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
}

func (imp *Importer) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "blockdoc_detect",
		Description: "Detect whether a file can be imported, from its name and optional content type.",
		InputSchema: inputSchema(map[string]any{
			"path":         map[string]any{"type": "string", "description": "File name or path"},
			"content_type": map[string]any{"type": "string", "description": "Declared MIME type"},
		}, []string{"path"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*detectReq)
		format, ok := Detect(r.Path, r.ContentType)
		if !ok {
			return nil, unsupported(r.Path)
		}
		return map[string]string{"format": string(format), "name": DocName(r.Path)}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeArgs[detectReq]())
}

// --- clean ---

type cleanReq struct {
	HTML     string `json:"html"`
	Markdown bool   `json:"markdown"`
}

func registerCleanTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "blockdoc_clean",
		Description: "Clean pasted HTML from word processors. Returns cleaned HTML, its plain text, and optionally Markdown.",
		InputSchema: inputSchema(map[string]any{
			"html":     map[string]any{"type": "string", "description": "HTML fragment to clean"},
			"markdown": map[string]any{"type": "boolean", "description": "Also render the cleaned HTML as Markdown"},
		}, []string{"html"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*cleanReq)
		out := map[string]string{
			"html": sanitize.Clean(r.HTML),
			"text": sanitize.PlainText(r.HTML),
		}
		if r.Markdown {
			md, err := sanitize.Markdown(r.HTML)
			if err != nil {
				return nil, fmt.Errorf("markdown: %w", err)
			}
			out["markdown"] = md
		}
		return out, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeArgs[cleanReq]())
}
