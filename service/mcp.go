package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docproc/kit"
)

// RegisterMCP registers the processing operation as an MCP tool, mirroring
// POST /process-document-path.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "process_document",
		Description: "Process a document file into markdown or RAG chunks with metadata.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path":   map[string]any{"type": "string", "description": "Path to the document file"},
				"export_type": map[string]any{"type": "string", "description": "Output shape: markdown or chunks"},
			},
			"required": []string{"file_path"},
		},
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*processPathRequest)
		if _, err := os.Stat(r.FilePath); err != nil {
			return nil, fmt.Errorf("file not found: %s", r.FilePath)
		}
		return s.proc.Process(ctx, r.FilePath, r.ExportType), nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r processPathRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.FilePath == "" {
			return nil, fmt.Errorf("file_path required")
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithTransport(ctx, "mcp_quic")
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
