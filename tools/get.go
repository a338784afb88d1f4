package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/stylecache-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetArgs defines the input parameters for the stylecache_get tool.
type GetArgs struct {
	Key string `json:"key" jsonschema:"Cache key of the stylesheet (e.g. components:button)"`
}

// GetHandler holds the dependencies for the get tool.
type GetHandler struct {
	Store  *index.Store
	Logger *slog.Logger
}

// Handle processes a stylecache_get request. A missing key is not an error:
// the stylesheet simply has not been compiled.
func (h *GetHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args GetArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Key == "" {
		h.Logger.Warn("stylecache_get called with empty key")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: key parameter is required"}},
			IsError: true,
		}, nil, nil
	}

	entry := h.Store.Entry(args.Key)
	if entry == nil {
		h.Logger.Info("stylecache_get key not compiled", "key", args.Key)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Not compiled: %s", args.Key)}},
		}, nil, nil
	}

	h.Logger.Info("stylecache_get", "key", args.Key, "size", entry.SizeBytes, "elapsed", time.Since(start))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatStylesheet(entry)}},
	}, nil, nil
}
