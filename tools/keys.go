package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/stylecache-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// KeysArgs defines the input parameters for the stylecache_keys tool.
type KeysArgs struct {
	Pattern    string `json:"pattern,omitempty" jsonschema:"Glob over cache keys with ':' as separator (e.g. components:** ; default **)"`
	Detailed   bool   `json:"detailed,omitempty" jsonschema:"If true include source path, syntax, size and etag"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// KeysHandler holds the dependencies for the keys tool.
type KeysHandler struct {
	Store  *index.Store
	Logger *slog.Logger
}

// Handle processes a stylecache_keys request.
func (h *KeysHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args KeysArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	pattern := args.Pattern
	if pattern == "" {
		pattern = "**"
	}

	results, err := h.Store.SearchByGlob(pattern, args.MaxResults)
	if err != nil {
		h.Logger.Error("stylecache_keys failed", "pattern", pattern, "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Search error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Info("stylecache_keys",
		"pattern", pattern,
		"results", len(results),
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatKeyResults(results, args.Detailed)}},
	}, nil, nil
}
