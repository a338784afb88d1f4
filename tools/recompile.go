package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/stylecache-mcp/pass"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RecompileArgs defines the input parameters for the stylecache_recompile tool.
type RecompileArgs struct{}

// RecompileFunc runs one compile pass. It is provided by main.go.
type RecompileFunc func() pass.Result

// RecompileHandler holds the dependencies for the recompile tool.
type RecompileHandler struct {
	DoRecompile RecompileFunc
	Logger      *slog.Logger
}

// Handle processes a stylecache_recompile request. A pass never fails as a
// whole; per-file failures are reported in the counts.
func (h *RecompileHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RecompileArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("stylecache_recompile started")

	result := h.DoRecompile()

	h.Logger.Info("stylecache_recompile complete",
		"compiled", result.Compiled,
		"failed", result.Failed,
		"totalSize", result.TotalSize,
		"elapsed", result.Duration,
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatPassResult(result)}},
	}, nil, nil
}

// FormatPassResult summarizes a pass in one or two lines.
func FormatPassResult(result pass.Result) string {
	output := fmt.Sprintf("Recompile complete: %d stylesheets (%s) in %s, %d failed, %d skipped as ineligible",
		result.Compiled,
		formatFileSize(result.TotalSize),
		result.Duration.Round(time.Millisecond),
		result.Failed,
		result.Candidates-result.Eligible,
	)
	if len(result.Collisions) > 0 {
		output += fmt.Sprintf("\nKey collisions (last source kept): %v", result.Collisions)
	}
	return output
}
