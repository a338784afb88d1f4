package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/stylecache-mcp/index"
	"github.com/lexandro/stylecache-mcp/pass"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the stylecache_status tool (none required).
type StatusArgs struct{}

// LastResultFunc reports the most recent pass, if any.
type LastResultFunc func() (pass.Result, bool)

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Store      *index.Store
	CSSIndex   *index.CSSIndex
	LastResult LastResultFunc
	StartTime  time.Time
	RootDir    string
	Logger     *slog.Logger
}

// Handle processes a stylecache_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	entryCount := h.Store.Len()
	totalSize := h.Store.TotalSizeBytes()
	syntaxCounts := h.Store.SyntaxCounts()
	docCount := h.CSSIndex.DocumentCount()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("stylecache_status",
		"entries", entryCount,
		"totalSize", totalSize,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	builder.WriteString("=== stylecache-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Source root: %s\n", h.RootDir))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Cached stylesheets: %d\n", entryCount))
	builder.WriteString(fmt.Sprintf("Search-indexed stylesheets: %d\n", docCount))
	builder.WriteString(fmt.Sprintf("Total compiled size: %s\n", formatFileSize(totalSize)))
	builder.WriteString(fmt.Sprintf("Snapshot generation: %d\n", h.Store.Generation()))
	if updatedAt := h.Store.UpdatedAt(); updatedAt.IsZero() {
		builder.WriteString("Snapshot installed: never\n")
	} else {
		builder.WriteString(fmt.Sprintf("Snapshot installed: %s ago\n", formatDuration(time.Since(updatedAt))))
	}
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	if h.LastResult != nil {
		if result, ok := h.LastResult(); ok {
			builder.WriteString("\nLast pass:\n")
			builder.WriteString(fmt.Sprintf("  Resolved root: %s", result.Root))
			if result.RootFellBack {
				builder.WriteString(" (fallback)")
			}
			builder.WriteString("\n")
			builder.WriteString(fmt.Sprintf("  Discovery: %s, %d candidates, %d eligible\n",
				result.Tier, result.Candidates, result.Eligible))
			builder.WriteString(fmt.Sprintf("  Compiled: %d, failed: %d, collisions: %d\n",
				result.Compiled, result.Failed, len(result.Collisions)))
			builder.WriteString(fmt.Sprintf("  Finished: %s ago in %s\n",
				formatDuration(time.Since(result.FinishedAt)), result.Duration.Round(time.Millisecond)))
		}
	}

	if len(syntaxCounts) > 0 {
		builder.WriteString("\nSyntaxes:\n")

		type syntaxEntry struct {
			syntax string
			count  int
		}
		entries := make([]syntaxEntry, 0, len(syntaxCounts))
		for syntax, count := range syntaxCounts {
			entries = append(entries, syntaxEntry{syntax, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].syntax < entries[j].syntax
		})

		for _, entry := range entries {
			builder.WriteString(fmt.Sprintf("  %-20s %d files\n", entry.syntax, entry.count))
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
