package tools

import (
	"fmt"
	"strings"

	"github.com/lexandro/stylecache-mcp/index"
)

// FormatSearchResults formats CSS search results as human-readable text,
// grouping matching rules by cache key.
func FormatSearchResults(results []index.CSSSearchResult, totalMatches int) string {
	if len(results) == 0 {
		return "No matches found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d matching rules in %d stylesheets:\n\n", totalMatches, len(results)))

	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("── %s ──\n", result.Key))
		for _, rule := range result.Rules {
			builder.WriteString(fmt.Sprintf("  %d: %s\n", rule.Index, rule.Text))
		}
	}

	return builder.String()
}

// FormatKeyResults formats key glob results as human-readable text.
func FormatKeyResults(results []index.KeySearchResult, detailed bool) string {
	if len(results) == 0 {
		return "No keys matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d keys:\n\n", len(results)))

	for _, result := range results {
		if !detailed {
			builder.WriteString(result.Entry.Key)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s, %s, %s, etag %s)\n",
			result.Entry.Key,
			result.Entry.RelativePath,
			result.Entry.Syntax,
			formatFileSize(result.Entry.SizeBytes),
			result.Entry.ETag(),
		))
	}

	return builder.String()
}

// FormatStylesheet formats one cached stylesheet with a header line.
func FormatStylesheet(entry *index.Entry) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s (%s, %s, etag %s) ──\n",
		entry.Key, entry.RelativePath, formatFileSize(entry.SizeBytes), entry.ETag()))
	builder.WriteString(entry.CSS)
	if !strings.HasSuffix(entry.CSS, "\n") {
		builder.WriteString("\n")
	}
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
