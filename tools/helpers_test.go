package tools

import (
	"io"
	"log/slog"
	"testing"

	"github.com/lexandro/stylecache-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEntry(key string, css string) *index.Entry {
	return index.NewEntry(key, "/srv/app/"+key+".scss", key+".scss", "SCSS", css)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}
